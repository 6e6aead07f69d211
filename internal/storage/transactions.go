package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/core"
)

const transactionColumns = `id, owner_id, type, amount, account_id, to_account_id,
	category_id, subcategory_id, goal_id, description, date, is_essential,
	created_at, updated_at`

func (q *Queries) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, string(t.Type), t.Amount.String(), t.AccountID, t.ToAccountID,
		t.CategoryID, t.SubcategoryID, t.GoalID, t.Description, formatTime(t.Date),
		t.IsEssential, formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (q *Queries) GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, notFound(err, "transaction", id)
	}
	return t, nil
}

func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE transactions
		SET type = ?, amount = ?, account_id = ?, to_account_id = ?, category_id = ?,
		    subcategory_id = ?, goal_id = ?, description = ?, date = ?, is_essential = ?,
		    updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		string(t.Type), t.Amount.String(), t.AccountID, t.ToAccountID, t.CategoryID,
		t.SubcategoryID, t.GoalID, t.Description, formatTime(t.Date), t.IsEssential,
		formatTime(t.UpdatedAt), t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", t.ID, core.ErrNotFound)
	}
	return nil
}

func (q *Queries) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// ListTransactions returns every transaction for one owner, newest first.
// The progress calculators filter in memory; derived values are always
// recomputed from current rows.
func (q *Queries) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE owner_id = ? ORDER BY date DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListTransactionsInRange returns one owner's transactions with date in
// [from, to], newest first.
func (q *Queries) ListTransactionsInRange(ctx context.Context, ownerID string, from, to time.Time) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE owner_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC, id`, ownerID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("query transactions in range: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListTransactionsByGoal returns every ledger entry referencing a goal,
// the working set of the goal cascade delete.
func (q *Queries) ListTransactionsByGoal(ctx context.Context, ownerID, goalID string) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE owner_id = ? AND goal_id = ? ORDER BY date, id`, ownerID, goalID)
	if err != nil {
		return nil, fmt.Errorf("query transactions by goal: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (q *Queries) ReassignTransactions(ctx context.Context, fromOwner, toOwner string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE transactions SET owner_id = ? WHERE owner_id = ?`, toOwner, fromOwner)
	if err != nil {
		return 0, fmt.Errorf("reassign transactions: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                      core.Transaction
		typ, amount            string
		date, created, updated string
	)
	err := row.Scan(&t.ID, &t.OwnerID, &typ, &amount, &t.AccountID, &t.ToAccountID,
		&t.CategoryID, &t.SubcategoryID, &t.GoalID, &t.Description, &date,
		&t.IsEssential, &created, &updated)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	if t.Amount, err = parseAmount(amount); err != nil {
		return core.Transaction{}, err
	}
	if t.Date, err = parseTime(date); err != nil {
		return core.Transaction{}, err
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return core.Transaction{}, err
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
