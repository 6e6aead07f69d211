package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/core"
)

func (q *Queries) CreateRecurringTransaction(ctx context.Context, r core.RecurringTransaction) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions (id, owner_id, type, amount, account_id,
			to_account_id, category_id, subcategory_id, description, frequency,
			start_date, end_date, last_run_at, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OwnerID, string(r.Type), r.Amount.String(), r.AccountID,
		r.ToAccountID, r.CategoryID, r.SubcategoryID, r.Description,
		string(r.Frequency), formatTime(r.StartDate), formatNullTime(r.EndDate),
		formatNullTime(r.LastRunAt), r.IsActive, formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert recurring transaction: %w", err)
	}
	return nil
}

// ListActiveRecurringTransactions returns every active template across all
// owners whose start date is not in the future; the worker checks dueness.
func (q *Queries) ListActiveRecurringTransactions(ctx context.Context, now time.Time) ([]core.RecurringTransaction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, owner_id, type, amount, account_id, to_account_id, category_id,
			subcategory_id, description, frequency, start_date, end_date,
			last_run_at, is_active, created_at
		FROM recurring_transactions
		WHERE is_active = 1 AND start_date <= ?
			AND (end_date IS NULL OR end_date >= ?)
		ORDER BY created_at, id`, formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("query recurring transactions: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTransaction
	for rows.Next() {
		var (
			r            core.RecurringTransaction
			typ, amount  string
			freq, start  string
			created      string
			end, lastRun sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.OwnerID, &typ, &amount, &r.AccountID,
			&r.ToAccountID, &r.CategoryID, &r.SubcategoryID, &r.Description,
			&freq, &start, &end, &lastRun, &r.IsActive, &created); err != nil {
			return nil, fmt.Errorf("scan recurring transaction: %w", err)
		}
		r.Type = core.TransactionType(typ)
		r.Frequency = core.Frequency(freq)
		if r.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		if r.StartDate, err = parseTime(start); err != nil {
			return nil, err
		}
		if r.EndDate, err = parseNullTime(end); err != nil {
			return nil, err
		}
		if r.LastRunAt, err = parseNullTime(lastRun); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) SetRecurringLastRun(ctx context.Context, id string, lastRun time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE recurring_transactions SET last_run_at = ? WHERE id = ?`,
		formatTime(lastRun), id)
	if err != nil {
		return fmt.Errorf("update recurring last run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("recurring transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}
