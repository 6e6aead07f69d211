package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/core"
)

func (q *Queries) CreateAccount(ctx context.Context, a core.Account) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO accounts (id, owner_id, name, type, balance, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OwnerID, a.Name, string(a.Type), a.Balance.String(), a.IsActive,
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (q *Queries) GetAccount(ctx context.Context, ownerID, id string) (core.Account, error) {
	var (
		a                core.Account
		typ, balance     string
		created, updated string
	)
	err := q.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, type, balance, is_active, created_at, updated_at
		FROM accounts WHERE id = ? AND owner_id = ?`, id, ownerID).
		Scan(&a.ID, &a.OwnerID, &a.Name, &typ, &balance, &a.IsActive, &created, &updated)
	if err != nil {
		return core.Account{}, notFound(err, "account", id)
	}
	a.Type = core.AccountType(typ)
	if a.Balance, err = parseAmount(balance); err != nil {
		return core.Account{}, err
	}
	if a.CreatedAt, err = parseTime(created); err != nil {
		return core.Account{}, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return core.Account{}, err
	}
	return a, nil
}

func (q *Queries) ListAccounts(ctx context.Context, ownerID string) ([]core.Account, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, owner_id, name, type, balance, is_active, created_at, updated_at
		FROM accounts WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var (
			a                core.Account
			typ, balance     string
			created, updated string
		)
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &typ, &balance, &a.IsActive, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(typ)
		if a.Balance, err = parseAmount(balance); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if a.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SetAccountBalance writes the new running balance. Callers compute the new
// value by applying a signed effect delta to the stored balance inside the
// same transaction; nothing ever writes a recomputed aggregate.
func (q *Queries) SetAccountBalance(ctx context.Context, ownerID, id string, balance decimal.Decimal, now time.Time) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts SET balance = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		balance.String(), formatTime(now), id, ownerID)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (q *Queries) ReassignAccounts(ctx context.Context, fromOwner, toOwner string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET owner_id = ? WHERE owner_id = ?`, toOwner, fromOwner)
	if err != nil {
		return 0, fmt.Errorf("reassign accounts: %w", err)
	}
	return res.RowsAffected()
}
