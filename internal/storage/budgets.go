package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/core"
)

func (q *Queries) CreateBudget(ctx context.Context, b core.Budget) error {
	categoryIDs, err := json.Marshal(b.CategoryIDs)
	if err != nil {
		return fmt.Errorf("marshal category ids: %w", err)
	}
	thresholds, err := json.Marshal(b.AlertThresholds)
	if err != nil {
		return fmt.Errorf("marshal alert thresholds: %w", err)
	}
	_, err = q.db.ExecContext(ctx, `
		INSERT INTO budgets (id, owner_id, name, category_ids, amount, period,
			start_date, end_date, rollover, alert_thresholds, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.OwnerID, b.Name, string(categoryIDs), b.Amount.String(),
		string(b.Period), formatTime(b.StartDate), formatNullTime(b.EndDate),
		b.Rollover, string(thresholds), formatTime(b.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (q *Queries) GetBudget(ctx context.Context, ownerID, id string) (core.Budget, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, category_ids, amount, period, start_date,
			end_date, rollover, alert_thresholds, created_at
		FROM budgets WHERE id = ? AND owner_id = ?`, id, ownerID)
	b, err := scanBudget(row)
	if err != nil {
		return core.Budget{}, notFound(err, "budget", id)
	}
	return b, nil
}

func (q *Queries) ListBudgets(ctx context.Context, ownerID string) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, owner_id, name, category_ids, amount, period, start_date,
			end_date, rollover, alert_thresholds, created_at
		FROM budgets WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (q *Queries) ReassignBudgets(ctx context.Context, fromOwner, toOwner string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE budgets SET owner_id = ? WHERE owner_id = ?`, toOwner, fromOwner)
	if err != nil {
		return 0, fmt.Errorf("reassign budgets: %w", err)
	}
	return res.RowsAffected()
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b                       core.Budget
		categoryIDs, thresholds string
		amount, period          string
		start, created          string
		end                     sql.NullString
	)
	err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &categoryIDs, &amount, &period,
		&start, &end, &b.Rollover, &thresholds, &created)
	if err != nil {
		return core.Budget{}, err
	}
	if err := json.Unmarshal([]byte(categoryIDs), &b.CategoryIDs); err != nil {
		return core.Budget{}, fmt.Errorf("unmarshal category ids: %w", err)
	}
	if err := json.Unmarshal([]byte(thresholds), &b.AlertThresholds); err != nil {
		return core.Budget{}, fmt.Errorf("unmarshal alert thresholds: %w", err)
	}
	b.Period = core.BudgetPeriod(period)
	if b.Amount, err = parseAmount(amount); err != nil {
		return core.Budget{}, err
	}
	if b.StartDate, err = parseTime(start); err != nil {
		return core.Budget{}, err
	}
	if b.EndDate, err = parseNullTime(end); err != nil {
		return core.Budget{}, err
	}
	if b.CreatedAt, err = parseTime(created); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}
