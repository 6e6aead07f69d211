package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/core"
)

func (q *Queries) CreateGoal(ctx context.Context, g core.Goal) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO goals (id, owner_id, name, type, target_amount, current_amount,
			deadline, account_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.OwnerID, g.Name, string(g.Type), g.TargetAmount.String(),
		g.CurrentAmount.String(), formatNullTime(g.Deadline), g.AccountID,
		string(g.Status), formatTime(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (q *Queries) GetGoal(ctx context.Context, ownerID, id string) (core.Goal, error) {
	var (
		g                    core.Goal
		typ, target, current string
		status, created      string
		deadline             sql.NullString
	)
	err := q.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, type, target_amount, current_amount, deadline,
			account_id, status, created_at
		FROM goals WHERE id = ? AND owner_id = ?`, id, ownerID).
		Scan(&g.ID, &g.OwnerID, &g.Name, &typ, &target, &current, &deadline,
			&g.AccountID, &status, &created)
	if err != nil {
		return core.Goal{}, notFound(err, "goal", id)
	}
	g.Type = core.GoalType(typ)
	g.Status = core.GoalStatus(status)
	if g.TargetAmount, err = parseAmount(target); err != nil {
		return core.Goal{}, err
	}
	if g.CurrentAmount, err = parseAmount(current); err != nil {
		return core.Goal{}, err
	}
	if g.Deadline, err = parseNullTime(deadline); err != nil {
		return core.Goal{}, err
	}
	if g.CreatedAt, err = parseTime(created); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (q *Queries) ListGoals(ctx context.Context, ownerID string) ([]core.Goal, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, owner_id, name, type, target_amount, current_amount, deadline,
			account_id, status, created_at
		FROM goals WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		var (
			g                    core.Goal
			typ, target, current string
			status, created      string
			deadline             sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &typ, &target, &current,
			&deadline, &g.AccountID, &status, &created); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.Type = core.GoalType(typ)
		g.Status = core.GoalStatus(status)
		if g.TargetAmount, err = parseAmount(target); err != nil {
			return nil, err
		}
		if g.CurrentAmount, err = parseAmount(current); err != nil {
			return nil, err
		}
		if g.Deadline, err = parseNullTime(deadline); err != nil {
			return nil, err
		}
		if g.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// SetGoalCurrentAmount writes the goal's new accumulated amount, computed by
// the ledger engine from the stored value plus a signed effect delta.
func (q *Queries) SetGoalCurrentAmount(ctx context.Context, ownerID, id string, amount decimal.Decimal) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE goals SET current_amount = ? WHERE id = ? AND owner_id = ?`,
		amount.String(), id, ownerID)
	if err != nil {
		return fmt.Errorf("update goal amount: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (q *Queries) DeleteGoal(ctx context.Context, ownerID, id string) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}

func (q *Queries) ReassignGoals(ctx context.Context, fromOwner, toOwner string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE goals SET owner_id = ? WHERE owner_id = ?`, toOwner, fromOwner)
	if err != nil {
		return 0, fmt.Errorf("reassign goals: %w", err)
	}
	return res.RowsAffected()
}
