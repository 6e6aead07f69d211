// Package ledger owns every mutation that carries a balance effect. All
// operations run inside one store transaction: the ledger entry and the
// balance changes it implies commit together or not at all.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/core"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/log"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/storage"
)

// Ledger is a handle bound to one owner. Every query it issues is scoped to
// that owner, so one handle can never read or mutate another owner's rows.
type Ledger struct {
	ownerID string
	store   *storage.Store
}

func New(store *storage.Store, ownerID string) *Ledger {
	return &Ledger{ownerID: ownerID, store: store}
}

// Input carries transaction fields already checked by the boundary
// validator: positive amount, valid type, per-type required references.
type Input struct {
	Type          core.TransactionType
	Amount        decimal.Decimal
	AccountID     string
	ToAccountID   string
	CategoryID    string
	SubcategoryID string
	GoalID        string
	Description   string
	Date          time.Time
	IsEssential   bool
}

// Patch holds the fields of an update; nil means keep the stored value.
type Patch struct {
	Type          *core.TransactionType
	Amount        *decimal.Decimal
	AccountID     *string
	ToAccountID   *string
	CategoryID    *string
	SubcategoryID *string
	GoalID        *string
	Description   *string
	Date          *time.Time
	IsEssential   *bool
}

// Create inserts a ledger entry and applies its balance effect atomically.
// A missing account (or goal) does not fail the operation: the entry is
// still recorded and that leg of the effect is skipped, since accounts may
// have been removed independently.
func (l *Ledger) Create(ctx context.Context, input Input) (core.Transaction, error) {
	now := time.Now().UTC()
	t := core.Transaction{
		ID:            uuid.NewString(),
		OwnerID:       l.ownerID,
		Type:          input.Type,
		Amount:        input.Amount,
		AccountID:     input.AccountID,
		ToAccountID:   input.ToAccountID,
		CategoryID:    input.CategoryID,
		SubcategoryID: input.SubcategoryID,
		GoalID:        input.GoalID,
		Description:   input.Description,
		Date:          input.Date,
		IsEssential:   input.IsEssential,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := l.store.WithTx(ctx, func(q *storage.Queries) error {
		if err := q.CreateTransaction(ctx, t); err != nil {
			return err
		}
		return l.applyEffect(ctx, q, core.EffectOf(t))
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

// Update follows the revert-then-apply protocol: undo the stored entry's
// balance effect, persist the patched fields, apply the new effect. All
// three steps share one store transaction, so a reader never observes a
// balance reflecting only one side of the update.
//
// The merged entity must still satisfy the per-type field contract (a
// transfer needs a destination, a goal event needs a goal); otherwise the
// update fails with ErrInvalidState and nothing changes.
func (l *Ledger) Update(ctx context.Context, id string, patch Patch) (core.Transaction, error) {
	var updated core.Transaction
	err := l.store.WithTx(ctx, func(q *storage.Queries) error {
		stored, err := q.GetTransaction(ctx, l.ownerID, id)
		if err != nil {
			return err
		}
		if err := l.applyEffect(ctx, q, core.EffectOf(stored).Reversed()); err != nil {
			return err
		}
		updated = mergePatch(stored, patch)
		if err := updated.Validate(); err != nil {
			return fmt.Errorf("%v: %w", err, core.ErrInvalidState)
		}
		updated.UpdatedAt = time.Now().UTC()
		if err := q.UpdateTransaction(ctx, updated); err != nil {
			return err
		}
		return l.applyEffect(ctx, q, core.EffectOf(updated))
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return updated, nil
}

// Delete reverts the stored entry's balance effect and removes the record.
// Deleting a transaction that does not exist is a no-op.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	err := l.store.WithTx(ctx, func(q *storage.Queries) error {
		stored, err := q.GetTransaction(ctx, l.ownerID, id)
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := l.applyEffect(ctx, q, core.EffectOf(stored).Reversed()); err != nil {
			return err
		}
		return q.DeleteTransaction(ctx, l.ownerID, id)
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// ContributeToGoal moves amount from an account into a goal and records the
// goal-contribution entry, atomically. Unlike the generic create path, the
// goal and the account must exist.
func (l *Ledger) ContributeToGoal(ctx context.Context, goalID string, amount decimal.Decimal, accountID, description string) (core.Transaction, error) {
	return l.goalEvent(ctx, core.TxGoalContribution, goalID, amount, accountID, description)
}

// WithdrawFromGoal moves amount from a goal back into an account. The goal
// must hold at least the requested amount; otherwise the operation fails
// with ErrInsufficientFunds and nothing is written.
func (l *Ledger) WithdrawFromGoal(ctx context.Context, goalID string, amount decimal.Decimal, accountID, description string) (core.Transaction, error) {
	return l.goalEvent(ctx, core.TxGoalWithdrawal, goalID, amount, accountID, description)
}

func (l *Ledger) goalEvent(ctx context.Context, typ core.TransactionType, goalID string, amount decimal.Decimal, accountID, description string) (core.Transaction, error) {
	if !amount.IsPositive() {
		return core.Transaction{}, fmt.Errorf("goal event amount must be positive: %w", core.ErrInvalidState)
	}
	now := time.Now().UTC()
	t := core.Transaction{
		ID:          uuid.NewString(),
		OwnerID:     l.ownerID,
		Type:        typ,
		Amount:      amount,
		AccountID:   accountID,
		GoalID:      goalID,
		Description: description,
		Date:        now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := l.store.WithTx(ctx, func(q *storage.Queries) error {
		goal, err := q.GetGoal(ctx, l.ownerID, goalID)
		if err != nil {
			return err
		}
		account, err := q.GetAccount(ctx, l.ownerID, accountID)
		if err != nil {
			return err
		}
		if typ == core.TxGoalWithdrawal && goal.CurrentAmount.LessThan(amount) {
			return fmt.Errorf("goal %s holds %s, requested %s: %w",
				goalID, goal.CurrentAmount, amount, core.ErrInsufficientFunds)
		}
		if err := q.CreateTransaction(ctx, t); err != nil {
			return err
		}
		effect := core.EffectOf(t)
		if err := q.SetAccountBalance(ctx, l.ownerID, accountID, account.Balance.Add(effect.AccountDelta), now); err != nil {
			return err
		}
		return q.SetGoalCurrentAmount(ctx, l.ownerID, goalID, goal.CurrentAmount.Add(effect.GoalDelta))
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%s: %w", typ, err)
	}
	return t, nil
}

// DeleteGoal removes a goal and cascades through the ledger: every
// contribution and withdrawal referencing the goal has its account effect
// reversed and is deleted, restoring each account to the balance it would
// have had if those entries had never existed.
func (l *Ledger) DeleteGoal(ctx context.Context, goalID string) error {
	err := l.store.WithTx(ctx, func(q *storage.Queries) error {
		if _, err := q.GetGoal(ctx, l.ownerID, goalID); err != nil {
			return err
		}
		txns, err := q.ListTransactionsByGoal(ctx, l.ownerID, goalID)
		if err != nil {
			return err
		}
		for _, t := range txns {
			reversed := core.EffectOf(t).Reversed()
			// The goal row is about to go away; only the account leg matters.
			reversed.GoalID = ""
			reversed.GoalDelta = decimal.Zero
			if err := l.applyEffect(ctx, q, reversed); err != nil {
				return err
			}
			if err := q.DeleteTransaction(ctx, l.ownerID, t.ID); err != nil {
				return err
			}
		}
		return q.DeleteGoal(ctx, l.ownerID, goalID)
	})
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}

// applyEffect mutates each balance the effect touches by reading the stored
// value and writing value+delta inside the surrounding transaction. Legs
// that point at missing rows are skipped, never failed.
func (l *Ledger) applyEffect(ctx context.Context, q *storage.Queries, e core.BalanceEffect) error {
	now := time.Now().UTC()
	if e.AccountID != "" && !e.AccountDelta.IsZero() {
		account, err := q.GetAccount(ctx, l.ownerID, e.AccountID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			slog.WarnContext(ctx, "Account missing, balance effect skipped",
				log.FieldOwnerID, l.ownerID,
				log.FieldAccountID, e.AccountID,
				log.FieldAmount, e.AccountDelta.String(),
				log.FieldComponent, log.ComponentLedger)
		case err != nil:
			return err
		default:
			if err := q.SetAccountBalance(ctx, l.ownerID, e.AccountID, account.Balance.Add(e.AccountDelta), now); err != nil {
				return err
			}
		}
	}
	if e.ToAccountID != "" && !e.ToAccountDelta.IsZero() {
		account, err := q.GetAccount(ctx, l.ownerID, e.ToAccountID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			slog.WarnContext(ctx, "Destination account missing, balance effect skipped",
				log.FieldOwnerID, l.ownerID,
				log.FieldAccountID, e.ToAccountID,
				log.FieldAmount, e.ToAccountDelta.String(),
				log.FieldComponent, log.ComponentLedger)
		case err != nil:
			return err
		default:
			if err := q.SetAccountBalance(ctx, l.ownerID, e.ToAccountID, account.Balance.Add(e.ToAccountDelta), now); err != nil {
				return err
			}
		}
	}
	if e.GoalID != "" && !e.GoalDelta.IsZero() {
		goal, err := q.GetGoal(ctx, l.ownerID, e.GoalID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			slog.WarnContext(ctx, "Goal missing, amount effect skipped",
				log.FieldOwnerID, l.ownerID,
				log.FieldGoalID, e.GoalID,
				log.FieldAmount, e.GoalDelta.String(),
				log.FieldComponent, log.ComponentLedger)
		case err != nil:
			return err
		default:
			if err := q.SetGoalCurrentAmount(ctx, l.ownerID, e.GoalID, goal.CurrentAmount.Add(e.GoalDelta)); err != nil {
				return err
			}
		}
	}
	return nil
}

func mergePatch(stored core.Transaction, p Patch) core.Transaction {
	out := stored
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Amount != nil {
		out.Amount = *p.Amount
	}
	if p.AccountID != nil {
		out.AccountID = *p.AccountID
	}
	if p.ToAccountID != nil {
		out.ToAccountID = *p.ToAccountID
	}
	if p.CategoryID != nil {
		out.CategoryID = *p.CategoryID
	}
	if p.SubcategoryID != nil {
		out.SubcategoryID = *p.SubcategoryID
	}
	if p.GoalID != nil {
		out.GoalID = *p.GoalID
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Date != nil {
		out.Date = *p.Date
	}
	if p.IsEssential != nil {
		out.IsEssential = *p.IsEssential
	}
	return out
}
