// Package migration reassigns an entire owner scope from one identity to
// another, the anonymous-to-authenticated sign-in path.
package migration

import (
	"context"
	"fmt"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/core"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/storage"
)

// Result reports how many records changed owner per collection.
type Result struct {
	Transactions int64 `json:"transactions"`
	Budgets      int64 `json:"budgets"`
	Goals        int64 `json:"goals"`
	Accounts     int64 `json:"accounts"`
	Categories   int64 `json:"categories"`
}

// Error wraps a failure in one reassignment step with the collection it
// happened in, for diagnostics. The whole migration has been rolled back by
// the time the caller sees it.
type Error struct {
	Collection string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("migrate %s: %v", e.Collection, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Engine struct {
	store *storage.Store
}

func NewEngine(store *storage.Store) *Engine {
	return &Engine{store: store}
}

// Migrate moves every record owned by fromID to toID and deletes the source
// user, as one atomic operation. Default (shared) categories keep their
// blank owner. On any failure no ownership changes at all.
func (e *Engine) Migrate(ctx context.Context, fromID, toID string) (Result, error) {
	if fromID == "" || toID == "" || fromID == toID {
		return Result{}, fmt.Errorf("migration needs two distinct identities: %w", core.ErrInvalidState)
	}

	var result Result
	err := e.store.WithTx(ctx, func(q *storage.Queries) error {
		if _, err := q.GetUser(ctx, fromID); err != nil {
			return err
		}

		var err error
		if result.Transactions, err = q.ReassignTransactions(ctx, fromID, toID); err != nil {
			return &Error{Collection: "transactions", Err: err}
		}
		if result.Budgets, err = q.ReassignBudgets(ctx, fromID, toID); err != nil {
			return &Error{Collection: "budgets", Err: err}
		}
		if result.Goals, err = q.ReassignGoals(ctx, fromID, toID); err != nil {
			return &Error{Collection: "goals", Err: err}
		}
		if result.Accounts, err = q.ReassignAccounts(ctx, fromID, toID); err != nil {
			return &Error{Collection: "accounts", Err: err}
		}
		if result.Categories, err = q.ReassignCategories(ctx, fromID, toID); err != nil {
			return &Error{Collection: "categories", Err: err}
		}
		if err := q.DeleteUser(ctx, fromID); err != nil {
			return &Error{Collection: "users", Err: err}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}
