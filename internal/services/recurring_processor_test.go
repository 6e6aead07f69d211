package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/core"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/storage"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "services.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestProcessDueCreatesTransactions(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	account := core.Account{
		ID: "a1", OwnerID: "o1", Name: "Checking", Type: core.AccountBank,
		Balance: decimal.NewFromInt(100), IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	if err := store.CreateAccount(ctx, account); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	ranToday := time.Date(2025, 6, 15, 1, 0, 0, 0, time.UTC)
	templates := []core.RecurringTransaction{
		{
			ID: "due", OwnerID: "o1", Type: core.TxExpense,
			Amount: decimal.NewFromInt(30), AccountID: "a1", CategoryID: "c1",
			Description: "rent", Frequency: core.Daily,
			StartDate: now.AddDate(0, 0, -5), IsActive: true, CreatedAt: now,
		},
		{
			ID: "already-ran", OwnerID: "o1", Type: core.TxExpense,
			Amount: decimal.NewFromInt(999), AccountID: "a1", CategoryID: "c1",
			Frequency: core.Daily, StartDate: now.AddDate(0, 0, -5),
			LastRunAt: &ranToday, IsActive: true, CreatedAt: now,
		},
	}
	for _, tmpl := range templates {
		if err := store.CreateRecurringTransaction(ctx, tmpl); err != nil {
			t.Fatalf("seed template %s: %v", tmpl.ID, err)
		}
	}

	processor := NewRecurringProcessor(store, NewLedgerService(store, nil))
	processed, err := processor.ProcessDue(ctx, now)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed: got %d want 1", processed)
	}

	// The created entry went through the ledger engine, so the balance moved.
	a, err := store.GetAccount(ctx, "o1", "a1")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got := a.Balance.String(); got != "70" {
		t.Fatalf("balance: got %s want 70", got)
	}

	txns, err := store.ListTransactions(ctx, "o1")
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 1 || txns[0].Description != "rent" {
		t.Fatalf("transactions: %+v", txns)
	}

	// The template was stamped; running again on the same day is a no-op.
	processed, err = processor.ProcessDue(ctx, now)
	if err != nil {
		t.Fatalf("reprocess: %v", err)
	}
	if processed != 0 {
		t.Fatalf("reprocess created %d entries", processed)
	}
}
