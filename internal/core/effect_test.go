package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEffectOf(t *testing.T) {
	amount := decimal.NewFromInt(50)
	cases := []struct {
		name           string
		txn            Transaction
		accountDelta   string
		toAccountDelta string
		goalDelta      string
	}{
		{
			name:         "income adds to the account",
			txn:          Transaction{Type: TxIncome, Amount: amount, AccountID: "a"},
			accountDelta: "50",
		},
		{
			name:         "expense subtracts from the account",
			txn:          Transaction{Type: TxExpense, Amount: amount, AccountID: "a"},
			accountDelta: "-50",
		},
		{
			name:           "transfer moves between accounts",
			txn:            Transaction{Type: TxTransfer, Amount: amount, AccountID: "a", ToAccountID: "b"},
			accountDelta:   "-50",
			toAccountDelta: "50",
		},
		{
			name:         "contribution moves from account to goal",
			txn:          Transaction{Type: TxGoalContribution, Amount: amount, AccountID: "a", GoalID: "g"},
			accountDelta: "-50",
			goalDelta:    "50",
		},
		{
			name:         "withdrawal moves from goal to account",
			txn:          Transaction{Type: TxGoalWithdrawal, Amount: amount, AccountID: "a", GoalID: "g"},
			accountDelta: "50",
			goalDelta:    "-50",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := EffectOf(tc.txn)
			if e.AccountID != tc.txn.AccountID {
				t.Fatalf("account id: got %q want %q", e.AccountID, tc.txn.AccountID)
			}
			if got := e.AccountDelta.String(); got != tc.accountDelta {
				t.Fatalf("account delta: got %s want %s", got, tc.accountDelta)
			}
			if tc.toAccountDelta != "" {
				if e.ToAccountID != tc.txn.ToAccountID {
					t.Fatalf("to-account id: got %q want %q", e.ToAccountID, tc.txn.ToAccountID)
				}
				if got := e.ToAccountDelta.String(); got != tc.toAccountDelta {
					t.Fatalf("to-account delta: got %s want %s", got, tc.toAccountDelta)
				}
			}
			if tc.goalDelta != "" {
				if e.GoalID != tc.txn.GoalID {
					t.Fatalf("goal id: got %q want %q", e.GoalID, tc.txn.GoalID)
				}
				if got := e.GoalDelta.String(); got != tc.goalDelta {
					t.Fatalf("goal delta: got %s want %s", got, tc.goalDelta)
				}
			}
		})
	}
}

func TestReversedCancelsEffect(t *testing.T) {
	txn := Transaction{Type: TxTransfer, Amount: decimal.NewFromInt(20), AccountID: "a", ToAccountID: "b"}
	e := EffectOf(txn)
	r := e.Reversed()

	if !e.AccountDelta.Add(r.AccountDelta).IsZero() {
		t.Fatalf("account deltas do not cancel: %s + %s", e.AccountDelta, r.AccountDelta)
	}
	if !e.ToAccountDelta.Add(r.ToAccountDelta).IsZero() {
		t.Fatalf("to-account deltas do not cancel: %s + %s", e.ToAccountDelta, r.ToAccountDelta)
	}
	if r.AccountID != e.AccountID || r.ToAccountID != e.ToAccountID {
		t.Fatal("reversal must keep the same targets")
	}
}
