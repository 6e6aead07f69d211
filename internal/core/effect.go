package core

import "github.com/shopspring/decimal"

// BalanceEffect describes how one ledger entry moves money: a delta on the
// source account, an optional delta on a destination account (transfers),
// and an optional delta on a goal's current amount (goal events).
//
// Every balance mutation in the system is expressed as applying or reversing
// one of these; no code path ever writes an independently recomputed
// absolute balance.
type BalanceEffect struct {
	AccountID      string
	AccountDelta   decimal.Decimal
	ToAccountID    string
	ToAccountDelta decimal.Decimal
	GoalID         string
	GoalDelta      decimal.Decimal
}

// EffectOf derives the balance effect of a transaction from its type:
//
//	income             source +amount
//	expense            source -amount
//	transfer           source -amount, destination +amount
//	goal-contribution  source -amount, goal +amount
//	goal-withdrawal    source +amount, goal -amount
func EffectOf(t Transaction) BalanceEffect {
	e := BalanceEffect{AccountID: t.AccountID}
	switch t.Type {
	case TxIncome:
		e.AccountDelta = t.Amount
	case TxExpense:
		e.AccountDelta = t.Amount.Neg()
	case TxTransfer:
		e.AccountDelta = t.Amount.Neg()
		e.ToAccountID = t.ToAccountID
		e.ToAccountDelta = t.Amount
	case TxGoalContribution:
		e.AccountDelta = t.Amount.Neg()
		e.GoalID = t.GoalID
		e.GoalDelta = t.Amount
	case TxGoalWithdrawal:
		e.AccountDelta = t.Amount
		e.GoalID = t.GoalID
		e.GoalDelta = t.Amount.Neg()
	}
	return e
}

// Reversed returns the exact inverse effect, used to undo a stored entry
// before an update or delete.
func (e BalanceEffect) Reversed() BalanceEffect {
	return BalanceEffect{
		AccountID:      e.AccountID,
		AccountDelta:   e.AccountDelta.Neg(),
		ToAccountID:    e.ToAccountID,
		ToAccountDelta: e.ToAccountDelta.Neg(),
		GoalID:         e.GoalID,
		GoalDelta:      e.GoalDelta.Neg(),
	}
}
