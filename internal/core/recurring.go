package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type (
	Frequency string

	// RecurringTransaction is a template the worker materializes into real
	// ledger entries on its schedule. Only expense, income, and transfer
	// entries recur; goal events are always explicit user actions.
	RecurringTransaction struct {
		ID            string
		OwnerID       string
		Type          TransactionType
		Amount        decimal.Decimal
		AccountID     string
		ToAccountID   string
		CategoryID    string
		SubcategoryID string
		Description   string
		Frequency     Frequency
		StartDate     time.Time
		EndDate       *time.Time
		LastRunAt     *time.Time
		IsActive      bool
		CreatedAt     time.Time
	}
)

func (r RecurringTransaction) Validate() error {
	switch r.Type {
	case TxExpense, TxIncome, TxTransfer:
	default:
		return errors.New("recurring entries must be expense, income, or transfer")
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	switch r.Frequency {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return errors.New("invalid frequency")
	}
	if r.StartDate.IsZero() {
		return errors.New("start date cannot be zero")
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return errors.New("end date must be after start date")
	}
	return nil
}
