package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountBank       AccountType = "bank"
	AccountCredit     AccountType = "credit"
	AccountCash       AccountType = "cash"
	AccountInvestment AccountType = "investment"
	AccountWallet     AccountType = "wallet"
)

const (
	TxExpense          TransactionType = "expense"
	TxIncome           TransactionType = "income"
	TxTransfer         TransactionType = "transfer"
	TxGoalContribution TransactionType = "goal-contribution"
	TxGoalWithdrawal   TransactionType = "goal-withdrawal"
)

const (
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

const (
	GoalSavings GoalType = "savings"
	GoalDebt    GoalType = "debt"
)

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

const (
	CategoryExpense CategoryType = "expense"
	CategoryIncome  CategoryType = "income"
)

const (
	ModeGuest         UserMode = "guest"
	ModeAuthenticated UserMode = "authenticated"
)

type (
	AccountType     string
	TransactionType string
	BudgetPeriod    string
	GoalType        string
	GoalStatus      string
	CategoryType    string
	UserMode        string

	// Account holds a running balance. The balance field is mutated only by
	// the ledger engine; it always equals the signed sum of every surviving
	// ledger entry that references the account.
	Account struct {
		ID        string
		OwnerID   string
		Name      string
		Type      AccountType
		Balance   decimal.Decimal
		IsActive  bool
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// Transaction is a ledger entry. Amount is always non-negative; the sign
	// of its balance effect is derived from Type.
	Transaction struct {
		ID            string
		OwnerID       string
		Type          TransactionType
		Amount        decimal.Decimal
		AccountID     string
		ToAccountID   string // transfers only
		CategoryID    string
		SubcategoryID string
		GoalID        string // goal events only
		Description   string
		Date          time.Time
		IsEssential   bool
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}

	Budget struct {
		ID              string
		OwnerID         string
		Name            string
		CategoryIDs     []string
		Amount          decimal.Decimal
		Period          BudgetPeriod
		StartDate       time.Time
		EndDate         *time.Time
		Rollover        bool
		AlertThresholds []int // ascending percentages
		CreatedAt       time.Time
	}

	Goal struct {
		ID            string
		OwnerID       string
		Name          string
		Type          GoalType
		TargetAmount  decimal.Decimal
		CurrentAmount decimal.Decimal
		Deadline      *time.Time
		AccountID     string
		Status        GoalStatus
		CreatedAt     time.Time
	}

	Category struct {
		ID        string
		OwnerID   string
		Name      string
		Type      CategoryType
		ParentID  string
		IsDefault bool
	}

	User struct {
		ID        string
		Mode      UserMode
		Settings  string // opaque JSON blob owned by the UI layer
		CreatedAt time.Time
	}
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// ValidTransactionType reports whether t is one of the enumerated types.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TxExpense, TxIncome, TxTransfer, TxGoalContribution, TxGoalWithdrawal:
		return true
	}
	return false
}

// ValidAccountType reports whether t is one of the enumerated types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountBank, AccountCredit, AccountCash, AccountInvestment, AccountWallet:
		return true
	}
	return false
}

// ValidBudgetPeriod reports whether p is one of the enumerated periods.
func ValidBudgetPeriod(p BudgetPeriod) bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if !ValidTransactionType(t.Type) {
		return errors.New("invalid transaction type")
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return errors.New("missing account id")
	}
	switch t.Type {
	case TxExpense, TxIncome:
		if strings.TrimSpace(t.CategoryID) == "" {
			return errors.New("missing category id")
		}
	case TxTransfer:
		if strings.TrimSpace(t.ToAccountID) == "" {
			return errors.New("missing destination account id")
		}
		if t.ToAccountID == t.AccountID {
			return errors.New("transfer source and destination must differ")
		}
	case TxGoalContribution, TxGoalWithdrawal:
		if strings.TrimSpace(t.GoalID) == "" {
			return errors.New("missing goal id")
		}
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return errors.New("empty budget name")
	}
	if len(b.CategoryIDs) == 0 {
		return errors.New("budget needs at least one category")
	}
	if b.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !ValidBudgetPeriod(b.Period) {
		return errors.New("invalid budget period")
	}
	if b.StartDate.IsZero() {
		return errors.New("start date cannot be zero")
	}
	if b.EndDate != nil && b.EndDate.Before(b.StartDate) {
		return errors.New("end date must be after start date")
	}
	for i := 1; i < len(b.AlertThresholds); i++ {
		if b.AlertThresholds[i] <= b.AlertThresholds[i-1] {
			return errors.New("alert thresholds must be ascending")
		}
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return errors.New("empty goal name")
	}
	if g.Type != GoalSavings && g.Type != GoalDebt {
		return errors.New("invalid goal type")
	}
	if !g.TargetAmount.IsPositive() {
		return errors.New("target amount must be positive")
	}
	if g.CurrentAmount.IsNegative() {
		return errors.New("current amount cannot be negative")
	}
	return nil
}
