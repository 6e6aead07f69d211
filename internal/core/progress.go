package core

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetProgress is a derived read model. It is recomputed from the current
// transaction set on every read and is never persisted or cached, so two
// calls with identical inputs always return identical output.
type BudgetProgress struct {
	BudgetID           string
	Spent              decimal.Decimal
	Remaining          decimal.Decimal
	Percentage         float64
	TotalDays          int
	DaysRemaining      int
	DaysPassed         int
	DailyAverage       decimal.Decimal
	ProjectedSpending  decimal.Decimal
	ProjectedRemaining decimal.Decimal
	DailyBudget        decimal.Decimal
	ActiveAlerts       []int // triggered thresholds, descending
	IsOverBudget       bool
	IsWarning          bool
}

// GoalProgress is the derived read model for a savings or debt goal.
type GoalProgress struct {
	GoalID                      string
	Percentage                  float64
	Remaining                   decimal.Decimal
	HasDeadline                 bool
	DaysUntilDeadline           int
	RequiredMonthlyContribution decimal.Decimal
	ExpectedProgress            float64
	IsOnTrack                   bool
}

// BudgetProgressOf derives spend totals, projections, and alert state for a
// budget from the given transaction set.
//
// Only expense transactions whose category belongs to the budget and whose
// date falls in [startDate, endDate] (endDate defaulting to now for
// open-ended budgets) count toward spent. Time-based projections run against
// the budget's period window: the explicit end date when present, otherwise
// one period length from the start date.
func BudgetProgressOf(b Budget, txns []Transaction, now time.Time) BudgetProgress {
	categories := make(map[string]bool, len(b.CategoryIDs))
	for _, id := range b.CategoryIDs {
		categories[id] = true
	}

	filterEnd := now
	if b.EndDate != nil {
		filterEnd = *b.EndDate
	}

	spent := decimal.Zero
	for _, t := range txns {
		if t.Type != TxExpense || !categories[t.CategoryID] {
			continue
		}
		if t.Date.Before(b.StartDate) || t.Date.After(filterEnd) {
			continue
		}
		spent = spent.Add(t.Amount.Abs())
	}

	p := BudgetProgress{
		BudgetID:  b.ID,
		Spent:     spent,
		Remaining: b.Amount.Sub(spent),
	}
	if b.Amount.IsPositive() {
		p.Percentage = spent.Div(b.Amount).InexactFloat64() * 100
	}

	periodEnd := periodEndOf(b)
	p.TotalDays = ceilDays(periodEnd.Sub(b.StartDate))
	p.DaysRemaining = max(0, ceilDays(periodEnd.Sub(now)))
	p.DaysPassed = max(1, p.TotalDays-p.DaysRemaining)

	p.DailyAverage = spent.Div(decimal.NewFromInt(int64(p.DaysPassed)))
	p.ProjectedSpending = p.DailyAverage.Mul(decimal.NewFromInt(int64(p.TotalDays)))
	p.ProjectedRemaining = b.Amount.Sub(p.ProjectedSpending)
	if p.DaysRemaining > 0 {
		p.DailyBudget = p.Remaining.Div(decimal.NewFromInt(int64(p.DaysRemaining)))
	} else {
		p.DailyBudget = decimal.Zero
	}

	for _, threshold := range b.AlertThresholds {
		if p.Percentage >= float64(threshold) {
			p.ActiveAlerts = append(p.ActiveAlerts, threshold)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(p.ActiveAlerts)))

	p.IsOverBudget = spent.GreaterThan(b.Amount)
	p.IsWarning = len(p.ActiveAlerts) > 0 && !containsInt(p.ActiveAlerts, 100)

	return p
}

// GoalProgressOf derives completion state for a goal. The on-track heuristic
// compares actual progress against a linear expected-progress curve from the
// goal's creation to its deadline, with a 10% tolerance band.
func GoalProgressOf(g Goal, now time.Time) GoalProgress {
	p := GoalProgress{
		GoalID:                      g.ID,
		Remaining:                   g.TargetAmount.Sub(g.CurrentAmount),
		RequiredMonthlyContribution: decimal.Zero,
		IsOnTrack:                   true,
	}
	if g.TargetAmount.IsPositive() {
		p.Percentage = g.CurrentAmount.Div(g.TargetAmount).InexactFloat64() * 100
	}

	if g.Deadline == nil {
		return p
	}
	p.HasDeadline = true
	p.DaysUntilDeadline = max(0, ceilDays(g.Deadline.Sub(now)))

	if p.DaysUntilDeadline > 0 && p.Remaining.IsPositive() {
		// remaining / (days/30)
		p.RequiredMonthlyContribution = p.Remaining.
			Mul(decimal.NewFromInt(30)).
			Div(decimal.NewFromInt(int64(p.DaysUntilDeadline)))
	}

	total := g.Deadline.Sub(g.CreatedAt)
	if total > 0 {
		elapsed := now.Sub(g.CreatedAt)
		expected := float64(elapsed) / float64(total) * 100
		p.ExpectedProgress = math.Min(100, math.Max(0, expected))
		p.IsOnTrack = p.Percentage >= p.ExpectedProgress*0.9
	}

	return p
}

// periodEndOf returns the end of the budget's projection window: the
// explicit end date, or one period length after the start date.
func periodEndOf(b Budget) time.Time {
	if b.EndDate != nil {
		return *b.EndDate
	}
	switch b.Period {
	case PeriodWeekly:
		return b.StartDate.AddDate(0, 0, 7)
	case PeriodYearly:
		return b.StartDate.AddDate(1, 0, 0)
	default:
		return b.StartDate.AddDate(0, 1, 0)
	}
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}

func containsInt(s []int, v int) bool {
	for _, n := range s {
		if n == v {
			return true
		}
	}
	return false
}
