package core

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBudgetProgressOf(t *testing.T) {
	budget := Budget{
		ID:              "b1",
		Name:            "Groceries",
		CategoryIDs:     []string{"food"},
		Amount:          decimal.NewFromInt(200),
		Period:          PeriodMonthly,
		StartDate:       date(2025, 6, 1),
		AlertThresholds: []int{50, 75, 90, 100},
	}
	txns := []Transaction{
		{Type: TxExpense, Amount: decimal.NewFromInt(80), CategoryID: "food", Date: date(2025, 6, 5)},
		{Type: TxExpense, Amount: decimal.NewFromInt(999), CategoryID: "rent", Date: date(2025, 6, 5)},  // other category
		{Type: TxIncome, Amount: decimal.NewFromInt(999), CategoryID: "food", Date: date(2025, 6, 5)},   // not an expense
		{Type: TxExpense, Amount: decimal.NewFromInt(999), CategoryID: "food", Date: date(2025, 5, 20)}, // before window
	}
	now := date(2025, 6, 11)

	p := BudgetProgressOf(budget, txns, now)

	if got := p.Spent.String(); got != "80" {
		t.Fatalf("spent: got %s want 80", got)
	}
	if got := p.Remaining.String(); got != "120" {
		t.Fatalf("remaining: got %s want 120", got)
	}
	if p.Percentage != 40 {
		t.Fatalf("percentage: got %v want 40", p.Percentage)
	}
	if len(p.ActiveAlerts) != 0 {
		t.Fatalf("no threshold should trigger at 40%%, got %v", p.ActiveAlerts)
	}
	if p.IsOverBudget || p.IsWarning {
		t.Fatalf("40%% of budget must be neither over nor warning")
	}
	if p.TotalDays != 30 || p.DaysPassed != 10 || p.DaysRemaining != 20 {
		t.Fatalf("window: total=%d passed=%d remaining=%d", p.TotalDays, p.DaysPassed, p.DaysRemaining)
	}
	if got := p.DailyAverage.String(); got != "8" {
		t.Fatalf("daily average: got %s want 8", got)
	}
	if got := p.ProjectedSpending.String(); got != "240" {
		t.Fatalf("projected spending: got %s want 240", got)
	}
	if got := p.DailyBudget.String(); got != "6" {
		t.Fatalf("daily budget: got %s want 6", got)
	}
}

func TestBudgetProgressIsDeterministic(t *testing.T) {
	budget := Budget{
		ID:              "b1",
		CategoryIDs:     []string{"food"},
		Amount:          decimal.NewFromInt(300),
		Period:          PeriodMonthly,
		StartDate:       date(2025, 6, 1),
		AlertThresholds: []int{50, 100},
	}
	txns := []Transaction{
		{Type: TxExpense, Amount: decimal.NewFromInt(180), CategoryID: "food", Date: date(2025, 6, 3)},
	}
	now := date(2025, 6, 10)

	first := BudgetProgressOf(budget, txns, now)
	second := BudgetProgressOf(budget, txns, now)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same inputs produced different output:\n%+v\n%+v", first, second)
	}

	// Moving now forward without new transactions only shifts the
	// time-based fields; spend totals and alerts stay put.
	later := BudgetProgressOf(budget, txns, now.AddDate(0, 0, 5))
	if !later.Spent.Equal(first.Spent) || later.Percentage != first.Percentage {
		t.Fatalf("spend changed without new transactions: %+v vs %+v", first, later)
	}
	if !reflect.DeepEqual(later.ActiveAlerts, first.ActiveAlerts) {
		t.Fatalf("alerts changed without new transactions: %v vs %v", first.ActiveAlerts, later.ActiveAlerts)
	}
}

func TestBudgetProgressAlerts(t *testing.T) {
	budget := Budget{
		CategoryIDs:     []string{"c"},
		Amount:          decimal.NewFromInt(100),
		Period:          PeriodMonthly,
		StartDate:       date(2025, 6, 1),
		AlertThresholds: []int{50, 75, 90, 100},
	}
	now := date(2025, 6, 15)

	cases := []struct {
		spent      int64
		alerts     []int
		overBudget bool
		warning    bool
	}{
		{40, nil, false, false},
		{75, []int{75, 50}, false, true},
		{95, []int{90, 75, 50}, false, true},
		{100, []int{100, 90, 75, 50}, false, false},
		{130, []int{100, 90, 75, 50}, true, false},
	}
	for _, tc := range cases {
		txns := []Transaction{
			{Type: TxExpense, Amount: decimal.NewFromInt(tc.spent), CategoryID: "c", Date: date(2025, 6, 10)},
		}
		p := BudgetProgressOf(budget, txns, now)
		if !reflect.DeepEqual(p.ActiveAlerts, tc.alerts) {
			t.Fatalf("spent %d: alerts got %v want %v", tc.spent, p.ActiveAlerts, tc.alerts)
		}
		if p.IsOverBudget != tc.overBudget {
			t.Fatalf("spent %d: over budget got %v want %v", tc.spent, p.IsOverBudget, tc.overBudget)
		}
		if p.IsWarning != tc.warning {
			t.Fatalf("spent %d: warning got %v want %v", tc.spent, p.IsWarning, tc.warning)
		}
	}
}

func TestGoalProgressOf(t *testing.T) {
	deadline := date(2025, 7, 1)
	goal := Goal{
		ID:            "g1",
		Type:          GoalSavings,
		TargetAmount:  decimal.NewFromInt(1000),
		CurrentAmount: decimal.NewFromInt(500),
		Deadline:      &deadline,
		CreatedAt:     date(2025, 5, 2),
	}
	now := date(2025, 6, 1)

	p := GoalProgressOf(goal, now)

	if p.Percentage != 50 {
		t.Fatalf("percentage: got %v want 50", p.Percentage)
	}
	if got := p.Remaining.String(); got != "500" {
		t.Fatalf("remaining: got %s want 500", got)
	}
	if !p.HasDeadline || p.DaysUntilDeadline != 30 {
		t.Fatalf("deadline: has=%v days=%d", p.HasDeadline, p.DaysUntilDeadline)
	}
	// 500 remaining over exactly one 30-day month.
	if got := p.RequiredMonthlyContribution.String(); got != "500" {
		t.Fatalf("required monthly: got %s want 500", got)
	}
	if p.ExpectedProgress != 50 {
		t.Fatalf("expected progress: got %v want 50", p.ExpectedProgress)
	}
	if !p.IsOnTrack {
		t.Fatal("50%% actual against 50%% expected must be on track")
	}
}

func TestGoalProgressBehindSchedule(t *testing.T) {
	deadline := date(2025, 7, 1)
	goal := Goal{
		TargetAmount:  decimal.NewFromInt(1000),
		CurrentAmount: decimal.NewFromInt(100),
		Deadline:      &deadline,
		CreatedAt:     date(2025, 5, 2),
	}
	p := GoalProgressOf(goal, date(2025, 6, 1))
	if p.IsOnTrack {
		t.Fatalf("10%% actual against %v%% expected must be behind", p.ExpectedProgress)
	}
}

func TestGoalProgressWithoutDeadline(t *testing.T) {
	goal := Goal{
		TargetAmount:  decimal.NewFromInt(400),
		CurrentAmount: decimal.NewFromInt(100),
		CreatedAt:     date(2025, 5, 2),
	}
	p := GoalProgressOf(goal, date(2025, 6, 1))
	if p.HasDeadline {
		t.Fatal("goal has no deadline")
	}
	if p.Percentage != 25 {
		t.Fatalf("percentage: got %v want 25", p.Percentage)
	}
	if !p.IsOnTrack {
		t.Fatal("goals without deadlines are always on track")
	}
	if !p.RequiredMonthlyContribution.IsZero() {
		t.Fatalf("required monthly without deadline: got %s", p.RequiredMonthlyContribution)
	}
}
