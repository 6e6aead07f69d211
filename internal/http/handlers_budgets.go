package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/core"
)

type budgetRequest struct {
	Name            string   `json:"name"`
	CategoryIDs     []string `json:"categoryIds"`
	Amount          string   `json:"amount"`
	Period          string   `json:"period"`
	StartDate       string   `json:"startDate"`
	EndDate         string   `json:"endDate,omitempty"`
	Rollover        bool     `json:"rollover,omitempty"`
	AlertThresholds []int    `json:"alertThresholds,omitempty"`
}

type budgetResponse struct {
	ID              string   `json:"id"`
	OwnerID         string   `json:"ownerId"`
	Name            string   `json:"name"`
	CategoryIDs     []string `json:"categoryIds"`
	Amount          string   `json:"amount"`
	Period          string   `json:"period"`
	StartDate       string   `json:"startDate"`
	EndDate         string   `json:"endDate,omitempty"`
	Rollover        bool     `json:"rollover"`
	AlertThresholds []int    `json:"alertThresholds,omitempty"`
	CreatedAt       string   `json:"createdAt"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:              b.ID,
		OwnerID:         b.OwnerID,
		Name:            b.Name,
		CategoryIDs:     b.CategoryIDs,
		Amount:          b.Amount.String(),
		Period:          string(b.Period),
		StartDate:       b.StartDate.Format("2006-01-02"),
		EndDate:         formatOptionalDate(b.EndDate),
		Rollover:        b.Rollover,
		AlertThresholds: b.AlertThresholds,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
	}
}

type budgetProgressResponse struct {
	BudgetID           string  `json:"budgetId"`
	Spent              string  `json:"spent"`
	Remaining          string  `json:"remaining"`
	Percentage         float64 `json:"percentage"`
	TotalDays          int     `json:"totalDays"`
	DaysRemaining      int     `json:"daysRemaining"`
	DaysPassed         int     `json:"daysPassed"`
	DailyAverage       string  `json:"dailyAverage"`
	ProjectedSpending  string  `json:"projectedSpending"`
	ProjectedRemaining string  `json:"projectedRemaining"`
	DailyBudget        string  `json:"dailyBudget"`
	ActiveAlerts       []int   `json:"activeAlerts,omitempty"`
	IsOverBudget       bool    `json:"isOverBudget"`
	IsWarning          bool    `json:"isWarning"`
}

func toBudgetProgressResponse(p core.BudgetProgress) budgetProgressResponse {
	return budgetProgressResponse{
		BudgetID:           p.BudgetID,
		Spent:              p.Spent.String(),
		Remaining:          p.Remaining.String(),
		Percentage:         p.Percentage,
		TotalDays:          p.TotalDays,
		DaysRemaining:      p.DaysRemaining,
		DaysPassed:         p.DaysPassed,
		DailyAverage:       p.DailyAverage.String(),
		ProjectedSpending:  p.ProjectedSpending.String(),
		ProjectedRemaining: p.ProjectedRemaining.String(),
		DailyBudget:        p.DailyBudget.String(),
		ActiveAlerts:       p.ActiveAlerts,
		IsOverBudget:       p.IsOverBudget,
		IsWarning:          p.IsWarning,
	}
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, err)
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		writeInvalid(w, err)
		return
	}

	budget := core.Budget{
		ID:              uuid.NewString(),
		OwnerID:         owner,
		Name:            sanitizeInput(req.Name),
		CategoryIDs:     req.CategoryIDs,
		Amount:          amount,
		Period:          core.BudgetPeriod(req.Period),
		StartDate:       startDate,
		EndDate:         endDate,
		Rollover:        req.Rollover,
		AlertThresholds: req.AlertThresholds,
		CreatedAt:       time.Now().UTC(),
	}
	if err := budget.Validate(); err != nil {
		writeInvalid(w, err)
		return
	}
	if err := s.ledger.Store().CreateBudget(r.Context(), budget); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetResponse(budget))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	budgets, err := s.ledger.Store().ListBudgets(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleBudgetProgress recomputes progress from the live transaction set on
// every call; nothing is cached between requests.
func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	budget, err := s.ledger.Store().GetBudget(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	txns, err := s.ledger.Store().ListTransactions(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	progress := core.BudgetProgressOf(budget, txns, time.Now().UTC())
	writeJSON(w, http.StatusOK, toBudgetProgressResponse(progress))
}
