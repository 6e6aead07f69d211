package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/core"
)

type goalRequest struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	TargetAmount  string `json:"targetAmount"`
	CurrentAmount string `json:"currentAmount,omitempty"`
	Deadline      string `json:"deadline,omitempty"`
	AccountID     string `json:"accountId,omitempty"`
}

type goalResponse struct {
	ID            string `json:"id"`
	OwnerID       string `json:"ownerId"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	TargetAmount  string `json:"targetAmount"`
	CurrentAmount string `json:"currentAmount"`
	Deadline      string `json:"deadline,omitempty"`
	AccountID     string `json:"accountId,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
}

func toGoalResponse(g core.Goal) goalResponse {
	return goalResponse{
		ID:            g.ID,
		OwnerID:       g.OwnerID,
		Name:          g.Name,
		Type:          string(g.Type),
		TargetAmount:  g.TargetAmount.String(),
		CurrentAmount: g.CurrentAmount.String(),
		Deadline:      formatOptionalDate(g.Deadline),
		AccountID:     g.AccountID,
		Status:        string(g.Status),
		CreatedAt:     g.CreatedAt.Format(time.RFC3339),
	}
}

type goalProgressResponse struct {
	GoalID                      string  `json:"goalId"`
	Percentage                  float64 `json:"percentage"`
	Remaining                   string  `json:"remaining"`
	HasDeadline                 bool    `json:"hasDeadline"`
	DaysUntilDeadline           int     `json:"daysUntilDeadline,omitempty"`
	RequiredMonthlyContribution string  `json:"requiredMonthlyContribution"`
	ExpectedProgress            float64 `json:"expectedProgress"`
	IsOnTrack                   bool    `json:"isOnTrack"`
}

type goalEventRequest struct {
	Amount      string `json:"amount"`
	AccountID   string `json:"accountId"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, err)
		return
	}
	target, err := core.ParseAmount(req.TargetAmount)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	current := decimal.Zero
	if req.CurrentAmount != "" {
		if current, err = core.ParseSignedAmount(req.CurrentAmount); err != nil {
			writeInvalid(w, err)
			return
		}
	}
	deadline, err := parseOptionalDate(req.Deadline)
	if err != nil {
		writeInvalid(w, err)
		return
	}

	goal := core.Goal{
		ID:            uuid.NewString(),
		OwnerID:       owner,
		Name:          sanitizeInput(req.Name),
		Type:          core.GoalType(req.Type),
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      deadline,
		AccountID:     req.AccountID,
		Status:        core.GoalActive,
		CreatedAt:     time.Now().UTC(),
	}
	if err := goal.Validate(); err != nil {
		writeInvalid(w, err)
		return
	}
	if err := s.ledger.Store().CreateGoal(r.Context(), goal); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalResponse(goal))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	goals, err := s.ledger.Store().ListGoals(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDeleteGoal removes the goal and its transaction history, restoring
// every linked account balance on the way out.
func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteGoal(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	goal, err := s.ledger.Store().GetGoal(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	p := core.GoalProgressOf(goal, time.Now().UTC())
	writeJSON(w, http.StatusOK, goalProgressResponse{
		GoalID:                      p.GoalID,
		Percentage:                  p.Percentage,
		Remaining:                   p.Remaining.String(),
		HasDeadline:                 p.HasDeadline,
		DaysUntilDeadline:           p.DaysUntilDeadline,
		RequiredMonthlyContribution: p.RequiredMonthlyContribution.String(),
		ExpectedProgress:            p.ExpectedProgress,
		IsOnTrack:                   p.IsOnTrack,
	})
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	s.handleGoalEvent(w, r, true)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleGoalEvent(w, r, false)
}

func (s *Server) handleGoalEvent(w http.ResponseWriter, r *http.Request, contribute bool) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req goalEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, err)
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeInvalid(w, err)
		return
	}

	goalID := r.PathValue("id")
	description := sanitizeInput(req.Description)
	var t core.Transaction
	if contribute {
		t, err = s.ledger.ContributeToGoal(r.Context(), owner, goalID, amount, req.AccountID, description)
	} else {
		t, err = s.ledger.WithdrawFromGoal(r.Context(), owner, goalID, amount, req.AccountID, description)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(t))
}

type recurringRequest struct {
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	AccountID     string `json:"accountId"`
	ToAccountID   string `json:"toAccountId,omitempty"`
	CategoryID    string `json:"categoryId,omitempty"`
	SubcategoryID string `json:"subcategoryId,omitempty"`
	Description   string `json:"description,omitempty"`
	Frequency     string `json:"frequency"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate,omitempty"`
}

type recurringResponse struct {
	ID            string `json:"id"`
	OwnerID       string `json:"ownerId"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	AccountID     string `json:"accountId"`
	ToAccountID   string `json:"toAccountId,omitempty"`
	CategoryID    string `json:"categoryId,omitempty"`
	SubcategoryID string `json:"subcategoryId,omitempty"`
	Description   string `json:"description,omitempty"`
	Frequency     string `json:"frequency"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate,omitempty"`
	IsActive      bool   `json:"isActive"`
	CreatedAt     string `json:"createdAt"`
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req recurringRequest
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

	template := core.RecurringTransaction{
		ID:            uuid.NewString(),
		OwnerID:       owner,
		Type:          core.TransactionType(req.Type),
		Amount:        amount,
		AccountID:     req.AccountID,
		ToAccountID:   req.ToAccountID,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		Description:   sanitizeInput(req.Description),
		Frequency:     core.Frequency(req.Frequency),
		StartDate:     startDate,
		EndDate:       endDate,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := template.Validate(); err != nil {
		writeInvalid(w, err)
		return
	}
	if err := s.ledger.Store().CreateRecurringTransaction(r.Context(), template); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recurringResponse{
		ID:            template.ID,
		OwnerID:       template.OwnerID,
		Type:          string(template.Type),
		Amount:        template.Amount.String(),
		AccountID:     template.AccountID,
		ToAccountID:   template.ToAccountID,
		CategoryID:    template.CategoryID,
		SubcategoryID: template.SubcategoryID,
		Description:   template.Description,
		Frequency:     string(template.Frequency),
		StartDate:     template.StartDate.Format("2006-01-02"),
		EndDate:       formatOptionalDate(template.EndDate),
		IsActive:      template.IsActive,
		CreatedAt:     template.CreatedAt.Format(time.RFC3339),
	})
}
