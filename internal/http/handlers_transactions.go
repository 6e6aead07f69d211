package http

import (
	"net/http"
	"time"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/core"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/ledger"
)

type transactionRequest struct {
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	AccountID     string `json:"accountId"`
	ToAccountID   string `json:"toAccountId,omitempty"`
	CategoryID    string `json:"categoryId,omitempty"`
	SubcategoryID string `json:"subcategoryId,omitempty"`
	GoalID        string `json:"goalId,omitempty"`
	Description   string `json:"description,omitempty"`
	Date          string `json:"date"`
	IsEssential   bool   `json:"isEssential,omitempty"`
}

// toInput validates the request as the schema boundary: positive amount,
// known type, per-type required references. The engine trusts the result.
func (req transactionRequest) toInput() (ledger.Input, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return ledger.Input{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return ledger.Input{}, err
	}
	input := ledger.Input{
		Type:          core.TransactionType(req.Type),
		Amount:        amount,
		AccountID:     req.AccountID,
		ToAccountID:   req.ToAccountID,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		GoalID:        req.GoalID,
		Description:   sanitizeInput(req.Description),
		Date:          date,
		IsEssential:   req.IsEssential,
	}
	probe := core.Transaction{
		Type:          input.Type,
		Amount:        input.Amount,
		AccountID:     input.AccountID,
		ToAccountID:   input.ToAccountID,
		CategoryID:    input.CategoryID,
		SubcategoryID: input.SubcategoryID,
		GoalID:        input.GoalID,
		Description:   input.Description,
		Date:          input.Date,
	}
	if err := probe.Validate(); err != nil {
		return ledger.Input{}, err
	}
	return input, nil
}

type transactionPatchRequest struct {
	Type          *string `json:"type,omitempty"`
	Amount        *string `json:"amount,omitempty"`
	AccountID     *string `json:"accountId,omitempty"`
	ToAccountID   *string `json:"toAccountId,omitempty"`
	CategoryID    *string `json:"categoryId,omitempty"`
	SubcategoryID *string `json:"subcategoryId,omitempty"`
	GoalID        *string `json:"goalId,omitempty"`
	Description   *string `json:"description,omitempty"`
	Date          *string `json:"date,omitempty"`
	IsEssential   *bool   `json:"isEssential,omitempty"`
}

func (req transactionPatchRequest) toPatch() (ledger.Patch, error) {
	var p ledger.Patch
	if req.Type != nil {
		t := core.TransactionType(*req.Type)
		if !core.ValidTransactionType(t) {
			return ledger.Patch{}, errInvalidEnum("type", *req.Type)
		}
		p.Type = &t
	}
	if req.Amount != nil {
		amount, err := core.ParseAmount(*req.Amount)
		if err != nil {
			return ledger.Patch{}, err
		}
		p.Amount = &amount
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return ledger.Patch{}, err
		}
		p.Date = &date
	}
	if req.Description != nil {
		d := sanitizeInput(*req.Description)
		p.Description = &d
	}
	p.AccountID = req.AccountID
	p.ToAccountID = req.ToAccountID
	p.CategoryID = req.CategoryID
	p.SubcategoryID = req.SubcategoryID
	p.GoalID = req.GoalID
	p.IsEssential = req.IsEssential
	return p, nil
}

type transactionResponse struct {
	ID            string `json:"id"`
	OwnerID       string `json:"ownerId"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	AccountID     string `json:"accountId"`
	ToAccountID   string `json:"toAccountId,omitempty"`
	CategoryID    string `json:"categoryId,omitempty"`
	SubcategoryID string `json:"subcategoryId,omitempty"`
	GoalID        string `json:"goalId,omitempty"`
	Description   string `json:"description,omitempty"`
	Date          string `json:"date"`
	IsEssential   bool   `json:"isEssential"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		OwnerID:       t.OwnerID,
		Type:          string(t.Type),
		Amount:        t.Amount.String(),
		AccountID:     t.AccountID,
		ToAccountID:   t.ToAccountID,
		CategoryID:    t.CategoryID,
		SubcategoryID: t.SubcategoryID,
		GoalID:        t.GoalID,
		Description:   t.Description,
		Date:          t.Date.Format("2006-01-02"),
		IsEssential:   t.IsEssential,
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     t.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeInvalid(w, err)
		return
	}
	t, err := s.ledger.CreateTransaction(r.Context(), owner, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transactionPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeInvalid(w, err)
		return
	}
	t, err := s.ledger.UpdateTransaction(r.Context(), owner, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var txns []core.Transaction
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from != "" || to != "" {
		// Either bound may be omitted for an open-ended range.
		var fromDate time.Time
		if from != "" {
			fromDate, err = parseDate(from)
			if err != nil {
				writeInvalid(w, err)
				return
			}
		}
		toDate := time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
		if to != "" {
			day, err := parseDate(to)
			if err != nil {
				writeInvalid(w, err)
				return
			}
			toDate = day.Add(24*time.Hour - time.Nanosecond)
		}
		txns, err = s.ledger.Store().ListTransactionsInRange(r.Context(), owner, fromDate, toDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
	} else {
		txns, err = s.ledger.Store().ListTransactions(r.Context(), owner)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	out := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}
