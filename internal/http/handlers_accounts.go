package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/core"
)

type accountRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	InitialBalance string `json:"initialBalance,omitempty"`
}

type accountResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		OwnerID:   a.OwnerID,
		Name:      a.Name,
		Type:      string(a.Type),
		Balance:   a.Balance.String(),
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, err)
		return
	}
	name := sanitizeInput(req.Name)
	if name == "" {
		writeInvalid(w, errEmptyName)
		return
	}
	if !core.ValidAccountType(core.AccountType(req.Type)) {
		writeInvalid(w, errInvalidEnum("type", req.Type))
		return
	}
	balance := decimal.Zero
	if strings.TrimSpace(req.InitialBalance) != "" {
		balance, err = core.ParseSignedAmount(req.InitialBalance)
		if err != nil {
			writeInvalid(w, err)
			return
		}
	}

	now := time.Now().UTC()
	account := core.Account{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		Name:      name,
		Type:      core.AccountType(req.Type),
		Balance:   balance,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.ledger.Store().CreateAccount(r.Context(), account); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	accounts, err := s.ledger.Store().ListAccounts(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

type categoryRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID string `json:"parentId,omitempty"`
}

type categoryResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId,omitempty"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	ParentID  string `json:"parentId,omitempty"`
	IsDefault bool   `json:"isDefault"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      c.Name,
		Type:      string(c.Type),
		ParentID:  c.ParentID,
		IsDefault: c.IsDefault,
	}
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, err)
		return
	}
	name := sanitizeInput(req.Name)
	if name == "" {
		writeInvalid(w, errEmptyName)
		return
	}
	typ := core.CategoryType(req.Type)
	if typ != core.CategoryExpense && typ != core.CategoryIncome {
		writeInvalid(w, errInvalidEnum("type", req.Type))
		return
	}

	category := core.Category{
		ID:       uuid.NewString(),
		OwnerID:  owner,
		Name:     name,
		Type:     typ,
		ParentID: strings.TrimSpace(req.ParentID),
	}
	if err := s.ledger.Store().CreateCategory(r.Context(), category); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	categories, err := s.ledger.Store().ListCategories(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

type userRequest struct {
	ID       string `json:"id,omitempty"`
	Mode     string `json:"mode"`
	Settings string `json:"settings,omitempty"`
}

type userResponse struct {
	ID        string `json:"id"`
	Mode      string `json:"mode"`
	Settings  string `json:"settings,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, err)
		return
	}
	mode := core.UserMode(req.Mode)
	if mode == "" {
		mode = core.ModeGuest
	}
	if mode != core.ModeGuest && mode != core.ModeAuthenticated {
		writeInvalid(w, errInvalidEnum("mode", req.Mode))
		return
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}

	user := core.User{
		ID:        id,
		Mode:      mode,
		Settings:  req.Settings,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ledger.Store().CreateUser(r.Context(), user); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{
		ID:        user.ID,
		Mode:      string(user.Mode),
		Settings:  user.Settings,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	})
}
