package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/services"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc := services.NewLedgerService(store, nil)
	srv := NewServer(":0", svc, 1000)
	t.Cleanup(func() {
		srv.Shutdown(context.Background())
		svc.Close()
	})
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, owner string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if owner != "" {
		req.Header.Set(ownerHeader, owner)
	}
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestMissingOwnerHeader(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/transactions", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want 401", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, srv, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: got %d want 200", path, rec.Code)
		}
	}
}

func TestExpenseFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/accounts", "u1", map[string]any{
		"name": "Checking", "type": "bank", "initialBalance": "100",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account: got %d body %s", rec.Code, rec.Body)
	}
	account := decodeBody[accountResponse](t, rec)

	rec = doJSON(t, srv, http.MethodPost, "/transactions", "u1", map[string]any{
		"type": "expense", "amount": "30", "accountId": account.ID,
		"categoryId": "food", "date": "2025-06-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense: got %d body %s", rec.Code, rec.Body)
	}
	txn := decodeBody[transactionResponse](t, rec)
	if txn.Amount != "30" || txn.OwnerID != "u1" {
		t.Fatalf("transaction: %+v", txn)
	}

	rec = doJSON(t, srv, http.MethodGet, "/accounts", "u1", nil)
	accounts := decodeBody[[]accountResponse](t, rec)
	if len(accounts) != 1 || accounts[0].Balance != "70" {
		t.Fatalf("accounts after expense: %+v", accounts)
	}

	// Another owner sees none of it.
	rec = doJSON(t, srv, http.MethodGet, "/transactions", "u2", nil)
	if txns := decodeBody[[]transactionResponse](t, rec); len(txns) != 0 {
		t.Fatalf("cross-owner leak: %+v", txns)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/transactions/"+txn.ID, "u1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/accounts", "u1", nil)
	if accounts := decodeBody[[]accountResponse](t, rec); accounts[0].Balance != "100" {
		t.Fatalf("balance after delete: %+v", accounts)
	}
}

func TestTransactionValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	cases := []struct {
		name string
		body map[string]any
	}{
		{"unknown type", map[string]any{"type": "loan", "amount": "10", "accountId": "a", "categoryId": "c", "date": "2025-06-01"}},
		{"negative amount", map[string]any{"type": "expense", "amount": "-10", "accountId": "a", "categoryId": "c", "date": "2025-06-01"}},
		{"expense without category", map[string]any{"type": "expense", "amount": "10", "accountId": "a", "date": "2025-06-01"}},
		{"transfer to itself", map[string]any{"type": "transfer", "amount": "10", "accountId": "a", "toAccountId": "a", "date": "2025-06-01"}},
		{"bad date", map[string]any{"type": "expense", "amount": "10", "accountId": "a", "categoryId": "c", "date": "junk"}},
		{"unknown field", map[string]any{"type": "expense", "amount": "10", "accountId": "a", "categoryId": "c", "date": "2025-06-01", "color": "red"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/transactions", "u1", tc.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("got %d body %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestUpdateUnknownTransaction(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPatch, "/transactions/nope", "u1", map[string]any{"amount": "5"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d want 404", rec.Code)
	}
}

func TestUpdateCannotBreakTypeContract(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/accounts", "u1", map[string]any{
		"name": "Checking", "type": "bank", "initialBalance": "100",
	})
	account := decodeBody[accountResponse](t, rec)

	rec = doJSON(t, srv, http.MethodPost, "/transactions", "u1", map[string]any{
		"type": "expense", "amount": "30", "accountId": account.ID,
		"categoryId": "food", "date": "2025-06-01",
	})
	txn := decodeBody[transactionResponse](t, rec)

	// Retyping to a transfer without supplying a destination would leave a
	// transfer with no second account.
	rec = doJSON(t, srv, http.MethodPatch, "/transactions/"+txn.ID, "u1", map[string]any{
		"type": "transfer",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("retype without destination: got %d body %s", rec.Code, rec.Body)
	}

	// The stored entry and the balance are untouched.
	rec = doJSON(t, srv, http.MethodGet, "/transactions", "u1", nil)
	txns := decodeBody[[]transactionResponse](t, rec)
	if len(txns) != 1 || txns[0].Type != "expense" {
		t.Fatalf("transactions after failed retype: %+v", txns)
	}
	rec = doJSON(t, srv, http.MethodGet, "/accounts", "u1", nil)
	if accounts := decodeBody[[]accountResponse](t, rec); accounts[0].Balance != "70" {
		t.Fatalf("balance after failed retype: %+v", accounts)
	}
}

func TestListTransactionsDateRange(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/accounts", "u1", map[string]any{
		"name": "Checking", "type": "bank", "initialBalance": "100",
	})
	account := decodeBody[accountResponse](t, rec)

	for _, date := range []string{"2025-03-01", "2025-06-15", "2025-09-30"} {
		rec = doJSON(t, srv, http.MethodPost, "/transactions", "u1", map[string]any{
			"type": "expense", "amount": "10", "accountId": account.ID,
			"categoryId": "food", "date": date,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create expense on %s: got %d body %s", date, rec.Code, rec.Body)
		}
	}

	cases := []struct {
		name  string
		query string
		want  int
	}{
		{"both bounds", "?from=2025-06-01&to=2025-06-30", 1},
		{"from only", "?from=2025-06-01", 2},
		{"to only", "?to=2025-06-30", 2},
		{"empty window", "?from=2025-07-01&to=2025-07-31", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodGet, "/transactions"+tc.query, "u1", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("got %d body %s", rec.Code, rec.Body)
			}
			if txns := decodeBody[[]transactionResponse](t, rec); len(txns) != tc.want {
				t.Fatalf("got %d transactions want %d: %+v", len(txns), tc.want, txns)
			}
		})
	}

	rec = doJSON(t, srv, http.MethodGet, "/transactions?from=junk", "u1", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("malformed bound: got %d", rec.Code)
	}
}

func TestCreateWithEmptyNameRejected(t *testing.T) {
	srv := newTestServer(t)
	cases := []struct {
		name string
		path string
		body map[string]any
	}{
		{"account", "/accounts", map[string]any{"name": "  ", "type": "bank"}},
		{"category", "/categories", map[string]any{"name": "", "type": "expense"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, tc.path, "u1", tc.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("got %d body %s", rec.Code, rec.Body)
			}
			if resp := decodeBody[errorResponse](t, rec); resp.Error != errEmptyName.Error() {
				t.Fatalf("error message: %q", resp.Error)
			}
		})
	}
}

func TestGoalFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/accounts", "u1", map[string]any{
		"name": "Checking", "type": "bank", "initialBalance": "100",
	})
	account := decodeBody[accountResponse](t, rec)

	rec = doJSON(t, srv, http.MethodPost, "/goals", "u1", map[string]any{
		"name": "Vacation", "type": "savings", "targetAmount": "1000",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal: got %d body %s", rec.Code, rec.Body)
	}
	goal := decodeBody[goalResponse](t, rec)

	rec = doJSON(t, srv, http.MethodPost, "/goals/"+goal.ID+"/contributions", "u1", map[string]any{
		"amount": "60", "accountId": account.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("contribute: got %d body %s", rec.Code, rec.Body)
	}

	// More than the goal holds.
	rec = doJSON(t, srv, http.MethodPost, "/goals/"+goal.ID+"/withdrawals", "u1", map[string]any{
		"amount": "200", "accountId": account.ID,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("overdrawn withdrawal: got %d body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodGet, "/goals/"+goal.ID+"/progress", "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress: got %d", rec.Code)
	}
	progress := decodeBody[goalProgressResponse](t, rec)
	if progress.Percentage != 6 {
		t.Fatalf("percentage: got %v want 6", progress.Percentage)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/goals/"+goal.ID, "u1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete goal: got %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/accounts", "u1", nil)
	if accounts := decodeBody[[]accountResponse](t, rec); accounts[0].Balance != "100" {
		t.Fatalf("balance after goal delete: %+v", accounts)
	}
}

func TestBudgetProgressEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/accounts", "u1", map[string]any{
		"name": "Checking", "type": "bank", "initialBalance": "500",
	})
	account := decodeBody[accountResponse](t, rec)

	rec = doJSON(t, srv, http.MethodPost, "/budgets", "u1", map[string]any{
		"name": "Groceries", "categoryIds": []string{"food"}, "amount": "200",
		"period": "monthly", "startDate": "2025-01-01",
		"alertThresholds": []int{50, 75, 100},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget: got %d body %s", rec.Code, rec.Body)
	}
	budget := decodeBody[budgetResponse](t, rec)

	rec = doJSON(t, srv, http.MethodPost, "/transactions", "u1", map[string]any{
		"type": "expense", "amount": "80", "accountId": account.ID,
		"categoryId": "food", "date": "2025-01-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense: got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/budgets/%s/progress", budget.ID), "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress: got %d body %s", rec.Code, rec.Body)
	}
	progress := decodeBody[budgetProgressResponse](t, rec)
	if progress.Spent != "80" || progress.Percentage != 40 {
		t.Fatalf("progress: %+v", progress)
	}
}

func TestMigrationEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/users", "", map[string]any{"id": "guest-1", "mode": "guest"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user: got %d body %s", rec.Code, rec.Body)
	}
	rec = doJSON(t, srv, http.MethodPost, "/accounts", "guest-1", map[string]any{
		"name": "Checking", "type": "bank",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account: got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/identity/migrations", "", map[string]any{
		"fromUserId": "guest-1", "toUserId": "auth-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("migrate: got %d body %s", rec.Code, rec.Body)
	}
	result := decodeBody[map[string]int64](t, rec)
	if result["accounts"] != 1 {
		t.Fatalf("migration result: %v", result)
	}

	rec = doJSON(t, srv, http.MethodGet, "/accounts", "auth-1", nil)
	if accounts := decodeBody[[]accountResponse](t, rec); len(accounts) != 1 {
		t.Fatalf("accounts under new owner: %+v", accounts)
	}

	// Migrating the same identity twice fails: the source user is gone.
	rec = doJSON(t, srv, http.MethodPost, "/identity/migrations", "", map[string]any{
		"fromUserId": "guest-1", "toUserId": "auth-1",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeat migration: got %d want 404", rec.Code)
	}
}
