package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kantong/kantong-backend/internal/middleware"
	"github.com/kantong/kantong-backend/internal/repository/memory"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rejectingTokenValidator struct{}

func (rejectingTokenValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	return nil, errors.New("token rejected")
}

func newDemoData(store *memory.Store) *DataHandlers {
	accounts := store.Accounts()
	transactions := store.Transactions()
	budgets := store.Budgets()
	goals := store.Goals()

	return &DataHandlers{
		Account:     NewAccountHandler(service.NewAccountService(accounts, nil)),
		Transaction: NewTransactionHandler(service.NewTransactionService(transactions, accounts, budgets, nil), service.NewTranscriptService(accounts, budgets), nil),
		Budget:      NewBudgetHandler(service.NewBudgetService(budgets, transactions)),
		Goal:        NewGoalHandler(service.NewGoalService(goals, nil)),
		Report:      NewReportHandler(service.NewReportService(transactions)),
		Dashboard:   NewDashboardHandler(service.NewDashboardService(accounts, transactions, budgets, goals, nil)),
	}
}

func newDemoServer(t *testing.T, rpm, burst int) *echo.Echo {
	t.Helper()
	limiter := middleware.NewRateLimiterWithConfig(rpm, burst)
	t.Cleanup(limiter.Stop)

	e := echo.New()
	RegisterDemoRoutes(e, memory.GuestWorkspaceID, limiter, newDemoData(memory.NewSeededStore(memory.GuestWorkspaceID)))
	return e
}

func TestDemoRoutes_ServeGuestWorkspaceWithoutAuth(t *testing.T) {
	e := newDemoServer(t, 60, 10)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/demo/accounts", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Limit"))

	var resp AccountListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "25849.50", resp.TotalBalance)
	assert.NotEmpty(t, resp.Accounts)
}

func TestDemoRoutes_WritesPersistInGuestStore(t *testing.T) {
	e := newDemoServer(t, 60, 10)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/demo/accounts", strings.NewReader(`{"name":"Demo Wallet","type":"cash","initialBalance":"100"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/demo/accounts", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AccountListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "25949.50", resp.TotalBalance)
}

func TestDemoRoutes_RateLimited(t *testing.T) {
	e := newDemoServer(t, 1, 1)

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/demo/dashboard", nil))
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	second := httptest.NewRecorder()
	e.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/v1/demo/dashboard", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestRoutes_ProtectedRequireToken(t *testing.T) {
	e := echo.New()
	auth := middleware.NewAuthMiddlewareWithValidator(rejectingTokenValidator{}, nil)
	store := memory.NewSeededStore(memory.GuestWorkspaceID)
	RegisterRoutes(e, auth, newDemoData(store), &AccountHandlers{})

	tests := []struct {
		name   string
		method string
		path   string
		header string
	}{
		{"accounts without header", http.MethodGet, "/api/v1/accounts", ""},
		{"dashboard without header", http.MethodGet, "/api/v1/dashboard", ""},
		{"me with bad scheme", http.MethodGet, "/api/v1/auth/me", "Basic abc"},
		{"budgets with rejected token", http.MethodGet, "/api/v1/budgets", "Bearer nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/problem+json")
		})
	}
}
