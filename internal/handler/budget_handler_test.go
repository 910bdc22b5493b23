package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/kantong/kantong-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func newBudgetFixture() (*BudgetHandler, *testutil.MockBudgetRepository, *testutil.MockTransactionRepository) {
	budgets := testutil.NewMockBudgetRepository()
	transactions := testutil.NewMockTransactionRepository()
	return NewBudgetHandler(service.NewBudgetService(budgets, transactions)), budgets, transactions
}

func seedBudgetSpend(budgets *testutil.MockBudgetRepository, transactions *testutil.MockTransactionRepository) {
	groceries := "Groceries"
	dining := "Dining"
	budgets.AddBudget(&domain.Budget{ID: 1, WorkspaceID: 1, Category: groceries, BudgetAmount: decimal.NewFromInt(400), Period: domain.PeriodMonthly})
	budgets.AddBudget(&domain.Budget{ID: 2, WorkspaceID: 1, Category: dining, BudgetAmount: decimal.NewFromInt(100), Period: domain.PeriodMonthly})

	march := func(day int) time.Time { return time.Date(2026, 3, day, 12, 0, 0, 0, time.UTC) }
	transactions.AddTransaction(&domain.Transaction{ID: 1, WorkspaceID: 1, AccountID: 1, Description: "Market", Amount: decimal.NewFromInt(300), Type: domain.TransactionTypeExpense, Status: domain.TransactionStatusCompleted, Category: &groceries, Date: march(5)})
	transactions.AddTransaction(&domain.Transaction{ID: 2, WorkspaceID: 1, AccountID: 1, Description: "Pending market", Amount: decimal.NewFromInt(90), Type: domain.TransactionTypeExpense, Status: domain.TransactionStatusPending, Category: &groceries, Date: march(6)})
	transactions.AddTransaction(&domain.Transaction{ID: 3, WorkspaceID: 1, AccountID: 1, Description: "Dinner", Amount: decimal.NewFromInt(120), Type: domain.TransactionTypeExpense, Status: domain.TransactionStatusCompleted, Category: &dining, Date: march(7)})
	transactions.AddTransaction(&domain.Transaction{ID: 4, WorkspaceID: 1, AccountID: 1, Description: "February market", Amount: decimal.NewFromInt(50), Type: domain.TransactionTypeExpense, Status: domain.TransactionStatusCompleted, Category: &groceries, Date: time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)})
}

func TestCreateBudget(t *testing.T) {
	handler, budgets, _ := newBudgetFixture()
	c, rec := newJSONContext(http.MethodPost, "/api/v1/budgets", `{"category":" Groceries ","amount":"450"}`)

	if err := handler.CreateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var response BudgetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Category != "Groceries" {
		t.Errorf("Expected trimmed category, got %q", response.Category)
	}
	if response.BudgetAmount != "450.00" {
		t.Errorf("Expected amount 450.00, got %s", response.BudgetAmount)
	}
	if response.Period != string(domain.PeriodMonthly) {
		t.Errorf("Expected default period monthly, got %s", response.Period)
	}
	if len(budgets.Budgets) != 1 {
		t.Errorf("Expected 1 stored budget, got %d", len(budgets.Budgets))
	}
}

func TestCreateBudget_DuplicateCategory(t *testing.T) {
	handler, budgets, _ := newBudgetFixture()
	budgets.AddBudget(&domain.Budget{ID: 1, WorkspaceID: 1, Category: "Groceries", BudgetAmount: decimal.NewFromInt(100), Period: domain.PeriodMonthly})
	c, rec := newJSONContext(http.MethodPost, "/api/v1/budgets", `{"category":"Groceries","amount":"200","period":"weekly"}`)

	if err := handler.CreateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestCreateBudget_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing category", `{"category":"","amount":"100"}`, "category"},
		{"zero amount", `{"category":"Fuel","amount":"0"}`, "amount"},
		{"bad amount", `{"category":"Fuel","amount":"a lot"}`, "amount"},
		{"unknown period", `{"category":"Fuel","amount":"100","period":"daily"}`, "period"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, _ := newBudgetFixture()
			c, rec := newJSONContext(http.MethodPost, "/api/v1/budgets", tt.body)

			if err := handler.CreateBudget(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", rec.Code)
			}
			problem := decodeProblem(t, rec)
			if len(problem.Errors) != 1 || problem.Errors[0].Field != tt.field {
				t.Errorf("Expected %s field error, got %+v", tt.field, problem.Errors)
			}
		})
	}
}

func TestGetBudgetSummary(t *testing.T) {
	handler, budgets, transactions := newBudgetFixture()
	seedBudgetSpend(budgets, transactions)
	c, rec := newJSONContext(http.MethodGet, "/api/v1/budgets/summary?asOf=2026-03-15", "")

	if err := handler.GetSummary(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var response PortfolioSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.TotalBudgeted != "500.00" {
		t.Errorf("Expected total budgeted 500.00, got %s", response.TotalBudgeted)
	}
	if response.TotalSpent != "420.00" {
		t.Errorf("Expected total spent 420.00, got %s", response.TotalSpent)
	}
	if !response.AnyOver || response.OverBudgetCount != 1 || response.OnTrackCount != 1 {
		t.Errorf("Expected one over and one on track, got %+v", response)
	}

	byCategory := map[string]BudgetStatusResponse{}
	for _, b := range response.Budgets {
		byCategory[b.Category] = b
	}
	groceries := byCategory["Groceries"]
	if groceries.SpentAmount != "300.00" || groceries.Status != string(domain.BudgetStatusSafe) {
		t.Errorf("Expected groceries safe at 300.00, got %s %s", groceries.Status, groceries.SpentAmount)
	}
	if groceries.StartDate != "2026-03-01" || groceries.EndDate != "2026-03-31" {
		t.Errorf("Expected March window, got %s to %s", groceries.StartDate, groceries.EndDate)
	}
	dining := byCategory["Dining"]
	if dining.Status != string(domain.BudgetStatusOver) {
		t.Errorf("Expected dining over, got %s", dining.Status)
	}
	if dining.OverAmount == nil || *dining.OverAmount != "20.00" {
		t.Errorf("Expected over amount 20.00, got %v", dining.OverAmount)
	}
}

func TestGetBudgets_InvalidAsOf(t *testing.T) {
	handler, _, _ := newBudgetFixture()
	c, rec := newJSONContext(http.MethodGet, "/api/v1/budgets?asOf=soon", "")

	if err := handler.GetBudgets(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetBudgetTransactions(t *testing.T) {
	handler, budgets, transactions := newBudgetFixture()
	seedBudgetSpend(budgets, transactions)
	c, rec := newJSONContext(http.MethodGet, "/api/v1/budgets/1/transactions?asOf=2026-03-15", "")
	withParam(c, "id", "1")

	if err := handler.GetBudgetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var response []TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 || response[0].ID != 1 {
		t.Errorf("Expected only the completed March grocery expense, got %+v", response)
	}
}

func TestGetBudget_NotFound(t *testing.T) {
	handler, _, _ := newBudgetFixture()
	c, rec := newJSONContext(http.MethodGet, "/api/v1/budgets/5", "")
	withParam(c, "id", "5")

	if err := handler.GetBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestUpdateBudget_Amount(t *testing.T) {
	handler, budgets, _ := newBudgetFixture()
	budgets.AddBudget(&domain.Budget{ID: 1, WorkspaceID: 1, Category: "Fuel", BudgetAmount: decimal.NewFromInt(100), Period: domain.PeriodMonthly})
	c, rec := newJSONContext(http.MethodPut, "/api/v1/budgets/1", `{"amount":"150.5"}`)
	withParam(c, "id", "1")

	if err := handler.UpdateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var response BudgetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.BudgetAmount != "150.50" {
		t.Errorf("Expected amount 150.50, got %s", response.BudgetAmount)
	}
}

func TestDeleteBudget(t *testing.T) {
	handler, budgets, _ := newBudgetFixture()
	budgets.AddBudget(&domain.Budget{ID: 1, WorkspaceID: 1, Category: "Fuel", BudgetAmount: decimal.NewFromInt(100), Period: domain.PeriodMonthly})
	c, rec := newJSONContext(http.MethodDelete, "/api/v1/budgets/1", "")
	withParam(c, "id", "1")

	if err := handler.DeleteBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rec.Code)
	}
	if len(budgets.Budgets) != 0 {
		t.Error("Expected budget to be deleted")
	}
}
