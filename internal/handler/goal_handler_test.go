package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/kantong/kantong-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

type goalFixture struct {
	handler  *GoalHandler
	accounts *testutil.MockAccountRepository
	goals    *testutil.MockGoalRepository
	events   *testutil.MockEventPublisher
	alerts   *testutil.MockAlertPublisher
}

func newGoalFixture() *goalFixture {
	accounts := testutil.NewMockAccountRepository()
	accounts.AddAccount(&domain.Account{ID: 1, WorkspaceID: 1, Name: "Savings", Type: domain.AccountTypeSavings, Balance: decimal.RequireFromString("500.00"), Currency: "USD"})
	goals := testutil.NewMockGoalRepository(accounts)
	goals.AddGoal(&domain.Goal{ID: 1, WorkspaceID: 1, Name: "Vacation", TargetAmount: decimal.NewFromInt(1000), CurrentAmount: decimal.NewFromInt(900), Priority: domain.GoalPriorityHigh})

	events := &testutil.MockEventPublisher{}
	alertPublisher := &testutil.MockAlertPublisher{}
	alerts := service.NewAlertService(alertPublisher, nil)
	alerts.SetEventPublisher(events)
	svc := service.NewGoalService(goals, alerts)
	svc.SetEventPublisher(events)
	return &goalFixture{handler: NewGoalHandler(svc), accounts: accounts, goals: goals, events: events, alerts: alertPublisher}
}

func TestCreateGoal(t *testing.T) {
	f := newGoalFixture()
	c, rec := newJSONContext(http.MethodPost, "/api/v1/goals", `{"name":"New Laptop","targetAmount":"2000","currentAmount":"500","targetDate":"2026-12-01"}`)

	if err := f.handler.CreateGoal(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var response GoalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Priority != string(domain.GoalPriorityMedium) {
		t.Errorf("Expected default priority medium, got %s", response.Priority)
	}
	if response.Progress.Percent != "25.00" {
		t.Errorf("Expected 25.00 percent, got %s", response.Progress.Percent)
	}
	if response.Progress.RemainingAmount != "1500.00" {
		t.Errorf("Expected remaining 1500.00, got %s", response.Progress.RemainingAmount)
	}
	if response.TargetDate == nil || *response.TargetDate != "2026-12-01" {
		t.Errorf("Expected target date 2026-12-01, got %v", response.TargetDate)
	}
}

func TestCreateGoal_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing name", `{"name":"","targetAmount":"100"}`, "name"},
		{"zero target", `{"name":"Car","targetAmount":"0"}`, "targetAmount"},
		{"bad target", `{"name":"Car","targetAmount":"much"}`, "targetAmount"},
		{"unknown priority", `{"name":"Car","targetAmount":"100","priority":"urgent"}`, "priority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGoalFixture()
			c, rec := newJSONContext(http.MethodPost, "/api/v1/goals", tt.body)

			if err := f.handler.CreateGoal(c); err != nil {
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

func TestContribute_ReachesGoal(t *testing.T) {
	f := newGoalFixture()
	c, rec := newJSONContext(http.MethodPost, "/api/v1/goals/1/contributions", `{"accountId":1,"amount":"150","note":"bonus"}`)
	withParam(c, "id", "1")

	if err := f.handler.Contribute(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var response ContributionResultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Account.Balance != "350.00" {
		t.Errorf("Expected account balance 350.00, got %s", response.Account.Balance)
	}
	if response.Goal.CurrentAmount != "1050.00" {
		t.Errorf("Expected goal amount 1050.00, got %s", response.Goal.CurrentAmount)
	}
	if !response.Goal.Progress.Achieved || response.Goal.Progress.OvershootAmount != "50.00" {
		t.Errorf("Expected achieved with 50.00 overshoot, got %+v", response.Goal.Progress)
	}
	if response.Contribution.Amount != "150.00" {
		t.Errorf("Expected contribution 150.00, got %s", response.Contribution.Amount)
	}

	types := f.events.Types()
	if len(types) != 2 || types[0] != "contribution.created" || types[1] != "goal.achieved" {
		t.Errorf("Expected contribution.created then goal.achieved, got %v", types)
	}
	if len(f.alerts.Alerts) != 1 || f.alerts.Alerts[0].Type != domain.NotificationGoalAchieved {
		t.Errorf("Expected one goal achieved alert, got %+v", f.alerts.Alerts)
	}
}

func TestContribute_InsufficientFunds(t *testing.T) {
	f := newGoalFixture()
	c, rec := newJSONContext(http.MethodPost, "/api/v1/goals/1/contributions", `{"accountId":1,"amount":"500.01"}`)
	withParam(c, "id", "1")

	if err := f.handler.Contribute(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", rec.Code)
	}
	if got := f.accounts.Accounts[1].Balance.StringFixed(2); got != "500.00" {
		t.Errorf("Expected balance unchanged at 500.00, got %s", got)
	}
	if got := f.goals.Goals[1].CurrentAmount.StringFixed(2); got != "900.00" {
		t.Errorf("Expected goal unchanged at 900.00, got %s", got)
	}
}

func TestContribute_Errors(t *testing.T) {
	tests := []struct {
		name   string
		goalID string
		body   string
		status int
	}{
		{"unknown goal", "9", `{"accountId":1,"amount":"10"}`, http.StatusNotFound},
		{"unknown account", "1", `{"accountId":9,"amount":"10"}`, http.StatusNotFound},
		{"zero amount", "1", `{"accountId":1,"amount":"0"}`, http.StatusBadRequest},
		{"bad amount", "1", `{"accountId":1,"amount":"ten"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGoalFixture()
			c, rec := newJSONContext(http.MethodPost, "/api/v1/goals/"+tt.goalID+"/contributions", tt.body)
			withParam(c, "id", tt.goalID)

			if err := f.handler.Contribute(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestGetContributions(t *testing.T) {
	f := newGoalFixture()
	for _, amount := range []string{"10", "20"} {
		c, rec := newJSONContext(http.MethodPost, "/api/v1/goals/1/contributions", `{"accountId":1,"amount":"`+amount+`"}`)
		withParam(c, "id", "1")
		if err := f.handler.Contribute(c); err != nil || rec.Code != http.StatusCreated {
			t.Fatalf("Failed to contribute %s: %v %d", amount, err, rec.Code)
		}
	}

	c, rec := newJSONContext(http.MethodGet, "/api/v1/goals/1/contributions", "")
	withParam(c, "id", "1")
	if err := f.handler.GetContributions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var response []ContributionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("Expected 2 contributions, got %d", len(response))
	}
	if response[0].Amount != "20.00" {
		t.Errorf("Expected newest first, got %s", response[0].Amount)
	}
}

func TestUpdateGoal_ClearTargetDate(t *testing.T) {
	f := newGoalFixture()
	c, rec := newJSONContext(http.MethodPut, "/api/v1/goals/1", `{"name":"Beach trip","targetDate":""}`)
	withParam(c, "id", "1")

	if err := f.handler.UpdateGoal(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var response GoalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "Beach trip" {
		t.Errorf("Expected renamed goal, got %s", response.Name)
	}
	if response.TargetDate != nil {
		t.Errorf("Expected no target date, got %v", *response.TargetDate)
	}
}

func TestUpdateGoal_SetCurrentAmount(t *testing.T) {
	f := newGoalFixture()
	c, rec := newJSONContext(http.MethodPut, "/api/v1/goals/1", `{"currentAmount":"1000"}`)
	withParam(c, "id", "1")

	if err := f.handler.UpdateGoal(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var response GoalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.CurrentAmount != "1000.00" || !response.Progress.Achieved {
		t.Errorf("Expected achieved goal at 1000.00, got %s %+v", response.CurrentAmount, response.Progress)
	}
	if got := f.accounts.Accounts[1].Balance.StringFixed(2); got != "500.00" {
		t.Errorf("Expected account balance untouched, got %s", got)
	}

	types := f.events.Types()
	if len(types) != 2 || types[0] != "goal.updated" || types[1] != "goal.achieved" {
		t.Errorf("Expected goal.updated then goal.achieved, got %v", types)
	}
	if len(f.alerts.Alerts) != 1 || f.alerts.Alerts[0].Type != domain.NotificationGoalAchieved {
		t.Errorf("Expected one goal achieved alert, got %+v", f.alerts.Alerts)
	}
}

func TestUpdateGoal_InvalidCurrentAmount(t *testing.T) {
	for _, body := range []string{`{"currentAmount":"-5"}`, `{"currentAmount":"lots"}`} {
		f := newGoalFixture()
		c, rec := newJSONContext(http.MethodPut, "/api/v1/goals/1", body)
		withParam(c, "id", "1")

		if err := f.handler.UpdateGoal(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("Expected status 400 for %s, got %d", body, rec.Code)
		}
		problem := decodeProblem(t, rec)
		if len(problem.Errors) != 1 || problem.Errors[0].Field != "currentAmount" {
			t.Errorf("Expected currentAmount field error for %s, got %+v", body, problem.Errors)
		}
		if got := f.goals.Goals[1].CurrentAmount.StringFixed(2); got != "900.00" {
			t.Errorf("Expected goal amount unchanged, got %s", got)
		}
	}
}

func TestDeleteGoal(t *testing.T) {
	f := newGoalFixture()
	c, rec := newJSONContext(http.MethodDelete, "/api/v1/goals/1", "")
	withParam(c, "id", "1")

	if err := f.handler.DeleteGoal(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rec.Code)
	}
	if len(f.goals.Goals) != 0 {
		t.Error("Expected goal to be deleted")
	}
}
