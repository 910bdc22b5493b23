package service

import (
	"testing"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var goalTestNow = time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)

type goalFixture struct {
	svc      *GoalService
	goals    *testutil.MockGoalRepository
	accounts *testutil.MockAccountRepository
	alerts   *testutil.MockAlertPublisher
	events   *testutil.MockEventPublisher
}

func newGoalFixture() *goalFixture {
	accounts := testutil.NewMockAccountRepository()
	accounts.AddAccount(&domain.Account{ID: 1, WorkspaceID: 1, Name: "Savings", Type: domain.AccountTypeSavings, Balance: decimal.NewFromInt(500)})
	goals := testutil.NewMockGoalRepository(accounts)
	goals.AddGoal(&domain.Goal{
		ID:            1,
		WorkspaceID:   1,
		Name:          "Emergency fund",
		TargetAmount:  decimal.NewFromInt(1000),
		CurrentAmount: decimal.NewFromInt(700),
		Priority:      domain.GoalPriorityHigh,
	})

	publisher := &testutil.MockAlertPublisher{}
	events := &testutil.MockEventPublisher{}
	alerts := NewAlertService(publisher, nil)
	alerts.SetEventPublisher(events)

	svc := NewGoalService(goals, alerts)
	svc.SetEventPublisher(events)
	svc.now = func() time.Time { return goalTestNow }

	return &goalFixture{svc: svc, goals: goals, accounts: accounts, alerts: publisher, events: events}
}

func TestCreateGoal(t *testing.T) {
	f := newGoalFixture()
	target := time.Date(2026, 1, 15, 18, 45, 0, 0, time.UTC)

	goal, err := f.svc.CreateGoal(1, CreateGoalInput{
		Name:          " Holiday ",
		TargetAmount:  decimal.NewFromInt(2000),
		CurrentAmount: decimal.NewFromInt(500),
		TargetDate:    &target,
	})

	require.NoError(t, err)
	assert.Equal(t, "Holiday", goal.Goal.Name)
	assert.Equal(t, domain.GoalPriorityMedium, goal.Goal.Priority)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), *goal.Goal.TargetDate)
	assert.Equal(t, "25.00", goal.Progress.Percent.StringFixed(2))
	assert.False(t, goal.Progress.Achieved)
	assert.Equal(t, "1500.00", goal.Progress.RemainingAmount.StringFixed(2))
	assert.Equal(t, []string{"goal.created"}, f.events.Types())
}

func TestCreateGoal_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateGoalInput
		wantErr error
	}{
		{"missing name", CreateGoalInput{Name: "", TargetAmount: decimal.NewFromInt(1)}, domain.ErrNameRequired},
		{"zero target", CreateGoalInput{Name: "Car", TargetAmount: decimal.Zero}, domain.ErrInvalidArgument},
		{"negative current", CreateGoalInput{Name: "Car", TargetAmount: decimal.NewFromInt(1), CurrentAmount: decimal.NewFromInt(-1)}, domain.ErrInvalidAmount},
		{"unknown priority", CreateGoalInput{Name: "Car", TargetAmount: decimal.NewFromInt(1), Priority: "urgent"}, domain.ErrInvalidGoalPriority},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGoalFixture()
			_, err := f.svc.CreateGoal(1, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, f.goals.Goals, 1)
		})
	}
}

func TestGetGoal_Progress(t *testing.T) {
	f := newGoalFixture()

	goal, err := f.svc.GetGoal(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "70.00", goal.Progress.Percent.StringFixed(2))

	goals, err := f.svc.GetGoals(1)
	require.NoError(t, err)
	assert.Len(t, goals, 1)

	_, err = f.svc.GetGoal(2, 1)
	assert.ErrorIs(t, err, domain.ErrGoalNotFound)
}

func TestContribute_Success(t *testing.T) {
	f := newGoalFixture()
	note := "  June savings "

	result, err := f.svc.Contribute(1, 1, ContributeInput{AccountID: 1, Amount: decimal.NewFromInt(200), Note: &note})

	require.NoError(t, err)
	assert.Equal(t, "300.00", result.Account.Balance.StringFixed(2))
	assert.Equal(t, "900.00", result.Goal.CurrentAmount.StringFixed(2))
	require.NotNil(t, result.Contribution)
	assert.Equal(t, "200.00", result.Contribution.Amount.StringFixed(2))
	assert.Equal(t, "June savings", *result.Contribution.Note)

	assert.Equal(t, "300.00", f.accounts.Accounts[1].Balance.StringFixed(2))
	assert.Equal(t, "900.00", f.goals.Goals[1].CurrentAmount.StringFixed(2))
	assert.Equal(t, goalTestNow, f.goals.Goals[1].UpdatedAt)
	assert.Equal(t, []string{"contribution.created"}, f.events.Types())
	assert.Empty(t, f.alerts.Alerts)

	contributions, err := f.svc.GetContributions(1, 1)
	require.NoError(t, err)
	assert.Len(t, contributions, 1)
}

func TestContribute_ExactBalanceIsAllowed(t *testing.T) {
	f := newGoalFixture()

	result, err := f.svc.Contribute(1, 1, ContributeInput{AccountID: 1, Amount: decimal.NewFromInt(500)})

	require.NoError(t, err)
	assert.True(t, result.Account.Balance.IsZero())
}

func TestContribute_Failures(t *testing.T) {
	tests := []struct {
		name    string
		goalID  int32
		input   ContributeInput
		wantErr error
	}{
		{"insufficient funds", 1, ContributeInput{AccountID: 1, Amount: decimal.NewFromFloat(500.01)}, domain.ErrInsufficientFunds},
		{"zero amount", 1, ContributeInput{AccountID: 1, Amount: decimal.Zero}, domain.ErrInvalidAmount},
		{"negative amount", 1, ContributeInput{AccountID: 1, Amount: decimal.NewFromInt(-10)}, domain.ErrInvalidAmount},
		{"unknown account", 1, ContributeInput{AccountID: 9, Amount: decimal.NewFromInt(10)}, domain.ErrAccountNotFound},
		{"unknown goal", 9, ContributeInput{AccountID: 1, Amount: decimal.NewFromInt(10)}, domain.ErrGoalNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGoalFixture()

			_, err := f.svc.Contribute(1, tt.goalID, tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, "500.00", f.accounts.Accounts[1].Balance.StringFixed(2))
			assert.Equal(t, "700.00", f.goals.Goals[1].CurrentAmount.StringFixed(2))
			assert.Empty(t, f.goals.Contributions)
			assert.Empty(t, f.events.Types())
		})
	}
}

func TestContribute_AchievesGoal(t *testing.T) {
	f := newGoalFixture()

	result, err := f.svc.Contribute(1, 1, ContributeInput{AccountID: 1, Amount: decimal.NewFromInt(350)})
	require.NoError(t, err)

	progress := withProgress(result.Goal).Progress
	assert.True(t, progress.Achieved)
	assert.Equal(t, "50.00", progress.OvershootAmount.StringFixed(2))
	assert.Equal(t, "105.00", progress.Percent.StringFixed(2))

	require.Len(t, f.alerts.Alerts, 1)
	assert.Equal(t, domain.NotificationGoalAchieved, f.alerts.Alerts[0].Type)
	assert.Equal(t, "Emergency fund reached", f.alerts.Alerts[0].Title)
	assert.Equal(t, []string{"contribution.created", "goal.achieved"}, f.events.Types())

	// already achieved: no second alert
	_, err = f.svc.Contribute(1, 1, ContributeInput{AccountID: 1, Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Len(t, f.alerts.Alerts, 1)
}

func TestUpdateGoal(t *testing.T) {
	f := newGoalFixture()
	target := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	updated, err := f.svc.UpdateGoal(1, 1, UpdateGoalInput{Name: ptr("Rainy day"), TargetDate: &target, Priority: ptr(domain.GoalPriorityLow)})
	require.NoError(t, err)
	assert.Equal(t, "Rainy day", updated.Goal.Name)
	assert.Equal(t, domain.GoalPriorityLow, updated.Goal.Priority)
	require.NotNil(t, updated.Goal.TargetDate)

	updated, err = f.svc.UpdateGoal(1, 1, UpdateGoalInput{ClearTargetDate: true, TargetDate: &target})
	require.NoError(t, err)
	assert.Nil(t, updated.Goal.TargetDate)

	_, err = f.svc.UpdateGoal(1, 1, UpdateGoalInput{TargetAmount: ptr(decimal.NewFromInt(-5))})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = f.svc.UpdateGoal(1, 1, UpdateGoalInput{Priority: ptr(domain.GoalPriority("someday"))})
	assert.ErrorIs(t, err, domain.ErrInvalidGoalPriority)
}

func TestUpdateGoal_LoweringTargetAchievesGoal(t *testing.T) {
	f := newGoalFixture()

	updated, err := f.svc.UpdateGoal(1, 1, UpdateGoalInput{TargetAmount: ptr(decimal.NewFromInt(700))})

	require.NoError(t, err)
	assert.True(t, updated.Progress.Achieved)
	require.Len(t, f.alerts.Alerts, 1)
	assert.Equal(t, []string{"goal.updated", "goal.achieved"}, f.events.Types())
}

func TestUpdateGoal_CurrentAmountEdit(t *testing.T) {
	f := newGoalFixture()

	updated, err := f.svc.UpdateGoal(1, 1, UpdateGoalInput{CurrentAmount: ptr(decimal.NewFromInt(1000))})

	require.NoError(t, err)
	assert.Equal(t, "1000.00", updated.Goal.CurrentAmount.StringFixed(2))
	assert.True(t, updated.Progress.Achieved)
	assert.Equal(t, "500.00", f.accounts.Accounts[1].Balance.StringFixed(2))
	assert.Empty(t, f.goals.Contributions)
	require.Len(t, f.alerts.Alerts, 1)
	assert.Equal(t, domain.NotificationGoalAchieved, f.alerts.Alerts[0].Type)
	assert.Equal(t, []string{"goal.updated", "goal.achieved"}, f.events.Types())

	// lowering it again is allowed and raises nothing new
	updated, err = f.svc.UpdateGoal(1, 1, UpdateGoalInput{CurrentAmount: ptr(decimal.NewFromInt(200))})
	require.NoError(t, err)
	assert.False(t, updated.Progress.Achieved)
	assert.Len(t, f.alerts.Alerts, 1)
}

func TestUpdateGoal_NegativeCurrentAmount(t *testing.T) {
	f := newGoalFixture()

	_, err := f.svc.UpdateGoal(1, 1, UpdateGoalInput{CurrentAmount: ptr(decimal.NewFromInt(-1))})

	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Equal(t, "700.00", f.goals.Goals[1].CurrentAmount.StringFixed(2))
	assert.Empty(t, f.events.Types())
}

// racingGoalRepository lands a contribution after UpdateGoal is called but
// before the edit reaches the stored row.
type racingGoalRepository struct {
	*testutil.MockGoalRepository
	contribute func()
}

func (r *racingGoalRepository) Update(workspaceID int32, id int32, edit domain.GoalEditor) (*domain.Goal, error) {
	if r.contribute != nil {
		r.contribute()
		r.contribute = nil
	}
	return r.MockGoalRepository.Update(workspaceID, id, edit)
}

func TestUpdateGoal_KeepsContributionMadeDuringEdit(t *testing.T) {
	f := newGoalFixture()
	repo := &racingGoalRepository{MockGoalRepository: f.goals}
	svc := NewGoalService(repo, nil)
	svc.now = func() time.Time { return goalTestNow }
	repo.contribute = func() {
		_, err := svc.Contribute(1, 1, ContributeInput{AccountID: 1, Amount: decimal.NewFromInt(30)})
		require.NoError(t, err)
	}

	updated, err := svc.UpdateGoal(1, 1, UpdateGoalInput{Name: ptr("Rainy day")})

	require.NoError(t, err)
	assert.Equal(t, "Rainy day", updated.Goal.Name)
	assert.Equal(t, "730.00", updated.Goal.CurrentAmount.StringFixed(2))
	assert.Equal(t, "730.00", f.goals.Goals[1].CurrentAmount.StringFixed(2))
	assert.Equal(t, "470.00", f.accounts.Accounts[1].Balance.StringFixed(2))
}

func TestDeleteGoal(t *testing.T) {
	f := newGoalFixture()

	require.NoError(t, f.svc.DeleteGoal(1, 1))
	assert.Empty(t, f.goals.Goals)
	assert.ErrorIs(t, f.svc.DeleteGoal(1, 1), domain.ErrGoalNotFound)
}

func TestGoalService_NilAlerts(t *testing.T) {
	accounts := testutil.NewMockAccountRepository()
	accounts.AddAccount(&domain.Account{ID: 1, WorkspaceID: 1, Balance: decimal.NewFromInt(100)})
	goals := testutil.NewMockGoalRepository(accounts)
	goals.AddGoal(&domain.Goal{ID: 1, WorkspaceID: 1, Name: "Bike", TargetAmount: decimal.NewFromInt(50), CurrentAmount: decimal.Zero})
	svc := NewGoalService(goals, nil)

	result, err := svc.Contribute(1, 1, ContributeInput{AccountID: 1, Amount: decimal.NewFromInt(60)})

	require.NoError(t, err)
	assert.Equal(t, "60.00", result.Goal.CurrentAmount.StringFixed(2))
}
