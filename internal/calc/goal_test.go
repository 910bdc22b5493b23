package calc

import (
	"testing"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoal(target, current string) *domain.Goal {
	return &domain.Goal{
		ID:            1,
		WorkspaceID:   1,
		Name:          "Emergency fund",
		TargetAmount:  decimal.RequireFromString(target),
		CurrentAmount: decimal.RequireFromString(current),
		Priority:      domain.GoalPriorityHigh,
	}
}

func newAccount(balance string) *domain.Account {
	return &domain.Account{
		ID:          1,
		WorkspaceID: 1,
		Name:        "Savings",
		Type:        domain.AccountTypeSavings,
		Balance:     decimal.RequireFromString(balance),
		Currency:    "USD",
	}
}

func TestComputeGoalProgress_Overshoot(t *testing.T) {
	progress := ComputeGoalProgress(newGoal("5000", "5500"))

	assert.True(t, progress.Percent.Equal(decimal.NewFromInt(110)))
	assert.True(t, progress.Achieved)
	assert.True(t, progress.OvershootAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, progress.RemainingAmount.IsZero())
}

func TestComputeGoalProgress_InProgress(t *testing.T) {
	progress := ComputeGoalProgress(newGoal("2000", "500"))

	assert.True(t, progress.Percent.Equal(decimal.NewFromInt(25)))
	assert.False(t, progress.Achieved)
	assert.True(t, progress.OvershootAmount.IsZero())
	assert.True(t, progress.RemainingAmount.Equal(decimal.NewFromInt(1500)))
}

func TestComputeGoalProgress_ExactlyAtTarget(t *testing.T) {
	progress := ComputeGoalProgress(newGoal("1000", "1000"))

	assert.True(t, progress.Achieved)
	assert.True(t, progress.Percent.Equal(decimal.NewFromInt(100)))
	assert.True(t, progress.OvershootAmount.IsZero())
}

func TestComputeGoalProgress_ZeroTarget(t *testing.T) {
	progress := ComputeGoalProgress(newGoal("0", "0"))

	assert.True(t, progress.Percent.IsZero())
	assert.True(t, progress.Achieved)
}

func TestApplyContribution_Success(t *testing.T) {
	account := newAccount("100")
	goal := newGoal("1000", "0")
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	result, err := ApplyContribution(account, goal, decimal.NewFromInt(30), now)

	require.NoError(t, err)
	assert.True(t, result.Account.Balance.Equal(decimal.NewFromInt(70)))
	assert.True(t, result.Goal.CurrentAmount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, now, result.Account.UpdatedAt)
	assert.Equal(t, now, result.Goal.UpdatedAt)

	// inputs are untouched
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)))
	assert.True(t, goal.CurrentAmount.IsZero())
}

func TestApplyContribution_ConservesTotal(t *testing.T) {
	account := newAccount("812.40")
	goal := newGoal("5000", "1234.56")
	before := account.Balance.Add(goal.CurrentAmount)

	result, err := ApplyContribution(account, goal, decimal.RequireFromString("212.40"), time.Now())

	require.NoError(t, err)
	assert.True(t, result.Account.Balance.Add(result.Goal.CurrentAmount).Equal(before))
}

func TestApplyContribution_ExactBalance(t *testing.T) {
	result, err := ApplyContribution(newAccount("100"), newGoal("1000", "0"), decimal.NewFromInt(100), time.Now())

	require.NoError(t, err)
	assert.True(t, result.Account.Balance.IsZero())
}

func TestApplyContribution_InsufficientFunds(t *testing.T) {
	account := newAccount("100")
	goal := newGoal("1000", "0")

	result, err := ApplyContribution(account, goal, decimal.NewFromInt(150), time.Now())

	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Nil(t, result)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)))
	assert.True(t, goal.CurrentAmount.IsZero())
}

func TestApplyContribution_InvalidAmount(t *testing.T) {
	for _, amount := range []string{"0", "-5", "-0.01"} {
		t.Run(amount, func(t *testing.T) {
			account := newAccount("100")
			goal := newGoal("1000", "0")

			result, err := ApplyContribution(account, goal, decimal.RequireFromString(amount), time.Now())

			assert.ErrorIs(t, err, domain.ErrInvalidAmount)
			assert.Nil(t, result)
			assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)))
		})
	}
}

func TestApplyContribution_CopiesTargetDate(t *testing.T) {
	target := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	goal := newGoal("1000", "0")
	goal.TargetDate = &target

	result, err := ApplyContribution(newAccount("100"), goal, decimal.NewFromInt(10), time.Now())

	require.NoError(t, err)
	require.NotNil(t, result.Goal.TargetDate)
	assert.NotSame(t, goal.TargetDate, result.Goal.TargetDate)
	assert.Equal(t, target, *result.Goal.TargetDate)
}

func TestApplyContribution_ReachesTarget(t *testing.T) {
	result, err := ApplyContribution(newAccount("500"), newGoal("1000", "900"), decimal.NewFromInt(150), time.Now())
	require.NoError(t, err)

	progress := ComputeGoalProgress(result.Goal)

	assert.True(t, progress.Achieved)
	assert.True(t, progress.OvershootAmount.Equal(decimal.NewFromInt(50)))
}
