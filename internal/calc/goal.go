package calc

import (
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// ComputeGoalProgress derives percent complete, achievement and overshoot.
// Percent is not capped at 100.
func ComputeGoalProgress(goal *domain.Goal) domain.GoalProgress {
	progress := domain.GoalProgress{
		Percent:         PercentOf(goal.CurrentAmount, goal.TargetAmount),
		Achieved:        goal.CurrentAmount.GreaterThanOrEqual(goal.TargetAmount),
		OvershootAmount: decimal.Zero,
		RemainingAmount: decimal.Zero,
	}
	if progress.Achieved {
		progress.OvershootAmount = goal.CurrentAmount.Sub(goal.TargetAmount)
	} else {
		progress.RemainingAmount = goal.TargetAmount.Sub(goal.CurrentAmount)
	}
	return progress
}

// ApplyContribution moves amount from account into goal. The inputs are left
// untouched; the result holds updated copies of both entities, or an error and nothing.
func ApplyContribution(account *domain.Account, goal *domain.Goal, amount decimal.Decimal, now time.Time) (*domain.ContributionResult, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if amount.GreaterThan(account.Balance) {
		return nil, domain.ErrInsufficientFunds
	}

	updatedAccount := *account
	updatedAccount.Balance = account.Balance.Sub(amount)
	updatedAccount.UpdatedAt = now

	updatedGoal := *goal
	if goal.TargetDate != nil {
		targetDate := *goal.TargetDate
		updatedGoal.TargetDate = &targetDate
	}
	updatedGoal.CurrentAmount = goal.CurrentAmount.Add(amount)
	updatedGoal.UpdatedAt = now

	return &domain.ContributionResult{
		Account: &updatedAccount,
		Goal:    &updatedGoal,
	}, nil
}
