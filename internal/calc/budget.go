// Package calc holds the pure finance calculations: budget aggregation, goal
// progress, contributions and transaction summaries. Nothing here performs I/O.
package calc

import (
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/util"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CountsTowardBudget reports whether a transaction contributes to budget spend.
// Only completed expenses count; pending ones are excluded until they settle.
func CountsTowardBudget(tx *domain.Transaction) bool {
	return tx.Type == domain.TransactionTypeExpense && tx.Status == domain.TransactionStatusCompleted
}

// BudgetTransactions returns the transactions that count toward budget within window
func BudgetTransactions(budget *domain.Budget, txs []*domain.Transaction, window domain.Period) []*domain.Transaction {
	var matched []*domain.Transaction
	for _, tx := range txs {
		if !CountsTowardBudget(tx) {
			continue
		}
		if tx.Category == nil || *tx.Category != budget.Category {
			continue
		}
		if !window.Contains(tx.Date) {
			continue
		}
		matched = append(matched, tx)
	}
	return matched
}

// StatusLevel maps a percentage used to its alert level
func StatusLevel(percentUsed decimal.Decimal) domain.BudgetStatusLevel {
	switch {
	case percentUsed.GreaterThanOrEqual(domain.OverThreshold):
		return domain.BudgetStatusOver
	case percentUsed.GreaterThanOrEqual(domain.WarningThreshold):
		return domain.BudgetStatusWarning
	default:
		return domain.BudgetStatusSafe
	}
}

// PercentOf returns part/whole*100, or zero when whole is not positive
func PercentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// AggregateBudget evaluates a budget against the expenses of the period containing asOf
func AggregateBudget(budget *domain.Budget, txs []*domain.Transaction, asOf time.Time) (*domain.BudgetStatus, error) {
	window, err := util.ResolvePeriod(budget.Period, asOf)
	if err != nil {
		return nil, err
	}

	spent := decimal.Zero
	for _, tx := range BudgetTransactions(budget, txs, window) {
		spent = spent.Add(tx.Amount.Abs())
	}

	percent := PercentOf(spent, budget.BudgetAmount)
	status := &domain.BudgetStatus{
		Budget:          budget,
		StartDate:       window.Start,
		EndDate:         window.End,
		SpentAmount:     spent,
		RemainingAmount: budget.BudgetAmount.Sub(spent),
		PercentUsed:     percent,
		Status:          StatusLevel(percent),
	}
	if status.Status == domain.BudgetStatusOver {
		over := spent.Sub(budget.BudgetAmount)
		status.OverAmount = &over
	}
	return status, nil
}

// AggregatePortfolio evaluates every budget and sums the portfolio totals
func AggregatePortfolio(budgets []*domain.Budget, txs []*domain.Transaction, asOf time.Time) (*domain.PortfolioSummary, error) {
	summary := &domain.PortfolioSummary{
		Budgets:        make([]*domain.BudgetStatus, 0, len(budgets)),
		TotalBudgeted:  decimal.Zero,
		TotalSpent:     decimal.Zero,
		TotalRemaining: decimal.Zero,
	}

	for _, budget := range budgets {
		status, err := AggregateBudget(budget, txs, asOf)
		if err != nil {
			return nil, err
		}
		summary.Budgets = append(summary.Budgets, status)
		summary.TotalBudgeted = summary.TotalBudgeted.Add(budget.BudgetAmount)
		summary.TotalSpent = summary.TotalSpent.Add(status.SpentAmount)
		summary.TotalRemaining = summary.TotalRemaining.Add(status.RemainingAmount)
		if status.Status == domain.BudgetStatusOver {
			summary.OverBudgetCount++
		} else {
			summary.OnTrackCount++
		}
	}
	summary.AnyOver = summary.OverBudgetCount > 0

	return summary, nil
}
