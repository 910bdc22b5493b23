package service

import (
	"errors"
	"testing"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addReportTx(repo *testutil.MockTransactionRepository, id int32, txType domain.TransactionType, amount int64, category string, date time.Time) {
	tx := &domain.Transaction{
		ID:          id,
		WorkspaceID: 1,
		AccountID:   1,
		Description: "report",
		Amount:      decimal.NewFromInt(amount),
		Type:        txType,
		Status:      domain.TransactionStatusCompleted,
		Date:        date,
	}
	if category != "" {
		tx.Category = &category
	}
	repo.AddTransaction(tx)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func TestGetMonthlyReport(t *testing.T) {
	txs := testutil.NewMockTransactionRepository()
	addReportTx(txs, 1, domain.TransactionTypeIncome, 2000, "", day(2025, time.February, 1))
	addReportTx(txs, 2, domain.TransactionTypeExpense, 1000, "Rent", day(2025, time.February, 3))
	addReportTx(txs, 3, domain.TransactionTypeIncome, 2500, "", day(2025, time.March, 1))
	addReportTx(txs, 4, domain.TransactionTypeExpense, 1000, "Rent", day(2025, time.March, 3))
	addReportTx(txs, 5, domain.TransactionTypeExpense, 500, "Food", day(2025, time.March, 20))
	addReportTx(txs, 6, domain.TransactionTypeExpense, 999, "Food", day(2025, time.April, 1))
	svc := NewReportService(txs)

	report, err := svc.GetMonthlyReport(1, 2025, 3)

	require.NoError(t, err)
	assert.Equal(t, "2500.00", report.Summary.TotalIncome.StringFixed(2))
	assert.Equal(t, "1500.00", report.Summary.TotalExpenses.StringFixed(2))
	assert.Equal(t, "40.00", report.SavingsRate.StringFixed(2))
	assert.Equal(t, "2000.00", report.Previous.TotalIncome.StringFixed(2))
	assert.Equal(t, "25.00", report.IncomeChange.StringFixed(2))
	assert.Equal(t, "50.00", report.ExpenseChange.StringFixed(2))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), report.Period.Start)
	require.Len(t, report.Summary.ByCategory, 2)
	assert.Equal(t, "Rent", report.Summary.ByCategory[0].Category)
}

func TestGetMonthlyReport_JanuaryComparesWithDecember(t *testing.T) {
	txs := testutil.NewMockTransactionRepository()
	addReportTx(txs, 1, domain.TransactionTypeExpense, 200, "Gifts", day(2024, time.December, 24))
	addReportTx(txs, 2, domain.TransactionTypeExpense, 100, "Gifts", day(2025, time.January, 2))
	svc := NewReportService(txs)

	report, err := svc.GetMonthlyReport(1, 2025, 1)

	require.NoError(t, err)
	assert.Equal(t, "200.00", report.Previous.TotalExpenses.StringFixed(2))
	assert.Equal(t, "-50.00", report.ExpenseChange.StringFixed(2))
	assert.True(t, report.IncomeChange.IsZero(), "no previous income means no change")
	assert.True(t, report.SavingsRate.IsZero())
}

func TestGetMonthlyReport_InvalidMonth(t *testing.T) {
	svc := NewReportService(testutil.NewMockTransactionRepository())

	for _, month := range []int{0, 13, -1} {
		_, err := svc.GetMonthlyReport(1, 2025, month)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, "month %d", month)
	}
	_, err := svc.GetMonthlyReport(1, 1969, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGetTrend(t *testing.T) {
	txs := testutil.NewMockTransactionRepository()
	addReportTx(txs, 1, domain.TransactionTypeIncome, 100, "", day(2024, time.November, 5))
	addReportTx(txs, 2, domain.TransactionTypeExpense, 40, "Food", day(2025, time.January, 5))
	addReportTx(txs, 3, domain.TransactionTypeIncome, 300, "", day(2025, time.February, 5))
	addReportTx(txs, 4, domain.TransactionTypeIncome, 999, "", day(2024, time.October, 31))
	svc := NewReportService(txs)

	points, err := svc.GetTrend(1, 4, day(2025, time.February, 20))

	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.Equal(t, 2024, points[0].Year)
	assert.Equal(t, 11, points[0].Month)
	assert.Equal(t, "100.00", points[0].Income.StringFixed(2))
	assert.Equal(t, 12, points[1].Month)
	assert.True(t, points[1].Net.IsZero())
	assert.Equal(t, "-40.00", points[2].Net.StringFixed(2))
	assert.Equal(t, 2025, points[3].Year)
	assert.Equal(t, 2, points[3].Month)
	assert.Equal(t, "300.00", points[3].Income.StringFixed(2))
}

func TestGetTrend_Bounds(t *testing.T) {
	svc := NewReportService(testutil.NewMockTransactionRepository())
	now := day(2025, time.June, 1)

	points, err := svc.GetTrend(1, 0, now)
	require.NoError(t, err)
	assert.Len(t, points, domain.DefaultTrendMonths)

	_, err = svc.GetTrend(1, domain.MaxTrendMonths+1, now)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.GetTrend(1, -3, now)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGetCategoryReport(t *testing.T) {
	txs := testutil.NewMockTransactionRepository()
	addReportTx(txs, 1, domain.TransactionTypeExpense, 75, "Food", day(2025, time.March, 16))
	addReportTx(txs, 2, domain.TransactionTypeExpense, 25, "", day(2025, time.March, 17))
	addReportTx(txs, 3, domain.TransactionTypeExpense, 500, "Food", day(2025, time.March, 10))
	svc := NewReportService(txs)

	report, err := svc.GetCategoryReport(1, domain.PeriodWeekly, day(2025, time.March, 19))

	require.NoError(t, err)
	assert.Equal(t, "100.00", report.TotalExpenses.StringFixed(2))
	require.Len(t, report.Categories, 2)
	assert.Equal(t, "Food", report.Categories[0].Category)
	assert.Equal(t, "75.00", report.Categories[0].Share.StringFixed(2))
	assert.Equal(t, "Uncategorized", report.Categories[1].Category)

	_, err = svc.GetCategoryReport(1, "fortnightly", day(2025, time.March, 19))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGetCategoryReport_RepositoryError(t *testing.T) {
	txs := testutil.NewMockTransactionRepository()
	dbErr := errors.New("timeout")
	txs.ListInRangeFn = func(workspaceID int32, start, end time.Time) ([]*domain.Transaction, error) {
		return nil, dbErr
	}
	svc := NewReportService(txs)

	_, err := svc.GetCategoryReport(1, domain.PeriodMonthly, day(2025, time.March, 19))

	assert.ErrorIs(t, err, dbErr)
}
