package service

import (
	"time"

	"github.com/kantong/kantong-backend/internal/calc"
	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/util"
	"github.com/shopspring/decimal"
)

// ReportService builds period reports from recorded transactions
type ReportService struct {
	transactionRepo domain.TransactionRepository
}

func NewReportService(transactionRepo domain.TransactionRepository) *ReportService {
	return &ReportService{transactionRepo: transactionRepo}
}

// GetMonthlyReport summarises one calendar month and compares it with the month before
func (s *ReportService) GetMonthlyReport(workspaceID int32, year, month int) (*domain.MonthlyReport, error) {
	if month < 1 || month > 12 || year < 1970 || year > 9999 {
		return nil, domain.ErrInvalidArgument
	}

	prevYear, prevMonth := util.PreviousMonth(year, month)
	previousWindow := util.MonthPeriod(prevYear, prevMonth)
	window := util.MonthPeriod(year, month)

	txs, err := s.transactionRepo.ListInRange(workspaceID, previousWindow.Start, window.End)
	if err != nil {
		return nil, err
	}

	current := calc.Summarize(inWindow(txs, window))
	previous := calc.Summarize(inWindow(txs, previousWindow))

	return &domain.MonthlyReport{
		Year:          year,
		Month:         month,
		Period:        window,
		Summary:       current,
		SavingsRate:   calc.PercentOf(current.Net, current.TotalIncome).Round(2),
		Previous:      previous,
		IncomeChange:  percentChange(previous.TotalIncome, current.TotalIncome),
		ExpenseChange: percentChange(previous.TotalExpenses, current.TotalExpenses),
	}, nil
}

// GetTrend returns one point per month for the months calendar months ending with the month of now, oldest first
func (s *ReportService) GetTrend(workspaceID int32, months int, now time.Time) ([]domain.TrendPoint, error) {
	if months == 0 {
		months = domain.DefaultTrendMonths
	}
	if months < 1 || months > domain.MaxTrendMonths {
		return nil, domain.ErrInvalidArgument
	}

	now = now.UTC()
	year, month := now.Year(), int(now.Month())
	windows := make([]domain.Period, months)
	for i := months - 1; i >= 0; i-- {
		windows[i] = util.MonthPeriod(year, month)
		year, month = util.PreviousMonth(year, month)
	}

	txs, err := s.transactionRepo.ListInRange(workspaceID, windows[0].Start, windows[months-1].End)
	if err != nil {
		return nil, err
	}

	points := make([]domain.TrendPoint, 0, months)
	for _, w := range windows {
		summary := calc.Summarize(inWindow(txs, w))
		points = append(points, domain.TrendPoint{
			Year:     w.Start.Year(),
			Month:    int(w.Start.Month()),
			Income:   summary.TotalIncome,
			Expenses: summary.TotalExpenses,
			Net:      summary.Net,
		})
	}
	return points, nil
}

// GetCategoryReport breaks down expenses by category within the period of kind containing ref
func (s *ReportService) GetCategoryReport(workspaceID int32, kind domain.PeriodKind, ref time.Time) (*domain.CategoryReport, error) {
	window, err := util.ResolvePeriod(kind, ref)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactionRepo.ListInRange(workspaceID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	summary := calc.Summarize(txs)
	return &domain.CategoryReport{
		Period:        kind,
		Window:        window,
		TotalExpenses: summary.TotalExpenses,
		Categories:    summary.ByCategory,
	}, nil
}

func inWindow(txs []*domain.Transaction, window domain.Period) []*domain.Transaction {
	var result []*domain.Transaction
	for _, tx := range txs {
		if window.Contains(tx.Date) {
			result = append(result, tx)
		}
	}
	return result
}

// percentChange is (current-previous)/previous*100, zero when there is no baseline
func percentChange(previous, current decimal.Decimal) decimal.Decimal {
	if !previous.IsPositive() {
		return decimal.Zero
	}
	return calc.PercentOf(current.Sub(previous), previous).Round(2)
}
