package service

import (
	"context"
	"time"

	"github.com/kantong/kantong-backend/internal/calc"
	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/util"
	"golang.org/x/sync/errgroup"
)

// DashboardService assembles the landing page aggregate
type DashboardService struct {
	accountRepo      domain.AccountRepository
	transactionRepo  domain.TransactionRepository
	budgetRepo       domain.BudgetRepository
	goalRepo         domain.GoalRepository
	notificationRepo domain.NotificationRepository
}

// NewDashboardService creates a new DashboardService. notificationRepo may be
// nil, in which case the unread count is always zero.
func NewDashboardService(
	accountRepo domain.AccountRepository,
	transactionRepo domain.TransactionRepository,
	budgetRepo domain.BudgetRepository,
	goalRepo domain.GoalRepository,
	notificationRepo domain.NotificationRepository,
) *DashboardService {
	return &DashboardService{
		accountRepo:      accountRepo,
		transactionRepo:  transactionRepo,
		budgetRepo:       budgetRepo,
		goalRepo:         goalRepo,
		notificationRepo: notificationRepo,
	}
}

// GetDashboard loads accounts, transactions, budgets, goals and the unread
// count concurrently, then derives the month view for now.
func (s *DashboardService) GetDashboard(ctx context.Context, workspaceID int32, now time.Time) (*domain.Dashboard, error) {
	var (
		accounts []*domain.Account
		budgets  []*domain.Budget
		goals    []*domain.Goal
		txs      []*domain.Transaction
		unread   int64
	)

	now = now.UTC()
	month := util.MonthPeriod(now.Year(), int(now.Month()))
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		accounts, err = s.accountRepo.GetAllByWorkspace(workspaceID)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.budgetRepo.GetAllByWorkspace(workspaceID)
		return err
	})
	g.Go(func() error {
		var err error
		goals, err = s.goalRepo.GetAllByWorkspace(workspaceID)
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		start, end := budgetHorizon(now)
		var err error
		txs, err = s.transactionRepo.ListInRange(workspaceID, start, end)
		return err
	})
	if s.notificationRepo != nil {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var err error
			unread, err = s.notificationRepo.CountUnread(workspaceID)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	portfolio, err := calc.AggregatePortfolio(budgets, txs, now)
	if err != nil {
		return nil, err
	}

	topGoals := make([]*domain.GoalWithProgress, 0, domain.MaxDashboardGoals)
	for _, goal := range goals {
		if len(topGoals) == domain.MaxDashboardGoals {
			break
		}
		topGoals = append(topGoals, withProgress(goal))
	}

	return &domain.Dashboard{
		TotalBalance:        TotalBalance(accounts),
		AccountCount:        len(accounts),
		Period:              month,
		MonthSummary:        calc.Summarize(inWindow(txs, month)),
		Budgets:             portfolio,
		Goals:               topGoals,
		RecentTransactions:  recent(txs, now, domain.MaxRecentTransactions),
		UnreadNotifications: unread,
	}, nil
}

// recent returns up to n transactions dated no later than now, newest first
func recent(txs []*domain.Transaction, now time.Time, n int) []*domain.Transaction {
	sorted := make([]*domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Date.After(now) {
			sorted = append(sorted, tx)
		}
	}
	calc.SortNewestFirst(sorted)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// budgetHorizon covers every budget window containing now: the whole year,
// widened by a week on both sides for weeks straddling New Year
func budgetHorizon(now time.Time) (time.Time, time.Time) {
	year := util.MonthPeriod(now.Year(), 1).Start
	start := year.AddDate(0, 0, -7)
	end := year.AddDate(1, 0, 7)
	return start, end
}
