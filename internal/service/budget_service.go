package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kantong/kantong-backend/internal/calc"
	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/util"
	"github.com/kantong/kantong-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// BudgetService manages budgets and evaluates them against recorded spend
type BudgetService struct {
	budgetRepo      domain.BudgetRepository
	transactionRepo domain.TransactionRepository
	eventPublisher  websocket.EventPublisher
}

func NewBudgetService(budgetRepo domain.BudgetRepository, transactionRepo domain.TransactionRepository) *BudgetService {
	return &BudgetService{
		budgetRepo:      budgetRepo,
		transactionRepo: transactionRepo,
	}
}

func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BudgetService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// CreateBudgetInput holds the input for creating a budget
type CreateBudgetInput struct {
	Category string
	Amount   decimal.Decimal
	Period   domain.PeriodKind
}

// CreateBudget adds a budget. Only one budget may exist per category.
func (s *BudgetService) CreateBudget(workspaceID int32, input CreateBudgetInput) (*domain.Budget, error) {
	category, err := validateBudgetCategory(input.Category)
	if err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidArgument
	}
	if !input.Period.IsValid() {
		return nil, domain.ErrInvalidArgument
	}

	now := time.Now().UTC()
	budget, err := s.budgetRepo.Create(&domain.Budget{
		WorkspaceID:  workspaceID,
		Category:     category,
		BudgetAmount: input.Amount.Round(2),
		Period:       input.Period,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(workspaceID, websocket.BudgetCreated(budget))
	return budget, nil
}

// GetBudgets evaluates every budget at asOf
func (s *BudgetService) GetBudgets(workspaceID int32, asOf time.Time) ([]*domain.BudgetStatus, error) {
	summary, err := s.GetSummary(workspaceID, asOf)
	if err != nil {
		return nil, err
	}
	return summary.Budgets, nil
}

// GetSummary evaluates every budget at asOf and totals the portfolio
func (s *BudgetService) GetSummary(workspaceID int32, asOf time.Time) (*domain.PortfolioSummary, error) {
	budgets, err := s.budgetRepo.GetAllByWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}
	txs, err := s.loadWindows(workspaceID, budgets, asOf)
	if err != nil {
		return nil, err
	}
	return calc.AggregatePortfolio(budgets, txs, asOf)
}

// GetBudget evaluates one budget at asOf
func (s *BudgetService) GetBudget(workspaceID int32, id int32, asOf time.Time) (*domain.BudgetStatus, error) {
	budget, err := s.budgetRepo.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}
	txs, err := s.loadWindows(workspaceID, []*domain.Budget{budget}, asOf)
	if err != nil {
		return nil, err
	}
	return calc.AggregateBudget(budget, txs, asOf)
}

// GetBudgetTransactions returns the transactions counted toward the budget at asOf, newest first
func (s *BudgetService) GetBudgetTransactions(workspaceID int32, id int32, asOf time.Time) ([]*domain.Transaction, error) {
	budget, err := s.budgetRepo.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}
	window, err := util.ResolvePeriod(budget.Period, asOf)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactionRepo.ListInRange(workspaceID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	matched := calc.BudgetTransactions(budget, txs, window)
	if matched == nil {
		matched = []*domain.Transaction{}
	}
	calc.SortNewestFirst(matched)
	return matched, nil
}

// UpdateBudgetInput holds optional changes; nil fields keep their value
type UpdateBudgetInput struct {
	Category *string
	Amount   *decimal.Decimal
	Period   *domain.PeriodKind
}

// UpdateBudget changes a budget. Spend is always derived, so a new amount
// only changes the percentage.
func (s *BudgetService) UpdateBudget(workspaceID int32, id int32, input UpdateBudgetInput) (*domain.Budget, error) {
	budget, err := s.budgetRepo.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}
	updated := *budget

	if input.Category != nil {
		category, err := validateBudgetCategory(*input.Category)
		if err != nil {
			return nil, err
		}
		updated.Category = category
	}
	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, domain.ErrInvalidArgument
		}
		updated.BudgetAmount = input.Amount.Round(2)
	}
	if input.Period != nil {
		if !input.Period.IsValid() {
			return nil, domain.ErrInvalidArgument
		}
		updated.Period = *input.Period
	}
	updated.UpdatedAt = time.Now().UTC()

	result, err := s.budgetRepo.Update(&updated)
	if err != nil {
		return nil, err
	}
	s.publishEvent(workspaceID, websocket.BudgetUpdated(result))
	return result, nil
}

// DeleteBudget permanently removes a budget
func (s *BudgetService) DeleteBudget(workspaceID int32, id int32) error {
	if err := s.budgetRepo.Delete(workspaceID, id); err != nil {
		return err
	}
	s.publishEvent(workspaceID, websocket.BudgetDeleted(map[string]int32{"id": id}))
	return nil
}

// loadWindows fetches the transactions covering every budget's active period in one query
func (s *BudgetService) loadWindows(workspaceID int32, budgets []*domain.Budget, asOf time.Time) ([]*domain.Transaction, error) {
	if len(budgets) == 0 {
		return nil, nil
	}
	var start, end time.Time
	for i, b := range budgets {
		window, err := util.ResolvePeriod(b.Period, asOf)
		if err != nil {
			return nil, err
		}
		if i == 0 || window.Start.Before(start) {
			start = window.Start
		}
		if i == 0 || window.End.After(end) {
			end = window.End
		}
	}
	return s.transactionRepo.ListInRange(workspaceID, start, end)
}

func validateBudgetCategory(category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return "", domain.ErrBudgetCategoryMissing
	}
	if utf8.RuneCountInString(category) > domain.MaxCategoryLength {
		return "", domain.ErrCategoryTooLong
	}
	return category, nil
}
