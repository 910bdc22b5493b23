package service

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kantong/kantong-backend/internal/calc"
	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/util"
	"github.com/kantong/kantong-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Bounds used when a summary request leaves the date range open
var (
	earliestDate = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	latestDate   = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	accountRepo     domain.AccountRepository
	budgetRepo      domain.BudgetRepository
	alerts          *AlertService
	eventPublisher  websocket.EventPublisher
	now             func() time.Time
}

// NewTransactionService creates a new TransactionService. alerts may be nil.
func NewTransactionService(
	transactionRepo domain.TransactionRepository,
	accountRepo domain.AccountRepository,
	budgetRepo domain.BudgetRepository,
	alerts *AlertService,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		budgetRepo:      budgetRepo,
		alerts:          alerts,
		now:             time.Now,
	}
}

func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *TransactionService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	AccountID         int32
	TransferAccountID *int32
	Description       string
	Amount            decimal.Decimal
	Type              domain.TransactionType
	Status            *domain.TransactionStatus
	Category          *string
	Party             *string
	Date              *time.Time
}

// CreateTransaction records a transaction. A completed one moves account
// balances in the same write.
func (s *TransactionService) CreateTransaction(workspaceID int32, input CreateTransactionInput) (*domain.Transaction, error) {
	description, err := validateDescription(input.Description)
	if err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if !input.Type.IsValid() {
		return nil, domain.ErrInvalidTransactionType
	}
	status := domain.TransactionStatusCompleted
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, domain.ErrInvalidTransactionStatus
		}
		status = *input.Status
	}
	category, err := normalizeLabel(input.Category, domain.MaxCategoryLength, domain.ErrCategoryTooLong)
	if err != nil {
		return nil, err
	}
	party, err := normalizeLabel(input.Party, domain.MaxPartyLength, domain.ErrPartyTooLong)
	if err != nil {
		return nil, err
	}

	if _, err := s.accountRepo.GetByID(workspaceID, input.AccountID); err != nil {
		return nil, err
	}
	var transferAccountID *int32
	if input.Type == domain.TransactionTypeTransfer {
		if input.TransferAccountID == nil || *input.TransferAccountID == input.AccountID {
			return nil, domain.ErrTransferAccountRequired
		}
		if _, err := s.accountRepo.GetByID(workspaceID, *input.TransferAccountID); err != nil {
			return nil, err
		}
		id := *input.TransferAccountID
		transferAccountID = &id
	}

	now := s.now().UTC()
	date := now
	if input.Date != nil {
		date = input.Date.UTC()
	}

	tx := &domain.Transaction{
		WorkspaceID:       workspaceID,
		AccountID:         input.AccountID,
		TransferAccountID: transferAccountID,
		Description:       description,
		Amount:            input.Amount.Round(2),
		Type:              input.Type,
		Status:            status,
		Category:          category,
		Party:             party,
		Date:              date,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	created, err := s.transactionRepo.Create(tx, calc.BalanceDelta(nil, tx))
	if err != nil {
		return nil, err
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Int32("transaction_id", created.ID).
		Str("type", string(created.Type)).
		Msg("Transaction created")
	s.publishEvent(workspaceID, websocket.TransactionCreated(created))
	s.checkBudget(workspaceID, nil, created)

	return created, nil
}

// GetTransactions returns one page of transactions matching filters, newest first
func (s *TransactionService) GetTransactions(workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = domain.DefaultPageSize
	}
	if filters.PageSize > domain.MaxPageSize {
		filters.PageSize = domain.MaxPageSize
	}
	return s.transactionRepo.GetByWorkspace(workspaceID, filters)
}

// GetTransaction retrieves one transaction
func (s *TransactionService) GetTransaction(workspaceID int32, id int32) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(workspaceID, id)
}

// GetSummary totals every transaction matching filters; paging is ignored
func (s *TransactionService) GetSummary(workspaceID int32, filters *domain.TransactionFilters) (*domain.TransactionSummary, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	start, end := earliestDate, latestDate
	if filters.StartDate != nil {
		start = *filters.StartDate
	}
	if filters.EndDate != nil {
		end = *filters.EndDate
	}
	if end.Before(start) {
		return nil, domain.ErrInvalidArgument
	}

	txs, err := s.transactionRepo.ListInRange(workspaceID, start, end)
	if err != nil {
		return nil, err
	}
	return calc.Summarize(calc.FilterTransactions(txs, filters)), nil
}

// UpdateTransactionInput holds optional changes. Amount and Type are accepted
// only to reject attempts to change them.
type UpdateTransactionInput struct {
	Description *string
	Category    *string
	Status      *domain.TransactionStatus
	Party       *string
	Date        *time.Time
	Amount      *decimal.Decimal
	Type        *domain.TransactionType
}

// UpdateTransaction edits the mutable fields. A status change moves balances
// by the difference between the old and new effect.
func (s *TransactionService) UpdateTransaction(workspaceID int32, id int32, input UpdateTransactionInput) (*domain.Transaction, error) {
	existing, err := s.transactionRepo.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}
	if input.Amount != nil && !input.Amount.Equal(existing.Amount) {
		return nil, domain.ErrImmutableField
	}
	if input.Type != nil && *input.Type != existing.Type {
		return nil, domain.ErrImmutableField
	}

	data := &domain.UpdateTransactionData{}

	if input.Description != nil {
		description, err := validateDescription(*input.Description)
		if err != nil {
			return nil, err
		}
		data.Description = &description
	}
	if input.Category != nil {
		category, err := normalizeLabel(input.Category, domain.MaxCategoryLength, domain.ErrCategoryTooLong)
		if err != nil {
			return nil, err
		}
		data.Category = emptyIfNil(category)
	}
	if input.Party != nil {
		party, err := normalizeLabel(input.Party, domain.MaxPartyLength, domain.ErrPartyTooLong)
		if err != nil {
			return nil, err
		}
		data.Party = emptyIfNil(party)
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, domain.ErrInvalidTransactionStatus
		}
		data.Status = input.Status
	}
	if input.Date != nil {
		date := input.Date.UTC()
		data.Date = &date
	}

	// The delta runs on the locked row, which may differ from existing when
	// another edit committed in between
	before := existing
	updated, err := s.transactionRepo.Update(workspaceID, id, data, func(locked, after *domain.Transaction) []domain.BalanceAdjustment {
		before = locked
		return calc.BalanceDelta(locked, after)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(workspaceID, websocket.TransactionUpdated(updated))
	s.checkBudget(workspaceID, before, updated)

	return updated, nil
}

// DeleteTransaction removes a transaction and reverses its balance effect.
// The deleted row is returned so callers can clean up its receipt.
func (s *TransactionService) DeleteTransaction(workspaceID int32, id int32) (*domain.Transaction, error) {
	deleted, err := s.transactionRepo.Delete(workspaceID, id, calc.BalanceDelta)
	if err != nil {
		return nil, err
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("transaction_id", id).Msg("Transaction deleted")
	s.publishEvent(workspaceID, websocket.TransactionDeleted(map[string]int32{"id": id}))
	return deleted, nil
}

// ApplyPeriodFilter narrows filters to the period of kind containing ref
func ApplyPeriodFilter(filters *domain.TransactionFilters, kind domain.PeriodKind, ref time.Time) error {
	window, err := util.ResolvePeriod(kind, ref)
	if err != nil {
		return err
	}
	filters.StartDate = &window.Start
	filters.EndDate = &window.End
	return nil
}

// checkBudget re-evaluates the budget of after's category and lets the alert
// service decide whether to warn. Failures are logged, never returned.
func (s *TransactionService) checkBudget(workspaceID int32, before, after *domain.Transaction) {
	if s.alerts == nil || s.budgetRepo == nil || after == nil || after.Category == nil || !calc.CountsTowardBudget(after) {
		return
	}

	budget, err := s.budgetRepo.GetByCategory(workspaceID, *after.Category)
	if err != nil {
		if !errors.Is(err, domain.ErrBudgetNotFound) {
			log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to load budget for alert check")
		}
		return
	}

	now := s.now()
	window, err := util.ResolvePeriod(budget.Period, now)
	if err != nil {
		return
	}
	if !window.Contains(after.Date) {
		return
	}
	txs, err := s.transactionRepo.ListInRange(workspaceID, window.Start, window.End)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to load transactions for alert check")
		return
	}

	current, err := calc.AggregateBudget(budget, txs, now)
	if err != nil {
		return
	}
	// The row as it was only counted when it sat in this window
	var prior *domain.Transaction
	if before != nil && window.Contains(before.Date) {
		prior = before
	}
	previous, err := calc.AggregateBudget(budget, replaceTransaction(txs, after.ID, prior), now)
	if err != nil {
		return
	}
	s.alerts.BudgetChanged(workspaceID, previous, current)
}

// replaceTransaction returns txs with the entry id swapped for replacement, or dropped when replacement is nil
func replaceTransaction(txs []*domain.Transaction, id int32, replacement *domain.Transaction) []*domain.Transaction {
	result := make([]*domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.ID != id {
			result = append(result, tx)
		}
	}
	if replacement != nil {
		result = append(result, replacement)
	}
	return result
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", domain.ErrDescriptionRequired
	}
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		return "", domain.ErrDescriptionTooLong
	}
	return description, nil
}

// normalizeLabel trims a nullable label; blank becomes nil
func normalizeLabel(value *string, maxLength int, tooLong error) (*string, error) {
	if value == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > maxLength {
		return nil, tooLong
	}
	return &trimmed, nil
}

// emptyIfNil maps a cleared label to the empty string the repositories treat as "clear"
func emptyIfNil(value *string) *string {
	if value == nil {
		empty := ""
		return &empty
	}
	return value
}
