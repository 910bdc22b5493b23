package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// AccountService handles account-related business logic
type AccountService struct {
	accountRepo    domain.AccountRepository
	prefs          *PreferencesService
	eventPublisher websocket.EventPublisher
}

// NewAccountService creates a new AccountService. prefs may be nil, in which
// case new accounts default to domain.DefaultCurrency.
func NewAccountService(accountRepo domain.AccountRepository, prefs *PreferencesService) *AccountService {
	return &AccountService{accountRepo: accountRepo, prefs: prefs}
}

func (s *AccountService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *AccountService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// CreateAccountInput holds the input for creating an account
type CreateAccountInput struct {
	Name           string
	Type           domain.AccountType
	InitialBalance decimal.Decimal
	Currency       *string
}

// CreateAccount validates the input and opens the account at its initial balance
func (s *AccountService) CreateAccount(workspaceID int32, input CreateAccountInput) (*domain.Account, error) {
	name, err := validateAccountName(input.Name)
	if err != nil {
		return nil, err
	}
	if !domain.ValidAccountTypes[input.Type] {
		return nil, domain.ErrInvalidAccountType
	}

	currency := preferencesFor(s.prefs, workspaceID).Currency
	if input.Currency != nil && strings.TrimSpace(*input.Currency) != "" {
		currency, err = NormalizeCurrency(*input.Currency)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	account, err := s.accountRepo.Create(&domain.Account{
		WorkspaceID: workspaceID,
		Name:        name,
		Type:        input.Type,
		Balance:     input.InitialBalance.Round(2),
		Currency:    currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(workspaceID, websocket.AccountCreated(account))
	return account, nil
}

// GetAccounts retrieves all accounts for a workspace
func (s *AccountService) GetAccounts(workspaceID int32) ([]*domain.Account, error) {
	return s.accountRepo.GetAllByWorkspace(workspaceID)
}

// GetAccountByID retrieves an account by ID within a workspace
func (s *AccountService) GetAccountByID(workspaceID int32, id int32) (*domain.Account, error) {
	return s.accountRepo.GetByID(workspaceID, id)
}

// UpdateAccount renames an account. Balances only move through transactions and contributions.
func (s *AccountService) UpdateAccount(workspaceID int32, id int32, name string) (*domain.Account, error) {
	name, err := validateAccountName(name)
	if err != nil {
		return nil, err
	}
	account, err := s.accountRepo.Update(workspaceID, id, name)
	if err != nil {
		return nil, err
	}
	s.publishEvent(workspaceID, websocket.AccountUpdated(account))
	return account, nil
}

// DeleteAccount removes an account that no transaction or contribution references
func (s *AccountService) DeleteAccount(workspaceID int32, id int32) error {
	if _, err := s.accountRepo.GetByID(workspaceID, id); err != nil {
		return err
	}
	inUse, err := s.accountRepo.HasTransactions(workspaceID, id)
	if err != nil {
		return err
	}
	if inUse {
		return domain.ErrAccountHasTransactions
	}
	if err := s.accountRepo.Delete(workspaceID, id); err != nil {
		return err
	}
	s.publishEvent(workspaceID, websocket.AccountDeleted(map[string]int32{"id": id}))
	return nil
}

// TotalBalance sums account balances
func TotalBalance(accounts []*domain.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}

func validateAccountName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > domain.MaxAccountNameLength {
		return "", domain.ErrNameTooLong
	}
	return name, nil
}
