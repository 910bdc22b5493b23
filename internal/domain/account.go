package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrInvalidAccountType     = errors.New("invalid account type")
	ErrAccountHasTransactions = errors.New("account has transactions")
	ErrInvalidCurrency        = errors.New("invalid currency code")
)

type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeCash       AccountType = "cash"
	AccountTypeInvestment AccountType = "investment"
)

// ValidAccountTypes lists the account types accepted on create
var ValidAccountTypes = map[AccountType]bool{
	AccountTypeChecking:   true,
	AccountTypeSavings:    true,
	AccountTypeCredit:     true,
	AccountTypeCash:       true,
	AccountTypeInvestment: true,
}

type Account struct {
	ID          int32           `json:"id"`
	WorkspaceID int32           `json:"workspaceId"`
	Name        string          `json:"name"`
	Type        AccountType     `json:"type"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type AccountRepository interface {
	Create(account *Account) (*Account, error)
	GetByID(workspaceID int32, id int32) (*Account, error)
	GetAllByWorkspace(workspaceID int32) ([]*Account, error)
	Update(workspaceID int32, id int32, name string) (*Account, error)
	Delete(workspaceID int32, id int32) error
	HasTransactions(workspaceID int32, id int32) (bool, error)
}
