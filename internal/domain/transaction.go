package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrInvalidTransactionType   = errors.New("invalid transaction type")
	ErrInvalidTransactionStatus = errors.New("invalid transaction status")
	ErrImmutableField           = errors.New("amount and type cannot be changed after creation")
	ErrTransferAccountRequired  = errors.New("transfer requires a different destination account")
	ErrDescriptionTooLong       = errors.New("description exceeds maximum length")
	ErrPartyTooLong             = errors.New("party exceeds maximum length")
	ErrCategoryTooLong          = errors.New("category exceeds maximum length")
	ErrDescriptionRequired      = errors.New("description is required")
	ErrTranscriptEmpty          = errors.New("transcript text is required")
	ErrTranscriptTooLong        = errors.New("transcript text exceeds maximum length")
	ErrReceiptNotFound          = errors.New("transaction has no receipt")
)

type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// IsValid reports whether t is a known transaction type
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// IsValid reports whether s is a known transaction status
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusCancelled, TransactionStatusFailed:
		return true
	}
	return false
}

type Transaction struct {
	ID                int32             `json:"id"`
	WorkspaceID       int32             `json:"workspaceId"`
	AccountID         int32             `json:"accountId"`
	TransferAccountID *int32            `json:"transferAccountId,omitempty"`
	Description       string            `json:"description"`
	Amount            decimal.Decimal   `json:"amount"`
	Type              TransactionType   `json:"type"`
	Status            TransactionStatus `json:"status"`
	Category          *string           `json:"category,omitempty"`
	Party             *string           `json:"party,omitempty"`
	Date              time.Time         `json:"date"`
	ReceiptURL        *string           `json:"receiptUrl,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// CategoryName returns the category label or an empty string when uncategorized
func (t *Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return *t.Category
}

// BalanceAdjustment is a signed change to an account balance that must be
// committed together with the transaction write that caused it
type BalanceAdjustment struct {
	AccountID int32
	Amount    decimal.Decimal
}

type TransactionFilters struct {
	AccountID *int32
	Category  *string
	Type      *TransactionType
	Status    *TransactionStatus
	Party     *string
	Search    *string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int32
	PageSize  int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

// UpdateTransactionData holds the mutable fields of a transaction.
// A nil pointer leaves the field unchanged; an empty Category or Party clears it.
type UpdateTransactionData struct {
	Description *string
	Category    *string
	Status      *TransactionStatus
	Party       *string
	Date        *time.Time
}

// Apply copies the set fields onto t
func (d *UpdateTransactionData) Apply(t *Transaction) {
	if d.Description != nil {
		t.Description = *d.Description
	}
	if d.Category != nil {
		t.Category = nilIfEmpty(*d.Category)
	}
	if d.Party != nil {
		t.Party = nilIfEmpty(*d.Party)
	}
	if d.Status != nil {
		t.Status = *d.Status
	}
	if d.Date != nil {
		t.Date = *d.Date
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// BalanceDeltaFunc returns the adjustments that move the balances from before
// to after. after is nil when the transaction is deleted.
type BalanceDeltaFunc func(before, after *Transaction) []BalanceAdjustment

// TransactionSummary holds income/expense/net totals for a set of transactions
type TransactionSummary struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Net           decimal.Decimal `json:"net"`
	Count         int             `json:"count"`
	ByCategory    []CategoryTotal `json:"byCategory"`
}

// CategoryTotal is the expense total of one category
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Share    decimal.Decimal `json:"share"`
	Count    int             `json:"count"`
}

type TransactionRepository interface {
	Create(transaction *Transaction, adjustments []BalanceAdjustment) (*Transaction, error)
	GetByID(workspaceID int32, id int32) (*Transaction, error)
	GetByWorkspace(workspaceID int32, filters *TransactionFilters) (*PaginatedTransactions, error)
	// ListInRange returns every transaction dated within [start, end], newest first
	ListInRange(workspaceID int32, start, end time.Time) ([]*Transaction, error)
	// Update locks the row, applies data and commits the balance adjustments
	// delta derives from the locked row and its updated copy
	Update(workspaceID int32, id int32, data *UpdateTransactionData, delta BalanceDeltaFunc) (*Transaction, error)
	// Delete locks the row, removes it and commits delta(row, nil). The removed
	// row is returned.
	Delete(workspaceID int32, id int32, delta BalanceDeltaFunc) (*Transaction, error)
	SetReceiptURL(workspaceID int32, id int32, url *string) (*Transaction, error)
}
