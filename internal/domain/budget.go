package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrBudgetNotFound        = errors.New("budget not found")
	ErrBudgetCategoryExists  = errors.New("a budget for this category already exists")
	ErrBudgetCategoryMissing = errors.New("budget category is required")
)

// Alert thresholds in percent of the budget amount
var (
	WarningThreshold = decimal.NewFromInt(80)
	OverThreshold    = decimal.NewFromInt(100)
)

type Budget struct {
	ID           int32           `json:"id"`
	WorkspaceID  int32           `json:"workspaceId"`
	Category     string          `json:"category"`
	BudgetAmount decimal.Decimal `json:"budgetAmount"`
	Period       PeriodKind      `json:"period"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type BudgetStatusLevel string

const (
	BudgetStatusSafe    BudgetStatusLevel = "safe"
	BudgetStatusWarning BudgetStatusLevel = "warning"
	BudgetStatusOver    BudgetStatusLevel = "over"
)

// BudgetStatus is a budget evaluated against the expenses of its active period
type BudgetStatus struct {
	Budget          *Budget           `json:"budget"`
	StartDate       time.Time         `json:"startDate"`
	EndDate         time.Time         `json:"endDate"`
	SpentAmount     decimal.Decimal   `json:"spentAmount"`
	RemainingAmount decimal.Decimal   `json:"remainingAmount"`
	PercentUsed     decimal.Decimal   `json:"percentUsed"`
	Status          BudgetStatusLevel `json:"status"`
	OverAmount      *decimal.Decimal  `json:"overAmount,omitempty"`
}

// PortfolioSummary aggregates the statuses of every budget in a workspace
type PortfolioSummary struct {
	Budgets         []*BudgetStatus `json:"budgets"`
	TotalBudgeted   decimal.Decimal `json:"totalBudgeted"`
	TotalSpent      decimal.Decimal `json:"totalSpent"`
	TotalRemaining  decimal.Decimal `json:"totalRemaining"`
	OnTrackCount    int             `json:"onTrackCount"`
	OverBudgetCount int             `json:"overBudgetCount"`
	AnyOver         bool            `json:"anyOver"`
}

type BudgetRepository interface {
	Create(budget *Budget) (*Budget, error)
	GetByID(workspaceID int32, id int32) (*Budget, error)
	GetByCategory(workspaceID int32, category string) (*Budget, error)
	GetAllByWorkspace(workspaceID int32) ([]*Budget, error)
	Update(budget *Budget) (*Budget, error)
	Delete(workspaceID int32, id int32) error
}
