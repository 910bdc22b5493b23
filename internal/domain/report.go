package domain

import "github.com/shopspring/decimal"

// MonthlyReport summarises one calendar month
type MonthlyReport struct {
	Year          int                 `json:"year"`
	Month         int                 `json:"month"`
	Period        Period              `json:"period"`
	Summary       *TransactionSummary `json:"summary"`
	SavingsRate   decimal.Decimal     `json:"savingsRate"`
	Previous      *TransactionSummary `json:"previous"`
	IncomeChange  decimal.Decimal     `json:"incomeChange"`
	ExpenseChange decimal.Decimal     `json:"expenseChange"`
}

// TrendPoint is one month of a trend series
type TrendPoint struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// CategoryReport is the expense share per category within a period
type CategoryReport struct {
	Period        PeriodKind      `json:"period"`
	Window        Period          `json:"window"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Categories    []CategoryTotal `json:"categories"`
}

const (
	DefaultTrendMonths = 6
	MaxTrendMonths     = 24
)
