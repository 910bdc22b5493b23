package domain

import "github.com/shopspring/decimal"

// GoalWithProgress pairs a goal with its derived progress
type GoalWithProgress struct {
	Goal     *Goal        `json:"goal"`
	Progress GoalProgress `json:"progress"`
}

// Dashboard is the landing page aggregate for a workspace
type Dashboard struct {
	TotalBalance        decimal.Decimal     `json:"totalBalance"`
	AccountCount        int                 `json:"accountCount"`
	Period              Period              `json:"period"`
	MonthSummary        *TransactionSummary `json:"monthSummary"`
	Budgets             *PortfolioSummary   `json:"budgets"`
	Goals               []*GoalWithProgress `json:"goals"`
	RecentTransactions  []*Transaction      `json:"recentTransactions"`
	UnreadNotifications int64               `json:"unreadNotifications"`
}

// MaxDashboardGoals and MaxRecentTransactions bound the dashboard lists
const (
	MaxDashboardGoals     = 3
	MaxRecentTransactions = 5
)
