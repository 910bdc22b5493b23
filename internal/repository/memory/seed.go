package memory

import (
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/shopspring/decimal"
)

type seedTransaction struct {
	daysAgo     int
	account     string
	transferTo  string
	description string
	amount      string
	txType      domain.TransactionType
	status      domain.TransactionStatus
	category    string
	party       string
}

// seedTransactions cover roughly the last two months so the dashboard, budgets
// and trend report all have something to show
var seedTransactions = []seedTransaction{
	{1, "Everyday Checking", "", "Weekly groceries", "86.40", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Groceries", "Fresh Market"},
	{2, "Rewards Card", "", "Dinner with friends", "64.25", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Dining", "Luigi's Trattoria"},
	{3, "Everyday Checking", "", "Bus pass top-up", "20.00", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Transport", "City Transit"},
	{4, "Rewards Card", "", "Streaming subscription", "15.99", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Entertainment", "Netflix"},
	{5, "Everyday Checking", "", "Groceries", "112.35", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Groceries", "Fresh Market"},
	{6, "Everyday Checking", "", "Online order", "48.00", domain.TransactionTypeExpense, domain.TransactionStatusPending, "Shopping", "Amazon"},
	{7, "Everyday Checking", "Emergency Savings", "Monthly savings transfer", "300.00", domain.TransactionTypeTransfer, domain.TransactionStatusCompleted, "", ""},
	{8, "Cash Wallet", "", "Coffee", "4.50", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Dining", "Corner Cafe"},
	{9, "Everyday Checking", "", "Electricity bill", "72.10", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Utilities", "Power Co"},
	{10, "Everyday Checking", "", "Salary", "3200.00", domain.TransactionTypeIncome, domain.TransactionStatusCompleted, "Salary", "Acme Corp"},
	{12, "Rewards Card", "", "Groceries", "95.80", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Groceries", "Whole Foods Market"},
	{14, "Everyday Checking", "", "Pharmacy", "23.60", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Health", "Walgreens"},
	{16, "Rewards Card", "", "Concert tickets", "120.00", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Entertainment", "Ticketmaster"},
	{18, "Everyday Checking", "", "Gym refund", "25.00", domain.TransactionTypeIncome, domain.TransactionStatusCompleted, "Health", "FitLife"},
	{20, "Everyday Checking", "", "Card payment declined", "59.99", domain.TransactionTypeExpense, domain.TransactionStatusFailed, "Shopping", "Zara"},
	{22, "Everyday Checking", "", "Rent", "1450.00", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Rent", "Oak Street Apartments"},
	{25, "Rewards Card", "", "Groceries", "101.20", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Groceries", "Fresh Market"},
	{28, "Everyday Checking", "", "Taxi home", "31.40", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Transport", "Uber"},
	{33, "Everyday Checking", "", "Freelance project", "650.00", domain.TransactionTypeIncome, domain.TransactionStatusCompleted, "Freelance", "Studio North"},
	{36, "Rewards Card", "", "Groceries", "134.75", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Groceries", "Fresh Market"},
	{40, "Everyday Checking", "", "Salary", "3200.00", domain.TransactionTypeIncome, domain.TransactionStatusCompleted, "Salary", "Acme Corp"},
	{44, "Rewards Card", "", "Birthday dinner", "88.60", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Dining", "The Grill House"},
	{47, "Everyday Checking", "", "Internet", "55.00", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Utilities", "FiberNet"},
	{52, "Everyday Checking", "", "Rent", "1450.00", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Rent", "Oak Street Apartments"},
	{55, "Cash Wallet", "", "Farmers market", "27.00", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, "Groceries", "Saturday Market"},
	{58, "Everyday Checking", "", "Cancelled booking", "210.00", domain.TransactionTypeExpense, domain.TransactionStatusCancelled, "Travel", "Booking.com"},
}

// seed fills s with the demo workspace; the caller holds the write lock
func seed(s *Store, workspaceID int32, now time.Time) {
	accounts := []struct {
		name    string
		typ     domain.AccountType
		balance string
	}{
		{"Everyday Checking", domain.AccountTypeChecking, "2450.00"},
		{"Emergency Savings", domain.AccountTypeSavings, "8200.00"},
		{"Rewards Card", domain.AccountTypeCredit, "-320.50"},
		{"Cash Wallet", domain.AccountTypeCash, "120.00"},
		{"Brokerage", domain.AccountTypeInvestment, "15400.00"},
	}

	byName := make(map[string]int32, len(accounts))
	for _, a := range accounts {
		account := &domain.Account{
			ID:          s.id(),
			WorkspaceID: workspaceID,
			Name:        a.name,
			Type:        a.typ,
			Balance:     decimal.RequireFromString(a.balance),
			Currency:    domain.DefaultCurrency,
			CreatedAt:   now.AddDate(0, -3, 0),
			UpdatedAt:   now,
		}
		s.accounts[account.ID] = account
		byName[a.name] = account.ID
	}

	// Noon keeps "N days ago" on the same calendar day in any zone offset
	today := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())
	for _, st := range seedTransactions {
		date := today.AddDate(0, 0, -st.daysAgo)
		t := &domain.Transaction{
			ID:          s.id(),
			WorkspaceID: workspaceID,
			AccountID:   byName[st.account],
			Description: st.description,
			Amount:      decimal.RequireFromString(st.amount),
			Type:        st.txType,
			Status:      st.status,
			Date:        date,
			CreatedAt:   date,
			UpdatedAt:   date,
		}
		if st.transferTo != "" {
			dest := byName[st.transferTo]
			t.TransferAccountID = &dest
		}
		if st.category != "" {
			category := st.category
			t.Category = &category
		}
		if st.party != "" {
			party := st.party
			t.Party = &party
		}
		s.transactions[t.ID] = t
	}

	budgets := []struct {
		category string
		amount   string
		period   domain.PeriodKind
	}{
		{"Groceries", "450.00", domain.PeriodMonthly},
		{"Dining", "150.00", domain.PeriodMonthly},
		{"Transport", "40.00", domain.PeriodWeekly},
		{"Entertainment", "1200.00", domain.PeriodYearly},
		{"Utilities", "200.00", domain.PeriodMonthly},
	}
	for _, b := range budgets {
		budget := &domain.Budget{
			ID:           s.id(),
			WorkspaceID:  workspaceID,
			Category:     b.category,
			BudgetAmount: decimal.RequireFromString(b.amount),
			Period:       b.period,
			CreatedAt:    now.AddDate(0, -2, 0),
			UpdatedAt:    now,
		}
		s.budgets[budget.ID] = budget
	}

	vacationDate := time.Date(now.Year()+1, time.June, 1, 0, 0, 0, 0, time.UTC)
	laptopDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 4, 0)
	goals := []struct {
		name     string
		target   string
		current  string
		date     *time.Time
		priority domain.GoalPriority
	}{
		{"Emergency Fund", "10000.00", "4200.00", nil, domain.GoalPriorityHigh},
		{"Summer Vacation", "3000.00", "3150.00", &vacationDate, domain.GoalPriorityMedium},
		{"New Laptop", "1800.00", "450.00", &laptopDate, domain.GoalPriorityLow},
	}
	for _, g := range goals {
		goal := &domain.Goal{
			ID:            s.id(),
			WorkspaceID:   workspaceID,
			Name:          g.name,
			TargetAmount:  decimal.RequireFromString(g.target),
			CurrentAmount: decimal.RequireFromString(g.current),
			TargetDate:    g.date,
			Priority:      g.priority,
			CreatedAt:     now.AddDate(0, -3, 0),
			UpdatedAt:     now,
		}
		s.goals[goal.ID] = goal
	}
}
