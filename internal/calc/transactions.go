package calc

import (
	"sort"
	"strings"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// MatchesFilters reports whether tx satisfies every set filter. Party and search
// are case-insensitive substring matches; category is exact.
func MatchesFilters(tx *domain.Transaction, f *domain.TransactionFilters) bool {
	if f == nil {
		return true
	}
	if f.AccountID != nil && tx.AccountID != *f.AccountID &&
		(tx.TransferAccountID == nil || *tx.TransferAccountID != *f.AccountID) {
		return false
	}
	if f.Category != nil && tx.CategoryName() != *f.Category {
		return false
	}
	if f.Type != nil && tx.Type != *f.Type {
		return false
	}
	if f.Status != nil && tx.Status != *f.Status {
		return false
	}
	if f.Party != nil {
		if tx.Party == nil || !containsFold(*tx.Party, *f.Party) {
			return false
		}
	}
	if f.Search != nil && !containsFold(tx.Description, *f.Search) {
		return false
	}
	if f.StartDate != nil && tx.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && tx.Date.After(*f.EndDate) {
		return false
	}
	return true
}

// FilterTransactions returns the transactions matching f, newest first. Paging fields are ignored.
func FilterTransactions(txs []*domain.Transaction, f *domain.TransactionFilters) []*domain.Transaction {
	result := make([]*domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if MatchesFilters(tx, f) {
			result = append(result, tx)
		}
	}
	SortNewestFirst(result)
	return result
}

// SortNewestFirst orders transactions by date then ID, both descending
func SortNewestFirst(txs []*domain.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Date.Equal(txs[j].Date) {
			return txs[i].ID > txs[j].ID
		}
		return txs[i].Date.After(txs[j].Date)
	})
}

// Paginate slices txs to the requested page and fills in the page metadata
func Paginate(txs []*domain.Transaction, page, pageSize int32) *domain.PaginatedTransactions {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	total := int64(len(txs))
	totalPages := int32((total + int64(pageSize) - 1) / int64(pageSize))

	start := int64(page-1) * int64(pageSize)
	end := start + int64(pageSize)
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &domain.PaginatedTransactions{
		Data:       txs[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// Summarize totals completed income and expenses. Transfers move money between
// accounts and are counted but do not change income or expense totals.
func Summarize(txs []*domain.Transaction) *domain.TransactionSummary {
	summary := &domain.TransactionSummary{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		Net:           decimal.Zero,
		ByCategory:    []domain.CategoryTotal{},
	}

	byCategory := make(map[string]*domain.CategoryTotal)
	for _, tx := range txs {
		if tx.Status != domain.TransactionStatusCompleted {
			continue
		}
		summary.Count++
		switch tx.Type {
		case domain.TransactionTypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount.Abs())
		case domain.TransactionTypeExpense:
			amount := tx.Amount.Abs()
			summary.TotalExpenses = summary.TotalExpenses.Add(amount)
			name := tx.CategoryName()
			if name == "" {
				name = UncategorizedLabel
			}
			total, ok := byCategory[name]
			if !ok {
				total = &domain.CategoryTotal{Category: name, Amount: decimal.Zero}
				byCategory[name] = total
			}
			total.Amount = total.Amount.Add(amount)
			total.Count++
		}
	}
	summary.Net = summary.TotalIncome.Sub(summary.TotalExpenses)

	for _, total := range byCategory {
		total.Share = PercentOf(total.Amount, summary.TotalExpenses).Round(2)
		summary.ByCategory = append(summary.ByCategory, *total)
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		a, b := summary.ByCategory[i], summary.ByCategory[j]
		if a.Amount.Equal(b.Amount) {
			return a.Category < b.Category
		}
		return a.Amount.GreaterThan(b.Amount)
	})

	return summary
}

// UncategorizedLabel groups expenses without a category
const UncategorizedLabel = "Uncategorized"

// BalanceEffect returns the account balance changes a transaction causes while completed
func BalanceEffect(tx *domain.Transaction) []domain.BalanceAdjustment {
	if tx.Status != domain.TransactionStatusCompleted {
		return nil
	}
	amount := tx.Amount.Abs()
	switch tx.Type {
	case domain.TransactionTypeIncome:
		return []domain.BalanceAdjustment{{AccountID: tx.AccountID, Amount: amount}}
	case domain.TransactionTypeExpense:
		return []domain.BalanceAdjustment{{AccountID: tx.AccountID, Amount: amount.Neg()}}
	case domain.TransactionTypeTransfer:
		adjustments := []domain.BalanceAdjustment{{AccountID: tx.AccountID, Amount: amount.Neg()}}
		if tx.TransferAccountID != nil {
			adjustments = append(adjustments, domain.BalanceAdjustment{AccountID: *tx.TransferAccountID, Amount: amount})
		}
		return adjustments
	}
	return nil
}

// BalanceDelta returns the adjustments that move balances from before's effect to after's.
// Either side may be nil (creation or deletion). Zero net changes are dropped.
func BalanceDelta(before, after *domain.Transaction) []domain.BalanceAdjustment {
	net := make(map[int32]decimal.Decimal)
	var order []int32
	add := func(adjustments []domain.BalanceAdjustment, sign int64) {
		for _, adj := range adjustments {
			if _, ok := net[adj.AccountID]; !ok {
				order = append(order, adj.AccountID)
				net[adj.AccountID] = decimal.Zero
			}
			net[adj.AccountID] = net[adj.AccountID].Add(adj.Amount.Mul(decimal.NewFromInt(sign)))
		}
	}
	if before != nil {
		add(BalanceEffect(before), -1)
	}
	if after != nil {
		add(BalanceEffect(after), 1)
	}

	var result []domain.BalanceAdjustment
	for _, id := range order {
		if !net[id].IsZero() {
			result = append(result, domain.BalanceAdjustment{AccountID: id, Amount: net[id]})
		}
	}
	return result
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
