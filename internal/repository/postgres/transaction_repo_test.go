package postgres

import (
	"testing"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildTransactionFilter_NoFilters(t *testing.T) {
	where, args := buildTransactionFilter(7, nil)

	assert.Equal(t, "workspace_id = $1", where)
	assert.Equal(t, []any{int32(7)}, args)
}

func TestBuildTransactionFilter_AllFilters(t *testing.T) {
	accountID := int32(3)
	category := "Groceries"
	txType := domain.TransactionTypeExpense
	status := domain.TransactionStatusCompleted
	party := "50%_off"
	search := "milk"
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)

	where, args := buildTransactionFilter(1, &domain.TransactionFilters{
		AccountID: &accountID,
		Category:  &category,
		Type:      &txType,
		Status:    &status,
		Party:     &party,
		Search:    &search,
		StartDate: &start,
		EndDate:   &end,
	})

	assert.Equal(t,
		"workspace_id = $1 AND (account_id = $2 OR transfer_account_id = $2) AND category = $3 AND type = $4"+
			" AND status = $5 AND party ILIKE $6 AND description ILIKE $7 AND date >= $8 AND date <= $9",
		where,
	)
	assert.Len(t, args, 9)
	assert.Equal(t, `%50\%\_off%`, args[5])
	assert.Equal(t, "%milk%", args[6])
	assert.Equal(t, start, args[7])
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\\b\%c\_d`, escapeLike(`a\b%c_d`))
}

func TestEmptyToNullText(t *testing.T) {
	assert.False(t, emptyToNullText("").Valid)
	text := emptyToNullText("Dining")
	assert.True(t, text.Valid)
	assert.Equal(t, "Dining", text.String)
}
