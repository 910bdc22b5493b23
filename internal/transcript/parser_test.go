package transcript

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday
var now = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

func accounts() []*domain.Account {
	return []*domain.Account{
		{ID: 1, Name: "Checking"},
		{ID: 2, Name: "Savings"},
		{ID: 3, Name: "Travel Card"},
	}
}

func TestParse_FullSentence(t *testing.T) {
	s := Parse("Spent $12.50 at Starbucks on coffee yesterday from checking", Context{
		Accounts: accounts(),
		Now:      now,
	})

	require.NotNil(t, s.Amount)
	assert.True(t, s.Amount.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, domain.TransactionTypeExpense, s.Type)
	require.NotNil(t, s.Category)
	assert.Equal(t, "Dining", *s.Category)
	require.NotNil(t, s.AccountID)
	assert.Equal(t, int32(1), *s.AccountID)
	require.NotNil(t, s.Date)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), *s.Date)
	require.NotNil(t, s.Party)
	assert.Equal(t, "Starbucks", *s.Party)
	assert.Equal(t, 1.0, s.Confidence)
	assert.ElementsMatch(t, []string{FieldAmount, FieldCategory, FieldAccount, FieldDate, FieldParty}, s.Matches)
	assert.Equal(t, "Spent $12.50 at Starbucks on coffee yesterday from checking", s.OriginalText)
}

func TestParse_Amounts(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"paid $45 for lunch", "45"},
		{"paid 12,50 for parking", "12.50"},
		{"rent was 1,200 dollars", "1200"},
		{"rent was 1,250.75", "1250.75"},
		{"twenty bucks and then 20 bucks", "20"},
		{"spent USD 7.5 on coffee", "7.5"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			s := Parse(tt.text, Context{Now: now})
			require.NotNil(t, s.Amount)
			assert.True(t, s.Amount.Equal(decimal.RequireFromString(tt.want)), "got %s", s.Amount)
		})
	}
}

func TestParse_NoAmount(t *testing.T) {
	s := Parse("bought some groceries", Context{Now: now})

	assert.Nil(t, s.Amount)
	require.NotNil(t, s.Category)
	assert.Equal(t, "Groceries", *s.Category)
	assert.InDelta(t, 0.2, s.Confidence, 1e-9)
}

func TestParse_Type(t *testing.T) {
	assert.Equal(t, domain.TransactionTypeIncome, Parse("got paid 3000 salary", Context{Now: now}).Type)
	assert.Equal(t, domain.TransactionTypeIncome, Parse("received 40 from Alex", Context{Now: now}).Type)
	assert.Equal(t, domain.TransactionTypeTransfer, Parse("transfer 100 to savings", Context{Now: now}).Type)
	assert.Equal(t, domain.TransactionTypeExpense, Parse("coffee 4", Context{Now: now}).Type)
}

func TestParse_Dates(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
	}{
		{"coffee 4 today", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
		{"coffee 4 last monday", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"coffee 4 last wednesday", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"coffee 4 on 2025-02-28", time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			s := Parse(tt.text, Context{Now: now})
			require.NotNil(t, s.Date)
			assert.Equal(t, tt.want, *s.Date)
		})
	}
}

func TestParse_IsoDateNotReadAsAmount(t *testing.T) {
	s := Parse("2025-02-28 paid 30 for pizza", Context{Now: now})

	require.NotNil(t, s.Amount)
	assert.True(t, s.Amount.Equal(decimal.NewFromInt(30)))
}

func TestParse_UserCategoryWins(t *testing.T) {
	s := Parse("coffee beans 18 for home barista", Context{
		Categories: []string{"Home Barista", "Dining"},
		Now:        now,
	})

	require.NotNil(t, s.Category)
	assert.Equal(t, "Home Barista", *s.Category)
}

func TestParse_DictionaryUsesUserCasing(t *testing.T) {
	s := Parse("uber 14", Context{Categories: []string{"transport"}, Now: now})

	require.NotNil(t, s.Category)
	assert.Equal(t, "transport", *s.Category)
}

func TestParse_AccountLongestNameWins(t *testing.T) {
	s := Parse("hotel 300 on travel card", Context{Accounts: accounts(), Now: now})

	require.NotNil(t, s.AccountID)
	assert.Equal(t, int32(3), *s.AccountID)
}

func TestParse_PartySkipsAccountNames(t *testing.T) {
	s := Parse("moved 100 from checking to savings", Context{Accounts: accounts(), Now: now})

	assert.Nil(t, s.Party)
	assert.Equal(t, domain.TransactionTypeTransfer, s.Type)
}

func TestParse_PartyDropsArticle(t *testing.T) {
	s := Parse("spent 60 at the Corner Bistro for dinner", Context{Now: now})

	require.NotNil(t, s.Party)
	assert.Equal(t, "Corner Bistro", *s.Party)
}

func TestParse_LongMultibyteTextCutsOnCharacters(t *testing.T) {
	s := Parse("spent 5 at "+strings.Repeat("é", 300), Context{Now: now})

	assert.True(t, utf8.ValidString(s.Description))
	assert.Equal(t, domain.MaxDescriptionLength, utf8.RuneCountInString(s.Description))
	require.NotNil(t, s.Party)
	assert.True(t, utf8.ValidString(*s.Party))
	assert.Equal(t, domain.MaxPartyLength, utf8.RuneCountInString(*s.Party))
}

func TestParse_Empty(t *testing.T) {
	s := Parse("   ", Context{Now: now})

	assert.Nil(t, s.Amount)
	assert.Empty(t, s.Matches)
	assert.Equal(t, 0.0, s.Confidence)
	assert.Equal(t, domain.TransactionTypeExpense, s.Type)
}
