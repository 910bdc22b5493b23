// Package transcript turns a spoken sentence such as
// "spent 12.50 at Starbucks on coffee yesterday from checking" into suggested
// transaction fields. Results are advisory; nothing here writes data.
package transcript

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Field names reported in Suggestion.Matches
const (
	FieldAmount   = "amount"
	FieldCategory = "category"
	FieldAccount  = "account"
	FieldDate     = "date"
	FieldParty    = "party"
)

// scoredFields is the number of fields that contribute to confidence
const scoredFields = 5

// MaxTextLength bounds the transcript accepted by Parse
const MaxTextLength = 1000

type Suggestion struct {
	Amount       *decimal.Decimal       `json:"amount,omitempty"`
	Type         domain.TransactionType `json:"type"`
	Category     *string                `json:"category,omitempty"`
	AccountID    *int32                 `json:"accountId,omitempty"`
	Date         *time.Time             `json:"date,omitempty"`
	Party        *string                `json:"party,omitempty"`
	Description  string                 `json:"description"`
	Confidence   float64                `json:"confidence"`
	Matches      []string               `json:"matches"`
	OriginalText string                 `json:"originalText"`
}

// Context carries what the parser may match against
type Context struct {
	Categories []string
	Accounts   []*domain.Account
	Now        time.Time
}

var (
	isoDatePattern   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	currencyPattern  = regexp.MustCompile(`(?i)(?:\$|usd\s*)\s*(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:[.,]\d{1,2})?)`)
	unitPattern      = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:[.,]\d{1,2})?)\s*(?:dollars?|bucks|usd)\b`)
	numberPattern    = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:[.,]\d{1,2})?)`)
	lastDayPattern   = regexp.MustCompile(`(?i)\blast\s+(sunday|monday|tuesday|wednesday|thursday|friday|saturday)\b`)
	partyPattern     = regexp.MustCompile(`(?i)\b(?:at|from|to)\s+`)
	wordSplitPattern = regexp.MustCompile(`[^\p{L}\p{N}'&-]+`)
)

var incomeKeywords = []string{"received", "receive", "earned", "earn", "salary", "got paid", "paycheck", "income", "refund", "deposit"}

var transferKeywords = []string{"transfer", "transferred", "moved"}

// categoryKeywords maps a canonical category to the words that suggest it
var categoryKeywords = map[string][]string{
	"Groceries":     {"grocery", "groceries", "supermarket", "market"},
	"Dining":        {"restaurant", "dinner", "lunch", "breakfast", "coffee", "cafe", "pizza", "takeout"},
	"Transport":     {"uber", "taxi", "gas", "fuel", "bus", "train", "parking", "metro"},
	"Utilities":     {"electricity", "electric", "water", "internet", "phone", "utility", "utilities"},
	"Entertainment": {"movie", "movies", "cinema", "concert", "netflix", "spotify", "game", "games"},
	"Shopping":      {"clothes", "shoes", "amazon", "shopping", "mall"},
	"Health":        {"pharmacy", "doctor", "medicine", "dentist", "hospital"},
	"Rent":          {"rent", "landlord"},
	"Salary":        {"salary", "paycheck", "wage", "wages"},
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// partyStopWords end a party name
var partyStopWords = map[string]bool{
	"on": true, "for": true, "with": true, "using": true, "today": true, "yesterday": true,
	"last": true, "and": true, "from": true, "to": true, "at": true, "account": true,
	"via": true, "by": true, "in": true, "this": true,
}

const maxPartyWords = 4

// Parse extracts suggested transaction fields from text. Confidence is the
// share of amount, category, account, date and party that were found.
func Parse(text string, ctx Context) *Suggestion {
	original := text
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)
	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}

	s := &Suggestion{
		Type:         detectType(lower),
		Description:  describe(text),
		Matches:      []string{},
		OriginalText: original,
	}

	date, dateSpan := detectDate(text, now)
	if date != nil {
		s.Date = date
		s.Matches = append(s.Matches, FieldDate)
	}

	// ISO dates would otherwise be read as amounts
	amountText := text
	if dateSpan != nil {
		amountText = text[:dateSpan[0]] + strings.Repeat(" ", dateSpan[1]-dateSpan[0]) + text[dateSpan[1]:]
	}
	if amount := detectAmount(amountText); amount != nil {
		s.Amount = amount
		s.Matches = append(s.Matches, FieldAmount)
	}

	account := detectAccount(lower, ctx.Accounts)
	if account != nil {
		id := account.ID
		s.AccountID = &id
		s.Matches = append(s.Matches, FieldAccount)
	}

	if category := detectCategory(lower, ctx.Categories); category != nil {
		s.Category = category
		s.Matches = append(s.Matches, FieldCategory)
	}

	if party := detectParty(text, ctx.Accounts); party != nil {
		s.Party = party
		s.Matches = append(s.Matches, FieldParty)
	}

	s.Confidence = float64(len(s.Matches)) / scoredFields
	return s
}

func detectType(lower string) domain.TransactionType {
	for _, kw := range transferKeywords {
		if containsWord(lower, kw) {
			return domain.TransactionTypeTransfer
		}
	}
	for _, kw := range incomeKeywords {
		if containsWord(lower, kw) {
			return domain.TransactionTypeIncome
		}
	}
	return domain.TransactionTypeExpense
}

func detectAmount(text string) *decimal.Decimal {
	for _, pattern := range []*regexp.Regexp{currencyPattern, unitPattern, numberPattern} {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if amount, ok := parseAmount(m[1]); ok {
			return &amount
		}
	}
	return nil
}

// parseAmount accepts "1,200.50", "12.50" and "12,50"
func parseAmount(raw string) (decimal.Decimal, bool) {
	switch {
	case strings.Contains(raw, ".") || strings.Count(raw, ",") > 1:
		raw = strings.ReplaceAll(raw, ",", "")
	case strings.Contains(raw, ","):
		parts := strings.SplitN(raw, ",", 2)
		if len(parts[1]) == 3 {
			raw = parts[0] + parts[1]
		} else {
			raw = parts[0] + "." + parts[1]
		}
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}

// detectDate returns the date and, for ISO dates, the byte span it occupies
func detectDate(text string, now time.Time) (*time.Time, []int) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if loc := isoDatePattern.FindStringIndex(text); loc != nil {
		if d, err := time.ParseInLocation("2006-01-02", text[loc[0]:loc[1]], now.Location()); err == nil {
			return &d, loc
		}
	}

	lower := strings.ToLower(text)
	if m := lastDayPattern.FindStringSubmatch(lower); m != nil {
		want := weekdays[m[1]]
		back := (int(today.Weekday()) - int(want) + 7) % 7
		if back == 0 {
			back = 7
		}
		d := today.AddDate(0, 0, -back)
		return &d, nil
	}
	if containsWord(lower, "yesterday") {
		d := today.AddDate(0, 0, -1)
		return &d, nil
	}
	if containsWord(lower, "today") || containsWord(lower, "tonight") {
		return &today, nil
	}
	return nil, nil
}

// detectAccount picks the account whose name appears in the text, longest name first
func detectAccount(lower string, accounts []*domain.Account) *domain.Account {
	candidates := make([]*domain.Account, len(accounts))
	copy(candidates, accounts)
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].Name) > len(candidates[j].Name)
	})
	for _, account := range candidates {
		name := strings.ToLower(strings.TrimSpace(account.Name))
		if name != "" && containsWord(lower, name) {
			return account
		}
	}
	return nil
}

// detectCategory prefers the user's own category names over the keyword dictionary
func detectCategory(lower string, userCategories []string) *string {
	for _, category := range userCategories {
		name := strings.ToLower(strings.TrimSpace(category))
		if name != "" && containsWord(lower, name) {
			found := category
			return &found
		}
	}

	canonical := make([]string, 0, len(categoryKeywords))
	for name := range categoryKeywords {
		canonical = append(canonical, name)
	}
	sort.Strings(canonical)

	for _, name := range canonical {
		for _, kw := range categoryKeywords[name] {
			if !containsWord(lower, kw) {
				continue
			}
			found := name
			for _, category := range userCategories {
				if strings.EqualFold(category, name) {
					found = category
					break
				}
			}
			return &found
		}
	}
	return nil
}

// detectParty reads the words after "at", "from" or "to", skipping account names
func detectParty(text string, accounts []*domain.Account) *string {
	for _, loc := range partyPattern.FindAllStringIndex(text, -1) {
		words := wordSplitPattern.Split(strings.TrimSpace(text[loc[1]:]), -1)
		var party []string
		for _, w := range words {
			if w == "" {
				continue
			}
			lw := strings.ToLower(w)
			if len(party) == 0 && (lw == "the" || lw == "my") {
				continue
			}
			if partyStopWords[lw] || numberPattern.MatchString(w) || len(party) == maxPartyWords {
				break
			}
			party = append(party, w)
		}
		if len(party) == 0 {
			continue
		}
		name := strings.Join(party, " ")
		if isAccountName(name, accounts) {
			continue
		}
		name = truncateRunes(name, domain.MaxPartyLength)
		return &name
	}
	return nil
}

func isAccountName(name string, accounts []*domain.Account) bool {
	lower := strings.ToLower(name)
	for _, account := range accounts {
		accountName := strings.ToLower(account.Name)
		if lower == accountName || strings.HasPrefix(lower, accountName+" ") {
			return true
		}
	}
	return false
}

func describe(text string) string {
	description := strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(truncateRunes(description, domain.MaxDescriptionLength))
}

// truncateRunes cuts s to at most max characters without splitting one
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// containsWord reports whether phrase occurs in lower on word boundaries
func containsWord(lower, phrase string) bool {
	for start := 0; start <= len(lower); {
		idx := strings.Index(lower[start:], phrase)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(phrase)
		if isBoundary(lower, idx-1) && isBoundary(lower, end) {
			return true
		}
		start = idx + 1
	}
	return false
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_')
}
