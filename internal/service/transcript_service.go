package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/transcript"
)

// TranscriptService turns spoken sentences into transaction suggestions using
// the workspace's own accounts and budget categories
type TranscriptService struct {
	accountRepo domain.AccountRepository
	budgetRepo  domain.BudgetRepository
	now         func() time.Time
}

func NewTranscriptService(accountRepo domain.AccountRepository, budgetRepo domain.BudgetRepository) *TranscriptService {
	return &TranscriptService{
		accountRepo: accountRepo,
		budgetRepo:  budgetRepo,
		now:         time.Now,
	}
}

// Parse returns a suggestion. Nothing is saved; the client confirms and submits a transaction.
func (s *TranscriptService) Parse(workspaceID int32, text string) (*transcript.Suggestion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrTranscriptEmpty
	}
	if utf8.RuneCountInString(text) > transcript.MaxTextLength {
		return nil, domain.ErrTranscriptTooLong
	}

	accounts, err := s.accountRepo.GetAllByWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}
	budgets, err := s.budgetRepo.GetAllByWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(budgets))
	for _, b := range budgets {
		categories = append(categories, b.Category)
	}

	return transcript.Parse(text, transcript.Context{
		Categories: categories,
		Accounts:   accounts,
		Now:        s.now().UTC(),
	}), nil
}
