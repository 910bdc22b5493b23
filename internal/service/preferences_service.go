package service

import (
	"errors"
	"strings"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// PreferencesService reads and writes per-workspace display and alert settings
type PreferencesService struct {
	prefsRepo domain.PreferencesRepository
}

func NewPreferencesService(prefsRepo domain.PreferencesRepository) *PreferencesService {
	return &PreferencesService{prefsRepo: prefsRepo}
}

// GetPreferences returns the saved preferences or the defaults when none were saved
func (s *PreferencesService) GetPreferences(workspaceID int32) (*domain.Preferences, error) {
	prefs, err := s.prefsRepo.Get(workspaceID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultPreferences(workspaceID), nil
	}
	return prefs, err
}

// UpdatePreferencesInput holds optional changes; nil fields keep their value
type UpdatePreferencesInput struct {
	Currency     *string
	DateFormat   *string
	BudgetAlerts *bool
	Theme        *domain.Theme
}

func (s *PreferencesService) UpdatePreferences(workspaceID int32, input UpdatePreferencesInput) (*domain.Preferences, error) {
	prefs, err := s.GetPreferences(workspaceID)
	if err != nil {
		return nil, err
	}

	if input.Currency != nil {
		currency, err := NormalizeCurrency(*input.Currency)
		if err != nil {
			return nil, err
		}
		prefs.Currency = currency
	}
	if input.DateFormat != nil {
		if !domain.ValidDateFormats[*input.DateFormat] {
			return nil, domain.ErrInvalidDateFormat
		}
		prefs.DateFormat = *input.DateFormat
	}
	if input.BudgetAlerts != nil {
		prefs.BudgetAlerts = *input.BudgetAlerts
	}
	if input.Theme != nil {
		switch *input.Theme {
		case domain.ThemeLight, domain.ThemeDark, domain.ThemeSystem:
			prefs.Theme = *input.Theme
		default:
			return nil, domain.ErrInvalidTheme
		}
	}

	return s.prefsRepo.Upsert(prefs)
}

// NormalizeCurrency upper-cases a three letter ISO 4217 code
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", domain.ErrInvalidCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", domain.ErrInvalidCurrency
		}
	}
	return code, nil
}

// preferencesFor tolerates a nil service; the guest graph has no saved preferences
func preferencesFor(s *PreferencesService, workspaceID int32) *domain.Preferences {
	if s == nil {
		return domain.DefaultPreferences(workspaceID)
	}
	prefs, err := s.GetPreferences(workspaceID)
	if err != nil {
		log.Warn().Err(err).Int32("workspace_id", workspaceID).Msg("Falling back to default preferences")
		return domain.DefaultPreferences(workspaceID)
	}
	return prefs
}
