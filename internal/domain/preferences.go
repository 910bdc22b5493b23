package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidTheme      = errors.New("invalid theme")
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Supported display date layouts
var ValidDateFormats = map[string]bool{
	"2006-01-02": true,
	"01/02/2006": true,
	"02/01/2006": true,
}

const (
	DefaultCurrency   = "USD"
	DefaultDateFormat = "2006-01-02"
	// WeekStart is fixed; weekly periods always begin on Sunday
	WeekStart = time.Sunday
)

type Preferences struct {
	WorkspaceID  int32     `json:"workspaceId"`
	Currency     string    `json:"currency"`
	DateFormat   string    `json:"dateFormat"`
	BudgetAlerts bool      `json:"budgetAlerts"`
	Theme        Theme     `json:"theme"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DefaultPreferences returns the preferences used before a user saves any
func DefaultPreferences(workspaceID int32) *Preferences {
	return &Preferences{
		WorkspaceID:  workspaceID,
		Currency:     DefaultCurrency,
		DateFormat:   DefaultDateFormat,
		BudgetAlerts: true,
		Theme:        ThemeSystem,
	}
}

type PreferencesRepository interface {
	// Get returns ErrNotFound when nothing was saved yet
	Get(workspaceID int32) (*Preferences, error)
	Upsert(prefs *Preferences) (*Preferences, error)
}
