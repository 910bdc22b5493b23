package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kantong/kantong-backend/internal/domain"
)

// PreferencesRepository implements domain.PreferencesRepository using PostgreSQL
type PreferencesRepository struct {
	pool *pgxpool.Pool
}

// NewPreferencesRepository creates a new PreferencesRepository
func NewPreferencesRepository(pool *pgxpool.Pool) *PreferencesRepository {
	return &PreferencesRepository{pool: pool}
}

// Get returns the saved preferences or domain.ErrNotFound
func (r *PreferencesRepository) Get(workspaceID int32) (*domain.Preferences, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT workspace_id, currency, date_format, budget_alerts, theme, updated_at
		FROM preferences WHERE workspace_id = $1`,
		workspaceID,
	)
	prefs, err := scanPreferences(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return prefs, nil
}

// Upsert saves preferences, replacing any previous row
func (r *PreferencesRepository) Upsert(prefs *domain.Preferences) (*domain.Preferences, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO preferences (workspace_id, currency, date_format, budget_alerts, theme)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (workspace_id) DO UPDATE
		SET currency = EXCLUDED.currency,
			date_format = EXCLUDED.date_format,
			budget_alerts = EXCLUDED.budget_alerts,
			theme = EXCLUDED.theme,
			updated_at = NOW()
		RETURNING workspace_id, currency, date_format, budget_alerts, theme, updated_at`,
		prefs.WorkspaceID, prefs.Currency, prefs.DateFormat, prefs.BudgetAlerts, string(prefs.Theme),
	)
	return scanPreferences(row)
}

func scanPreferences(row pgx.Row) (*domain.Preferences, error) {
	var (
		p     domain.Preferences
		theme string
	)
	if err := row.Scan(&p.WorkspaceID, &p.Currency, &p.DateFormat, &p.BudgetAlerts, &theme, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Theme = domain.Theme(theme)
	return &p, nil
}
