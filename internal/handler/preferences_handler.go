package handler

import (
	"errors"
	"net/http"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/middleware"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// PreferencesHandler handles display and alert settings
type PreferencesHandler struct {
	preferencesService *service.PreferencesService
}

// NewPreferencesHandler creates a new PreferencesHandler
func NewPreferencesHandler(preferencesService *service.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{preferencesService: preferencesService}
}

// PreferencesResponse represents workspace preferences. weekStart is fixed.
type PreferencesResponse struct {
	Currency     string `json:"currency"`
	DateFormat   string `json:"dateFormat"`
	WeekStart    string `json:"weekStart"`
	BudgetAlerts bool   `json:"budgetAlerts"`
	Theme        string `json:"theme"`
}

// UpdatePreferencesRequest holds optional changes
type UpdatePreferencesRequest struct {
	Currency     *string `json:"currency,omitempty"`
	DateFormat   *string `json:"dateFormat,omitempty"`
	BudgetAlerts *bool   `json:"budgetAlerts,omitempty"`
	Theme        *string `json:"theme,omitempty"`
}

// GetPreferences handles GET /api/v1/preferences
func (h *PreferencesHandler) GetPreferences(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	prefs, err := h.preferencesService.GetPreferences(workspaceID)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get preferences")
		return NewInternalError(c, "Failed to get preferences")
	}
	return c.JSON(http.StatusOK, toPreferencesResponse(prefs))
}

// UpdatePreferences godoc
// @Summary Update preferences
// @Tags preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdatePreferencesRequest true "Preference changes"
// @Success 200 {object} PreferencesResponse
// @Failure 400 {object} ProblemDetails
// @Router /preferences [put]
func (h *PreferencesHandler) UpdatePreferences(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req UpdatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdatePreferencesInput{
		Currency:     req.Currency,
		DateFormat:   req.DateFormat,
		BudgetAlerts: req.BudgetAlerts,
	}
	if req.Theme != nil {
		theme := domain.Theme(*req.Theme)
		input.Theme = &theme
	}

	prefs, err := h.preferencesService.UpdatePreferences(workspaceID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCurrency):
			return NewFieldError(c, "currency", "Must be a 3-letter ISO 4217 code")
		case errors.Is(err, domain.ErrInvalidDateFormat):
			return NewFieldError(c, "dateFormat", "Must be one of: 2006-01-02, 01/02/2006, 02/01/2006")
		case errors.Is(err, domain.ErrInvalidTheme):
			return NewFieldError(c, "theme", "Theme must be one of: light, dark, system")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to update preferences")
		return NewInternalError(c, "Failed to update preferences")
	}

	log.Info().Int32("workspace_id", workspaceID).Msg("Preferences updated")
	return c.JSON(http.StatusOK, toPreferencesResponse(prefs))
}

func toPreferencesResponse(p *domain.Preferences) PreferencesResponse {
	return PreferencesResponse{
		Currency:     p.Currency,
		DateFormat:   p.DateFormat,
		WeekStart:    "sunday",
		BudgetAlerts: p.BudgetAlerts,
		Theme:        string(p.Theme),
	}
}
