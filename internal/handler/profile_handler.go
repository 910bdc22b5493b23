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

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// UpdateProfileRequest represents the update profile request
type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	subject := middleware.GetSubject(c)
	if subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.profileService.GetProfile(subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("subject", subject).Msg("Failed to get profile")
		return NewInternalError(c, "Failed to get profile")
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateProfile handles PUT /profile
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	subject := middleware.GetSubject(c)
	if subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.profileService.UpdateProfile(subject, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNameRequired):
			return NewFieldError(c, "name", "Name is required")
		case errors.Is(err, domain.ErrNameTooLong):
			return NewFieldError(c, "name", "Name must be 255 characters or less")
		case errors.Is(err, domain.ErrUserNotFound):
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("subject", subject).Msg("Failed to update profile")
		return NewInternalError(c, "Failed to update profile")
	}

	log.Info().Str("subject", subject).Msg("Profile updated")
	return c.JSON(http.StatusOK, toUserResponse(user))
}
