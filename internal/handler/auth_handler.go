package handler

import (
	"net/http"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/middleware"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// AuthCallbackResponse represents the response from the auth callback
type AuthCallbackResponse struct {
	User      UserResponse      `json:"user"`
	Workspace WorkspaceResponse `json:"workspace"`
	IsNewUser bool              `json:"isNewUser"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

// WorkspaceResponse represents a workspace in API responses
type WorkspaceResponse struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// Callback godoc
// @Summary Complete sign-in
// @Description Called by the frontend after the identity provider issued a token. Creates the user and the default workspace on first sign-in.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AuthCallbackResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /auth/callback [post]
func (h *AuthHandler) Callback(c echo.Context) error {
	subject := middleware.GetSubject(c)
	if subject == "" {
		log.Error().Msg("No subject in context - middleware may not be configured")
		return NewUnauthorizedError(c, "Authentication required")
	}

	var email string
	var name, picture *string
	if claims := middleware.GetCustomClaims(c); claims != nil {
		email = claims.Email
		if claims.Name != "" {
			name = &claims.Name
		}
		if claims.Picture != "" {
			picture = &claims.Picture
		}
	}
	if email == "" {
		log.Error().Str("subject", subject).Msg("No email in JWT claims")
		return NewFieldError(c, "email", "Email claim is missing from token")
	}

	result, err := h.authService.AuthenticateUser(subject, email, name, picture)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Failed to authenticate user")
		return NewInternalError(c, "Failed to authenticate user")
	}

	return c.JSON(http.StatusOK, AuthCallbackResponse{
		User:      toUserResponse(result.User),
		Workspace: toWorkspaceResponse(result.Workspace),
		IsNewUser: result.IsNewUser,
	})
}

// Me returns the current authenticated user's information
// GET /auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	subject := middleware.GetSubject(c)
	if subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.authService.GetUserBySubject(subject)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Failed to get user")
		return NewNotFoundError(c, "User not found")
	}
	workspace, err := h.authService.GetWorkspaceBySubject(subject)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Failed to get workspace")
		return NewInternalError(c, "Failed to get workspace")
	}

	return c.JSON(http.StatusOK, AuthCallbackResponse{
		User:      toUserResponse(user),
		Workspace: toWorkspaceResponse(workspace),
	})
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}

func toWorkspaceResponse(w *domain.Workspace) WorkspaceResponse {
	return WorkspaceResponse{ID: w.ID, Name: w.Name}
}
