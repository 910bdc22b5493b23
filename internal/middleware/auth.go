package middleware

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CustomClaims contains the profile claims carried by the ID provider's access token
type CustomClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// SubjectKey is the context key for the token subject
	SubjectKey contextKey = "subject"
	// WorkspaceIDKey is the context key for the caller's workspace ID
	WorkspaceIDKey contextKey = "workspace_id"
	// GuestKey marks requests served from the demo store
	GuestKey contextKey = "guest"
)

// WorkspaceProvider resolves the workspace owned by a token subject
type WorkspaceProvider interface {
	GetWorkspaceIDBySubject(subject string) (int32, error)
}

// TokenValidator is satisfied by *validator.Validator
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// AuthMiddleware provides JWT validation middleware
type AuthMiddleware struct {
	validator         TokenValidator
	workspaceProvider WorkspaceProvider
}

// NewAuthMiddleware validates RS256 tokens against the issuer's JWKS
func NewAuthMiddleware(domain, audience string, workspaceProvider WorkspaceProvider) (*AuthMiddleware, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return NewAuthMiddlewareWithValidator(jwtValidator, workspaceProvider), nil
}

func NewAuthMiddlewareWithValidator(tokenValidator TokenValidator, workspaceProvider WorkspaceProvider) *AuthMiddleware {
	return &AuthMiddleware{
		validator:         tokenValidator,
		workspaceProvider: workspaceProvider,
	}
}

// Authenticate validates the bearer token and injects the caller's workspace
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return m.authenticate(true)
}

// AuthenticateUser validates the bearer token only. Used by the sign-in callback,
// which runs before the workspace exists.
func (m *AuthMiddleware) AuthenticateUser() echo.MiddlewareFunc {
	return m.authenticate(false)
}

func (m *AuthMiddleware) authenticate(requireWorkspace bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "Missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				return unauthorizedError(c, "Invalid authorization header format")
			}

			claims, err := m.validator.ValidateToken(c.Request().Context(), parts[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "Invalid token")
			}

			validatedClaims, ok := claims.(*validator.ValidatedClaims)
			if !ok || validatedClaims.RegisteredClaims.Subject == "" {
				return unauthorizedError(c, "Invalid claims")
			}

			subject := validatedClaims.RegisteredClaims.Subject
			ctx := context.WithValue(c.Request().Context(), ClaimsKey, validatedClaims)
			ctx = context.WithValue(ctx, SubjectKey, subject)

			if requireWorkspace && m.workspaceProvider != nil {
				workspaceID, err := m.workspaceProvider.GetWorkspaceIDBySubject(subject)
				if err != nil {
					log.Debug().Err(err).Str("subject", subject).Msg("Workspace lookup failed")
					return unauthorizedError(c, "Workspace not found")
				}
				ctx = context.WithValue(ctx, WorkspaceIDKey, workspaceID)
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetSubject extracts the token subject from the context
func GetSubject(c echo.Context) string {
	if id, ok := c.Request().Context().Value(SubjectKey).(string); ok {
		return id
	}
	return ""
}

// GetClaims extracts the validated claims from the context
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// GetCustomClaims extracts the custom claims from the context
func GetCustomClaims(c echo.Context) *CustomClaims {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		return custom
	}
	return nil
}

// GetWorkspaceID extracts the workspace ID from the context
func GetWorkspaceID(c echo.Context) int32 {
	if id, ok := c.Request().Context().Value(WorkspaceIDKey).(int32); ok {
		return id
	}
	return 0
}
