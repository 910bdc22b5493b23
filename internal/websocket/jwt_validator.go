package websocket

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrWorkspaceNotFound = errors.New("workspace not found")
)

// WorkspaceLookup resolves the workspace owned by a token subject
type WorkspaceLookup interface {
	GetWorkspaceIDBySubject(subject string) (int32, error)
}

// TokenValidator turns a bearer token into the workspace it may subscribe to
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (int32, error)
}

type noCustomClaims struct{}

func (noCustomClaims) Validate(ctx context.Context) error { return nil }

// JWTValidator checks RS256 tokens against the issuer's JWKS. Browsers cannot set
// headers on the upgrade request, so the token arrives as a query parameter.
type JWTValidator struct {
	validator       *validator.Validator
	workspaceLookup WorkspaceLookup
}

var _ TokenValidator = (*JWTValidator)(nil)

func NewJWTValidator(domain, audience string, workspaceLookup WorkspaceLookup) (*JWTValidator, error) {
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
			return noCustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &JWTValidator{
		validator:       jwtValidator,
		workspaceLookup: workspaceLookup,
	}, nil
}

func (v *JWTValidator) ValidateToken(ctx context.Context, token string) (int32, error) {
	claims, err := v.validator.ValidateToken(ctx, token)
	if err != nil {
		return 0, ErrInvalidToken
	}
	validated, ok := claims.(*validator.ValidatedClaims)
	if !ok || validated.RegisteredClaims.Subject == "" {
		return 0, ErrInvalidToken
	}

	workspaceID, err := v.workspaceLookup.GetWorkspaceIDBySubject(validated.RegisteredClaims.Subject)
	if err != nil {
		return 0, ErrWorkspaceNotFound
	}
	return workspaceID, nil
}
