package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/google/uuid"
	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/middleware"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/kantong/kantong-backend/internal/testutil"
	"github.com/labstack/echo/v4"
)

// Helper to set up auth context
func setupAuthContext(c echo.Context, subject string, email, name, picture string) {
	setupAuthContextWithWorkspace(c, subject, email, name, picture, 0)
}

// Helper to set up auth context with workspace ID
func setupAuthContextWithWorkspace(c echo.Context, subject string, email, name, picture string, workspaceID int32) {
	customClaims := &middleware.CustomClaims{
		Email:   email,
		Name:    name,
		Picture: picture,
	}
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Subject: subject,
		},
		CustomClaims: customClaims,
	}
	ctx := context.WithValue(c.Request().Context(), middleware.ClaimsKey, claims)
	ctx = context.WithValue(ctx, middleware.SubjectKey, subject)
	if workspaceID > 0 {
		ctx = context.WithValue(ctx, middleware.WorkspaceIDKey, workspaceID)
	}
	c.SetRequest(c.Request().WithContext(ctx))
}

// newJSONContext builds a request context for workspace 1
func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithWorkspace(c, "auth|test", "test@example.com", "Test User", "", 1)
	return c, rec
}

// withParam sets a single path parameter
func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem details: %v", err)
	}
	return problem
}

func TestCallback_NewUser(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	workspaceRepo := testutil.NewMockWorkspaceRepository()
	handler := NewAuthHandler(service.NewAuthService(userRepo, workspaceRepo))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth|new", "new@example.com", "New User", "https://example.com/pic.png")

	if err := handler.Callback(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response AuthCallbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !response.IsNewUser {
		t.Error("Expected isNewUser to be true")
	}
	if response.User.Email != "new@example.com" {
		t.Errorf("Expected email new@example.com, got %s", response.User.Email)
	}
	if response.Workspace.Name != service.DefaultWorkspaceName {
		t.Errorf("Expected workspace %q, got %q", service.DefaultWorkspaceName, response.Workspace.Name)
	}
	if response.User.AvatarURL == nil || *response.User.AvatarURL != "https://example.com/pic.png" {
		t.Errorf("Expected avatar URL from claims, got %v", response.User.AvatarURL)
	}
}

func TestCallback_MissingEmail(t *testing.T) {
	e := echo.New()
	handler := NewAuthHandler(service.NewAuthService(testutil.NewMockUserRepository(), testutil.NewMockWorkspaceRepository()))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth|new", "", "", "")

	if err := handler.Callback(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	problem := decodeProblem(t, rec)
	if len(problem.Errors) != 1 || problem.Errors[0].Field != "email" {
		t.Errorf("Expected an email field error, got %+v", problem.Errors)
	}
}

func TestCallback_Unauthenticated(t *testing.T) {
	e := echo.New()
	handler := NewAuthHandler(service.NewAuthService(testutil.NewMockUserRepository(), testutil.NewMockWorkspaceRepository()))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Callback(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/problem+json" {
		t.Errorf("Expected problem+json content type, got %s", ct)
	}
}

func TestMe_ExistingUser(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	workspaceRepo := testutil.NewMockWorkspaceRepository()
	userID := uuid.New()
	name := "Existing"
	userRepo.AddUser(&domain.User{ID: userID, AuthSubject: "auth|existing", Email: "existing@example.com", Name: &name})
	workspaceRepo.AddWorkspace(&domain.Workspace{ID: 7, UserID: userID, Name: "Personal"}, "auth|existing")
	handler := NewAuthHandler(service.NewAuthService(userRepo, workspaceRepo))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithWorkspace(c, "auth|existing", "existing@example.com", "Existing", "", 7)

	if err := handler.Me(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response AuthCallbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.User.ID != userID.String() {
		t.Errorf("Expected user %s, got %s", userID, response.User.ID)
	}
	if response.Workspace.ID != 7 {
		t.Errorf("Expected workspace 7, got %d", response.Workspace.ID)
	}
	if response.IsNewUser {
		t.Error("Expected isNewUser to be false")
	}
}

func TestMe_UnknownUser(t *testing.T) {
	e := echo.New()
	handler := NewAuthHandler(service.NewAuthService(testutil.NewMockUserRepository(), testutil.NewMockWorkspaceRepository()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth|ghost", "ghost@example.com", "", "")

	if err := handler.Me(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
