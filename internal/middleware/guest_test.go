package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestGuestWorkspace(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/demo/dashboard", nil)
	req.Header.Set("Authorization", "Bearer ignored")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var workspaceID int32
	var guest bool
	err := GuestWorkspace(1)(func(c echo.Context) error {
		workspaceID = GetWorkspaceID(c)
		guest = IsGuest(c)
		return c.NoContent(http.StatusOK)
	})(c)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if workspaceID != 1 {
		t.Errorf("Expected workspace 1, got %d", workspaceID)
	}
	if !guest {
		t.Error("Expected guest flag")
	}
	if GetSubject(c) != "" {
		t.Errorf("Expected no subject, got %q", GetSubject(c))
	}
}
