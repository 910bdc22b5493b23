package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
)

// GuestWorkspace serves every request from the demo workspace. No token is read.
func GuestWorkspace(workspaceID int32) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := context.WithValue(c.Request().Context(), WorkspaceIDKey, workspaceID)
			ctx = context.WithValue(ctx, GuestKey, true)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// IsGuest reports whether the request runs against the demo store
func IsGuest(c echo.Context) bool {
	guest, _ := c.Request().Context().Value(GuestKey).(bool)
	return guest
}
