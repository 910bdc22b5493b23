package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 5) // 10 per minute, burst of 5
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		if !rl.Allow("203.0.113.7") {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if rl.Allow("203.0.113.7") {
		t.Error("Request 6 should be rate limited")
	}
}

func TestRateLimiter_DifferentKeys(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Errorf("Key a request %d should be allowed", i+1)
		}
	}
	if rl.Allow("a") {
		t.Error("Key a should be rate limited")
	}

	for i := 0; i < 3; i++ {
		if !rl.Allow("b") {
			t.Errorf("Key b request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_GetStateUnknownKey(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 4)
	defer rl.Stop()

	remaining, reset := rl.GetState("nobody")
	if remaining != 4 {
		t.Errorf("Expected full burst 4, got %d", remaining)
	}
	if !reset.After(time.Now()) {
		t.Error("Expected reset time in the future")
	}
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 2)
	defer rl.Stop()

	rl.Allow("stale")
	rl.Allow("fresh")
	rl.mu.Lock()
	rl.limiters["stale"].lastSeen = time.Now().Add(-2 * LimiterTTL)
	rl.mu.Unlock()

	rl.evictIdle(time.Now())

	if rl.Size() != 1 {
		t.Fatalf("Expected 1 tracked key, got %d", rl.Size())
	}
	if _, ok := rl.limiters["fresh"]; !ok {
		t.Error("Expected fresh key to survive")
	}
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 2)
	rl.Stop()
	rl.Stop()
}

func TestRateLimitMiddleware_ByClientIP(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(10, 2)
	defer rl.Stop()

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}
	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/demo/accounts", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		if err := RateLimitMiddleware(rl, nil)(handler)(e.NewContext(req, rec)); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		return rec
	}

	for i := 0; i < 2; i++ {
		rec := send("198.51.100.1")
		if rec.Code != http.StatusOK {
			t.Errorf("Request %d: Expected status 200, got %d", i+1, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "10" {
			t.Errorf("Request %d: Expected X-RateLimit-Limit 10, got %q", i+1, rec.Header().Get("X-RateLimit-Limit"))
		}
	}

	rec := send("198.51.100.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("Expected remaining 0, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}

	if rec := send("198.51.100.2"); rec.Code != http.StatusOK {
		t.Errorf("Other client: Expected status 200, got %d", rec.Code)
	}
}

func TestRateLimitMiddleware_EmptyKeySkips(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(1, 1)
	defer rl.Stop()

	mw := RateLimitMiddleware(rl, func(c echo.Context) string { return "" })
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(e.NewContext(req, rec))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("Request %d: Expected status 200, got %d", i+1, rec.Code)
		}
	}
	if rl.Size() != 0 {
		t.Errorf("Expected no tracked keys, got %d", rl.Size())
	}
}

func TestWorkspaceKey(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if key := WorkspaceKey(c); key != "" {
		t.Errorf("Expected empty key without workspace, got %q", key)
	}

	ctx := context.WithValue(req.Context(), WorkspaceIDKey, int32(12))
	c.SetRequest(req.WithContext(ctx))
	if key := WorkspaceKey(c); key != "workspace:12" {
		t.Errorf("Expected workspace:12, got %q", key)
	}
}
