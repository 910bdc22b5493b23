package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation         = "https://kantong.app/errors/validation"
	ErrorTypeNotFound           = "https://kantong.app/errors/not-found"
	ErrorTypeUnauthorized       = "https://kantong.app/errors/unauthorized"
	ErrorTypeForbidden          = "https://kantong.app/errors/forbidden"
	ErrorTypeConflict           = "https://kantong.app/errors/conflict"
	ErrorTypeUnprocessable      = "https://kantong.app/errors/unprocessable"
	ErrorTypeInternal           = "https://kantong.app/errors/internal"
	ErrorTypeServiceUnavailable = "https://kantong.app/errors/service-unavailable"
)

func problem(c echo.Context, status int, errorType, title, detail string, errors []ValidationError) error {
	return c.JSON(status, ProblemDetails{
		Type:     errorType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return problem(c, http.StatusBadRequest, ErrorTypeValidation, "Validation Error", detail, errors)
}

// NewFieldError is a validation error for a single field
func NewFieldError(c echo.Context, field, message string) error {
	return NewValidationError(c, "Validation failed", []ValidationError{{Field: field, Message: message}})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return problem(c, http.StatusNotFound, ErrorTypeNotFound, "Not Found", detail, nil)
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnauthorized, ErrorTypeUnauthorized, "Unauthorized", detail, nil)
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return problem(c, http.StatusForbidden, ErrorTypeForbidden, "Forbidden", detail, nil)
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return problem(c, http.StatusConflict, ErrorTypeConflict, "Conflict", detail, nil)
}

// NewUnprocessableError is used when a well-formed request cannot be applied,
// such as a contribution larger than the account balance
func NewUnprocessableError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnprocessableEntity, ErrorTypeUnprocessable, "Unprocessable Entity", detail, nil)
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return problem(c, http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error", detail, nil)
}

// NewServiceUnavailableError is returned when an optional backend is not configured
func NewServiceUnavailableError(c echo.Context, detail string) error {
	return problem(c, http.StatusServiceUnavailable, ErrorTypeServiceUnavailable, "Service Unavailable", detail, nil)
}

func parseID(c echo.Context, name string) (int32, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

func parseDecimal(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(value))
}

// parseDate accepts YYYY-MM-DD or RFC 3339
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// parseAsOf reads the optional asOf query parameter, defaulting to now
func parseAsOf(c echo.Context) (time.Time, bool) {
	raw := c.QueryParam("asOf")
	if raw == "" {
		return time.Now().UTC(), true
	}
	t, err := parseDate(raw)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
