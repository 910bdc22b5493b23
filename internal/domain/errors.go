package domain

import "errors"

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrNameRequired      = errors.New("name is required")
	ErrNameTooLong       = errors.New("name exceeds maximum length")
)

// Calculation errors
var (
	// ErrInvalidArgument covers unknown period kinds and non-positive limits or targets
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidAmount is returned for non-positive monetary amounts
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientFunds is returned when a contribution exceeds the source balance
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Validation constants
const (
	MaxAccountNameLength      = 255
	MaxGoalNameLength         = 255
	MaxCategoryLength         = 100
	MaxDescriptionLength      = 255
	MaxPartyLength            = 255
	MaxContributionNoteLength = 500
)
