package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrGoalNotFound        = errors.New("goal not found")
	ErrInvalidGoalPriority = errors.New("invalid goal priority")
	ErrNoteTooLong         = errors.New("note exceeds maximum length")
)

type GoalPriority string

const (
	GoalPriorityHigh   GoalPriority = "high"
	GoalPriorityMedium GoalPriority = "medium"
	GoalPriorityLow    GoalPriority = "low"
)

// IsValid reports whether p is a known priority
func (p GoalPriority) IsValid() bool {
	switch p {
	case GoalPriorityHigh, GoalPriorityMedium, GoalPriorityLow:
		return true
	}
	return false
}

type Goal struct {
	ID            int32           `json:"id"`
	WorkspaceID   int32           `json:"workspaceId"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	TargetDate    *time.Time      `json:"targetDate,omitempty"`
	Priority      GoalPriority    `json:"priority"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// GoalProgress is derived from a goal's current and target amounts
type GoalProgress struct {
	Percent         decimal.Decimal `json:"percent"`
	Achieved        bool            `json:"achieved"`
	OvershootAmount decimal.Decimal `json:"overshootAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
}

// Contribution is a transfer from an account into a goal
type Contribution struct {
	ID              int32           `json:"id"`
	WorkspaceID     int32           `json:"workspaceId"`
	SourceAccountID int32           `json:"sourceAccountId"`
	GoalID          int32           `json:"goalId"`
	Amount          decimal.Decimal `json:"amount"`
	Note            *string         `json:"note,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ContributionResult carries both sides of a contribution so they are applied together
type ContributionResult struct {
	Account      *Account      `json:"account"`
	Goal         *Goal         `json:"goal"`
	Contribution *Contribution `json:"contribution,omitempty"`
}

// ContributionApplier computes the post-contribution account and goal from their
// current persisted state. Repositories call it while both rows are locked.
type ContributionApplier func(account *Account, goal *Goal) (*ContributionResult, error)

// GoalEditor changes the stored goal in place. It runs on the locked row, so
// fields it leaves alone keep their stored values.
type GoalEditor func(goal *Goal) error

type GoalRepository interface {
	Create(goal *Goal) (*Goal, error)
	GetByID(workspaceID int32, id int32) (*Goal, error)
	GetAllByWorkspace(workspaceID int32) ([]*Goal, error)
	Update(workspaceID int32, id int32, edit GoalEditor) (*Goal, error)
	Delete(workspaceID int32, id int32) error
	// Contribute atomically persists the account and goal returned by apply
	// together with a new contribution row
	Contribute(workspaceID, accountID, goalID int32, note *string, apply ContributionApplier) (*ContributionResult, error)
	GetContributions(workspaceID int32, goalID int32) ([]*Contribution, error)
}
