package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kantong/kantong-backend/internal/calc"
	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// GoalService manages savings goals and contributions into them
type GoalService struct {
	goalRepo       domain.GoalRepository
	alerts         *AlertService
	eventPublisher websocket.EventPublisher
	now            func() time.Time
}

// NewGoalService creates a new GoalService. alerts may be nil.
func NewGoalService(goalRepo domain.GoalRepository, alerts *AlertService) *GoalService {
	return &GoalService{
		goalRepo: goalRepo,
		alerts:   alerts,
		now:      time.Now,
	}
}

func (s *GoalService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *GoalService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// CreateGoalInput holds the input for creating a goal
type CreateGoalInput struct {
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	TargetDate    *time.Time
	Priority      domain.GoalPriority
}

func (s *GoalService) CreateGoal(workspaceID int32, input CreateGoalInput) (*domain.GoalWithProgress, error) {
	name, err := validateGoalName(input.Name)
	if err != nil {
		return nil, err
	}
	if !input.TargetAmount.IsPositive() {
		return nil, domain.ErrInvalidArgument
	}
	if input.CurrentAmount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.GoalPriorityMedium
	}
	if !priority.IsValid() {
		return nil, domain.ErrInvalidGoalPriority
	}

	now := s.now().UTC()
	goal, err := s.goalRepo.Create(&domain.Goal{
		WorkspaceID:   workspaceID,
		Name:          name,
		TargetAmount:  input.TargetAmount.Round(2),
		CurrentAmount: input.CurrentAmount.Round(2),
		TargetDate:    dateOnly(input.TargetDate),
		Priority:      priority,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}
	result := withProgress(goal)
	s.publishEvent(workspaceID, websocket.GoalCreated(result))
	return result, nil
}

// GetGoals lists goals by priority, then target date
func (s *GoalService) GetGoals(workspaceID int32) ([]*domain.GoalWithProgress, error) {
	goals, err := s.goalRepo.GetAllByWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}
	result := make([]*domain.GoalWithProgress, 0, len(goals))
	for _, g := range goals {
		result = append(result, withProgress(g))
	}
	return result, nil
}

func (s *GoalService) GetGoal(workspaceID int32, id int32) (*domain.GoalWithProgress, error) {
	goal, err := s.goalRepo.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}
	return withProgress(goal), nil
}

// UpdateGoalInput holds optional changes. ClearTargetDate removes the deadline.
type UpdateGoalInput struct {
	Name            *string
	TargetAmount    *decimal.Decimal
	CurrentAmount   *decimal.Decimal
	TargetDate      *time.Time
	ClearTargetDate bool
	Priority        *domain.GoalPriority
}

// UpdateGoal edits a goal. A set CurrentAmount replaces the saved amount
// directly; no account balance moves with it.
func (s *GoalService) UpdateGoal(workspaceID int32, id int32, input UpdateGoalInput) (*domain.GoalWithProgress, error) {
	var name string
	if input.Name != nil {
		var err error
		if name, err = validateGoalName(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.TargetAmount != nil && !input.TargetAmount.IsPositive() {
		return nil, domain.ErrInvalidArgument
	}
	if input.CurrentAmount != nil && input.CurrentAmount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, domain.ErrInvalidGoalPriority
	}

	var wasAchieved bool
	saved, err := s.goalRepo.Update(workspaceID, id, func(goal *domain.Goal) error {
		wasAchieved = calc.ComputeGoalProgress(goal).Achieved
		if input.Name != nil {
			goal.Name = name
		}
		if input.TargetAmount != nil {
			goal.TargetAmount = input.TargetAmount.Round(2)
		}
		if input.CurrentAmount != nil {
			goal.CurrentAmount = input.CurrentAmount.Round(2)
		}
		if input.ClearTargetDate {
			goal.TargetDate = nil
		} else if input.TargetDate != nil {
			goal.TargetDate = dateOnly(input.TargetDate)
		}
		if input.Priority != nil {
			goal.Priority = *input.Priority
		}
		goal.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := withProgress(saved)
	s.publishEvent(workspaceID, websocket.GoalUpdated(result))
	if !wasAchieved && result.Progress.Achieved {
		s.alerts.GoalAchieved(workspaceID, saved, result.Progress)
	}
	return result, nil
}

func (s *GoalService) DeleteGoal(workspaceID int32, id int32) error {
	if err := s.goalRepo.Delete(workspaceID, id); err != nil {
		return err
	}
	s.publishEvent(workspaceID, websocket.GoalDeleted(map[string]int32{"id": id}))
	return nil
}

// ContributeInput holds the input for moving money into a goal
type ContributeInput struct {
	AccountID int32
	Amount    decimal.Decimal
	Note      *string
}

// Contribute moves money from an account into a goal. Both balances change
// together or not at all; the check against the account balance runs on the
// locked rows inside the repository.
func (s *GoalService) Contribute(workspaceID int32, goalID int32, input ContributeInput) (*domain.ContributionResult, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	note, err := normalizeLabel(input.Note, domain.MaxContributionNoteLength, domain.ErrNoteTooLong)
	if err != nil {
		return nil, err
	}
	amount := input.Amount.Round(2)

	var wasAchieved bool
	result, err := s.goalRepo.Contribute(workspaceID, input.AccountID, goalID, note,
		func(account *domain.Account, goal *domain.Goal) (*domain.ContributionResult, error) {
			wasAchieved = calc.ComputeGoalProgress(goal).Achieved
			return calc.ApplyContribution(account, goal, amount, s.now().UTC())
		})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Int32("goal_id", goalID).
		Int32("account_id", input.AccountID).
		Str("amount", amount.StringFixed(2)).
		Msg("Contribution recorded")

	s.publishEvent(workspaceID, websocket.ContributionCreated(result))
	progress := calc.ComputeGoalProgress(result.Goal)
	if !wasAchieved && progress.Achieved {
		s.alerts.GoalAchieved(workspaceID, result.Goal, progress)
	}
	return result, nil
}

// GetContributions lists a goal's contributions, newest first
func (s *GoalService) GetContributions(workspaceID int32, goalID int32) ([]*domain.Contribution, error) {
	return s.goalRepo.GetContributions(workspaceID, goalID)
}

func withProgress(goal *domain.Goal) *domain.GoalWithProgress {
	return &domain.GoalWithProgress{Goal: goal, Progress: calc.ComputeGoalProgress(goal)}
}

func validateGoalName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > domain.MaxGoalNameLength {
		return "", domain.ErrNameTooLong
	}
	return name, nil
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
