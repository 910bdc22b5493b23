package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AlertPublisher hands an alert to whatever turns it into a notification:
// the message queue when configured, otherwise NotificationService directly.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert *domain.Alert) error
}

const alertPublishTimeout = 5 * time.Second

// AlertService decides when budget and goal changes are worth telling the user about
type AlertService struct {
	publisher      AlertPublisher
	prefs          *PreferencesService
	eventPublisher websocket.EventPublisher
	now            func() time.Time
}

// NewAlertService accepts a nil publisher; live events are still sent
func NewAlertService(publisher AlertPublisher, prefs *PreferencesService) *AlertService {
	return &AlertService{
		publisher: publisher,
		prefs:     prefs,
		now:       time.Now,
	}
}

// SetEventPublisher sets the publisher used for live budget.alert and goal.achieved events
func (s *AlertService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *AlertService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// BudgetAlertPayload is the live budget.alert payload
type BudgetAlertPayload struct {
	BudgetID    int32                    `json:"budgetId"`
	Category    string                   `json:"category"`
	Status      domain.BudgetStatusLevel `json:"status"`
	PercentUsed string                   `json:"percentUsed"`
	Spent       string                   `json:"spentAmount"`
	Budget      string                   `json:"budgetAmount"`
}

// BudgetChanged reacts to a spend change. A live alert is sent whenever the budget
// sits at warning or over after the change; a stored notification only when the
// level rose. before may be nil.
func (s *AlertService) BudgetChanged(workspaceID int32, before, after *domain.BudgetStatus) {
	if s == nil || after == nil || after.Status == domain.BudgetStatusSafe {
		return
	}
	if before != nil && before.SpentAmount.Equal(after.SpentAmount) {
		return
	}
	if !preferencesFor(s.prefs, workspaceID).BudgetAlerts {
		return
	}

	s.publishEvent(workspaceID, websocket.BudgetAlert(BudgetAlertPayload{
		BudgetID:    after.Budget.ID,
		Category:    after.Budget.Category,
		Status:      after.Status,
		PercentUsed: after.PercentUsed.StringFixed(2),
		Spent:       after.SpentAmount.StringFixed(2),
		Budget:      after.Budget.BudgetAmount.StringFixed(2),
	}))

	if before != nil && levelRank(before.Status) >= levelRank(after.Status) {
		return
	}
	s.dispatch(budgetAlert(workspaceID, after, s.now()))
}

// GoalAchieved announces a goal that just reached its target
func (s *AlertService) GoalAchieved(workspaceID int32, goal *domain.Goal, progress domain.GoalProgress) {
	if s == nil {
		return
	}
	s.publishEvent(workspaceID, websocket.GoalAchieved(&domain.GoalWithProgress{Goal: goal, Progress: progress}))
	s.dispatch(&domain.Alert{
		WorkspaceID: workspaceID,
		Type:        domain.NotificationGoalAchieved,
		Title:       fmt.Sprintf("%s reached", goal.Name),
		Message: fmt.Sprintf("You saved %s of your %s target for %s.",
			goal.CurrentAmount.StringFixed(2), goal.TargetAmount.StringFixed(2), goal.Name),
		OccurredAt: s.now().UTC(),
	})
}

func (s *AlertService) dispatch(alert *domain.Alert) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), alertPublishTimeout)
	defer cancel()
	if err := s.publisher.PublishAlert(ctx, alert); err != nil {
		log.Error().Err(err).
			Int32("workspace_id", alert.WorkspaceID).
			Str("alert_type", string(alert.Type)).
			Msg("Failed to publish alert")
	}
}

func budgetAlert(workspaceID int32, status *domain.BudgetStatus, now time.Time) *domain.Alert {
	alert := &domain.Alert{
		WorkspaceID: workspaceID,
		OccurredAt:  now.UTC(),
	}
	category := status.Budget.Category
	if status.Status == domain.BudgetStatusOver {
		alert.Type = domain.NotificationBudgetOver
		alert.Title = fmt.Sprintf("%s budget exceeded", category)
		alert.Message = fmt.Sprintf("You have spent %s of your %s %s budget, %s over.",
			status.SpentAmount.StringFixed(2), status.Budget.BudgetAmount.StringFixed(2), category, overAmount(status).StringFixed(2))
		return alert
	}
	alert.Type = domain.NotificationBudgetWarning
	alert.Title = fmt.Sprintf("%s budget at %s%%", category, status.PercentUsed.Round(0).String())
	alert.Message = fmt.Sprintf("You have spent %s of your %s %s budget. %s left this period.",
		status.SpentAmount.StringFixed(2), status.Budget.BudgetAmount.StringFixed(2), category, status.RemainingAmount.StringFixed(2))
	return alert
}

func overAmount(status *domain.BudgetStatus) decimal.Decimal {
	if status.OverAmount == nil {
		return status.SpentAmount.Sub(status.Budget.BudgetAmount)
	}
	return *status.OverAmount
}

func levelRank(level domain.BudgetStatusLevel) int {
	switch level {
	case domain.BudgetStatusOver:
		return 2
	case domain.BudgetStatusWarning:
		return 1
	}
	return 0
}
