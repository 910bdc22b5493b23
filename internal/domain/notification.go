package domain

import (
	"errors"
	"time"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationType string

const (
	NotificationBudgetWarning NotificationType = "budget_warning"
	NotificationBudgetOver    NotificationType = "budget_over"
	NotificationGoalAchieved  NotificationType = "goal_achieved"
)

type Notification struct {
	ID          int32            `json:"id"`
	WorkspaceID int32            `json:"workspaceId"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	IsRead      bool             `json:"isRead"`
	CreatedAt   time.Time        `json:"createdAt"`
}

type NotificationRepository interface {
	Create(notification *Notification) (*Notification, error)
	GetByWorkspace(workspaceID int32, unreadOnly bool, limit int32) ([]*Notification, error)
	CountUnread(workspaceID int32) (int64, error)
	MarkRead(workspaceID int32, id int32) error
	MarkAllRead(workspaceID int32) (int64, error)
}

// Alert is a budget or goal event worth telling the user about. It travels over
// the message queue when one is configured and becomes a Notification on arrival.
type Alert struct {
	WorkspaceID int32            `json:"workspaceId"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	OccurredAt  time.Time        `json:"occurredAt"`
}

// ToNotification converts the alert into an unread notification
func (a *Alert) ToNotification() *Notification {
	return &Notification{
		WorkspaceID: a.WorkspaceID,
		Type:        a.Type,
		Title:       a.Title,
		Message:     a.Message,
		CreatedAt:   a.OccurredAt,
	}
}
