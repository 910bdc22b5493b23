package service

import (
	"context"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

const (
	DefaultNotificationLimit = 20
	MaxNotificationLimit     = 100
)

// NotificationService stores alerts and serves the notification inbox
type NotificationService struct {
	notificationRepo domain.NotificationRepository
	eventPublisher   websocket.EventPublisher
}

func NewNotificationService(notificationRepo domain.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// SetEventPublisher sets the publisher used for notification.created events
func (s *NotificationService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

var _ AlertPublisher = (*NotificationService)(nil)

// PublishAlert stores the alert as an unread notification. The API uses this
// directly when no message queue is configured; the alert worker uses it on delivery.
func (s *NotificationService) PublishAlert(ctx context.Context, alert *domain.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	notification, err := s.notificationRepo.Create(alert.ToNotification())
	if err != nil {
		return err
	}
	log.Info().
		Int32("workspace_id", notification.WorkspaceID).
		Str("type", string(notification.Type)).
		Msg("Notification stored")
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(notification.WorkspaceID, websocket.NotificationCreated(notification))
	}
	return nil
}

// GetNotifications lists the newest notifications first
func (s *NotificationService) GetNotifications(workspaceID int32, unreadOnly bool, limit int32) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		limit = MaxNotificationLimit
	}
	return s.notificationRepo.GetByWorkspace(workspaceID, unreadOnly, limit)
}

func (s *NotificationService) CountUnread(workspaceID int32) (int64, error) {
	return s.notificationRepo.CountUnread(workspaceID)
}

func (s *NotificationService) MarkRead(workspaceID int32, id int32) error {
	return s.notificationRepo.MarkRead(workspaceID, id)
}

// MarkAllRead returns how many notifications changed
func (s *NotificationService) MarkAllRead(workspaceID int32) (int64, error) {
	return s.notificationRepo.MarkAllRead(workspaceID)
}
