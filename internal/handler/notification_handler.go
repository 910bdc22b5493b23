package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/middleware"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// NotificationHandler serves persisted budget and goal alerts
type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

type NotificationResponse struct {
	ID        int32  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	IsRead    bool   `json:"isRead"`
	CreatedAt string `json:"createdAt"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int64                  `json:"unreadCount"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// GetNotifications godoc
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unreadOnly query bool false "Only unread notifications"
// @Param limit query int false "Maximum number of notifications (default 20, max 100)"
// @Success 200 {object} NotificationListResponse
// @Router /notifications [get]
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	unreadOnly := false
	if raw := c.QueryParam("unreadOnly"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return NewFieldError(c, "unreadOnly", "Must be true or false")
		}
		unreadOnly = parsed
	}
	var limit int32
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 1 {
			return NewFieldError(c, "limit", "Must be a positive integer")
		}
		limit = int32(parsed)
	}

	notifications, err := h.notificationService.GetNotifications(workspaceID, unreadOnly, limit)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get notifications")
		return NewInternalError(c, "Failed to get notifications")
	}
	unread, err := h.notificationService.CountUnread(workspaceID)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to count unread notifications")
		return NewInternalError(c, "Failed to get notifications")
	}

	response := NotificationListResponse{
		Notifications: make([]NotificationResponse, len(notifications)),
		UnreadCount:   unread,
	}
	for i, n := range notifications {
		response.Notifications[i] = NotificationResponse{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: formatTime(n.CreatedAt),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// MarkRead handles PATCH /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid notification ID", nil)
	}

	if err := h.notificationService.MarkRead(workspaceID, id); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			return NewNotFoundError(c, "Notification not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("notification_id", id).Msg("Failed to mark notification read")
		return NewInternalError(c, "Failed to mark notification read")
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	updated, err := h.notificationService.MarkAllRead(workspaceID)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to mark notifications read")
		return NewInternalError(c, "Failed to mark notifications read")
	}
	return c.JSON(http.StatusOK, MarkAllReadResponse{Updated: updated})
}
