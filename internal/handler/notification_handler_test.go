package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/kantong/kantong-backend/internal/testutil"
)

func seededNotifications() *testutil.MockNotificationRepository {
	repo := testutil.NewMockNotificationRepository()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	repo.Notifications = []*domain.Notification{
		{ID: 1, WorkspaceID: 1, Type: domain.NotificationBudgetWarning, Title: "Groceries at 80%", Message: "80.00 of 100.00 spent", CreatedAt: now},
		{ID: 2, WorkspaceID: 1, Type: domain.NotificationBudgetOver, Title: "Dining over budget", Message: "120.00 of 100.00 spent", IsRead: true, CreatedAt: now},
		{ID: 3, WorkspaceID: 1, Type: domain.NotificationGoalAchieved, Title: "Vacation reached", Message: "Goal reached", CreatedAt: now},
		{ID: 4, WorkspaceID: 2, Type: domain.NotificationBudgetWarning, Title: "Other workspace", Message: "hidden", CreatedAt: now},
	}
	return repo
}

func TestGetNotifications(t *testing.T) {
	handler := NewNotificationHandler(service.NewNotificationService(seededNotifications()))
	c, rec := newJSONContext(http.MethodGet, "/api/v1/notifications", "")

	if err := handler.GetNotifications(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var response NotificationListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response.Notifications) != 3 {
		t.Fatalf("Expected 3 notifications, got %d", len(response.Notifications))
	}
	if response.Notifications[0].ID != 3 {
		t.Errorf("Expected newest first, got ID %d", response.Notifications[0].ID)
	}
	if response.UnreadCount != 2 {
		t.Errorf("Expected 2 unread, got %d", response.UnreadCount)
	}
	if response.Notifications[0].CreatedAt != "2026-03-10T09:00:00Z" {
		t.Errorf("Expected RFC3339 timestamp, got %s", response.Notifications[0].CreatedAt)
	}
}

func TestGetNotifications_UnreadOnly(t *testing.T) {
	handler := NewNotificationHandler(service.NewNotificationService(seededNotifications()))
	c, rec := newJSONContext(http.MethodGet, "/api/v1/notifications?unreadOnly=true&limit=1", "")

	if err := handler.GetNotifications(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var response NotificationListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response.Notifications) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(response.Notifications))
	}
	if response.Notifications[0].IsRead {
		t.Error("Expected only unread notifications")
	}
}

func TestGetNotifications_InvalidQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"bad unreadOnly", "?unreadOnly=maybe", "unreadOnly"},
		{"zero limit", "?limit=0", "limit"},
		{"non numeric limit", "?limit=ten", "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewNotificationHandler(service.NewNotificationService(seededNotifications()))
			c, rec := newJSONContext(http.MethodGet, "/api/v1/notifications"+tt.query, "")

			if err := handler.GetNotifications(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", rec.Code)
			}
			problem := decodeProblem(t, rec)
			if len(problem.Errors) != 1 || problem.Errors[0].Field != tt.field {
				t.Errorf("Expected %s field error, got %+v", tt.field, problem.Errors)
			}
		})
	}
}

func TestMarkRead(t *testing.T) {
	repo := seededNotifications()
	handler := NewNotificationHandler(service.NewNotificationService(repo))
	c, rec := newJSONContext(http.MethodPatch, "/api/v1/notifications/1/read", "")
	withParam(c, "id", "1")

	if err := handler.MarkRead(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rec.Code)
	}
	if !repo.Notifications[0].IsRead {
		t.Error("Expected notification 1 to be read")
	}
}

func TestMarkRead_OtherWorkspace(t *testing.T) {
	handler := NewNotificationHandler(service.NewNotificationService(seededNotifications()))
	c, rec := newJSONContext(http.MethodPatch, "/api/v1/notifications/4/read", "")
	withParam(c, "id", "4")

	if err := handler.MarkRead(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestMarkAllRead(t *testing.T) {
	repo := seededNotifications()
	handler := NewNotificationHandler(service.NewNotificationService(repo))
	c, rec := newJSONContext(http.MethodPost, "/api/v1/notifications/read-all", "")

	if err := handler.MarkAllRead(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var response MarkAllReadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Updated != 2 {
		t.Errorf("Expected 2 updated, got %d", response.Updated)
	}
	if repo.Notifications[3].IsRead {
		t.Error("Expected other workspace notification to stay unread")
	}
}
