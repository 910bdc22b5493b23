package amqp

import (
	"encoding/json"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
)

// AlertMessage carries one budget or goal alert from the API to the alert worker
type AlertMessage struct {
	WorkspaceID int32                   `json:"workspaceId"`
	Type        domain.NotificationType `json:"type"`
	Title       string                  `json:"title"`
	Message     string                  `json:"message"`
	OccurredAt  time.Time               `json:"occurredAt"`
	PublishedAt time.Time               `json:"publishedAt"`
}

func NewAlertMessage(alert *domain.Alert) *AlertMessage {
	return &AlertMessage{
		WorkspaceID: alert.WorkspaceID,
		Type:        alert.Type,
		Title:       alert.Title,
		Message:     alert.Message,
		OccurredAt:  alert.OccurredAt,
		PublishedAt: time.Now().UTC(),
	}
}

// Alert converts the message back into the domain alert
func (m *AlertMessage) Alert() *domain.Alert {
	return &domain.Alert{
		WorkspaceID: m.WorkspaceID,
		Type:        m.Type,
		Title:       m.Title,
		Message:     m.Message,
		OccurredAt:  m.OccurredAt,
	}
}

func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertMessageFromJSON decodes a message and rejects ones without a workspace or type
func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.WorkspaceID == 0 || msg.Type == "" {
		return nil, ErrInvalidMessage
	}
	return &msg, nil
}
