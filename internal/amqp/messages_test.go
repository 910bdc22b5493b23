package amqp

import (
	"testing"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertMessage_RoundTrip(t *testing.T) {
	occurred := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	alert := &domain.Alert{
		WorkspaceID: 7,
		Type:        domain.NotificationGoalAchieved,
		Title:       "Car reached",
		Message:     "You saved 5200.00 of your 5000.00 target for Car.",
		OccurredAt:  occurred,
	}

	msg := NewAlertMessage(alert)
	assert.False(t, msg.PublishedAt.IsZero())

	body, err := msg.ToJSON()
	require.NoError(t, err)
	decoded, err := AlertMessageFromJSON(body)
	require.NoError(t, err)

	got := decoded.Alert()
	assert.Equal(t, alert.WorkspaceID, got.WorkspaceID)
	assert.Equal(t, alert.Type, got.Type)
	assert.Equal(t, alert.Message, got.Message)
	assert.True(t, got.OccurredAt.Equal(occurred))
}

func TestAlertMessageFromJSON_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"workspaceId":`},
		{"wrong field type", `{"workspaceId":"one","type":"budget_over"}`},
		{"missing workspace", `{"type":"budget_over","title":"x"}`},
		{"missing type", `{"workspaceId":3,"title":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AlertMessageFromJSON([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}
