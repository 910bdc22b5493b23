package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{12, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"unexpected EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"library closed error", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"other error", errors.New("precondition failed"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isConnectionError(tt.err))
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}

	t.Run("initially closed", func(t *testing.T) {
		assert.False(t, client.isCircuitOpen())
	})

	t.Run("opens after max failures", func(t *testing.T) {
		for i := 0; i < maxFailures; i++ {
			client.recordFailure()
		}
		assert.True(t, client.isCircuitOpen())
		assert.Equal(t, StateOpen, atomic.LoadInt32(&client.state))
	})

	t.Run("half-open after timeout", func(t *testing.T) {
		client.lastFailure = time.Now().Add(-openTimeout - time.Second)
		assert.False(t, client.isCircuitOpen())
		assert.Equal(t, StateHalfOpen, atomic.LoadInt32(&client.state))
	})

	t.Run("failure while half-open reopens", func(t *testing.T) {
		client.recordFailure()
		assert.True(t, client.isCircuitOpen())
	})

	t.Run("success closes and resets", func(t *testing.T) {
		client.recordSuccess()
		assert.False(t, client.isCircuitOpen())
		assert.Equal(t, int64(0), atomic.LoadInt64(&client.failureCount))
	})
}

func TestClient_PublishAlert_Guards(t *testing.T) {
	alert := &domain.Alert{WorkspaceID: 1, Type: domain.NotificationBudgetOver, Title: "Food budget exceeded"}

	t.Run("open circuit fails fast", func(t *testing.T) {
		client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now()

		err := client.PublishAlert(context.Background(), alert)

		assert.ErrorIs(t, err, ErrCircuitOpen)
	})

	t.Run("cancelled context", func(t *testing.T) {
		client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := client.PublishAlert(ctx, alert)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_CloseWithoutConnection(t *testing.T) {
	client := &Client{}
	assert.NoError(t, client.Close())
}
