package websocket

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient captures the messages sent to it
type mockClient struct {
	id          string
	workspaceID int32
	messages    [][]byte
	mu          sync.Mutex
	closed      bool
}

func newMockClient(id string, workspaceID int32) *mockClient {
	return &mockClient{id: id, workspaceID: workspaceID}
}

func (m *mockClient) ID() string         { return m.id }
func (m *mockClient) WorkspaceID() int32 { return m.workspaceID }

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockClient) MessageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	client1 := newMockClient("client-1", 1)
	client2 := newMockClient("client-2", 1)
	client3 := newMockClient("client-3", 2)

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount(1))
	assert.Equal(t, 1, hub.ClientCount(2))
	assert.Equal(t, 0, hub.ClientCount(999))
	assert.Equal(t, 3, hub.TotalClientCount())

	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount(1))

	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_Broadcast_WorkspaceIsolation(t *testing.T) {
	hub := NewHub()

	client1a := newMockClient("client-1a", 1)
	client1b := newMockClient("client-1b", 1)
	client2 := newMockClient("client-2", 2)
	hub.Register(client1a)
	hub.Register(client1b)
	hub.Register(client2)

	hub.Broadcast(1, BudgetAlert(map[string]interface{}{"category": "Groceries"}))

	assert.Eventually(t, func() bool {
		return client1a.MessageCount() == 1 && client1b.MessageCount() == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, client2.MessageCount(), "other workspaces must not receive the event")
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	clientCount := 50
	clients := make([]*mockClient, clientCount)
	for i := 0; i < clientCount; i++ {
		clients[i] = newMockClient(fmt.Sprintf("client-%d", i), int32(i%5))
	}

	for i := 0; i < clientCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
	}
	wg.Wait()
	assert.Equal(t, clientCount, hub.TotalClientCount())

	for i := 0; i < clientCount; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			hub.Broadcast(int32(idx%5), TransactionCreated(map[string]interface{}{"id": float64(idx)}))
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_UnregisterNonexistent(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Unregister(newMockClient("client-1", 1))
	})
}

func TestHub_BroadcastToEmptyWorkspace(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Broadcast(999, GoalAchieved(map[string]interface{}{"id": float64(1)}))
	})
}

func TestHub_CloseAll(t *testing.T) {
	hub := NewHub()
	a := newMockClient("a", 1)
	b := newMockClient("b", 2)
	hub.Register(a)
	hub.Register(b)

	hub.CloseAll()

	assert.True(t, a.IsClosed())
	assert.True(t, b.IsClosed())
	assert.Equal(t, 0, hub.TotalClientCount())
}
