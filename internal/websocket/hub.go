// Package websocket pushes workspace-scoped change events to connected browsers.
package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when sending to a closed or saturated client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface is what the hub needs from a connection
type ClientInterface interface {
	ID() string
	WorkspaceID() int32
	Send(data []byte) error
	Close() error
}

// Hub tracks connections per workspace. It is safe for concurrent use.
type Hub struct {
	workspaces map[int32]map[string]ClientInterface
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		workspaces: make(map[int32]map[string]ClientInterface),
	}
}

// Register adds a client under its workspace
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	workspaceID := client.WorkspaceID()
	if h.workspaces[workspaceID] == nil {
		h.workspaces[workspaceID] = make(map[string]ClientInterface)
	}
	h.workspaces[workspaceID][client.ID()] = client

	log.Debug().
		Int32("workspace_id", workspaceID).
		Str("client_id", client.ID()).
		Msg("Live client registered")
}

// Unregister removes a client; unknown clients are ignored
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	workspaceID := client.WorkspaceID()
	clients, ok := h.workspaces[workspaceID]
	if !ok {
		return
	}
	if _, exists := clients[client.ID()]; !exists {
		return
	}
	delete(clients, client.ID())
	if len(clients) == 0 {
		delete(h.workspaces, workspaceID)
	}

	log.Debug().
		Int32("workspace_id", workspaceID).
		Str("client_id", client.ID()).
		Msg("Live client unregistered")
}

// Broadcast sends event to every client of workspaceID without blocking on slow clients
func (h *Hub) Broadcast(workspaceID int32, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int32("workspace_id", workspaceID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	recipients := h.snapshot(workspaceID)
	if len(recipients) == 0 {
		return
	}

	for _, client := range recipients {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Int32("workspace_id", workspaceID).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Int32("workspace_id", workspaceID).
		Str("event_type", event.Type).
		Int("client_count", len(recipients)).
		Msg("Broadcast event")
}

func (h *Hub) snapshot(workspaceID int32) []ClientInterface {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.workspaces[workspaceID]
	result := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		result = append(result, client)
	}
	return result
}

// ClientCount returns the number of clients connected to a workspace
func (h *Hub) ClientCount(workspaceID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.workspaces[workspaceID])
}

// TotalClientCount returns the number of clients across all workspaces
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.workspaces {
		total += len(clients)
	}
	return total
}

// CloseAll disconnects every client. Used during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	workspaces := h.workspaces
	h.workspaces = make(map[int32]map[string]ClientInterface)
	h.mu.Unlock()

	closed := 0
	for _, clients := range workspaces {
		for _, client := range clients {
			if err := client.Close(); err != nil {
				log.Debug().Err(err).Str("client_id", client.ID()).Msg("Error closing live client")
			}
			closed++
		}
	}
	log.Info().Int("client_count", closed).Msg("Closed live clients")
}
