package websocket

// EventPublisher delivers events to the live clients of a workspace
type EventPublisher interface {
	Publish(workspaceID int32, event Event)
}

var _ EventPublisher = (*Hub)(nil)

// Publish broadcasts the event to the workspace
func (h *Hub) Publish(workspaceID int32, event Event) {
	h.Broadcast(workspaceID, event)
}

// NoOpPublisher drops every event; the guest graph uses it
type NoOpPublisher struct{}

func (n *NoOpPublisher) Publish(workspaceID int32, event Event) {}
