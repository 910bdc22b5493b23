package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType is the action part of an event name
type EventType string

const (
	EventTypeCreated  EventType = "created"
	EventTypeUpdated  EventType = "updated"
	EventTypeDeleted  EventType = "deleted"
	EventTypeAlert    EventType = "alert"
	EventTypeAchieved EventType = "achieved"
)

// EntityType is the subject part of an event name
type EntityType string

const (
	EntityTypeTransaction  EntityType = "transaction"
	EntityTypeBudget       EntityType = "budget"
	EntityTypeGoal         EntityType = "goal"
	EntityTypeContribution EntityType = "contribution"
	EntityTypeAccount      EntityType = "account"
	EntityTypeNotification EntityType = "notification"
)

// Event is the envelope pushed to clients: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"` // e.g. "budget.alert"
	Entity    EntityType  `json:"entity"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent builds an event named "<entity>.<type>"
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
}

func TransactionUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeTransaction, payload)
}

func TransactionDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeTransaction, payload)
}

func AccountCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeAccount, payload)
}

func AccountUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeAccount, payload)
}

func AccountDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeAccount, payload)
}

func BudgetCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeBudget, payload)
}

func BudgetUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBudget, payload)
}

func BudgetDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeBudget, payload)
}

// BudgetAlert is sent when a budget reaches the warning or over level
func BudgetAlert(payload interface{}) Event {
	return NewEvent(EventTypeAlert, EntityTypeBudget, payload)
}

func GoalCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeGoal, payload)
}

func GoalUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeGoal, payload)
}

func GoalDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeGoal, payload)
}

// GoalAchieved is sent once, when a goal first reaches its target
func GoalAchieved(payload interface{}) Event {
	return NewEvent(EventTypeAchieved, EntityTypeGoal, payload)
}

func ContributionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeContribution, payload)
}

func NotificationCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeNotification, payload)
}
