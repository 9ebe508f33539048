package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// EntityType is the topic clients subscribe to
type EntityType string

const (
	EntityTypeMovement EntityType = "movement"
	EntityTypeService  EntityType = "service"
)

// EntityTypes lists every topic a client may subscribe to
var EntityTypes = []EntityType{EntityTypeMovement, EntityTypeService}

// ParseEntityType returns the entity type for a topic name
func ParseEntityType(s string) (EntityType, bool) {
	for _, t := range EntityTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Event represents a message sent to live clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`    // Combined type e.g. "movement.created"
	Entity    EntityType  `json:"entity"`  // Entity type e.g. "movement"
	Payload   interface{} `json:"payload"` // Full entity data, or {id} on delete
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// MovementCreated creates a movement.created event
func MovementCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeMovement, payload)
}

// MovementUpdated creates a movement.updated event
func MovementUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeMovement, payload)
}

// MovementDeleted creates a movement.deleted event
func MovementDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeMovement, payload)
}

// ServiceCreated creates a service.created event
func ServiceCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeService, payload)
}

// ServiceUpdated creates a service.updated event
func ServiceUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeService, payload)
}

// ServiceDeleted creates a service.deleted event
func ServiceDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeService, payload)
}
