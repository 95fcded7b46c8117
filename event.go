package zephyr

import (
	"time"

	"github.com/google/uuid"
)

// Event is a single typed occurrence flowing through the dispatcher.
// The payload is opaque to the engine; webhook delivery requires it to be
// JSON-marshalable, which is checked at delivery time rather than at emit.
// Events are treated as immutable once constructed.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	EmittedAt time.Time `json:"emitted_at"`
}

// NewEvent builds an Event of the given type carrying payload, with a
// generated ID and the current UTC time.
func NewEvent(eventType string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	}
}
