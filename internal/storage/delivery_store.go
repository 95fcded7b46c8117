package storage

import (
	"context"
	"time"
)

// DeliveryLogEntry is one recorded delivery attempt outcome for an emitted
// event. One event produces one entry per matched listener.
type DeliveryLogEntry struct {
	ID         int64     `json:"id"`
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	ListenerID string    `json:"listener_id"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	Attempts   int       `json:"attempts"`
	ErrorMsg   string    `json:"error_msg,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// DeliveryStore persists delivery outcomes for later inspection.
type DeliveryStore interface {
	// Record appends one delivery outcome to the log.
	Record(ctx context.Context, entry DeliveryLogEntry) error

	// List returns the most recent entries, newest first, up to limit.
	List(ctx context.Context, limit int) ([]DeliveryLogEntry, error)

	// ListByEvent returns all entries recorded for a single event ID,
	// oldest first.
	ListByEvent(ctx context.Context, eventID string) ([]DeliveryLogEntry, error)

	// Prune deletes entries older than the cutoff and reports how many
	// rows were removed.
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}
