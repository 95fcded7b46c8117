package zephyr

import "time"

// Status is the terminal state of a single delivery.
type Status string

const (
	// StatusSuccess means the listener accepted the event.
	StatusSuccess Status = "success"
	// StatusFailed means every attempt was exhausted; Outcome.Err carries the
	// wrapped cause.
	StatusFailed Status = "failed"
	// StatusSkipped means the context was already done before the first
	// attempt started.
	StatusSkipped Status = "skipped"
)

// Outcome reports the result of delivering one event to one listener.
// Attempts counts performed attempts: always 1 for local and queued
// listeners, up to MaxRetries+1 for webhooks, and 0 when the delivery was
// skipped or failed before the first attempt.
type Outcome struct {
	ListenerID string
	Kind       Kind
	Status     Status
	Attempts   int
	Err        error
	Duration   time.Duration
}

// skippedOutcome marks a delivery that never started because ctx was done.
func skippedOutcome(d Descriptor, err error) Outcome {
	return Outcome{ListenerID: d.ID, Kind: d.Kind, Status: StatusSkipped, Err: err}
}
