package zephyr

import "fmt"

// DuplicateListenerError is returned when registering a listener whose ID is
// already present in the registry.
type DuplicateListenerError struct {
	ID string
}

func (e *DuplicateListenerError) Error() string {
	return fmt.Sprintf("listener %q already registered", e.ID)
}

// NotFoundError is returned when unregistering a listener ID that is not
// present in the registry.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("listener %q not found", e.ID)
}

// TransportError reports a single failed webhook exchange: a connection
// error, a timeout, or a non-2xx response. Status is zero when the request
// never completed.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("webhook %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("webhook %s: unexpected status %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// BackendUnavailable reports a queued submission that the backend rejected,
// or the absence of a configured backend.
type BackendUnavailable struct {
	Queue string
	Err   error
}

func (e *BackendUnavailable) Error() string {
	return fmt.Sprintf("queue %q unavailable: %v", e.Queue, e.Err)
}

func (e *BackendUnavailable) Unwrap() error { return e.Err }

// DeliveryFailure reports a delivery whose attempts are exhausted. It wraps
// the error from the final attempt and is surfaced only through Outcome,
// never as a return value of the emit paths.
type DeliveryFailure struct {
	ListenerID string
	Kind       Kind
	Attempts   int
	Err        error
}

func (e *DeliveryFailure) Error() string {
	return fmt.Sprintf("delivery to %s listener %q failed after %d attempt(s): %v",
		e.Kind, e.ListenerID, e.Attempts, e.Err)
}

func (e *DeliveryFailure) Unwrap() error { return e.Err }
