package zephyr

import "context"

// Handle tracks one asynchronous emission. It completes once every matched
// listener has a terminal outcome. Outcome slots follow registration order
// even though completion order is not guaranteed.
type Handle struct {
	outcomes []Outcome
	done     chan struct{}
}

func newHandle(n int) *Handle {
	return &Handle{outcomes: make([]Outcome, n), done: make(chan struct{})}
}

// completedHandle is returned for emissions that matched no listeners.
func completedHandle() *Handle {
	h := newHandle(0)
	close(h.done)
	return h
}

// Done returns a channel that is closed when all deliveries have completed.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until all deliveries complete or ctx is done. Cancelling the
// context abandons the wait only; in-flight deliveries keep running.
func (h *Handle) Wait(ctx context.Context) ([]Outcome, error) {
	select {
	case <-h.done:
		return h.snapshot(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Outcomes returns the delivery outcomes in registration order, or nil while
// deliveries are still in flight.
func (h *Handle) Outcomes() []Outcome {
	select {
	case <-h.done:
		return h.snapshot()
	default:
		return nil
	}
}

func (h *Handle) snapshot() []Outcome {
	out := make([]Outcome, len(h.outcomes))
	copy(out, h.outcomes)
	return out
}
