package zephyr

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// QueueBackend hands queued deliveries to an external task execution system.
// Submit returns nil when the submission was accepted for execution; any
// error means it was rejected. Execution results are observed out of band by
// the backend, not by the dispatcher.
type QueueBackend interface {
	Submit(ctx context.Context, queue, task string, evt Event) error
}

// ErrNoQueueBackend is the rejection cause when a queued listener is
// dispatched on a Dispatcher that has no backend configured.
var ErrNoQueueBackend = errors.New("no queue backend configured")

// queuedSubmitter delivers events by submitting tasks to a QueueBackend.
// Submission is a single attempt; retry policy belongs to the backend.
type queuedSubmitter struct {
	backend QueueBackend
	logger  *slog.Logger
}

func (q *queuedSubmitter) deliver(ctx context.Context, d Descriptor, evt Event) Outcome {
	start := time.Now()

	var err error
	if q.backend == nil {
		err = ErrNoQueueBackend
	} else {
		err = q.backend.Submit(ctx, d.Queued.Queue, d.Queued.Task, evt)
	}

	out := Outcome{ListenerID: d.ID, Kind: KindQueued, Attempts: 1, Duration: time.Since(start)}
	if err != nil {
		out.Status = StatusFailed
		out.Err = &DeliveryFailure{
			ListenerID: d.ID,
			Kind:       KindQueued,
			Attempts:   1,
			Err:        &BackendUnavailable{Queue: d.Queued.Queue, Err: err},
		}
		q.logger.Warn("queue submission rejected",
			"listener_id", d.ID, "queue", d.Queued.Queue, "task", d.Queued.Task, "error", err)
		return out
	}
	out.Status = StatusSuccess
	return out
}
