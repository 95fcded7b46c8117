package zephyr

import (
	"context"
	"fmt"
	"time"
)

// localInvoker calls local listener functions in the dispatching goroutine.
// Exactly one attempt; local listeners are never retried.
type localInvoker struct{}

func (localInvoker) deliver(ctx context.Context, d Descriptor, evt Event) Outcome {
	start := time.Now()
	err := callListener(ctx, d.Local.Fn, evt)

	out := Outcome{ListenerID: d.ID, Kind: KindLocal, Attempts: 1, Duration: time.Since(start)}
	if err != nil {
		out.Status = StatusFailed
		out.Err = &DeliveryFailure{ListenerID: d.ID, Kind: KindLocal, Attempts: 1, Err: err}
		return out
	}
	out.Status = StatusSuccess
	return out
}

// callListener runs fn with panic recovery so one bad listener cannot take
// down the dispatch loop.
func callListener(ctx context.Context, fn ListenerFunc, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panicked: %v", r)
		}
	}()
	return fn(ctx, evt)
}
