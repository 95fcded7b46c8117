package zephyr

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultAsyncWorkers = 10

// deliverer executes one delivery to one listener and reports the outcome.
// There is one implementation per listener kind.
type deliverer interface {
	deliver(ctx context.Context, d Descriptor, evt Event) Outcome
}

// Dispatcher routes emitted events to their registered listeners. It is safe
// for concurrent use: emission, registration and unregistration may happen
// from any goroutine.
type Dispatcher struct {
	registry     *Registry
	logger       *slog.Logger
	client       *http.Client
	backend      QueueBackend
	asyncWorkers int
	promReg      prometheus.Registerer
	metrics      *metrics
	deliverers   map[Kind]deliverer
	sem          chan struct{}
	wg           sync.WaitGroup
}

// New creates a Dispatcher. The zero configuration delivers locally and over
// webhooks; queued listeners additionally need WithQueueBackend.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		asyncWorkers: defaultAsyncWorkers,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.registry == nil {
		d.registry = NewRegistry()
	}
	if d.client == nil {
		d.client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if d.promReg != nil {
		d.metrics = newMetrics(d.promReg)
	}
	d.sem = make(chan struct{}, d.asyncWorkers)
	d.deliverers = map[Kind]deliverer{
		KindLocal:   localInvoker{},
		KindWebhook: &webhookSender{client: d.client, logger: d.logger},
		KindQueued:  &queuedSubmitter{backend: d.backend, logger: d.logger},
	}
	return d
}

// Registry returns the dispatcher's listener registry.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Register adds a listener, returning its effective ID.
func (d *Dispatcher) Register(desc Descriptor) (string, error) {
	id, err := d.registry.Register(desc)
	if err != nil {
		return "", err
	}
	d.logger.Info("listener registered",
		"listener_id", id, "event_type", desc.EventType, "kind", string(desc.Kind))
	return id, nil
}

// On registers fn as a local listener for eventType.
func (d *Dispatcher) On(eventType string, fn ListenerFunc) (string, error) {
	return d.Register(NewLocalListener(eventType, fn))
}

// Unregister removes a listener by ID.
func (d *Dispatcher) Unregister(id string) error {
	if err := d.registry.Unregister(id); err != nil {
		return err
	}
	d.logger.Info("listener unregistered", "listener_id", id)
	return nil
}

// Emit builds an event of the given type and delivers it synchronously.
func (d *Dispatcher) Emit(ctx context.Context, eventType string, payload any) []Outcome {
	return d.EmitSync(ctx, NewEvent(eventType, payload))
}

// EmitSync delivers evt to every listener registered for its type, in
// registration order, blocking until all deliveries complete. One listener's
// failure never prevents the remaining listeners from being attempted. With
// no listeners registered the result is empty. When ctx is done mid-loop,
// the remaining listeners are recorded as skipped.
func (d *Dispatcher) EmitSync(ctx context.Context, evt Event) []Outcome {
	listeners := d.registry.ListenersFor(evt.Type)
	d.metrics.observeEmit("sync")
	if len(listeners) == 0 {
		return nil
	}

	outcomes := make([]Outcome, 0, len(listeners))
	for i, l := range listeners {
		if err := ctx.Err(); err != nil {
			for _, rest := range listeners[i:] {
				out := skippedOutcome(rest, err)
				d.metrics.observeOutcome(out)
				outcomes = append(outcomes, out)
			}
			break
		}
		outcomes = append(outcomes, d.deliver(ctx, l, evt))
	}
	return outcomes
}

// EmitAsync delivers evt to every matched listener on its own goroutine,
// bounded by the async worker cap, and returns immediately. Deliveries
// observe ctx; pass a context detached from the caller's lifetime when they
// must outlive it.
func (d *Dispatcher) EmitAsync(ctx context.Context, evt Event) *Handle {
	listeners := d.registry.ListenersFor(evt.Type)
	d.metrics.observeEmit("async")
	if len(listeners) == 0 {
		return completedHandle()
	}

	h := newHandle(len(listeners))
	var pending sync.WaitGroup
	for i, l := range listeners {
		pending.Add(1)
		d.wg.Add(1)
		go func(slot int, desc Descriptor) {
			defer pending.Done()
			defer d.wg.Done()

			d.sem <- struct{}{}
			defer func() { <-d.sem }()

			if err := ctx.Err(); err != nil {
				out := skippedOutcome(desc, err)
				d.metrics.observeOutcome(out)
				h.outcomes[slot] = out
				return
			}
			h.outcomes[slot] = d.deliver(ctx, desc, evt)
		}(i, l)
	}
	go func() {
		pending.Wait()
		close(h.done)
	}()
	return h
}

// deliver routes one delivery to the strategy for the listener's kind.
func (d *Dispatcher) deliver(ctx context.Context, desc Descriptor, evt Event) Outcome {
	out := d.deliverers[desc.Kind].deliver(ctx, desc, evt)
	d.metrics.observeOutcome(out)

	if out.Status == StatusFailed {
		d.logger.Warn("delivery failed",
			"event_type", evt.Type, "event_id", evt.ID, "listener_id", desc.ID,
			"kind", string(desc.Kind), "attempts", out.Attempts, "error", out.Err)
	} else {
		d.logger.Debug("delivery completed",
			"event_type", evt.Type, "event_id", evt.ID, "listener_id", desc.ID,
			"kind", string(desc.Kind), "status", string(out.Status), "attempts", out.Attempts)
	}
	return out
}

// Shutdown waits for in-flight asynchronous deliveries to finish. The
// context bounds the wait; pending deliveries continue in the background if
// it expires.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
