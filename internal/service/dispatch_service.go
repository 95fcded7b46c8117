// Package service implements the business logic layer between HTTP handlers
// and the dispatch engine. All interfaces are designed for easy mocking in
// tests.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaharia-lab/zephyr"
	"github.com/shaharia-lab/zephyr/internal/storage"
)

const maskedHeader = "***"

// Mode selects how an emission is delivered.
type Mode string

const (
	// ModeSync blocks until every matched listener has a terminal outcome.
	ModeSync Mode = "sync"
	// ModeAsync returns immediately; outcomes land in the delivery history.
	ModeAsync Mode = "async"
)

// EmitRequest is the inbound payload for emitting an event.
type EmitRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Mode    Mode            `json:"mode,omitempty"`
}

// EmitResult reports an accepted emission. Results is populated for sync
// emissions only.
type EmitResult struct {
	EventID string           `json:"event_id"`
	Mode    Mode             `json:"mode"`
	Results []DeliveryResult `json:"results,omitempty"`
}

// DeliveryResult is the API view of one delivery outcome.
type DeliveryResult struct {
	ListenerID string `json:"listener_id"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	Attempts   int    `json:"attempts"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// WebhookParams carries webhook listener settings over the API. Durations are
// Go duration strings ("10s", "500ms").
type WebhookParams struct {
	URL         string            `json:"url"`
	Method      string            `json:"method,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Timeout     string            `json:"timeout,omitempty"`
	MaxRetries  int               `json:"max_retries,omitempty"`
	BackoffBase string            `json:"backoff_base,omitempty"`
	MaxBackoff  string            `json:"max_backoff,omitempty"`
}

// QueuedParams carries queued listener settings over the API.
type QueuedParams struct {
	Queue string `json:"queue"`
	Task  string `json:"task"`
}

// RegisterRequest describes a listener to add at runtime. Local listeners are
// in-process functions and cannot be created over the API.
type RegisterRequest struct {
	ID        string         `json:"id,omitempty"`
	EventType string         `json:"event_type"`
	Kind      string         `json:"kind"`
	Webhook   *WebhookParams `json:"webhook,omitempty"`
	Queued    *QueuedParams  `json:"queued,omitempty"`
}

// ListenerInfo is the API view of a registered listener. Header values are
// masked.
type ListenerInfo struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	Kind      string         `json:"kind"`
	Webhook   *WebhookParams `json:"webhook,omitempty"`
	Queued    *QueuedParams  `json:"queued,omitempty"`
}

// DispatchService exposes the dispatch engine to the HTTP layer.
type DispatchService interface {
	// Emit dispatches an event. Sync mode blocks and returns per-listener
	// results; async mode returns immediately with just the event ID.
	Emit(ctx context.Context, req EmitRequest) (*EmitResult, error)

	// ListListeners returns all registered listeners, grouped by event type.
	ListListeners(ctx context.Context) ([]ListenerInfo, error)

	// RegisterListener adds a webhook or queued listener at runtime.
	RegisterListener(ctx context.Context, req RegisterRequest) (*ListenerInfo, error)

	// UnregisterListener removes a listener by ID.
	UnregisterListener(ctx context.Context, id string) error

	// ListDeliveries returns the most recent delivery history entries.
	ListDeliveries(ctx context.Context, limit int) ([]storage.DeliveryLogEntry, error)

	// ListDeliveriesForEvent returns one event's delivery history in
	// delivery order, so async emissions can be traced by event ID.
	ListDeliveriesForEvent(ctx context.Context, eventID string) ([]storage.DeliveryLogEntry, error)

	// Drain waits until the outcomes of all accepted asynchronous emissions
	// have been recorded, or ctx is done.
	Drain(ctx context.Context) error
}

// dispatchService is the default implementation of DispatchService.
type dispatchService struct {
	dispatcher *zephyr.Dispatcher
	store      storage.DeliveryStore
	logger     *slog.Logger
	recording  sync.WaitGroup
}

// NewDispatchService returns a DispatchService backed by the given dispatcher
// and delivery store.
func NewDispatchService(dispatcher *zephyr.Dispatcher, store storage.DeliveryStore, logger *slog.Logger) DispatchService {
	return &dispatchService{
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
	}
}

func (s *dispatchService) Emit(ctx context.Context, req EmitRequest) (*EmitResult, error) {
	if req.Type == "" {
		return nil, &ValidationError{Field: "type", Message: "type is required"}
	}

	mode := req.Mode
	if mode == "" {
		mode = ModeSync
	}

	var payload any
	if len(req.Payload) > 0 {
		payload = req.Payload
	}
	evt := zephyr.NewEvent(req.Type, payload)

	switch mode {
	case ModeSync:
		outcomes := s.dispatcher.EmitSync(ctx, evt)
		s.record(ctx, evt, outcomes)

		results := make([]DeliveryResult, 0, len(outcomes))
		for _, out := range outcomes {
			results = append(results, deliveryResult(out))
		}
		return &EmitResult{EventID: evt.ID, Mode: ModeSync, Results: results}, nil

	case ModeAsync:
		// Deliveries must outlive the HTTP request that triggered them.
		h := s.dispatcher.EmitAsync(context.WithoutCancel(ctx), evt)
		s.recording.Add(1)
		go func() {
			defer s.recording.Done()
			outcomes, _ := h.Wait(context.Background())
			s.record(context.Background(), evt, outcomes)
		}()
		return &EmitResult{EventID: evt.ID, Mode: ModeAsync}, nil

	default:
		return nil, &ValidationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", mode)}
	}
}

func (s *dispatchService) ListListeners(_ context.Context) ([]ListenerInfo, error) {
	descriptors := s.dispatcher.Registry().All()
	infos := make([]ListenerInfo, 0, len(descriptors))
	for _, d := range descriptors {
		infos = append(infos, listenerInfo(d))
	}
	return infos, nil
}

func (s *dispatchService) RegisterListener(_ context.Context, req RegisterRequest) (*ListenerInfo, error) {
	desc, err := descriptorFromRequest(req)
	if err != nil {
		return nil, err
	}

	id, err := s.dispatcher.Register(desc)
	if err != nil {
		var dup *zephyr.DuplicateListenerError
		if errors.As(err, &dup) {
			return nil, &ConflictError{Resource: "listener", ID: dup.ID}
		}
		return nil, &ValidationError{Message: err.Error()}
	}

	desc.ID = id
	// Re-read so the reported settings include applied defaults.
	for _, registered := range s.dispatcher.Registry().ListenersFor(desc.EventType) {
		if registered.ID == id {
			desc = registered
			break
		}
	}
	info := listenerInfo(desc)
	return &info, nil
}

func (s *dispatchService) UnregisterListener(_ context.Context, id string) error {
	if err := s.dispatcher.Unregister(id); err != nil {
		var nf *zephyr.NotFoundError
		if errors.As(err, &nf) {
			return &NotFoundError{Resource: "listener", ID: id}
		}
		return fmt.Errorf("unregistering listener %q: %w", id, err)
	}
	return nil
}

func (s *dispatchService) ListDeliveries(ctx context.Context, limit int) ([]storage.DeliveryLogEntry, error) {
	entries, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	return entries, nil
}

func (s *dispatchService) ListDeliveriesForEvent(ctx context.Context, eventID string) ([]storage.DeliveryLogEntry, error) {
	if eventID == "" {
		return nil, &ValidationError{Field: "event_id", Message: "event_id is required"}
	}
	entries, err := s.store.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries for event %q: %w", eventID, err)
	}
	return entries, nil
}

func (s *dispatchService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.recording.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// record appends one history entry per outcome. Storage failures are logged,
// never propagated: history is an observability surface, not a delivery
// guarantee.
func (s *dispatchService) record(ctx context.Context, evt zephyr.Event, outcomes []zephyr.Outcome) {
	for _, out := range outcomes {
		entry := storage.DeliveryLogEntry{
			EventID:    evt.ID,
			EventType:  evt.Type,
			ListenerID: out.ListenerID,
			Kind:       string(out.Kind),
			Status:     string(out.Status),
			Attempts:   out.Attempts,
			DurationMS: out.Duration.Milliseconds(),
		}
		if out.Err != nil {
			entry.ErrorMsg = out.Err.Error()
		}
		if err := s.store.Record(ctx, entry); err != nil {
			s.logger.Error("recording delivery outcome",
				"event_id", evt.ID, "listener_id", out.ListenerID, "error", err)
		}
	}
}

func deliveryResult(out zephyr.Outcome) DeliveryResult {
	r := DeliveryResult{
		ListenerID: out.ListenerID,
		Kind:       string(out.Kind),
		Status:     string(out.Status),
		Attempts:   out.Attempts,
		DurationMS: out.Duration.Milliseconds(),
	}
	if out.Err != nil {
		r.Error = out.Err.Error()
	}
	return r
}

func descriptorFromRequest(req RegisterRequest) (zephyr.Descriptor, error) {
	if req.EventType == "" {
		return zephyr.Descriptor{}, &ValidationError{Field: "event_type", Message: "event_type is required"}
	}

	switch zephyr.Kind(req.Kind) {
	case zephyr.KindWebhook:
		if req.Webhook == nil || req.Webhook.URL == "" {
			return zephyr.Descriptor{}, &ValidationError{Field: "webhook.url", Message: "url is required"}
		}
		timeout, err := parseDurationField("webhook.timeout", req.Webhook.Timeout)
		if err != nil {
			return zephyr.Descriptor{}, err
		}
		backoffBase, err := parseDurationField("webhook.backoff_base", req.Webhook.BackoffBase)
		if err != nil {
			return zephyr.Descriptor{}, err
		}
		maxBackoff, err := parseDurationField("webhook.max_backoff", req.Webhook.MaxBackoff)
		if err != nil {
			return zephyr.Descriptor{}, err
		}
		d := zephyr.NewWebhookListener(req.EventType, zephyr.WebhookConfig{
			URL:         req.Webhook.URL,
			Method:      req.Webhook.Method,
			Headers:     req.Webhook.Headers,
			Timeout:     timeout,
			MaxRetries:  req.Webhook.MaxRetries,
			BackoffBase: backoffBase,
			MaxBackoff:  maxBackoff,
		})
		d.ID = req.ID
		return d, nil

	case zephyr.KindQueued:
		if req.Queued == nil || req.Queued.Queue == "" || req.Queued.Task == "" {
			return zephyr.Descriptor{}, &ValidationError{Field: "queued", Message: "queue and task are required"}
		}
		d := zephyr.NewQueuedListener(req.EventType, zephyr.QueuedConfig{
			Queue: req.Queued.Queue,
			Task:  req.Queued.Task,
		})
		d.ID = req.ID
		return d, nil

	case zephyr.KindLocal:
		return zephyr.Descriptor{}, &ValidationError{Field: "kind", Message: "local listeners cannot be registered over the API"}

	default:
		return zephyr.Descriptor{}, &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown kind %q", req.Kind)}
	}
}

func parseDurationField(field, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &ValidationError{Field: field, Message: fmt.Sprintf("invalid duration %q", v)}
	}
	return d, nil
}

func listenerInfo(d zephyr.Descriptor) ListenerInfo {
	info := ListenerInfo{ID: d.ID, EventType: d.EventType, Kind: string(d.Kind)}
	switch d.Kind {
	case zephyr.KindWebhook:
		info.Webhook = &WebhookParams{
			URL:         d.Webhook.URL,
			Method:      d.Webhook.Method,
			Headers:     maskHeaders(d.Webhook.Headers),
			Timeout:     d.Webhook.Timeout.String(),
			MaxRetries:  d.Webhook.MaxRetries,
			BackoffBase: d.Webhook.BackoffBase.String(),
			MaxBackoff:  d.Webhook.MaxBackoff.String(),
		}
	case zephyr.KindQueued:
		info.Queued = &QueuedParams{Queue: d.Queued.Queue, Task: d.Queued.Task}
	case zephyr.KindLocal:
		// Local listeners carry only a function; nothing to report.
	}
	return info
}

// maskHeaders hides header values, which often carry credentials. Keys stay
// visible so operators can tell which headers are set.
func maskHeaders(h map[string]string) map[string]string {
	if len(h) == 0 {
		return nil
	}
	masked := make(map[string]string, len(h))
	for k := range h {
		masked[k] = maskedHeader
	}
	return masked
}
