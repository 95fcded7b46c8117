package zephyr

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Kind identifies the delivery strategy of a listener.
type Kind string

const (
	// KindLocal listeners are functions invoked in-process.
	KindLocal Kind = "local"
	// KindWebhook listeners are remote HTTP endpoints.
	KindWebhook Kind = "webhook"
	// KindQueued listeners are task submissions to a queue backend.
	KindQueued Kind = "queued"
)

// Default webhook delivery parameters, applied at registration when the
// corresponding WebhookConfig field is zero.
const (
	DefaultWebhookMethod  = http.MethodPost
	DefaultWebhookTimeout = 10 * time.Second
	DefaultBackoffBase    = 500 * time.Millisecond
	DefaultMaxBackoff     = 30 * time.Second
)

// ListenerFunc is the signature of a local listener. A non-nil error marks
// the delivery as failed; it is never propagated to the emitter.
type ListenerFunc func(ctx context.Context, evt Event) error

// LocalConfig configures a local listener.
type LocalConfig struct {
	Fn ListenerFunc
}

// WebhookConfig configures a webhook listener. Timeout bounds each attempt
// individually. A failed attempt is retried up to MaxRetries times, waiting
// BackoffBase doubled per attempt and capped at MaxBackoff.
type WebhookConfig struct {
	URL         string
	Method      string
	Headers     map[string]string
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration
	MaxBackoff  time.Duration
}

// withDefaults fills zero-valued fields with the package defaults.
func (c WebhookConfig) withDefaults() WebhookConfig {
	if c.Method == "" {
		c.Method = DefaultWebhookMethod
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultWebhookTimeout
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return c
}

// QueuedConfig configures a queued listener: the queue to submit to and the
// task identifier the backend resolves to an executable unit of work.
type QueuedConfig struct {
	Queue string
	Task  string
}

// Descriptor describes a registered listener. Exactly one of Local, Webhook
// or Queued is populated, selected by Kind. An empty ID is assigned a
// generated one at registration. Descriptors are treated as immutable once
// registered.
type Descriptor struct {
	ID        string
	EventType string
	Kind      Kind
	Local     LocalConfig
	Webhook   WebhookConfig
	Queued    QueuedConfig
}

// NewLocalListener returns a Descriptor for an in-process listener function.
func NewLocalListener(eventType string, fn ListenerFunc) Descriptor {
	return Descriptor{EventType: eventType, Kind: KindLocal, Local: LocalConfig{Fn: fn}}
}

// NewWebhookListener returns a Descriptor for a remote HTTP endpoint.
func NewWebhookListener(eventType string, cfg WebhookConfig) Descriptor {
	return Descriptor{EventType: eventType, Kind: KindWebhook, Webhook: cfg}
}

// NewQueuedListener returns a Descriptor for a queue-backed task submission.
func NewQueuedListener(eventType string, cfg QueuedConfig) Descriptor {
	return Descriptor{EventType: eventType, Kind: KindQueued, Queued: cfg}
}

// validate checks that the descriptor is well-formed for registration.
func (d Descriptor) validate() error {
	if d.EventType == "" {
		return fmt.Errorf("listener event type is required")
	}
	switch d.Kind {
	case KindLocal:
		if d.Local.Fn == nil {
			return fmt.Errorf("local listener requires a function")
		}
	case KindWebhook:
		if d.Webhook.URL == "" {
			return fmt.Errorf("webhook listener requires a URL")
		}
	case KindQueued:
		if d.Queued.Queue == "" || d.Queued.Task == "" {
			return fmt.Errorf("queued listener requires a queue and a task identifier")
		}
	default:
		return fmt.Errorf("unknown listener kind %q", d.Kind)
	}
	return nil
}
