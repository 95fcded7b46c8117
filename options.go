package zephyr

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithRegistry injects a shared listener registry. By default each
// Dispatcher owns a fresh one, which keeps test instances isolated.
func WithRegistry(r *Registry) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.registry = r
		}
	}
}

// WithLogger sets the dispatcher's logger. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithHTTPClient sets the HTTP client used for webhook deliveries. The
// default client carries an OpenTelemetry-instrumented transport.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) {
		if c != nil {
			d.client = c
		}
	}
}

// WithQueueBackend sets the backend that receives queued submissions.
// Without one, queued deliveries fail with ErrNoQueueBackend.
func WithQueueBackend(b QueueBackend) Option {
	return func(d *Dispatcher) {
		d.backend = b
	}
}

// WithAsyncWorkers caps the number of concurrently executing asynchronous
// deliveries. Values below 1 keep the default of 10.
func WithAsyncWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.asyncWorkers = n
		}
	}
}

// WithMetrics registers Prometheus collectors for dispatch activity on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(d *Dispatcher) {
		if reg != nil {
			d.promReg = reg
		}
	}
}
