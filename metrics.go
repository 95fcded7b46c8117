package zephyr

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the Prometheus collectors for dispatch activity. A nil
// *metrics is valid and turns every method into a no-op.
type metrics struct {
	emitted    *prometheus.CounterVec
	deliveries *prometheus.CounterVec
	retries    prometheus.Counter
	duration   *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zephyr_events_emitted_total",
			Help: "Events emitted, labeled by dispatch mode.",
		}, []string{"mode"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zephyr_deliveries_total",
			Help: "Completed deliveries, labeled by listener kind and terminal status.",
		}, []string{"kind", "status"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zephyr_webhook_retries_total",
			Help: "Webhook delivery attempts beyond the first.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zephyr_delivery_duration_seconds",
			Help:    "Delivery duration by listener kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	reg.MustRegister(m.emitted, m.deliveries, m.retries, m.duration)
	return m
}

func (m *metrics) observeEmit(mode string) {
	if m == nil {
		return
	}
	m.emitted.WithLabelValues(mode).Inc()
}

func (m *metrics) observeOutcome(out Outcome) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(string(out.Kind), string(out.Status)).Inc()
	m.duration.WithLabelValues(string(out.Kind)).Observe(out.Duration.Seconds())
	if out.Kind == KindWebhook && out.Attempts > 1 {
		m.retries.Add(float64(out.Attempts - 1))
	}
}
