package outbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the outbox relay. Nil-safe.
type Metrics struct {
	Published       prometheus.Counter
	PublishFailures prometheus.Counter
	Lag             prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Published: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentwise_outbox_published_total",
			Help: "Outbox rows published to the broker",
		}),
		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentwise_outbox_publish_failures_total",
			Help: "Outbox batches the broker rejected",
		}),
		Lag: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rentwise_outbox_lag_seconds",
			Help:    "Age of the oldest row in each published batch",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
}

func (m *Metrics) AddPublished(n int) {
	if m == nil {
		return
	}
	m.Published.Add(float64(n))
}

func (m *Metrics) IncPublishFailures() {
	if m == nil {
		return
	}
	m.PublishFailures.Inc()
}

func (m *Metrics) ObserveLag(seconds float64) {
	if m == nil {
		return
	}
	m.Lag.Observe(seconds)
}
