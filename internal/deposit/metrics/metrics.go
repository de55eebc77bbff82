// Package metrics exposes deposit lifecycle metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Transitions       *prometheus.CounterVec
	TransitionRejects *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rentwise_deposit_transitions_total",
			Help: "Deposit state transitions applied, by resulting status",
		}, []string{"status"}),
		TransitionRejects: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rentwise_deposit_transition_rejections_total",
			Help: "Deposit operations refused, by operation and error code",
		}, []string{"operation", "code"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rentwise_deposit_operation_duration_seconds",
			Help:    "Duration of deposit service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncTransition(status string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(status).Inc()
}

func (m *Metrics) IncRejected(operation, code string) {
	if m == nil {
		return
	}
	m.TransitionRejects.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
