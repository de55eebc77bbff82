// Package metrics exposes identity verification metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions        *prometheus.CounterVec
	AnalysisFailures *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rentwise_verification_decisions_total",
			Help: "Verification attempts recorded, by status",
		}, []string{"status"}),
		AnalysisFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rentwise_verification_analysis_failures_total",
			Help: "Automated analyses that failed, by error category",
		}, []string{"category"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rentwise_verification_analysis_duration_seconds",
			Help:    "Wall time of the concurrent document and selfie analysis",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
	}
}

func (m *Metrics) IncDecision(status string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(status).Inc()
}

func (m *Metrics) IncAnalysisFailure(category string) {
	if m == nil {
		return
	}
	m.AnalysisFailures.WithLabelValues(category).Inc()
}

func (m *Metrics) ObserveAnalysis(start time.Time) {
	if m == nil {
		return
	}
	m.AnalysisDuration.Observe(time.Since(start).Seconds())
}
