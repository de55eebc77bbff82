package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks tenancy lifecycle activity.
type Metrics struct {
	TenanciesCreated  prometheus.Counter
	InvitesAccepted   prometheus.Counter
	InvitesRejected   *prometheus.CounterVec
	TenanciesEnded    prometheus.Counter
	OperationDuration *prometheus.HistogramVec
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TenanciesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentwise_tenancies_created_total",
			Help: "Total number of tenancies created",
		}),
		InvitesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentwise_tenancy_invites_accepted_total",
			Help: "Total number of tenancy invitations accepted",
		}),
		InvitesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rentwise_tenancy_invites_rejected_total",
			Help: "Invitation acceptances refused, by error code",
		}, []string{"code"}),
		TenanciesEnded: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentwise_tenancies_ended_total",
			Help: "Total number of tenancies ended",
		}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rentwise_tenancy_operation_duration_seconds",
			Help:    "Duration of tenancy service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncTenancyCreated() {
	if m == nil {
		return
	}
	m.TenanciesCreated.Inc()
}

func (m *Metrics) IncInviteAccepted() {
	if m == nil {
		return
	}
	m.InvitesAccepted.Inc()
}

func (m *Metrics) IncInviteRejected(code string) {
	if m == nil {
		return
	}
	m.InvitesRejected.WithLabelValues(code).Inc()
}

func (m *Metrics) IncTenancyEnded() {
	if m == nil {
		return
	}
	m.TenanciesEnded.Inc()
}

// ObserveOperation records time since start under operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
