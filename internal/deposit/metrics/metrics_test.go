package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.IncTransition("paid")
	m.IncTransition("paid")
	m.IncRejected("mark_paid", "invalid_state_transition")
	m.ObserveOperation("mark_paid", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("paid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransitionRejects.WithLabelValues("mark_paid", "invalid_state_transition")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OperationDuration))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncTransition("paid")
		m.IncRejected("mark_paid", "internal_error")
		m.ObserveOperation("mark_paid", time.Now())
	})
}
