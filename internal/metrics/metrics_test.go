package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOperation("insert", "SUCCESS", 5*time.Millisecond)
	m.ObserveOperation("insert", "SUCCESS", time.Millisecond)
	m.ObserveOperation("replace", "BATCH_FAILURE", time.Millisecond)
	m.ObserveRelocation()
	m.ObserveLocate("AMBIGUOUS")
	m.ObserveBatch("applied", 3, 1)
	m.ObserveBatch("stale", 2, 0)
	m.ObserveRequest("POST", "/v1/documents/:id/batch", 409)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("insert", "SUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("replace", "BATCH_FAILURE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RelocationsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LocateTotal.WithLabelValues("AMBIGUOUS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchesTotal.WithLabelValues("applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchesTotal.WithLabelValues("stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrphanedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "/v1/documents/:id/batch", "409")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BatchOps))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("insert", "SUCCESS", time.Second)
		m.ObserveRelocation()
		m.ObserveLocate("RESOLVED")
		m.ObserveBatch("applied", 1, 0)
		m.ObserveRequest("GET", "/healthz", 200)
	})
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
