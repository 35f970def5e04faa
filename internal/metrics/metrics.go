// Package metrics holds the Prometheus collectors for planning, batch
// application and the document service.
//
// A nil *Metrics is valid and records nothing, so callers that do not care
// about metrics can pass nil.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "docmerge"

// Metrics groups every collector.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	RelocationsTotal  prometheus.Counter
	LocateTotal       *prometheus.CounterVec
	BatchesTotal      *prometheus.CounterVec
	BatchOps          prometheus.Histogram
	OrphanedTotal     prometheus.Counter
	RequestsTotal     *prometheus.CounterVec
}

// New registers the collectors with reg. Use prometheus.NewRegistry() in
// tests to avoid clashing with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OperationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Engine operations by kind and resulting status.",
		}, []string{"operation", "status"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Engine operation latency, read through submit.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		RelocationsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insertion_relocations_total",
			Help:      "Insertions moved forward to avoid splitting an annotation.",
		}),
		LocateTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_located_total",
			Help:      "Annotation locate outcomes by status.",
		}, []string{"status"}),
		BatchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches applied by the store, by outcome.",
		}, []string{"outcome"}),
		BatchOps: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_ops",
			Help:      "Number of ops per applied batch.",
			Buckets:   []float64{1, 2, 3, 5, 10, 25, 50},
		}),
		OrphanedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_orphaned_total",
			Help:      "Annotations whose anchored text vanished in a batch.",
		}),
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Document service requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
	}
}

// ObserveOperation records one engine operation.
func (m *Metrics) ObserveOperation(operation, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveRelocation records an insertion moved past annotations.
func (m *Metrics) ObserveRelocation() {
	if m == nil {
		return
	}
	m.RelocationsTotal.Inc()
}

// ObserveLocate records one locate outcome.
func (m *Metrics) ObserveLocate(status string) {
	if m == nil {
		return
	}
	m.LocateTotal.WithLabelValues(status).Inc()
}

// ObserveBatch records a batch outcome: "applied", "stale" or "rejected".
func (m *Metrics) ObserveBatch(outcome string, ops, orphaned int) {
	if m == nil {
		return
	}
	m.BatchesTotal.WithLabelValues(outcome).Inc()
	if outcome == "applied" {
		m.BatchOps.Observe(float64(ops))
		m.OrphanedTotal.Add(float64(orphaned))
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, code int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}
