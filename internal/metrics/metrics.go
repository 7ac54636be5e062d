// Package metrics holds the Prometheus collectors the service exports in
// addition to the HTTP middleware metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "todo"

// Metrics owns a registry and the service's custom collectors. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	reorderOps     *prometheus.CounterVec
	reorderedTasks prometheus.Counter
	cacheLookups   *prometheus.CounterVec
	batchItems     *prometheus.CounterVec
}

// New creates a registry with the Go and process collectors and registers
// the service collectors on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		reorderOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reorder_operations_total",
			Help:      "Order maintenance operations by kind and outcome.",
		}, []string{"operation", "result"}),
		reorderedTasks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reordered_tasks_total",
			Help:      "Task rows whose order value was rewritten.",
		}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Task cache lookups by result.",
		}, []string{"result"}),
		batchItems: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Ids processed by batch operations, by action and outcome.",
		}, []string{"action", "outcome"}),
	}
}

// ObserveReorder records one move or bulk reorder and how many rows changed.
func (m *Metrics) ObserveReorder(operation string, changed int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reorderOps.WithLabelValues(operation, result).Inc()
	if err == nil && changed > 0 {
		m.reorderedTasks.Add(float64(changed))
	}
}

// CacheHit records a cache lookup that was served from Redis.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("hit").Inc()
}

// CacheMiss records a cache lookup that fell through to the store.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// ObserveBatch records the affected and failed ids of a batch operation.
func (m *Metrics) ObserveBatch(action string, affected, failed int) {
	if m == nil {
		return
	}
	m.batchItems.WithLabelValues(action, "affected").Add(float64(affected))
	m.batchItems.WithLabelValues(action, "failed").Add(float64(failed))
}
