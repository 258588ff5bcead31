package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus metrics.
type Metrics struct {
	ConflictsTotal *prometheus.CounterVec
	HandlersTotal  *prometheus.CounterVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	MergesTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the engine metrics.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ConflictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protounify_field_conflicts_total",
				Help: "Total number of field type conflicts detected, by conflict type",
			},
			[]string{"conflict"},
		),
		HandlersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protounify_handler_selections_total",
				Help: "Total number of handler selections, by handler",
			},
			[]string{"handler"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "protounify_contract_cache_hits_total",
				Help: "Total number of merged-message cache hits",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "protounify_contract_cache_misses_total",
				Help: "Total number of merged-message cache misses",
			},
		),
		MergesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protounify_message_merges_total",
				Help: "Total number of message merges, by status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		m.ConflictsTotal,
		m.HandlersTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.MergesTotal,
	)

	return m
}
