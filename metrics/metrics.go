// Package metrics instruments the visualization engine with Prometheus
// collectors. Each engine instance owns its own registry, so two panels
// in one process never collide on metric names.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors for one engine instance. A nil *Metrics is
// valid everywhere and records nothing, so the core can run without any
// instrumentation wired.
type Metrics struct {
	registry *prometheus.Registry

	reconciles     prometheus.Counter
	spawnFallbacks prometheus.Counter
	vertices       prometheus.Gauge
	edges          prometheus.Gauge
	stepDuration   prometheus.Histogram
}

// New creates a Metrics backed by a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		reconciles: factory.NewCounter(prometheus.CounterOpts{
			Name: "graphpane_reconciles_total",
			Help: "Completed view reconciliation passes.",
		}),
		spawnFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "graphpane_spawn_fallbacks_total",
			Help: "Vertex placements that fell back to a jittered seed because no clear spot was found.",
		}),
		vertices: factory.NewGauge(prometheus.GaugeOpts{
			Name: "graphpane_vertices",
			Help: "Vertices currently displayed.",
		}),
		edges: factory.NewGauge(prometheus.GaugeOpts{
			Name: "graphpane_edges",
			Help: "Edges currently displayed.",
		}),
		stepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "graphpane_step_duration_seconds",
			Help:    "Wall time of one simulation step, force batch plus commit.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 8),
		}),
	}
}

// Registry exposes the backing registry for an HTTP metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordReconcile counts a completed reconciliation pass and refreshes
// the displayed-element gauges.
func (m *Metrics) RecordReconcile(vertices, edges int) {
	if m == nil {
		return
	}
	m.reconciles.Inc()
	m.vertices.Set(float64(vertices))
	m.edges.Set(float64(edges))
}

// RecordSpawnFallback counts a placement that gave up on separation.
func (m *Metrics) RecordSpawnFallback() {
	if m == nil {
		return
	}
	m.spawnFallbacks.Inc()
}

// ObserveStep records the wall time of one simulation step.
func (m *Metrics) ObserveStep(d time.Duration) {
	if m == nil {
		return
	}
	m.stepDuration.Observe(d.Seconds())
}
