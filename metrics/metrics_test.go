package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestRecordReconcile(t *testing.T) {
	m := New()

	m.RecordReconcile(3, 5)
	m.RecordReconcile(4, 2)

	assert.Equal(t, 2.0, counterValue(t, m.reconciles))
	assert.Equal(t, 4.0, gaugeValue(t, m.vertices))
	assert.Equal(t, 2.0, gaugeValue(t, m.edges))
}

func TestRecordSpawnFallback(t *testing.T) {
	m := New()

	m.RecordSpawnFallback()
	m.RecordSpawnFallback()
	m.RecordSpawnFallback()

	assert.Equal(t, 3.0, counterValue(t, m.spawnFallbacks))
}

func TestObserveStep(t *testing.T) {
	m := New()

	m.ObserveStep(2 * time.Millisecond)
	m.ObserveStep(5 * time.Millisecond)

	var metric dto.Metric
	require.NoError(t, m.stepDuration.Write(&metric))
	assert.Equal(t, uint64(2), metric.GetHistogram().GetSampleCount())
	assert.InDelta(t, 0.007, metric.GetHistogram().GetSampleSum(), 1e-9)
}

func TestRegistryExposesAllCollectors(t *testing.T) {
	m := New()
	m.RecordReconcile(1, 1)
	m.RecordSpawnFallback()
	m.ObserveStep(time.Millisecond)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"graphpane_reconciles_total",
		"graphpane_spawn_fallbacks_total",
		"graphpane_vertices",
		"graphpane_edges",
		"graphpane_step_duration_seconds",
	} {
		assert.True(t, names[want], "missing metric family %s", want)
	}
}

func TestNilMetricsRecordsNothing(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordReconcile(1, 2)
		m.RecordSpawnFallback()
		m.ObserveStep(time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}
