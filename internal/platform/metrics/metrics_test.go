package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementTick("ok")
		m.ObserveTickDuration(time.Second)
		m.AddCandidates(3)
		m.SetActiveInfringements(1)
		m.IncrementPilotLookup("hit")
		m.IncrementReplayWrite("snapshot", "written")
		m.IncrementReplayWrap()
	})
}

func TestRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementTick("ok")
	m.IncrementTick("ok")
	m.IncrementTick("fetch_error")
	m.IncrementPilotLookup("miss")
	m.SetActiveInfringements(7)
	m.IncrementReplayWrite("pilots", "skipped")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Ticks.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ticks.WithLabelValues("fetch_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PilotLookups.WithLabelValues("miss")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.ActiveInfringements))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReplayWrites.WithLabelValues("pilots", "skipped")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewWithoutRegistryCanRepeat(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil)
		New(nil)
	})
}
