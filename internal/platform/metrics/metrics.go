package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service. Every recording method
// is safe to call on a nil *Metrics so components can run without metrics in
// tests.
type Metrics struct {
	// Poll ticks by outcome: "ok", "fetch_error"
	Ticks *prometheus.CounterVec

	// Wall time of a full tick including pilot resolution
	TickDuration prometheus.Histogram

	// Drones inside the no-fly zone, summed over ticks
	Candidates prometheus.Counter

	// Live entries in the infringement store
	ActiveInfringements prometheus.Gauge

	// Pilot cache lookups by result: "hit", "miss", "error"
	PilotLookups *prometheus.CounterVec

	// Replay artifact writes by kind ("snapshot", "pilots") and outcome ("written", "skipped", "error")
	ReplayWrites *prometheus.CounterVec

	// Times replay playback wrapped back to the first snapshot
	ReplayWraps prometheus.Counter
}

// New creates the metrics and registers them with reg. A nil reg builds
// unregistered collectors, which keeps repeated construction in tests legal.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Ticks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "birdnest_poll_ticks_total",
			Help: "Total number of poll ticks by outcome",
		}, []string{"outcome"}),

		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "birdnest_poll_tick_duration_seconds",
			Help:    "Duration of a poll tick including pilot resolution",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		Candidates: factory.NewCounter(prometheus.CounterOpts{
			Name: "birdnest_ndz_candidates_total",
			Help: "Total number of drone sightings inside the no-fly zone",
		}),

		ActiveInfringements: factory.NewGauge(prometheus.GaugeOpts{
			Name: "birdnest_active_infringements",
			Help: "Current number of unexpired infringements",
		}),

		PilotLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "birdnest_pilot_lookups_total",
			Help: "Pilot cache lookups by result",
		}, []string{"result"}),

		ReplayWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "birdnest_replay_writes_total",
			Help: "Replay artifact writes by kind and outcome",
		}, []string{"kind", "outcome"}),

		ReplayWraps: factory.NewCounter(prometheus.CounterOpts{
			Name: "birdnest_replay_wraps_total",
			Help: "Number of times replay playback wrapped to the first snapshot",
		}),
	}
}

// IncrementTick records a finished tick.
func (m *Metrics) IncrementTick(outcome string) {
	if m != nil {
		m.Ticks.WithLabelValues(outcome).Inc()
	}
}

// ObserveTickDuration records how long a tick took.
func (m *Metrics) ObserveTickDuration(d time.Duration) {
	if m != nil {
		m.TickDuration.Observe(d.Seconds())
	}
}

// AddCandidates counts infringing sightings of one tick.
func (m *Metrics) AddCandidates(n int) {
	if m != nil {
		m.Candidates.Add(float64(n))
	}
}

// SetActiveInfringements publishes the store size.
func (m *Metrics) SetActiveInfringements(n int) {
	if m != nil {
		m.ActiveInfringements.Set(float64(n))
	}
}

// IncrementPilotLookup records a pilot cache lookup result.
func (m *Metrics) IncrementPilotLookup(result string) {
	if m != nil {
		m.PilotLookups.WithLabelValues(result).Inc()
	}
}

// IncrementReplayWrite records a replay artifact write attempt.
func (m *Metrics) IncrementReplayWrite(kind, outcome string) {
	if m != nil {
		m.ReplayWrites.WithLabelValues(kind, outcome).Inc()
	}
}

// IncrementReplayWrap records a playback wraparound.
func (m *Metrics) IncrementReplayWrap() {
	if m != nil {
		m.ReplayWraps.Inc()
	}
}
