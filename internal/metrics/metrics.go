package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OptimizerMetrics groups the engine's Prometheus collectors. Construct one
// per registry with New. A nil *OptimizerMetrics is a valid no-op recorder,
// so callers never guard their calls.
type OptimizerMetrics struct {
	// Runs counts optimization runs by algorithm and outcome
	runs *prometheus.CounterVec
	// Duration records successful run durations in seconds
	duration *prometheus.HistogramVec
	// Generations counts genetic generations executed across runs
	generations prometheus.Counter
	// Unassigned tracks unassigned locations per run
	unassigned prometheus.Histogram
}

// New creates the engine collectors and registers them on reg.
func New(reg prometheus.Registerer) *OptimizerMetrics {
	m := &OptimizerMetrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "optimizer_runs_total", Help: "Optimization runs by algorithm and outcome."},
			[]string{"algorithm", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "optimizer_run_duration_seconds", Help: "Optimization run duration in seconds.", Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120}},
			[]string{"algorithm"},
		),
		generations: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "optimizer_generations_total", Help: "Genetic generations executed across runs."},
		),
		unassigned: prometheus.NewHistogram(
			prometheus.HistogramOpts{Name: "optimizer_unassigned_locations", Help: "Unassigned locations per run.", Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100}},
		),
	}

	reg.MustRegister(m.runs, m.duration, m.generations, m.unassigned)
	return m
}

// ObserveRun records one finished or failed optimization run.
func (m *OptimizerMetrics) ObserveRun(algorithm, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(algorithm, outcome).Inc()
	if outcome == "ok" {
		m.duration.WithLabelValues(algorithm).Observe(d.Seconds())
	}
}

// ObserveSolution records result-level figures for a successful run.
func (m *OptimizerMetrics) ObserveSolution(generations, unassigned int) {
	if m == nil {
		return
	}
	m.generations.Add(float64(generations))
	m.unassigned.Observe(float64(unassigned))
}
