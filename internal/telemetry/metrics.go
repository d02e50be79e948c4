// Package telemetry exposes Prometheus metrics and a WebSocket broadcast
// stream over the simulation's state, grounded on this codebase's own
// sync.Once-guarded global Metrics struct and its register/unregister/
// broadcast-over-channels Broadcaster.
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every orrery Prometheus metric, grouped by subsystem.
type Metrics struct {
	TicksProcessed     prometheus.Counter
	ShiftsEmitted      prometheus.Counter
	IntegratorStepTime prometheus.Histogram

	BatchesDispatched       prometheus.Counter
	CandidatesEvaluated     prometheus.Counter
	AcceptableTrajectories  prometheus.Counter
	OptimizerIterations     prometheus.Histogram
	CurrentGeneration       prometheus.Gauge

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	WebSocketClients prometheus.Gauge
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global orrery metrics instance, initializing it on
// first use.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = initializeMetrics()
	})
	return globalMetrics
}

func initializeMetrics() *Metrics {
	m := &Metrics{}

	m.TicksProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orrery",
		Subsystem: "sim",
		Name:      "ticks_processed_total",
		Help:      "Total number of simulation ticks processed.",
	})
	m.ShiftsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orrery",
		Subsystem: "sim",
		Name:      "buffer_shifts_total",
		Help:      "Total number of prediction buffer shift events emitted.",
	})
	m.IntegratorStepTime = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "orrery",
		Subsystem: "sim",
		Name:      "integrator_step_duration_seconds",
		Help:      "Wall-clock duration of a single fixed-step integration.",
		Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
	})

	m.BatchesDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orrery",
		Subsystem: "planner",
		Name:      "batches_dispatched_total",
		Help:      "Total number of launch-frame batches dispatched to workers.",
	})
	m.CandidatesEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orrery",
		Subsystem: "planner",
		Name:      "candidates_evaluated_total",
		Help:      "Total number of launch-frame/direction candidates evaluated.",
	})
	m.AcceptableTrajectories = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orrery",
		Subsystem: "planner",
		Name:      "acceptable_trajectories_total",
		Help:      "Total number of trajectories found at or below the acceptable score threshold.",
	})
	m.OptimizerIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "orrery",
		Subsystem: "planner",
		Name:      "optimizer_iterations",
		Help:      "Number of coordinate-descent iterations run per correction-burn optimization.",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 500, 1000},
	})
	m.CurrentGeneration = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "orrery",
		Subsystem: "planner",
		Name:      "current_generation",
		Help:      "Highest dispatched batch generation number.",
	})

	m.RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orrery",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route and status.",
	}, []string{"route", "method", "status"})
	m.RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "orrery",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration by route.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"route", "method"})
	m.WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "orrery",
		Subsystem: "api",
		Name:      "websocket_clients",
		Help:      "Number of currently connected world-stream WebSocket clients.",
	})

	return m
}

// RecordTick records one processed simulation tick and its shift count.
func RecordTick(shifts int) {
	m := GetMetrics()
	m.TicksProcessed.Inc()
	for i := 0; i < shifts; i++ {
		m.ShiftsEmitted.Inc()
	}
}

// RecordBatch records one dispatched batch and the candidates it evaluated.
func RecordBatch(candidates, acceptable int) {
	m := GetMetrics()
	m.BatchesDispatched.Inc()
	m.CandidatesEvaluated.Add(float64(candidates))
	m.AcceptableTrajectories.Add(float64(acceptable))
}

// RecordOptimizerIterations observes how many coordinate-descent iterations
// a single correction-burn optimization ran for.
func RecordOptimizerIterations(n int) {
	GetMetrics().OptimizerIterations.Observe(float64(n))
}

// SetCurrentGeneration publishes the planner's latest dispatched generation.
func SetCurrentGeneration(gen uint64) {
	GetMetrics().CurrentGeneration.Set(float64(gen))
}

// MetricsHandler exposes the Prometheus scrape endpoint, grounded on this
// codebase's own metricsMux.Handle("/metrics", promhttp.Handler()) wiring.
func MetricsHandler() http.Handler {
	GetMetrics() // ensure metrics are registered before the first scrape
	return promhttp.Handler()
}
