package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tidemark-games/worldcore/pkg/models"
)

// Set owns the engine's Prometheus collectors. It implements the
// scheduler's Observer interface and records tick-loop and reload
// telemetry.
type Set struct {
	registry *prometheus.Registry

	activations     *prometheus.CounterVec
	contextTicks    *prometheus.CounterVec
	executionFaults prometheus.Counter
	ticks           prometheus.Counter
	tickDuration    prometheus.Histogram
	entitiesTicked  prometheus.Histogram
	reloads         *prometheus.CounterVec
	definitions     prometheus.Gauge
}

// NewSet creates and registers all collectors on a private registry
func NewSet() *Set {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Set{
		registry: reg,
		activations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worldcore_activations_total",
			Help: "Activation requests by result.",
		}, []string{"result"}),
		contextTicks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worldcore_context_ticks_total",
			Help: "Activation tick steps by outcome.",
		}, []string{"status"}),
		executionFaults: factory.NewCounter(prometheus.CounterOpts{
			Name: "worldcore_execution_faults_total",
			Help: "Execution faults isolated at the activation boundary.",
		}),
		ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "worldcore_ticks_total",
			Help: "Server ticks processed.",
		}),
		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "worldcore_tick_duration_seconds",
			Help:    "Wall time spent processing one server tick.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		entitiesTicked: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "worldcore_entities_per_tick",
			Help:    "Entities processed per server tick.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		reloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worldcore_reloads_total",
			Help: "Definition pack reloads by outcome.",
		}, []string{"outcome"}),
		definitions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "worldcore_definitions_loaded",
			Help: "Definitions in the current table generation.",
		}),
	}
}

// Handler serves the metrics endpoint
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// ActivationResolved counts one activation request result
func (s *Set) ActivationResolved(status models.ActivationStatus) {
	s.activations.WithLabelValues(string(status)).Inc()
}

// ContextTicked counts one activation tick step
func (s *Set) ContextTicked(status models.TickStatus) {
	s.contextTicks.WithLabelValues(string(status)).Inc()
}

// ExecutionFault counts one isolated execution fault
func (s *Set) ExecutionFault() {
	s.executionFaults.Inc()
}

// TickProcessed records one server tick
func (s *Set) TickProcessed(d time.Duration, entities int) {
	s.ticks.Inc()
	s.tickDuration.Observe(d.Seconds())
	s.entitiesTicked.Observe(float64(entities))
}

// ReloadRecorded counts a reload attempt and, on success, the table size
func (s *Set) ReloadRecorded(ok bool, definitions int) {
	if !ok {
		s.reloads.WithLabelValues("failure").Inc()
		return
	}
	s.definitions.Set(float64(definitions))
	s.reloads.WithLabelValues("success").Inc()
}
