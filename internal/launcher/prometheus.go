package launcher

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tuannvm/agentboot/internal/agent"
)

// PrometheusMetricsCollector implements MetricsCollector with Prometheus metrics
// registered on a private registry.
type PrometheusMetricsCollector struct {
	stateTransitions *prometheus.CounterVec
	probes           *prometheus.CounterVec
	launchDuration   *prometheus.HistogramVec

	registry *prometheus.Registry
}

var _ MetricsCollector = (*PrometheusMetricsCollector)(nil)

// NewPrometheusMetricsCollector creates a collector. namespace defaults to "agentboot".
func NewPrometheusMetricsCollector(namespace string) *PrometheusMetricsCollector {
	if namespace == "" {
		namespace = "agentboot"
	}

	pmc := &PrometheusMetricsCollector{
		registry: prometheus.NewRegistry(),
	}

	pmc.stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "launch_state_transitions_total",
			Help:      "Total number of agent launch state transitions",
		},
		[]string{"agent", "from_state", "to_state"},
	)

	pmc.probes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "liveness_probes_total",
			Help:      "Total number of agent liveness probes",
		},
		[]string{"agent", "healthy"},
	)

	pmc.launchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "launch_duration_seconds",
			Help:      "Duration of agent launches by final state",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"agent", "state"},
	)

	pmc.registry.MustRegister(
		pmc.stateTransitions,
		pmc.probes,
		pmc.launchDuration,
	)

	return pmc
}

// StateTransition implements MetricsCollector.
func (pmc *PrometheusMetricsCollector) StateTransition(key agent.Key, from, to State) {
	pmc.stateTransitions.WithLabelValues(key.String(), from.String(), to.String()).Inc()
}

// ProbeAttempt implements MetricsCollector.
func (pmc *PrometheusMetricsCollector) ProbeAttempt(key agent.Key, healthy bool) {
	pmc.probes.WithLabelValues(key.String(), strconv.FormatBool(healthy)).Inc()
}

// LaunchDuration implements MetricsCollector.
func (pmc *PrometheusMetricsCollector) LaunchDuration(key agent.Key, final State, duration time.Duration) {
	pmc.launchDuration.WithLabelValues(key.String(), final.String()).Observe(duration.Seconds())
}

// Registry returns the registry holding the collector's metrics.
func (pmc *PrometheusMetricsCollector) Registry() *prometheus.Registry {
	return pmc.registry
}
