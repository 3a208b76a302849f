package launcher

import (
	"time"

	"github.com/tuannvm/agentboot/internal/agent"
)

// MetricsCollector receives launch events.
type MetricsCollector interface {
	// StateTransition records an attempt moving between states.
	StateTransition(key agent.Key, from, to State)

	// ProbeAttempt records one liveness request and whether it succeeded.
	ProbeAttempt(key agent.Key, healthy bool)

	// LaunchDuration records how long an attempt took to reach its final state.
	LaunchDuration(key agent.Key, final State, duration time.Duration)
}

type noopMetricsCollector struct{}

func (noopMetricsCollector) StateTransition(agent.Key, State, State)        {}
func (noopMetricsCollector) ProbeAttempt(agent.Key, bool)                   {}
func (noopMetricsCollector) LaunchDuration(agent.Key, State, time.Duration) {}

// NewNoopMetricsCollector returns a collector that discards everything.
func NewNoopMetricsCollector() MetricsCollector {
	return noopMetricsCollector{}
}
