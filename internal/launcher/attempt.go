package launcher

import (
	"time"

	"github.com/google/uuid"

	"github.com/tuannvm/agentboot/internal/agent"
)

// State is the lifecycle position of a launch attempt.
type State int

const (
	StateNotStarted State = iota
	StateStarting
	StateProbing
	StateReady
	StateTimedOut
	StateLaunchFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateStarting:
		return "Starting"
	case StateProbing:
		return "Probing"
	case StateReady:
		return "Ready"
	case StateTimedOut:
		return "TimedOut"
	case StateLaunchFailed:
		return "LaunchFailed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == StateReady || s == StateTimedOut || s == StateLaunchFailed
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for st := StateNotStarted; st <= StateLaunchFailed; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	*s = StateNotStarted
	return nil
}

// Attempt describes one agent start.
type Attempt struct {
	ID        uuid.UUID     `json:"id"`
	Agent     agent.Key     `json:"agent"`
	State     State         `json:"state"`
	Probes    int           `json:"probes"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}
