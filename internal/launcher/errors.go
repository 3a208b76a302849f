package launcher

import "errors"

var (
	// ErrServerNotFound is matched by launch failures caused by a machine
	// without the agent's server entry.
	ErrServerNotFound = errors.New("agent server not found in dev machine")

	// ErrPingTimedOut is matched by launches whose agent never became healthy.
	ErrPingTimedOut = errors.New("ping timed out")

	// ErrInterrupted is matched by launches aborted while waiting between probes.
	ErrInterrupted = errors.New("agent pinging is interrupted")
)

// ServerError is a terminal launch failure. Err holds the underlying cause,
// if any; kind holds the sentinel the error matches.
type ServerError struct {
	Message string
	Err     error
	kind    error
}

func (e *ServerError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ServerError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for this failure.
func (e *ServerError) Is(target error) bool {
	return e.kind != nil && target == e.kind
}
