package agent

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Use errors.Is to classify failures returned by this package.
var (
	ErrMalformedKey      = errors.New("malformed agent key")
	ErrAgentNotFound     = errors.New("agent not found")
	ErrDuplicateAgent    = errors.New("duplicate agent")
	ErrCyclicDependency  = errors.New("cyclic agent dependency")
	ErrInvalidDefinition = errors.New("invalid agent definition")
)

// NotFoundError reports a registry lookup miss.
type NotFoundError struct {
	Key Key
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("agent %s not found", e.Key)
}

// Is reports whether target is ErrAgentNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrAgentNotFound
}

// DuplicateError reports two definitions registered under the same key.
type DuplicateError struct {
	First  Definition
	Second Definition
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("agent %s is defined twice: %q and %q",
		e.First.Key(), e.First.describe(), e.Second.describe())
}

// Is reports whether target is ErrDuplicateAgent.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateAgent
}

// CycleError reports a dependency cycle. Path holds the ids on the cycle in
// discovery order, with the first id repeated at the end.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "cyclic dependency between agents: " + strings.Join(e.Path, " -> ")
}

// Is reports whether target is ErrCyclicDependency.
func (e *CycleError) Is(target error) bool {
	return target == ErrCyclicDependency
}
