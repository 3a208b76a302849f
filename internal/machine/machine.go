// Package machine describes development machines and the process executor
// used to run agent commands inside them.
package machine

import (
	"context"
	"errors"
	"fmt"
)

// ErrBadRequest marks a command the executor refused to run.
var ErrBadRequest = errors.New("bad request")

// Server is a network endpoint exposed by a machine.
type Server struct {
	URL string `yaml:"url" json:"url"`
}

// Runtime holds the machine's runtime information, keyed by port
// (for example "4401/tcp").
type Runtime struct {
	Servers map[string]Server `yaml:"servers" json:"servers"`
}

// Machine is a read-only view of a running development machine.
type Machine struct {
	ID          string  `yaml:"id" json:"id"`
	WorkspaceID string  `yaml:"workspace_id" json:"workspace_id"`
	Runtime     Runtime `yaml:"runtime" json:"runtime"`
}

// Server returns the server exposed under portKey.
func (m Machine) Server(portKey string) (Server, bool) {
	s, ok := m.Runtime.Servers[portKey]
	return s, ok
}

// Command is a process to run inside a machine.
type Command struct {
	Name        string
	CommandLine string
	Type        string
}

// Executor runs commands inside machines. Exec returns once the command has
// been started; it does not wait for the process to exit.
type Executor interface {
	Exec(ctx context.Context, workspaceID, machineID string, cmd Command, outputChannel string) error
}

// OutputChannel names the channel a process writes its output to.
func OutputChannel(workspaceID, processName string) string {
	return fmt.Sprintf("workspace:%s:%s:output", workspaceID, processName)
}
