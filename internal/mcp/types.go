// Package mcp provides MCP (Model Context Protocol) server functionality for agentboot.
// It exposes the agent catalog, dependency ordering and bootstrap pipeline as MCP tools.
package mcp

import "github.com/tuannvm/agentboot/internal/probe"

// ListAgentsInput defines parameters for listing agents.
type ListAgentsInput struct{}

// AgentInfo describes a registered agent.
type AgentInfo struct {
	ID           string   `json:"id"`
	Version      string   `json:"version"`
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies"`
	ProbeKind    string   `json:"probe_kind,omitempty"`
	PortKey      string   `json:"port_key,omitempty"`
}

// ListAgentsOutput contains the agent catalog.
type ListAgentsOutput struct {
	Agents []AgentInfo `json:"agents"`
}

// SortAgentsInput defines parameters for ordering agents.
type SortAgentsInput struct {
	Agents []string `json:"agents" jsonschema:"Agent ids to order; dependencies are pulled in automatically"`
}

// SortAgentsOutput contains the dependency-first order.
type SortAgentsOutput struct {
	Order  []string   `json:"order"`
	Levels [][]string `json:"levels"`
}

// ProbeConfigInput defines parameters for resolving a liveness target.
type ProbeConfigInput struct {
	Agent       string `json:"agent" jsonschema:"Agent id"`
	WorkspaceID string `json:"workspace_id,omitempty" jsonschema:"Workspace id (default: configured machine)"`
	UserID      string `json:"user_id,omitempty" jsonschema:"User requesting the probe (default: configured user)"`
}

// ProbeConfigOutput contains the resolved liveness target.
type ProbeConfigOutput struct {
	Agent  string       `json:"agent"`
	Kind   string       `json:"kind"`
	URL    string       `json:"url"`
	Config probe.Config `json:"config"`
}

// BootstrapInput defines parameters for bootstrapping agents.
type BootstrapInput struct {
	Agents      []string `json:"agents,omitempty" jsonschema:"Agent ids to launch (default: every registered agent)"`
	WorkspaceID string   `json:"workspace_id,omitempty" jsonschema:"Workspace id (default: configured machine)"`
	MachineID   string   `json:"machine_id,omitempty" jsonschema:"Machine id (default: configured machine)"`
	UserID      string   `json:"user_id,omitempty" jsonschema:"User requesting the launch (default: configured user)"`
	Sequential  bool     `json:"sequential,omitempty" jsonschema:"Launch one agent at a time instead of parallel-by-level"`
	DryRun      bool     `json:"dry_run,omitempty" jsonschema:"Resolve the launch plan without starting anything"`
}

// LaunchOutput is the result of one agent launch.
type LaunchOutput struct {
	Agent    string `json:"agent"`
	Level    int    `json:"level"`
	State    string `json:"state"`
	Probes   int    `json:"probes"`
	ProbeURL string `json:"probe_url,omitempty"`
	Duration string `json:"duration"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// BootstrapOutput contains the results of a bootstrap run.
type BootstrapOutput struct {
	Results       []LaunchOutput `json:"results"`
	TotalAgents   int            `json:"total_agents"`
	Successful    int            `json:"successful"`
	Failed        int            `json:"failed"`
	TotalDuration string         `json:"total_duration"`
	Error         string         `json:"error,omitempty"`
}

// GetStatusInput defines parameters for reading recorded launches.
type GetStatusInput struct {
	Agent string `json:"agent,omitempty" jsonschema:"Specific agent to check (empty for all recorded launches)"`
}

// LaunchStatus describes the latest recorded launch of an agent.
type LaunchStatus struct {
	Agent      string `json:"agent"`
	State      string `json:"state"`
	Probes     int    `json:"probes"`
	StartedAt  string `json:"started_at,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
	Stale      bool   `json:"stale"`
}

// GetStatusOutput contains recorded launch information.
type GetStatusOutput struct {
	Launches []LaunchStatus `json:"launches"`
}
