// options.go provides shared option definitions for CLI, TUI and MCP.
package config

// Option represents a selectable option with value and label
type Option struct {
	Value       string
	Label       string
	Description string
}

// RunOptions contains all parameters for bootstrapping agents.
// This is the single source of truth used by the CLI, the TUI and the MCP server.
type RunOptions struct {
	Agents      []string // agent ids; empty means every registered agent
	WorkspaceID string
	MachineID   string
	UserID      string
	Parallelism int
	Sequential  bool
	DryRun      bool // sort and resolve probes without starting anything
	ConfigPath  string
	Verbosity   string // "normal", "verbose", "quiet"
}

// VerbosityNormal, VerbosityVerbose, VerbosityQuiet are verbosity constants
const (
	VerbosityNormal  = "normal"
	VerbosityVerbose = "verbose"
	VerbosityQuiet   = "quiet"
)

var VerbosityOptions = []Option{
	{Value: VerbosityNormal, Label: "Normal", Description: "Standard output"},
	{Value: VerbosityVerbose, Label: "Verbose", Description: "Debug info"},
	{Value: VerbosityQuiet, Label: "Quiet", Description: "Errors only"},
}

// ExecutionParallel, ExecutionSequential are execution mode constants
const (
	ExecutionParallel   = "parallel"
	ExecutionSequential = "sequential"
)

var ExecutionOptions = []Option{
	{Value: ExecutionParallel, Label: "Parallel", Description: "Faster, respects dependencies"},
	{Value: ExecutionSequential, Label: "Sequential", Description: "One at a time"},
}

// DefaultRunOptions returns RunOptions with sensible defaults from config
func DefaultRunOptions(cfg *Config) RunOptions {
	if cfg == nil {
		cfg = Default()
	}
	return RunOptions{
		WorkspaceID: cfg.Machine.WorkspaceID,
		MachineID:   cfg.Machine.ID,
		UserID:      cfg.UserID,
		Parallelism: cfg.Parallelism,
		Verbosity:   VerbosityNormal,
		Sequential:  false,
	}
}

// EffectiveParallelism returns how many agents of one dependency level may
// start at once.
func (o RunOptions) EffectiveParallelism() int {
	if o.Sequential || o.Parallelism < 1 {
		return 1
	}
	return o.Parallelism
}

// IsVerbose returns true if verbosity is set to verbose
func (o RunOptions) IsVerbose() bool {
	return o.Verbosity == VerbosityVerbose
}

// IsQuiet returns true if verbosity is set to quiet
func (o RunOptions) IsQuiet() bool {
	return o.Verbosity == VerbosityQuiet
}
