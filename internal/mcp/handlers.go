package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tuannvm/agentboot/internal/agent"
	"github.com/tuannvm/agentboot/internal/bootstrap"
	"github.com/tuannvm/agentboot/internal/config"
	"github.com/tuannvm/agentboot/internal/launcher"
	"github.com/tuannvm/agentboot/internal/machine"
	"github.com/tuannvm/agentboot/internal/probe"
	"github.com/tuannvm/agentboot/internal/state"
)

// Handlers provides the business logic for MCP tool handlers.
// It can be used standalone or injected into the MCP server.
type Handlers struct {
	configPath string // Optional config file path
	verbose    bool
	executor   machine.Executor
	metrics    launcher.MetricsCollector
	logger     *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers() *Handlers {
	return &Handlers{}
}

// WithConfigPath sets the config file path.
func (h *Handlers) WithConfigPath(path string) *Handlers {
	h.configPath = path
	return h
}

// WithVerbose enables verbose logging.
func (h *Handlers) WithVerbose(verbose bool) *Handlers {
	h.verbose = verbose
	return h
}

// WithExecutor sets the executor used by the bootstrap tool.
func (h *Handlers) WithExecutor(executor machine.Executor) *Handlers {
	h.executor = executor
	return h
}

// WithMetrics sets the launch metrics collector.
func (h *Handlers) WithMetrics(metrics launcher.MetricsCollector) *Handlers {
	h.metrics = metrics
	return h
}

// WithLogger sets the structured logger passed to launchers.
func (h *Handlers) WithLogger(logger *slog.Logger) *Handlers {
	h.logger = logger
	return h
}

// loadConfig loads the config file or returns defaults.
func (h *Handlers) loadConfig() (*config.Config, error) {
	return config.LoadOrDefault(h.configPath)
}

func (h *Handlers) registry() (*config.Config, *agent.Registry, error) {
	cfg, err := h.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, nil, err
	}
	return cfg, reg, nil
}

// ListAgents returns the agent catalog.
func (h *Handlers) ListAgents(_ context.Context, _ ListAgentsInput) (ListAgentsOutput, error) {
	cfg, reg, err := h.registry()
	if err != nil {
		return ListAgentsOutput{}, err
	}

	defs := reg.Agents()
	output := ListAgentsOutput{Agents: make([]AgentInfo, 0, len(defs))}
	for _, def := range defs {
		info := AgentInfo{
			ID:           def.ID,
			Version:      def.Key().Version,
			Name:         def.DisplayName(),
			Dependencies: def.Dependencies,
		}
		if info.Dependencies == nil {
			info.Dependencies = []string{}
		}
		if plan, err := bootstrap.PlanFor(cfg, def); err == nil && plan.Probed() {
			info.ProbeKind = string(plan.Kind)
			info.PortKey = plan.Options.PortKey
		}
		output.Agents = append(output.Agents, info)
	}
	return output, nil
}

// SortAgents orders agents so dependencies come first.
func (h *Handlers) SortAgents(_ context.Context, input SortAgentsInput) (SortAgentsOutput, error) {
	if len(input.Agents) == 0 {
		return SortAgentsOutput{}, fmt.Errorf("agents is required")
	}
	_, reg, err := h.registry()
	if err != nil {
		return SortAgentsOutput{}, err
	}

	levels, err := agent.NewSorter(reg).Levels(input.Agents)
	if err != nil {
		return SortAgentsOutput{}, err
	}

	output := SortAgentsOutput{Order: []string{}, Levels: make([][]string, 0, len(levels))}
	for _, level := range levels {
		names := make([]string, len(level))
		for i, key := range level {
			names[i] = key.String()
		}
		output.Levels = append(output.Levels, names)
	}
	sorted, err := agent.NewSorter(reg).Sort(input.Agents)
	if err != nil {
		return SortAgentsOutput{}, err
	}
	for _, key := range sorted {
		output.Order = append(output.Order, key.String())
	}
	return output, nil
}

// ProbeConfig resolves the liveness target of one agent on the configured machine.
func (h *Handlers) ProbeConfig(ctx context.Context, input ProbeConfigInput) (ProbeConfigOutput, error) {
	if input.Agent == "" {
		return ProbeConfigOutput{}, fmt.Errorf("agent is required")
	}
	cfg, reg, err := h.registry()
	if err != nil {
		return ProbeConfigOutput{}, err
	}

	key, err := agent.ParseKey(input.Agent)
	if err != nil {
		return ProbeConfigOutput{}, err
	}
	def, err := reg.Get(key)
	if err != nil {
		return ProbeConfigOutput{}, err
	}
	plan, err := bootstrap.PlanFor(cfg, def)
	if err != nil {
		return ProbeConfigOutput{}, err
	}

	m := cfg.Machine
	if input.WorkspaceID != "" {
		m.WorkspaceID = input.WorkspaceID
	}
	userID := input.UserID
	if userID == "" {
		userID = cfg.UserID
	}

	target, err := plan.ProbeConfig(probe.WithUserID(ctx, userID), cfg, bootstrap.Tokens(cfg), m)
	if err != nil {
		return ProbeConfigOutput{}, err
	}
	return ProbeConfigOutput{
		Agent:  def.Key().String(),
		Kind:   string(plan.Kind),
		URL:    target.URL(),
		Config: target,
	}, nil
}

// Bootstrap launches agents on the configured machine.
func (h *Handlers) Bootstrap(ctx context.Context, input BootstrapInput) (BootstrapOutput, error) {
	if h.executor == nil && !input.DryRun {
		return BootstrapOutput{}, fmt.Errorf("no machine executor configured; use dry_run")
	}
	cfg, err := h.loadConfig()
	if err != nil {
		return BootstrapOutput{}, err
	}

	opts := config.DefaultRunOptions(cfg)
	opts.Agents = input.Agents
	opts.Sequential = input.Sequential
	opts.DryRun = input.DryRun
	if input.WorkspaceID != "" {
		opts.WorkspaceID = input.WorkspaceID
	}
	if input.MachineID != "" {
		opts.MachineID = input.MachineID
	}
	if input.UserID != "" {
		opts.UserID = input.UserID
	}

	deps := bootstrap.Deps{
		Executor: h.executor,
		Metrics:  h.metrics,
		SLog:     h.logger,
	}
	if !input.DryRun {
		store := state.NewManager(cfg.StateDir)
		if err := store.Load(); err != nil {
			return BootstrapOutput{}, err
		}
		deps.State = store
	}

	start := time.Now()
	results, runErr := bootstrap.Execute(ctx, cfg, opts, deps, bootstrap.NopLogger{})

	output := BootstrapOutput{
		Results:     make([]LaunchOutput, 0, len(results)),
		TotalAgents: len(results),
	}
	for _, r := range results {
		lo := LaunchOutput{
			Agent:    r.Plan.Agent.String(),
			Level:    r.Level,
			State:    r.Attempt.State.String(),
			Probes:   r.Attempt.Probes,
			Duration: r.Attempt.Duration.String(),
			Success:  r.Err == nil,
			Error:    r.Error(),
		}
		if r.Probe != nil {
			lo.ProbeURL = r.Probe.URL()
		}
		if lo.Success {
			output.Successful++
		} else {
			output.Failed++
		}
		output.Results = append(output.Results, lo)
	}
	output.TotalDuration = time.Since(start).Round(time.Millisecond).String()
	if runErr != nil {
		output.Error = runErr.Error()
	}

	// Sorting and catalog failures carry no results; surface them as tool errors.
	if runErr != nil && len(results) == 0 {
		return output, runErr
	}
	return output, nil
}

// GetStatus returns the recorded launches.
func (h *Handlers) GetStatus(_ context.Context, input GetStatusInput) (GetStatusOutput, error) {
	cfg, reg, err := h.registry()
	if err != nil {
		return GetStatusOutput{}, err
	}

	store := state.NewManager(cfg.StateDir)
	if err := store.Load(); err != nil {
		return GetStatusOutput{}, err
	}

	output := GetStatusOutput{Launches: []LaunchStatus{}}
	for _, rec := range store.Records() {
		key, err := agent.ParseKey(rec.Agent)
		if err != nil {
			continue
		}
		if input.Agent != "" && input.Agent != key.ID && input.Agent != rec.Agent {
			continue
		}

		status := LaunchStatus{
			Agent:      rec.Agent,
			State:      rec.State,
			Probes:     rec.Probes,
			DurationMs: rec.DurationMs,
			Error:      rec.Error,
		}
		if !rec.StartedAt.IsZero() {
			status.StartedAt = rec.StartedAt.Format(time.RFC3339)
		}
		if def, err := reg.Get(key); err == nil {
			status.Stale, _ = store.Stale(def)
		} else {
			status.Stale = true
		}
		output.Launches = append(output.Launches, status)
	}
	return output, nil
}
