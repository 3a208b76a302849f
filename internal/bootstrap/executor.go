// Package bootstrap provides the execution logic for bringing up a
// workspace's agents: sort, launch level by level, record the outcome.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tuannvm/agentboot/internal/agent"
	"github.com/tuannvm/agentboot/internal/config"
	"github.com/tuannvm/agentboot/internal/launcher"
	"github.com/tuannvm/agentboot/internal/machine"
	"github.com/tuannvm/agentboot/internal/probe"
	"github.com/tuannvm/agentboot/internal/state"
)

// Deps are the collaborators of a bootstrap run. Executor is required.
type Deps struct {
	Executor machine.Executor
	Tokens   probe.TokenProvider      // defaults to the configured machine token
	Metrics  launcher.MetricsCollector // defaults to no-op
	Pinger   launcher.Pinger          // defaults to HTTP
	State    *state.Manager           // launch records are skipped when nil
	SLog     *slog.Logger
}

// Result is the outcome of one agent.
type Result struct {
	Plan    Plan             `json:"plan"`
	Level   int              `json:"level"`
	Attempt launcher.Attempt `json:"attempt"`
	Probe   *probe.Config    `json:"probe,omitempty"`
	Err     error            `json:"-"`
}

// Error returns the failure message, or "".
func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Execute bootstraps the agents selected by opts.
// This is the shared execution path for the CLI, the TUI and the MCP server.
func Execute(ctx context.Context, cfg *config.Config, opts config.RunOptions, deps Deps, logger Logger) ([]Result, error) {
	if deps.Executor == nil && !opts.DryRun {
		return nil, errors.New("bootstrap requires a machine executor")
	}
	if logger == nil {
		logger = NopLogger{}
	}
	if deps.Tokens == nil {
		deps.Tokens = Tokens(cfg)
	}
	if deps.Metrics == nil {
		deps.Metrics = launcher.NewNoopMetricsCollector()
	}
	if deps.SLog == nil {
		deps.SLog = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	ids := opts.Agents
	if len(ids) == 0 {
		ids = reg.IDs()
	}

	levels, err := agent.NewSorter(reg).Levels(ids)
	if err != nil {
		return nil, err
	}

	m := targetMachine(cfg, opts)
	userID := opts.UserID
	if userID == "" {
		userID = cfg.UserID
	}
	if userID != "" {
		ctx = probe.WithUserID(ctx, userID)
	}

	logStartup(logger, m, levels, opts)

	run := &run{cfg: cfg, deps: deps, machine: m, logger: logger, parallelism: opts.EffectiveParallelism()}
	var results []Result
	for levelIdx, level := range levels {
		logger.Verbose("Launching level %d: %s", levelIdx+1, joinKeys(level))

		var levelResults []Result
		if opts.DryRun {
			levelResults, err = run.planLevel(ctx, reg, levelIdx, level)
		} else {
			levelResults, err = run.launchLevel(ctx, reg, levelIdx, level)
		}
		results = append(results, levelResults...)
		if err != nil {
			printSummary(results, logger)
			return results, err
		}

		select {
		case <-ctx.Done():
			printSummary(results, logger)
			return results, ctx.Err()
		default:
		}

		if failed := countFailed(levelResults); failed > 0 && !opts.DryRun {
			logger.Error("Level %d had failures, stopping bootstrap", levelIdx+1)
			printSummary(results, logger)
			return results, fmt.Errorf("%d agent(s) in level %d failed", failed, levelIdx+1)
		}
	}

	printSummary(results, logger)
	return results, nil
}

type run struct {
	cfg         *config.Config
	deps        Deps
	machine     machine.Machine
	logger      Logger
	parallelism int

	recordMu sync.Mutex
}

// launchLevel launches every agent of one level with bounded parallelism.
// All agents of the level run to completion; failures are reported in the
// results, not as the returned error.
func (r *run) launchLevel(ctx context.Context, reg *agent.Registry, levelIdx int, level []agent.Key) ([]Result, error) {
	results := make([]Result, len(level))

	var g errgroup.Group
	g.SetLimit(r.parallelism)

	for i, key := range level {
		def, err := reg.Get(key)
		if err != nil {
			return nil, err
		}
		plan, err := PlanFor(r.cfg, def)
		if err != nil {
			return nil, err
		}

		g.Go(func() error {
			results[i] = r.launchOne(ctx, levelIdx, plan, def)
			printAgentStatus(results[i], r.logger)
			r.record(results[i], def)
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func (r *run) launchOne(ctx context.Context, levelIdx int, plan Plan, def agent.Definition) Result {
	result := Result{Plan: plan, Level: levelIdx + 1}

	factory, err := plan.Factory(r.cfg, r.deps.Tokens)
	if err != nil {
		result.Err = err
		return result
	}

	options := []launcher.Option{
		launcher.WithLogger(r.deps.SLog),
		launcher.WithMetrics(r.deps.Metrics),
	}
	if r.deps.Pinger != nil {
		options = append(options, launcher.WithPinger(r.deps.Pinger))
	}
	l := launcher.New(r.deps.Executor, factory, plan.Options, options...)

	if !plan.Probed() {
		result.Attempt, result.Err = l.Start(ctx, r.machine, def)
		return result
	}
	result.Attempt, result.Err = l.Launch(ctx, r.machine, def)
	return result
}

// planLevel resolves plans and probe targets without starting anything.
func (r *run) planLevel(ctx context.Context, reg *agent.Registry, levelIdx int, level []agent.Key) ([]Result, error) {
	results := make([]Result, 0, len(level))
	for _, key := range level {
		def, err := reg.Get(key)
		if err != nil {
			return results, err
		}
		plan, err := PlanFor(r.cfg, def)
		if err != nil {
			return results, err
		}

		result := Result{Plan: plan, Level: levelIdx + 1, Attempt: launcher.Attempt{Agent: key}}
		if plan.Probed() {
			target, err := plan.ProbeConfig(ctx, r.cfg, r.deps.Tokens, r.machine)
			if err != nil {
				result.Err = err
			} else {
				result.Probe = &target
			}
		}
		r.logger.Info("%s (level %d) %s", key, levelIdx+1, describeProbe(result))
		results = append(results, result)
	}
	return results, nil
}

func (r *run) record(result Result, def agent.Definition) {
	if r.deps.State == nil {
		return
	}
	r.recordMu.Lock()
	defer r.recordMu.Unlock()

	err := r.deps.State.Record(state.Record{
		AttemptID:      result.Attempt.ID.String(),
		Agent:          result.Plan.Agent.String(),
		WorkspaceID:    r.machine.WorkspaceID,
		MachineID:      r.machine.ID,
		State:          result.Attempt.State.String(),
		Probes:         result.Attempt.Probes,
		StartedAt:      result.Attempt.StartedAt,
		DurationMs:     result.Attempt.Duration.Milliseconds(),
		Error:          result.Error(),
		DefinitionHash: state.HashDefinition(def),
	})
	if err != nil {
		r.logger.Verbose("Failed to record launch of %s: %v", result.Plan.Agent, err)
	}
}

func targetMachine(cfg *config.Config, opts config.RunOptions) machine.Machine {
	m := cfg.Machine
	if opts.WorkspaceID != "" {
		m.WorkspaceID = opts.WorkspaceID
	}
	if opts.MachineID != "" {
		m.ID = opts.MachineID
	}
	return m
}

func logStartup(logger Logger, m machine.Machine, levels [][]agent.Key, opts config.RunOptions) {
	total := 0
	for _, level := range levels {
		total += len(level)
	}

	logger.Info("Starting agentboot")
	logger.Info("Machine: %s (workspace %s)", m.ID, m.WorkspaceID)
	logger.Info("Agents: %d in %d level(s)", total, len(levels))
	if opts.DryRun {
		logger.Info("Execution: dry run")
	} else {
		logger.Info("Execution: %s", map[bool]string{true: "sequential", false: "parallel"}[opts.EffectiveParallelism() == 1])
	}
	logger.Info("")
}

func joinKeys(keys []agent.Key) string {
	s := make([]string, len(keys))
	for i, k := range keys {
		s[i] = k.Compact()
	}
	return strings.Join(s, ", ")
}

func describeProbe(r Result) string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("probe unavailable: %v", r.Err)
	case r.Probe != nil:
		return "probe " + r.Probe.URL()
	default:
		return "no probe"
	}
}

func countFailed(results []Result) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	return failed
}

func printAgentStatus(result Result, logger Logger) {
	if result.Err != nil {
		logger.Info("✗ %s: %s (%v)", result.Plan.Agent.Compact(), result.Attempt.State, result.Err)
	} else {
		logger.Info("✓ %s: %s in %s", result.Plan.Agent.Compact(), result.Attempt.State, result.Attempt.Duration.Round(time.Millisecond))
	}
}

func printSummary(results []Result, logger Logger) {
	logger.Info("")
	logger.Info("=== Summary ===")
	logger.Info("%d/%d agents succeeded", len(results)-countFailed(results), len(results))
}
