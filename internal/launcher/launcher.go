// Package launcher starts an agent inside a development machine and waits
// for its liveness endpoint to report healthy.
package launcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tuannvm/agentboot/internal/agent"
	"github.com/tuannvm/agentboot/internal/machine"
	"github.com/tuannvm/agentboot/internal/probe"
)

// Launcher starts agents through a machine executor. A Launcher holds no
// per-launch state; concurrent Launch calls are independent.
type Launcher struct {
	executor machine.Executor
	probes   probe.Factory
	opts     Options

	pinger  Pinger
	metrics MetricsCollector
	logger  *slog.Logger
}

// New creates a launcher. Zero-valued fields in opts take their defaults.
func New(executor machine.Executor, probes probe.Factory, opts Options, options ...Option) *Launcher {
	opts = opts.withDefaults()
	l := &Launcher{
		executor: executor,
		probes:   probes,
		opts:     opts,
	}
	for _, o := range options {
		o(l)
	}
	if l.pinger == nil {
		l.pinger = NewHTTPPinger(opts.PingConnectionTimeout)
	}
	if l.metrics == nil {
		l.metrics = NewNoopMetricsCollector()
	}
	if l.logger == nil {
		l.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l
}

// Options returns the effective settings.
func (l *Launcher) Options() Options {
	return l.opts
}

// Launch starts def on m and blocks until the agent is healthy, the start
// budget is spent, or ctx is cancelled. The returned attempt is always
// populated, also on error.
func (l *Launcher) Launch(ctx context.Context, m machine.Machine, def agent.Definition) (Attempt, error) {
	run := &launchRun{
		l: l,
		attempt: Attempt{
			ID:        uuid.New(),
			Agent:     def.Key(),
			State:     StateNotStarted,
			StartedAt: time.Now(),
		},
	}
	run.log = l.logger.With("agent", run.attempt.Agent.String(), "attempt", run.attempt.ID.String(), "machine", m.ID)

	err := run.launch(ctx, m, def)
	run.attempt.Duration = time.Since(run.attempt.StartedAt)
	l.metrics.LaunchDuration(run.attempt.Agent, run.attempt.State, run.attempt.Duration)
	return run.attempt, err
}

// Start runs def on m without probing it. It is used for agents that expose
// no liveness endpoint; the attempt is Ready once the executor accepts the
// command.
func (l *Launcher) Start(ctx context.Context, m machine.Machine, def agent.Definition) (Attempt, error) {
	run := &launchRun{
		l: l,
		attempt: Attempt{
			ID:        uuid.New(),
			Agent:     def.Key(),
			State:     StateNotStarted,
			StartedAt: time.Now(),
		},
	}
	run.log = l.logger.With("agent", run.attempt.Agent.String(), "attempt", run.attempt.ID.String(), "machine", m.ID)

	err := run.start(ctx, m, def)
	if err == nil {
		run.transition(StateReady)
	}
	run.attempt.Duration = time.Since(run.attempt.StartedAt)
	l.metrics.LaunchDuration(run.attempt.Agent, run.attempt.State, run.attempt.Duration)
	return run.attempt, err
}

type launchRun struct {
	l       *Launcher
	attempt Attempt
	log     *slog.Logger
}

func (r *launchRun) transition(to State) {
	from := r.attempt.State
	r.attempt.State = to
	r.l.metrics.StateTransition(r.attempt.Agent, from, to)
	r.log.Debug("launch state changed", "from", from.String(), "to", to.String())
}

func (r *launchRun) launch(ctx context.Context, m machine.Machine, def agent.Definition) error {
	opts := r.l.opts

	server, ok := m.Server(opts.PortKey)
	if !ok {
		r.transition(StateLaunchFailed)
		return &ServerError{Message: ErrServerNotFound.Error(), kind: ErrServerNotFound}
	}

	target, err := probe.GetForContext(ctx, r.l.probes, m.WorkspaceID, server)
	if err != nil {
		r.transition(StateLaunchFailed)
		return err
	}

	if err := r.start(ctx, m, def); err != nil {
		return err
	}
	r.log.Info("agent process started", "process", opts.ProcessName, "probe", target.URL())

	r.transition(StateProbing)
	return r.waitHealthy(ctx, target)
}

// start hands the agent's command to the executor.
func (r *launchRun) start(ctx context.Context, m machine.Machine, def agent.Definition) error {
	opts := r.l.opts

	r.transition(StateStarting)
	cmd := machine.Command{
		Name:        opts.ProcessName,
		CommandLine: startCommandLine(def.Script, opts.StartCommandLine),
		Type:        opts.ProcessName,
	}
	channel := machine.OutputChannel(m.WorkspaceID, opts.ProcessName)
	if err := r.l.executor.Exec(ctx, m.WorkspaceID, m.ID, cmd, channel); err != nil {
		r.transition(StateLaunchFailed)
		return &ServerError{Message: fmt.Sprintf("failed to start agent %s", def.DisplayName()), Err: err}
	}
	return nil
}

// waitHealthy polls target until it answers 200 or MaxStartTime elapses.
func (r *launchRun) waitHealthy(ctx context.Context, target probe.Config) error {
	opts := r.l.opts
	start := time.Now()

	for time.Since(start) < opts.MaxStartTime {
		r.attempt.Probes++
		err := r.l.pinger.Ping(ctx, target)
		r.l.metrics.ProbeAttempt(r.attempt.Agent, err == nil)
		if err == nil {
			r.transition(StateReady)
			r.log.Info("agent is healthy", "probes", r.attempt.Probes, "elapsed", time.Since(start))
			return nil
		}
		r.log.Debug("agent not healthy yet", "probe", r.attempt.Probes, "error", err)

		timer := time.NewTimer(opts.PingDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.transition(StateLaunchFailed)
			return &ServerError{Message: ErrInterrupted.Error(), Err: ctx.Err(), kind: ErrInterrupted}
		case <-timer.C:
		}
	}

	r.transition(StateTimedOut)
	r.log.Warn("agent did not become healthy", "probes", r.attempt.Probes, "max_start_time", opts.MaxStartTime)
	return &ServerError{Message: opts.PingTimedOutErrorMessage, kind: ErrPingTimedOut}
}

// startCommandLine joins the non-empty parts with a newline.
func startCommandLine(script, startCommand string) string {
	var parts []string
	for _, p := range []string{script, startCommand} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}
