package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/tuannvm/agentboot/internal/agent"
	"github.com/tuannvm/agentboot/internal/bootstrap"
	"github.com/tuannvm/agentboot/internal/config"
	"github.com/tuannvm/agentboot/internal/launcher"
	"github.com/tuannvm/agentboot/internal/probe"
)

func TestDashboardResultRunOptions(t *testing.T) {
	cfg := config.Default()

	all := &DashboardResult{
		Agents:    []string{"a", "b"},
		AllAgents: true,
		Execution: config.ExecutionParallel,
		Verbosity: config.VerbosityVerbose,
	}
	opts := all.RunOptions(cfg)
	if opts.Agents != nil {
		t.Errorf("Agents = %v, want nil when every agent is selected", opts.Agents)
	}
	if opts.Sequential {
		t.Error("Sequential should be false for parallel execution")
	}
	if opts.WorkspaceID != cfg.Machine.WorkspaceID {
		t.Errorf("WorkspaceID = %q, want config default", opts.WorkspaceID)
	}
	if !opts.IsVerbose() {
		t.Error("expected verbose options")
	}

	some := &DashboardResult{
		Agents:      []string{"org.eclipse.che.exec"},
		Execution:   config.ExecutionSequential,
		WorkspaceID: "ws-7",
		DryRun:      true,
	}
	opts = some.RunOptions(cfg)
	if len(opts.Agents) != 1 || opts.Agents[0] != "org.eclipse.che.exec" {
		t.Errorf("Agents = %v", opts.Agents)
	}
	if !opts.Sequential || opts.EffectiveParallelism() != 1 {
		t.Error("sequential execution should limit parallelism to 1")
	}
	if opts.WorkspaceID != "ws-7" || !opts.DryRun {
		t.Errorf("got workspace %q dry-run %v", opts.WorkspaceID, opts.DryRun)
	}
	if opts.Verbosity != config.VerbosityNormal {
		t.Errorf("Verbosity = %q, want default", opts.Verbosity)
	}
}

func TestAgentOptions(t *testing.T) {
	reg, err := config.Default().Registry()
	if err != nil {
		t.Fatal(err)
	}

	opts := agentOptions(reg, []string{"org.eclipse.che.exec"})
	if len(opts) != 5 {
		t.Fatalf("got %d options, want 5", len(opts))
	}
	if opts[1].Value != "org.eclipse.che.exec" {
		t.Errorf("second option = %q, want registry order", opts[1].Value)
	}
	if want := "Exec (org.eclipse.che.exec) ← org.eclipse.che.terminal"; opts[1].Key != want {
		t.Errorf("label = %q, want %q", opts[1].Key, want)
	}
}

func TestRenderResults(t *testing.T) {
	target := probe.Config{Scheme: "http", Host: "localhost", Port: 4412, Path: "/liveness"}
	results := []bootstrap.Result{
		{
			Plan:    bootstrap.Plan{Agent: agent.NewKey("org.eclipse.che.terminal", "")},
			Attempt: launcher.Attempt{State: launcher.StateReady, Probes: 3},
		},
		{
			Plan:    bootstrap.Plan{Agent: agent.NewKey("org.eclipse.che.exec", "1.0")},
			Attempt: launcher.Attempt{State: launcher.StateTimedOut},
			Err:     errors.New("timeout"),
		},
		{
			Plan:  bootstrap.Plan{Agent: agent.NewKey("org.eclipse.che.ssh", "")},
			Probe: &target,
		},
	}

	out := RenderResults(results)
	for _, want := range []string{
		"org.eclipse.che.terminal",
		"Ready, 3 probe(s)",
		"org.eclipse.che.exec:1.0",
		"TimedOut: timeout",
		"http://localhost:4412/liveness",
		"2/3 agents succeeded",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
