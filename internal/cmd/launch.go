package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tuannvm/agentboot/internal/bootstrap"
	"github.com/tuannvm/agentboot/internal/config"
	"github.com/tuannvm/agentboot/internal/launcher"
	"github.com/tuannvm/agentboot/internal/machine"
	"github.com/tuannvm/agentboot/internal/state"
)

var launchFlags struct {
	workspace   string
	machineID   string
	user        string
	sequential  bool
	parallelism int
	dryRun      bool
	exit        bool
	jsonOut     bool
	metricsAddr string
}

var launchCmd = &cobra.Command{
	Use:   "launch [agent...]",
	Short: "Launch agents and wait until they are healthy",
	Long: `Launch the given agents, and everything they depend on, on the
configured machine. Agents start level by level; agents of one level start
in parallel. A level with a failed agent stops the run.

Started agents keep running until agentboot is interrupted, unless --exit
is given.

Example:
  agentboot launch
  agentboot launch org.eclipse.che.exec -s
  agentboot launch --dry-run --workspace ws-42
  agentboot launch --metrics-addr :9090`,
	RunE: launchCommand,
}

func init() {
	f := launchCmd.Flags()
	f.StringVarP(&launchFlags.workspace, "workspace", "w", "", "workspace id (default: configured machine)")
	f.StringVarP(&launchFlags.machineID, "machine", "m", "", "machine id (default: configured machine)")
	f.StringVarP(&launchFlags.user, "user", "u", "", "user id (default: configured user)")
	f.BoolVarP(&launchFlags.sequential, "sequential", "s", false, "launch one agent at a time")
	f.IntVarP(&launchFlags.parallelism, "parallelism", "p", 0, "agents of one level launched at once (default: config)")
	f.BoolVarP(&launchFlags.dryRun, "dry-run", "n", false, "resolve the plan without starting anything")
	f.BoolVar(&launchFlags.exit, "exit", false, "stop started agents and exit when the run finishes")
	f.BoolVar(&launchFlags.jsonOut, "json", false, "print results as JSON")
	f.StringVar(&launchFlags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	rootCmd.AddCommand(launchCmd)
}

func launchCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := config.DefaultRunOptions(cfg)
	opts.Agents = args
	opts.ConfigPath = configPath
	opts.Sequential = launchFlags.sequential
	opts.DryRun = launchFlags.dryRun
	if launchFlags.workspace != "" {
		opts.WorkspaceID = launchFlags.workspace
	}
	if launchFlags.machineID != "" {
		opts.MachineID = launchFlags.machineID
	}
	if launchFlags.user != "" {
		opts.UserID = launchFlags.user
	}
	if launchFlags.parallelism > 0 {
		opts.Parallelism = launchFlags.parallelism
	}
	if verbose {
		opts.Verbosity = config.VerbosityVerbose
	} else if quiet {
		opts.Verbosity = config.VerbosityQuiet
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var logger bootstrap.Logger = newLogger()
	if launchFlags.jsonOut {
		logger = bootstrap.NopLogger{}
	}

	session, err := startSession(cfg, opts)
	if err != nil {
		return err
	}
	defer session.close()

	if launchFlags.metricsAddr != "" {
		srv := serveMetrics(launchFlags.metricsAddr, session.metrics)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	results, runErr := session.run(ctx, logger)

	if launchFlags.jsonOut {
		if err := printResultsJSON(results); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	if opts.DryRun || launchFlags.exit || session.executor == nil {
		return nil
	}

	logInfo("")
	logInfo("Agents are running. Press Ctrl+C to stop them.")
	<-ctx.Done()
	logInfo("Stopping agents...")
	return nil
}

// session bundles the collaborators of one bootstrap run.
type session struct {
	cfg      *config.Config
	opts     config.RunOptions
	executor *machine.LocalExecutor
	metrics  *launcher.PrometheusMetricsCollector
	state    *state.Manager
}

func startSession(cfg *config.Config, opts config.RunOptions) (*session, error) {
	s := &session{
		cfg:     cfg,
		opts:    opts,
		metrics: launcher.NewPrometheusMetricsCollector(""),
	}
	if opts.DryRun {
		return s, nil
	}

	s.state = state.NewManager(cfg.StateDir)
	if err := s.state.Load(); err != nil {
		return nil, fmt.Errorf("failed to load launch records: %w", err)
	}
	s.executor = machine.NewLocalExecutor(machine.LocalExecutorConfig{
		Shell:  cfg.Shell,
		Logger: newSLog(verbose),
	})
	return s, nil
}

func (s *session) run(ctx context.Context, logger bootstrap.Logger) ([]bootstrap.Result, error) {
	deps := bootstrap.Deps{
		Metrics: s.metrics,
		State:   s.state,
		SLog:    newSLog(verbose),
	}
	// A nil *LocalExecutor must not become a non-nil interface.
	if s.executor != nil {
		deps.Executor = s.executor
	}
	return bootstrap.Execute(ctx, s.cfg, s.opts, deps, logger)
}

func (s *session) close() {
	if s.executor == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.executor.Close(ctx); err != nil {
		logVerbose("close: %v", err)
	}
}

func serveMetrics(addr string, metrics *launcher.PrometheusMetricsCollector) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			_, _ = fmt.Fprintf(os.Stderr, "Error: metrics server: %v\n", err)
		}
	}()
	logVerbose("Serving metrics on %s/metrics", addr)
	return srv
}

type resultJSON struct {
	Agent      string `json:"agent"`
	Level      int    `json:"level"`
	State      string `json:"state"`
	AttemptID  string `json:"attempt_id,omitempty"`
	Probes     int    `json:"probes"`
	ProbeURL   string `json:"probe_url,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func printResultsJSON(results []bootstrap.Result) error {
	out := make([]resultJSON, 0, len(results))
	for _, r := range results {
		rj := resultJSON{
			Agent:      r.Plan.Agent.String(),
			Level:      r.Level,
			State:      r.Attempt.State.String(),
			Probes:     r.Attempt.Probes,
			DurationMs: r.Attempt.Duration.Milliseconds(),
			Error:      r.Error(),
		}
		if r.Attempt.State != launcher.StateNotStarted {
			rj.AttemptID = r.Attempt.ID.String()
		}
		if r.Probe != nil {
			rj.ProbeURL = r.Probe.URL()
		}
		out = append(out, rj)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
