package machine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/coder/agentapi/lib/logctx"
	"github.com/coder/agentapi/lib/termexec"
)

// LocalExecutorConfig configures the local executor.
type LocalExecutorConfig struct {
	Shell          string // defaults to "sh"
	TerminalWidth  uint16
	TerminalHeight uint16
	CloseTimeout   time.Duration
	Logger         *slog.Logger
}

// LocalExecutor runs commands on the local host inside a pseudo terminal.
// It treats the local host as a single development machine.
type LocalExecutor struct {
	cfg    LocalExecutorConfig
	logger *slog.Logger
	ctx    context.Context

	mu        sync.Mutex
	processes map[string]*termexec.Process
}

// NewLocalExecutor creates a local executor. Processes it starts live until
// Close is called; ctx only carries the logger.
func NewLocalExecutor(cfg LocalExecutorConfig) *LocalExecutor {
	if cfg.Shell == "" {
		cfg.Shell = "sh"
	}
	if cfg.TerminalWidth == 0 {
		cfg.TerminalWidth = 180
	}
	if cfg.TerminalHeight == 0 {
		cfg.TerminalHeight = 50
	}
	if cfg.CloseTimeout == 0 {
		cfg.CloseTimeout = 10 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &LocalExecutor{
		cfg:    cfg,
		logger: logger,
		// termexec requires a logger in its context.
		ctx:       logctx.WithLogger(context.Background(), logger),
		processes: make(map[string]*termexec.Process),
	}
}

// Exec starts cmd and returns without waiting for it to finish.
func (e *LocalExecutor) Exec(ctx context.Context, workspaceID, machineID string, cmd Command, outputChannel string) error {
	if strings.TrimSpace(cmd.CommandLine) == "" {
		return fmt.Errorf("%w: command %q has an empty command line", ErrBadRequest, cmd.Name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, running := e.processes[outputChannel]; running {
		return fmt.Errorf("%w: process already running on channel %s", ErrBadRequest, outputChannel)
	}

	e.logger.Debug("starting process",
		"workspace", workspaceID,
		"machine", machineID,
		"name", cmd.Name,
		"type", cmd.Type,
		"channel", outputChannel)

	process, err := termexec.StartProcess(e.ctx, termexec.StartProcessConfig{
		Program:        e.cfg.Shell,
		Args:           []string{"-c", cmd.CommandLine},
		TerminalWidth:  e.cfg.TerminalWidth,
		TerminalHeight: e.cfg.TerminalHeight,
	})
	if err != nil {
		return fmt.Errorf("failed to start process %s: %w", cmd.Name, err)
	}

	e.processes[outputChannel] = process
	return nil
}

// Output returns the current terminal screen of the process writing to
// outputChannel, or "" if there is none.
func (e *LocalExecutor) Output(outputChannel string) string {
	e.mu.Lock()
	process, ok := e.processes[outputChannel]
	e.mu.Unlock()
	if !ok {
		return ""
	}
	return process.ReadScreen()
}

// Close stops every process started by the executor.
func (e *LocalExecutor) Close(ctx context.Context) error {
	e.mu.Lock()
	processes := e.processes
	e.processes = make(map[string]*termexec.Process)
	e.mu.Unlock()

	var errs []error
	for channel, process := range processes {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := process.Close(e.logger, e.cfg.CloseTimeout); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", channel, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
