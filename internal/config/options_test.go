package config

import (
	"testing"
)

func TestDefaultRunOptions(t *testing.T) {
	opts := DefaultRunOptions(nil)

	if opts.WorkspaceID != "local" {
		t.Errorf("expected workspace %q, got %q", "local", opts.WorkspaceID)
	}

	if opts.Parallelism != DefaultParallelism {
		t.Errorf("expected parallelism %d, got %d", DefaultParallelism, opts.Parallelism)
	}

	if opts.Verbosity != VerbosityNormal {
		t.Errorf("expected verbosity %q, got %q", VerbosityNormal, opts.Verbosity)
	}
}

func TestDefaultRunOptionsWithConfig(t *testing.T) {
	cfg := Default()
	cfg.Machine.WorkspaceID = "ws-42"
	cfg.Machine.ID = "dev-1"
	cfg.UserID = "bob"
	cfg.Parallelism = 8

	opts := DefaultRunOptions(cfg)

	if opts.WorkspaceID != "ws-42" || opts.MachineID != "dev-1" {
		t.Errorf("unexpected machine identity: %q/%q", opts.WorkspaceID, opts.MachineID)
	}

	if opts.UserID != "bob" {
		t.Errorf("expected user %q, got %q", "bob", opts.UserID)
	}

	if opts.Parallelism != 8 {
		t.Errorf("expected parallelism 8, got %d", opts.Parallelism)
	}
}

func TestEffectiveParallelism(t *testing.T) {
	tests := []struct {
		name string
		opts RunOptions
		want int
	}{
		{"configured", RunOptions{Parallelism: 3}, 3},
		{"sequential wins", RunOptions{Parallelism: 3, Sequential: true}, 1},
		{"unset", RunOptions{}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.EffectiveParallelism(); got != tt.want {
				t.Errorf("EffectiveParallelism() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunOptionsIsVerbose(t *testing.T) {
	opts := RunOptions{Verbosity: VerbosityVerbose}
	if !opts.IsVerbose() {
		t.Error("expected IsVerbose() to return true")
	}

	opts.Verbosity = VerbosityNormal
	if opts.IsVerbose() {
		t.Error("expected IsVerbose() to return false")
	}
}

func TestRunOptionsIsQuiet(t *testing.T) {
	opts := RunOptions{Verbosity: VerbosityQuiet}
	if !opts.IsQuiet() {
		t.Error("expected IsQuiet() to return true")
	}

	opts.Verbosity = VerbosityNormal
	if opts.IsQuiet() {
		t.Error("expected IsQuiet() to return false")
	}
}

func TestVerbosityOptions(t *testing.T) {
	if len(VerbosityOptions) != 3 {
		t.Errorf("expected 3 verbosity options, got %d", len(VerbosityOptions))
	}
}

func TestExecutionOptions(t *testing.T) {
	if len(ExecutionOptions) != 2 {
		t.Errorf("expected 2 execution options, got %d", len(ExecutionOptions))
	}
}
