package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tuannvm/agentboot/internal/agent"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Launcher.MaxStartTimeMs != DefaultMaxStartTimeMs {
		t.Errorf("MaxStartTimeMs = %d, want %d", cfg.Launcher.MaxStartTimeMs, DefaultMaxStartTimeMs)
	}
	if cfg.SuccessThreshold != 1 {
		t.Errorf("SuccessThreshold = %d, want 1", cfg.SuccessThreshold)
	}
	if _, ok := cfg.Machine.Server("4401/tcp"); !ok {
		t.Error("default machine should expose the workspace agent server")
	}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	if got := len(reg.Agents()); got != 5 {
		t.Errorf("expected 5 default agents, got %d", got)
	}

	// Every default dependency must resolve.
	sorted, err := agent.NewSorter(reg).Sort(reg.IDs())
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if len(sorted) != 5 {
		t.Errorf("expected 5 sorted agents, got %d", len(sorted))
	}
}

func TestLauncherConfigDurations(t *testing.T) {
	l := LauncherConfig{MaxStartTimeMs: 1500, PingDelayMs: 250, PingConnectionTimeoutMs: 100}

	if l.MaxStartTime() != 1500*time.Millisecond {
		t.Errorf("MaxStartTime() = %v", l.MaxStartTime())
	}
	if l.PingDelay() != 250*time.Millisecond {
		t.Errorf("PingDelay() = %v", l.PingDelay())
	}
	if l.PingConnectionTimeout() != 100*time.Millisecond {
		t.Errorf("PingConnectionTimeout() = %v", l.PingConnectionTimeout())
	}
}

func TestLoadWithDefaults(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), `
launcher:
  ping_delay_ms: 500
  start_command_line: ./start.sh
agents:
  - id: custom
    script: ./custom.sh
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Launcher.PingDelayMs != 500 {
		t.Errorf("PingDelayMs = %d, want 500", cfg.Launcher.PingDelayMs)
	}
	if cfg.Launcher.MaxStartTimeMs != DefaultMaxStartTimeMs {
		t.Errorf("Default max start time not applied: got %d", cfg.Launcher.MaxStartTimeMs)
	}
	if cfg.Launcher.PingTimedOutErrorMessage != DefaultPingTimedOutErrorMessage {
		t.Errorf("Default timeout message not applied: got %q", cfg.Launcher.PingTimedOutErrorMessage)
	}
	if cfg.Launcher.StartCommandLine != "./start.sh" {
		t.Errorf("StartCommandLine = %q", cfg.Launcher.StartCommandLine)
	}
	if cfg.StateDir != DefaultStateDir {
		t.Errorf("StateDir = %q, want %q", cfg.StateDir, DefaultStateDir)
	}
	if cfg.Machine.ID != "local" || len(cfg.Machine.Runtime.Servers) != 3 {
		t.Errorf("Default machine not applied: %+v", cfg.Machine)
	}
	// Custom agents replace the default catalog
	if len(cfg.Agents) != 1 || cfg.Agents[0].ID != "custom" {
		t.Errorf("Custom agents not loaded: %+v", cfg.Agents)
	}
}

func TestLoadAgentsDir(t *testing.T) {
	tmpDir := t.TempDir()
	agentsDir := filepath.Join(tmpDir, "agents")
	if err := os.Mkdir(agentsDir, 0755); err != nil {
		t.Fatal(err)
	}
	descriptor := `
id: org.example.agent
dependencies: [org.example.base]
`
	if err := os.WriteFile(filepath.Join(agentsDir, "agent.yaml"), []byte(descriptor), 0644); err != nil {
		t.Fatal(err)
	}

	configPath := writeConfig(t, tmpDir, `
agents_dir: agents
agents:
  - id: org.example.base
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AgentsDir != agentsDir {
		t.Errorf("AgentsDir = %q, want %q", cfg.AgentsDir, agentsDir)
	}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	sorted, err := agent.NewSorter(reg).Sort([]string{"org.example.agent"})
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if len(sorted) != 2 || sorted[0].ID != "org.example.base" {
		t.Errorf("unexpected order: %v", sorted)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	cfg := &Config{Agents: []agent.Definition{{ID: "a"}, {ID: "a", Version: "latest"}}}
	_, err := cfg.Registry()
	if !errors.Is(err, agent.ErrDuplicateAgent) {
		t.Errorf("Registry() error = %v, want ErrDuplicateAgent", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative parallelism", "parallelism: -1\n"},
		{"negative delay", "launcher:\n  ping_delay_ms: -5\n"},
		{"server without url", "machine:\n  runtime:\n    servers:\n      4401/tcp: {}\n"},
		{"invalid yaml", "launcher: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, t.TempDir(), tt.content)
			if _, err := Load(configPath); err == nil {
				t.Error("Load() should return an error")
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()

	t.Setenv("AGENTBOOT_MAX_START_TIME_MS", "5000")
	t.Setenv("AGENTBOOT_PING_DELAY_MS", "100")
	t.Setenv("AGENTBOOT_PING_CONNECTION_TIMEOUT_MS", "50")
	t.Setenv("AGENTBOOT_MACHINE_TOKEN", "token-from-env")
	t.Setenv("AGENTBOOT_USER_ID", "alice")
	t.Setenv("AGENTBOOT_STATE_DIR", "/from/env")

	cfg.ApplyEnvOverrides()

	if cfg.Launcher.MaxStartTimeMs != 5000 {
		t.Errorf("MaxStartTimeMs = %d, want 5000", cfg.Launcher.MaxStartTimeMs)
	}
	if cfg.Launcher.PingDelayMs != 100 {
		t.Errorf("PingDelayMs = %d, want 100", cfg.Launcher.PingDelayMs)
	}
	if cfg.Launcher.PingConnectionTimeoutMs != 50 {
		t.Errorf("PingConnectionTimeoutMs = %d, want 50", cfg.Launcher.PingConnectionTimeoutMs)
	}
	if cfg.MachineToken != "token-from-env" {
		t.Errorf("MachineToken = %q", cfg.MachineToken)
	}
	if cfg.UserID != "alice" {
		t.Errorf("UserID = %q", cfg.UserID)
	}
	if cfg.LaunchesFile() != filepath.Join("/from/env", "launches.json") {
		t.Errorf("LaunchesFile() = %q", cfg.LaunchesFile())
	}
}

func TestApplyEnvOverridesInvalidNumber(t *testing.T) {
	cfg := Default()
	t.Setenv("AGENTBOOT_PING_DELAY_MS", "soon")
	t.Setenv("AGENTBOOT_MAX_START_TIME_MS", "-10")

	cfg.ApplyEnvOverrides()

	if cfg.Launcher.PingDelayMs != DefaultPingDelayMs {
		t.Errorf("PingDelayMs = %d, want default", cfg.Launcher.PingDelayMs)
	}
	if cfg.Launcher.MaxStartTimeMs != DefaultMaxStartTimeMs {
		t.Errorf("MaxStartTimeMs = %d, want default", cfg.Launcher.MaxStartTimeMs)
	}
}

func TestLoadNonexistentFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !os.IsNotExist(err) {
		t.Errorf("Load() error = %v, want not-exist", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if len(cfg.Agents) != len(Default().Agents) {
		t.Error("expected the default catalog")
	}

	if _, err := LoadOrDefault("missing.yaml"); err == nil {
		t.Error("an explicit missing path should fail")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatal(err)
	}
	configPath := writeConfig(t, t.TempDir(), string(data))

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Agents) != len(Default().Agents) {
		t.Errorf("agents = %d after round trip", len(cfg.Agents))
	}
}
