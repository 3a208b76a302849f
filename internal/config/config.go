package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tuannvm/agentboot/internal/agent"
	"github.com/tuannvm/agentboot/internal/machine"
)

// Config represents the agentboot configuration
type Config struct {
	StateDir         string             `yaml:"state_dir"`
	UserID           string             `yaml:"user_id"`
	MachineToken     string             `yaml:"machine_token"`
	SuccessThreshold int                `yaml:"success_threshold"`
	Parallelism      int                `yaml:"parallelism"`
	Shell            string             `yaml:"shell,omitempty"`
	Launcher         LauncherConfig     `yaml:"launcher"`
	Machine          machine.Machine    `yaml:"machine"`
	AgentsDir        string             `yaml:"agents_dir,omitempty"`
	Agents           []agent.Definition `yaml:"agents"`
}

// LauncherConfig holds the launcher options in their configuration form.
type LauncherConfig struct {
	MaxStartTimeMs           int    `yaml:"max_start_time_ms"`
	PingDelayMs              int    `yaml:"ping_delay_ms"`
	PingConnectionTimeoutMs  int    `yaml:"ping_connection_timeout_ms"`
	PingTimedOutErrorMessage string `yaml:"ping_timed_out_error_message"`
	StartCommandLine         string `yaml:"start_command_line"`
}

// MaxStartTime returns max_start_time_ms as a duration.
func (l LauncherConfig) MaxStartTime() time.Duration {
	return time.Duration(l.MaxStartTimeMs) * time.Millisecond
}

// PingDelay returns ping_delay_ms as a duration.
func (l LauncherConfig) PingDelay() time.Duration {
	return time.Duration(l.PingDelayMs) * time.Millisecond
}

// PingConnectionTimeout returns ping_connection_timeout_ms as a duration.
func (l LauncherConfig) PingConnectionTimeout() time.Duration {
	return time.Duration(l.PingConnectionTimeoutMs) * time.Millisecond
}

// Default launcher settings.
const (
	DefaultMaxStartTimeMs           = 60000
	DefaultPingDelayMs              = 2000
	DefaultPingConnectionTimeoutMs  = 2000
	DefaultPingTimedOutErrorMessage = "Timeout reached. Workspace agent has not been started"
	DefaultSuccessThreshold         = 1
	DefaultParallelism              = 4
	DefaultStateDir                 = ".agentboot"
)

// Load reads config from file, checking multiple locations
func Load(path string) (*Config, error) {
	var configPath string

	if path != "" {
		configPath = path
	} else {
		locations := []string{
			".agentboot/config.yaml",
			".agentboot/config.yml",
			filepath.Join(os.Getenv("HOME"), ".agentboot/config.yaml"),
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				configPath = loc
				break
			}
		}
	}

	if configPath == "" {
		return nil, os.ErrNotExist
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	if cfg.AgentsDir != "" && !filepath.IsAbs(cfg.AgentsDir) {
		cfg.AgentsDir = filepath.Join(filepath.Dir(configPath), cfg.AgentsDir)
	}

	cfg.applyDefaults()
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault loads the config at path, falling back to Default when no
// config file exists and path is empty.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == "" && os.IsNotExist(err) {
		cfg = Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}
	return nil, err
}

func (c *Config) applyDefaults() {
	def := Default()

	if c.StateDir == "" {
		c.StateDir = def.StateDir
	}
	if c.SuccessThreshold == 0 {
		c.SuccessThreshold = def.SuccessThreshold
	}
	if c.Parallelism == 0 {
		c.Parallelism = def.Parallelism
	}
	if c.Launcher.MaxStartTimeMs == 0 {
		c.Launcher.MaxStartTimeMs = def.Launcher.MaxStartTimeMs
	}
	if c.Launcher.PingDelayMs == 0 {
		c.Launcher.PingDelayMs = def.Launcher.PingDelayMs
	}
	if c.Launcher.PingConnectionTimeoutMs == 0 {
		c.Launcher.PingConnectionTimeoutMs = def.Launcher.PingConnectionTimeoutMs
	}
	if c.Launcher.PingTimedOutErrorMessage == "" {
		c.Launcher.PingTimedOutErrorMessage = def.Launcher.PingTimedOutErrorMessage
	}
	if c.Machine.ID == "" {
		c.Machine.ID = def.Machine.ID
	}
	if c.Machine.WorkspaceID == "" {
		c.Machine.WorkspaceID = def.Machine.WorkspaceID
	}
	if len(c.Machine.Runtime.Servers) == 0 {
		c.Machine.Runtime.Servers = def.Machine.Runtime.Servers
	}
	if len(c.Agents) == 0 && c.AgentsDir == "" {
		c.Agents = def.Agents
	}
}

// ApplyEnvOverrides applies environment variable overrides to config
func (c *Config) ApplyEnvOverrides() {
	envInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			var n int
			if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
				*dst = n
			}
		}
	}

	envInt("AGENTBOOT_MAX_START_TIME_MS", &c.Launcher.MaxStartTimeMs)
	envInt("AGENTBOOT_PING_DELAY_MS", &c.Launcher.PingDelayMs)
	envInt("AGENTBOOT_PING_CONNECTION_TIMEOUT_MS", &c.Launcher.PingConnectionTimeoutMs)

	if token := os.Getenv("AGENTBOOT_MACHINE_TOKEN"); token != "" {
		c.MachineToken = token
	}
	if userID := os.Getenv("AGENTBOOT_USER_ID"); userID != "" {
		c.UserID = userID
	}
	if dir := os.Getenv("AGENTBOOT_STATE_DIR"); dir != "" {
		c.StateDir = dir
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Launcher.MaxStartTimeMs < 0 || c.Launcher.PingDelayMs < 0 || c.Launcher.PingConnectionTimeoutMs < 0 {
		return fmt.Errorf("launcher durations must not be negative")
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative, got %d", c.Parallelism)
	}
	for portKey, server := range c.Machine.Runtime.Servers {
		if server.URL == "" {
			return fmt.Errorf("machine server %s has no url", portKey)
		}
	}
	return nil
}

// Registry builds the agent registry from the inline catalog and the
// descriptors in AgentsDir.
func (c *Config) Registry() (*agent.Registry, error) {
	defs := append([]agent.Definition(nil), c.Agents...)
	if c.AgentsDir != "" {
		loaded, err := agent.LoadDefinitions(c.AgentsDir)
		if err != nil {
			return nil, err
		}
		defs = append(defs, loaded...)
	}
	return agent.NewRegistry(defs)
}

// LaunchesFile returns the path of the launch record store.
func (c *Config) LaunchesFile() string {
	return filepath.Join(c.StateDir, "launches.json")
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		StateDir:         DefaultStateDir,
		SuccessThreshold: DefaultSuccessThreshold,
		Parallelism:      DefaultParallelism,
		Launcher: LauncherConfig{
			MaxStartTimeMs:           DefaultMaxStartTimeMs,
			PingDelayMs:              DefaultPingDelayMs,
			PingConnectionTimeoutMs:  DefaultPingConnectionTimeoutMs,
			PingTimedOutErrorMessage: DefaultPingTimedOutErrorMessage,
			StartCommandLine:         `export JPDA_ADDRESS="4403" && ~/che/ws-agent/bin/catalina.sh jpda run`,
		},
		Machine: machine.Machine{
			ID:          "local",
			WorkspaceID: "local",
			Runtime: machine.Runtime{Servers: map[string]machine.Server{
				"4401/tcp": {URL: "http://localhost:4401/api"},
				"4411/tcp": {URL: "ws://localhost:4411/pty"},
				"4412/tcp": {URL: "http://localhost:4412/process"},
			}},
		},
		Agents: []agent.Definition{
			{
				ID:     "org.eclipse.che.terminal",
				Name:   "Terminal",
				Script: "$HOME/che/terminal/che-websocket-terminal -addr :4411 -cmd /bin/bash -static $HOME/che/terminal/",
				Properties: map[string]string{
					agent.PropertyProbeKind:  "terminal",
					agent.PropertyServerPort: "4411/tcp",
				},
			},
			{
				ID:           "org.eclipse.che.exec",
				Name:         "Exec",
				Script:       "$HOME/che/exec-agent/che-exec-agent -addr :4412 -cmd /bin/bash -logs-dir $HOME/che/exec-agent/logs",
				Dependencies: []string{"org.eclipse.che.terminal"},
				Properties: map[string]string{
					agent.PropertyProbeKind:  "exec",
					agent.PropertyServerPort: "4412/tcp",
				},
			},
			{
				ID:     "org.eclipse.che.ws-agent",
				Name:   "Workspace API",
				Script: "mkdir -p ~/che/ws-agent && tar -xzf /mnt/che/ws-agent.tar.gz -C ~/che/ws-agent",
				Properties: map[string]string{
					agent.PropertyProbeKind:  "wsagent",
					agent.PropertyServerPort: "4401/tcp",
				},
			},
			{
				ID:     "org.eclipse.che.ssh",
				Name:   "SSH",
				Script: "sudo /usr/sbin/sshd -D",
			},
			{
				ID:           "org.eclipse.che.ls.json",
				Name:         "JSON language server",
				Script:       "$HOME/che/ls-json/launch.sh",
				Dependencies: []string{"org.eclipse.che.ws-agent"},
			},
		},
	}
}
