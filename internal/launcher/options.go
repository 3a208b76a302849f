package launcher

import (
	"log/slog"
	"time"
)

// Options are the per-launcher settings. All durations must be positive.
type Options struct {
	// PortKey selects the agent's entry in the machine's server map.
	PortKey string `json:"port_key,omitempty"`
	// ProcessName names the started process and its output channel.
	ProcessName string `json:"process_name"`
	// StartCommandLine is appended to the agent script on its own line.
	StartCommandLine string `json:"start_command_line,omitempty"`

	MaxStartTime          time.Duration `json:"max_start_time"`
	PingDelay             time.Duration `json:"ping_delay"`
	PingConnectionTimeout time.Duration `json:"ping_connection_timeout"`

	PingTimedOutErrorMessage string `json:"ping_timed_out_error_message"`
}

// DefaultOptions returns the workspace agent launcher settings.
func DefaultOptions() Options {
	return Options{
		PortKey:                  "4401/tcp",
		ProcessName:              "CheWsAgent",
		MaxStartTime:             60 * time.Second,
		PingDelay:                2 * time.Second,
		PingConnectionTimeout:    2 * time.Second,
		PingTimedOutErrorMessage: "Timeout reached. Workspace agent has not been started",
	}
}

// withDefaults fills unset fields from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.PortKey == "" {
		o.PortKey = def.PortKey
	}
	if o.ProcessName == "" {
		o.ProcessName = def.ProcessName
	}
	if o.MaxStartTime <= 0 {
		o.MaxStartTime = def.MaxStartTime
	}
	if o.PingDelay <= 0 {
		o.PingDelay = def.PingDelay
	}
	if o.PingConnectionTimeout <= 0 {
		o.PingConnectionTimeout = def.PingConnectionTimeout
	}
	if o.PingTimedOutErrorMessage == "" {
		o.PingTimedOutErrorMessage = def.PingTimedOutErrorMessage
	}
	return o
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithLogger sets the launcher's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) {
		l.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(mc MetricsCollector) Option {
	return func(l *Launcher) {
		l.metrics = mc
	}
}

// WithPinger replaces the HTTP pinger.
func WithPinger(p Pinger) Option {
	return func(l *Launcher) {
		l.pinger = p
	}
}
