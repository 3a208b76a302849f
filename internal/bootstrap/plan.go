package bootstrap

import (
	"context"
	"fmt"

	"github.com/tuannvm/agentboot/internal/agent"
	"github.com/tuannvm/agentboot/internal/config"
	"github.com/tuannvm/agentboot/internal/launcher"
	"github.com/tuannvm/agentboot/internal/machine"
	"github.com/tuannvm/agentboot/internal/probe"
)

// Default server port keys per probe kind.
var defaultPortKeys = map[probe.Kind]string{
	probe.KindWsAgent:    "4401/tcp",
	probe.KindTerminal:   "4411/tcp",
	probe.KindExecServer: "4412/tcp",
}

// wsAgentProcessName is the process name the workspace agent runs under.
const wsAgentProcessName = "CheWsAgent"

// Plan describes how one agent is launched.
type Plan struct {
	Agent agent.Key `json:"agent"`
	Name  string    `json:"name"`
	// Kind is empty for agents without a liveness endpoint.
	Kind    probe.Kind       `json:"kind,omitempty"`
	Options launcher.Options `json:"options"`
}

// Probed reports whether the agent is probed after start.
func (p Plan) Probed() bool {
	return p.Kind != ""
}

// PlanFor derives the launch plan for def from its properties and cfg.
func PlanFor(cfg *config.Config, def agent.Definition) (Plan, error) {
	plan := Plan{
		Agent: def.Key(),
		Name:  def.DisplayName(),
		Options: launcher.Options{
			ProcessName:              def.ID,
			MaxStartTime:             cfg.Launcher.MaxStartTime(),
			PingDelay:                cfg.Launcher.PingDelay(),
			PingConnectionTimeout:    cfg.Launcher.PingConnectionTimeout(),
			PingTimedOutErrorMessage: cfg.Launcher.PingTimedOutErrorMessage,
		},
	}

	raw := def.Property(agent.PropertyProbeKind, "")
	if raw == "" {
		return plan, nil
	}
	kind, err := probe.ParseKind(raw)
	if err != nil {
		return Plan{}, fmt.Errorf("agent %s: %w", def.Key(), err)
	}
	plan.Kind = kind
	plan.Options.PortKey = def.Property(agent.PropertyServerPort, defaultPortKeys[kind])

	if kind == probe.KindWsAgent {
		plan.Options.ProcessName = wsAgentProcessName
		plan.Options.StartCommandLine = cfg.Launcher.StartCommandLine
	}
	return plan, nil
}

// Factory returns the probe factory for the plan, or nil for unprobed agents.
func (p Plan) Factory(cfg *config.Config, tokens probe.TokenProvider) (probe.Factory, error) {
	if !p.Probed() {
		return nil, nil
	}
	return probe.NewFactory(p.Kind, cfg.SuccessThreshold, tokens)
}

// ProbeConfig resolves the liveness target the plan would poll on m.
func (p Plan) ProbeConfig(ctx context.Context, cfg *config.Config, tokens probe.TokenProvider, m machine.Machine) (probe.Config, error) {
	if !p.Probed() {
		return probe.Config{}, fmt.Errorf("agent %s has no liveness probe", p.Agent)
	}
	server, ok := m.Server(p.Options.PortKey)
	if !ok {
		return probe.Config{}, fmt.Errorf("%w: %s", launcher.ErrServerNotFound, p.Options.PortKey)
	}
	factory, err := p.Factory(cfg, tokens)
	if err != nil {
		return probe.Config{}, err
	}
	return probe.GetForContext(ctx, factory, m.WorkspaceID, server)
}

// Tokens returns the token provider configured by cfg.
func Tokens(cfg *config.Config) probe.TokenProvider {
	return probe.NewStaticTokenProvider(cfg.MachineToken)
}
