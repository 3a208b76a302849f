package probe

import (
	"fmt"
	"path"
	"strings"

	"github.com/tuannvm/agentboot/internal/machine"
)

const livenessPath = "/liveness"

// Factory derives a liveness probe config from an agent server.
type Factory interface {
	Get(userID, workspaceID string, server machine.Server) (Config, error)
}

// Kind selects one of the probe factories.
type Kind string

// Supported kinds.
const (
	KindWsAgent    Kind = "wsagent"
	KindTerminal   Kind = "terminal"
	KindExecServer Kind = "exec"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindWsAgent, KindTerminal, KindExecServer}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown probe kind %q (valid: wsagent, terminal, exec)", s)
}

// NewFactory returns the factory for kind. tokens is only used by the
// workspace agent factory and may be nil for the others.
func NewFactory(kind Kind, successThreshold int, tokens TokenProvider) (Factory, error) {
	switch kind {
	case KindWsAgent:
		if tokens == nil {
			return nil, fmt.Errorf("probe kind %s requires a token provider", kind)
		}
		return &WsAgentFactory{SuccessThreshold: successThreshold, Tokens: tokens}, nil
	case KindTerminal:
		return &TerminalFactory{SuccessThreshold: successThreshold}, nil
	case KindExecServer:
		return &ExecServerFactory{SuccessThreshold: successThreshold}, nil
	default:
		return nil, fmt.Errorf("unknown probe kind %q", kind)
	}
}

// ExecServerFactory probes the exec agent. Its server url ends in /process;
// the liveness endpoint lives next to it.
type ExecServerFactory struct {
	SuccessThreshold int
}

var defaultPorts = map[string]int{
	"http":  80,
	"https": 443,
}

// Get implements Factory.
func (f *ExecServerFactory) Get(_, _ string, server machine.Server) (Config, error) {
	u, err := parseServerURL(server.URL)
	if err != nil {
		return Config{}, err
	}

	scheme := strings.ToLower(u.Scheme)
	defaultPort, known := defaultPorts[scheme]
	if !known {
		return Config{}, &InfrastructureError{Message: fmt.Sprintf("malformed server url %q: unknown protocol %s", server.URL, u.Scheme)}
	}

	port, err := explicitPort(u)
	if err != nil {
		return Config{}, err
	}
	if port == 0 {
		port = defaultPort
	}

	return newConfig(u.Hostname(), port, scheme, replaceSuffix(u.Path, "/process", livenessPath), nil, f.SuccessThreshold), nil
}

// TerminalFactory probes the terminal agent, whose server url is a
// websocket endpoint ending in /pty.
type TerminalFactory struct {
	SuccessThreshold int
}

// Get implements Factory.
func (f *TerminalFactory) Get(_, _ string, server machine.Server) (Config, error) {
	u, err := parseServerURL(server.URL)
	if err != nil {
		return Config{}, err
	}

	scheme := "http"
	if strings.EqualFold(u.Scheme, "wss") {
		scheme = "https"
	}

	port, err := explicitPort(u)
	if err != nil {
		return Config{}, err
	}
	if port == 0 {
		port = defaultPorts[scheme]
	}

	return newConfig(u.Hostname(), port, scheme, replaceSuffix(u.Path, "/pty", livenessPath), nil, f.SuccessThreshold), nil
}

// WsAgentFactory probes the workspace agent. Requests carry the machine
// token of the requesting user.
type WsAgentFactory struct {
	SuccessThreshold int
	Tokens           TokenProvider
}

// Get implements Factory.
func (f *WsAgentFactory) Get(userID, workspaceID string, server machine.Server) (Config, error) {
	u, err := parseServerURL(server.URL)
	if err != nil {
		return Config{}, err
	}

	scheme := "https"
	if strings.EqualFold(u.Scheme, "http") {
		scheme = "http"
	}

	port, err := explicitPort(u)
	if err != nil {
		return Config{}, err
	}
	if port == 0 {
		port = defaultPorts[scheme]
	}

	if userID == "" {
		return Config{}, &InfrastructureError{Message: "machine token requires a user id"}
	}
	token, err := f.Tokens.Token(userID, workspaceID)
	if err != nil {
		return Config{}, &InfrastructureError{Message: "failed to retrieve machine token", Err: err}
	}

	headers := map[string]string{
		"Authorization": "Bearer " + token,
	}
	return newConfig(u.Hostname(), port, scheme, appendSegment(u.Path, livenessPath), headers, f.SuccessThreshold), nil
}

// replaceSuffix rewrites a trailing suffix; other paths are returned as is.
func replaceSuffix(p, suffix, replacement string) string {
	if strings.HasSuffix(p, suffix) {
		return strings.TrimSuffix(p, suffix) + replacement
	}
	return p
}

// appendSegment appends seg to p, collapsing duplicate slashes.
func appendSegment(p, seg string) string {
	return path.Join("/", p, seg)
}
