package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannvm/agentboot/internal/agent"
	"github.com/tuannvm/agentboot/internal/config"
	"github.com/tuannvm/agentboot/internal/launcher"
	"github.com/tuannvm/agentboot/internal/machine"
)

type fakeExecutor struct {
	mu    sync.Mutex
	names []string
}

func (e *fakeExecutor) Exec(_ context.Context, _, _ string, cmd machine.Command, _ string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.names = append(e.names, cmd.Name)
	return nil
}

// writeConfig stores a config whose machine servers point at srv.
func writeConfig(t *testing.T, srv *httptest.Server) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.UserID = "user"
	cfg.MachineToken = "secret"
	cfg.StateDir = filepath.Join(dir, "state")
	cfg.Launcher.MaxStartTimeMs = 200
	cfg.Launcher.PingDelayMs = 10
	cfg.Launcher.PingConnectionTimeoutMs = 500
	if srv != nil {
		host := strings.TrimPrefix(srv.URL, "http://")
		cfg.Machine.Runtime.Servers = map[string]machine.Server{
			"4401/tcp": {URL: "http://" + host + "/api"},
			"4411/tcp": {URL: "ws://" + host + "/pty"},
			"4412/tcp": {URL: "http://" + host + "/process"},
		}
	}

	data, err := cfg.Marshal()
	require.NoError(t, err)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path, cfg
}

func healthyServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListAgents(t *testing.T) {
	path, _ := writeConfig(t, nil)
	h := NewHandlers().WithConfigPath(path)

	output, err := h.ListAgents(context.Background(), ListAgentsInput{})
	require.NoError(t, err)
	require.Len(t, output.Agents, 5)

	byID := make(map[string]AgentInfo)
	for _, a := range output.Agents {
		byID[a.ID] = a
	}

	exec := byID["org.eclipse.che.exec"]
	assert.Equal(t, []string{"org.eclipse.che.terminal"}, exec.Dependencies)
	assert.Equal(t, "exec", exec.ProbeKind)
	assert.Equal(t, "4412/tcp", exec.PortKey)

	ssh := byID["org.eclipse.che.ssh"]
	assert.Empty(t, ssh.ProbeKind)
	assert.NotNil(t, ssh.Dependencies)
}

func TestSortAgents(t *testing.T) {
	path, _ := writeConfig(t, nil)
	h := NewHandlers().WithConfigPath(path)

	output, err := h.SortAgents(context.Background(), SortAgentsInput{
		Agents: []string{"org.eclipse.che.exec", "org.eclipse.che.ls.json"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"org.eclipse.che.terminal:latest",
		"org.eclipse.che.exec:latest",
		"org.eclipse.che.ws-agent:latest",
		"org.eclipse.che.ls.json:latest",
	}, output.Order)
	require.Len(t, output.Levels, 2)
	assert.ElementsMatch(t, []string{"org.eclipse.che.terminal:latest", "org.eclipse.che.ws-agent:latest"}, output.Levels[0])

	_, err = h.SortAgents(context.Background(), SortAgentsInput{})
	assert.Error(t, err)

	_, err = h.SortAgents(context.Background(), SortAgentsInput{Agents: []string{"org.example.missing"}})
	assert.Error(t, err)
}

func TestProbeConfig(t *testing.T) {
	path, _ := writeConfig(t, nil)
	h := NewHandlers().WithConfigPath(path)

	output, err := h.ProbeConfig(context.Background(), ProbeConfigInput{Agent: "org.eclipse.che.ws-agent"})
	require.NoError(t, err)
	assert.Equal(t, "wsagent", output.Kind)
	assert.Equal(t, "http://localhost:4401/api/liveness", output.URL)
	assert.Equal(t, "Bearer secret", output.Config.Headers["Authorization"])

	term, err := h.ProbeConfig(context.Background(), ProbeConfigInput{Agent: "org.eclipse.che.terminal"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4411/liveness", term.URL)

	_, err = h.ProbeConfig(context.Background(), ProbeConfigInput{Agent: "org.eclipse.che.ssh"})
	assert.Error(t, err)

	_, err = h.ProbeConfig(context.Background(), ProbeConfigInput{})
	assert.Error(t, err)
}

func TestBootstrapAndStatus(t *testing.T) {
	srv := healthyServer(t)
	path, _ := writeConfig(t, srv)
	exec := &fakeExecutor{}
	metrics := launcher.NewPrometheusMetricsCollector("")
	h := NewHandlers().WithConfigPath(path).WithExecutor(exec).WithMetrics(metrics)

	output, err := h.Bootstrap(context.Background(), BootstrapInput{Agents: []string{"org.eclipse.che.exec"}})
	require.NoError(t, err)
	assert.Empty(t, output.Error)
	assert.Equal(t, 2, output.TotalAgents)
	assert.Equal(t, 2, output.Successful)
	assert.Equal(t, 0, output.Failed)
	assert.Equal(t, "org.eclipse.che.terminal:latest", output.Results[0].Agent)
	assert.Equal(t, "Ready", output.Results[1].State)
	assert.Equal(t, 2, output.Results[1].Level)
	assert.Len(t, exec.names, 2)

	status, err := h.GetStatus(context.Background(), GetStatusInput{})
	require.NoError(t, err)
	require.Len(t, status.Launches, 2)
	for _, l := range status.Launches {
		assert.Equal(t, "Ready", l.State)
		assert.False(t, l.Stale)
		assert.NotEmpty(t, l.StartedAt)
	}

	one, err := h.GetStatus(context.Background(), GetStatusInput{Agent: "org.eclipse.che.exec"})
	require.NoError(t, err)
	require.Len(t, one.Launches, 1)
	assert.Equal(t, "org.eclipse.che.exec:latest", one.Launches[0].Agent)
}

func TestBootstrapDryRun(t *testing.T) {
	path, _ := writeConfig(t, nil)
	h := NewHandlers().WithConfigPath(path)

	output, err := h.Bootstrap(context.Background(), BootstrapInput{DryRun: true, WorkspaceID: "ws-9"})
	require.NoError(t, err)
	assert.Equal(t, 5, output.TotalAgents)

	for _, r := range output.Results {
		if r.Agent == "org.eclipse.che.exec:latest" {
			assert.Equal(t, "http://localhost:4412/liveness", r.ProbeURL)
			assert.Equal(t, "NotStarted", r.State)
		}
	}

	// Dry runs never touch the launch store.
	status, err := h.GetStatus(context.Background(), GetStatusInput{})
	require.NoError(t, err)
	assert.Empty(t, status.Launches)
}

func TestBootstrapWithoutExecutor(t *testing.T) {
	path, _ := writeConfig(t, nil)
	_, err := NewHandlers().WithConfigPath(path).Bootstrap(context.Background(), BootstrapInput{})
	assert.Error(t, err)
}

func TestBootstrapCycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
agents:
  - id: a
    dependencies: [b]
  - id: b
    dependencies: [a]
`), 0644))

	h := NewHandlers().WithConfigPath(path).WithExecutor(&fakeExecutor{})
	_, err := h.Bootstrap(context.Background(), BootstrapInput{Agents: []string{"a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic dependency")
}

func TestNewServerDefaults(t *testing.T) {
	s := NewServer(nil)
	assert.Equal(t, ServerName, s.config.Name)
	assert.Equal(t, 8080, s.config.Port)

	s = NewServer(&ServerConfig{Port: 9090})
	assert.Equal(t, ServerVersion, s.config.Version)
	assert.NotNil(t, s.config.Handlers)
}

func TestOperationalRoutes(t *testing.T) {
	metrics := launcher.NewPrometheusMetricsCollector("")
	metrics.ProbeAttempt(agent.NewKey("org.eclipse.che.exec", ""), true)

	s := NewServer(&ServerConfig{Metrics: metrics.Registry()})
	mux := http.NewServeMux()
	s.addOperationalRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "agentboot_liveness_probes_total")
}
