package mcp

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	oauth "github.com/tuannvm/oauth-mcp-proxy"
	mcpoauth "github.com/tuannvm/oauth-mcp-proxy/mcp"
)

const (
	// ServerName is the MCP server name.
	ServerName = "agentboot"
	// ServerVersion is the MCP server version.
	ServerVersion = "1.0.0"
)

// ServerInstructions provides usage guidance for LLMs.
const ServerInstructions = `Agentboot brings up the agents of a development workspace: it orders them by dependency, starts each one on the workspace machine and waits until its liveness endpoint answers.

Available tools:
- list_agents: List registered agents, their dependencies and probe kinds
- sort_agents: Show the dependency-first launch order for a set of agents
- probe_config: Resolve the liveness URL, headers and thresholds of one agent
- bootstrap: Launch agents level by level and wait for them to become healthy
- get_status: Show the last recorded launch of each agent

Typical workflow:
1. Use list_agents to see what is installed
2. Use sort_agents or bootstrap with dry_run to preview the plan
3. Run bootstrap
4. Check get_status for agents that timed out or are stale`

// ServerConfig holds configuration for creating an MCP server.
type ServerConfig struct {
	Name         string
	Version      string
	Instructions string
	Logger       *slog.Logger
	Handlers     *Handlers

	// Transport settings
	Port           int
	SessionTimeout time.Duration

	// Metrics is served on /metrics when set.
	Metrics *prometheus.Registry

	// OAuth settings (optional)
	OAuth *OAuthConfig
}

// OAuthConfig holds OAuth-specific configuration.
type OAuthConfig struct {
	Provider  string // okta, google, azure, hmac
	Issuer    string
	Audience  string
	ServerURL string // Base URL for OAuth callbacks (e.g., https://example.com:8080)
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Name:           ServerName,
		Version:        ServerVersion,
		Instructions:   ServerInstructions,
		Logger:         slog.Default(),
		Handlers:       NewHandlers(),
		Port:           8080,
		SessionTimeout: 30 * time.Minute,
	}
}

// Server represents the MCP server with all components.
type Server struct {
	mcpServer   *mcp.Server
	config      *ServerConfig
	oauthServer *oauth.Server
}

// NewServer creates a new MCP server instance with all components.
func NewServer(cfg *ServerConfig) *Server {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if cfg.Name == "" {
		cfg.Name = ServerName
	}
	if cfg.Version == "" {
		cfg.Version = ServerVersion
	}
	if cfg.Instructions == "" {
		cfg.Instructions = ServerInstructions
	}
	if cfg.Handlers == nil {
		cfg.Handlers = NewHandlers()
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = 30 * time.Minute
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		&mcp.ServerOptions{
			Instructions: cfg.Instructions,
			Logger:       cfg.Logger,
		},
	)

	registerTools(mcpServer, cfg.Handlers)

	return &Server{
		mcpServer: mcpServer,
		config:    cfg,
	}
}

// ServeStdio starts the MCP server with STDIO transport.
func (s *Server) ServeStdio(ctx context.Context) error {
	log.Println("Starting agentboot MCP server on stdio transport")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// ServeHTTP starts the MCP server with streamable HTTP transport.
func (s *Server) ServeHTTP() error {
	mux := http.NewServeMux()

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.mcpServer
	}, &mcp.StreamableHTTPOptions{
		SessionTimeout: s.config.SessionTimeout,
		Logger:         s.config.Logger,
	})

	mux.Handle("/mcp", handler)
	s.addOperationalRoutes(mux)

	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("Starting agentboot MCP server on http://localhost%s/mcp", addr)
	log.Printf("Health check: http://localhost%s/health", addr)

	return s.runHTTPServer(addr, mux)
}

// ServeHTTPWithOAuth starts the MCP server with OAuth 2.1 authentication.
func (s *Server) ServeHTTPWithOAuth() error {
	if s.config.OAuth == nil {
		return fmt.Errorf("OAuth configuration is required")
	}

	serverURL := s.config.OAuth.ServerURL
	if serverURL == "" {
		serverURL = fmt.Sprintf("http://localhost:%d", s.config.Port)
	}

	mux := http.NewServeMux()

	oauthServer, handler, err := mcpoauth.WithOAuth(mux, &oauth.Config{
		Provider:  s.config.OAuth.Provider,
		Issuer:    s.config.OAuth.Issuer,
		Audience:  s.config.OAuth.Audience,
		ServerURL: serverURL,
	}, s.mcpServer)
	if err != nil {
		return fmt.Errorf("failed to create OAuth server: %w", err)
	}
	s.oauthServer = oauthServer

	mux.Handle("/mcp", handler)
	s.addOperationalRoutes(mux)

	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("Starting agentboot MCP server with OAuth on %s/mcp", serverURL)
	log.Printf("OAuth provider: %s", s.config.OAuth.Provider)
	log.Printf("OAuth issuer: %s", s.config.OAuth.Issuer)
	s.oauthServer.LogStartup(false)

	return s.runHTTPServer(addr, mux)
}

// addOperationalRoutes adds the health check and, when configured, the
// metrics endpoint.
func (s *Server) addOperationalRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","version":"%s"}`, s.config.Version)
	})
	if s.config.Metrics != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.config.Metrics, promhttp.HandlerOpts{}))
	}
}

// runHTTPServer runs an HTTP server with graceful shutdown.
func (s *Server) runHTTPServer(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Bootstraps wait on every agent's start timeout.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		errCh <- srv.Shutdown(ctx)
	}()

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return <-errCh
}

func boolPtr(b bool) *bool {
	return &b
}

// registerTools registers all agentboot tools with the MCP server.
func registerTools(server *mcp.Server, h *Handlers) {
	registerListAgentsTool(server, h)
	registerSortAgentsTool(server, h)
	registerProbeConfigTool(server, h)
	registerBootstrapTool(server, h)
	registerGetStatusTool(server, h)
}

func registerListAgentsTool(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_agents",
			Description: "List registered workspace agents with their versions, dependencies and liveness probe kinds.",
			Annotations: &mcp.ToolAnnotations{
				Title:          "List Agents",
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
			},
		},
		func(ctx context.Context, req *mcp.CallToolRequest, input ListAgentsInput) (*mcp.CallToolResult, ListAgentsOutput, error) {
			output, err := h.ListAgents(ctx, input)
			return nil, output, err
		},
	)
}

func registerSortAgentsTool(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "sort_agents",
			Description: "Order agents so every dependency comes before its dependents. Returns the flat order and the parallel launch levels. Fails on unknown agents or dependency cycles.",
			Annotations: &mcp.ToolAnnotations{
				Title:          "Sort Agents",
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
			},
		},
		func(ctx context.Context, req *mcp.CallToolRequest, input SortAgentsInput) (*mcp.CallToolResult, SortAgentsOutput, error) {
			output, err := h.SortAgents(ctx, input)
			return nil, output, err
		},
	)
}

func registerProbeConfigTool(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "probe_config",
			Description: "Resolve the liveness probe of an agent on the workspace machine: URL, headers, delays and thresholds.",
			Annotations: &mcp.ToolAnnotations{
				Title:          "Probe Config",
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
			},
		},
		func(ctx context.Context, req *mcp.CallToolRequest, input ProbeConfigInput) (*mcp.CallToolResult, ProbeConfigOutput, error) {
			output, err := h.ProbeConfig(ctx, input)
			return nil, output, err
		},
	)
}

func registerBootstrapTool(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "bootstrap",
			Description: "Launch workspace agents in dependency order and wait until each is healthy. Agents of the same level start in parallel; a failing level stops the run.",
			Annotations: &mcp.ToolAnnotations{
				Title:           "Bootstrap Agents",
				ReadOnlyHint:    false,
				DestructiveHint: boolPtr(false),
				IdempotentHint:  false,
				OpenWorldHint:   boolPtr(true),
			},
		},
		func(ctx context.Context, req *mcp.CallToolRequest, input BootstrapInput) (*mcp.CallToolResult, BootstrapOutput, error) {
			output, err := h.Bootstrap(ctx, input)
			return nil, output, err
		},
	)
}

func registerGetStatusTool(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_status",
			Description: "Get the last recorded launch of each agent: final state, probe count, duration and whether the definition changed since.",
			Annotations: &mcp.ToolAnnotations{
				Title:          "Get Status",
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
			},
		},
		func(ctx context.Context, req *mcp.CallToolRequest, input GetStatusInput) (*mcp.CallToolResult, GetStatusOutput, error) {
			output, err := h.GetStatus(ctx, input)
			return nil, output, err
		},
	)
}
