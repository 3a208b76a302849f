package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tuannvm/agentboot/internal/config"
	"github.com/tuannvm/agentboot/internal/launcher"
	"github.com/tuannvm/agentboot/internal/machine"
	bootmcp "github.com/tuannvm/agentboot/internal/mcp"
)

// MCPFlags are the flags shared by "agentboot mcp" and the standalone server.
type MCPFlags struct {
	Transport      string
	Port           int
	EnableOAuth    bool
	OAuthProvider  string
	OAuthIssuer    string
	OAuthAudience  string
	OAuthServerURL string
	SessionTimeout time.Duration
	ReadOnly       bool
}

var mcpFlags MCPFlags

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run agentboot as an MCP server",
	Long: `Run agentboot as an MCP (Model Context Protocol) server.

Transports:
  stdio    Standard input/output for CLI integration (default)
  http     Streamable HTTP transport for web integration

Examples:
  agentboot mcp                                    # stdio mode
  agentboot mcp --transport http --port 8080       # HTTP mode
  agentboot mcp --transport http --oauth \
    --issuer https://company.okta.com \
    --audience api://agentboot                     # HTTP with OAuth`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunMCP(mcpFlags, configPath, verbose, version)
	},
}

func init() {
	f := mcpCmd.Flags()
	f.StringVar(&mcpFlags.Transport, "transport", "stdio", "transport mode: stdio, http")
	f.IntVar(&mcpFlags.Port, "port", 8080, "HTTP port (only used with --transport http)")
	f.BoolVar(&mcpFlags.EnableOAuth, "oauth", false, "enable OAuth 2.1 authentication (only with http transport)")
	f.StringVar(&mcpFlags.OAuthProvider, "provider", "okta", "OAuth provider: okta, google, azure, hmac")
	f.StringVar(&mcpFlags.OAuthIssuer, "issuer", "", "OAuth issuer URL (required with --oauth)")
	f.StringVar(&mcpFlags.OAuthAudience, "audience", "", "OAuth audience (required with --oauth)")
	f.StringVar(&mcpFlags.OAuthServerURL, "server-url", "", "public base URL for OAuth callbacks")
	f.DurationVar(&mcpFlags.SessionTimeout, "session-timeout", 30*time.Minute, "HTTP session timeout")
	f.BoolVar(&mcpFlags.ReadOnly, "read-only", false, "never start agents; bootstrap accepts dry runs only")
	rootCmd.AddCommand(mcpCmd)
}

// RunMCP builds and runs the MCP server.
func RunMCP(flags MCPFlags, cfgPath string, verboseLogging bool, serverVersion string) error {
	log.Println("Starting agentboot MCP server...")

	logger := newSLog(verboseLogging)
	metrics := launcher.NewPrometheusMetricsCollector("")

	handlers := bootmcp.NewHandlers().
		WithConfigPath(cfgPath).
		WithVerbose(verboseLogging).
		WithMetrics(metrics).
		WithLogger(logger)

	var executor *machine.LocalExecutor
	if !flags.ReadOnly {
		cfg, err := config.LoadOrDefault(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		executor = machine.NewLocalExecutor(machine.LocalExecutorConfig{Shell: cfg.Shell, Logger: logger})
		handlers.WithExecutor(executor)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			_ = executor.Close(ctx)
		}()
	}

	cfg := &bootmcp.ServerConfig{
		Version:        serverVersion,
		Logger:         logger,
		Handlers:       handlers,
		Port:           flags.Port,
		SessionTimeout: flags.SessionTimeout,
		Metrics:        metrics.Registry(),
	}

	if flags.EnableOAuth {
		if flags.OAuthIssuer == "" || flags.OAuthAudience == "" {
			return fmt.Errorf("--issuer and --audience are required with --oauth")
		}
		cfg.OAuth = &bootmcp.OAuthConfig{
			Provider:  flags.OAuthProvider,
			Issuer:    flags.OAuthIssuer,
			Audience:  flags.OAuthAudience,
			ServerURL: flags.OAuthServerURL,
		}
	}

	server := bootmcp.NewServer(cfg)

	log.Printf("Starting MCP server with %s transport...", flags.Transport)
	var err error
	switch flags.Transport {
	case "stdio":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = server.ServeStdio(ctx)
	case "http":
		if cfg.OAuth != nil {
			err = server.ServeHTTPWithOAuth()
		} else {
			err = server.ServeHTTP()
		}
	default:
		return fmt.Errorf("unknown transport: %s (use: stdio, http)", flags.Transport)
	}

	if err != nil {
		return err
	}

	log.Println("Server shutdown complete")
	return nil
}
