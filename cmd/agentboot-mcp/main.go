// Package main provides the entry point for the standalone agentboot MCP server.
//
// Supports multiple transport modes:
//   - stdio (default): Standard input/output for CLI integration
//   - http: Streamable HTTP transport for web integration
//   - http+oauth: HTTP with OAuth 2.1 authentication
//
// Usage:
//
//	agentboot-mcp                           # stdio mode (default)
//	agentboot-mcp --transport http --port 8080
//	agentboot-mcp --transport http --port 8080 --oauth --issuer https://company.okta.com --audience api://agentboot
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tuannvm/agentboot/internal/cmd"
)

// Version is the server version, set by the build process.
var Version = "dev"

func main() {
	var flags cmd.MCPFlags

	flag.StringVar(&flags.Transport, "transport", getEnv("MCP_TRANSPORT", "stdio"), "Transport mode: stdio, http")
	flag.IntVar(&flags.Port, "port", getEnvInt("MCP_PORT", 8080), "HTTP port (only used with --transport http)")
	flag.BoolVar(&flags.EnableOAuth, "oauth", false, "Enable OAuth 2.1 authentication (only with http transport)")
	flag.StringVar(&flags.OAuthProvider, "provider", "okta", "OAuth provider: okta, google, azure, hmac")
	flag.StringVar(&flags.OAuthIssuer, "issuer", "", "OAuth issuer URL (required with --oauth)")
	flag.StringVar(&flags.OAuthAudience, "audience", "", "OAuth audience (required with --oauth)")
	flag.StringVar(&flags.OAuthServerURL, "server-url", getEnv("MCP_SERVER_URL", ""), "Public base URL for OAuth callbacks")
	flag.DurationVar(&flags.SessionTimeout, "session-timeout", 30*time.Minute, "HTTP session timeout")
	flag.BoolVar(&flags.ReadOnly, "read-only", false, "Never start agents; bootstrap accepts dry runs only")
	configPath := flag.String("config", getEnv("AGENTBOOT_CONFIG", ""), "Path to agentboot config file")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Parse()

	if err := cmd.RunMCP(flags, *configPath, *verbose, Version); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return def
}
