// Package cmd provides the agentboot command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tuannvm/agentboot/internal/bootstrap"
	"github.com/tuannvm/agentboot/internal/config"
)

var (
	configPath string
	verbose    bool
	quiet      bool
	version    = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "agentboot",
	Short: "Bootstrap the agents of a development workspace",
	Long: `agentboot starts the agents installed in a development machine in
dependency order and waits for each one to answer its liveness probe.

Example:
  agentboot agents list
  agentboot sort org.eclipse.che.exec
  agentboot launch
  agentboot launch org.eclipse.che.ws-agent --dry-run
  agentboot status`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("agentboot version %s\n", version)
	},
}

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default: .agentboot/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet output (errors only)")
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the selected config file, or the defaults when none exists.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newLogger() bootstrap.Logger {
	return bootstrap.NewStdLogger(verbose, quiet)
}

// newSLog returns the structured logger handed to launchers and executors.
func newSLog(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func logInfo(format string, args ...interface{}) {
	if !quiet {
		_, _ = fmt.Fprintf(os.Stdout, format+"\n", args...)
	}
}

func logVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		_, _ = fmt.Fprintf(os.Stdout, "[DEBUG] "+format+"\n", args...)
	}
}
