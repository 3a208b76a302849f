package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tuannvm/agentboot/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize agentboot configuration",
	Long: `Create a .agentboot/config.yaml file in the current directory with the
default machine, launcher settings and agent catalog.

Example:
  agentboot init`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func initCommand(cmd *cobra.Command, args []string) error {
	configFile := filepath.Join(config.DefaultStateDir, "config.yaml")
	if configPath != "" {
		configFile = configPath
	}

	if _, err := os.Stat(configFile); err == nil && !initForce {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := config.Default().Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := `# agentboot configuration
# Describe the development machine, launcher timing and the agents to start.
# Agent descriptors can also live in files under agents_dir.

`

	if err := os.WriteFile(configFile, []byte(header+string(data)), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	logInfo("Created %s", configFile)
	logInfo("")
	logInfo("Point the machine servers at your workspace and run:")
	logInfo("  agentboot launch")

	return nil
}
