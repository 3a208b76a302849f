package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tuannvm/agentboot/internal/state"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget recorded launches",
	Long: `Remove the launch records kept in the state directory. Running agents
are not affected.

Example:
  agentboot reset`,
	Args: cobra.NoArgs,
	RunE: resetCommand,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func resetCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := state.NewManager(cfg.StateDir)
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear launch records: %w", err)
	}
	logInfo("Cleared %s", store.Path())
	return nil
}
