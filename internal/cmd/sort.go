package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tuannvm/agentboot/internal/agent"
)

var sortLevels bool

var sortCmd = &cobra.Command{
	Use:   "sort [agent...]",
	Short: "Print agents in launch order",
	Long: `Print the given agents, plus everything they depend on, so that every
dependency comes before its dependents. With no arguments every registered
agent is sorted.

Example:
  agentboot sort org.eclipse.che.exec
  agentboot sort --levels`,
	RunE: sortCommand,
}

func init() {
	sortCmd.Flags().BoolVarP(&sortLevels, "levels", "l", false, "group agents into parallel launch levels")
	rootCmd.AddCommand(sortCmd)
}

func sortCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	ids := args
	if len(ids) == 0 {
		ids = reg.IDs()
	}
	sorter := agent.NewSorter(reg)

	if sortLevels {
		levels, err := sorter.Levels(ids)
		if err != nil {
			return err
		}
		for i, level := range levels {
			fmt.Printf("Level %d:\n", i+1)
			for _, key := range level {
				fmt.Printf("  %s\n", key)
			}
		}
		return nil
	}

	sorted, err := sorter.Sort(ids)
	if err != nil {
		return err
	}
	for _, key := range sorted {
		fmt.Println(key)
	}
	return nil
}
