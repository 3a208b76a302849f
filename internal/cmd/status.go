package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tuannvm/agentboot/internal/agent"
	"github.com/tuannvm/agentboot/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last launch of each agent",
	Long: `Show the last recorded launch of each agent and whether its definition
changed since.

Example:
  agentboot status`,
	Args: cobra.NoArgs,
	RunE: statusCommand,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	store := state.NewManager(cfg.StateDir)
	if err := store.Load(); err != nil {
		return fmt.Errorf("failed to read launch records: %w", err)
	}

	records := store.Records()
	if len(records) == 0 {
		logInfo("No launches recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "AGENT\tSTATE\tPROBES\tDURATION\tSTARTED\tDEFINITION")

	for _, rec := range records {
		definition := "removed"
		if key, err := agent.ParseKey(rec.Agent); err == nil {
			if def, err := reg.Get(key); err == nil {
				_, definition = store.Stale(def)
			}
		}

		started := "-"
		if !rec.StartedAt.IsZero() {
			started = rec.StartedAt.Local().Format(time.DateTime)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			rec.Agent,
			rec.State,
			rec.Probes,
			time.Duration(rec.DurationMs)*time.Millisecond,
			started,
			definition)
		if rec.Error != "" {
			logVerbose("%s: %s", rec.Agent, rec.Error)
		}
	}

	_ = w.Flush()
	return nil
}
