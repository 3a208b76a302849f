package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tuannvm/agentboot/internal/bootstrap"
	"github.com/tuannvm/agentboot/internal/tui"
)

var uiAccessible bool

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Interactive launcher",
	Long: `Pick agents and launch options in an interactive form.

Smart defaults are pre-filled from your .agentboot/config.yaml.

Example:
  agentboot ui
  agentboot ui --accessible`,
	Args: cobra.NoArgs,
	RunE: uiCommand,
}

func init() {
	uiCmd.Flags().BoolVar(&uiAccessible, "accessible", false, "enable accessible mode for screen readers")
	rootCmd.AddCommand(uiCmd)
}

func uiCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	result, err := tui.RunDashboard(tui.DashboardOptions{
		Config:     cfg,
		Accessible: uiAccessible,
	})
	if err != nil {
		return err
	}
	if result.Cancelled {
		logInfo("Cancelled")
		return nil
	}

	opts := result.RunOptions(cfg)
	opts.ConfigPath = configPath

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := startSession(cfg, opts)
	if err != nil {
		return err
	}
	defer session.close()

	// The report replaces the line-by-line progress unless verbose.
	logger := bootstrap.NewStdLogger(opts.IsVerbose(), !opts.IsVerbose())
	results, runErr := session.run(ctx, logger)
	fmt.Print(tui.RenderResults(results))
	if runErr != nil {
		return runErr
	}

	if opts.DryRun {
		return nil
	}

	fmt.Println(tui.MutedStyle().Render("Agents are running. Press Ctrl+C to stop them."))
	<-ctx.Done()
	return nil
}
