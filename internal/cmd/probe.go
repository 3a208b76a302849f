package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tuannvm/agentboot/internal/agent"
	"github.com/tuannvm/agentboot/internal/bootstrap"
	"github.com/tuannvm/agentboot/internal/probe"
)

var (
	probeWorkspace string
	probeUser      string
	probeJSON      bool
)

var probeCmd = &cobra.Command{
	Use:   "probe <agent>",
	Short: "Show the liveness probe of an agent",
	Long: `Resolve the HTTP liveness probe agentboot polls after starting an agent.

Example:
  agentboot probe org.eclipse.che.terminal
  agentboot probe org.eclipse.che.ws-agent --user alice --json`,
	Args: cobra.ExactArgs(1),
	RunE: probeCommand,
}

func init() {
	probeCmd.Flags().StringVarP(&probeWorkspace, "workspace", "w", "", "workspace id (default: configured machine)")
	probeCmd.Flags().StringVarP(&probeUser, "user", "u", "", "user id (default: configured user)")
	probeCmd.Flags().BoolVar(&probeJSON, "json", false, "print the probe as JSON")
	rootCmd.AddCommand(probeCmd)
}

func probeCommand(cmd *cobra.Command, args []string) error {
	key, err := agent.ParseKey(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	def, err := reg.Get(key)
	if err != nil {
		return err
	}
	plan, err := bootstrap.PlanFor(cfg, def)
	if err != nil {
		return err
	}

	m := cfg.Machine
	if probeWorkspace != "" {
		m.WorkspaceID = probeWorkspace
	}
	userID := cfg.UserID
	if probeUser != "" {
		userID = probeUser
	}

	ctx := probe.WithUserID(context.Background(), userID)
	target, err := plan.ProbeConfig(ctx, cfg, bootstrap.Tokens(cfg), m)
	if err != nil {
		return err
	}

	if probeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(target)
	}

	fmt.Printf("Agent: %s (%s probe)\n", def.Key(), plan.Kind)
	fmt.Printf("URL: %s\n", target.URL())
	headers := make([]string, 0, len(target.Headers))
	for name := range target.Headers {
		headers = append(headers, name)
	}
	sort.Strings(headers)
	for _, name := range headers {
		fmt.Printf("Header: %s: %s\n", name, target.Headers[name])
	}
	fmt.Printf("Thresholds: success %d, failure %d\n", target.SuccessThreshold, target.FailureThreshold)
	fmt.Printf("Timing: initial delay %ds, period %ds, timeout %ds\n",
		target.InitialDelaySeconds, target.PeriodSeconds, target.TimeoutSeconds)
	return nil
}
