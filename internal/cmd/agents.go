package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tuannvm/agentboot/internal/agent"
	"github.com/tuannvm/agentboot/internal/bootstrap"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Inspect agent definitions",
	Long:  `List and show the agent definitions known to agentboot.`,
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered agents",
	Long: `List every registered agent with its version, dependencies and probe kind.

Example:
  agentboot agents list`,
	Args: cobra.NoArgs,
	RunE: agentsListCommand,
}

var agentsShowCmd = &cobra.Command{
	Use:   "show <agent>",
	Short: "Show an agent definition",
	Long: `Show the definition of one agent: script, properties and launch plan.

Example:
  agentboot agents show org.eclipse.che.terminal
  agentboot agents show org.eclipse.che.exec:1.0.0`,
	Args: cobra.ExactArgs(1),
	RunE: agentsShowCommand,
}

func init() {
	rootCmd.AddCommand(agentsCmd)
	agentsCmd.AddCommand(agentsListCmd)
	agentsCmd.AddCommand(agentsShowCmd)
}

func agentsListCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "AGENT\tVERSION\tPROBE\tDEPENDS ON")

	for _, def := range reg.Agents() {
		deps := "-"
		if len(def.Dependencies) > 0 {
			deps = strings.Join(def.Dependencies, ", ")
		}
		kind := def.Property(agent.PropertyProbeKind, "-")
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", def.ID, def.Key().Version, kind, deps)
	}

	_ = w.Flush()
	return nil
}

func agentsShowCommand(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("%w (use 'agentboot agents list' to see available agents)", err)
	}
	plan, err := bootstrap.PlanFor(cfg, def)
	if err != nil {
		return err
	}

	fmt.Printf("Agent: %s\n", def.Key())
	fmt.Printf("Name: %s\n", def.DisplayName())
	if len(def.Dependencies) > 0 {
		fmt.Printf("Depends on: %s\n", strings.Join(def.Dependencies, ", "))
	}
	if versions := reg.Versions(def.ID); len(versions) > 1 {
		fmt.Printf("Versions: %s\n", strings.Join(versions, ", "))
	}
	fmt.Printf("Process: %s\n", plan.Options.ProcessName)
	if plan.Probed() {
		fmt.Printf("Probe: %s on %s\n", plan.Kind, plan.Options.PortKey)
	} else {
		fmt.Println("Probe: none")
	}

	if len(def.Properties) > 0 {
		fmt.Println()
		fmt.Println("Properties:")
		names := make([]string, 0, len(def.Properties))
		for name := range def.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s = %s\n", name, def.Properties[name])
		}
	}

	fmt.Println()
	fmt.Println("Script:")
	fmt.Println("-------")
	fmt.Println(def.Script)

	return nil
}
