package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/tuannvm/agentboot/internal/agent"
	"github.com/tuannvm/agentboot/internal/bootstrap"
	"github.com/tuannvm/agentboot/internal/config"
	"github.com/tuannvm/agentboot/internal/launcher"
)

// DashboardResult contains the user's selections from the dashboard
type DashboardResult struct {
	Agents      []string
	AllAgents   bool
	Execution   string // "parallel", "sequential"
	DryRun      bool
	WorkspaceID string
	Verbosity   string // "normal", "verbose", "quiet"
	Cancelled   bool
}

// DashboardOptions configures the dashboard
type DashboardOptions struct {
	Config     *config.Config
	Accessible bool
}

// RunDashboard displays the interactive single-screen form
func RunDashboard(opts DashboardOptions) (*DashboardResult, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	// Auto-enable accessible mode for non-terminals
	accessible := opts.Accessible || !isTerminal()

	allIDs := reg.IDs()
	result := &DashboardResult{
		Agents:      allIDs,
		Execution:   config.ExecutionParallel,
		WorkspaceID: cfg.Machine.WorkspaceID,
		Verbosity:   config.VerbosityNormal,
	}
	action := "run"

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(Banner())

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Agents").
				Description("Space=toggle • dependencies are added automatically").
				Options(agentOptions(reg, result.Agents)...).
				Height(10).
				Value(&result.Agents),

			huh.NewSelect[string]().
				Title("Execution").
				Options(selectOptions(config.ExecutionOptions)...).
				Value(&result.Execution),

			huh.NewInput().
				Title("Workspace").
				Placeholder(cfg.Machine.WorkspaceID).
				Value(&result.WorkspaceID),

			huh.NewConfirm().
				Title("Dry run").
				Description("Resolve probes without starting anything").
				Value(&result.DryRun),

			huh.NewSelect[string]().
				Title("Verbosity").
				Options(selectOptions(config.VerbosityOptions)...).
				Value(&result.Verbosity),

			huh.NewSelect[string]().
				Title("Action").
				Options(
					huh.NewOption("▶ Launch", "run"),
					huh.NewOption("✕ Cancel", "cancel"),
				).
				Value(&action),
		),
	).WithTheme(Theme()).WithAccessible(accessible)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			result.Cancelled = true
			return result, nil
		}
		return nil, fmt.Errorf("form error: %w", err)
	}

	if action == "cancel" {
		result.Cancelled = true
		return result, nil
	}
	if len(result.Agents) == 0 {
		return nil, fmt.Errorf("no agents selected")
	}

	result.AllAgents = len(result.Agents) == len(allIDs)
	return result, nil
}

// RunOptions turns the selections into bootstrap options.
func (r *DashboardResult) RunOptions(cfg *config.Config) config.RunOptions {
	opts := config.DefaultRunOptions(cfg)
	if !r.AllAgents {
		opts.Agents = append([]string(nil), r.Agents...)
	}
	if r.WorkspaceID != "" {
		opts.WorkspaceID = r.WorkspaceID
	}
	opts.Sequential = r.Execution == config.ExecutionSequential
	opts.DryRun = r.DryRun
	if r.Verbosity != "" {
		opts.Verbosity = r.Verbosity
	}
	return opts
}

// RenderResults formats a bootstrap run as a styled report.
func RenderResults(results []bootstrap.Result) string {
	var b strings.Builder
	b.WriteString(HeaderStyle().Render("Launch report"))
	b.WriteString("\n")

	succeeded := 0
	for _, r := range results {
		name := r.Plan.Agent.Compact()
		switch {
		case r.Err != nil:
			b.WriteString(FailureStyle().Render("✗ " + name))
			b.WriteString(MutedStyle().Render(fmt.Sprintf("  %s: %v", r.Attempt.State, r.Err)))
		case r.Attempt.State == launcher.StateNotStarted:
			succeeded++
			b.WriteString(SuccessStyle().Render("○ " + name))
			b.WriteString(MutedStyle().Render("  " + describeTarget(r)))
		default:
			succeeded++
			b.WriteString(SuccessStyle().Render("✓ " + name))
			b.WriteString(MutedStyle().Render(fmt.Sprintf("  %s, %d probe(s)", r.Attempt.State, r.Attempt.Probes)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(TitleStyle().Render(fmt.Sprintf("%d/%d agents succeeded", succeeded, len(results))))
	b.WriteString("\n")
	return b.String()
}

// describeTarget names the liveness URL of a planned agent.
func describeTarget(r bootstrap.Result) string {
	if r.Probe == nil {
		return "not probed"
	}
	return r.Probe.URL()
}

func agentOptions(reg *agent.Registry, selected []string) []huh.Option[string] {
	chosen := make(map[string]bool, len(selected))
	for _, id := range selected {
		chosen[id] = true
	}

	var opts []huh.Option[string]
	for _, id := range reg.IDs() {
		label := id
		if def, err := reg.Get(agent.NewKey(id, "")); err == nil {
			if name := def.DisplayName(); name != id {
				label = fmt.Sprintf("%s (%s)", name, id)
			}
			if len(def.Dependencies) > 0 {
				label += " ← " + strings.Join(def.Dependencies, ", ")
			}
		}
		opts = append(opts, huh.NewOption(label, id).Selected(chosen[id]))
	}
	return opts
}

func selectOptions(options []config.Option) []huh.Option[string] {
	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o.Label+" - "+o.Description, o.Value)
	}
	return opts
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
