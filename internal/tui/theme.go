package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Colors matching gum's aesthetic
var (
	ColorPrimary   = lipgloss.Color("6")   // Teal
	ColorSecondary = lipgloss.Color("14")  // Bright cyan
	ColorMuted     = lipgloss.Color("241") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorFailure   = lipgloss.Color("203") // Red
)

// Banner returns the styled app banner
func Banner() string {
	title := lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorSecondary).
		Padding(0, 3).
		Render("a g e n t b o o t")

	tagline := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true).
		Render(" Workspace agents, started in order and checked for life.")

	return title + "\n" + tagline + "\n"
}

// Theme returns a gum-inspired theme for forms
func Theme() *huh.Theme {
	t := huh.ThemeCharm()

	t.Focused.Title = t.Focused.Title.
		Foreground(ColorPrimary).
		Bold(true)

	t.Focused.SelectedOption = t.Focused.SelectedOption.
		Foreground(ColorSuccess)

	t.Focused.Description = t.Focused.Description.
		Foreground(ColorMuted)

	// Blurred state - more subtle
	t.Blurred.Title = t.Blurred.Title.
		Foreground(ColorMuted)

	return t
}

// HeaderStyle returns styled header for the dashboard
func HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted).
		Padding(0, 1).
		MarginBottom(1)
}

// TitleStyle returns style for section titles
func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)
}

// SuccessStyle returns style for success messages
func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(ColorSuccess)
}

// FailureStyle returns style for failed launches
func FailureStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(ColorFailure).
		Bold(true)
}

// MutedStyle returns style for muted/secondary text
func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(ColorMuted)
}
