package tui

import (
	"strings"
	"testing"
)

func TestTheme(t *testing.T) {
	theme := Theme()
	if theme == nil {
		t.Error("Theme() returned nil")
	}
}

func TestStylesRender(t *testing.T) {
	styles := map[string]func() string{
		"HeaderStyle":  func() string { return HeaderStyle().Render("test") },
		"TitleStyle":   func() string { return TitleStyle().Render("test") },
		"SuccessStyle": func() string { return SuccessStyle().Render("test") },
		"FailureStyle": func() string { return FailureStyle().Render("test") },
		"MutedStyle":   func() string { return MutedStyle().Render("test") },
	}
	for name, render := range styles {
		if !strings.Contains(render(), "test") {
			t.Errorf("%s() lost its content", name)
		}
	}
}

func TestBanner(t *testing.T) {
	banner := Banner()
	if !strings.Contains(banner, "a g e n t b o o t") {
		t.Errorf("Banner() = %q, want the product name", banner)
	}
	if !strings.Contains(banner, "Workspace agents") {
		t.Error("Banner() is missing the tagline")
	}
}
