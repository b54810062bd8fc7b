package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/stepnotify/pkg/pattern"
)

// Terminal renders patterns as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width}
}

// Render formats all patterns for terminal display.
func (t *Terminal) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		s := t.renderOne(p)
		if s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

func (t *Terminal) renderOne(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return t.renderSummary(v)
	case *pattern.TestTable:
		return t.renderTestTable(v)
	default:
		return ""
	}
}

func (t *Terminal) renderSummary(s *pattern.Summary) string {
	var sb strings.Builder
	if s.Label != "" {
		style := t.theme.Success
		if s.Failed {
			style = t.theme.Error
		}
		sb.WriteString(style.Inherit(t.theme.Bold).Render(s.Label))
		sb.WriteString("\n")
	}
	for _, m := range s.Metrics {
		sb.WriteString("  ")
		icon, style := t.iconStyle(m.Kind)
		sb.WriteString(style.Render(icon + " " + m.Label + ": " + m.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderTestTable(tt *pattern.TestTable) string {
	if len(tt.Results) == 0 && tt.Details == "" {
		return ""
	}
	var sb strings.Builder
	if tt.Label != "" {
		_, style := t.statusIconStyle(tt.Status)
		sb.WriteString(style.Inherit(t.theme.Bold).Render(tt.Label))
		sb.WriteString("\n")
	}
	if tt.Details != "" {
		for _, line := range strings.Split(tt.Details, "\n") {
			sb.WriteString("    ")
			sb.WriteString(t.theme.Error.Render(line))
			sb.WriteString("\n")
		}
	}

	// Name column fits the width left after icon, indent and trace.
	maxName := 0
	for _, r := range tt.Results {
		if w := runewidth.StringWidth(r.Name); w > maxName {
			maxName = w
		}
	}
	if limit := t.width / 2; maxName > limit {
		maxName = limit
	}

	for _, r := range tt.Results {
		sb.WriteString("  ")
		icon, style := t.statusIconStyle(r.Status)
		sb.WriteString(style.Render(icon + " "))

		name := runewidth.Truncate(r.Name, maxName, "...")
		sb.WriteString(padRight(name, maxName))

		if r.Trace != "" {
			sb.WriteString("  ")
			sb.WriteString(t.theme.Muted.Render(r.Trace))
		}

		if r.Details != "" {
			for _, line := range strings.Split(r.Details, "\n") {
				sb.WriteString("\n      ")
				sb.WriteString(t.theme.Muted.Render(line))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) iconStyle(kind string) (string, lipgloss.Style) {
	switch kind {
	case "success":
		return t.theme.Icons.Finish, t.theme.Success
	case "error":
		return t.theme.Icons.Fail, t.theme.Error
	case "warning":
		return t.theme.Icons.Warn, t.theme.Warning
	default:
		return t.theme.Icons.Info, t.theme.Primary
	}
}

func (t *Terminal) statusIconStyle(status string) (string, lipgloss.Style) {
	switch status {
	case pattern.StatusPass:
		return t.theme.Icons.Finish, t.theme.Success
	case pattern.StatusFail:
		return t.theme.Icons.Fail, t.theme.Error
	case pattern.StatusIgnore:
		return t.theme.Icons.Ignore, t.theme.Warning
	case pattern.StatusOpen:
		return t.theme.Icons.Open, t.theme.Warning
	default:
		return t.theme.Icons.Info, t.theme.Muted
	}
}

// padRight pads s to width terminal cells.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}
