package render

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and icons for terminal rendering.
type Theme struct {
	Name    string
	Primary lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons maps notification outcomes to glyphs.
type ThemeIcons struct {
	Finish string
	Fail   string
	Ignore string
	Open   string
	Warn   string
	Info   string
}

var unicodeIcons = ThemeIcons{
	Finish: "✓",
	Fail:   "✗",
	Ignore: "○",
	Open:   "▸",
	Warn:   "⚠",
	Info:   "●",
}

func colored(name string, primary, success, warning, errColor, muted string, icons ThemeIcons) Theme {
	return Theme{
		Name:    name,
		Primary: lipgloss.NewStyle().Foreground(lipgloss.Color(primary)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(success)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(warning)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(errColor)),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(muted)),
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons:   icons,
	}
}

// DefaultTheme returns a vibrant color theme.
func DefaultTheme() Theme {
	return colored("default", "39", "34", "214", "196", "242", unicodeIcons)
}

// OrcaTheme returns a muted, professional theme.
func OrcaTheme() Theme {
	icons := unicodeIcons
	icons.Warn = "!"
	icons.Info = "·"
	return colored("orca", "75", "108", "179", "167", "245", icons)
}

// MonoTheme returns a monochrome ASCII theme.
func MonoTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Name:    "mono",
		Primary: plain,
		Success: plain,
		Warning: plain,
		Error:   plain,
		Muted:   plain,
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Finish: "+",
			Fail:   "x",
			Ignore: "-",
			Open:   ">",
			Warn:   "!",
			Info:   "*",
		},
	}
}

var themes = map[string]func() Theme{
	"default": DefaultTheme,
	"orca":    OrcaTheme,
	"mono":    MonoTheme,
}

// ThemeNames lists the selectable themes, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	if fn, ok := themes[name]; ok {
		return fn()
	}
	return DefaultTheme()
}
