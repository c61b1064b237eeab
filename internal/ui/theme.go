package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/i474232898/cosmic-weather/internal/prefs"
)

// palette is the set of colors for one theme.
type palette struct {
	Text    string
	Muted   string
	Accent  string
	Border  string
	Danger  string
	Warning string
}

var palettes = map[prefs.Theme]palette{
	prefs.ThemeDark: {
		Text:    "#e5e7eb",
		Muted:   "#9ca3af",
		Accent:  "#93c5fd",
		Border:  "#4b5563",
		Danger:  "#f87171",
		Warning: "#facc15",
	},
	prefs.ThemeLight: {
		Text:    "#111827",
		Muted:   "#6b7280",
		Accent:  "#1d4ed8",
		Border:  "#d1d5db",
		Danger:  "#b91c1c",
		Warning: "#a16207",
	},
}

// styles are the lipgloss styles derived from a palette.
type styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Text    lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Danger  lipgloss.Style
	Star    lipgloss.Style
	Panel   lipgloss.Style
}

func stylesFor(t prefs.Theme) styles {
	p, ok := palettes[t]
	if !ok {
		p = palettes[prefs.ThemeDark]
	}
	return styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Accent)).
			Bold(true),
		Heading: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Text)).
			Bold(true),
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Text)),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Muted)),
		Accent: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Accent)),
		Danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Danger)).
			Bold(true),
		Star: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Warning)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Border)).
			Padding(0, 1),
	}
}
