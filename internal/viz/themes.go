package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colour scheme of the live view.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeDeepSpace = Theme{
		Name:    "deep-space",
		Primary: lipgloss.Color("#7aa2f7"),
		Accent:  lipgloss.Color("#e0af68"),
		Text:    lipgloss.Color("#c0caf5"),
		Muted:   lipgloss.Color("#565f89"),
		Success: lipgloss.Color("#9ece6a"),
		Warning: lipgloss.Color("#ff9e64"),
		Error:   lipgloss.Color("#f7768e"),
	}

	ThemeSolar = Theme{
		Name:    "solar",
		Primary: lipgloss.Color("#ffb000"), // sodium
		Accent:  lipgloss.Color("#ff5f00"),
		Text:    lipgloss.Color("#fff5e0"),
		Muted:   lipgloss.Color("#8b6b4c"),
		Success: lipgloss.Color("#5fd068"),
		Warning: lipgloss.Color("#ffc048"),
		Error:   lipgloss.Color("#ff4757"),
	}

	ThemeMono = Theme{
		Name:    "mono",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#dddddd"),
		Muted:   lipgloss.Color("#777777"),
		Success: lipgloss.Color("#00ff00"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{ThemeDeepSpace, ThemeSolar, ThemeMono}
)

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func nextTheme(t Theme) Theme {
	for i, c := range Themes {
		if c.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

type styles struct {
	canvas, panel, header, label, value, selected, graph, help lipgloss.Style
	running, paused, warning                                   lipgloss.Style
}

func (t Theme) styles() styles {
	return styles{
		canvas:   lipgloss.NewStyle().Padding(1, 2).Foreground(t.Primary),
		panel:    lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Muted).Padding(1, 2).Width(46),
		header:   lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:    lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:    lipgloss.NewStyle().Foreground(t.Text),
		selected: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		graph:    lipgloss.NewStyle().Foreground(t.Success).Padding(1, 0),
		help:     lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		running:  lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		paused:   lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		warning:  lipgloss.NewStyle().Foreground(t.Error),
	}
}
