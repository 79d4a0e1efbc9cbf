// Package styles holds the lipgloss styling for the TUI, grouped into
// switchable themes.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme bundles every style the views render with.
type Theme struct {
	Accent lipgloss.Color

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Dim      lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Info     lipgloss.Style

	SelectedItem lipgloss.Style
	NormalItem   lipgloss.Style

	ActiveBorder   lipgloss.Style
	InactiveBorder lipgloss.Style

	StatusBar lipgloss.Style
	Toast     lipgloss.Style
	Help      lipgloss.Style
}

// New returns the theme for the given name, defaulting to "dark".
func New(name string) Theme {
	switch name {
	case "light":
		return lightTheme()
	default:
		return darkTheme()
	}
}

func darkTheme() Theme {
	var (
		accent    = lipgloss.Color("#E94560")
		slate     = lipgloss.Color("#374151")
		dimGray   = lipgloss.Color("#6B7280")
		lightGray = lipgloss.Color("#9CA3AF")
		white     = lipgloss.Color("#F9FAFB")
		green     = lipgloss.Color("#10B981")
		red       = lipgloss.Color("#EF4444")
		blue      = lipgloss.Color("#3B82F6")
	)

	return Theme{
		Accent: accent,

		Title:    lipgloss.NewStyle().Foreground(white).Bold(true),
		Subtitle: lipgloss.NewStyle().Foreground(lightGray),
		Dim:      lipgloss.NewStyle().Foreground(dimGray),
		Error:    lipgloss.NewStyle().Foreground(red),
		Success:  lipgloss.NewStyle().Foreground(green),
		Info:     lipgloss.NewStyle().Foreground(blue),

		SelectedItem: lipgloss.NewStyle().Foreground(white).Background(slate).Padding(0, 1),
		NormalItem:   lipgloss.NewStyle().Foreground(lightGray).Padding(0, 1),

		ActiveBorder:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent),
		InactiveBorder: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(dimGray),

		StatusBar: lipgloss.NewStyle().Foreground(lightGray).Padding(0, 1),
		Toast:     lipgloss.NewStyle().Padding(0, 1).Bold(true),
		Help:      lipgloss.NewStyle().Foreground(dimGray).Padding(0, 1),
	}
}

func lightTheme() Theme {
	var (
		accent   = lipgloss.Color("#C2185B")
		gray     = lipgloss.Color("#4B5563")
		dimGray  = lipgloss.Color("#9CA3AF")
		ink      = lipgloss.Color("#111827")
		paleBlue = lipgloss.Color("#DBEAFE")
		green    = lipgloss.Color("#047857")
		red      = lipgloss.Color("#B91C1C")
		blue     = lipgloss.Color("#1D4ED8")
	)

	return Theme{
		Accent: accent,

		Title:    lipgloss.NewStyle().Foreground(ink).Bold(true),
		Subtitle: lipgloss.NewStyle().Foreground(gray),
		Dim:      lipgloss.NewStyle().Foreground(dimGray),
		Error:    lipgloss.NewStyle().Foreground(red),
		Success:  lipgloss.NewStyle().Foreground(green),
		Info:     lipgloss.NewStyle().Foreground(blue),

		SelectedItem: lipgloss.NewStyle().Foreground(ink).Background(paleBlue).Padding(0, 1),
		NormalItem:   lipgloss.NewStyle().Foreground(gray).Padding(0, 1),

		ActiveBorder:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent),
		InactiveBorder: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(dimGray),

		StatusBar: lipgloss.NewStyle().Foreground(gray).Padding(0, 1),
		Toast:     lipgloss.NewStyle().Padding(0, 1).Bold(true),
		Help:      lipgloss.NewStyle().Foreground(dimGray).Padding(0, 1),
	}
}
