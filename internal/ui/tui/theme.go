package tui

import "github.com/charmbracelet/lipgloss"

type theme struct {
	header      lipgloss.Style
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	panel       lipgloss.Style
	selected    lipgloss.Style
	muted       lipgloss.Style
	unread      lipgloss.Style
	errorText   lipgloss.Style
	mine        lipgloss.Style
	theirs      lipgloss.Style
	footer      lipgloss.Style
}

func newTheme() theme {
	green := lipgloss.Color("#2ec27e")
	blue := lipgloss.Color("#62a0ea")
	red := lipgloss.Color("#e01b24")
	muted := lipgloss.Color("#9a9996")

	return theme{
		header:      lipgloss.NewStyle().Bold(true).Foreground(green).Padding(0, 1),
		tabActive:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(blue).Padding(0, 1),
		tabInactive: lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		panel:       lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(blue).Padding(0, 1),
		selected:    lipgloss.NewStyle().Bold(true).Foreground(green),
		muted:       lipgloss.NewStyle().Foreground(muted),
		unread:      lipgloss.NewStyle().Bold(true).Foreground(blue),
		errorText:   lipgloss.NewStyle().Bold(true).Foreground(red),
		mine:        lipgloss.NewStyle().Foreground(green),
		theirs:      lipgloss.NewStyle().Foreground(blue),
		footer:      lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
	}
}
