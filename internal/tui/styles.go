package tui

import "github.com/charmbracelet/lipgloss"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	danger    = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F6D"}
	muted     = lipgloss.AdaptiveColor{Light: "#8A8FA3", Dark: "#8A8FA3"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Padding(0, 2).
			MarginRight(1)

	cardTitleStyle = lipgloss.NewStyle().Foreground(muted)
	errorStyle     = lipgloss.NewStyle().Foreground(danger).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(muted)
	upStyle        = lipgloss.NewStyle().Foreground(special)
	downStyle      = lipgloss.NewStyle().Foreground(danger)
	selectedStyle  = lipgloss.NewStyle().Bold(true).Background(subtle)
)
