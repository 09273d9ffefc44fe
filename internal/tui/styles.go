package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A78BFA")).
			MarginBottom(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	poolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60A5FA"))

	statusUndone     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	statusDoing      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	statusValidating = lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))
	statusDone       = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	statusFailed     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
)
