package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#aad94c"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorError   = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#8a9199", Dark: "#565b66"}
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	walkingStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	idleStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	activeWalkStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	flashStyles = map[level]lipgloss.Style{
		levelSuccess: lipgloss.NewStyle().Foreground(colorSuccess),
		levelInfo:    lipgloss.NewStyle().Foreground(colorPrimary),
		levelWarning: lipgloss.NewStyle().Foreground(colorWarning),
		levelError:   lipgloss.NewStyle().Foreground(colorError).Bold(true),
	}
)
