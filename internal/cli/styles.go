package cli

import "github.com/charmbracelet/lipgloss"

// Status styles for list and tools output.
var (
	freshStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5AF78E"))
	staleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D"))
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5C57"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)
