package tui

import "github.com/charmbracelet/lipgloss"

// Global styles used across views
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(lipgloss.Color("170")).
				Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("cyan")).
			Bold(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246")) // Lighter gray that works better in dark terminals

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("green"))

	filterPromptStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// per pattern type
	typeStyles = map[string]lipgloss.Style{
		"prompt":   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		"solution": lipgloss.NewStyle().Foreground(lipgloss.Color("120")),
		"code":     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
)

func typeBadge(t string) string {
	style, ok := typeStyles[t]
	if !ok {
		style = metaStyle
	}
	return style.Render("[" + t + "]")
}
