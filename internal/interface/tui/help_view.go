package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = listView
	return m, nil
}

func (m Model) viewHelp() string {
	help := `
Pattern Browser - Help
══════════════════════

PATTERN LIST
────────────
  ↑/↓, j/k     Navigate patterns
  Enter        View pattern details
  /            Filter (keywords, type:code, tag:go, after:yesterday)
  c            Copy example prompt (or solution) to clipboard
  r            Reload catalog
  ?            Show this help
  q            Quit

PATTERN DETAIL
──────────────
  c            Copy example prompt (or solution)
  j/k          Scroll line by line
  g/G          Jump to top/bottom
  esc, q       Back to pattern list

Press any key to return to the pattern list
`

	return helpStyle.Render(help)
}
