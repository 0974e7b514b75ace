package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/cpl/internal/core/models"
)

type errMsg struct {
	err error
}

type patternsLoadedMsg struct {
	patterns []models.Pattern
}

type statusMsg string

func loadPatterns(store Catalog) tea.Cmd {
	return func() tea.Msg {
		patterns, err := store.List()
		if err != nil {
			return errMsg{err}
		}
		return patternsLoadedMsg{patterns: patterns}
	}
}

func copyText(write func(string) error, text, what string) tea.Cmd {
	return func() tea.Msg {
		if err := write(text); err != nil {
			return statusMsg("Copy failed: " + err.Error())
		}
		return statusMsg("Copied " + what + " to clipboard")
	}
}
