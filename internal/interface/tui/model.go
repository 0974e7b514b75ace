// Package tui is the interactive pattern browser.
package tui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/cpl/internal/core/models"
)

type viewMode int

const (
	listView viewMode = iota
	detailView
	filterView
	helpView
)

// Catalog is the read side of the pattern store
type Catalog interface {
	List() ([]models.Pattern, error)
}

type Model struct {
	store    Catalog
	mode     viewMode
	list     list.Model
	viewport viewport.Model
	filter   textinput.Model
	width    int
	height   int
	err      error
	status   string

	patterns []models.Pattern // full catalog
	visible  []models.Pattern // after filtering
	current  *models.Pattern

	copy func(string) error
	now  func() time.Time
}

func New(store Catalog) Model {
	ti := textinput.New()
	ti.Placeholder = "keyword type:code tag:go after:last-week"
	ti.Prompt = "/ "
	ti.CharLimit = 200

	return Model{
		store:  store,
		mode:   listView,
		list:   createPatternList(nil, 0, 0),
		filter: ti,
		copy:   clipboard.WriteAll,
		now:    time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return loadPatterns(m.store)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyFilter()
		if m.current != nil {
			m.viewport = createViewport(*m.current, m.width, m.height)
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == filterView {
			return m.updateFilter(msg)
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.mode == listView {
				return m, tea.Quit
			}
			m.mode = listView
			return m, nil
		case "?":
			m.mode = helpView
			return m, nil
		}

		switch m.mode {
		case listView:
			return m.updateList(msg)
		case detailView:
			return m.updateDetail(msg)
		case helpView:
			return m.updateHelp(msg)
		}

	case patternsLoadedMsg:
		m.patterns = msg.patterns
		m.applyFilter()
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit"
	}

	switch m.mode {
	case listView, filterView:
		return m.viewList()
	case detailView:
		return m.viewDetail()
	case helpView:
		return m.viewHelp()
	}

	return ""
}

// applyFilter rebuilds the list from the current filter text
func (m *Model) applyFilter() {
	q := ParseFilterQuery(m.filter.Value(), m.now())
	m.visible = q.Apply(m.patterns)
	m.list = createPatternList(m.visible, m.width, m.height)
}

// copyTarget is the example prompt when present, else the solution
func copyTarget(p models.Pattern) (string, string) {
	if p.ExamplePrompt != "" {
		return p.ExamplePrompt, "example prompt"
	}
	return p.Solution, "solution"
}
