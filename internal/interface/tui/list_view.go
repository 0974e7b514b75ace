package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/cpl/internal/core/catalog"
	"github.com/neilberkman/cpl/internal/core/models"
)

type patternListItem struct {
	pattern models.Pattern
}

func (i patternListItem) FilterValue() string {
	return i.pattern.Name + " " + i.pattern.Context
}

func (i patternListItem) Title() string {
	return i.pattern.Name
}

func (i patternListItem) Description() string {
	desc := fmt.Sprintf("%s %s | %s", catalog.ShortID(i.pattern.ID), typeBadge(string(i.pattern.Type)), humanize.Time(i.pattern.CreatedAt))
	if len(i.pattern.Tags) > 0 {
		desc += " | " + strings.Join(i.pattern.Tags, ", ")
	}
	return desc
}

type patternDelegate struct {
	list.DefaultDelegate
}

func (d patternDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(patternListItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	title := p.Title()
	desc := p.Description()
	if index == m.Index() {
		title = selectedItemStyle.Render(title)
		desc = selectedItemStyle.Faint(true).Render(desc)
	} else {
		title = itemStyle.Render(title)
		desc = itemStyle.Render(desc)
	}

	_, _ = fmt.Fprintf(w, "%s\n%s", title, desc)
}

func createPatternList(patterns []models.Pattern, width, height int) list.Model {
	items := make([]list.Item, len(patterns))
	for i, p := range patterns {
		items[i] = patternListItem{pattern: p}
	}

	delegate := patternDelegate{DefaultDelegate: list.NewDefaultDelegate()}

	listHeight := height - 2 // filter line + help line
	if listHeight < 0 {
		listHeight = 0
	}
	l := list.New(items, delegate, width, listHeight)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false) // filtering goes through ParseFilterQuery

	return l
}

func (m Model) selected() (models.Pattern, bool) {
	item, ok := m.list.SelectedItem().(patternListItem)
	if !ok {
		return models.Pattern{}, false
	}
	return item.pattern, true
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		p, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.current = &p
		m.viewport = createViewport(p, m.width, m.height)
		m.mode = detailView
		m.status = ""
		return m, nil

	case "/":
		m.mode = filterView
		m.filter.Focus()
		return m, textinput.Blink

	case "c":
		p, ok := m.selected()
		if !ok {
			return m, nil
		}
		text, what := copyTarget(p)
		return m, copyText(m.copy, text, what)

	case "r":
		return m, loadPatterns(m.store)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = listView
		m.filter.Blur()
		return m, nil
	case "esc":
		m.filter.SetValue("")
		m.filter.Blur()
		m.mode = listView
		m.applyFilter()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m Model) viewList() string {
	var b strings.Builder

	if m.mode == filterView || m.filter.Value() != "" {
		b.WriteString(filterPromptStyle.Render(m.filter.View()) + "\n")
	} else {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Patterns (%d)", len(m.patterns))) + "\n")
	}

	if len(m.visible) == 0 {
		if len(m.patterns) == 0 {
			b.WriteString(metaStyle.Render("  No patterns yet. Run 'cpl analyze' or 'cpl add'.") + "\n")
		} else {
			b.WriteString(metaStyle.Render("  No patterns match the filter.") + "\n")
		}
	} else {
		b.WriteString(m.list.View() + "\n")
	}

	footer := "enter: view  /: filter  c: copy  r: reload  ?: help  q: quit"
	if m.status != "" {
		footer = statusStyle.Render(m.status) + "  " + helpStyle.Render(footer)
	} else {
		footer = helpStyle.Render(footer)
	}
	b.WriteString(footer)
	return b.String()
}
