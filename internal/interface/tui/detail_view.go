package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/neilberkman/cpl/internal/core/models"
)

func createViewport(p models.Pattern, width, height int) viewport.Model {
	vp := viewport.New(width, height-2)
	vp.SetContent(renderPattern(p, width))
	return vp
}

func renderPattern(p models.Pattern, width int) string {
	wrap := width - 2
	if wrap < 20 {
		wrap = 80
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Name) + " " + typeBadge(string(p.Type)) + "\n")
	b.WriteString(metaStyle.Render(fmt.Sprintf("%s | created %s", p.ID, humanize.Time(p.CreatedAt))) + "\n")
	b.WriteString(strings.Repeat("─", wrap) + "\n\n")

	section := func(label, body string) {
		if body == "" {
			return
		}
		b.WriteString(labelStyle.Render(label) + "\n")
		b.WriteString(wordwrap.String(body, wrap) + "\n\n")
	}

	section("Context", p.Context)
	section("Problem", p.Problem)
	section("Solution", p.Solution)
	section("Example", p.Example)
	section("Example Prompt", p.ExamplePrompt)
	section("Related", strings.Join(p.Related, ", "))
	section("Tags", strings.Join(p.Tags, ", "))
	section("Source Sessions", strings.Join(p.SourceSessions, "\n"))

	return b.String()
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = listView
		m.current = nil
		return m, nil
	case "c":
		if m.current == nil {
			return m, nil
		}
		text, what := copyTarget(*m.current)
		return m, copyText(m.copy, text, what)
	case "g":
		m.viewport.GotoTop()
		return m, nil
	case "G":
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) viewDetail() string {
	footer := "c: copy  j/k: scroll  g/G: top/bottom  esc: back  q: back"
	if m.status != "" {
		footer = statusStyle.Render(m.status) + "  " + helpStyle.Render(footer)
	} else {
		footer = helpStyle.Render(footer)
	}
	return m.viewport.View() + "\n" + footer
}
