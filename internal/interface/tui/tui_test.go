package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/cpl/internal/core/models"
)

type staticCatalog []models.Pattern

func (c staticCatalog) List() ([]models.Pattern, error) { return c, nil }

var now = time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

func samplePatterns() []models.Pattern {
	return []models.Pattern{
		{ID: "11111111-aaaa", Name: "Table tests", Type: models.PatternTypeCode, Context: "Go tests", Solution: "Use cases", Tags: []string{"go"}, CreatedAt: now.Add(-30 * 24 * time.Hour)},
		{ID: "22222222-bbbb", Name: "Plan first", Type: models.PatternTypePrompt, Context: "Refactors", Solution: "Ask for a plan", ExamplePrompt: "Outline a plan before editing", CreatedAt: now.Add(-time.Hour)},
	}
}

func TestParseFilterQuery(t *testing.T) {
	q := ParseFilterQuery("retry type:CODE tag:go tag:http backoff", now)
	assert.Equal(t, "retry backoff", q.Keyword)
	assert.Equal(t, models.PatternTypeCode, q.Type)
	assert.Equal(t, []string{"go", "http"}, q.Tags)
	assert.False(t, q.HasAfter)

	q = ParseFilterQuery("after:2026-06-01", now)
	require.True(t, q.HasAfter)
	assert.Equal(t, 2026, q.After.Year())
	assert.Equal(t, time.June, q.After.Month())
	assert.Equal(t, 1, q.After.Day())

	q = ParseFilterQuery("after:yesterday", now)
	require.True(t, q.HasAfter)
	assert.True(t, q.After.Before(now))

	q = ParseFilterQuery("after:gibberish", now)
	assert.False(t, q.HasAfter)
}

func TestFilterQueryApply(t *testing.T) {
	patterns := samplePatterns()

	got := ParseFilterQuery("type:prompt", now).Apply(patterns)
	require.Len(t, got, 1)
	assert.Equal(t, "Plan first", got[0].Name)

	got = ParseFilterQuery("after:2026-06-01", now).Apply(patterns)
	require.Len(t, got, 1)
	assert.Equal(t, "Plan first", got[0].Name)

	got = ParseFilterQuery("", now).Apply(patterns)
	assert.Len(t, got, 2)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestModel_Flow(t *testing.T) {
	var copied string
	m := New(staticCatalog(samplePatterns()))
	m.now = func() time.Time { return now }
	m.copy = func(s string) error { copied = s; return nil }

	msg := m.Init()()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, msg)
	assert.Len(t, m.visible, 2)
	assert.Contains(t, m.View(), "Table tests")

	// open detail of the first pattern
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, detailView, m.mode)
	require.NotNil(t, m.current)
	assert.Equal(t, "Table tests", m.current.Name)
	assert.Contains(t, m.View(), "Use cases")

	// copy falls back to the solution
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, "Use cases", copied)
	assert.Contains(t, m.status, "solution")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, listView, m.mode)

	// filter down to the prompt pattern
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	require.Equal(t, filterView, m.mode)
	for _, r := range "type:prompt" {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, listView, m.mode)
	require.Len(t, m.visible, 1)

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	require.NotNil(t, cmd)
	_, _ = update(t, m, cmd())
	assert.Equal(t, "Outline a plan before editing", copied)
}

func TestModel_CopyFailure(t *testing.T) {
	m := New(staticCatalog(samplePatterns()))
	m.copy = func(string) error { return errors.New("no clipboard") }
	m, _ = update(t, m, m.Init()())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.status, "no clipboard")
}

func TestModel_LoadError(t *testing.T) {
	m := New(staticCatalog(nil))
	m, _ = update(t, m, errMsg{errors.New("broken catalog")})
	assert.Contains(t, m.View(), "broken catalog")
}
