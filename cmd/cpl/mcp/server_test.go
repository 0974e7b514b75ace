package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/cpl/internal/core/catalog"
	"github.com/neilberkman/cpl/internal/core/models"
)

func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	ids := []string{
		"aaaa1111-0000-4000-8000-000000000001",
		"aaaa2222-0000-4000-8000-000000000002",
		"bbbb3333-0000-4000-8000-000000000003",
	}
	next := 0
	store := catalog.New(filepath.Join(t.TempDir(), "patterns.yaml"),
		catalog.WithClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }),
		catalog.WithIDGenerator(func() string { id := ids[next]; next++; return id }),
	)

	inputs := []models.PatternInput{
		{Name: "Table tests", Type: models.PatternTypeCode, Context: "Go tests", Solution: "Slice of cases", Tags: []string{"go", "testing"}},
		{Name: "Ask for a plan", Type: models.PatternTypePrompt, Context: "Large refactors", Solution: "Request a plan first", Tags: []string{"workflow"}},
		{Name: "Retry", Type: models.PatternTypeSolution, Context: "Flaky network", Solution: "Backoff with jitter", Tags: []string{"go"}},
	}
	for _, in := range inputs {
		_, err := store.Create(in)
		require.NoError(t, err)
	}
	return store
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func TestListPatterns(t *testing.T) {
	store := newTestStore(t)
	handler := makeListPatternsHandler(store)

	tests := []struct {
		name string
		args map[string]any
		want []string
	}{
		{"all", map[string]any{}, []string{"Table tests", "Ask for a plan", "Retry"}},
		{"by type", map[string]any{"type": "prompt"}, []string{"Ask for a plan"}},
		{"by tags", map[string]any{"tags": "go"}, []string{"Table tests", "Retry"}},
		{"all tags required", map[string]any{"tags": "go, testing"}, []string{"Table tests"}},
		{"keyword", map[string]any{"keyword": "JITTER"}, []string{"Retry"}},
		{"limit", map[string]any{"limit": float64(1)}, []string{"Table tests"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, handler, tt.args)
			require.False(t, isErr, text)

			var out struct {
				Patterns []PatternSummary `json:"patterns"`
				Total    int              `json:"total"`
			}
			require.NoError(t, json.Unmarshal([]byte(text), &out))
			var names []string
			for _, p := range out.Patterns {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, len(tt.want), out.Total)
		})
	}

	text, isErr := call(t, handler, map[string]any{"type": "recipe"})
	assert.True(t, isErr)
	assert.Contains(t, text, "invalid type")
}

func TestGetPattern(t *testing.T) {
	store := newTestStore(t)
	handler := makeGetPatternHandler(store)

	text, isErr := call(t, handler, map[string]any{"identifier": "bbbb"})
	require.False(t, isErr, text)
	var p models.Pattern
	require.NoError(t, json.Unmarshal([]byte(text), &p))
	assert.Equal(t, "Retry", p.Name)

	text, isErr = call(t, handler, map[string]any{"identifier": "Ask for a plan"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Request a plan first")

	text, isErr = call(t, handler, map[string]any{"identifier": "aaaa"})
	assert.True(t, isErr)
	assert.Contains(t, text, "aaaa1111")
	assert.Contains(t, text, "aaaa2222")

	text, isErr = call(t, handler, map[string]any{"identifier": "missing"})
	assert.True(t, isErr)
	assert.Contains(t, text, "not found")

	_, isErr = call(t, handler, map[string]any{})
	assert.True(t, isErr)
}

func TestSearchPatterns(t *testing.T) {
	store := newTestStore(t)
	handler := makeSearchPatternsHandler(store)

	text, isErr := call(t, handler, map[string]any{"query": "go"})
	require.False(t, isErr, text)

	var out struct {
		Matches []SearchMatch `json:"matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out.Matches, 2)
	assert.Equal(t, "Table tests", out.Matches[0].Name)
	assert.Contains(t, out.Matches[0].MatchedFields, "tags")
	assert.Equal(t, "aaaa1111", out.Matches[0].ShortID)
}
