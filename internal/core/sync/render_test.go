package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neilberkman/cpl/internal/core/models"
)

func TestRenderPatternDetail_Empty(t *testing.T) {
	assert.Equal(t, EmptyPlaceholder, RenderPatternDetail(nil))
}

func TestRenderPatternDetail(t *testing.T) {
	patterns := []models.Pattern{
		{
			Name:          "Retry with backoff",
			Type:          models.PatternTypeSolution,
			Context:       "Flaky calls",
			Problem:       "Intermittent 503s",
			Solution:      "Exponential backoff",
			Example:       "retry.Do(fn)",
			ExamplePrompt: "Add retries",
			Related:       []string{"Circuit breaker", "Timeouts"},
			Tags:          []string{"http", "resilience"},
		},
		{
			Name:     "Minimal",
			Type:     models.PatternTypeCode,
			Context:  "c",
			Solution: "s",
		},
	}

	want := "### Retry with backoff\n" +
		"**Type**: solution\n" +
		"**Context**: Flaky calls\n" +
		"**Problem**: Intermittent 503s\n" +
		"**Solution**: Exponential backoff\n" +
		"**Example**: retry.Do(fn)\n" +
		"**Example Prompt**: Add retries\n" +
		"**Related**: Circuit breaker, Timeouts\n" +
		"**Tags**: http, resilience\n" +
		"\n" +
		"### Minimal\n" +
		"**Type**: code\n" +
		"**Context**: c\n" +
		"**Solution**: s"
	assert.Equal(t, want, RenderPatternDetail(patterns))
}

func TestRenderPatternFile(t *testing.T) {
	got := RenderPatternFile([]models.Pattern{{Name: "P", Type: models.PatternTypePrompt, Context: "c", Solution: "s"}})
	assert.Contains(t, got, "## Patterns")
	assert.Contains(t, got, "### P")
	assert.Contains(t, got, "**Type**: prompt")
	assert.NotContains(t, got, StartMarker)
	assert.NotContains(t, got, EndMarker)

	empty := RenderPatternFile(nil)
	assert.Contains(t, empty, EmptyPlaceholder)
	assert.NotContains(t, empty, StartMarker)
}

func TestRenderPatternsSection(t *testing.T) {
	got := RenderPatternsSection(nil)
	assert.Equal(t, StartMarker+"\n## Patterns\n\n"+EmptyPlaceholder+"\n"+EndMarker, got)

	c := ParseDocument("intro\n" + got + "\noutro")
	if assert.NotNil(t, c.PatternsSection) {
		assert.Equal(t, got, *c.PatternsSection)
	}
}

func TestRenderReferenceBlock(t *testing.T) {
	assert.Equal(t,
		"<!-- CPL:PATTERNS:START -->\n@.claude/patterns.md\n<!-- CPL:PATTERNS:END -->",
		RenderReferenceBlock(".claude/patterns.md"))
	assert.Equal(t,
		"<!-- CPL:PATTERNS:START -->\n@~/.claude-patterns/patterns.md\n<!-- CPL:PATTERNS:END -->",
		RenderReferenceBlock("~/.claude-patterns/patterns.md"))
}
