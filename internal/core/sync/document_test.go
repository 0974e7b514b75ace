package sync

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const withSection = `# Project

## Rules

- Rule 1

<!-- CPL:PATTERNS:START -->
## Patterns

### Pattern1
- context: test
<!-- CPL:PATTERNS:END -->

## Other Section

Some other content.
`

func TestParseDocument_NoSection(t *testing.T) {
	raw := "# Project\n\nThis is a project description.\n\n## Rules\n\n- Rule 1\n"
	c := ParseDocument(raw)
	assert.Equal(t, raw, c.BeforePatterns)
	assert.Nil(t, c.PatternsSection)
	assert.Equal(t, "", c.AfterPatterns)
}

func TestParseDocument_WithSection(t *testing.T) {
	c := ParseDocument(withSection)
	assert.Equal(t, "# Project\n\n## Rules\n\n- Rule 1\n\n", c.BeforePatterns)
	require.NotNil(t, c.PatternsSection)
	assert.Equal(t, StartMarker+"\n## Patterns\n\n### Pattern1\n- context: test\n"+EndMarker, *c.PatternsSection)
	assert.Equal(t, "\n\n## Other Section\n\nSome other content.\n", c.AfterPatterns)
}

func TestParseDocument_SectionAtEnd(t *testing.T) {
	raw := "# Project\n\n" + StartMarker + "\nbody\n" + EndMarker
	c := ParseDocument(raw)
	assert.Equal(t, "# Project\n\n", c.BeforePatterns)
	require.NotNil(t, c.PatternsSection)
	assert.Equal(t, "", c.AfterPatterns)
}

func TestParseDocument_UnpairedMarkers(t *testing.T) {
	docs := []string{
		"a\n" + StartMarker + "\nno end",
		"a\n" + EndMarker + "\nno start",
		"a\n" + EndMarker + "\nb\n" + StartMarker + "\nc",
		"",
	}
	for _, raw := range docs {
		c := ParseDocument(raw)
		assert.Nil(t, c.PatternsSection, raw)
		assert.Equal(t, raw, c.BeforePatterns)
		assert.Equal(t, "", c.AfterPatterns)
	}
}

func TestWriteDocument(t *testing.T) {
	assert.Equal(t, "# Project\n\nSome content.", WriteDocument(ClaudeMdContent{BeforePatterns: "# Project\n\nSome content."}))

	section := StartMarker + "\n## Patterns\n" + EndMarker
	got := WriteDocument(ClaudeMdContent{
		BeforePatterns:  "# Project\n\n",
		PatternsSection: &section,
		AfterPatterns:   "\n\n## Other",
	})
	assert.Equal(t, "# Project\n\n"+section+"\n\n## Other", got)
}

func TestParseWriteRoundTrip(t *testing.T) {
	for _, raw := range []string{withSection, "plain\r\ntext", "", StartMarker + EndMarker} {
		assert.Equal(t, raw, WriteDocument(ParseDocument(raw)))
	}
}

func TestReplaceSection_PreservesSurroundings(t *testing.T) {
	block := RenderReferenceBlock(".claude/patterns.md")

	first := WriteDocument(ReplaceSection(ParseDocument(withSection), block))
	second := WriteDocument(ReplaceSection(ParseDocument(first), block))
	assert.Equal(t, first, second, "re-running with the same content is idempotent")

	original := ParseDocument(withSection)
	merged := ParseDocument(first)
	assert.Equal(t, original.BeforePatterns, merged.BeforePatterns)
	assert.Equal(t, original.AfterPatterns, merged.AfterPatterns)
	assert.Equal(t, block, *merged.PatternsSection)
}

func TestReplaceSection_NoMarkersUnchanged(t *testing.T) {
	raw := "# Project\n\n## Rules\n"
	c := ReplaceSection(ParseDocument(raw), RenderReferenceBlock("x.md"))
	assert.Nil(t, c.PatternsSection)
	assert.Equal(t, raw, WriteDocument(c))
	assert.NotContains(t, WriteDocument(c), StartMarker)
}

func TestInsertSection(t *testing.T) {
	block := RenderReferenceBlock(".claude/patterns.md")

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty document", "", block + "\n"},
		{"no trailing newline", "# P", "# P\n\n" + block + "\n"},
		{"one trailing newline", "# P\n", "# P\n\n" + block + "\n"},
		{"blank line already", "# P\n\n", "# P\n\n" + block + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WriteDocument(InsertSection(ParseDocument(tt.raw), block))
			assert.Equal(t, tt.want, got)

			again := WriteDocument(InsertSection(ParseDocument(got), block))
			assert.Equal(t, got, again)
		})
	}

	replaced := WriteDocument(InsertSection(ParseDocument(withSection), block))
	assert.Equal(t, 1, strings.Count(replaced, StartMarker))
	assert.Contains(t, replaced, "## Other Section")
}

func TestParseDocument_InlineMarkersAreProse(t *testing.T) {
	raw := "# Project\n\ncpl manages the text between `" + StartMarker + "` and `" + EndMarker + "`; do not edit it.\n"
	c := ParseDocument(raw)
	assert.Nil(t, c.PatternsSection)
	assert.Equal(t, raw, c.BeforePatterns)

	// a real section after the prose mention is still found
	withReal := raw + "\n" + StartMarker + "\n@.claude/patterns.md\n" + EndMarker + "\n"
	c = ParseDocument(withReal)
	require.NotNil(t, c.PatternsSection)
	assert.Equal(t, raw+"\n", c.BeforePatterns)
	assert.Equal(t, StartMarker+"\n@.claude/patterns.md\n"+EndMarker, *c.PatternsSection)
	assert.Equal(t, "\n", c.AfterPatterns)
	assert.Equal(t, withReal, WriteDocument(c))
}

func TestInsertSection_KeepsInlineMention(t *testing.T) {
	raw := "Markers look like " + StartMarker + " ... " + EndMarker + " in the file.\n"
	updated := WriteDocument(InsertSection(ParseDocument(raw), RenderReferenceBlock(".claude/patterns.md")))
	assert.True(t, strings.HasPrefix(updated, raw))
	assert.Contains(t, updated, "@.claude/patterns.md")
}

func TestParseDocument_CRLF(t *testing.T) {
	raw := "top\r\n" + StartMarker + "\r\nbody\r\n" + EndMarker + "\r\nbottom\r\n"
	c := ParseDocument(raw)
	require.NotNil(t, c.PatternsSection)
	assert.Equal(t, "top\r\n", c.BeforePatterns)
	assert.Equal(t, raw, WriteDocument(c))
}
