package sync

import (
	"strings"

	"github.com/neilberkman/cpl/internal/core/models"
)

// EmptyPlaceholder is rendered instead of a pattern list for an empty catalog
const EmptyPlaceholder = "No patterns registered yet."

const patternsHeading = "## Patterns"

// RenderPatternDetail renders each pattern as a markdown block. Optional
// fields that are empty are left out.
func RenderPatternDetail(patterns []models.Pattern) string {
	if len(patterns) == 0 {
		return EmptyPlaceholder
	}

	blocks := make([]string, 0, len(patterns))
	for i := range patterns {
		blocks = append(blocks, renderPattern(&patterns[i]))
	}
	return strings.Join(blocks, "\n\n")
}

func renderPattern(p *models.Pattern) string {
	lines := []string{
		"### " + p.Name,
		"**Type**: " + string(p.Type),
		"**Context**: " + p.Context,
	}
	if p.Problem != "" {
		lines = append(lines, "**Problem**: "+p.Problem)
	}
	lines = append(lines, "**Solution**: "+p.Solution)
	if p.Example != "" {
		lines = append(lines, "**Example**: "+p.Example)
	}
	if p.ExamplePrompt != "" {
		lines = append(lines, "**Example Prompt**: "+p.ExamplePrompt)
	}
	if len(p.Related) > 0 {
		lines = append(lines, "**Related**: "+strings.Join(p.Related, ", "))
	}
	if len(p.Tags) > 0 {
		lines = append(lines, "**Tags**: "+strings.Join(p.Tags, ", "))
	}
	return strings.Join(lines, "\n")
}

// RenderPatternFile renders the side file referenced from CLAUDE.md
func RenderPatternFile(patterns []models.Pattern) string {
	return patternsHeading + "\n\n" + RenderPatternDetail(patterns) + "\n"
}

// RenderPatternsSection renders the catalog inline, wrapped in markers
func RenderPatternsSection(patterns []models.Pattern) string {
	return StartMarker + "\n" +
		patternsHeading + "\n\n" +
		RenderPatternDetail(patterns) + "\n" +
		EndMarker
}

// RenderReferenceBlock renders a managed section that imports referencePath
func RenderReferenceBlock(referencePath string) string {
	return StartMarker + "\n@" + referencePath + "\n" + EndMarker
}
