package search

import (
	"strings"

	"github.com/neilberkman/cpl/internal/core/models"
)

// Filters narrows a pattern list. Zero values disable a filter.
type Filters struct {
	Type    models.PatternType
	Keyword string
	Tags    []string // every listed tag must be present
}

// SearchResult is a keyword match and the fields that matched
type SearchResult struct {
	Pattern models.Pattern
	Fields  []string // name, context, solution, tags
}

// FilterByType keeps patterns of exactly type t
func FilterByType(patterns []models.Pattern, t models.PatternType) []models.Pattern {
	out := make([]models.Pattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

// SearchByKeyword does a case-insensitive substring match over name,
// context, solution and each tag. An empty keyword returns the input.
func SearchByKeyword(patterns []models.Pattern, keyword string) []models.Pattern {
	if keyword == "" {
		return patterns
	}
	results := Search(patterns, keyword)
	out := make([]models.Pattern, 0, len(results))
	for _, r := range results {
		out = append(out, r.Pattern)
	}
	return out
}

// Search is SearchByKeyword reporting which fields matched
func Search(patterns []models.Pattern, keyword string) []SearchResult {
	kw := strings.ToLower(keyword)
	results := make([]SearchResult, 0)
	for _, p := range patterns {
		if fields := matchedFields(&p, kw); len(fields) > 0 {
			results = append(results, SearchResult{Pattern: p, Fields: fields})
		}
	}
	return results
}

func matchedFields(p *models.Pattern, kw string) []string {
	var fields []string
	if strings.Contains(strings.ToLower(p.Name), kw) {
		fields = append(fields, "name")
	}
	if strings.Contains(strings.ToLower(p.Context), kw) {
		fields = append(fields, "context")
	}
	if strings.Contains(strings.ToLower(p.Solution), kw) {
		fields = append(fields, "solution")
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), kw) {
			fields = append(fields, "tags")
			break
		}
	}
	return fields
}

// FilterByTags keeps patterns carrying every tag, compared case-insensitively
func FilterByTags(patterns []models.Pattern, tags []string) []models.Pattern {
	if len(tags) == 0 {
		return patterns
	}
	out := make([]models.Pattern, 0, len(patterns))
	for _, p := range patterns {
		if hasAllTags(p.Tags, tags) {
			out = append(out, p)
		}
	}
	return out
}

func hasAllTags(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if strings.EqualFold(h, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Apply runs every non-empty filter in turn
func Apply(patterns []models.Pattern, f Filters) []models.Pattern {
	out := patterns
	if f.Type != "" {
		out = FilterByType(out, f.Type)
	}
	out = SearchByKeyword(out, f.Keyword)
	return FilterByTags(out, f.Tags)
}
