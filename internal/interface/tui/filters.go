package tui

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/neilberkman/cpl/internal/core/models"
	"github.com/neilberkman/cpl/internal/core/search"
)

// FilterQuery is a parsed browser filter line
type FilterQuery struct {
	search.Filters
	After    time.Time // only patterns created after this
	HasAfter bool
}

// ParseFilterQuery extracts filters from the filter input.
// Supports:
//   - type:<prompt|solution|code>
//   - tag:<name> (repeatable, all must match)
//   - after:yesterday, after:2026-01-02
//
// Remaining words form the keyword.
func ParseFilterQuery(query string, now time.Time) FilterQuery {
	var fq FilterQuery

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	var words []string
	for _, token := range strings.Fields(query) {
		switch {
		case strings.HasPrefix(token, "type:"):
			fq.Type = models.PatternType(strings.ToLower(strings.TrimPrefix(token, "type:")))
		case strings.HasPrefix(token, "tag:"):
			if tag := strings.TrimPrefix(token, "tag:"); tag != "" {
				fq.Tags = append(fq.Tags, tag)
			}
		case strings.HasPrefix(token, "after:"):
			if t, ok := ParseDate(w, strings.TrimPrefix(token, "after:"), now); ok {
				fq.After = t
				fq.HasAfter = true
			}
		default:
			words = append(words, token)
		}
	}

	fq.Keyword = strings.Join(words, " ")
	return fq
}

// Apply filters patterns by the query
func (fq FilterQuery) Apply(patterns []models.Pattern) []models.Pattern {
	out := search.Apply(patterns, fq.Filters)
	if !fq.HasAfter {
		return out
	}
	kept := make([]models.Pattern, 0, len(out))
	for _, p := range out {
		if p.CreatedAt.After(fq.After) {
			kept = append(kept, p)
		}
	}
	return kept
}

// ParseDate accepts natural language ("yesterday", "3 days ago") and common
// numeric formats. Dashes stand in for spaces so the value can be a single
// filter token, e.g. "last-week".
func ParseDate(w *when.Parser, dateStr string, now time.Time) (time.Time, bool) {
	formats := []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006/01/02",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, dateStr, now.Location()); err == nil {
			return t, true
		}
	}

	if w == nil {
		w = when.New(nil)
		w.Add(en.All...)
		w.Add(common.All...)
	}
	result, err := w.Parse(strings.ReplaceAll(dateStr, "-", " "), now)
	if err == nil && result != nil {
		return result.Time, true
	}
	return time.Time{}, false
}
