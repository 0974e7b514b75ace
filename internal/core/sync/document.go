// Package sync projects the pattern catalog into CLAUDE.md files. The
// machine-managed part of a document lives between two marker lines and
// everything outside them is preserved byte for byte.
package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Marker lines delimiting the managed section
const (
	StartMarker = "<!-- CPL:PATTERNS:START -->"
	EndMarker   = "<!-- CPL:PATTERNS:END -->"
)

// ClaudeMdContent is a document split around the managed section.
// PatternsSection is nil when the document has no section; it includes both
// marker lines when present.
type ClaudeMdContent struct {
	BeforePatterns  string
	PatternsSection *string
	AfterPatterns   string
}

// HasSection reports whether the document carries a managed section
func (c ClaudeMdContent) HasSection() bool {
	return c.PatternsSection != nil
}

// ParseDocument splits raw at the first start-marker line and the first
// end-marker line after it. A marker only counts when it is the whole line;
// mentions inside prose are ordinary text. Without such a pair the whole
// text is BeforePatterns.
func ParseDocument(raw string) ClaudeMdContent {
	start, end := -1, -1
	offset := 0
	for offset <= len(raw) {
		lineEnd := strings.IndexByte(raw[offset:], '\n')
		if lineEnd < 0 {
			lineEnd = len(raw)
		} else {
			lineEnd += offset
		}
		line := strings.TrimRight(raw[offset:lineEnd], " \t\r")

		if start < 0 && line == StartMarker {
			start = offset
		} else if start >= 0 && line == EndMarker {
			end = lineEnd
			break
		}

		if lineEnd == len(raw) {
			break
		}
		offset = lineEnd + 1
	}

	if start < 0 || end < 0 {
		return ClaudeMdContent{BeforePatterns: raw}
	}

	section := raw[start:end]
	return ClaudeMdContent{
		BeforePatterns:  raw[:start],
		PatternsSection: &section,
		AfterPatterns:   raw[end:],
	}
}

// WriteDocument joins the three spans back together
func WriteDocument(c ClaudeMdContent) string {
	var b strings.Builder
	b.WriteString(c.BeforePatterns)
	if c.PatternsSection != nil {
		b.WriteString(*c.PatternsSection)
	}
	b.WriteString(c.AfterPatterns)
	return b.String()
}

// ReplaceSection swaps in a new managed section. A document without one is
// returned unchanged.
func ReplaceSection(c ClaudeMdContent, section string) ClaudeMdContent {
	if c.PatternsSection == nil {
		return c
	}
	c.PatternsSection = &section
	return c
}

// InsertSection is the write path: it replaces an existing section or
// appends one to the end of the document, separated by a blank line
func InsertSection(c ClaudeMdContent, section string) ClaudeMdContent {
	if c.PatternsSection != nil {
		return ReplaceSection(c, section)
	}

	before := c.BeforePatterns + c.AfterPatterns
	switch {
	case before == "":
	case strings.HasSuffix(before, "\n\n"):
	case strings.HasSuffix(before, "\n"):
		before += "\n"
	default:
		before += "\n\n"
	}
	return ClaudeMdContent{
		BeforePatterns:  before,
		PatternsSection: &section,
		AfterPatterns:   "\n",
	}
}

// ReadDocument loads and parses path. A missing file is an empty document
// and exists is false.
func ReadDocument(path string) (content ClaudeMdContent, exists bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ClaudeMdContent{}, false, nil
		}
		return ClaudeMdContent{}, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseDocument(string(data)), true, nil
}

// writeFile replaces path atomically, creating parent directories
func writeFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
