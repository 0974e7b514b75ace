package models

import (
	"fmt"
	"strings"
	"time"
)

// PatternType classifies what a pattern captures
type PatternType string

const (
	PatternTypePrompt   PatternType = "prompt"
	PatternTypeSolution PatternType = "solution"
	PatternTypeCode     PatternType = "code"
)

// PatternTypes lists the valid types in display order
var PatternTypes = []PatternType{PatternTypePrompt, PatternTypeSolution, PatternTypeCode}

// Valid reports whether t is one of the known pattern types
func (t PatternType) Valid() bool {
	switch t {
	case PatternTypePrompt, PatternTypeSolution, PatternTypeCode:
		return true
	}
	return false
}

// PatternInput is a pattern before it has been stored
type PatternInput struct {
	Name          string      `yaml:"name" json:"name"`
	Type          PatternType `yaml:"type" json:"type"`
	Context       string      `yaml:"context" json:"context"`
	Problem       string      `yaml:"problem,omitempty" json:"problem,omitempty"`
	Solution      string      `yaml:"solution" json:"solution"`
	Example       string      `yaml:"example,omitempty" json:"example,omitempty"`
	ExamplePrompt string      `yaml:"example_prompt,omitempty" json:"example_prompt,omitempty"`
	Related       []string    `yaml:"related,omitempty" json:"related,omitempty"`
	Tags          []string    `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Pattern is a stored catalog record
type Pattern struct {
	ID            string      `yaml:"id" json:"id"`
	Name          string      `yaml:"name" json:"name"`
	Type          PatternType `yaml:"type" json:"type"`
	Context       string      `yaml:"context" json:"context"`
	Problem       string      `yaml:"problem,omitempty" json:"problem,omitempty"`
	Solution      string      `yaml:"solution" json:"solution"`
	Example       string      `yaml:"example,omitempty" json:"example,omitempty"`
	ExamplePrompt string      `yaml:"example_prompt,omitempty" json:"example_prompt,omitempty"`
	Related       []string    `yaml:"related,omitempty" json:"related,omitempty"`
	Tags          []string    `yaml:"tags,omitempty" json:"tags,omitempty"`

	SourceSessions []string `yaml:"source_sessions,omitempty" json:"source_sessions,omitempty"`

	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at"`
}

// PatternCatalog is the persisted collection, in insertion order
type PatternCatalog struct {
	Patterns []Pattern `yaml:"patterns" json:"patterns"`
}

// Names returns every pattern name in catalog order
func (c *PatternCatalog) Names() []string {
	names := make([]string, 0, len(c.Patterns))
	for _, p := range c.Patterns {
		names = append(names, p.Name)
	}
	return names
}

// ValidationError reports a PatternInput field that failed validation
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Validate checks required fields are present and non-blank and the type is known
func (in *PatternInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if !in.Type.Valid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("must be one of prompt, solution, code (got %q)", in.Type)}
	}
	if strings.TrimSpace(in.Context) == "" {
		return &ValidationError{Field: "context", Reason: "is required"}
	}
	if strings.TrimSpace(in.Solution) == "" {
		return &ValidationError{Field: "solution", Reason: "is required"}
	}
	return nil
}

// Input returns the user-supplied portion of a stored pattern
func (p *Pattern) Input() PatternInput {
	return PatternInput{
		Name:          p.Name,
		Type:          p.Type,
		Context:       p.Context,
		Problem:       p.Problem,
		Solution:      p.Solution,
		Example:       p.Example,
		ExamplePrompt: p.ExamplePrompt,
		Related:       p.Related,
		Tags:          p.Tags,
	}
}
