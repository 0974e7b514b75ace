package llm

import (
	"fmt"
	"os"

	"github.com/cbroglie/mustache"
)

// MaxPatternsPerSession caps how many patterns one extraction may return
const MaxPatternsPerSession = 5

// DefaultExtractTemplate is the mustache template for pattern extraction.
// Session content is inserted raw with triple braces.
const DefaultExtractTemplate = `You are an expert at analyzing software development sessions for reusable patterns.
Analyze the Claude Code session log below and extract patterns worth reusing.

## What to extract

1. **Prompt patterns** (type: prompt)
   - Instruction structures or phrasing that worked well
   - Prompting techniques that produced a specific result

2. **Problem-solving patterns** (type: solution)
   - Investigation and debugging procedures that were repeated
   - Approaches that resolved a specific problem

3. **Code patterns** (type: code)
   - Project-specific coding idioms
   - Structures or templates that were generated repeatedly

## Output format

Reply with YAML in exactly this shape. If no pattern is found, return an empty list.

` + "```yaml" + `
patterns:
  - name: Short, recognizable pattern name
    type: prompt | solution | code
    context: When to use it (1-2 sentences)
    problem: The problem it solves (optional, 1 sentence)
    solution: Summary of the approach (2-3 sentences)
    example: Concrete usage example (optional)
    example_prompt: Example prompt (for type=prompt)
    related: [names of related patterns]
    tags: [related tags]
` + "```" + `

## Rules

- Avoid generic patterns (for example just "error handling"); describe the concrete technique
- State project-specific context in context when it matters
- Never include secrets (API keys, passwords, internal URLs)
- Extract at most {{max_patterns}} patterns from one session
{{#has_existing}}
- These patterns are already in the catalog; do not repeat them:
{{#existing}}
  - {{{.}}}
{{/existing}}
{{/has_existing}}

## Session log

{{{session_content}}}`

// ExtractPromptData is the input to the extraction template
type ExtractPromptData struct {
	SessionContent string
	ExistingNames  []string
	MaxPatterns    int
}

func (d ExtractPromptData) context() map[string]any {
	maxPatterns := d.MaxPatterns
	if maxPatterns <= 0 {
		maxPatterns = MaxPatternsPerSession
	}
	return map[string]any{
		"session_content": d.SessionContent,
		"existing":        d.ExistingNames,
		"has_existing":    len(d.ExistingNames) > 0,
		"max_patterns":    maxPatterns,
	}
}

// PromptBuilder renders the extraction prompt from a mustache template
type PromptBuilder struct {
	template string
}

// NewPromptBuilder uses tmpl, or the default template when tmpl is empty
func NewPromptBuilder(tmpl string) *PromptBuilder {
	if tmpl == "" {
		tmpl = DefaultExtractTemplate
	}
	return &PromptBuilder{template: tmpl}
}

// LoadPromptBuilder reads a template override from path. An empty path
// yields the default template.
func LoadPromptBuilder(path string) (*PromptBuilder, error) {
	if path == "" {
		return NewPromptBuilder(""), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt template: %w", err)
	}
	if _, err := mustache.ParseString(string(data)); err != nil {
		return nil, fmt.Errorf("invalid prompt template %s: %w", path, err)
	}
	return NewPromptBuilder(string(data)), nil
}

// Build renders the prompt
func (b *PromptBuilder) Build(data ExtractPromptData) (string, error) {
	out, err := mustache.Render(b.template, data.context())
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return out, nil
}

// BuildExtractPrompt renders the default template around sessionContent
func BuildExtractPrompt(sessionContent string) string {
	out, err := NewPromptBuilder("").Build(ExtractPromptData{SessionContent: sessionContent})
	if err != nil {
		// the built-in template is static and always parses
		panic(err)
	}
	return out
}
