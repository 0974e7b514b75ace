// Package analyzer turns parsed session entries into candidate patterns
// using an LLM provider.
package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/neilberkman/cpl/internal/core/llm"
	"github.com/neilberkman/cpl/internal/core/models"
	"github.com/neilberkman/cpl/internal/core/sanitize"
	"github.com/neilberkman/cpl/pkg/ccsessions"
)

// Extractor renders a session, redacts it, asks the provider for patterns
// and drops the ones already in the catalog
type Extractor struct {
	provider llm.Provider
	scrubber *sanitize.Scrubber
	prompts  *llm.PromptBuilder
}

// Option configures an Extractor
type Option func(*Extractor)

// WithScrubber replaces the default regex-only scrubber
func WithScrubber(s *sanitize.Scrubber) Option {
	return func(e *Extractor) { e.scrubber = s }
}

// WithPromptBuilder replaces the default extraction template
func WithPromptBuilder(b *llm.PromptBuilder) Option {
	return func(e *Extractor) { e.prompts = b }
}

// New creates an Extractor that calls provider
func New(provider llm.Provider, opts ...Option) *Extractor {
	e := &Extractor{
		provider: provider,
		scrubber: sanitize.NewScrubber(sanitize.Options{}),
		prompts:  llm.NewPromptBuilder(""),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns new pattern candidates for a session. The provider is
// called exactly once when entries is non-empty and never otherwise; its
// error is returned as is.
func (e *Extractor) Extract(ctx context.Context, entries []ccsessions.Entry, existing []models.Pattern) ([]models.PatternInput, error) {
	if len(entries) == 0 {
		return []models.PatternInput{}, nil
	}

	content := e.scrubber.Scrub(FormatSessionContent(entries))

	names := make([]string, 0, len(existing))
	for _, p := range existing {
		names = append(names, p.Name)
	}
	prompt, err := e.prompts.Build(llm.ExtractPromptData{
		SessionContent: content,
		ExistingNames:  names,
		MaxPatterns:    llm.MaxPatternsPerSession,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction prompt: %w", err)
	}

	log.Debug().
		Str("provider", e.provider.Name()).
		Int("entries", len(entries)).
		Int("prompt_chars", len(prompt)).
		Msg("requesting pattern extraction")

	response, err := e.provider.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	candidates := ParseExtractResponse(response)
	fresh := FilterDuplicates(candidates, existing)

	log.Debug().
		Int("candidates", len(candidates)).
		Int("new", len(fresh)).
		Msg("pattern extraction finished")

	return fresh, nil
}

// FilterDuplicates drops candidates whose name equals, ignoring case, the
// name of an existing pattern
func FilterDuplicates(candidates []models.PatternInput, existing []models.Pattern) []models.PatternInput {
	seen := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		seen[strings.ToLower(p.Name)] = struct{}{}
	}

	out := make([]models.PatternInput, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[strings.ToLower(c.Name)]; dup {
			continue
		}
		out = append(out, c)
	}
	return out
}
