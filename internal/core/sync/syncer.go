package sync

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog/log"

	"github.com/neilberkman/cpl/internal/core/models"
)

// ErrEmptyCatalog is returned when there is nothing to sync
var ErrEmptyCatalog = errors.New("pattern catalog is empty")

// PatternNotFoundError aborts a partial sync naming an identifier that
// resolved to nothing
type PatternNotFoundError struct {
	Identifier string
}

func (e *PatternNotFoundError) Error() string {
	return fmt.Sprintf("pattern %q not found", e.Identifier)
}

// Resolver is the catalog surface the syncer reads from
type Resolver interface {
	List() ([]models.Pattern, error)
	Resolve(identifier string) (*models.Pattern, error)
}

// SelectPatterns resolves each identifier in order. No identifiers selects
// the whole catalog. The first failure aborts the selection.
func SelectPatterns(r Resolver, identifiers []string) ([]models.Pattern, error) {
	if len(identifiers) == 0 {
		return r.List()
	}

	selected := make([]models.Pattern, 0, len(identifiers))
	seen := make(map[string]bool, len(identifiers))
	for _, id := range identifiers {
		p, err := r.Resolve(id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, &PatternNotFoundError{Identifier: id}
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		selected = append(selected, *p)
	}
	return selected, nil
}

// DetailFileName is the side file holding the rendered catalog
const DetailFileName = "patterns.md"

// Options selects what and where to sync
type Options struct {
	ProjectDir  string   // target project; ignored when Global
	Global      bool     // sync ~/.claude/CLAUDE.md instead
	DryRun      bool     // leave documents without markers untouched
	Identifiers []string // partial sync; empty means all patterns
}

// Plan is a computed sync, ready to show or apply
type Plan struct {
	TargetPath    string // CLAUDE.md being updated
	DetailPath    string // side file with the rendered catalog
	ReferencePath string // DetailPath relative to the target's directory
	DryRun        bool

	Patterns      []models.Pattern
	DetailContent string

	TargetExists bool
	Original     ClaudeMdContent
	Updated      ClaudeMdContent
}

// OriginalText is the target document as read
func (p *Plan) OriginalText() string {
	return WriteDocument(p.Original)
}

// UpdatedText is the target document after the sync
func (p *Plan) UpdatedText() string {
	return WriteDocument(p.Updated)
}

// Changed reports whether the target document text would change
func (p *Plan) Changed() bool {
	return p.OriginalText() != p.UpdatedText()
}

// Diff renders a unified diff of the target document
func (p *Plan) Diff() string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(p.OriginalText()),
		B:        difflib.SplitLines(p.UpdatedText()),
		FromFile: p.TargetPath,
		ToFile:   p.TargetPath,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}

// Syncer computes and applies sync plans
type Syncer struct {
	resolver Resolver
	homeDir  string
}

// SyncerOption configures a Syncer
type SyncerOption func(*Syncer)

// WithHomeDir overrides the home directory used for global sync
func WithHomeDir(dir string) SyncerOption {
	return func(s *Syncer) { s.homeDir = dir }
}

// NewSyncer creates a Syncer reading patterns from r
func NewSyncer(r Resolver, opts ...SyncerOption) *Syncer {
	s := &Syncer{resolver: r}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Syncer) targetPaths(opts Options) (target, detail string, err error) {
	if opts.Global {
		home := s.homeDir
		if home == "" {
			if home, err = os.UserHomeDir(); err != nil {
				return "", "", fmt.Errorf("failed to find home directory: %w", err)
			}
		}
		dir := filepath.Join(home, ".claude")
		return filepath.Join(dir, "CLAUDE.md"), filepath.Join(dir, DetailFileName), nil
	}

	project := opts.ProjectDir
	if project == "" {
		if project, err = os.Getwd(); err != nil {
			return "", "", fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	return filepath.Join(project, "CLAUDE.md"), filepath.Join(project, ".claude", DetailFileName), nil
}

// Plan reads the target document and computes the new content. Nothing is
// written.
func (s *Syncer) Plan(opts Options) (*Plan, error) {
	all, err := s.resolver.List()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrEmptyCatalog
	}

	patterns, err := SelectPatterns(s.resolver, opts.Identifiers)
	if err != nil {
		return nil, err
	}

	target, detail, err := s.targetPaths(opts)
	if err != nil {
		return nil, err
	}
	ref, err := filepath.Rel(filepath.Dir(target), detail)
	if err != nil {
		return nil, fmt.Errorf("failed to compute reference path: %w", err)
	}
	ref = filepath.ToSlash(ref)

	original, exists, err := ReadDocument(target)
	if err != nil {
		return nil, err
	}

	block := RenderReferenceBlock(ref)
	var updated ClaudeMdContent
	if opts.DryRun {
		updated = ReplaceSection(original, block)
	} else {
		updated = InsertSection(original, block)
	}

	return &Plan{
		TargetPath:    target,
		DetailPath:    detail,
		ReferencePath: ref,
		DryRun:        opts.DryRun,
		Patterns:      patterns,
		DetailContent: RenderPatternFile(patterns),
		TargetExists:  exists,
		Original:      original,
		Updated:       updated,
	}, nil
}

// Apply writes the detail file and then the target document
func (s *Syncer) Apply(plan *Plan) error {
	if plan.DryRun {
		return errors.New("cannot apply a dry-run plan")
	}

	if err := writeFile(plan.DetailPath, plan.DetailContent); err != nil {
		return err
	}
	if err := writeFile(plan.TargetPath, plan.UpdatedText()); err != nil {
		return err
	}

	log.Debug().
		Str("target", plan.TargetPath).
		Str("detail", plan.DetailPath).
		Int("patterns", len(plan.Patterns)).
		Msg("synced patterns")
	return nil
}
