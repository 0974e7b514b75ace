// Package catalog persists the pattern catalog as a single YAML file and
// resolves user-supplied identifiers to patterns.
package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/neilberkman/cpl/internal/core/models"
)

// FileName is the catalog file inside the data directory
const FileName = "patterns.yaml"

// Store reads and writes the catalog file. Every mutation loads the whole
// catalog and saves it back; there is no locking between processes.
type Store struct {
	path  string
	now   func() time.Time
	newID func() string
}

// Option customizes a Store
type Option func(*Store)

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides pattern id generation
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New creates a store backed by the file at path
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:  path,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a store for the catalog file inside dataDir
func Open(dataDir string, opts ...Option) *Store {
	return New(filepath.Join(dataDir, FileName), opts...)
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Load reads the catalog. A missing or blank file is an empty catalog.
func (s *Store) Load() (*models.PatternCatalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.PatternCatalog{Patterns: []models.Pattern{}}, nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return &models.PatternCatalog{Patterns: []models.Pattern{}}, nil
	}

	var cat models.PatternCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", s.path, err)
	}
	if cat.Patterns == nil {
		cat.Patterns = []models.Pattern{}
	}
	return &cat, nil
}

// Save writes the whole catalog, replacing the file atomically
func (s *Store) Save(cat *models.PatternCatalog) error {
	if cat.Patterns == nil {
		cat.Patterns = []models.Pattern{}
	}

	data, err := yaml.Marshal(cat)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".patterns-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	return nil
}

// CreateOption adjusts a pattern before it is stored
type CreateOption func(*models.Pattern)

// WithSourceSession records the session a pattern was extracted from
func WithSourceSession(sessionID string) CreateOption {
	return func(p *models.Pattern) {
		if sessionID != "" {
			p.SourceSessions = append(p.SourceSessions, sessionID)
		}
	}
}

// Create validates input, assigns an id and timestamps, appends the pattern
// and saves. Names are not required to be unique.
func (s *Store) Create(input models.PatternInput, opts ...CreateOption) (*models.Pattern, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	cat, err := s.Load()
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := models.Pattern{
		ID:            s.newID(),
		Name:          input.Name,
		Type:          input.Type,
		Context:       input.Context,
		Problem:       input.Problem,
		Solution:      input.Solution,
		Example:       input.Example,
		ExamplePrompt: input.ExamplePrompt,
		Related:       input.Related,
		Tags:          input.Tags,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(&p)
	}

	cat.Patterns = append(cat.Patterns, p)
	if err := s.Save(cat); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every pattern in insertion order
func (s *Store) List() ([]models.Pattern, error) {
	cat, err := s.Load()
	if err != nil {
		return nil, err
	}
	return cat.Patterns, nil
}

// Resolve finds a pattern by exact id, then unique id prefix, then exact
// name. Several prefix matches yield *AmbiguousIdentifierError. No match is
// (nil, nil).
func (s *Store) Resolve(identifier string) (*models.Pattern, error) {
	cat, err := s.Load()
	if err != nil {
		return nil, err
	}
	idx, err := resolveIndex(cat.Patterns, identifier)
	if err != nil || idx < 0 {
		return nil, err
	}
	p := cat.Patterns[idx]
	return &p, nil
}

// ResolveByName looks a pattern up by exact name only
func (s *Store) ResolveByName(name string) (*models.Pattern, error) {
	cat, err := s.Load()
	if err != nil {
		return nil, err
	}
	idx := nameIndex(cat.Patterns, name)
	if idx < 0 {
		return nil, nil
	}
	p := cat.Patterns[idx]
	return &p, nil
}

// Remove deletes the pattern the identifier resolves to and reports whether
// one was removed
func (s *Store) Remove(identifier string) (bool, error) {
	cat, err := s.Load()
	if err != nil {
		return false, err
	}
	idx, err := resolveIndex(cat.Patterns, identifier)
	if err != nil || idx < 0 {
		return false, err
	}
	return true, s.removeAt(cat, idx)
}

// RemoveByName deletes the pattern with exactly this name
func (s *Store) RemoveByName(name string) (bool, error) {
	cat, err := s.Load()
	if err != nil {
		return false, err
	}
	idx := nameIndex(cat.Patterns, name)
	if idx < 0 {
		return false, nil
	}
	return true, s.removeAt(cat, idx)
}

func (s *Store) removeAt(cat *models.PatternCatalog, idx int) error {
	cat.Patterns = append(cat.Patterns[:idx], cat.Patterns[idx+1:]...)
	return s.Save(cat)
}

// resolveIndex returns -1 when nothing matches
func resolveIndex(patterns []models.Pattern, identifier string) (int, error) {
	if strings.TrimSpace(identifier) == "" {
		return -1, nil
	}

	for i := range patterns {
		if patterns[i].ID == identifier {
			return i, nil
		}
	}

	var prefixed []int
	for i := range patterns {
		if strings.HasPrefix(patterns[i].ID, identifier) {
			prefixed = append(prefixed, i)
		}
	}
	switch {
	case len(prefixed) == 1:
		return prefixed[0], nil
	case len(prefixed) > 1:
		matches := make([]models.Pattern, 0, len(prefixed))
		for _, i := range prefixed {
			matches = append(matches, patterns[i])
		}
		sort.Slice(matches, func(a, b int) bool { return matches[a].ID < matches[b].ID })
		return -1, &AmbiguousIdentifierError{Identifier: identifier, Matches: matches}
	}

	return nameIndex(patterns, identifier), nil
}

// nameIndex picks among same-named patterns the earliest created, then the
// smallest id, so the answer does not depend on catalog order
func nameIndex(patterns []models.Pattern, name string) int {
	best := -1
	for i := range patterns {
		if patterns[i].Name != name {
			continue
		}
		if best < 0 || earlier(&patterns[i], &patterns[best]) {
			best = i
		}
	}
	return best
}

func earlier(a, b *models.Pattern) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
