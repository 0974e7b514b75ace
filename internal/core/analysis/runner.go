// Package analysis runs pattern extraction over session files, one session
// at a time, and records what it did in the state database.
package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/neilberkman/cpl/internal/core/analyzer"
	"github.com/neilberkman/cpl/internal/core/catalog"
	"github.com/neilberkman/cpl/internal/core/db"
	"github.com/neilberkman/cpl/internal/core/models"
	"github.com/neilberkman/cpl/pkg/ccsessions"
)

// ApproveFunc decides whether a candidate is stored. Returning an error
// stops the run.
type ApproveFunc func(session ccsessions.SessionInfo, candidate models.PatternInput) (bool, error)

// Options tune a Runner
type Options struct {
	MinSessionLength int      // sessions with fewer entries are skipped
	ExcludePatterns  []string // globs matched against the project name
	DryRun           bool     // extract but store nothing
	Force            bool     // ignore the analyzed cache
	Approve          ApproveFunc
	ProviderName     string
}

// Outcome of one session
const (
	OutcomeAnalyzed = "analyzed"
	OutcomeCached   = "cached"
	OutcomeExcluded = "excluded"
	OutcomeTooShort = "too-short"
)

// SessionResult describes what happened to one session
type SessionResult struct {
	Session  ccsessions.SessionInfo
	Outcome  string
	Entries  int
	Found    []models.PatternInput
	Created  []models.Pattern
	Rejected int
}

// Summary aggregates a run
type Summary struct {
	Results  []SessionResult
	Analyzed int
	Skipped  int
	Found    int
	Created  int
}

// Add folds one session result into the summary
func (s *Summary) Add(r SessionResult) {
	s.Results = append(s.Results, r)
	if r.Outcome == OutcomeAnalyzed {
		s.Analyzed++
	} else {
		s.Skipped++
	}
	s.Found += len(r.Found)
	s.Created += len(r.Created)
}

// Runner analyzes sessions and stores approved patterns
type Runner struct {
	extractor *analyzer.Extractor
	store     *catalog.Store
	state     *db.DB // nil disables the analyzed cache
	opts      Options
}

// NewRunner creates a runner. state may be nil.
func NewRunner(extractor *analyzer.Extractor, store *catalog.Store, state *db.DB, opts Options) *Runner {
	return &Runner{
		extractor: extractor,
		store:     store,
		state:     state,
		opts:      opts,
	}
}

// Run analyzes sessions in order. The first error stops the run; results
// for earlier sessions are kept and returned alongside it.
func (r *Runner) Run(ctx context.Context, sessions []ccsessions.SessionInfo, progress ProgressCallback) (*Summary, error) {
	summary := &Summary{Results: make([]SessionResult, 0, len(sessions))}

	for _, info := range sessions {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := r.AnalyzeSession(ctx, info)
		if err != nil {
			return summary, fmt.Errorf("session %s: %w", info.ID, err)
		}
		summary.Add(*result)

		if progress != nil {
			progress.Update(info.ID, describe(*result))
		}
	}

	if progress != nil {
		progress.Finish()
	}
	return summary, nil
}

// AnalyzeSession extracts, approves and stores patterns for one session
func (r *Runner) AnalyzeSession(ctx context.Context, info ccsessions.SessionInfo) (*SessionResult, error) {
	result := &SessionResult{Session: info}

	if r.excluded(info.Project) {
		result.Outcome = OutcomeExcluded
		return result, nil
	}

	hash, err := computeFileHash(info.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to hash file: %w", err)
	}

	if r.state != nil && !r.opts.Force {
		done, err := r.state.IsAnalyzed(info.ID, hash)
		if err != nil {
			return nil, err
		}
		if done {
			result.Outcome = OutcomeCached
			return result, nil
		}
	}

	entries, err := ccsessions.ParseFile(info.Path)
	if err != nil {
		return nil, err
	}
	result.Entries = len(entries)

	if len(entries) < r.opts.MinSessionLength {
		result.Outcome = OutcomeTooShort
		log.Debug().Str("session", info.ID).Int("entries", len(entries)).Msg("session too short, skipping")
		return result, r.record(info, hash, result, db.StatusSkipped, nil)
	}

	existing, err := r.store.List()
	if err != nil {
		return nil, err
	}

	found, err := r.extractor.Extract(ctx, entries, existing)
	if err != nil {
		if recErr := r.record(info, hash, result, db.StatusFailed, err); recErr != nil {
			log.Warn().Err(recErr).Str("session", info.ID).Msg("failed to record analysis failure")
		}
		return nil, err
	}
	result.Outcome = OutcomeAnalyzed
	result.Found = found

	if r.opts.DryRun {
		return result, nil
	}

	for _, candidate := range found {
		if r.opts.Approve != nil {
			ok, err := r.opts.Approve(info, candidate)
			if err != nil {
				return nil, err
			}
			if !ok {
				result.Rejected++
				continue
			}
		}
		p, err := r.store.Create(candidate, catalog.WithSourceSession(info.ID))
		if err != nil {
			return nil, fmt.Errorf("failed to store pattern %q: %w", candidate.Name, err)
		}
		result.Created = append(result.Created, *p)
	}

	log.Info().
		Str("session", info.ID).
		Int("found", len(found)).
		Int("created", len(result.Created)).
		Msg("session analyzed")

	return result, r.record(info, hash, result, db.StatusAnalyzed, nil)
}

func (r *Runner) record(info ccsessions.SessionInfo, hash string, result *SessionResult, status string, cause error) error {
	if r.state == nil || r.opts.DryRun {
		return nil
	}
	var size int64
	if st, err := os.Stat(info.Path); err == nil {
		size = st.Size()
	}
	a := db.AnalyzedSession{
		SessionID:       info.ID,
		Project:         info.Project,
		FilePath:        info.Path,
		FileHash:        hash,
		FileSize:        size,
		EntryCount:      result.Entries,
		PatternsFound:   len(result.Found),
		PatternsCreated: len(result.Created),
		Status:          status,
		Provider:        r.opts.ProviderName,
	}
	if cause != nil {
		a.ErrorMessage = cause.Error()
	}
	return r.state.RecordAnalysis(a)
}

// excluded matches the encoded project directory and its decoded path
func (r *Runner) excluded(project string) bool {
	decoded := ccsessions.DecodeProjectPath(project)
	for _, pattern := range r.opts.ExcludePatterns {
		if ok, _ := filepath.Match(pattern, project); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, decoded); ok {
			return true
		}
	}
	return false
}

func describe(r SessionResult) string {
	switch r.Outcome {
	case OutcomeAnalyzed:
		return fmt.Sprintf("%d found, %d saved", len(r.Found), len(r.Created))
	case OutcomeTooShort:
		return fmt.Sprintf("skipped (%d entries)", r.Entries)
	default:
		return r.Outcome
	}
}

func computeFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
