// Package daemon watches the session directory and analyzes sessions once
// they stop changing.
package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/neilberkman/cpl/internal/core/analysis"
	"github.com/neilberkman/cpl/internal/core/db"
	"github.com/neilberkman/cpl/pkg/ccsessions"
)

// Config controls the watch loop
type Config struct {
	WatchPath    string        // Claude Code projects directory
	QuietPeriod  time.Duration // a session is finished after this long without writes
	PollInterval time.Duration // how often settled sessions are queued and the queue drained
	MaxAttempts  int
	PauseFile    string // while this file exists ticks are skipped
}

// AfterAnalysis runs after a drain that created patterns, e.g. to sync
// CLAUDE.md files
type AfterAnalysis func(ctx context.Context, summary *analysis.Summary) error

// Stats tracks daemon activity
type Stats struct {
	StartTime        time.Time
	SessionsQueued   int
	SessionsAnalyzed int
	PatternsCreated  int
	LastAnalysis     time.Time
	Errors           int
}

// Daemon owns the fsnotify watcher. Events and ticks are handled on the
// goroutine running Start.
type Daemon struct {
	runner  *analysis.Runner
	state   *db.DB
	watcher *fsnotify.Watcher
	cfg     Config
	after   AfterAnalysis
	now     func() time.Time

	lastWrite map[string]time.Time
	stats     *Stats
}

// New creates a daemon. after may be nil.
func New(runner *analysis.Runner, state *db.DB, cfg Config, after AfterAnalysis) (*Daemon, error) {
	if _, err := os.Stat(cfg.WatchPath); err != nil {
		return nil, fmt.Errorf("watch path does not exist: %s", cfg.WatchPath)
	}
	if cfg.QuietPeriod <= 0 {
		cfg.QuietPeriod = 2 * time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = analysis.DefaultMaxAttempts
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Daemon{
		runner:    runner,
		state:     state,
		watcher:   watcher,
		cfg:       cfg,
		after:     after,
		now:       time.Now,
		lastWrite: make(map[string]time.Time),
		stats:     &Stats{StartTime: time.Now()},
	}, nil
}

// Start runs until ctx is cancelled
func (d *Daemon) Start(ctx context.Context) error {
	defer func() { _ = d.watcher.Close() }()

	log.Info().
		Str("path", d.cfg.WatchPath).
		Dur("quiet_period", d.cfg.QuietPeriod).
		Dur("poll_interval", d.cfg.PollInterval).
		Msg("watch daemon starting")

	if err := d.setupWatches(); err != nil {
		return fmt.Errorf("failed to setup watches: %w", err)
	}

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("watch daemon shutting down")
			return nil

		case event, ok := <-d.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			d.handleEvent(event)

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			log.Warn().Err(err).Msg("watcher error")
			d.stats.Errors++

		case <-ticker.C:
			if d.isPaused() {
				continue
			}
			d.tick(ctx)
		}
	}
}

// setupWatches watches the projects directory and every project in it
func (d *Daemon) setupWatches() error {
	return filepath.Walk(d.cfg.WatchPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			log.Debug().Str("path", path).Msg("watching")
			if err := d.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}

// handleEvent only records activity; analysis happens on ticks
func (d *Daemon) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
			if err := d.watcher.Add(event.Name); err != nil {
				log.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new project")
			}
			return
		}
	}

	if !shouldProcessEvent(event) {
		return
	}
	d.lastWrite[event.Name] = d.now()
}

func shouldProcessEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".jsonl") {
		return false
	}
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Create == fsnotify.Create
}

// tick queues settled sessions and drains the queue
func (d *Daemon) tick(ctx context.Context) {
	d.enqueueSettled()

	summary, err := d.runner.ProcessQueue(ctx, d.cfg.WatchPath, 0, d.cfg.MaxAttempts)
	if summary != nil {
		d.stats.SessionsAnalyzed += summary.Analyzed
		d.stats.PatternsCreated += summary.Created
		if summary.Analyzed > 0 {
			d.stats.LastAnalysis = d.now()
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("queue processing failed")
		d.stats.Errors++
	}

	if summary != nil && summary.Created > 0 && d.after != nil {
		if err := d.after(ctx, summary); err != nil {
			log.Error().Err(err).Msg("post-analysis hook failed")
			d.stats.Errors++
		}
	}
}

// enqueueSettled moves sessions quiet for the configured period into the
// analysis queue
func (d *Daemon) enqueueSettled() {
	now := d.now()
	for path, last := range d.lastWrite {
		if now.Sub(last) < d.cfg.QuietPeriod {
			continue
		}
		delete(d.lastWrite, path)

		info := ccsessions.SessionInfoFromPath(path)
		added, err := d.state.Enqueue(db.QueueItem{
			SessionID:      info.ID,
			ProjectPath:    ccsessions.DecodeProjectPath(info.Project),
			TranscriptPath: path,
		})
		if err != nil {
			log.Error().Err(err).Str("session", info.ID).Msg("failed to queue session")
			d.stats.Errors++
			continue
		}
		if added {
			d.stats.SessionsQueued++
			log.Info().Str("session", info.ID).Msg("session queued for analysis")
		}
	}
}

func (d *Daemon) isPaused() bool {
	if d.cfg.PauseFile == "" {
		return false
	}
	_, err := os.Stat(d.cfg.PauseFile)
	return err == nil
}

// GetStats returns current daemon statistics
func (d *Daemon) GetStats() Stats {
	return *d.stats
}
