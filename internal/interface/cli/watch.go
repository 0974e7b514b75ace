package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/neilberkman/cpl/internal/core/analysis"
	"github.com/neilberkman/cpl/internal/core/daemon"
	"github.com/neilberkman/cpl/pkg/ccsessions"
)

// PauseFileName suspends the watcher while it exists in the data directory
const PauseFileName = "daemon.paused"

var (
	watchAutoSync    bool
	watchProjectsDir string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Analyze sessions automatically as they finish",
	Long: `Watch the Claude Code projects directory and analyze each session once it
has been quiet for daemon.quiet_period. Sessions queued by the session-end
hook are processed too. Patterns are saved without confirmation.

Create <data-dir>/daemon.paused to pause analysis without stopping.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchAutoSync, "auto-sync", false, "Sync CLAUDE.md after new patterns (default sync.auto_sync)")
	watchCmd.Flags().StringVar(&watchProjectsDir, "projects-dir", ccsessions.ProjectsDir(), "Claude Code projects directory")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	state, err := openState()
	if err != nil {
		return err
	}
	defer func() { _ = state.Close() }()

	store := openStore()
	runner, err := buildRunner(ctx, cfg, store, state, analysis.Options{})
	if err != nil {
		return err
	}

	autoSync := cfg.Sync.AutoSync
	if cmd.Flags().Changed("auto-sync") {
		autoSync = watchAutoSync
	}

	var after daemon.AfterAnalysis
	if autoSync {
		projects := cfg.Sync.TargetProjects
		after = func(ctx context.Context, summary *analysis.Summary) error {
			return syncTargets(store, projects)
		}
	}

	d, err := daemon.New(runner, state, daemon.Config{
		WatchPath:    watchProjectsDir,
		QuietPeriod:  cfg.Daemon.QuietPeriod.Duration,
		PollInterval: cfg.Daemon.PollInterval.Duration,
		MaxAttempts:  cfg.Daemon.MaxAttempts,
		PauseFile:    filepath.Join(dataDir, PauseFileName),
	}, after)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", watchProjectsDir)
	if err := d.Start(ctx); err != nil {
		return err
	}

	stats := d.GetStats()
	log.Info().
		Int("queued", stats.SessionsQueued).
		Int("analyzed", stats.SessionsAnalyzed).
		Int("patterns", stats.PatternsCreated).
		Int("errors", stats.Errors).
		Msg("watcher stopped")
	return nil
}
