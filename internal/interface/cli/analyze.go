package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/neilberkman/cpl/internal/core/analysis"
	"github.com/neilberkman/cpl/internal/core/analyzer"
	"github.com/neilberkman/cpl/internal/core/catalog"
	"github.com/neilberkman/cpl/internal/core/config"
	"github.com/neilberkman/cpl/internal/core/db"
	"github.com/neilberkman/cpl/internal/core/llm"
	"github.com/neilberkman/cpl/internal/core/models"
	"github.com/neilberkman/cpl/internal/core/sanitize"
	"github.com/neilberkman/cpl/internal/interface/tui"
	"github.com/neilberkman/cpl/pkg/ccsessions"
)

// defaultLookback applies when no session selector is given
const defaultLookback = 7 * 24 * time.Hour

var (
	analyzeSession     string
	analyzeSince       string
	analyzeProject     string
	analyzeQueue       bool
	analyzeDryRun      bool
	analyzeAutoApprove bool
	analyzeForce       bool
	analyzeLimit       int
	analyzeProjectsDir string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract patterns from session logs",
	Long: `Analyze Claude Code session logs and extract reusable patterns.

Sessions are analyzed one at a time with one LLM call each. Unchanged
sessions that were already analyzed are skipped unless --force is given.
Without a selector, sessions from the last 7 days are analyzed.

Examples:
  cpl analyze --session 3f2a9c1e-...
  cpl analyze --since yesterday
  cpl analyze --since "3 days ago" --project ~/src/app
  cpl analyze --queue --auto-approve
  cpl analyze --dry-run`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeSession, "session", "s", "", "Analyze only this session id")
	analyzeCmd.Flags().StringVarP(&analyzeSince, "since", "d", "", "Analyze sessions modified since a date (2026-01-02, yesterday, \"2 days ago\")")
	analyzeCmd.Flags().StringVarP(&analyzeProject, "project", "p", "", "Only sessions of this project path")
	analyzeCmd.Flags().BoolVar(&analyzeQueue, "queue", false, "Process sessions queued by the session-end hook")
	analyzeCmd.Flags().BoolVar(&analyzeDryRun, "dry-run", false, "Show extracted patterns without saving")
	analyzeCmd.Flags().BoolVar(&analyzeAutoApprove, "auto-approve", false, "Save patterns without asking")
	analyzeCmd.Flags().BoolVar(&analyzeForce, "force", false, "Re-analyze sessions even if unchanged")
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 20, "Maximum number of sessions to analyze")
	analyzeCmd.Flags().StringVar(&analyzeProjectsDir, "projects-dir", ccsessions.ProjectsDir(), "Claude Code projects directory")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

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

	interactive := !analyzeAutoApprove && !analyzeDryRun
	var spinner *Spinner
	opts := analysis.Options{
		DryRun: analyzeDryRun,
		Force:  analyzeForce,
	}
	if interactive {
		ask := newPrompter(cmd.InOrStdin(), out).approveFunc()
		opts.Approve = func(info ccsessions.SessionInfo, c models.PatternInput) (bool, error) {
			if spinner != nil {
				spinner.Stop()
			}
			return ask(info, c)
		}
	}

	runner, err := buildRunner(ctx, cfg, openStore(), state, opts)
	if err != nil {
		return err
	}

	if analyzeQueue {
		summary, err := runner.ProcessQueue(ctx, analyzeProjectsDir, analyzeLimit, cfg.Daemon.MaxAttempts)
		if summary != nil {
			printSummary(out, summary, analyzeDryRun)
		}
		return stopErr(err)
	}

	since, err := sinceTime(analyzeSince, analyzeSession, time.Now())
	if err != nil {
		return err
	}
	sessions, err := selectSessions(analyzeProjectsDir, analyzeSession, analyzeProject, since, analyzeLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(out, "No sessions to analyze.")
		return nil
	}

	if !interactive {
		summary, err := runner.Run(ctx, sessions, analysis.NewProgressReporter(cmd.ErrOrStderr(), len(sessions)))
		if summary != nil {
			for _, r := range summary.Results {
				printResult(out, r, analyzeDryRun)
			}
			printSummary(out, summary, analyzeDryRun)
		}
		return err
	}

	summary := &analysis.Summary{}
	for _, info := range sessions {
		spinner = NewSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Analyzing %s (%s)", catalog.ShortID(info.ID), ccsessions.DecodeProjectPath(info.Project)))
		spinner.Start()
		result, err := runner.AnalyzeSession(ctx, info)
		spinner.Stop()
		if err != nil {
			printSummary(out, summary, analyzeDryRun)
			return stopErr(fmt.Errorf("session %s: %w", info.ID, err))
		}
		summary.Add(*result)
		printResult(out, *result, analyzeDryRun)
	}

	printSummary(out, summary, analyzeDryRun)
	return nil
}

// buildRunner wires the configured provider, scrubber and prompt template
func buildRunner(ctx context.Context, cfg *config.Config, store *catalog.Store, state *db.DB, opts analysis.Options) (*analysis.Runner, error) {
	provider, err := llm.NewProvider(ctx, cfg.LLM.ProviderConfig())
	if err != nil {
		return nil, err
	}
	if cc, ok := provider.(*llm.ClaudeCodeProvider); ok && !cc.Available() {
		return nil, errors.New("claude CLI not found on PATH; install Claude Code or set llm.provider with 'cpl config set'")
	}

	extractorOpts := []analyzer.Option{
		analyzer.WithScrubber(sanitize.NewScrubber(sanitize.Options{DeepScan: cfg.Analysis.DeepScan})),
	}
	if cfg.LLM.PromptTemplate != "" {
		builder, err := llm.LoadPromptBuilder(cfg.LLM.PromptTemplate)
		if err != nil {
			return nil, err
		}
		extractorOpts = append(extractorOpts, analyzer.WithPromptBuilder(builder))
	}

	opts.MinSessionLength = cfg.Analysis.MinSessionLength
	opts.ExcludePatterns = cfg.Analysis.ExcludePatterns
	opts.ProviderName = provider.Name()

	return analysis.NewRunner(analyzer.New(provider, extractorOpts...), store, state, opts), nil
}

// sinceTime parses --since. Without any selector it falls back to the
// default lookback window.
func sinceTime(since, session string, now time.Time) (time.Time, error) {
	if since == "" {
		if session != "" {
			return time.Time{}, nil
		}
		return now.Add(-defaultLookback), nil
	}
	t, ok := tui.ParseDate(nil, since, now)
	if !ok {
		return time.Time{}, fmt.Errorf("could not understand --since %q", since)
	}
	return t, nil
}

func selectSessions(projectsDir, sessionID, project string, since time.Time, limit int) ([]ccsessions.SessionInfo, error) {
	sessions, err := ccsessions.ListSessions(projectsDir, project)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	if sessionID != "" {
		for _, s := range sessions {
			if s.ID == sessionID {
				return []ccsessions.SessionInfo{s}, nil
			}
		}
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}

	if !since.IsZero() {
		sessions = ccsessions.FilterSince(sessions, since)
	}
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func printResult(w io.Writer, r analysis.SessionResult, dryRun bool) {
	label := fmt.Sprintf("%s %s", catalog.ShortID(r.Session.ID), metaStyle.Render(ccsessions.DecodeProjectPath(r.Session.Project)))
	switch r.Outcome {
	case analysis.OutcomeAnalyzed:
		if dryRun {
			_, _ = fmt.Fprintf(w, "%s: %d pattern(s) found\n", label, len(r.Found))
			for _, c := range r.Found {
				printCandidate(w, c)
			}
			return
		}
		_, _ = fmt.Fprintf(w, "%s: %d found, %s\n", label, len(r.Found), successStyle.Render(fmt.Sprintf("%d saved", len(r.Created))))
	case analysis.OutcomeCached:
		_, _ = fmt.Fprintf(w, "%s: already analyzed\n", label)
	case analysis.OutcomeExcluded:
		_, _ = fmt.Fprintf(w, "%s: excluded by config\n", label)
	case analysis.OutcomeTooShort:
		_, _ = fmt.Fprintf(w, "%s: too short (%d entries)\n", label, r.Entries)
	}
}

func printSummary(w io.Writer, s *analysis.Summary, dryRun bool) {
	parts := []string{
		fmt.Sprintf("%d analyzed", s.Analyzed),
		fmt.Sprintf("%d skipped", s.Skipped),
		fmt.Sprintf("%d pattern(s) found", s.Found),
	}
	if !dryRun {
		parts = append(parts, fmt.Sprintf("%d saved", s.Created))
	}
	_, _ = fmt.Fprintln(w, titleStyle.Render("Done:")+" "+strings.Join(parts, ", "))
}

// stopErr turns a user-requested stop into a clean exit
func stopErr(err error) error {
	if errors.Is(err, errStopped) {
		return nil
	}
	return err
}
