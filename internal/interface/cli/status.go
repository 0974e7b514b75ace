package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog and analysis state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	patterns, err := openStore().List()
	if err != nil {
		return err
	}

	state, err := openState()
	if err != nil {
		return err
	}
	defer func() { _ = state.Close() }()

	stats, err := state.GetStats()
	if err != nil {
		return err
	}

	row := func(label string, value any) {
		_, _ = fmt.Fprintf(out, "%s %v\n", labelStyle.Render(fmt.Sprintf("%-18s", label+":")), value)
	}

	_, _ = fmt.Fprintln(out, titleStyle.Render("cpl "+version))
	row("Data directory", dataDir)
	row("Provider", cfg.LLM.Provider)
	row("Patterns", len(patterns))
	row("Analyzed sessions", stats.AnalyzedSessions)
	row("Failed sessions", stats.FailedSessions)
	row("Patterns created", stats.PatternsCreated)
	row("Queued sessions", stats.PendingQueue)
	if stats.LastAnalyzed.IsZero() {
		row("Last analysis", "never")
	} else {
		row("Last analysis", humanize.Time(stats.LastAnalyzed))
	}
	if hook, err := hookState(); err == nil {
		row("Session-end hook", hook)
	} else {
		row("Session-end hook", "unknown ("+err.Error()+")")
	}
	if _, err := os.Stat(filepath.Join(dataDir, PauseFileName)); err == nil {
		row("Watcher", "paused")
	}
	return nil
}
