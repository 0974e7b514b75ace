package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/neilberkman/cpl/internal/core/config"
	"github.com/neilberkman/cpl/internal/core/db"
	"github.com/neilberkman/cpl/internal/core/hooks"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Claude Code hook handlers",
}

var hookSessionEndCmd = &cobra.Command{
	Use:   "session-end",
	Short: "Queue the finished session for analysis",
	Long: `Queue a finished session for the next 'cpl analyze --queue' or 'cpl watch'.

Claude Code runs this once 'cpl hook install' has registered it. Nothing is
queued while analysis.auto_analyze is false. The session comes from the
hook's JSON on stdin, or from CLAUDE_SESSION_ID and CLAUDE_PROJECT_PATH.`,
	RunE: runHookSessionEnd,
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Register the session-end hook and enable auto analysis",
	Long: `Add 'cpl hook session-end' to the SessionEnd hooks in ~/.claude/settings.json
and set analysis.auto_analyze = true. Other settings and hooks are kept.
Running it again changes nothing.`,
	RunE: runHookInstall,
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the session-end hook and disable auto analysis",
	RunE:  runHookUninstall,
}

var hookStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the session-end hook is registered",
	RunE:  runHookStatus,
}

func init() {
	rootCmd.AddCommand(hookCmd)
	hookCmd.AddCommand(hookSessionEndCmd, hookInstallCmd, hookUninstallCmd, hookStatusCmd)
}

func newHookInstaller() (*hooks.Installer, error) {
	path, err := hooks.SettingsPath()
	if err != nil {
		return nil, err
	}
	return hooks.NewInstaller(path), nil
}

// setAutoAnalyze persists analysis.auto_analyze
func setAutoAnalyze(enabled bool) error {
	path := resolvedConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if cfg.Analysis.AutoAnalyze == enabled {
		return nil
	}
	cfg.Analysis.AutoAnalyze = enabled
	return config.Save(path, cfg)
}

func runHookInstall(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	inst, err := newHookInstaller()
	if err != nil {
		return err
	}

	changed, err := inst.Install()
	if err != nil {
		return err
	}
	if err := setAutoAnalyze(true); err != nil {
		return err
	}

	if changed {
		_, _ = fmt.Fprintf(out, "%s session-end hook in %s\n", successStyle.Render("Installed"), inst.Path())
	} else {
		_, _ = fmt.Fprintf(out, "Session-end hook already installed in %s\n", inst.Path())
	}
	_, _ = fmt.Fprintln(out, "Finished sessions are queued; run 'cpl watch' or 'cpl analyze --queue' to analyze them.")
	return nil
}

func runHookUninstall(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	inst, err := newHookInstaller()
	if err != nil {
		return err
	}

	removed, err := inst.Uninstall()
	if err != nil {
		return err
	}
	if err := setAutoAnalyze(false); err != nil {
		return err
	}

	if removed {
		_, _ = fmt.Fprintf(out, "%s session-end hook from %s\n", successStyle.Render("Removed"), inst.Path())
	} else {
		_, _ = fmt.Fprintln(out, "Session-end hook was not installed.")
	}
	return nil
}

func runHookStatus(cmd *cobra.Command, args []string) error {
	state, err := hookState()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), state)
	return err
}

// hookState describes the hook registration and the auto_analyze switch
func hookState() (string, error) {
	inst, err := newHookInstaller()
	if err != nil {
		return "", err
	}
	installed, err := inst.Installed()
	if err != nil {
		return "", err
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}

	switch {
	case installed && cfg.Analysis.AutoAnalyze:
		return "installed", nil
	case installed:
		return "installed (auto_analyze off, sessions are not queued)", nil
	default:
		return "not installed", nil
	}
}

// hookInput is the JSON Claude Code passes to hooks
type hookInput struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	Cwd            string `json:"cwd"`
}

// readHookInput merges stdin JSON with the environment; stdin wins
func readHookInput(stdin io.Reader, getenv func(string) string) (hookInput, error) {
	in := hookInput{
		SessionID: getenv("CLAUDE_SESSION_ID"),
		Cwd:       getenv("CLAUDE_PROJECT_PATH"),
	}
	if stdin == nil {
		return in, nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return in, fmt.Errorf("failed to read hook input: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return in, nil
	}

	var fromStdin hookInput
	if err := json.Unmarshal(data, &fromStdin); err != nil {
		return in, fmt.Errorf("failed to parse hook input: %w", err)
	}
	if fromStdin.SessionID != "" {
		in.SessionID = fromStdin.SessionID
	}
	if fromStdin.TranscriptPath != "" {
		in.TranscriptPath = fromStdin.TranscriptPath
	}
	if fromStdin.Cwd != "" {
		in.Cwd = fromStdin.Cwd
	}
	return in, nil
}

func runHookSessionEnd(cmd *cobra.Command, args []string) error {
	var stdin io.Reader = cmd.InOrStdin()
	if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		stdin = nil
	}

	in, err := readHookInput(stdin, os.Getenv)
	if err != nil {
		return err
	}
	if in.SessionID == "" {
		return fmt.Errorf("no session id: set CLAUDE_SESSION_ID or pass hook JSON on stdin")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Analysis.AutoAnalyze {
		log.Debug().Str("session", in.SessionID).Msg("auto_analyze is off, not queueing")
		return nil
	}

	state, err := openState()
	if err != nil {
		return err
	}
	defer func() { _ = state.Close() }()

	added, err := state.Enqueue(db.QueueItem{
		SessionID:      in.SessionID,
		ProjectPath:    in.Cwd,
		TranscriptPath: in.TranscriptPath,
	})
	if err != nil {
		return err
	}

	log.Debug().Str("session", in.SessionID).Bool("added", added).Msg("session-end hook")
	if added {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Queued session %s for analysis\n", in.SessionID)
	}
	return nil
}
