package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neilberkman/cpl/internal/core/config"
	"github.com/neilberkman/cpl/internal/core/models"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the data directory, config and empty catalog",
	Long: `Create ~/.claude-patterns (or --data-dir) with a default config.toml,
an empty patterns.yaml and the state database.

Existing files are kept unless --force is given, which rewrites the config.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config.toml")
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	cfgPath := resolvedConfigPath()
	_, statErr := os.Stat(cfgPath)
	switch {
	case statErr == nil && !initForce:
		_, _ = fmt.Fprintf(out, "Config exists: %s\n", cfgPath)
	case statErr == nil || os.IsNotExist(statErr):
		if err := config.Save(cfgPath, config.Default()); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%s %s\n", successStyle.Render("Wrote"), cfgPath)
	default:
		return fmt.Errorf("failed to check config: %w", statErr)
	}

	store := openStore()
	if _, err := os.Stat(store.Path()); os.IsNotExist(err) {
		if err := store.Save(&models.PatternCatalog{Patterns: []models.Pattern{}}); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%s %s\n", successStyle.Render("Wrote"), store.Path())
	} else {
		_, _ = fmt.Fprintf(out, "Catalog exists: %s\n", store.Path())
	}

	state, err := openState()
	if err != nil {
		return err
	}
	_ = state.Close()

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Next steps:")
	_, _ = fmt.Fprintln(out, "  cpl config set llm.provider anthropic   # or openai, gemini, ollama, deepseek, bedrock, claude-code")
	_, _ = fmt.Fprintln(out, "  cpl analyze --since yesterday")
	_, _ = fmt.Fprintln(out, "  cpl sync")
	_, _ = fmt.Fprintln(out, "  cpl hook install                         # queue sessions automatically when they end")
	return nil
}
