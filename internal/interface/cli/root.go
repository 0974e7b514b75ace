package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neilberkman/cpl/internal/core/catalog"
	"github.com/neilberkman/cpl/internal/core/config"
	"github.com/neilberkman/cpl/internal/core/db"
	"github.com/neilberkman/cpl/internal/core/logging"
)

var (
	dataDir     string
	configPath  string
	debug       bool
	version     = "dev"
	versionInfo string
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(v, commit, date string) {
	version = v
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", v, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cpl",
	Short: "Claude Code pattern library",
	Long: `cpl - learn reusable patterns from your Claude Code sessions

Analyzes session logs with an LLM, keeps the extracted prompt, solution and
code patterns in a local catalog, and syncs them into CLAUDE.md files.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(debug)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to the browser if no subcommand specified
		return browseCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", config.DefaultDataDir(), "Data directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default <data-dir>/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.PathIn(dataDir)
}

func loadConfig() (*config.Config, error) {
	return config.Load(resolvedConfigPath())
}

func openStore() *catalog.Store {
	return catalog.Open(dataDir)
}

func openState() (*db.DB, error) {
	database, err := db.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	return database, nil
}
