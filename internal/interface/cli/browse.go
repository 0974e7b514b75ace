package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/neilberkman/cpl/internal/interface/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse patterns interactively",
	Long: `Browse the catalog in a terminal UI.

Filter with / using plain keywords plus type:, tag: and after: terms,
e.g. "retry type:solution tag:go after:last-week".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := tea.NewProgram(tui.New(openStore()), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
