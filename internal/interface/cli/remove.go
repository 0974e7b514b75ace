package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	removeByName bool
	removeYes    bool
)

var removeCmd = &cobra.Command{
	Use:     "remove <id-or-name>",
	Aliases: []string{"rm"},
	Short:   "Remove a pattern",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
	removeCmd.Flags().BoolVar(&removeByName, "name", false, "Match by exact name")
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "Do not ask for confirmation")
}

func runRemove(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	store := openStore()

	p, err := resolvePattern(store, args[0], removeByName)
	if err != nil {
		return err
	}

	if !removeYes {
		ok, err := newPrompter(cmd.InOrStdin(), out).confirm(fmt.Sprintf("Remove %q (%s)?", p.Name, p.ID))
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	// the full ID is unambiguous even if the catalog changed meanwhile
	removed, err := store.Remove(p.ID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("pattern not found: %s", p.ID)
	}
	_, _ = fmt.Fprintf(out, "%s %s\n", successStyle.Render("Removed"), p.Name)
	return nil
}
