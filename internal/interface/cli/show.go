package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/neilberkman/cpl/internal/core/catalog"
	"github.com/neilberkman/cpl/internal/core/models"
)

var (
	showByName bool
	showCopy   bool
	showJSON   bool
)

var showCmd = &cobra.Command{
	Use:   "show <id-or-name>",
	Short: "Show one pattern",
	Long: `Show a pattern by full ID, unique ID prefix or exact name.

With --name only the name is matched.
--copy puts the example prompt, or the solution, on the clipboard.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showByName, "name", false, "Match by exact name")
	showCmd.Flags().BoolVarP(&showCopy, "copy", "c", false, "Copy the example prompt or solution to the clipboard")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	p, err := resolvePattern(openStore(), args[0], showByName)
	if err != nil {
		return err
	}

	if showJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return err
		}
	} else {
		printPattern(out, *p)
	}

	if showCopy {
		if err := clipboard.WriteAll(copyText(*p)); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), successStyle.Render("Copied to clipboard"))
	}
	return nil
}

// resolvePattern looks up a pattern and turns absence into an error
func resolvePattern(store *catalog.Store, identifier string, byName bool) (*models.Pattern, error) {
	var (
		p   *models.Pattern
		err error
	)
	if byName {
		p, err = store.ResolveByName(identifier)
	} else {
		p, err = store.Resolve(identifier)
	}
	if err != nil {
		var ambiguous *catalog.AmbiguousIdentifierError
		if errors.As(err, &ambiguous) {
			return nil, fmt.Errorf("%w; use a longer prefix or the full ID", err)
		}
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("pattern not found: %s", identifier)
	}
	return p, nil
}

func copyText(p models.Pattern) string {
	if p.ExamplePrompt != "" {
		return p.ExamplePrompt
	}
	return p.Solution
}
