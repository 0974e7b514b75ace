package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/cpl/internal/core/models"
	"github.com/neilberkman/cpl/internal/core/search"
)

var (
	listType   string
	listSearch string
	listTags   []string
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List patterns in the catalog",
	Long: `List stored patterns, optionally filtered.

Examples:
  cpl list
  cpl list --type prompt
  cpl list --search retry --tag go
  cpl list --json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "Only patterns of this type (prompt, solution, code)")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive keyword")
	listCmd.Flags().StringSliceVar(&listTags, "tag", nil, "Require this tag (repeatable)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	filters := search.Filters{
		Type:    models.PatternType(listType),
		Keyword: listSearch,
		Tags:    listTags,
	}
	if filters.Type != "" && !filters.Type.Valid() {
		return fmt.Errorf("invalid type %q: must be prompt, solution or code", listType)
	}

	patterns, err := openStore().List()
	if err != nil {
		return err
	}
	patterns = search.Apply(patterns, filters)

	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(patterns)
	}

	if len(patterns) == 0 {
		_, _ = fmt.Fprintln(out, "No patterns found.")
		return nil
	}
	for _, p := range patterns {
		printPatternLine(out, p)
	}
	_, _ = fmt.Fprintln(out, metaStyle.Render(fmt.Sprintf("\n%d pattern(s)", len(patterns))))
	return nil
}
