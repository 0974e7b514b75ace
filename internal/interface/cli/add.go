package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/neilberkman/cpl/internal/core/models"
)

var (
	addFile          string
	addName          string
	addType          string
	addContext       string
	addProblem       string
	addSolution      string
	addExample       string
	addExamplePrompt string
	addTags          []string
	addRelated       []string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add patterns by hand",
	Long: `Add a pattern from flags, or one or more patterns from a YAML file.

The file holds either a single pattern or a catalog-style list:

  patterns:
    - name: Retry with backoff
      type: solution
      context: Flaky HTTP calls
      solution: Wrap requests with exponential backoff

Use --file - to read from stdin.

Examples:
  cpl add --name "Table tests" --type code --context "Go unit tests" --solution "Use a []struct of cases"
  cpl add --file patterns.yaml`,
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addFile, "file", "f", "", "YAML file with one or more patterns (- for stdin)")
	addCmd.Flags().StringVar(&addName, "name", "", "Pattern name")
	addCmd.Flags().StringVar(&addType, "type", "", "prompt, solution or code")
	addCmd.Flags().StringVar(&addContext, "context", "", "When the pattern applies")
	addCmd.Flags().StringVar(&addProblem, "problem", "", "What goes wrong without it")
	addCmd.Flags().StringVar(&addSolution, "solution", "", "What to do")
	addCmd.Flags().StringVar(&addExample, "example", "", "Example code or text")
	addCmd.Flags().StringVar(&addExamplePrompt, "example-prompt", "", "Prompt that triggers the pattern")
	addCmd.Flags().StringSliceVar(&addTags, "tag", nil, "Tag (repeatable)")
	addCmd.Flags().StringSliceVar(&addRelated, "related", nil, "Related pattern name (repeatable)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var inputs []models.PatternInput
	if addFile != "" {
		data, err := readInput(cmd.InOrStdin(), addFile)
		if err != nil {
			return err
		}
		if inputs, err = parsePatternFile(data); err != nil {
			return err
		}
	} else {
		inputs = []models.PatternInput{{
			Name:          addName,
			Type:          models.PatternType(addType),
			Context:       addContext,
			Problem:       addProblem,
			Solution:      addSolution,
			Example:       addExample,
			ExamplePrompt: addExamplePrompt,
			Tags:          addTags,
			Related:       addRelated,
		}}
	}

	// validate everything first so a bad file adds nothing
	for i := range inputs {
		if err := inputs[i].Validate(); err != nil {
			return fmt.Errorf("pattern %d: %w", i+1, err)
		}
	}

	store := openStore()
	for _, in := range inputs {
		p, err := store.Create(in)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%s %s %s\n", successStyle.Render("Added"), p.Name, metaStyle.Render(p.ID))
	}
	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// parsePatternFile accepts either {patterns: [...]} or a single pattern
func parsePatternFile(data []byte) ([]models.PatternInput, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("pattern file is empty")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse pattern file: %w", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("pattern file must be a mapping")
	}

	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "patterns" {
			var list struct {
				Patterns []models.PatternInput `yaml:"patterns"`
			}
			if err := root.Decode(&list); err != nil {
				return nil, fmt.Errorf("failed to parse pattern list: %w", err)
			}
			if len(list.Patterns) == 0 {
				return nil, fmt.Errorf("pattern list is empty")
			}
			return list.Patterns, nil
		}
	}

	var single models.PatternInput
	if err := root.Decode(&single); err != nil {
		return nil, fmt.Errorf("failed to parse pattern: %w", err)
	}
	return []models.PatternInput{single}, nil
}
