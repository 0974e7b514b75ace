package cli

import (
	"github.com/spf13/cobra"

	"github.com/neilberkman/cpl/cmd/cpl/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Serve the catalog over MCP (stdio)",
	Long: `Start an MCP server on stdin/stdout exposing list_patterns, get_pattern and
search_patterns.

Register it with Claude Code:
  claude mcp add patterns -- cpl serve-mcp`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcp.StartServer(openStore(), version)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
