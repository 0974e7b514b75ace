package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/neilberkman/cpl/pkg/ccsessions"
)

// MaxToolResultLength bounds each tool output in the rendered session, in
// characters
const MaxToolResultLength = 500

const ellipsis = "..."

// FormatSessionContent renders entries as labeled blocks separated by a
// blank line
func FormatSessionContent(entries []ccsessions.Entry) string {
	blocks := make([]string, 0, len(entries))
	for _, entry := range entries {
		blocks = append(blocks, formatEntry(entry))
	}
	return strings.Join(blocks, "\n\n")
}

func formatEntry(entry ccsessions.Entry) string {
	switch e := entry.(type) {
	case ccsessions.UserEntry:
		return "[user]\n" + e.Content
	case ccsessions.AssistantEntry:
		return "[assistant]\n" + e.Content
	case ccsessions.ToolUseEntry:
		return fmt.Sprintf("[tool_use: %s]\n%s", e.ToolName, prettyJSON(e.ToolInput))
	case ccsessions.ToolResultEntry:
		return fmt.Sprintf("[tool_result: %s]\n%s", e.ToolName, truncate(e.Output, MaxToolResultLength))
	default:
		panic(fmt.Sprintf("analyzer: unhandled entry type %T", entry))
	}
}

// truncate cuts s to max runes and marks the cut
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + ellipsis
}

// prettyJSON indents with two spaces and leaves <, > and & as written
func prettyJSON(v map[string]any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimRight(buf.String(), "\n")
}
