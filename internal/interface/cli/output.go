package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/cpl/internal/core/catalog"
	"github.com/neilberkman/cpl/internal/core/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("cyan")).
			Bold(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("green"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("red")).
			Bold(true)

	typeColors = map[models.PatternType]lipgloss.Color{
		models.PatternTypePrompt:   lipgloss.Color("39"),
		models.PatternTypeSolution: lipgloss.Color("120"),
		models.PatternTypeCode:     lipgloss.Color("214"),
	}
)

func typeLabel(t models.PatternType) string {
	return lipgloss.NewStyle().Foreground(typeColors[t]).Render(fmt.Sprintf("%-8s", t))
}

// printPatternLine prints the one-line list form
func printPatternLine(w io.Writer, p models.Pattern) {
	line := fmt.Sprintf("%s  %s  %s", metaStyle.Render(catalog.ShortID(p.ID)), typeLabel(p.Type), p.Name)
	meta := humanize.Time(p.CreatedAt)
	if len(p.Tags) > 0 {
		meta += " · " + strings.Join(p.Tags, ", ")
	}
	_, _ = fmt.Fprintf(w, "%s  %s\n", line, metaStyle.Render(meta))
}

// printPattern prints every field of a pattern
func printPattern(w io.Writer, p models.Pattern) {
	_, _ = fmt.Fprintln(w, titleStyle.Render(p.Name))
	_, _ = fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("%s · %s · created %s", p.ID, p.Type, humanize.Time(p.CreatedAt))))
	_, _ = fmt.Fprintln(w)

	field := func(label, value string) {
		if value == "" {
			return
		}
		_, _ = fmt.Fprintln(w, labelStyle.Render(label))
		_, _ = fmt.Fprintln(w, value)
		_, _ = fmt.Fprintln(w)
	}
	field("Context", p.Context)
	field("Problem", p.Problem)
	field("Solution", p.Solution)
	field("Example", p.Example)
	field("Example Prompt", p.ExamplePrompt)
	field("Related", strings.Join(p.Related, ", "))
	field("Tags", strings.Join(p.Tags, ", "))
	field("Source Sessions", strings.Join(p.SourceSessions, ", "))
}

// printCandidate previews an extracted pattern before it is stored
func printCandidate(w io.Writer, c models.PatternInput) {
	_, _ = fmt.Fprintf(w, "%s %s\n", titleStyle.Render(c.Name), typeLabel(c.Type))
	_, _ = fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Context:"), c.Context)
	if c.Problem != "" {
		_, _ = fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Problem:"), c.Problem)
	}
	_, _ = fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Solution:"), c.Solution)
	if c.ExamplePrompt != "" {
		_, _ = fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Example Prompt:"), c.ExamplePrompt)
	}
	if len(c.Tags) > 0 {
		_, _ = fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Tags:"), strings.Join(c.Tags, ", "))
	}
}
