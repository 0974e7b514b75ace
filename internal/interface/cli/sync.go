package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/neilberkman/cpl/internal/core/catalog"
	patternsync "github.com/neilberkman/cpl/internal/core/sync"
)

var (
	syncProject string
	syncGlobal  bool
	syncDryRun  bool
	syncForce   bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [pattern...]",
	Short: "Sync patterns into CLAUDE.md",
	Long: `Write the catalog to .claude/patterns.md and reference it from CLAUDE.md.

With arguments only the given patterns (ID, ID prefix or exact name) are
synced. The patterns section between the cpl markers is replaced; a
document without markers gets a new section appended.

Examples:
  cpl sync                       # current project
  cpl sync --project ~/src/app
  cpl sync --global              # ~/.claude/CLAUDE.md
  cpl sync 3f2a9c1e --dry-run`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringVarP(&syncProject, "project", "p", "", "Project directory (default current directory)")
	syncCmd.Flags().BoolVarP(&syncGlobal, "global", "g", false, "Sync ~/.claude/CLAUDE.md")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Show the diff without writing")
	syncCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "Do not ask for confirmation")
}

func runSync(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	syncer := patternsync.NewSyncer(openStore())

	plan, err := syncer.Plan(patternsync.Options{
		ProjectDir:  syncProject,
		Global:      syncGlobal,
		DryRun:      syncDryRun,
		Identifiers: args,
	})
	if err != nil {
		if errors.Is(err, patternsync.ErrEmptyCatalog) {
			_, _ = fmt.Fprintln(out, "No patterns to sync. Run 'cpl analyze' or 'cpl add' first.")
			return nil
		}
		return err
	}

	printPlan(out, plan)

	if syncDryRun {
		return nil
	}

	if !syncForce && plan.Changed() {
		ok, err := newPrompter(cmd.InOrStdin(), out).confirm("Apply these changes?")
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := syncer.Apply(plan); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "%s %d pattern(s) to %s\n", successStyle.Render("Synced"), len(plan.Patterns), plan.TargetPath)
	return nil
}

func printPlan(w io.Writer, plan *patternsync.Plan) {
	_, _ = fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Target:"), plan.TargetPath)
	_, _ = fmt.Fprintf(w, "%s %s (%d pattern(s))\n", labelStyle.Render("Detail:"), plan.DetailPath, len(plan.Patterns))
	if !plan.Changed() {
		if plan.DryRun && !plan.Original.HasSection() {
			_, _ = fmt.Fprintln(w, metaStyle.Render("No cpl section yet; a real sync would append one"))
		} else {
			_, _ = fmt.Fprintln(w, metaStyle.Render("CLAUDE.md already up to date"))
		}
		return
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprint(w, plan.Diff())
	_, _ = fmt.Fprintln(w)
}

// syncTargets applies a full sync to every configured project, or to the
// global CLAUDE.md when none are configured
func syncTargets(store *catalog.Store, projects []string) error {
	syncer := patternsync.NewSyncer(store)

	targets := make([]patternsync.Options, 0, len(projects))
	for _, p := range projects {
		targets = append(targets, patternsync.Options{ProjectDir: p})
	}
	if len(targets) == 0 {
		targets = append(targets, patternsync.Options{Global: true})
	}

	var errs []error
	for _, opts := range targets {
		plan, err := syncer.Plan(opts)
		if err != nil {
			if errors.Is(err, patternsync.ErrEmptyCatalog) {
				return nil
			}
			errs = append(errs, err)
			continue
		}
		if err := syncer.Apply(plan); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
