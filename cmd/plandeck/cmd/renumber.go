package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"plandeck/internal/adapters/filesystem"
	"plandeck/internal/adapters/git"
	"plandeck/internal/adapters/tui"
	"plandeck/internal/adapters/tui/styles"
	"plandeck/internal/adapters/tui/views"
	"plandeck/internal/application/commands"
)

var (
	renumberDryRun      bool
	renumberKeep        []string
	renumberBranchAware bool
	renumberTrunk       string
	renumberInteractive bool
)

var renumberCmd = &cobra.Command{
	Use:   "renumber",
	Short: "Repair duplicate and missing ids and reorder families",
	Long: `Renumber scans every plan file and rewrites ids so that:

  - every id is unique (duplicates keep their id in one file, the rest get fresh ids)
  - files without an id get a fresh id and are marked done
  - within each parent/child family, parents and prerequisites come first

References in parent and dependency fields are updated to follow the moved ids.
All writes succeed together or are rolled back.

Examples:
  plandeck renumber --dry-run
  plandeck renumber --keep plans/12-login.yml
  plandeck renumber --branch-aware --trunk main
  plandeck renumber -i`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		trunk := renumberTrunk
		if trunk == "" {
			trunk = cfg.Trunk
		}
		opts := commands.RenumberOptions{
			DryRun:      renumberDryRun || renumberInteractive,
			Keep:        renumberKeep,
			BranchAware: renumberBranchAware,
			Trunk:       trunk,
		}

		rc := commands.NewRenumberCommand(repo, filesystem.NewBatch(repo), opts).WithLogger(logger)
		if renumberBranchAware {
			changes := git.NewChanges(repo.Root())
			if !changes.IsAvailable() {
				return fmt.Errorf("--branch-aware needs %s to be inside a git work tree", repo.Root())
			}
			rc.WithBranchChanges(changes)
		}

		idx, err := openIndex(true)
		if err != nil {
			logger.Warn("index unavailable, it will be rebuilt on next sync", "error", err)
		}
		if idx != nil {
			defer idx.Close()
			rc.WithIndex(idx)
		}

		if renumberInteractive {
			return runInteractive(ctx, rc)
		}

		result, err := rc.Execute(ctx)
		if err != nil {
			return err
		}
		printRenumber(cmd, result)
		return nil
	},
}

func runInteractive(ctx context.Context, rc *commands.RenumberCommand) error {
	result, err := rc.Plan(ctx)
	if err != nil {
		return err
	}
	if !result.HasChanges() {
		fmt.Println(result.Message)
		return nil
	}

	app := tui.NewApp(rc, result, repo.Root())
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("interactive review failed: %w", err)
	}

	if app.Outcome() != tui.OutcomeApplied {
		fmt.Println(styles.MutedText.Render("Cancelled; no files changed"))
		return nil
	}
	fmt.Println(styles.Success.Render(app.Result().Message))
	return nil
}

func printRenumber(cmd *cobra.Command, result *commands.RenumberResult) {
	out := cmd.OutOrStdout()
	if result.Applied {
		fmt.Fprintln(out, styles.Success.Render(result.Message))
	} else {
		fmt.Fprintln(out, result.Message)
	}
	for _, c := range result.Changes {
		fmt.Fprint(out, views.RenderChange(repo.Root(), c))
	}
	for _, e := range result.CycleErrors {
		fmt.Fprintln(out, styles.WarningMsg.Render(fmt.Sprintf("skipped: %v", e)))
	}
}

func init() {
	rootCmd.AddCommand(renumberCmd)
	renumberCmd.Flags().BoolVarP(&renumberDryRun, "dry-run", "n", false, "show what would change without writing")
	renumberCmd.Flags().StringArrayVar(&renumberKeep, "keep", nil, "file that keeps its id on conflict (repeatable)")
	renumberCmd.Flags().BoolVar(&renumberBranchAware, "branch-aware", false, "renumber files changed on this branch rather than trunk's")
	renumberCmd.Flags().StringVar(&renumberTrunk, "trunk", "", "trunk branch for --branch-aware (default from config, or main)")
	renumberCmd.Flags().BoolVarP(&renumberInteractive, "interactive", "i", false, "review the changes before applying them")
}
