package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"plandeck/internal/adapters/tui/styles"
	"plandeck/internal/application"
	"plandeck/internal/application/commands"
)

var dependentsCmd = &cobra.Command{
	Use:   "dependents <id>",
	Short: "Show plans that depend on or are children of a plan",
	Long: `Query the reference index for every plan whose parent or dependencies
name the given id. The index is brought up to date first.

Examples:
  plandeck dependents 12`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		id, err := application.ParsePlanID("planID", args[0])
		if err != nil {
			return err
		}

		idx, err := openIndex(false)
		if err != nil {
			return fmt.Errorf("failed to open index: %w", err)
		}
		defer idx.Close()

		if _, err := commands.NewSyncIndexCommand(idx, false).Execute(ctx); err != nil {
			return err
		}
		result, err := commands.NewDependentsCommand(idx, id).Execute(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  %s\n", styles.PlanID.Render(fmt.Sprintf("%d", id)), result.Target.Title)
		if len(result.Dependents) == 0 {
			fmt.Fprintln(out, styles.MutedText.Render("  nothing references this plan"))
			return nil
		}
		for _, d := range result.Dependents {
			fmt.Fprintf(out, "  %-10s %s  %s  %s\n",
				d.Kind,
				styles.PlanID.Render(fmt.Sprintf("%d", d.Node.PlanID)),
				d.Node.Title,
				styles.MutedText.Render(d.Node.Path))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dependentsCmd)
}
