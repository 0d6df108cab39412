package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"plandeck/internal/adapters/tui/styles"
	"plandeck/internal/application/commands"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans ordered by id",
	Long: `List every plan file ordered by id. Files sharing an id are all listed;
files without an id come last.

Examples:
  plandeck list
  plandeck list --status in_progress`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := commands.NewListPlansCommand(repo, listStatus).Execute(context.Background())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, f := range files {
			id := "-"
			if f.Plan.HasID() {
				id = fmt.Sprintf("%d", f.Plan.ID)
			}
			rel, err := filepath.Rel(repo.Root(), f.Path)
			if err != nil {
				rel = f.Path
			}
			priority := lipgloss.NewStyle().Foreground(styles.PriorityColor(f.Plan.Priority)).Render(string(f.Plan.Priority))
			fmt.Fprintf(out, "%s  %-12s %-7s %s  %s\n",
				styles.PlanID.Render(fmt.Sprintf("%4s", id)),
				styles.Status(f.Plan.Status),
				priority,
				f.Plan.Title,
				styles.MutedText.Render(rel))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "only list plans with this status")
}
