package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"plandeck/internal/adapters/clipboard"
	"plandeck/internal/adapters/editor"
	"plandeck/internal/adapters/tui/styles"
	"plandeck/internal/application"
	"plandeck/internal/application/commands"
	"plandeck/internal/ports"
)

var (
	nextCopy bool
	nextEdit bool
)

var nextCmd = &cobra.Command{
	Use:   "next <root-id>",
	Short: "Find the next plan ready to work on",
	Long: `Walk the dependencies and children of a root plan and pick the one to
work on next: in-progress plans first, then pending plans whose
dependencies are all done, by priority then id. Plans with priority
"maybe" are never picked.

Examples:
  plandeck next 12
  plandeck next 12 --copy
  plandeck next 12 --edit`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootID, err := application.ParsePlanID("rootID", args[0])
		if err != nil {
			return err
		}

		result, err := commands.NewNextCommand(repo, rootID).Execute(context.Background())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !result.Found() {
			fmt.Fprintln(out, result.Message)
			return nil
		}

		p := result.Plan
		fmt.Fprintln(out, styles.Success.Render(result.Message))
		fmt.Fprintf(out, "%s  %s  [%s]\n", styles.PlanID.Render(fmt.Sprintf("%d", p.ID)), p.Title, styles.Status(p.Status))
		fmt.Fprintln(out, result.Path())

		if nextCopy {
			if err := copyPath(clipboard.NewSystem(), result.Path()); err != nil {
				return err
			}
			fmt.Fprintln(out, styles.MutedText.Render("Copied path to clipboard"))
		}
		if nextEdit {
			return openInEditor(editor.NewOpener(), result.Path())
		}
		return nil
	},
}

func copyPath(c ports.Clipboard, path string) error {
	if err := c.Copy(path); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

func openInEditor(e ports.EditorOpener, path string) error {
	if err := e.OpenFile(path); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(nextCmd)
	nextCmd.Flags().BoolVarP(&nextCopy, "copy", "c", false, "copy the selected plan's path to the clipboard")
	nextCmd.Flags().BoolVarP(&nextEdit, "edit", "e", false, "open the selected plan in $EDITOR")
}
