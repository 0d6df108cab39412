package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"plandeck/internal/application/commands"
)

var indexFull bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the plan reference index",
}

var indexSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Bring the index up to date with the plans directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex(false)
		if err != nil {
			return fmt.Errorf("failed to open index: %w", err)
		}
		defer idx.Close()

		stats, err := commands.NewSyncIndexCommand(idx, indexFull).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d files: %d added, %d updated, %d removed (%s)\n",
			stats.FilesScanned, stats.NodesAdded, stats.NodesUpdated, stats.NodesDeleted, stats.Duration.Round(time.Millisecond))
		fmt.Fprintln(cmd.OutOrStdout(), idx.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexSyncCmd)
	indexSyncCmd.Flags().BoolVar(&indexFull, "full", false, "rebuild from scratch")
}
