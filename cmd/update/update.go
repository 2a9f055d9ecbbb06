// Package update implements the update command, which refreshes stored
// articles with new coverage and crowd-sourced URLs.
package update

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsfuse/cmd/common"
)

// Command returns the update command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Refresh stored articles with new coverage",
		Long: `Update re-fetches each stored article's sources, folds in any
crowd-sourced URLs queued since the last pass, and re-runs fusion. Articles
whose refresh fails keep their stored version.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.Bootstrap(cmd)
			if err != nil {
				return err
			}

			runner, err := deps.Registry.Get("update")
			if err != nil {
				return err
			}
			if err := deps.Store.EnsureIndex(cmd.Context()); err != nil {
				return err
			}

			result, err := runner.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("update run: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Pipeline", "Processed", "Refreshed", "Discarded", "Failed"})
			t.AppendRow(table.Row{"update", result.Processed, result.Published, result.Discarded, result.Failed})
			t.Render()
			return nil
		},
	}
}
