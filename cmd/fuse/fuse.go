// Package fuse implements the fuse command, which runs the process pipeline
// once: headlines in, canonical articles out.
package fuse

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsfuse/cmd/common"
	"github.com/jonesrussell/newsfuse/internal/pipeline"
)

// Command returns the fuse command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "fuse",
		Short: "Fuse the current headlines into canonical articles",
		Long: `Fuse pulls the current top headlines, gathers diverse coverage of
each story, and publishes one canonical article per headline that passes the
publish gate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.Bootstrap(cmd)
			if err != nil {
				return err
			}

			runner, err := deps.Registry.Get("process")
			if err != nil {
				return err
			}
			if err := deps.Store.EnsureIndex(cmd.Context()); err != nil {
				return err
			}

			result, err := runner.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("process run: %w", err)
			}
			renderResult("process", result)
			return nil
		},
	}
}

// renderResult prints one run's counters as a table.
func renderResult(name string, result pipeline.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Pipeline", "Processed", "Published", "Discarded", "Failed"})
	t.AppendRow(table.Row{name, result.Processed, result.Published, result.Discarded, result.Failed})
	t.Render()
}
