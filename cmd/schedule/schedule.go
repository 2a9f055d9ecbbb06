// Package schedule implements the schedule command, which runs the process
// and update pipelines on a cron schedule.
package schedule

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsfuse/cmd/common"
)

// Command returns the schedule command.
func Command() *cobra.Command {
	var spec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the fusion pipelines on a cron schedule",
		Long: `Schedule runs the process pipeline on the configured cron
expression, followed by an update pass, until interrupted. The schedule
comes from app.schedule unless overridden with --cron.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.Bootstrap(cmd)
			if err != nil {
				return err
			}
			if spec == "" {
				spec = deps.Config.App.Schedule
			}
			if err := deps.Store.EnsureIndex(cmd.Context()); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, deps, spec)
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", "cron expression (default from app.schedule)")
	return cmd
}

func run(ctx context.Context, deps *common.Deps, spec string) error {
	process, err := deps.Registry.Get("process")
	if err != nil {
		return err
	}
	update, err := deps.Registry.Get("update")
	if err != nil {
		return err
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc(spec, func() {
		if _, runErr := process.Run(ctx); runErr != nil {
			deps.Logger.Error("scheduled process run failed", "error", runErr)
		}
		if _, runErr := update.Run(ctx); runErr != nil {
			deps.Logger.Error("scheduled update run failed", "error", runErr)
		}
	})
	if err != nil {
		return err
	}

	deps.Logger.Info("scheduler started", "cron", spec)
	scheduler.Start()

	<-ctx.Done()
	deps.Logger.Info("scheduler stopping")

	// Let an in-flight run finish before returning.
	<-scheduler.Stop().Done()
	return nil
}
