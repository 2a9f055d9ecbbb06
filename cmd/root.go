// Package cmd implements the command-line interface for newsfuse. It
// provides the root command and subcommands for fusing, updating, and
// inspecting articles.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsfuse/cmd/fuse"
	"github.com/jonesrussell/newsfuse/cmd/schedule"
	"github.com/jonesrussell/newsfuse/cmd/search"
	"github.com/jonesrussell/newsfuse/cmd/summarize"
	"github.com/jonesrussell/newsfuse/cmd/update"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "newsfuse",
		Short: "Multi-source news fusion engine",
		Long: `Newsfuse assembles canonical news articles from many sources:
it pulls the current headlines, gathers diverse coverage of each story,
filters and summarizes the combined text, and selects images the sources
agree on.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("newsfuse version %s\n", version)
		},
	})

	rootCmd.AddCommand(fuse.Command())
	rootCmd.AddCommand(update.Command())
	rootCmd.AddCommand(summarize.Command())
	rootCmd.AddCommand(schedule.Command())
	rootCmd.AddCommand(search.Command())
}
