package common

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsfuse/internal/config"
	"github.com/jonesrussell/newsfuse/internal/logger"
)

// Bootstrap loads configuration, creates the logger, and wires the
// dependency graph for a command. The --config and --debug flags are read
// from the root command's persistent flags.
func Bootstrap(cmd *cobra.Command) (*Deps, error) {
	flags := cmd.Root().PersistentFlags()
	cfgPath, _ := flags.GetString("config")
	debug, _ := flags.GetBool("debug")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if debug {
		cfg.App.Debug = true
		cfg.Logger.Level = "debug"
		cfg.Logger.Development = true
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return Build(cfg, log)
}
