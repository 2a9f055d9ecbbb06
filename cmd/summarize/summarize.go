// Package summarize implements the summarize command: a standalone run of
// the extractive summarizer over a file or stdin.
package summarize

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsfuse/internal/logger"
	"github.com/jonesrussell/newsfuse/internal/memory"
	"github.com/jonesrussell/newsfuse/internal/summarizer"
)

// Command returns the summarize command.
func Command() *cobra.Command {
	var ratio float64

	cmd := &cobra.Command{
		Use:   "summarize [file]",
		Short: "Summarize a text file or stdin",
		Long: `Summarize runs the extractive summarizer over the given file, or
over stdin when no file is given. The summarizer needs no network or storage,
so this command runs without any backing services.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args)
			if err != nil {
				return err
			}

			flags := cmd.Root().PersistentFlags()
			debug, _ := flags.GetBool("debug")
			level := "warn"
			if debug {
				level = "debug"
			}
			log, err := logger.New(&logger.Config{Level: level, Encoding: "console"})
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}

			summ := summarizer.New(
				summarizer.Config{Ratio: ratio},
				memory.NewMonitor(0, 0, log),
				log,
			)
			fmt.Println(summ.Summarize(cmd.Context(), string(text)))
			return nil
		},
	}

	cmd.Flags().Float64VarP(&ratio, "ratio", "r", summarizer.DefaultRatio, "fraction of sentences to keep")
	return cmd
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", args[0], err)
		}
		return text, nil
	}
	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return text, nil
}
