package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/FilippoHoch/bisync-go/pkg/bisync"
	"github.com/FilippoHoch/bisync-go/pkg/configuration"
	"github.com/FilippoHoch/bisync-go/pkg/logging"
)

var runConfiguration struct {
	config  string
	dryRun  bool
	verbose bool
}

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Perform a single reconciliation pass over every configured pair",
	RunE:  runMain,
}

func init() {
	flags := runCommand.Flags()
	flags.StringVarP(&runConfiguration.config, "config", "c", "bisync.yaml", "Path to the pair configuration file")
	flags.BoolVar(&runConfiguration.dryRun, "dry-run", false, "Plan and log actions without performing them")
	flags.BoolVar(&runConfiguration.verbose, "verbose", false, "Log per-file scan decisions")
}

func runMain(command *cobra.Command, arguments []string) error {
	config, err := configuration.Load(runConfiguration.config)
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}

	pairs, err := config.ToInternal()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := logging.LevelInfo
	if runConfiguration.verbose {
		level = logging.LevelDebug
	}
	logger := logging.NewLogger(level)

	engine := bisync.Engine{Logger: logger}
	control := bisync.NewControl()

	callbacks := bisync.Callbacks{
		Log: func(line string) {
			logger.Println(line)
		},
		Progress: func(doneActions, totalActions int, doneBytes, totalBytes int64) {
			fmt.Printf("\r%d/%d actions, %s/%s",
				doneActions, totalActions,
				humanize.Bytes(uint64(doneBytes)), humanize.Bytes(uint64(totalBytes)),
			)
		},
		Status: func(bytesPerSecond float64, eta time.Duration, known bool) {
			if !known {
				fmt.Print(" (throughput unknown)")
				return
			}
			fmt.Printf(" (%s/s, eta %s)", humanize.Bytes(uint64(bytesPerSecond)), eta.Round(time.Second))
		},
	}

	engine.Run(pairs, control, callbacks, bisync.Options{
		RetentionDays: config.RetentionDays,
		DryRun:        runConfiguration.dryRun,
		Verbose:       runConfiguration.verbose,
	})
	fmt.Println()

	return nil
}
