package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/psplake/internal/exitcode"
	"github.com/gyeh/psplake/internal/inspect"
	"github.com/gyeh/psplake/internal/logging"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print counts, samples and audit checks for the bronze layer",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&cfg.BronzeDir, "bronze", "", "Bronze directory (default: output.bronze_dir)")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	gen, err := cfg.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load generation config")
		os.Exit(exitcode.ValidationError)
	}

	report, err := inspect.Inspect(gen.Output.BronzeDir, log)
	if err != nil {
		log.Error().Err(err).Msg("inspection failed")
		os.Exit(exitcode.ValidationError)
	}
	report.Print(os.Stdout)
	return nil
}
