package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gyeh/psplake/internal/exitcode"
	"github.com/gyeh/psplake/internal/generate"
	"github.com/gyeh/psplake/internal/logging"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the synthetic PSP tables as parquet",
	RunE:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&cfg.Scale, "scale", "", "Scale preset to use instead of active_scale")
	f.Int64Var(&cfg.Seed, "seed", 0, "Random seed override")
	f.StringVar(&cfg.RawDir, "out", "", "Output directory (default: output.base_dir)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	gen, err := cfg.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load generation config")
		os.Exit(exitcode.ValidationError)
	}

	summary, err := generate.Run(ctx, gen, log)
	if err != nil {
		if errors.Is(err, generate.ErrPhaseDisabled) {
			log.Error().Err(err).Msg("nothing to generate")
			os.Exit(exitcode.ValidationError)
		}
		log.Error().Err(err).Msg("generation failed")
		os.Exit(exitcode.GenerateError)
	}

	fmt.Println("=== generation summary ===")
	fmt.Printf("Scale:  %s (seed %d)\n", summary.Scale, summary.Seed)
	fmt.Printf("Output: %s\n", summary.OutputDir)
	for _, t := range summary.Tables {
		fmt.Printf("  %-30s %10d rows  %8.2f MB  %s\n", t.Table, t.Rows, float64(t.Bytes)/1024/1024, shortSHA(t.FileSHA256))
	}
	fmt.Printf("Total: %d rows, %.2f MB in %.1fs\n",
		summary.TotalRows(), float64(summary.TotalBytes())/1024/1024, summary.DurationTotal.Seconds())
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
