package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gyeh/psplake/internal/bronze"
	"github.com/gyeh/psplake/internal/exitcode"
	"github.com/gyeh/psplake/internal/logging"
)

var ingestAppend bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest generated parquet into the bronze layer with audit columns",
	RunE:  runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVar(&cfg.RawDir, "raw", "", "Raw parquet directory (default: output.base_dir)")
	f.StringVar(&cfg.BronzeDir, "bronze", "", "Bronze directory (default: output.bronze_dir)")
	f.StringVar(&cfg.Format, "format", "parquet", "Bronze format: parquet or delta")
	f.StringSliceVar(&cfg.Sources, "sources", nil, "Tables to ingest (default: all)")
	f.BoolVar(&ingestAppend, "append", false, "Delta only: append instead of overwriting the table")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	summary, err := bronze.Run(ctx, bronze.Options{
		RawDir:    gen.Output.BaseDir,
		BronzeDir: gen.Output.BronzeDir,
		Format:    cfg.Format,
		Sources:   cfg.Sources,
		Append:    ingestAppend,
	}, log)
	if err != nil {
		var pe *bronze.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Str("table", pe.Table).Msg("ingest failed")
			switch pe.Phase {
			case bronze.PhaseRead:
				os.Exit(exitcode.ValidationError)
			case bronze.PhaseVerify:
				os.Exit(exitcode.VerifyError)
			default:
				os.Exit(exitcode.IngestError)
			}
		}
		log.Error().Err(err).Msg("ingest failed")
		os.Exit(exitcode.IngestError)
	}

	fmt.Println("=== bronze ingestion summary ===")
	fmt.Printf("Raw:    %s\n", summary.RawDir)
	fmt.Printf("Bronze: %s (%s)\n", summary.BronzeDir, summary.Format)
	for _, t := range summary.Tables {
		if t.Skipped {
			fmt.Printf("  %-30s skipped (source not found)\n", t.Table)
			continue
		}
		fmt.Printf("  %-30s %10d rows  %8.2f MB  %5.1fs  verified\n",
			t.Table, t.Rows, float64(t.Bytes)/1024/1024, t.Duration.Seconds())
	}
	fmt.Printf("Ingested %d of %d tables in %.1fs\n", summary.Ingested(), len(summary.Tables), summary.DurationTotal.Seconds())
	return nil
}
