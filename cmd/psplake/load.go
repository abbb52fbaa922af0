package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gyeh/psplake/internal/db"
	"github.com/gyeh/psplake/internal/exitcode"
	"github.com/gyeh/psplake/internal/logging"
	"github.com/gyeh/psplake/internal/warehouse"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "COPY bronze tables into Postgres bronze.* tables",
	RunE:  runLoad,
}

func init() {
	f := loadCmd.Flags()
	f.StringVar(&cfg.BronzeDir, "bronze", "", "Bronze directory (default: output.bronze_dir)")
	f.StringSliceVar(&cfg.Sources, "sources", nil, "Tables to load (default: all)")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	gen, err := cfg.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load generation config")
		os.Exit(exitcode.ValidationError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN, 4)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	results, err := warehouse.Load(ctx, pool, warehouse.Options{
		BronzeDir: gen.Output.BronzeDir,
		Sources:   cfg.Sources,
	}, log)
	if err != nil {
		log.Error().Err(err).Msg("load failed")
		pool.Close()
		os.Exit(exitcode.CopyError)
	}

	fmt.Println("=== warehouse load summary ===")
	for _, r := range results {
		if r.Skipped {
			fmt.Printf("  %-30s skipped (not in bronze)\n", r.Table)
			continue
		}
		fmt.Printf("  %-30s %10d rows  %5.1fs  run %s\n", r.Table, r.CopiedRows, r.Duration.Seconds(), r.LoadRunID)
	}
	return nil
}
