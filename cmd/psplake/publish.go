package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gyeh/psplake/internal/exitcode"
	"github.com/gyeh/psplake/internal/logging"
	"github.com/gyeh/psplake/internal/objstore"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload the bronze directory to S3-compatible storage",
	RunE:  runPublish,
}

func init() {
	f := publishCmd.Flags()
	f.StringVar(&cfg.BronzeDir, "bronze", "", "Bronze directory (default: output.bronze_dir)")
	f.StringVar(&cfg.Bucket, "bucket", "", "Target bucket (required)")
	f.StringVar(&cfg.Prefix, "prefix", "bronze", "Key prefix inside the bucket")
	f.StringVar(&cfg.S3Endpoint, "endpoint", os.Getenv("PSPLAKE_S3_ENDPOINT"), "S3 endpoint override (MinIO, LocalStack)")
	f.BoolVar(&cfg.S3PathStyle, "path-style", false, "Use path-style bucket addressing")
	_ = publishCmd.MarkFlagRequired("bucket")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.ValidateWithBucket(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	gen, err := cfg.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load generation config")
		os.Exit(exitcode.ValidationError)
	}

	client, err := objstore.NewClient(ctx, cfg.S3Endpoint, cfg.S3PathStyle)
	if err != nil {
		log.Error().Err(err).Msg("failed to build s3 client")
		os.Exit(exitcode.UsageError)
	}

	summary, err := objstore.Publish(ctx, client, objstore.Options{
		Dir:    gen.Output.BronzeDir,
		Bucket: cfg.Bucket,
		Prefix: cfg.Prefix,
	}, log)
	if err != nil {
		log.Error().Err(err).Msg("publish failed")
		os.Exit(exitcode.PublishError)
	}

	fmt.Printf("Published %d objects (%.2f MB) to s3://%s/%s in %.1fs\n",
		len(summary.Objects), float64(summary.TotalBytes())/1024/1024,
		cfg.Bucket, cfg.Prefix, summary.Duration.Seconds())
	return nil
}
