package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/psplake/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "psplake",
	Short: "Synthetic PSP dataset generator and bronze-layer loader",
	Long: "Generates a synthetic patient-support-program dataset (enrollments, cases, status history, " +
		"specialty pharmacy shipments, claims) and ingests it into a bronze lakehouse layer.",
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.ConfigPath, "config", "configs/data_generation_config.yaml", "Path to the data generation YAML config")
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("PSPLAKE_DB_URL"), "Postgres connection string (or set PSPLAKE_DB_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
