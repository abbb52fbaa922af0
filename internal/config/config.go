package config

import (
	"fmt"
	"os"
	"strings"
)

// Bronze output formats.
const (
	FormatParquet = "parquet"
	FormatDelta   = "delta"
)

// Config holds all runtime configuration for a psplake run. Values come from
// CLI flags; the generation settings themselves live in Generation.
type Config struct {
	ConfigPath string
	DSN        string
	LogFormat  string // "text" or "json"
	LogLevel   string

	// Directory overrides; empty means "use the YAML output section".
	RawDir    string
	BronzeDir string

	Format  string   // FormatParquet or FormatDelta
	Sources []string // subset of model.TableNames to ingest/load; empty means all

	Scale string // overrides active_scale when set
	Seed  int64  // overrides project.random_seed when non-zero

	Bucket      string
	Prefix      string
	S3Endpoint  string
	S3PathStyle bool
}

// Validate checks required fields and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.ConfigPath == "" {
		return fmt.Errorf("--config is required")
	}
	if _, err := os.Stat(c.ConfigPath); err != nil {
		return fmt.Errorf("config file not accessible: %w", err)
	}
	switch c.Format {
	case "", FormatParquet, FormatDelta:
	default:
		return fmt.Errorf("unknown bronze format %q (want %s or %s)", c.Format, FormatParquet, FormatDelta)
	}
	if err := validateSources(c.Sources); err != nil {
		return err
	}
	return nil
}

// ValidateWithDSN checks both the config file and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or PSPLAKE_DB_URL is required")
	}
	return nil
}

// ValidateWithBucket checks the config file and object-store target.
func (c *Config) ValidateWithBucket() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Bucket == "" {
		return fmt.Errorf("--bucket is required")
	}
	c.Prefix = strings.Trim(c.Prefix, "/")
	return nil
}

// Load reads the YAML generation config and applies the CLI overrides.
func (c *Config) Load() (*Generation, error) {
	g, err := LoadGeneration(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	if c.Scale != "" {
		if _, ok := g.Scales[c.Scale]; !ok {
			return nil, fmt.Errorf("unknown scale %q in config", c.Scale)
		}
		g.ActiveScale = c.Scale
	}
	if c.Seed != 0 {
		g.Project.RandomSeed = c.Seed
	}
	if c.RawDir != "" {
		g.Output.BaseDir = c.RawDir
	}
	if c.BronzeDir != "" {
		g.Output.BronzeDir = c.BronzeDir
	}
	if c.Format == "" {
		c.Format = FormatParquet
	}
	return g, nil
}
