// Package generate synthesizes the PSP source tables from a generation config.
package generate

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/psplake/internal/config"
	"github.com/gyeh/psplake/internal/normalize"
	"github.com/gyeh/psplake/internal/sample"
)

const progressEvery = 5000

// Generator produces the PSP tables. Every table draws from its own sampler
// derived from the project seed, so a table's content depends only on the
// config and its upstream tables.
type Generator struct {
	cfg *config.Generation
	log zerolog.Logger
	now func() time.Time
}

// New returns a Generator for a validated config.
func New(cfg *config.Generation, log zerolog.Logger) *Generator {
	return &Generator{cfg: cfg, log: log, now: wallClock}
}

// wallClock matches the microsecond precision of the parquet timestamp columns.
func wallClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// WithClock overrides the wall clock used for created_at and future-date
// injection.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

func (g *Generator) sampler(stream string) *sample.Sampler {
	return sample.New(normalize.StreamSeed(g.cfg.Project.RandomSeed, stream))
}

func (g *Generator) qualitySampler(table string) *sample.Sampler {
	return g.sampler(table + "/quality")
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// idParts splits a generated "<PREFIX>-<year>-<seq>" id into its year and
// sequence parts.
func idParts(id string) (string, string) {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) != 3 {
		return id, "0"
	}
	return parts[1], parts[2]
}

func ptr[T any](v T) *T {
	return &v
}
