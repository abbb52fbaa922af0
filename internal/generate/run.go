package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/psplake/internal/config"
	"github.com/gyeh/psplake/internal/model"
	"github.com/gyeh/psplake/internal/normalize"
	"github.com/gyeh/psplake/internal/parquetio"
)

// ErrPhaseDisabled is returned when phase 1 is switched off in the config.
var ErrPhaseDisabled = errors.New("phase1 is disabled in config")

// Dataset holds every generated table in memory.
type Dataset struct {
	Enrollments   []model.Enrollment
	Cases         []model.Case
	StatusHistory []model.StatusRecord
	Shipments     []model.Shipment
	Claims        []model.Claim
}

// Rows returns the row count of the named table.
func (d *Dataset) Rows(table string) int {
	switch table {
	case model.TableEnrollments:
		return len(d.Enrollments)
	case model.TableCases:
		return len(d.Cases)
	case model.TableStatusHistory:
		return len(d.StatusHistory)
	case model.TableShipments:
		return len(d.Shipments)
	case model.TableClaims:
		return len(d.Claims)
	}
	return 0
}

// Build generates all tables in dependency order without touching disk.
func (g *Generator) Build(ctx context.Context) (*Dataset, error) {
	d := &Dataset{}
	steps := []struct {
		table string
		run   func()
	}{
		{model.TableEnrollments, func() { d.Enrollments = g.Enrollments() }},
		{model.TableCases, func() { d.Cases = g.Cases(d.Enrollments) }},
		{model.TableStatusHistory, func() { d.StatusHistory = g.StatusHistory(d.Cases, d.Enrollments) }},
		{model.TableShipments, func() { d.Shipments = g.Shipments(d.Enrollments) }},
		{model.TableClaims, func() { d.Claims = g.Claims(d.Enrollments, d.Shipments) }},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		step.run()
		dur := time.Since(start)
		rows := d.Rows(step.table)
		g.log.Info().
			Str("table", step.table).
			Int("rows", rows).
			Str("duration", dur.String()).
			Float64("rows_per_sec", float64(rows)/dur.Seconds()).
			Msg("table generated")
	}
	return d, nil
}

// Run generates the dataset and writes the phase 1 sources as snappy parquet
// into the configured output directory.
func Run(ctx context.Context, cfg *config.Generation, log zerolog.Logger) (*model.GenerateSummary, error) {
	return New(cfg, log).Run(ctx)
}

// Run is the method form of the package-level Run, honoring WithClock.
func (g *Generator) Run(ctx context.Context) (*model.GenerateSummary, error) {
	totalStart := time.Now()
	cfg := g.cfg

	if !cfg.Phases.Phase1.Enabled {
		return nil, ErrPhaseDisabled
	}

	outDir := cfg.Output.BaseDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	g.log.Info().
		Str("scale", cfg.ActiveScale).
		Str("label", cfg.Scale().Label).
		Int64("seed", cfg.Project.RandomSeed).
		Strs("sources", cfg.Phases.Phase1.Sources).
		Str("output", outDir).
		Msg("starting generation")

	d, err := g.Build(ctx)
	if err != nil {
		return nil, err
	}

	summary := &model.GenerateSummary{
		Scale:     cfg.ActiveScale,
		Seed:      cfg.Project.RandomSeed,
		OutputDir: outDir,
	}
	for _, t := range model.AllTables {
		if !cfg.WritesSource(t.Name) {
			continue
		}
		stats, err := writeTable(d, t, outDir)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", t.Name, err)
		}
		g.log.Info().
			Str("table", t.Name).
			Int64("rows", stats.Rows).
			Int64("bytes", stats.Bytes).
			Str("path", stats.FilePath).
			Msg("table written")
		summary.Tables = append(summary.Tables, stats)
	}

	summary.DurationTotal = time.Since(totalStart)
	g.log.Info().
		Int64("rows", summary.TotalRows()).
		Int64("bytes", summary.TotalBytes()).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("generation complete")
	return summary, nil
}

func writeTable(d *Dataset, t model.Table, dir string) (model.TableStats, error) {
	start := time.Now()
	path := filepath.Join(dir, t.File())

	var size int64
	var err error
	switch t.Name {
	case model.TableEnrollments:
		size, err = parquetio.WriteFile(path, d.Enrollments)
	case model.TableCases:
		size, err = parquetio.WriteFile(path, d.Cases)
	case model.TableStatusHistory:
		size, err = parquetio.WriteFile(path, d.StatusHistory)
	case model.TableShipments:
		size, err = parquetio.WriteFile(path, d.Shipments)
	case model.TableClaims:
		size, err = parquetio.WriteFile(path, d.Claims)
	default:
		err = fmt.Errorf("unknown table %q", t.Name)
	}
	if err != nil {
		return model.TableStats{}, err
	}
	sha, err := normalize.FileHash(path)
	if err != nil {
		return model.TableStats{}, err
	}
	return model.TableStats{
		Table:      t.Name,
		FilePath:   path,
		FileSHA256: sha,
		Rows:       int64(d.Rows(t.Name)),
		Bytes:      size,
		Duration:   time.Since(start),
	}, nil
}
