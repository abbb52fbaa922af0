// Package bronze copies generated source tables into the bronze layer,
// tagging every row with when and from where it was loaded.
package bronze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"github.com/gyeh/psplake/internal/config"
	"github.com/gyeh/psplake/internal/model"
	"github.com/gyeh/psplake/internal/normalize"
	"github.com/gyeh/psplake/internal/parquetio"
)

const readBatch = 1024

// Options controls one ingestion run.
type Options struct {
	RawDir    string
	BronzeDir string
	Format    string   // config.FormatParquet or config.FormatDelta
	Sources   []string // empty means every table
	Append    bool     // delta only: keep previously committed files live

	// Now stamps _bronze_loaded_at; defaults to time.Now.
	Now func() time.Time
}

func (o Options) tables() ([]model.Table, error) {
	if len(o.Sources) == 0 {
		return model.AllTables, nil
	}
	out := make([]model.Table, 0, len(o.Sources))
	for _, name := range o.Sources {
		t, ok := model.TableByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown source table %q", name)
		}
		out = append(out, t)
	}
	return out, nil
}

// Run ingests every selected source table present in RawDir. Missing sources
// are logged and reported as skipped.
func Run(ctx context.Context, opts Options, log zerolog.Logger) (*model.IngestSummary, error) {
	totalStart := time.Now()
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Format == "" {
		opts.Format = config.FormatParquet
	}
	if opts.Format != config.FormatParquet && opts.Format != config.FormatDelta {
		return nil, fmt.Errorf("unknown bronze format %q", opts.Format)
	}
	tables, err := opts.tables()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.BronzeDir, 0o755); err != nil {
		return nil, &PipelineError{Phase: PhaseWrite, Err: fmt.Errorf("create bronze dir: %w", err)}
	}

	summary := &model.IngestSummary{
		RawDir:    opts.RawDir,
		BronzeDir: opts.BronzeDir,
		Format:    opts.Format,
		LoadedAt:  opts.Now().UTC(),
	}

	log.Info().
		Str("raw_dir", opts.RawDir).
		Str("bronze_dir", opts.BronzeDir).
		Str("format", opts.Format).
		Int("tables", len(tables)).
		Msg("starting bronze ingestion")

	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tlog := log.With().Str("table", t.Name).Logger()
		stats, err := ingestTable(ctx, t, opts, tlog)
		if err != nil {
			return nil, err
		}
		summary.Tables = append(summary.Tables, stats)
	}

	summary.DurationTotal = time.Since(totalStart)
	log.Info().
		Int("ingested", summary.Ingested()).
		Int("tables", len(summary.Tables)).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("bronze ingestion complete")
	return summary, nil
}

func ingestTable(ctx context.Context, t model.Table, opts Options, log zerolog.Logger) (model.TableStats, error) {
	start := time.Now()
	srcPath := filepath.Join(opts.RawDir, t.File())

	if _, err := os.Stat(srcPath); errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", srcPath).Msg("source not found, skipping")
		return model.TableStats{Table: t.Name, FilePath: srcPath, Skipped: true}, nil
	}

	sha, err := normalize.FileHash(srcPath)
	if err != nil {
		return model.TableStats{}, &PipelineError{Phase: PhaseRead, Table: t.Name, Err: err}
	}
	f, pf, err := parquetio.OpenFile(srcPath)
	if err != nil {
		return model.TableStats{}, &PipelineError{Phase: PhaseRead, Table: t.Name, Err: err}
	}
	defer f.Close()

	srcRows := pf.NumRows()
	log.Info().Str("path", srcPath).Int64("rows", srcRows).Msg("reading source")

	if err := parquetio.RequireColumns(pf.Schema(), t.MonthColumn); err != nil {
		return model.TableStats{}, &PipelineError{Phase: PhaseRead, Table: t.Name, Err: err}
	}
	schema, err := auditSchema(pf.Schema())
	if err != nil {
		return model.TableStats{}, &PipelineError{Phase: PhaseRead, Table: t.Name, Err: err}
	}
	if opts.Format == config.FormatDelta {
		if _, err := schemaString(schema); err != nil {
			return model.TableStats{}, &PipelineError{Phase: PhaseRead, Table: t.Name, Err: err}
		}
	}
	loadedAt := opts.Now().UTC().Truncate(time.Microsecond)
	mapper, err := newRowMapper(pf.Schema(), schema, loadedAt, t.File())
	if err != nil {
		return model.TableStats{}, &PipelineError{Phase: PhaseRead, Table: t.Name, Err: err}
	}

	var outPath, tableDir, partName string
	switch opts.Format {
	case config.FormatDelta:
		tableDir = filepath.Join(opts.BronzeDir, t.Name)
		partName = partFileName()
		outPath = filepath.Join(tableDir, partName)
	default:
		outPath = filepath.Join(opts.BronzeDir, t.File())
	}

	written, size, err := writeBronze(ctx, pf, schema, mapper, outPath, t.File())
	if err != nil {
		return model.TableStats{}, &PipelineError{Phase: PhaseWrite, Table: t.Name, Err: err}
	}

	verified, err := parquetio.CountRows(outPath)
	if err != nil {
		return model.TableStats{}, &PipelineError{Phase: PhaseVerify, Table: t.Name, Err: err}
	}
	if verified != srcRows || written != srcRows {
		return model.TableStats{}, &PipelineError{Phase: PhaseVerify, Table: t.Name,
			Err: fmt.Errorf("row count mismatch: source %d, written %d, read back %d", srcRows, written, verified)}
	}

	if opts.Format == config.FormatDelta {
		version, err := commitDelta(tableDir, partName, schema, size, verified, !opts.Append, loadedAt)
		if err != nil {
			os.Remove(outPath)
			return model.TableStats{}, &PipelineError{Phase: PhaseWrite, Table: t.Name, Err: err}
		}
		log.Debug().Int64("version", version).Str("file", partName).Msg("delta commit written")
		outPath = tableDir
	}

	dur := time.Since(start)
	log.Info().
		Int64("rows", verified).
		Int64("bytes", size).
		Str("path", outPath).
		Str("duration", dur.String()).
		Float64("rows_per_sec", float64(verified)/dur.Seconds()).
		Msg("verification passed")

	return model.TableStats{
		Table:      t.Name,
		FilePath:   outPath,
		FileSHA256: sha,
		Rows:       verified,
		Bytes:      size,
		Duration:   dur,
	}, nil
}

// writeBronze streams every row group of pf through mapper into a new snappy
// parquet file at path. The file is written under a temporary name and
// renamed into place once complete.
func writeBronze(ctx context.Context, pf *parquet.File, schema *parquet.Schema, mapper *rowMapper, path, source string) (int64, int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, 0, fmt.Errorf("create bronze dir: %w", err)
	}
	tmp := path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, 0, fmt.Errorf("create bronze file: %w", err)
	}
	fail := func(err error) (int64, int64, error) {
		out.Close()
		os.Remove(tmp)
		return 0, 0, err
	}

	w := parquet.NewWriter(out, schema,
		parquet.Compression(&parquet.Snappy),
		parquet.KeyValueMetadata("psplake.bronze_source", source),
	)

	buf := make([]parquet.Row, readBatch)
	mapped := make([]parquet.Row, readBatch)
	var written int64
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		for {
			if err := ctx.Err(); err != nil {
				rows.Close()
				return fail(err)
			}
			n, readErr := rows.ReadRows(buf)
			for i := 0; i < n; i++ {
				mapped[i] = mapper.mapRow(mapped[i], buf[i])
			}
			if n > 0 {
				if _, err := w.WriteRows(mapped[:n]); err != nil {
					rows.Close()
					return fail(fmt.Errorf("write bronze rows: %w", err))
				}
				written += int64(n)
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				rows.Close()
				return fail(fmt.Errorf("read source rows: %w", readErr))
			}
		}
		if err := rows.Close(); err != nil {
			return fail(fmt.Errorf("close row group: %w", err))
		}
	}

	if err := w.Close(); err != nil {
		return fail(fmt.Errorf("close parquet writer: %w", err))
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return 0, 0, fmt.Errorf("close bronze file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, 0, fmt.Errorf("rename bronze file: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return 0, 0, fmt.Errorf("stat bronze file: %w", err)
	}
	return written, stat.Size(), nil
}
