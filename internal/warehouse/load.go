// Package warehouse copies bronze tables into Postgres bronze.* tables.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"github.com/gyeh/psplake/internal/bronze"
	"github.com/gyeh/psplake/internal/db"
	"github.com/gyeh/psplake/internal/model"
	"github.com/gyeh/psplake/internal/parquetio"
	embedsql "github.com/gyeh/psplake/internal/sql"
)

const (
	schemaName  = "bronze"
	runIDColumn = "load_run_id"
	copyBuffer  = 1024

	statusLoaded = "loaded"
	statusFailed = "failed"
)

// Options selects what to load.
type Options struct {
	BronzeDir string
	Sources   []string // empty means every table
}

// TableResult reports one table's load.
type TableResult struct {
	Table      string
	LoadRunID  uuid.UUID
	Format     string
	SourceRows int64
	CopiedRows int64
	Skipped    bool
	Duration   time.Duration
}

// Load copies every selected bronze table into Postgres. Each table is
// replaced inside one transaction and audited in bronze.load_runs.
func Load(ctx context.Context, pool *pgxpool.Pool, opts Options, log zerolog.Logger) ([]TableResult, error) {
	tables := model.AllTables
	if len(opts.Sources) > 0 {
		tables = nil
		for _, name := range opts.Sources {
			t, ok := model.TableByName(name)
			if !ok {
				return nil, fmt.Errorf("unknown source table %q", name)
			}
			tables = append(tables, t)
		}
	}

	var results []TableResult
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		tlog := log.With().Str("table", t.Name).Logger()
		loc, err := bronze.Locate(opts.BronzeDir, t)
		if err != nil {
			return results, err
		}
		if !loc.Found() {
			tlog.Warn().Str("bronze_dir", opts.BronzeDir).Msg("bronze table not found, skipping")
			results = append(results, TableResult{Table: t.Name, Skipped: true})
			continue
		}
		res, err := loadTable(ctx, pool, t, loc, tlog)
		if err != nil {
			return results, fmt.Errorf("load %s: %w", t.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func loadTable(ctx context.Context, pool *pgxpool.Pool, t model.Table, loc bronze.Location, log zerolog.Logger) (TableResult, error) {
	start := time.Now()
	runID := uuid.New()
	res := TableResult{Table: t.Name, LoadRunID: runID, Format: loc.Format}

	for _, f := range loc.Files {
		n, err := parquetio.CountRows(f)
		if err != nil {
			return res, err
		}
		res.SourceRows += n
	}

	if _, err := pool.Exec(ctx, embedsql.RegisterLoadRun, runID, t.Name, loc.Format, loc.Path, res.SourceRows); err != nil {
		return res, fmt.Errorf("register load run: %w", err)
	}
	log.Info().Str("load_run_id", runID.String()).Int64("rows", res.SourceRows).Msg("load run registered")

	copied, err := copyTable(ctx, pool, t, loc.Files, runID)
	if err == nil && copied != res.SourceRows {
		err = fmt.Errorf("row count mismatch: bronze %d, copied %d", res.SourceRows, copied)
	}
	if err != nil {
		if _, ferr := pool.Exec(context.WithoutCancel(ctx), embedsql.FinishLoadRun, runID, statusFailed, copied, err.Error()); ferr != nil {
			log.Warn().Err(ferr).Msg("failed to mark load run failed")
		}
		return res, err
	}

	if _, err := pool.Exec(ctx, embedsql.FinishLoadRun, runID, statusLoaded, copied, nil); err != nil {
		return res, fmt.Errorf("finish load run: %w", err)
	}

	res.CopiedRows = copied
	res.Duration = time.Since(start)
	log.Info().
		Int64("rows", copied).
		Str("duration", res.Duration.String()).
		Float64("rows_per_sec", float64(copied)/res.Duration.Seconds()).
		Msg("table loaded")
	return res, nil
}

// copyTable replaces bronze.<table> with the rows of files in one transaction
// and returns the number of rows the table holds for runID afterwards.
func copyTable(ctx context.Context, pool *pgxpool.Pool, t model.Table, files []string, runID uuid.UUID) (int64, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	ident := pgx.Identifier{schemaName, t.Name}
	if _, err := tx.Exec(ctx, "DELETE FROM "+ident.Sanitize()); err != nil {
		return 0, fmt.Errorf("clear table: %w", err)
	}

	for _, path := range files {
		if err := copyFile(ctx, tx, ident, path, runID); err != nil {
			return 0, err
		}
	}

	var copied int64
	q := fmt.Sprintf("SELECT count(*) FROM %s WHERE %s = $1", ident.Sanitize(), runIDColumn)
	if err := tx.QueryRow(ctx, q, runID).Scan(&copied); err != nil {
		return 0, fmt.Errorf("count copied rows: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return copied, nil
}

// copyFile streams one parquet file into COPY through a channel, converting
// each value to the Go type pgx expects for the target column.
func copyFile(ctx context.Context, tx pgx.Tx, ident pgx.Identifier, path string, runID uuid.UUID) error {
	columns, err := fileColumns(path)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		names = append(names, c.Name)
	}
	names = append(names, runIDColumn)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan []any, copyBuffer)
	errCh := make(chan error, 1)

	go func() {
		defer close(ch)
		errCh <- parquetio.Scan(path, func(_ *parquet.Schema, row parquet.Row) error {
			values := make([]any, 0, len(columns)+1)
			for _, c := range columns {
				values = append(values, parquetio.GoValue(c.Node, parquetio.ValueAt(row, c.Index)))
			}
			values = append(values, runID)
			select {
			case ch <- values:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	source := db.NewChannelSource(ch)
	_, copyErr := tx.CopyFrom(ctx, ident, names, source)
	if copyErr != nil {
		// Unblock the producer before waiting on it.
		cancel()
	}
	prodErr := <-errCh
	if prodErr != nil && copyErr == nil {
		return fmt.Errorf("read %s: %w", path, prodErr)
	}
	if copyErr != nil {
		return fmt.Errorf("copy %s: %w", path, copyErr)
	}
	return nil
}

func fileColumns(path string) ([]parquetio.Column, error) {
	f, pf, err := parquetio.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parquetio.Columns(pf.Schema()), nil
}
