// Package quality corrupts generated tables on purpose so downstream layers
// have realistic duplicates, missing values and impossible dates to clean.
package quality

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/psplake/internal/config"
	"github.com/gyeh/psplake/internal/sample"
)

// Column names a row field the injector may corrupt. Null is set for columns
// that may be nulled; SetTime for timestamp/date columns.
type Column[T any] struct {
	Name    string
	Null    func(row *T)
	SetTime func(row *T, ts time.Time)
}

// Report summarizes what an Inject call changed.
type Report struct {
	Duplicates  int
	Nulled      map[string]int
	FutureDates int
}

// Inject applies duplicate, null and future-date corruption to rows according
// to cfg. dateCols lists columns eligible for future dates, nullCols those
// eligible for nulls. Counts are computed from the row count before duplicates
// are appended; index draws cover the duplicated table. It returns rows
// unchanged when cfg.InjectIssues is false.
func Inject[T any](rows []T, cfg config.DataQuality, dateCols, nullCols []Column[T], s *sample.Sampler, now time.Time, log zerolog.Logger) ([]T, Report) {
	rep := Report{Nulled: make(map[string]int)}
	if !cfg.InjectIssues {
		return rows, rep
	}
	n := len(rows)

	if nDups := int(float64(n) * cfg.DuplicateRate); nDups > 0 {
		for _, i := range s.IndicesWithReplacement(n, nDups) {
			rows = append(rows, rows[i])
		}
		rep.Duplicates = nDups
		log.Warn().Int("rows", nDups).Msg("injected duplicate rows")
	}

	if len(nullCols) > 0 {
		nNulls := int(float64(n) * cfg.NullRateOptional)
		for _, col := range nullCols {
			if col.Null == nil || nNulls <= 0 || len(rows) == 0 {
				continue
			}
			idx := s.Indices(len(rows), nNulls)
			for _, i := range idx {
				col.Null(&rows[i])
			}
			rep.Nulled[col.Name] = len(idx)
		}
		log.Warn().Int("columns", len(nullCols)).Msg("injected nulls")
	}

	if nFuture := int(float64(n) * cfg.FutureDateRate); nFuture > 0 && len(dateCols) > 0 {
		for _, col := range dateCols {
			if col.SetTime == nil || len(rows) == 0 {
				continue
			}
			idx := s.Indices(len(rows), nFuture)
			future := now.Add(time.Duration(s.IntRange(1, 30)) * 24 * time.Hour)
			for _, i := range idx {
				col.SetTime(&rows[i], future)
			}
		}
		rep.FutureDates = nFuture
		log.Warn().Int("rows", nFuture).Msg("injected future dates")
	}

	return rows, rep
}

// Select returns the columns whose names appear in names, in the order of
// names. Unknown names are returned separately so callers can log them.
func Select[T any](available []Column[T], names []string) (selected []Column[T], unknown []string) {
	byName := make(map[string]Column[T], len(available))
	for _, c := range available {
		byName[c.Name] = c
	}
	for _, name := range names {
		c, ok := byName[name]
		if !ok || c.Null == nil {
			unknown = append(unknown, name)
			continue
		}
		selected = append(selected, c)
	}
	return selected, unknown
}
