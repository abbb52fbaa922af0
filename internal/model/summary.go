package model

import "time"

// TableStats captures metrics for one table produced by a generate or ingest run.
type TableStats struct {
	Table      string
	FilePath   string
	FileSHA256 string
	Rows       int64
	Bytes      int64
	Skipped    bool
	Duration   time.Duration
}

// GenerateSummary captures metrics from a full generation run.
type GenerateSummary struct {
	Scale         string
	Seed          int64
	OutputDir     string
	Tables        []TableStats
	DurationTotal time.Duration
}

// TotalRows sums rows across all written tables.
func (s *GenerateSummary) TotalRows() int64 {
	var n int64
	for _, t := range s.Tables {
		n += t.Rows
	}
	return n
}

// TotalBytes sums file sizes across all written tables.
func (s *GenerateSummary) TotalBytes() int64 {
	var n int64
	for _, t := range s.Tables {
		n += t.Bytes
	}
	return n
}

// IngestSummary captures metrics from a bronze ingestion run.
type IngestSummary struct {
	RawDir        string
	BronzeDir     string
	Format        string
	LoadedAt      time.Time
	Tables        []TableStats
	DurationTotal time.Duration
}

// Ingested returns how many tables were actually written (not skipped).
func (s *IngestSummary) Ingested() int {
	n := 0
	for _, t := range s.Tables {
		if !t.Skipped {
			n++
		}
	}
	return n
}
