package db

import (
	"github.com/jackc/pgx/v5"
)

// ChannelSource implements pgx.CopyFromSource over rows already converted to
// COPY column order. The producer closes the channel when done.
type ChannelSource struct {
	ch      <-chan []any
	current []any
	rows    int64
}

// NewChannelSource creates a CopyFromSource backed by ch.
func NewChannelSource(ch <-chan []any) *ChannelSource {
	return &ChannelSource{ch: ch}
}

// Next advances to the next row. Returns false once the channel is closed.
func (s *ChannelSource) Next() bool {
	row, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = row
	s.rows++
	return true
}

// Values returns the current row.
func (s *ChannelSource) Values() ([]any, error) {
	return s.current, nil
}

// Err always returns nil; producers report failures on their own channel.
func (s *ChannelSource) Err() error {
	return nil
}

// Rows returns how many rows have been handed to COPY so far.
func (s *ChannelSource) Rows() int64 {
	return s.rows
}

var _ pgx.CopyFromSource = (*ChannelSource)(nil)
