package normalize

import (
	"strings"
	"time"
)

// Date layouts accepted in config files.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate attempts to parse a date string in the supported layouts.
// Returns nil if the input is empty or unparseable.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// MonthPartition formats t as YYYY-MM for monthly partition columns.
func MonthPartition(t time.Time) string {
	return t.Format("2006-01")
}

// TruncateDay drops the time-of-day, keeping the calendar date at midnight UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
