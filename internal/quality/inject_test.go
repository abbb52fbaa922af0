package quality

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/psplake/internal/config"
	"github.com/gyeh/psplake/internal/sample"
)

type row struct {
	ID   int
	Note *string
	TS   time.Time
}

var (
	noteCol = Column[row]{Name: "note", Null: func(r *row) { r.Note = nil }}
	tsCol   = Column[row]{Name: "ts", SetTime: func(r *row, t time.Time) { r.TS = t }}
)

func rows(n int) []row {
	out := make([]row, n)
	for i := range out {
		note := "x"
		out[i] = row{ID: i, Note: &note, TS: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	}
	return out
}

func TestInject_Disabled(t *testing.T) {
	in := rows(100)
	out, rep := Inject(in, config.DataQuality{DuplicateRate: 0.5}, nil, []Column[row]{noteCol}, sample.New(1), time.Now(), zerolog.Nop())
	if len(out) != 100 || rep.Duplicates != 0 {
		t.Errorf("disabled injection changed rows: len=%d report=%+v", len(out), rep)
	}
}

func TestInject_Counts(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cfg := config.DataQuality{
		InjectIssues:     true,
		DuplicateRate:    0.05,
		NullRateOptional: 0.10,
		FutureDateRate:   0.02,
	}
	out, rep := Inject(rows(1000), cfg, []Column[row]{tsCol}, []Column[row]{noteCol}, sample.New(3), now, zerolog.Nop())

	if len(out) != 1050 || rep.Duplicates != 50 {
		t.Errorf("expected 50 duplicates, got len=%d dups=%d", len(out), rep.Duplicates)
	}

	nulls := 0
	future := 0
	for _, r := range out {
		if r.Note == nil {
			nulls++
		}
		if r.TS.After(now) {
			future++
			if r.TS.After(now.Add(30 * 24 * time.Hour)) {
				t.Errorf("future date %v beyond 30 days", r.TS)
			}
		}
	}
	if nulls != 100 || rep.Nulled["note"] != 100 {
		t.Errorf("expected 100 nulls, got %d (report %d)", nulls, rep.Nulled["note"])
	}
	if future != 20 || rep.FutureDates != 20 {
		t.Errorf("expected 20 future dates, got %d (report %d)", future, rep.FutureDates)
	}
}

func TestSelect(t *testing.T) {
	sel, unknown := Select([]Column[row]{noteCol, tsCol}, []string{"note", "ts", "missing"})
	if len(sel) != 1 || sel[0].Name != "note" {
		t.Errorf("selected = %v", sel)
	}
	if len(unknown) != 2 {
		t.Errorf("unknown = %v, want ts (not nullable) and missing", unknown)
	}
}
