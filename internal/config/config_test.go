package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
active_scale: test
scales:
  test:
    enrollments: 100
    years_of_data: 1
    start_date: "2024-01-01"
    end_date: "2024-12-31"
dimensions:
  channels: [{name: FAX, weight: 1}]
  hub_vendors: [{name: HUB_A, weight: 1}]
  program_types: [{name: COPAY_ONLY, weight: 1}]
  products:
    - {product_id: PROD-001, product_name: Drug, indication: Psoriasis, ndc: "00000-0000-01", weight: 1}
  payers:
    - {payer_id: ELEV-001, payer_name: Elevance Health, weight: 1}
  plan_types: [{name: COMMERCIAL, weight: 1}]
  prescriber_specialties: [{name: DERMATOLOGY, weight: 1}]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGeneration_Defaults(t *testing.T) {
	g, err := LoadGeneration(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadGeneration: %v", err)
	}
	if g.Project.RandomSeed != 42 {
		t.Errorf("seed = %d, want 42", g.Project.RandomSeed)
	}
	if g.FunnelRates.FirstShipment != 0.45 {
		t.Errorf("first_shipment = %g, want 0.45", g.FunnelRates.FirstShipment)
	}
	if len(g.Timing.RefillCadence) != 2 {
		t.Errorf("expected default refill cadence, got %v", g.Timing.RefillCadence)
	}
	if !g.Phases.Phase1.Enabled || len(g.Phases.Phase1.Sources) != 5 {
		t.Errorf("unexpected default phase1: %+v", g.Phases.Phase1)
	}
	if g.Output.BaseDir != "data/raw_samples" || g.Output.BronzeDir != "data/bronze" {
		t.Errorf("unexpected default output: %+v", g.Output)
	}

	s := g.Scale()
	if !s.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", s.Start)
	}
	if !s.End.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", s.End)
	}
}

func TestLoadGeneration_ExampleConfig(t *testing.T) {
	g, err := LoadGeneration(filepath.Join("..", "..", "configs", "data_generation_config.yaml"))
	if err != nil {
		t.Fatalf("LoadGeneration: %v", err)
	}
	if got := g.ScaleNames(); len(got) < 2 {
		t.Errorf("expected several scales, got %v", got)
	}
	found := false
	for _, p := range g.Dimensions.Payers {
		if p.PayerID == "ELEV-001" {
			found = true
		}
	}
	if !found {
		t.Error("expected ELEV-001 payer in example config")
	}
}

func TestParseGeneration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name:    "unknown active scale",
			mutate:  func(s string) string { return strings.Replace(s, "active_scale: test", "active_scale: huge", 1) },
			wantErr: "active_scale",
		},
		{
			name: "end before start",
			mutate: func(s string) string {
				return strings.Replace(s, `end_date: "2024-12-31"`, `end_date: "2023-12-31"`, 1)
			},
			wantErr: "before start_date",
		},
		{
			name: "bad date",
			mutate: func(s string) string {
				return strings.Replace(s, `start_date: "2024-01-01"`, `start_date: "yesterday"`, 1)
			},
			wantErr: "invalid start_date",
		},
		{
			name: "zero weights",
			mutate: func(s string) string {
				return strings.Replace(s, "{name: FAX, weight: 1}", "{name: FAX, weight: 0}", 1)
			},
			wantErr: "channels",
		},
		{
			name:    "rate out of range",
			mutate:  func(s string) string { return s + "funnel_rates:\n  first_shipment: 1.5\n" },
			wantErr: "first_shipment",
		},
		{
			name:    "unknown source",
			mutate:  func(s string) string { return s + "phases:\n  phase1:\n    enabled: true\n    sources: [bogus]\n" },
			wantErr: "bogus",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGeneration([]byte(tt.mutate(minimalYAML)))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadGeneration_MissingFile(t *testing.T) {
	if _, err := LoadGeneration("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWithScale(t *testing.T) {
	g, err := ParseGeneration([]byte(minimalYAML))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.WithScale("tiny", Scale{Enrollments: 5, StartDate: "2024-03-01", EndDate: "2024-03-31"}); err != nil {
		t.Fatalf("WithScale: %v", err)
	}
	if g.ActiveScale != "tiny" || g.Scale().YearsOfData != 1 {
		t.Errorf("unexpected active scale: %s %+v", g.ActiveScale, g.Scale())
	}
	if err := g.WithScale("bad", Scale{Enrollments: 0, StartDate: "2024-03-01", EndDate: "2024-03-31"}); err == nil {
		t.Error("expected error for zero enrollments")
	}
}

func TestConfigLoad_Overrides(t *testing.T) {
	path := writeConfig(t, minimalYAML)
	c := Config{ConfigPath: path, Seed: 7, RawDir: "/tmp/raw", BronzeDir: "/tmp/bronze"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	g, err := c.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g.Project.RandomSeed != 7 {
		t.Errorf("seed = %d, want 7", g.Project.RandomSeed)
	}
	if g.Output.BaseDir != "/tmp/raw" || g.Output.BronzeDir != "/tmp/bronze" {
		t.Errorf("dir overrides not applied: %+v", g.Output)
	}
	if c.Format != FormatParquet {
		t.Errorf("format = %q, want default %q", c.Format, FormatParquet)
	}

	c.Scale = "missing"
	if _, err := c.Load(); err == nil {
		t.Error("expected error for unknown scale override")
	}
}

func TestConfigValidate(t *testing.T) {
	path := writeConfig(t, minimalYAML)

	if err := (&Config{}).Validate(); err == nil {
		t.Error("expected error for missing --config")
	}
	if err := (&Config{ConfigPath: path, Format: "orc"}).Validate(); err == nil {
		t.Error("expected error for unknown format")
	}
	if err := (&Config{ConfigPath: path, Sources: []string{"nope"}}).Validate(); err == nil {
		t.Error("expected error for unknown source")
	}
	if err := (&Config{ConfigPath: path}).ValidateWithDSN(); err == nil {
		t.Error("expected error for missing DSN")
	}

	c := &Config{ConfigPath: path, Bucket: "lake", Prefix: "/bronze/"}
	if err := c.ValidateWithBucket(); err != nil {
		t.Fatalf("ValidateWithBucket: %v", err)
	}
	if c.Prefix != "bronze" {
		t.Errorf("prefix = %q, want trimmed", c.Prefix)
	}
}
