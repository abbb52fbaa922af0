package normalize

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{" 2024-01-15 ", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), true},
		{"2024-01-15 10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"01/15/2024", time.Time{}, false},
	}
	for _, tt := range tests {
		got := ParseDate(tt.in)
		if !tt.ok {
			if got != nil {
				t.Errorf("ParseDate(%q) = %v, want nil", tt.in, got)
			}
			continue
		}
		if got == nil || !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMonthPartitionAndTruncate(t *testing.T) {
	ts := time.Date(2023, 7, 4, 18, 45, 12, 0, time.UTC)
	if got := MonthPartition(ts); got != "2023-07" {
		t.Errorf("MonthPartition = %q", got)
	}
	if got := TruncateDay(ts); !got.Equal(time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("TruncateDay = %v", got)
	}
}

func TestRoundCents(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{10.005, 10.01},
		{10.004, 10},
		{-2.345, -2.35},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RoundCents(tt.in); got != tt.want {
			t.Errorf("RoundCents(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if OptionalAmount(0.001) != nil {
		t.Error("amount rounding to zero should be nil")
	}
	if p := OptionalAmount(12.345); p == nil || *p != 12.35 {
		t.Errorf("OptionalAmount(12.345) = %v", p)
	}
}

func TestPatientHash(t *testing.T) {
	a, b := PatientHash(1), PatientHash(2)
	if len(a) != 16 {
		t.Errorf("len = %d, want 16", len(a))
	}
	if a == b {
		t.Error("different patients should hash differently")
	}
	if a != PatientHash(1) {
		t.Error("hash is not stable")
	}
}

func TestStreamSeed(t *testing.T) {
	if StreamSeed(42, "claims") == StreamSeed(42, "psp_cases") {
		t.Error("streams should get different seeds")
	}
	if StreamSeed(42, "claims") != StreamSeed(42, "claims") {
		t.Error("stream seed is not stable")
	}
	if StreamSeed(42, "claims") == StreamSeed(43, "claims") {
		t.Error("project seed should change the stream seed")
	}
}

func TestFileHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(path, []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := FileHash(path)
	if err != nil {
		t.Fatalf("FileHash: %v", err)
	}
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("FileHash = %s, want %s", got, want)
	}
}
