package bronze

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gyeh/psplake/internal/config"
	"github.com/gyeh/psplake/internal/model"
)

// Location is where a bronze table's data lives on disk.
type Location struct {
	Format string   // config.FormatParquet, config.FormatDelta, or "" when absent
	Path   string   // table file or Delta table directory
	Files  []string // live parquet data files
}

// Found reports whether the table exists in either format.
func (l Location) Found() bool {
	return l.Format != ""
}

// Locate finds table under dir as a Delta table directory or a single parquet
// file, preferring Delta when both exist.
func Locate(dir string, t model.Table) (Location, error) {
	tableDir := filepath.Join(dir, t.Name)
	if IsDeltaTable(tableDir) {
		files, err := DataFiles(tableDir)
		if err != nil {
			return Location{}, fmt.Errorf("%s: %w", t.Name, err)
		}
		loc := Location{Format: config.FormatDelta, Path: tableDir}
		for _, f := range files {
			loc.Files = append(loc.Files, filepath.Join(tableDir, f))
		}
		return loc, nil
	}

	path := filepath.Join(dir, t.File())
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Location{}, nil
	} else if err != nil {
		return Location{}, fmt.Errorf("%s: %w", t.Name, err)
	}
	return Location{Format: config.FormatParquet, Path: path, Files: []string{path}}, nil
}
