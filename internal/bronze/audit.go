package bronze

import (
	"fmt"
	"slices"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/psplake/internal/model"
)

// auditSchema returns src extended with the bronze audit columns. Only flat
// schemas are supported; every source table is a single level of leaves.
func auditSchema(src *parquet.Schema) (*parquet.Schema, error) {
	group := make(parquet.Group, len(src.Fields())+2)
	for _, f := range src.Fields() {
		if !f.Leaf() || f.Repeated() {
			return nil, fmt.Errorf("column %q is nested or repeated", f.Name())
		}
		switch f.Name() {
		case model.ColBronzeLoadedAt, model.ColBronzeSource:
			return nil, fmt.Errorf("source already has audit column %q", f.Name())
		}
		group[f.Name()] = f
	}
	group[model.ColBronzeLoadedAt] = parquet.Timestamp(parquet.Microsecond)
	group[model.ColBronzeSource] = parquet.String()
	return parquet.NewSchema(src.Name(), group), nil
}

// rowMapper rewrites rows of the source schema into rows of the audit schema.
// parquet.Group orders fields by name, so source column indexes are remapped.
type rowMapper struct {
	remap     []int // source column index -> destination column index
	loadedIdx int
	sourceIdx int
	loadedAt  parquet.Value
	source    parquet.Value
}

func newRowMapper(src, dst *parquet.Schema, loadedAt time.Time, source string) (*rowMapper, error) {
	lookup := func(name string) (int, error) {
		leaf, ok := dst.Lookup(name)
		if !ok {
			return 0, fmt.Errorf("column %q missing from audit schema", name)
		}
		return leaf.ColumnIndex, nil
	}

	m := &rowMapper{remap: make([]int, len(src.Fields()))}
	for _, f := range src.Fields() {
		srcLeaf, ok := src.Lookup(f.Name())
		if !ok {
			return nil, fmt.Errorf("column %q missing from source schema", f.Name())
		}
		idx, err := lookup(f.Name())
		if err != nil {
			return nil, err
		}
		m.remap[srcLeaf.ColumnIndex] = idx
	}

	var err error
	if m.loadedIdx, err = lookup(model.ColBronzeLoadedAt); err != nil {
		return nil, err
	}
	if m.sourceIdx, err = lookup(model.ColBronzeSource); err != nil {
		return nil, err
	}
	m.loadedAt = parquet.Int64Value(loadedAt.UnixMicro()).Level(0, 0, m.loadedIdx)
	m.source = parquet.ByteArrayValue([]byte(source)).Level(0, 0, m.sourceIdx)
	return m, nil
}

// mapRow appends the rewritten form of row to out[:0] and returns it.
func (m *rowMapper) mapRow(out, row parquet.Row) parquet.Row {
	out = out[:0]
	for _, v := range row {
		out = append(out, v.Level(v.RepetitionLevel(), v.DefinitionLevel(), m.remap[v.Column()]))
	}
	out = append(out, m.loadedAt, m.source)
	slices.SortStableFunc(out, func(a, b parquet.Value) int {
		return a.Column() - b.Column()
	})
	return out
}
