package parquetio

import (
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"
)

// Column describes one flat leaf column of a file, resolved for Scan callers.
type Column struct {
	Name  string
	Index int
	Node  parquet.Node
}

// Columns resolves every top-level leaf column of schema.
func Columns(schema *parquet.Schema) []Column {
	var cols []Column
	for _, f := range schema.Fields() {
		leaf, ok := schema.Lookup(f.Name())
		if !ok {
			continue
		}
		cols = append(cols, Column{Name: f.Name(), Index: leaf.ColumnIndex, Node: leaf.Node})
	}
	return cols
}

// Scan calls fn for each row of the file at path in file order. The row is
// only valid for the duration of the call. Returning io.EOF from fn stops the
// scan without error.
func Scan(path string, fn func(schema *parquet.Schema, row parquet.Row) error) error {
	f, pf, err := OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	schema := pf.Schema()
	buf := make([]parquet.Row, 256)
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		for {
			n, readErr := rows.ReadRows(buf)
			for i := 0; i < n; i++ {
				if err := fn(schema, buf[i]); err != nil {
					rows.Close()
					if err == io.EOF {
						return nil
					}
					return err
				}
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				rows.Close()
				return fmt.Errorf("read parquet rows: %w", readErr)
			}
		}
		rows.Close()
	}
	return nil
}

// ValueAt returns the value of column index idx in a flat row.
func ValueAt(row parquet.Row, idx int) parquet.Value {
	for _, v := range row {
		if v.Column() == idx {
			return v
		}
	}
	return parquet.Value{}
}

// GoValue converts a parquet value of the given leaf node to the Go value a
// database driver or report expects: nil, bool, int32, int64, float32,
// float64, string, []byte or time.Time.
func GoValue(node parquet.Node, v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	t := node.Type()
	lt := t.LogicalType()
	switch t.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		if lt != nil && lt.Date != nil {
			return time.Unix(int64(v.Int32())*86400, 0).UTC()
		}
		return v.Int32()
	case parquet.Int64:
		if lt != nil && lt.Timestamp != nil {
			n := v.Int64()
			switch {
			case lt.Timestamp.Unit.Millis != nil:
				return time.UnixMilli(n).UTC()
			case lt.Timestamp.Unit.Micros != nil:
				return time.UnixMicro(n).UTC()
			default:
				return time.Unix(0, n).UTC()
			}
		}
		return v.Int64()
	case parquet.Float:
		return v.Float()
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		if lt != nil && lt.UTF8 != nil {
			return string(v.ByteArray())
		}
		return append([]byte(nil), v.ByteArray()...)
	default:
		return v.String()
	}
}
