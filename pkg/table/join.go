package table

import (
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"

	"github.com/specsurvey/zcatalog/pkg/errors"
)

// Join horizontally combines tables that share a row count and row ordering
// into one wider table. On a column-name collision the first table wins and
// later copies are dropped, so joining a table with itself returns its own
// columns unchanged. A row-count difference between any two tables indicates
// the source file is corrupt and is returned as a RowMismatchError.
func Join(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, errors.NewValidationError("tables", nil, "join needs at least one table")
	}
	first := tables[0]
	for _, t := range tables[1:] {
		if t.NumRows() != first.NumRows() {
			return nil, errors.NewRowMismatchError("", first.Name(), t.Name(), first.NumRows(), t.NumRows())
		}
	}

	var fields []arrow.Field
	var cols []arrow.Array
	seen := make(map[string]bool)
	for _, t := range tables {
		for i, f := range t.Schema().Fields() {
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			fields = append(fields, f)
			cols = append(cols, t.Record().Column(i))
		}
	}

	schema := arrow.NewSchema(fields, nil)
	return &Table{name: first.name, rec: array.NewRecord(schema, cols, first.NumRows())}, nil
}
