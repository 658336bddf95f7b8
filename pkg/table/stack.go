package table

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"

	"github.com/specsurvey/zcatalog/pkg/errors"
)

// Stack vertically concatenates tables into one, preserving input order so
// that downstream first-wins tie-breaks stay deterministic. The result
// schema is the union of all column sets in first-seen order; rows from a
// table lacking a column get a zero-equivalent fill. Same-named columns must
// agree in type across tables.
func Stack(name string, tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, errors.NewValidationError("tables", nil, "stack needs at least one table")
	}

	var fields []arrow.Field
	index := make(map[string]int)
	for _, t := range tables {
		for _, f := range t.Schema().Fields() {
			i, ok := index[f.Name]
			if !ok {
				index[f.Name] = len(fields)
				fields = append(fields, f)
				continue
			}
			if !arrow.TypeEqual(fields[i].Type, f.Type) {
				return nil, errors.NewValidationError(f.Name, f.Type.String(),
					fmt.Sprintf("column type %s conflicts with %s from an earlier table",
						f.Type, fields[i].Type))
			}
		}
	}

	var total int64
	for _, t := range tables {
		total += t.NumRows()
	}

	cols := make([]arrow.Array, len(fields))
	for i, f := range fields {
		chunks := make([]arrow.Array, len(tables))
		for j, t := range tables {
			if col, ok := t.Column(f.Name); ok {
				chunks[j] = col
			} else {
				chunks[j] = zeroArray(f.Type, int(t.NumRows()))
			}
		}
		col, err := array.Concatenate(chunks, mem)
		if err != nil {
			return nil, errors.NewValidationError(f.Name, nil,
				fmt.Sprintf("concatenating column: %v", err))
		}
		cols[i] = col
	}

	schema := arrow.NewSchema(fields, nil)
	return &Table{name: name, rec: array.NewRecord(schema, cols, total)}, nil
}
