// Package table provides the Record Table used throughout the zcatalog
// pipeline: an immutable, named-column tabular structure backed by Apache
// Arrow. Redshift results, fiber metadata, exposure metadata, and reference
// target catalogs all flow through this one representation.
//
// A Table wraps an arrow.Record. Operations never mutate a Table in place;
// they return a new Table sharing the untouched column arrays. The supported
// column types are the fixed set used by the spectroscopic result files:
// signed integers (8/16/32/64 bit), float32/float64, bool, string, and
// fixed-width vectors of float32/float64 (one vector per row, e.g. template
// coefficients).
package table

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/specsurvey/zcatalog/pkg/errors"
)

// mem is the allocator shared by all table operations. The Go allocator
// leaves reclamation to the garbage collector, which suits a single-shot
// batch pipeline.
var mem = memory.NewGoAllocator()

// Table is an ordered sequence of named, typed columns of uniform length.
type Table struct {
	name string
	rec  arrow.Record
}

// New wraps an arrow.Record as a Table. The record is used as-is; the caller
// must not release it afterwards.
func New(name string, rec arrow.Record) *Table {
	return &Table{name: name, rec: rec}
}

// Name returns the table name (the extension name it was read from or will
// be written to).
func (t *Table) Name() string { return t.name }

// WithName returns the same table under a different name.
func (t *Table) WithName(name string) *Table {
	return &Table{name: name, rec: t.rec}
}

// Record returns the underlying arrow record.
func (t *Table) Record() arrow.Record { return t.rec }

// Schema returns the arrow schema of the table.
func (t *Table) Schema() *arrow.Schema { return t.rec.Schema() }

// NumRows returns the row count.
func (t *Table) NumRows() int64 { return t.rec.NumRows() }

// NumCols returns the column count.
func (t *Table) NumCols() int { return int(t.rec.NumCols()) }

// ColumnNames returns the column names in schema order.
func (t *Table) ColumnNames() []string {
	fields := t.rec.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	return len(t.rec.Schema().FieldIndices(name)) > 0
}

// columnIndex returns the schema index of a named column, or -1.
func (t *Table) columnIndex(name string) int {
	idx := t.rec.Schema().FieldIndices(name)
	if len(idx) == 0 {
		return -1
	}
	return idx[0]
}

// Column returns the named column array, or false if absent.
func (t *Table) Column(name string) (arrow.Array, bool) {
	i := t.columnIndex(name)
	if i < 0 {
		return nil, false
	}
	return t.rec.Column(i), true
}

// Field returns the named schema field, or false if absent.
func (t *Table) Field(name string) (arrow.Field, bool) {
	i := t.columnIndex(name)
	if i < 0 {
		return arrow.Field{}, false
	}
	return t.rec.Schema().Field(i), true
}

// Int64Column returns the values of a named int64 column.
func (t *Table) Int64Column(name string) ([]int64, bool) {
	col, ok := t.Column(name)
	if !ok {
		return nil, false
	}
	arr, ok := col.(*array.Int64)
	if !ok {
		return nil, false
	}
	return arr.Int64Values(), true
}

// Float64Column returns the values of a named float64 column.
func (t *Table) Float64Column(name string) ([]float64, bool) {
	col, ok := t.Column(name)
	if !ok {
		return nil, false
	}
	arr, ok := col.(*array.Float64)
	if !ok {
		return nil, false
	}
	return arr.Float64Values(), true
}

// Float32Column returns the values of a named float32 column.
func (t *Table) Float32Column(name string) ([]float32, bool) {
	col, ok := t.Column(name)
	if !ok {
		return nil, false
	}
	arr, ok := col.(*array.Float32)
	if !ok {
		return nil, false
	}
	return arr.Float32Values(), true
}

// StringColumn returns the values of a named string column as a fresh slice.
func (t *Table) StringColumn(name string) ([]string, bool) {
	col, ok := t.Column(name)
	if !ok {
		return nil, false
	}
	arr, ok := col.(*array.String)
	if !ok {
		return nil, false
	}
	out := make([]string, arr.Len())
	for i := range out {
		out[i] = arr.Value(i)
	}
	return out, true
}

// WithColumn returns a new table with one column appended. Appending a name
// that already exists or an array of the wrong length is an error.
func (t *Table) WithColumn(field arrow.Field, col arrow.Array) (*Table, error) {
	if t.HasColumn(field.Name) {
		return nil, errors.NewValidationError(field.Name, nil, "column already exists")
	}
	if int64(col.Len()) != t.NumRows() {
		return nil, errors.NewValidationError(field.Name, col.Len(),
			fmt.Sprintf("column length %d does not match table rows %d", col.Len(), t.NumRows()))
	}
	fields := append(append([]arrow.Field{}, t.rec.Schema().Fields()...), field)
	cols := append(append([]arrow.Array{}, t.rec.Columns()...), col)
	schema := arrow.NewSchema(fields, nil)
	return &Table{name: t.name, rec: array.NewRecord(schema, cols, t.NumRows())}, nil
}

// SetColumn returns a new table with the named existing column replaced.
func (t *Table) SetColumn(name string, col arrow.Array) (*Table, error) {
	i := t.columnIndex(name)
	if i < 0 {
		return nil, errors.NewNotFoundError("column", name)
	}
	if int64(col.Len()) != t.NumRows() {
		return nil, errors.NewValidationError(name, col.Len(),
			fmt.Sprintf("column length %d does not match table rows %d", col.Len(), t.NumRows()))
	}
	cols := append([]arrow.Array{}, t.rec.Columns()...)
	cols[i] = col
	return &Table{name: t.name, rec: array.NewRecord(t.rec.Schema(), cols, t.NumRows())}, nil
}

// RenameColumn returns a new table with one column renamed.
func (t *Table) RenameColumn(oldName, newName string) (*Table, error) {
	i := t.columnIndex(oldName)
	if i < 0 {
		return nil, errors.NewNotFoundError("column", oldName)
	}
	if t.HasColumn(newName) {
		return nil, errors.NewValidationError(newName, nil, "column already exists")
	}
	fields := append([]arrow.Field{}, t.rec.Schema().Fields()...)
	fields[i].Name = newName
	schema := arrow.NewSchema(fields, nil)
	return &Table{name: t.name, rec: array.NewRecord(schema, t.rec.Columns(), t.NumRows())}, nil
}

// Select returns a new table keeping only the named columns that are
// present, in the order given. Names not present are skipped silently so a
// reduced-column projection works across files with differing schemas.
func (t *Table) Select(names ...string) (*Table, error) {
	var fields []arrow.Field
	var cols []arrow.Array
	for _, name := range names {
		i := t.columnIndex(name)
		if i < 0 {
			continue
		}
		fields = append(fields, t.rec.Schema().Field(i))
		cols = append(cols, t.rec.Column(i))
	}
	if len(fields) == 0 {
		return nil, errors.NewValidationError("columns", names, "selection matches no columns")
	}
	schema := arrow.NewSchema(fields, nil)
	return &Table{name: t.name, rec: array.NewRecord(schema, cols, t.NumRows())}, nil
}

// Release releases the underlying record. The table must not be used
// afterwards.
func (t *Table) Release() {
	if t.rec != nil {
		t.rec.Release()
		t.rec = nil
	}
}
