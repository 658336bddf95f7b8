package table

import (
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"

	"github.com/specsurvey/zcatalog/pkg/errors"
)

// FromArrays builds a table from parallel column names and arrays, inferring
// the schema from the array types. All arrays must share one length.
func FromArrays(name string, colNames []string, cols []arrow.Array) (*Table, error) {
	if len(colNames) != len(cols) {
		return nil, errors.NewValidationError("columns", len(cols), "column name and array counts differ")
	}
	if len(cols) == 0 {
		return nil, errors.NewValidationError("columns", nil, "table needs at least one column")
	}
	nrows := cols[0].Len()
	fields := make([]arrow.Field, len(cols))
	for i, col := range cols {
		if col.Len() != nrows {
			return nil, errors.NewValidationError(colNames[i], col.Len(), "column lengths differ")
		}
		fields[i] = arrow.Field{Name: colNames[i], Type: col.DataType()}
	}
	schema := arrow.NewSchema(fields, nil)
	return &Table{name: name, rec: array.NewRecord(schema, cols, int64(nrows))}, nil
}

// Int64Of builds an int64 column array from values.
func Int64Of(vals ...int64) arrow.Array {
	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.AppendValues(vals, nil)
	return b.NewArray()
}

// Int32Of builds an int32 column array from values.
func Int32Of(vals ...int32) arrow.Array {
	b := array.NewInt32Builder(mem)
	defer b.Release()
	b.AppendValues(vals, nil)
	return b.NewArray()
}

// Int16Of builds an int16 column array from values.
func Int16Of(vals ...int16) arrow.Array {
	b := array.NewInt16Builder(mem)
	defer b.Release()
	b.AppendValues(vals, nil)
	return b.NewArray()
}

// Float64Of builds a float64 column array from values.
func Float64Of(vals ...float64) arrow.Array {
	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.AppendValues(vals, nil)
	return b.NewArray()
}

// Float32Of builds a float32 column array from values.
func Float32Of(vals ...float32) arrow.Array {
	b := array.NewFloat32Builder(mem)
	defer b.Release()
	b.AppendValues(vals, nil)
	return b.NewArray()
}

// BoolOf builds a boolean column array from values.
func BoolOf(vals ...bool) arrow.Array {
	b := array.NewBooleanBuilder(mem)
	defer b.Release()
	b.AppendValues(vals, nil)
	return b.NewArray()
}

// StringOf builds a string column array from values.
func StringOf(vals ...string) arrow.Array {
	b := array.NewStringBuilder(mem)
	defer b.Release()
	b.AppendValues(vals, nil)
	return b.NewArray()
}

// ConstInt32 builds an int32 column of n copies of v. Provenance columns
// derived from a file header are constant across that file's rows.
func ConstInt32(v int32, n int) arrow.Array {
	b := array.NewInt32Builder(mem)
	defer b.Release()
	b.Reserve(n)
	for i := 0; i < n; i++ {
		b.Append(v)
	}
	return b.NewArray()
}

// ConstInt16 builds an int16 column of n copies of v.
func ConstInt16(v int16, n int) arrow.Array {
	b := array.NewInt16Builder(mem)
	defer b.Release()
	b.Reserve(n)
	for i := 0; i < n; i++ {
		b.Append(v)
	}
	return b.NewArray()
}

// ConstString builds a string column of n copies of v.
func ConstString(v string, n int) arrow.Array {
	b := array.NewStringBuilder(mem)
	defer b.Release()
	for i := 0; i < n; i++ {
		b.Append(v)
	}
	return b.NewArray()
}

// zeroArray builds an array of n zero-equivalent values of the given type
// (0 for numbers, false for booleans, "" for strings, zero-filled vectors).
func zeroArray(dt arrow.DataType, n int) arrow.Array {
	b := array.NewBuilder(mem, dt)
	defer b.Release()
	b.AppendEmptyValues(n)
	return b.NewArray()
}
