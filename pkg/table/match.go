package table

import (
	"context"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"

	"github.com/specsurvey/zcatalog/pkg/errors"
	"github.com/specsurvey/zcatalog/pkg/logging"
)

// MatchByKey matches every row of left to a right row sharing the same
// 64-bit integer key (first match wins if the key repeats on the right) and
// copies all right-only columns onto left, aligned to left's row order.
// Unmatched left rows get zero-equivalent fills. Columns already present on
// left are never duplicated. Fixed-width vector columns cannot be gathered
// row-wise and are dropped with a warning.
//
// The returned mask has one entry per left row, true where a right match was
// found.
func MatchByKey(ctx context.Context, left, right *Table, key string) (*Table, []bool, error) {
	logger := logging.FromContext(ctx)

	leftKeys, ok := left.Int64Column(key)
	if !ok {
		return nil, nil, errors.NewValidationError(key, nil, "left table lacks an int64 key column")
	}
	rightKeys, ok := right.Int64Column(key)
	if !ok {
		return nil, nil, errors.NewValidationError(key, nil, "right table lacks an int64 key column")
	}

	// Hash join: key -> first right row holding it.
	rowOf := make(map[int64]int, len(rightKeys))
	for i, k := range rightKeys {
		if _, dup := rowOf[k]; !dup {
			rowOf[k] = i
		}
	}

	matched := make([]bool, len(leftKeys))
	indices := make([]int, len(leftKeys))
	for i, k := range leftKeys {
		if j, ok := rowOf[k]; ok {
			matched[i] = true
			indices[i] = j
		} else {
			indices[i] = -1
		}
	}

	out := left
	for colIdx, f := range right.Schema().Fields() {
		if f.Name == key || out.HasColumn(f.Name) {
			continue
		}
		src := right.Record().Column(colIdx)
		gathered, err := gather(src, indices)
		if err != nil {
			logger.Warn().
				Str("column", f.Name).
				Str("type", f.Type.String()).
				Msg("Dropping column that cannot be merged row-wise")
			continue
		}
		out, err = out.WithColumn(arrow.Field{Name: f.Name, Type: f.Type}, gathered)
		if err != nil {
			return nil, nil, err
		}
	}
	return out, matched, nil
}

// gather builds a new array taking src[indices[i]] for each output row, with
// a zero-equivalent value where the index is negative.
func gather(src arrow.Array, indices []int) (arrow.Array, error) {
	switch src.(type) {
	case *array.Int64, *array.Int32, *array.Int16, *array.Int8, *array.Uint8,
		*array.Float64, *array.Float32, *array.Boolean, *array.String:
	default:
		return nil, errors.NewValidationError("column", src.DataType().String(),
			"unsupported type for row-wise gather")
	}

	b := array.NewBuilder(mem, src.DataType())
	defer b.Release()
	b.Reserve(len(indices))

	for _, idx := range indices {
		if idx < 0 {
			b.AppendEmptyValue()
			continue
		}
		switch arr := src.(type) {
		case *array.Int64:
			b.(*array.Int64Builder).Append(arr.Value(idx))
		case *array.Int32:
			b.(*array.Int32Builder).Append(arr.Value(idx))
		case *array.Int16:
			b.(*array.Int16Builder).Append(arr.Value(idx))
		case *array.Int8:
			b.(*array.Int8Builder).Append(arr.Value(idx))
		case *array.Uint8:
			b.(*array.Uint8Builder).Append(arr.Value(idx))
		case *array.Float64:
			b.(*array.Float64Builder).Append(arr.Value(idx))
		case *array.Float32:
			b.(*array.Float32Builder).Append(arr.Value(idx))
		case *array.Boolean:
			b.(*array.BooleanBuilder).Append(arr.Value(idx))
		case *array.String:
			b.(*array.StringBuilder).Append(arr.Value(idx))
		}
	}
	return b.NewArray(), nil
}
