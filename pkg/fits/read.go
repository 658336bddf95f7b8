package fits

import (
	"context"
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	fitsio "github.com/astrogo/fitsio"

	"github.com/specsurvey/zcatalog/pkg/errors"
	"github.com/specsurvey/zcatalog/pkg/logging"
	"github.com/specsurvey/zcatalog/pkg/table"
)

var mem = memory.NewGoAllocator()

// Open reads an entire FITS file into memory: the primary header and every
// binary table extension. Columns with a format the table layer cannot
// represent are dropped with a warning rather than failing the whole file.
func Open(ctx context.Context, path string) (*File, error) {
	r, f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	defer f.Close()

	out := &File{
		Path:    path,
		primary: NewHeader(),
		tables:  make(map[string]*table.Table),
		headers: make(map[string]*Header),
	}

	hdus := f.HDUs()
	if len(hdus) == 0 {
		return nil, errors.NewParseError("fits", path, "file has no HDUs", nil)
	}
	out.primary = convertHeader(hdus[0].Header())

	for _, hdu := range hdus[1:] {
		tbl, ok := hdu.(*fitsio.Table)
		if !ok {
			continue
		}
		name := hdu.Name()
		t, err := readTable(ctx, path, name, tbl)
		if err != nil {
			return nil, err
		}
		out.names = append(out.names, name)
		out.tables[name] = t
		out.headers[name] = convertHeader(hdu.Header())
	}
	return out, nil
}

// column is one FITS column being decoded: its scan target and the arrow
// builder receiving the decoded values. keep is false for columns whose
// format has no table representation.
type column struct {
	name    string
	format  colFormat
	target  any
	builder array.Builder
	keep    bool
}

func readTable(ctx context.Context, path, name string, tbl *fitsio.Table) (*table.Table, error) {
	logger := logging.FromContext(ctx)

	fcols := tbl.Cols()
	cols := make([]*column, len(fcols))
	for i, fc := range fcols {
		format, err := parseFormat(fc.Format)
		if err != nil {
			return nil, errors.NewParseError("fits", path,
				fmt.Sprintf("table %s column %s: %v", name, fc.Name, err), err)
		}
		c := &column{name: fc.Name, format: format}
		if err := c.prepare(); err != nil {
			logger.Warn().
				Str("file", path).
				Str("table", name).
				Str("column", fc.Name).
				Str("format", fc.Format).
				Msg("Dropping column with unsupported format")
			c.keep = false
			c.target = new([]byte)
		}
		cols[i] = c
	}

	rows, err := tbl.Read(0, tbl.NumRows())
	if err != nil {
		return nil, errors.NewParseError("fits", path, "reading table "+name, err)
	}
	defer rows.Close()

	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = c.target
	}
	for rows.Next() {
		if err := rows.Scan(args...); err != nil {
			return nil, errors.NewParseError("fits", path, "decoding table "+name, err)
		}
		for _, c := range cols {
			if c.keep {
				c.append()
			}
		}
	}

	var names []string
	var arrays []arrow.Array
	for _, c := range cols {
		if !c.keep {
			continue
		}
		names = append(names, c.name)
		arrays = append(arrays, c.builder.NewArray())
		c.builder.Release()
	}
	if len(names) == 0 {
		return nil, errors.NewParseError("fits", path, "table "+name+" has no usable columns", nil)
	}
	return table.FromArrays(name, names, arrays)
}

// prepare allocates the scan target and arrow builder for the column's
// format, or reports the format unsupported.
func (c *column) prepare() error {
	scalar := c.format.repeat == 1 || c.format.code == 'A'
	switch {
	case scalar && c.format.code == 'L':
		c.target = new(bool)
		c.builder = array.NewBooleanBuilder(mem)
	case scalar && c.format.code == 'B':
		c.target = new(uint8)
		c.builder = array.NewUint8Builder(mem)
	case scalar && c.format.code == 'I':
		c.target = new(int16)
		c.builder = array.NewInt16Builder(mem)
	case scalar && c.format.code == 'J':
		c.target = new(int32)
		c.builder = array.NewInt32Builder(mem)
	case scalar && c.format.code == 'K':
		c.target = new(int64)
		c.builder = array.NewInt64Builder(mem)
	case scalar && c.format.code == 'E':
		c.target = new(float32)
		c.builder = array.NewFloat32Builder(mem)
	case scalar && c.format.code == 'D':
		c.target = new(float64)
		c.builder = array.NewFloat64Builder(mem)
	case c.format.code == 'A':
		c.target = new(string)
		c.builder = array.NewStringBuilder(mem)
	case c.format.code == 'E':
		c.target = new([]float32)
		c.builder = array.NewFixedSizeListBuilder(mem, int32(c.format.repeat), arrow.PrimitiveTypes.Float32)
	case c.format.code == 'D':
		c.target = new([]float64)
		c.builder = array.NewFixedSizeListBuilder(mem, int32(c.format.repeat), arrow.PrimitiveTypes.Float64)
	default:
		return errors.ErrInvalidInput
	}
	c.keep = true
	return nil
}

// append moves the freshly scanned value into the builder.
func (c *column) append() {
	switch v := c.target.(type) {
	case *bool:
		c.builder.(*array.BooleanBuilder).Append(*v)
	case *uint8:
		c.builder.(*array.Uint8Builder).Append(*v)
	case *int16:
		c.builder.(*array.Int16Builder).Append(*v)
	case *int32:
		c.builder.(*array.Int32Builder).Append(*v)
	case *int64:
		c.builder.(*array.Int64Builder).Append(*v)
	case *float32:
		c.builder.(*array.Float32Builder).Append(*v)
	case *float64:
		c.builder.(*array.Float64Builder).Append(*v)
	case *string:
		// fixed-width FITS strings come back space padded
		c.builder.(*array.StringBuilder).Append(strings.TrimRight(*v, " "))
	case *[]float32:
		b := c.builder.(*array.FixedSizeListBuilder)
		b.Append(true)
		b.ValueBuilder().(*array.Float32Builder).AppendValues(*v, nil)
	case *[]float64:
		b := c.builder.(*array.FixedSizeListBuilder)
		b.Append(true)
		b.ValueBuilder().(*array.Float64Builder).AppendValues(*v, nil)
	}
}
