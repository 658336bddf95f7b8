package fits

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	fitsio "github.com/astrogo/fitsio"

	"github.com/specsurvey/zcatalog/pkg/errors"
	"github.com/specsurvey/zcatalog/pkg/table"
)

// Write serializes a primary header and a sequence of tables to a new FITS
// file at path. Each table becomes one binary table extension named after
// the table; units maps column names to TUNIT strings for known physical
// columns.
func Write(path string, primary *Header, tables []*table.Table, units map[string]string) error {
	w, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer w.Close()

	f, err := fitsio.Create(w)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer f.Close()

	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		return errors.WrapIO("write", path, err)
	}
	if primary != nil {
		appendCards(phdu.Header(), primary)
	}
	if err := f.Write(phdu); err != nil {
		return errors.WrapIO("write", path, err)
	}

	for _, t := range tables {
		if err := writeTable(f, t, units); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}
	return nil
}

func appendCards(hdr *fitsio.Header, h *Header) {
	for _, c := range h.Cards() {
		hdr.Append(fitsio.Card{Name: c.Name, Value: c.Value, Comment: c.Comment})
	}
}

func writeTable(f *fitsio.File, t *table.Table, units map[string]string) error {
	fields := t.Schema().Fields()
	cols := make([]fitsio.Column, len(fields))
	for i, field := range fields {
		format, err := formatFor(t, field)
		if err != nil {
			return err
		}
		cols[i] = fitsio.Column{
			Name:   field.Name,
			Format: format,
			Unit:   units[field.Name],
		}
	}

	tbl, err := fitsio.NewTable(t.Name(), cols, fitsio.BINARY_TBL)
	if err != nil {
		return err
	}
	defer tbl.Close()

	nrows := int(t.NumRows())
	args := make([]any, len(fields))
	for row := 0; row < nrows; row++ {
		for i := range fields {
			v, err := cellValue(t.Record().Column(i), row)
			if err != nil {
				return err
			}
			args[i] = v
		}
		if err := tbl.Write(args...); err != nil {
			return err
		}
	}
	return f.Write(tbl)
}

// formatFor maps an arrow field to its TFORM string.
func formatFor(t *table.Table, field arrow.Field) (string, error) {
	switch dt := field.Type.(type) {
	case *arrow.Int64Type:
		return "K", nil
	case *arrow.Int32Type:
		return "J", nil
	case *arrow.Int16Type:
		return "I", nil
	case *arrow.Uint8Type:
		return "B", nil
	case *arrow.Float64Type:
		return "D", nil
	case *arrow.Float32Type:
		return "E", nil
	case *arrow.BooleanType:
		return "L", nil
	case *arrow.StringType:
		col, _ := t.Column(field.Name)
		arr := col.(*array.String)
		width := 1
		for i := 0; i < arr.Len(); i++ {
			if n := len(arr.Value(i)); n > width {
				width = n
			}
		}
		return fmt.Sprintf("%dA", width), nil
	case *arrow.FixedSizeListType:
		switch dt.Elem().(type) {
		case *arrow.Float64Type:
			return fmt.Sprintf("%dD", dt.Len()), nil
		case *arrow.Float32Type:
			return fmt.Sprintf("%dE", dt.Len()), nil
		}
	}
	return "", errors.NewValidationError(field.Name, field.Type.String(),
		"no FITS column format for this type")
}

// cellValue extracts one cell as a pointer for the row writer.
func cellValue(col arrow.Array, row int) (any, error) {
	switch arr := col.(type) {
	case *array.Int64:
		v := arr.Value(row)
		return &v, nil
	case *array.Int32:
		v := arr.Value(row)
		return &v, nil
	case *array.Int16:
		v := arr.Value(row)
		return &v, nil
	case *array.Uint8:
		v := arr.Value(row)
		return &v, nil
	case *array.Float64:
		v := arr.Value(row)
		return &v, nil
	case *array.Float32:
		v := arr.Value(row)
		return &v, nil
	case *array.Boolean:
		v := arr.Value(row)
		return &v, nil
	case *array.String:
		v := arr.Value(row)
		return &v, nil
	case *array.FixedSizeList:
		n := int(arr.DataType().(*arrow.FixedSizeListType).Len())
		start := row * n
		switch vals := arr.ListValues().(type) {
		case *array.Float64:
			v := vals.Float64Values()[start : start+n]
			return &v, nil
		case *array.Float32:
			v := vals.Float32Values()[start : start+n]
			return &v, nil
		}
	}
	return nil, errors.NewValidationError("column", col.DataType().String(),
		"no FITS cell encoding for this type")
}
