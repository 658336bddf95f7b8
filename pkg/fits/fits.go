// Package fits is the narrow collaborator for the FITS file format: it
// reads a result file into header cards plus named record tables, and writes
// a header plus tables back out. Nothing else in the program touches the
// format; the pipeline works entirely on the in-memory table form.
package fits

import (
	"os"
	"strconv"
	"strings"

	fitsio "github.com/astrogo/fitsio"

	"github.com/specsurvey/zcatalog/pkg/errors"
	"github.com/specsurvey/zcatalog/pkg/table"
)

// File is the in-memory form of one FITS file: the primary header plus all
// binary tables keyed by extension name, each with its own header.
type File struct {
	Path string

	primary *Header
	names   []string
	tables  map[string]*table.Table
	headers map[string]*Header
}

// Table returns a named binary table read from the file.
func (f *File) Table(name string) (*table.Table, bool) {
	t, ok := f.tables[name]
	return t, ok
}

// PrimaryHeader returns the primary HDU header.
func (f *File) PrimaryHeader() *Header {
	return f.primary
}

// TableNames returns the binary table extension names in file order.
func (f *File) TableNames() []string {
	return f.names
}

// HasTable reports whether a named binary table exists in the file.
func (f *File) HasTable(name string) bool {
	_, ok := f.tables[name]
	return ok
}

// TableHeader returns the header of a named binary table HDU.
func (f *File) TableHeader(name string) (*Header, bool) {
	h, ok := f.headers[name]
	return h, ok
}

// structural keywords that describe the FITS serialization itself and must
// not be carried into the in-memory header or the output file
var reservedPrefixes = []string{
	"SIMPLE", "BITPIX", "NAXIS", "EXTEND", "XTENSION",
	"PCOUNT", "GCOUNT", "TFIELDS", "TTYPE", "TFORM", "TUNIT", "TDIM",
	"EXTNAME", "EXTVER", "CHECKSUM", "DATASUM", "COMMENT", "HISTORY", "END",
}

func isReserved(key string) bool {
	for _, p := range reservedPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

func convertHeader(hdr *fitsio.Header) *Header {
	out := NewHeader()
	for _, card := range hdr.Keys() {
		if isReserved(card) {
			continue
		}
		c := hdr.Get(card)
		if c == nil {
			continue
		}
		out.Set(c.Name, c.Value, c.Comment)
	}
	return out
}

// colFormat is a parsed TFORM value: a repeat count and a type code letter.
type colFormat struct {
	repeat int
	code   byte
}

func parseFormat(format string) (colFormat, error) {
	s := strings.TrimSpace(format)
	if s == "" {
		return colFormat{}, errors.NewParseError("fits", "", "empty TFORM", nil)
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	repeat := 1
	if i > 0 {
		n, err := strconv.Atoi(s[:i])
		if err != nil {
			return colFormat{}, errors.NewParseError("fits", "", "bad TFORM repeat: "+s, err)
		}
		repeat = n
	}
	if i >= len(s) {
		return colFormat{}, errors.NewParseError("fits", "", "TFORM lacks a type code: "+s, nil)
	}
	return colFormat{repeat: repeat, code: s[i]}, nil
}

func openFile(path string) (*os.File, *fitsio.File, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.WrapIO("open", path, err)
	}
	f, err := fitsio.Open(r)
	if err != nil {
		r.Close()
		return nil, nil, errors.NewParseError("fits", path, "not a FITS file", err)
	}
	return r, f, nil
}
