package zcat

import (
	"context"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/rs/zerolog"

	"github.com/specsurvey/zcatalog/pkg/errors"
	"github.com/specsurvey/zcatalog/pkg/fits"
	"github.com/specsurvey/zcatalog/pkg/logging"
	"github.com/specsurvey/zcatalog/pkg/table"
)

// FileData is the contribution of one result file to the catalog: the
// joined per-target table with provenance columns, the optional per-exposure
// fiber metadata, and the file's scalar metadata header.
type FileData struct {
	Catalog     *table.Table
	ExpFibermap *table.Table
	Header      *fits.Header
}

// ReadResultFile reads one result file and joins its constituent tables.
// Both naming layouts are handled: the extended layout keeps a REDSHIFTS
// table with metadata on the primary header, the legacy layout keeps a
// ZBEST table carrying the metadata on its own HDU header.
//
// A file recorded under a different grouping scheme returns a
// GroupMismatchError; tables whose identifier sequences disagree return a
// RowMismatchError.
func ReadResultFile(ctx context.Context, path string, cfg *Config) (*FileData, error) {
	logger := logging.FromContext(ctx)

	f, err := fits.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	redshifts, hdr, err := redshiftTable(f)
	if err != nil {
		return nil, err
	}

	if group, ok := hdr.GetString(KeySpGrp); ok {
		if group != string(cfg.Group) {
			return nil, &errors.GroupMismatchError{File: path, Want: string(cfg.Group), Got: group}
		}
	} else {
		logger.Warn().
			Str("file", path).
			Msg("Result file does not record its grouping scheme, assuming it matches")
	}

	fibermap, ok := f.Table(TableFibermap)
	if !ok {
		return nil, errors.NewParseError("fits", path, "no FIBERMAP table", nil)
	}

	parts := []*table.Table{redshifts, fibermap}
	if tsnr2, ok := f.Table(TableTSNR2); ok {
		parts = append(parts, tsnr2)
	}
	if err := checkAligned(path, parts); err != nil {
		return nil, err
	}

	joined, err := table.Join(parts...)
	if err != nil {
		if mismatch, ok := err.(*errors.RowMismatchError); ok {
			mismatch.File = path
		}
		return nil, err
	}

	joined, err = addProvenance(logger, joined, hdr, cfg.Group, path)
	if err != nil {
		return nil, err
	}

	data := &FileData{Catalog: joined, Header: hdr}
	if exp, ok := f.Table(TableExpFibermap); ok {
		data.ExpFibermap = exp
	}
	return data, nil
}

// redshiftTable locates the per-target fit table and the header holding the
// file's scalar metadata, trying the extended layout first.
func redshiftTable(f *fits.File) (*table.Table, *fits.Header, error) {
	if t, ok := f.Table(TableRedshifts); ok {
		return t, f.PrimaryHeader(), nil
	}
	if t, ok := f.Table(TableZbest); ok {
		hdr, _ := f.TableHeader(TableZbest)
		if hdr == nil || !hdr.Has(KeySpGrp) && f.PrimaryHeader().Has(KeySpGrp) {
			hdr = f.PrimaryHeader()
		}
		return t, hdr, nil
	}
	return nil, nil, errors.NewParseError("fits", f.Path, "no REDSHIFTS or ZBEST table", nil)
}

// checkAligned verifies that every table carries the identical identifier
// sequence row-for-row. A violation means the file is corrupt.
func checkAligned(path string, parts []*table.Table) error {
	base, ok := parts[0].Int64Column(ColTargetID)
	if !ok {
		return errors.NewParseError("fits", path, parts[0].Name()+" lacks a TARGETID column", nil)
	}
	for _, t := range parts[1:] {
		ids, ok := t.Int64Column(ColTargetID)
		if !ok {
			return errors.NewParseError("fits", path, t.Name()+" lacks a TARGETID column", nil)
		}
		if len(ids) != len(base) {
			return errors.NewRowMismatchError(path, parts[0].Name(), t.Name(),
				int64(len(base)), int64(len(ids)))
		}
		for i := range ids {
			if ids[i] != base[i] {
				return &errors.RowMismatchError{
					File:   path,
					Tables: [2]string{parts[0].Name(), t.Name()},
					Detail: "identifier sequences diverge",
				}
			}
		}
	}
	return nil
}

// addProvenance appends the grouping's provenance columns, each a constant
// derived from a header key. A missing key logs a warning and the column is
// omitted for this file; the stacker zero-fills it later.
func addProvenance(logger *zerolog.Logger, t *table.Table, hdr *fits.Header, group Grouping, path string) (*table.Table, error) {
	n := int(t.NumRows())
	var err error

	addInt32 := func(col, key string) {
		if err != nil || t.HasColumn(col) {
			return
		}
		v, ok := hdr.GetInt(key)
		if !ok {
			logger.Warn().
				Str("file", path).
				Str("key", key).
				Str("column", col).
				Msg("Header key missing, omitting provenance column")
			return
		}
		t, err = t.WithColumn(
			arrow.Field{Name: col, Type: arrow.PrimitiveTypes.Int32},
			table.ConstInt32(int32(v), n))
	}
	addString := func(col, key string) {
		if err != nil || t.HasColumn(col) {
			return
		}
		v, ok := hdr.GetString(key)
		if !ok {
			logger.Warn().
				Str("file", path).
				Str("key", key).
				Str("column", col).
				Msg("Header key missing, omitting provenance column")
			return
		}
		t, err = t.WithColumn(
			arrow.Field{Name: col, Type: arrow.BinaryTypes.String},
			table.ConstString(v, n))
	}
	addPetal := func() {
		if err != nil || t.HasColumn(ColPetalLoc) {
			return
		}
		v, ok := hdr.GetInt(KeyPetal)
		if !ok {
			logger.Warn().
				Str("file", path).
				Str("key", KeyPetal).
				Str("column", ColPetalLoc).
				Msg("Header key missing, omitting provenance column")
			return
		}
		t, err = t.WithColumn(
			arrow.Field{Name: ColPetalLoc, Type: arrow.PrimitiveTypes.Int16},
			table.ConstInt16(int16(v), n))
	}

	switch group {
	case GroupCumulative:
		addInt32(KeyTileID, KeyTileID)
		addInt32(ColLastNight, KeyNight)
		addPetal()
	case GroupPerNight:
		addInt32(KeyTileID, KeyTileID)
		addInt32(KeyNight, KeyNight)
		addPetal()
	case GroupPerExp:
		addInt32(KeyTileID, KeyTileID)
		addInt32(KeyNight, KeyNight)
		addInt32(KeyExpID, KeyExpID)
		addPetal()
	case GroupHealpix:
		addInt32(ColHealpix, KeyHpxPixel)
		addString(KeySurvey, KeySurvey)
		addString(KeyProgram, KeyProgram)
	}
	addInt32(KeySpGrpVal, KeySpGrpVal)

	return t, err
}
