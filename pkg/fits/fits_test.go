package fits

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"

	"github.com/specsurvey/zcatalog/pkg/table"
)

func TestHeader(t *testing.T) {
	h := NewHeader()
	h.Set("TILEID", 80605, "tile number")
	h.Set("SPGRP", "cumulative", "grouping scheme")
	h.Set("TILEID", 80606, "tile number")

	if n, ok := h.GetInt("TILEID"); !ok || n != 80606 {
		t.Errorf("GetInt(TILEID) = %d, %v; want 80606", n, ok)
	}
	if s, ok := h.GetString("SPGRP"); !ok || s != "cumulative" {
		t.Errorf("GetString(SPGRP) = %q, %v", s, ok)
	}
	if len(h.Cards()) != 2 {
		t.Errorf("Set on existing key duplicated the card: %v", h.Cards())
	}

	clone := h.Clone()
	clone.Delete("TILEID")
	if !h.Has("TILEID") {
		t.Error("Delete on clone mutated the original")
	}
	if clone.Has("TILEID") {
		t.Error("Delete left the card in place")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in     string
		repeat int
		code   byte
		err    bool
	}{
		{"K", 1, 'K', false},
		{"E", 1, 'E', false},
		{"10D", 10, 'D', false},
		{"8A", 8, 'A', false},
		{"", 0, 0, true},
		{"12", 0, 0, true},
	}
	for _, tt := range tests {
		got, err := parseFormat(tt.in)
		if tt.err {
			if err == nil {
				t.Errorf("parseFormat(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseFormat(%q): %v", tt.in, err)
			continue
		}
		if got.repeat != tt.repeat || got.code != tt.code {
			t.Errorf("parseFormat(%q) = %+v, want repeat=%d code=%c", tt.in, got, tt.repeat, tt.code)
		}
	}
}

func TestWriteOpenRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "redrock-0-80605-thru20210405.fits")

	redshifts, err := table.FromArrays("REDSHIFTS",
		[]string{"TARGETID", "Z", "ZWARN", "SPECTYPE"},
		[]arrow.Array{
			table.Int64Of(39627652591390441, 39627652591390442),
			table.Float64Of(0.8523, 1.2001),
			table.Int64Of(0, 4),
			table.StringOf("GALAXY", "QSO"),
		})
	if err != nil {
		t.Fatalf("building table: %v", err)
	}

	hdr := NewHeader()
	hdr.Set("SPGRP", "cumulative", "grouping scheme")
	hdr.Set("TILEID", 80605, "tile number")

	if err := Write(path, hdr, []*table.Table{redshifts}, map[string]string{}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if s, ok := f.PrimaryHeader().GetString("SPGRP"); !ok || s != "cumulative" {
		t.Errorf("primary SPGRP = %q, %v", s, ok)
	}
	if n, ok := f.PrimaryHeader().GetInt("TILEID"); !ok || n != 80605 {
		t.Errorf("primary TILEID = %d, %v", n, ok)
	}

	got, ok := f.Table("REDSHIFTS")
	if !ok {
		t.Fatalf("REDSHIFTS table missing; file has %v", f.TableNames())
	}
	if got.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", got.NumRows())
	}
	ids, _ := got.Int64Column("TARGETID")
	if ids[0] != 39627652591390441 {
		t.Errorf("TARGETID[0] = %d", ids[0])
	}
	zs, _ := got.Float64Column("Z")
	if zs[1] != 1.2001 {
		t.Errorf("Z[1] = %v", zs[1])
	}
	types, _ := got.StringColumn("SPECTYPE")
	if types[1] != "QSO" {
		t.Errorf("SPECTYPE[1] = %q", types[1])
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope.fits")); err == nil {
		t.Error("expected error opening a missing file")
	}
}
