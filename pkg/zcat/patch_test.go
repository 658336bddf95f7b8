package zcat

import (
	"context"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"

	"github.com/specsurvey/zcatalog/internal/healpix"
	"github.com/specsurvey/zcatalog/pkg/logging"
	"github.com/specsurvey/zcatalog/pkg/table"
)

// fakeReader serves in-memory reference partitions and records which ones
// were read.
type fakeReader struct {
	parts map[int64][]string
	data  map[string]*table.Table
	reads []string
}

var _ TargetReader = (*fakeReader)(nil)

func (r *fakeReader) Partitions(_ context.Context, pixel int64) ([]string, error) {
	return r.parts[pixel], nil
}

func (r *fakeReader) ReadPartition(_ context.Context, ref string) (*table.Table, error) {
	r.reads = append(r.reads, ref)
	return r.data[ref], nil
}

func refTable(t *testing.T, ids []int64, w1, w2 []float32) *table.Table {
	t.Helper()
	tbl, err := table.FromArrays("TARGETS",
		[]string{ColTargetID, ColIvarW1, ColIvarW2},
		[]arrow.Array{table.Int64Of(ids...), table.Float32Of(w1...), table.Float32Of(w2...)})
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func patchCatalog(t *testing.T, ids []int64, objtypes []string, w1 []float32) *table.Table {
	t.Helper()
	n := len(ids)
	ras := make([]float64, n)
	decs := make([]float64, n)
	w2 := make([]float32, n)
	for i := range ids {
		ras[i] = 150.0
		decs[i] = 2.0
		w2[i] = 1.0
	}
	tbl, err := table.FromArrays(TableZcatalog,
		[]string{ColTargetID, ColObjType, ColTargetRA, ColTargetDec, ColIvarW1, ColIvarW2},
		[]arrow.Array{
			table.Int64Of(ids...),
			table.StringOf(objtypes...),
			table.Float64Of(ras...),
			table.Float64Of(decs...),
			table.Float32Of(w1...),
			table.Float32Of(w2...),
		})
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestPatchMissingIvar(t *testing.T) {
	const nside = 8
	pix := healpix.RaDec2Pix(nside, 150.0, 2.0)

	t.Run("patches from reference and warns on misses", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)

		// row 0: patchable, in reference; row 1: patchable, absent from
		// reference; row 2: valid already; row 3: sky fiber placeholder.
		cat := patchCatalog(t,
			[]int64{100, 200, 300, -1},
			[]string{"TGT", "TGT", "TGT", "SKY"},
			[]float32{-1, -1, 2.5, -1})
		reader := &fakeReader{
			parts: map[int64][]string{pix: {"part-0"}},
			data: map[string]*table.Table{
				"part-0": refTable(t, []int64{100}, []float32{7.25}, []float32{8.5}),
			},
		}

		out, patched, err := PatchMissingIvar(ctx, cat, reader, nside)
		if err != nil {
			t.Fatalf("PatchMissingIvar: %v", err)
		}
		if patched != 1 {
			t.Errorf("patched = %d, want 1", patched)
		}
		w1, _ := out.Float32Column(ColIvarW1)
		w2, _ := out.Float32Column(ColIvarW2)
		if w1[0] != 7.25 || w2[0] != 8.5 {
			t.Errorf("row 0 ivar = (%v, %v), want reference values (7.25, 8.5)", w1[0], w2[0])
		}
		if w1[1] != -1 {
			t.Errorf("row 1 ivar = %v, want original sentinel -1", w1[1])
		}
		if w1[2] != 2.5 {
			t.Errorf("row 2 ivar = %v, valid value must not change", w1[2])
		}
		if w1[3] != -1 {
			t.Errorf("row 3 (sky fiber) ivar = %v, must stay unpatched", w1[3])
		}
		tl.AssertContains(t, "left unpatched")
	})

	t.Run("short circuits once all targets found", func(t *testing.T) {
		ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())
		cat := patchCatalog(t, []int64{100}, []string{"TGT"}, []float32{-1})
		reader := &fakeReader{
			parts: map[int64][]string{pix: {"part-0", "part-1"}},
			data: map[string]*table.Table{
				"part-0": refTable(t, []int64{100}, []float32{3}, []float32{4}),
				"part-1": refTable(t, []int64{100}, []float32{9}, []float32{9}),
			},
		}
		out, _, err := PatchMissingIvar(ctx, cat, reader, nside)
		if err != nil {
			t.Fatalf("PatchMissingIvar: %v", err)
		}
		if len(reader.reads) != 1 {
			t.Errorf("read %v partitions, want scan to stop after the first", reader.reads)
		}
		w1, _ := out.Float32Column(ColIvarW1)
		if w1[0] != 3 {
			t.Errorf("ivar = %v, want first partition's value 3", w1[0])
		}
	})

	t.Run("missing reference source logs error and continues", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)

		cat := patchCatalog(t, []int64{100}, []string{"TGT"}, []float32{-1})
		reader := &fakeReader{parts: map[int64][]string{}, data: map[string]*table.Table{}}

		out, patched, err := PatchMissingIvar(ctx, cat, reader, nside)
		if err != nil {
			t.Fatalf("PatchMissingIvar: %v", err)
		}
		if patched != 0 {
			t.Errorf("patched = %d, want 0", patched)
		}
		w1, _ := out.Float32Column(ColIvarW1)
		if w1[0] != -1 {
			t.Errorf("ivar = %v, want untouched sentinel", w1[0])
		}
		tl.AssertContains(t, "Reference lookup failed")
	})

	t.Run("nothing to patch is a no-op", func(t *testing.T) {
		ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())
		cat := patchCatalog(t, []int64{100}, []string{"TGT"}, []float32{5})
		reader := &fakeReader{}
		out, patched, err := PatchMissingIvar(ctx, cat, reader, nside)
		if err != nil {
			t.Fatalf("PatchMissingIvar: %v", err)
		}
		if patched != 0 || out != cat {
			t.Errorf("no-op expected, got patched=%d", patched)
		}
		if len(reader.reads) != 0 {
			t.Errorf("reference read despite nothing to patch: %v", reader.reads)
		}
	})

	t.Run("missing columns skip the stage", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		tbl, err := table.FromArrays(TableZcatalog,
			[]string{ColTargetID},
			[]arrow.Array{table.Int64Of(1)})
		if err != nil {
			t.Fatal(err)
		}
		out, patched, err := PatchMissingIvar(ctx, tbl, &fakeReader{}, nside)
		if err != nil {
			t.Fatalf("PatchMissingIvar: %v", err)
		}
		if patched != 0 || out != tbl {
			t.Error("expected a skip when columns are missing")
		}
		tl.AssertContains(t, "skipping")
	})
}
