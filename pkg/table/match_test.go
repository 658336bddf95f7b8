package table

import (
	"context"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/specsurvey/zcatalog/pkg/logging"
)

func TestMatchByKey(t *testing.T) {
	ctx := context.Background()

	left := mustTable(t, "need",
		[]string{"TARGETID"},
		[]arrow.Array{Int64Of(10, 20, 30)})
	right := mustTable(t, "ref",
		[]string{"TARGETID", "FLUX_IVAR_W1", "FLUX_IVAR_W2"},
		[]arrow.Array{Int64Of(30, 10), Float32Of(3.5, 1.5), Float32Of(3.6, 1.6)})

	t.Run("copies right columns aligned to left", func(t *testing.T) {
		out, matched, err := MatchByKey(ctx, left, right, "TARGETID")
		if err != nil {
			t.Fatalf("MatchByKey: %v", err)
		}
		w1, ok := out.Float32Column("FLUX_IVAR_W1")
		if !ok {
			t.Fatal("FLUX_IVAR_W1 not copied")
		}
		if w1[0] != 1.5 || w1[2] != 3.5 {
			t.Errorf("FLUX_IVAR_W1 = %v, want values aligned to left order", w1)
		}
		if w1[1] != 0 {
			t.Errorf("unmatched row got %v, want zero fill", w1[1])
		}
		want := []bool{true, false, true}
		for i := range want {
			if matched[i] != want[i] {
				t.Errorf("matched[%d] = %v, want %v", i, matched[i], want[i])
			}
		}
	})

	t.Run("first match wins on duplicate right keys", func(t *testing.T) {
		dup := mustTable(t, "ref",
			[]string{"TARGETID", "FLUX_IVAR_W1"},
			[]arrow.Array{Int64Of(10, 10), Float32Of(7.0, 8.0)})
		out, _, err := MatchByKey(ctx, left, dup, "TARGETID")
		if err != nil {
			t.Fatalf("MatchByKey: %v", err)
		}
		w1, _ := out.Float32Column("FLUX_IVAR_W1")
		if w1[0] != 7.0 {
			t.Errorf("FLUX_IVAR_W1[0] = %v, want first right match 7.0", w1[0])
		}
	})

	t.Run("never duplicates left columns", func(t *testing.T) {
		leftWithIvar := mustTable(t, "need",
			[]string{"TARGETID", "FLUX_IVAR_W1"},
			[]arrow.Array{Int64Of(10), Float32Of(-1)})
		out, _, err := MatchByKey(ctx, leftWithIvar, right, "TARGETID")
		if err != nil {
			t.Fatalf("MatchByKey: %v", err)
		}
		w1, _ := out.Float32Column("FLUX_IVAR_W1")
		if w1[0] != -1 {
			t.Errorf("left FLUX_IVAR_W1 overwritten: %v", w1[0])
		}
	})

	t.Run("drops vector columns with a warning", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)

		coeff := vectorColumn(t, [][]float64{{1, 2}, {3, 4}})
		withVec := mustTable(t, "ref",
			[]string{"TARGETID", "COEFF"},
			[]arrow.Array{Int64Of(30, 10), coeff})

		out, _, err := MatchByKey(ctx, left, withVec, "TARGETID")
		if err != nil {
			t.Fatalf("MatchByKey: %v", err)
		}
		if out.HasColumn("COEFF") {
			t.Error("vector column should have been dropped")
		}
		tl.AssertContains(t, "COEFF")
	})

	t.Run("missing key column", func(t *testing.T) {
		noKey := mustTable(t, "ref", []string{"X"}, []arrow.Array{Int64Of(1)})
		if _, _, err := MatchByKey(ctx, left, noKey, "TARGETID"); err == nil {
			t.Error("expected error when right lacks the key column")
		}
	})
}

// vectorColumn builds a fixed-size-list float64 column, one vector per row.
func vectorColumn(t *testing.T, rows [][]float64) arrow.Array {
	t.Helper()
	width := len(rows[0])
	b := array.NewFixedSizeListBuilder(memory.NewGoAllocator(), int32(width), arrow.PrimitiveTypes.Float64)
	defer b.Release()
	vb := b.ValueBuilder().(*array.Float64Builder)
	for _, row := range rows {
		b.Append(true)
		vb.AppendValues(row, nil)
	}
	return b.NewArray()
}
