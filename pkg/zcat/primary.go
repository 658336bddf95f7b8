package zcat

import (
	"context"

	"github.com/apache/arrow/go/v17/arrow"

	"github.com/specsurvey/zcatalog/pkg/logging"
	"github.com/specsurvey/zcatalog/pkg/table"
)

// FindPrimary annotates a stacked catalog with ZCAT_NSPEC (how many rows
// share each row's target identifier) and ZCAT_PRIMARY (true on exactly one
// row per identifier, the best-ranked observation).
//
// Ranking prefers warning-free fits over flagged ones and a higher
// signal-to-noise metric within the same warning state; ties keep the
// earliest row, so output depends only on input order and repeated runs
// agree. When the catalog lacks the identifier, warning, or metric column
// the stage is silently skipped and the table is returned unchanged with
// added=false.
func FindPrimary(ctx context.Context, t *table.Table, rankColumn string) (*table.Table, bool, error) {
	logger := logging.FromContext(ctx)

	ids, ok := t.Int64Column(ColTargetID)
	if !ok {
		logger.Debug().Msg("No TARGETID column, skipping primary selection")
		return t, false, nil
	}
	zwarn, ok := t.Int64Column(ColZWarn)
	if !ok {
		logger.Debug().Msg("No ZWARN column, skipping primary selection")
		return t, false, nil
	}
	metric, ok := t.Float32Column(rankColumn)
	if !ok {
		logger.Debug().
			Str("column", rankColumn).
			Msg("No ranking metric column, skipping primary selection")
		return t, false, nil
	}

	// Group row indices by identifier, keeping first-appearance order.
	groups := make(map[int64][]int, len(ids))
	for i, id := range ids {
		groups[id] = append(groups[id], i)
	}

	primary := make([]bool, len(ids))
	nspec := make([]int32, len(ids))
	for _, rows := range groups {
		best := rows[0]
		for _, row := range rows[1:] {
			if betterSpectrum(zwarn[row], metric[row], zwarn[best], metric[best]) {
				best = row
			}
		}
		primary[best] = true
		for _, row := range rows {
			nspec[row] = int32(len(rows))
		}
	}

	out, err := t.WithColumn(
		arrow.Field{Name: ColNSpec, Type: arrow.PrimitiveTypes.Int32},
		table.Int32Of(nspec...))
	if err != nil {
		return nil, false, err
	}
	out, err = out.WithColumn(
		arrow.Field{Name: ColPrimary, Type: arrow.FixedWidthTypes.Boolean},
		table.BoolOf(primary...))
	if err != nil {
		return nil, false, err
	}

	logger.Info().
		Int("targets", len(groups)).
		Int("rows", len(ids)).
		Str("metric", rankColumn).
		Msg("Selected primary spectra")
	return out, true, nil
}

// betterSpectrum reports whether candidate (zw, m) outranks the current best
// (bestZw, bestM). Strict inequalities keep the earliest row on ties.
func betterSpectrum(zw int64, m float32, bestZw int64, bestM float32) bool {
	candOK := zw == 0
	bestOK := bestZw == 0
	if candOK != bestOK {
		return candOK
	}
	return m > bestM
}
