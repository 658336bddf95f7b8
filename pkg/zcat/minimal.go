package zcat

import (
	"strings"

	"github.com/specsurvey/zcatalog/pkg/table"
)

// minimalBase is the reduced column set kept by minimal mode, before
// provenance and derived columns.
var minimalBase = []string{
	ColTargetID, "Z", "ZERR", ColZWarn, "SPECTYPE", "DELTACHI2",
	ColTargetRA, ColTargetDec, "FLUX_G", "FLUX_R", "FLUX_Z",
}

// provenanceColumns are every column any grouping scheme may have added.
var provenanceColumns = []string{
	KeyTileID, ColLastNight, KeyNight, KeyExpID, ColPetalLoc,
	ColHealpix, KeySurvey, KeyProgram, KeySpGrpVal,
}

// ProjectMinimal reduces the catalog to the minimal column set: the base
// science columns, every targeting-classification column (any name with the
// _TARGET suffix, survey-prefixed forms included), the grouping's
// provenance columns, and the derived primary/count columns. Columns absent
// from this catalog are skipped.
func ProjectMinimal(t *table.Table) (*table.Table, error) {
	keep := append([]string{}, minimalBase...)
	for _, name := range t.ColumnNames() {
		if strings.HasSuffix(name, "_TARGET") {
			keep = append(keep, name)
		}
	}
	keep = append(keep, provenanceColumns...)
	keep = append(keep, ColNSpec, ColPrimary)
	return t.Select(keep...)
}
