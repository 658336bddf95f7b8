// Package zcat assembles merged redshift catalogs from per-tile and
// per-healpix spectroscopic fit result files. One run discovers the result
// files for a grouping scheme, joins each file's redshift, fiber-metadata
// and signal-to-noise tables, stacks the per-file tables into one catalog,
// selects a primary spectrum per target, optionally patches missing
// calibration values from a reference target catalog, and writes the result
// out atomically.
package zcat

import (
	"github.com/specsurvey/zcatalog/pkg/errors"
)

// Grouping is the scheme under which spectra were coadded upstream. It
// decides which subdirectory tree holds the result files and which
// provenance columns each row carries.
type Grouping string

// The four supported grouping schemes.
const (
	GroupCumulative Grouping = "cumulative"
	GroupPerNight   Grouping = "pernight"
	GroupPerExp     Grouping = "perexp"
	GroupHealpix    Grouping = "healpix"
)

// ParseGrouping validates a grouping scheme name.
func ParseGrouping(s string) (Grouping, error) {
	switch Grouping(s) {
	case GroupCumulative, GroupPerNight, GroupPerExp, GroupHealpix:
		return Grouping(s), nil
	}
	return "", errors.NewValidationError("group", s,
		"must be one of cumulative, pernight, perexp, healpix")
}

// Result file prefixes: the extended layout and the legacy minimal layout.
const (
	PrefixRedrock = "redrock"
	PrefixZbest   = "zbest"
)

// Binary table extension names.
const (
	TableRedshifts   = "REDSHIFTS"
	TableZbest       = "ZBEST"
	TableFibermap    = "FIBERMAP"
	TableExpFibermap = "EXP_FIBERMAP"
	TableTSNR2       = "TSNR2"
	TableZcatalog    = "ZCATALOG"
)

// Header keys carried by result files.
const (
	KeySpGrp    = "SPGRP"
	KeySpGrpVal = "SPGRPVAL"
	KeyTileID   = "TILEID"
	KeyNight    = "NIGHT"
	KeyExpID    = "EXPID"
	KeyPetal    = "PETAL"
	KeyHpxPixel = "HPXPIXEL"
	KeySurvey   = "SURVEY"
	KeyProgram  = "PROGRAM"
)

// Catalog column names the pipeline computes or consumes directly.
const (
	ColTargetID  = "TARGETID"
	ColZWarn     = "ZWARN"
	ColObjType   = "OBJTYPE"
	ColTargetRA  = "TARGET_RA"
	ColTargetDec = "TARGET_DEC"
	ColIvarW1    = "FLUX_IVAR_W1"
	ColIvarW2    = "FLUX_IVAR_W2"
	ColNSpec     = "ZCAT_NSPEC"
	ColPrimary   = "ZCAT_PRIMARY"
	ColPetalLoc  = "PETAL_LOC"
	ColLastNight = "LASTNIGHT"
	ColHealpix   = "HEALPIX"

	// DefaultRankColumn is the signal-to-noise metric ranking repeated
	// observations of one target.
	DefaultRankColumn = "TSNR2_LRG"
)

// objTypeTarget marks fibers placed on genuine science targets, as opposed
// to sky or calibration fibers.
const objTypeTarget = "TGT"

// columnUnits maps known physical columns to their TUNIT strings for the
// output file.
var columnUnits = map[string]string{
	ColTargetRA:     "deg",
	ColTargetDec:    "deg",
	"FLUX_G":        "nanomaggy",
	"FLUX_R":        "nanomaggy",
	"FLUX_Z":        "nanomaggy",
	"FLUX_W1":       "nanomaggy",
	"FLUX_W2":       "nanomaggy",
	"FLUX_IVAR_G":   "nanomaggy^-2",
	"FLUX_IVAR_R":   "nanomaggy^-2",
	"FLUX_IVAR_Z":   "nanomaggy^-2",
	ColIvarW1:       "nanomaggy^-2",
	ColIvarW2:       "nanomaggy^-2",
	"COADD_EXPTIME": "s",
}
