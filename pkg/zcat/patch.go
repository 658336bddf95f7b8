package zcat

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/goccy/go-yaml"

	"github.com/specsurvey/zcatalog/internal/healpix"
	"github.com/specsurvey/zcatalog/pkg/errors"
	"github.com/specsurvey/zcatalog/pkg/fits"
	"github.com/specsurvey/zcatalog/pkg/logging"
	"github.com/specsurvey/zcatalog/pkg/table"
)

// TargetReader supplies reference target catalog partitions. Partitions
// returns the sources covering one healpixel in a deterministic scan order;
// ReadPartition loads one source as a table carrying TARGETID and the
// calibration columns.
type TargetReader interface {
	Partitions(ctx context.Context, pixel int64) ([]string, error)
	ReadPartition(ctx context.Context, ref string) (*table.Table, error)
}

// DirectoryReader reads healpix-partitioned reference target files from one
// or more root directories, scanned in listed order. A partition file for
// pixel P is any FITS file whose name ends in "hp-P.fits".
type DirectoryReader struct {
	Roots []string
}

// compile-time interface check
var _ TargetReader = (*DirectoryReader)(nil)

// targetManifest is the YAML form of a multi-root reference catalog.
type targetManifest struct {
	Roots []string `yaml:"roots"`
}

// NewTargetReader builds a reader from a reference catalog path: either a
// directory of partition files or a YAML manifest listing root directories
// in scan order.
func NewTargetReader(path string) (*DirectoryReader, error) {
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapIO("read", path, err)
		}
		var m targetManifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, errors.NewParseError("yaml", path, "bad target manifest", err)
		}
		if len(m.Roots) == 0 {
			return nil, errors.NewParseError("yaml", path, "target manifest lists no roots", nil)
		}
		return &DirectoryReader{Roots: m.Roots}, nil
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return nil, errors.NewIOError("open", path, errors.ErrNotFound)
	}
	return &DirectoryReader{Roots: []string{path}}, nil
}

// Partitions lists the partition files for a pixel: each root is scanned in
// listed order, matches within one root sorted lexically.
func (r *DirectoryReader) Partitions(_ context.Context, pixel int64) ([]string, error) {
	suffix := fmt.Sprintf("hp-%d.fits", pixel)
	var out []string
	for _, root := range r.Roots {
		var matches []string
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), suffix) {
				matches = append(matches, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.WrapIO("read", root, err)
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	return out, nil
}

// ReadPartition loads one partition file's target table.
func (r *DirectoryReader) ReadPartition(ctx context.Context, ref string) (*table.Table, error) {
	f, err := fits.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	if t, ok := f.Table("TARGETS"); ok {
		return t, nil
	}
	names := f.TableNames()
	if len(names) == 0 {
		return nil, errors.NewParseError("fits", ref, "no tables in reference file", nil)
	}
	t, _ := f.Table(names[0])
	return t, nil
}

// PatchMissingIvar replaces negative-sentinel FLUX_IVAR_W1/W2 values on
// science-target rows by looking their identifiers up in the reference
// catalog, bucketed by the healpixel of each row's sky position. Rows whose
// identifier never appears in the reference stay unpatched with a warning;
// a pixel with no reference source at all logs an error and the run
// continues. Returns the number of rows patched.
func PatchMissingIvar(ctx context.Context, t *table.Table, reader TargetReader, nside int) (*table.Table, int, error) {
	logger := logging.FromContext(ctx)

	if err := healpix.Validate(nside); err != nil {
		return nil, 0, err
	}

	ids, okID := t.Int64Column(ColTargetID)
	objtypes, okObj := t.StringColumn(ColObjType)
	ras, okRA := t.Float64Column(ColTargetRA)
	decs, okDec := t.Float64Column(ColTargetDec)
	w1, okW1 := t.Float32Column(ColIvarW1)
	w2, okW2 := t.Float32Column(ColIvarW2)
	if !okID || !okObj || !okRA || !okDec || !okW1 || !okW2 {
		logger.Warn().Msg("Catalog lacks the columns needed for ivar patching, skipping")
		return t, 0, nil
	}

	// Rows qualifying for a patch: an invalid value in either calibration
	// field, on a genuine science target with a physical identifier.
	buckets := make(map[int64][]int)
	for i := range ids {
		if (w1[i] >= 0 && w2[i] >= 0) || objtypes[i] != objTypeTarget || ids[i] <= 0 {
			continue
		}
		pix := healpix.RaDec2Pix(nside, ras[i], decs[i])
		buckets[pix] = append(buckets[pix], i)
	}
	if len(buckets) == 0 {
		return t, 0, nil
	}

	newW1 := make([]float32, len(w1))
	newW2 := make([]float32, len(w2))
	copy(newW1, w1)
	copy(newW2, w2)

	pixels := make([]int64, 0, len(buckets))
	for pix := range buckets {
		pixels = append(pixels, pix)
	}
	sort.Slice(pixels, func(i, j int) bool { return pixels[i] < pixels[j] })

	patched := 0
	for _, pix := range pixels {
		rows := buckets[pix]
		n, err := patchBucket(ctx, reader, pix, rows, ids, newW1, newW2)
		if err != nil {
			logger.Error().
				Err(err).
				Int64("healpix", pix).
				Int("targets", len(rows)).
				Msg("Reference lookup failed for pixel, leaving rows unpatched")
			continue
		}
		patched += n
	}

	out, err := t.SetColumn(ColIvarW1, table.Float32Of(newW1...))
	if err != nil {
		return nil, 0, err
	}
	out, err = out.SetColumn(ColIvarW2, table.Float32Of(newW2...))
	if err != nil {
		return nil, 0, err
	}

	logger.Info().
		Int("patched", patched).
		Int("pixels", len(pixels)).
		Msg("Patched missing inverse-variance fluxes from reference catalog")
	return out, patched, nil
}

// patchBucket resolves one pixel's rows against its reference partitions,
// stopping the scan early once every identifier is found.
func patchBucket(ctx context.Context, reader TargetReader, pix int64, rows []int, ids []int64, w1, w2 []float32) (int, error) {
	logger := logging.FromContext(ctx)

	parts, err := reader.Partitions(ctx, pix)
	if err != nil {
		return 0, err
	}
	if len(parts) == 0 {
		return 0, &errors.PatchError{Pixel: int(pix), Err: errors.ErrNotFound}
	}

	needIDs := make([]int64, len(rows))
	for j, row := range rows {
		needIDs[j] = ids[row]
	}
	need, err := table.FromArrays("need", []string{ColTargetID},
		[]arrow.Array{table.Int64Of(needIDs...)})
	if err != nil {
		return 0, err
	}

	found := make([]bool, len(rows))
	remaining := len(rows)
	patched := 0
	for _, part := range parts {
		ref, err := reader.ReadPartition(ctx, part)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("file", part).
				Msg("Skipping unreadable reference partition")
			continue
		}
		merged, matched, err := table.MatchByKey(ctx, need, ref, ColTargetID)
		if err != nil {
			return patched, err
		}
		refW1, ok1 := merged.Float32Column(ColIvarW1)
		refW2, ok2 := merged.Float32Column(ColIvarW2)
		if !ok1 || !ok2 {
			logger.Warn().
				Str("file", part).
				Msg("Reference partition lacks calibration columns, skipping")
			continue
		}
		for j, row := range rows {
			if found[j] || !matched[j] {
				continue
			}
			found[j] = true
			remaining--
			w1[row] = refW1[j]
			w2[row] = refW2[j]
			patched++
		}
		if remaining == 0 {
			break
		}
	}

	for j, row := range rows {
		if !found[j] {
			logger.Warn().
				Int64("targetid", ids[row]).
				Int64("healpix", pix).
				Msg("Target not found in reference catalog, row left unpatched")
		}
	}
	return patched, nil
}
