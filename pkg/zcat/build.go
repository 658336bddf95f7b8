package zcat

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/agentstation/utc"

	"github.com/specsurvey/zcatalog/pkg/errors"
	"github.com/specsurvey/zcatalog/pkg/fits"
	"github.com/specsurvey/zcatalog/pkg/logging"
	"github.com/specsurvey/zcatalog/pkg/table"
)

// Summary reports what one catalog build produced.
type Summary struct {
	Outfile      string
	Files        int
	Skipped      int
	Rows         int64
	PrimaryAdded bool
	Patched      int
	Duration     time.Duration
}

// headerDropKeys are per-file metadata keys that make no sense on a merged
// catalog and are stripped from the inherited header.
var headerDropKeys = []string{
	KeyTileID, KeyNight, KeyExpID, KeyPetal, KeyHpxPixel, KeySpGrpVal,
}

// Build runs the whole aggregation pipeline: discover result files, read
// and join each one, stack the per-file tables, select primary spectra,
// optionally patch calibration values from the reference catalog, and write
// the combined catalog. The output is written to a temporary path and
// renamed into place so a crash never leaves a partial catalog visible.
func Build(ctx context.Context, cfg *Config) (*Summary, error) {
	logger := logging.FromContext(ctx)
	started := utc.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	files, err := Discover(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var catalogs []*table.Table
	var expTables []*table.Table
	var header *fits.Header
	skipped := 0
	for _, path := range files {
		data, err := ReadResultFile(ctx, path, cfg)
		if err != nil {
			if errors.IsGroupMismatch(err) {
				logger.Warn().
					Str("file", path).
					Str("group", string(cfg.Group)).
					Msg("Skipping file from a different grouping scheme")
				skipped++
				continue
			}
			return nil, err
		}
		catalogs = append(catalogs, data.Catalog)
		if data.ExpFibermap != nil {
			expTables = append(expTables, data.ExpFibermap)
		}
		if header == nil {
			header = data.Header
		}
	}
	if len(catalogs) == 0 {
		return nil, errors.NewIOError("read", cfg.Indir, errors.ErrNoFiles)
	}

	catalog, err := table.Stack(TableZcatalog, catalogs...)
	if err != nil {
		return nil, err
	}

	catalog, primaryAdded, err := FindPrimary(ctx, catalog, cfg.RankColumn)
	if err != nil {
		return nil, err
	}

	patched := 0
	if cfg.PatchMissingIvar {
		reader, err := NewTargetReader(cfg.TargetsPath)
		if err != nil {
			return nil, err
		}
		catalog, patched, err = PatchMissingIvar(ctx, catalog, reader, cfg.Nside)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Minimal {
		catalog, err = ProjectMinimal(catalog)
		if err != nil {
			return nil, err
		}
	}

	tables := []*table.Table{catalog}
	if len(expTables) > 0 {
		exp, err := table.Stack(TableExpFibermap, expTables...)
		if err != nil {
			return nil, err
		}
		tables = append(tables, exp)
	}

	if err := writeCatalog(ctx, cfg, outputHeader(header, cfg), tables); err != nil {
		return nil, err
	}

	if cfg.Parquet {
		if err := writeParquet(ctx, parquetPath(cfg.Outfile), catalog); err != nil {
			return nil, err
		}
	}

	summary := &Summary{
		Outfile:      cfg.Outfile,
		Files:        len(catalogs),
		Skipped:      skipped,
		Rows:         catalog.NumRows(),
		PrimaryAdded: primaryAdded,
		Patched:      patched,
		Duration:     time.Since(started.Time),
	}
	logger.Info().
		Str("outfile", summary.Outfile).
		Int("files", summary.Files).
		Int("skipped", summary.Skipped).
		Int64("rows", summary.Rows).
		Int("patched", summary.Patched).
		Dur("duration", summary.Duration).
		Msg("Wrote combined catalog")
	return summary, nil
}

// outputHeader derives the output primary header: the first input file's
// header minus per-file keys, plus the grouping, a creation timestamp, and
// any caller overrides.
func outputHeader(inherited *fits.Header, cfg *Config) *fits.Header {
	hdr := fits.NewHeader()
	if inherited != nil {
		hdr = inherited.Clone()
	}
	for _, key := range headerDropKeys {
		hdr.Delete(key)
	}
	hdr.Set(KeySpGrp, string(cfg.Group), "grouping scheme")
	hdr.Set("DATE", utc.Now().Format(time.RFC3339), "catalog creation time")
	keys := make([]string, 0, len(cfg.Header))
	for key := range cfg.Header {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		hdr.Set(key, cfg.Header[key], "")
	}
	return hdr
}

// writeCatalog serializes the tables to a temporary file next to the final
// path and renames it into place on success.
func writeCatalog(ctx context.Context, cfg *Config, hdr *fits.Header, tables []*table.Table) error {
	logger := logging.FromContext(ctx)

	tmp := cfg.Outfile + ".tmp"
	if err := fits.Write(tmp, hdr, tables, columnUnits); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, cfg.Outfile); err != nil {
		os.Remove(tmp)
		return errors.WrapIO("rename", cfg.Outfile, err)
	}
	logger.Debug().
		Str("outfile", cfg.Outfile).
		Msg("Renamed temporary catalog into place")
	return nil
}
