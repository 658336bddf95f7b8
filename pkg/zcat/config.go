package zcat

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/specsurvey/zcatalog/pkg/errors"
)

// Config is the full configuration for one catalog build.
type Config struct {
	// Indir is the root of the result file tree (required). Files are
	// discovered under the grouping's subdirectory, e.g. Indir/cumulative.
	Indir string

	// Outfile is the output catalog path. Empty derives a name from the
	// grouping next to Indir.
	Outfile string

	// Group selects the grouping scheme to aggregate.
	Group Grouping

	// Prefix is the result file naming convention, redrock or zbest.
	Prefix string

	// Minimal keeps only the reduced column set in the output.
	Minimal bool

	// TilesFile optionally restricts discovery to the tiles it lists.
	TilesFile string

	// Header holds caller KEY=VALUE overrides for the output header.
	Header map[string]string

	// PatchMissingIvar enables the reference-catalog patching stage.
	PatchMissingIvar bool

	// TargetsPath is the reference target catalog location: a directory of
	// healpix-partitioned files or a YAML manifest listing such roots.
	TargetsPath string

	// Nside is the healpix resolution used to bucket patch lookups.
	Nside int

	// RankColumn is the signal-to-noise metric used to pick the primary
	// spectrum. Defaults to DefaultRankColumn.
	RankColumn string

	// Parquet additionally exports the catalog as a parquet sidecar file.
	Parquet bool
}

// Validate checks required fields and fills defaults.
func (c *Config) Validate() error {
	if c.Indir == "" {
		return errors.NewConfigError("build", "input directory is required", nil)
	}
	if info, err := os.Stat(c.Indir); err != nil || !info.IsDir() {
		return errors.NewConfigError("build",
			fmt.Sprintf("input directory %s does not exist", c.Indir), err)
	}
	if c.Group == "" {
		c.Group = GroupCumulative
	}
	if _, err := ParseGrouping(string(c.Group)); err != nil {
		return errors.NewConfigError("build", "invalid grouping scheme", err)
	}
	if c.Prefix == "" {
		c.Prefix = PrefixRedrock
	}
	if c.Prefix != PrefixRedrock && c.Prefix != PrefixZbest {
		return errors.NewConfigError("build",
			fmt.Sprintf("unknown file prefix %q", c.Prefix), nil)
	}
	if c.Outfile == "" {
		c.Outfile = filepath.Join(filepath.Dir(filepath.Clean(c.Indir)),
			fmt.Sprintf("zcatalog-%s.fits", c.Group))
	}
	if c.Nside == 0 {
		c.Nside = 8
	}
	if c.RankColumn == "" {
		c.RankColumn = DefaultRankColumn
	}
	if c.PatchMissingIvar && c.TargetsPath == "" {
		return errors.NewConfigError("build",
			"patching missing ivar requires a reference target catalog path", nil)
	}
	return nil
}
