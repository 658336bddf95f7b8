package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specsurvey/zcatalog/pkg/errors"
	"github.com/specsurvey/zcatalog/pkg/logging"
	"github.com/specsurvey/zcatalog/pkg/zcat"
)

var buildFlags struct {
	indir      string
	outfile    string
	group      string
	prefix     string
	minimal    bool
	tiles      string
	headers    []string
	patchIvar  bool
	targets    string
	nside      int
	rankColumn string
	parquet    bool
}

// buildCmd runs the full aggregation pipeline.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a combined redshift catalog from result files",
	Long: `Build discovers the result files under the input directory, joins and
stacks their tables into one catalog, selects a primary spectrum per target,
and writes the combined catalog atomically.`,
	Example: `  # merge a cumulative tile reduction
  zcatalog build --indir /data/tiles --group cumulative

  # legacy files, reduced columns, patched calibration values
  zcatalog build --indir /data/tiles --prefix zbest --minimal \
      --patch-missing-ivar --targets /data/targets`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildFlags.indir, "indir", "", "input directory of result files (required)")
	buildCmd.Flags().StringVar(&buildFlags.outfile, "outfile", "", "output catalog path (default derived from the grouping)")
	buildCmd.Flags().StringVar(&buildFlags.group, "group", string(zcat.GroupCumulative), "grouping scheme: cumulative, pernight, perexp, healpix")
	buildCmd.Flags().StringVar(&buildFlags.prefix, "prefix", zcat.PrefixRedrock, "result file prefix: redrock or zbest")
	buildCmd.Flags().BoolVar(&buildFlags.minimal, "minimal", false, "keep only the reduced column set")
	buildCmd.Flags().StringVar(&buildFlags.tiles, "tiles", "", "file listing tiles to include")
	buildCmd.Flags().StringArrayVar(&buildFlags.headers, "header", nil, "output header override KEY=VALUE (repeatable)")
	buildCmd.Flags().BoolVar(&buildFlags.patchIvar, "patch-missing-ivar", false, "patch missing inverse-variance fluxes from the reference catalog")
	buildCmd.Flags().StringVar(&buildFlags.targets, "targets", "", "reference target catalog directory or YAML manifest")
	buildCmd.Flags().IntVar(&buildFlags.nside, "nside", 8, "healpix resolution for patch lookups")
	buildCmd.Flags().StringVar(&buildFlags.rankColumn, "rank-column", zcat.DefaultRankColumn, "signal-to-noise column ranking repeated observations")
	buildCmd.Flags().BoolVar(&buildFlags.parquet, "parquet", false, "also export the catalog as parquet")

	_ = buildCmd.MarkFlagRequired("indir")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	headers, err := parseHeaderOverrides(buildFlags.headers)
	if err != nil {
		return err
	}

	cfg := &zcat.Config{
		Indir:            buildFlags.indir,
		Outfile:          buildFlags.outfile,
		Group:            zcat.Grouping(buildFlags.group),
		Prefix:           buildFlags.prefix,
		Minimal:          buildFlags.minimal,
		TilesFile:        buildFlags.tiles,
		Header:           headers,
		PatchMissingIvar: buildFlags.patchIvar,
		TargetsPath:      buildFlags.targets,
		Nside:            buildFlags.nside,
		RankColumn:       buildFlags.rankColumn,
		Parquet:          buildFlags.parquet,
	}

	ctx := logging.WithLogger(cmd.Context(), logging.Default())
	summary, err := zcat.Build(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %s: %d rows from %d files", summary.Outfile, summary.Rows, summary.Files)
	if summary.Skipped > 0 {
		fmt.Printf(" (%d skipped)", summary.Skipped)
	}
	fmt.Println()
	return nil
}

// parseHeaderOverrides splits repeated KEY=VALUE flags into a map.
func parseHeaderOverrides(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errors.NewValidationError("header", pair, "must be KEY=VALUE")
		}
		out[strings.ToUpper(key)] = value
	}
	return out, nil
}
