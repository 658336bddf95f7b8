package zcat

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/specsurvey/zcatalog/pkg/errors"
	"github.com/specsurvey/zcatalog/pkg/logging"
)

// Discover walks the input tree and returns the result file paths to
// aggregate, in lexical order so every run visits files deterministically.
// When the input directory has a subdirectory named after the grouping the
// walk starts there, matching the layout production pipelines write.
func Discover(ctx context.Context, cfg *Config) ([]string, error) {
	logger := logging.FromContext(ctx)

	root := cfg.Indir
	if info, err := os.Stat(filepath.Join(root, string(cfg.Group))); err == nil && info.IsDir() {
		root = filepath.Join(root, string(cfg.Group))
	}

	var tiles TileSet
	if cfg.TilesFile != "" {
		var err error
		tiles, err = LoadTileSet(cfg.TilesFile)
		if err != nil {
			return nil, err
		}
		logger.Info().
			Int("tiles", len(tiles)).
			Str("file", cfg.TilesFile).
			Msg("Restricting discovery to listed tiles")
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if tiles != nil && filepath.Dir(path) == root {
				// first level below the root is the tile directory
				if tile, perr := strconv.ParseInt(d.Name(), 10, 64); perr == nil && !tiles.Contains(tile) {
					return filepath.SkipDir
				}
			}
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, cfg.Prefix+"-") && strings.HasSuffix(name, ".fits") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapIO("read", root, err)
	}

	if len(files) == 0 {
		return nil, errors.NewIOError("read", root, errors.ErrNoFiles)
	}
	logger.Info().
		Int("files", len(files)).
		Str("root", root).
		Str("prefix", cfg.Prefix).
		Msg("Discovered result files")
	return files, nil
}
