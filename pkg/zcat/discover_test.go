package zcat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specsurvey/zcatalog/pkg/errors"
	"github.com/specsurvey/zcatalog/pkg/logging"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())

	t.Run("finds prefixed files under the grouping subtree", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "cumulative", "80605", "20210405", "redrock-0-80605-thru20210405.fits"))
		touch(t, filepath.Join(dir, "cumulative", "80605", "20210405", "redrock-1-80605-thru20210405.fits"))
		touch(t, filepath.Join(dir, "cumulative", "80605", "20210405", "coadd-0-80605-thru20210405.fits"))
		touch(t, filepath.Join(dir, "cumulative", "80605", "20210405", "redrock-0-80605-thru20210405.log"))

		cfg := &Config{Indir: dir, Group: GroupCumulative, Prefix: PrefixRedrock}
		files, err := Discover(ctx, cfg)
		if err != nil {
			t.Fatalf("Discover: %v", err)
		}
		if len(files) != 2 {
			t.Fatalf("found %d files, want 2: %v", len(files), files)
		}
		if filepath.Base(files[0]) != "redrock-0-80605-thru20210405.fits" {
			t.Errorf("files not in lexical order: %v", files)
		}
	})

	t.Run("tile inclusion list prunes directories", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "cumulative", "80605", "20210405", "redrock-0-80605.fits"))
		touch(t, filepath.Join(dir, "cumulative", "80606", "20210405", "redrock-0-80606.fits"))
		tiles := filepath.Join(dir, "tiles.txt")
		if err := os.WriteFile(tiles, []byte("# keep one tile\n80605\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg := &Config{Indir: dir, Group: GroupCumulative, Prefix: PrefixRedrock, TilesFile: tiles}
		files, err := Discover(ctx, cfg)
		if err != nil {
			t.Fatalf("Discover: %v", err)
		}
		if len(files) != 1 || filepath.Base(files[0]) != "redrock-0-80605.fits" {
			t.Errorf("files = %v, want only tile 80605", files)
		}
	})

	t.Run("zero matches is fatal", func(t *testing.T) {
		cfg := &Config{Indir: t.TempDir(), Group: GroupCumulative, Prefix: PrefixRedrock}
		_, err := Discover(ctx, cfg)
		if err == nil {
			t.Fatal("expected error for empty tree")
		}
		if !errors.Is(err, errors.ErrNoFiles) {
			t.Errorf("error %v is not ErrNoFiles", err)
		}
	})
}

func TestLoadTileSet(t *testing.T) {
	t.Run("text and yaml forms agree", func(t *testing.T) {
		dir := t.TempDir()
		textPath := filepath.Join(dir, "tiles.txt")
		yamlPath := filepath.Join(dir, "tiles.yaml")
		if err := os.WriteFile(textPath, []byte("80605\n80606 extra\n\n# comment\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(yamlPath, []byte("- 80605\n- 80606\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		text, err := LoadTileSet(textPath)
		if err != nil {
			t.Fatalf("text: %v", err)
		}
		yml, err := LoadTileSet(yamlPath)
		if err != nil {
			t.Fatalf("yaml: %v", err)
		}
		if len(text) != 2 || len(yml) != 2 {
			t.Fatalf("sizes = %d, %d; want 2, 2", len(text), len(yml))
		}
		for tile := range text {
			if !yml.Contains(tile) {
				t.Errorf("yaml set missing tile %d", tile)
			}
		}
	})

	t.Run("bad tile number", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tiles.txt")
		if err := os.WriteFile(path, []byte("notanumber\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTileSet(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("missing indir", func(t *testing.T) {
		cfg := &Config{}
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for missing input directory")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		cfg := &Config{Indir: t.TempDir()}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if cfg.Group != GroupCumulative || cfg.Prefix != PrefixRedrock {
			t.Errorf("defaults = %s/%s", cfg.Group, cfg.Prefix)
		}
		if cfg.Outfile == "" || cfg.Nside != 8 || cfg.RankColumn != DefaultRankColumn {
			t.Errorf("derived defaults missing: %+v", cfg)
		}
	})

	t.Run("patching requires a reference path", func(t *testing.T) {
		cfg := &Config{Indir: t.TempDir(), PatchMissingIvar: true}
		if err := cfg.Validate(); err == nil {
			t.Error("expected error when patching without a target catalog")
		}
	})
}
