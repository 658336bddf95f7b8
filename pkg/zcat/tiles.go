package zcat

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/specsurvey/zcatalog/pkg/errors"
)

// TileSet is a tile inclusion list: discovery keeps only subdirectories for
// tiles it contains.
type TileSet map[int64]bool

// Contains reports whether a tile is in the set.
func (s TileSet) Contains(tile int64) bool {
	return s[tile]
}

// LoadTileSet reads a tile inclusion list. Two forms are accepted: a YAML
// file (.yaml/.yml) holding a list of tile numbers, or a plain text file
// with one tile number per line (# comments allowed).
func LoadTileSet(path string) (TileSet, error) {
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return loadTilesYAML(path)
	}
	return loadTilesText(path)
}

func loadTilesYAML(path string) (TileSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var tiles []int64
	if err := yaml.Unmarshal(data, &tiles); err != nil {
		return nil, errors.NewParseError("yaml", path, "tile list must be a list of integers", err)
	}
	set := make(TileSet, len(tiles))
	for _, t := range tiles {
		set[t] = true
	}
	return set, nil
}

func loadTilesText(path string) (TileSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	set := make(TileSet)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// tolerate whitespace-separated extra columns
		line = strings.Fields(line)[0]
		tile, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, errors.NewParseError("text", path, "bad tile number "+line, err)
		}
		set[tile] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return set, nil
}
