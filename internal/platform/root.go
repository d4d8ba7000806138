package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/marytreat/pkg/core"
)

const mapPattern = "*.ditamap"

// FindRoot looks upwards from startDir for a project folder. Indicators
// are a .marytreat.yaml file, a .marytreat directory or a *.ditamap file.
// It returns the absolute path of the first folder that has one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFile) || hasFile(dir, ".marytreat") || hasMap(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("project root not found from %s", abs)
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

func hasMap(dir string) bool {
	maps, err := doublestar.Glob(os.DirFS(dir), mapPattern)
	return err == nil && len(maps) > 0
}

// FindMap returns the only ditamap of dir, relative to dir.
func FindMap(dir string) (string, error) {
	maps, err := doublestar.Glob(os.DirFS(dir), mapPattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", err
	}
	switch len(maps) {
	case 0:
		return "", fmt.Errorf("%s: %w", dir, core.ErrNoMap)
	case 1:
		return maps[0], nil
	default:
		sort.Strings(maps)
		return "", fmt.Errorf("several maps in %s, pick one with --map: %s", dir, strings.Join(maps, ", "))
	}
}
