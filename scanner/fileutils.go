package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"texturefinder/types"
)

// ListCandidates enumerates the regular files directly inside dir in name order.
// Hidden files and sub-directories are skipped, as is the file at exclude (normally
// the reference image) when it lives in dir.
func ListCandidates(dir string, exclude string) ([]types.CandidatePath, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read candidate directory: %w", err)
	}

	excludeAbs := ""
	if exclude != "" {
		if abs, err := filepath.Abs(exclude); err == nil {
			excludeAbs = abs
		}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			continue
		}
		if !entry.Type().IsRegular() {
			// Follow symlinks to regular files only
			info, err := os.Stat(filepath.Join(dir, name))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)

	candidates := make([]types.CandidatePath, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if excludeAbs != "" {
			if abs, err := filepath.Abs(path); err == nil && abs == excludeAbs {
				continue
			}
		}
		candidates = append(candidates, types.CandidatePath{
			Path:  path,
			Name:  name,
			Index: len(candidates),
		})
	}

	return candidates, nil
}
