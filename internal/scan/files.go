package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// CollectFiles expands paths into capture files. Files are taken as given,
// directories are globbed (non-recursively) with each of patterns. Paths
// that do not exist are returned in missing rather than failing the batch.
// The result is sorted and free of duplicates.
func CollectFiles(paths, patterns []string) (files []string, missing []string, err error) {
	for _, p := range paths {
		info, statErr := os.Stat(p)
		if statErr != nil {
			missing = append(missing, p)
			continue
		}

		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		for _, pattern := range patterns {
			matches, globErr := filepath.Glob(filepath.Join(p, pattern))
			if globErr != nil {
				return nil, missing, fmt.Errorf("glob %q in %s: %w", pattern, p, globErr)
			}
			for _, m := range matches {
				if fi, err := os.Stat(m); err == nil && !fi.IsDir() {
					files = append(files, m)
				}
			}
		}
	}

	slices.Sort(files)
	return slices.Compact(files), missing, nil
}
