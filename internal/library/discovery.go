package library

import (
	"context"
	"os"
	"path/filepath"

	"github.com/llehouerou/tides/internal/tags"
)

// discoverFiles walks the given source directories and returns all music files found,
// plus a map of path->source for quick lookup.
func discoverFiles(
	ctx context.Context,
	sources []string,
	report func(ScanProgress),
) (files []fileInfo, discoveredPaths map[string]string, err error) {
	for _, src := range sources {
		err = filepath.WalkDir(src, func(path string, d os.DirEntry, walkErr error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Skip any walk errors - intentionally continuing to scan other paths
			if walkErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}
			if d.IsDir() || !tags.IsMusicFile(path) {
				return nil
			}

			info, infoErr := d.Info()
			if infoErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}

			files = append(files, fileInfo{
				path:   path,
				mtime:  info.ModTime().Unix(),
				source: src,
			})

			if len(files)%100 == 0 {
				report(ScanProgress{Phase: "scanning", Current: len(files), CurrentFile: path})
			}
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}

	discoveredPaths = make(map[string]string, len(files))
	for _, f := range files {
		discoveredPaths[f.path] = f.source
	}
	return files, discoveredPaths, nil
}

// relativePath returns the path relative to the source, or the full path if not under source.
func relativePath(source, path string) string {
	rel, err := filepath.Rel(source, path)
	if err != nil {
		return path
	}
	return rel
}

func statMtime(path string) (int64, error) {
	st, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return st.ModTime().Unix(), nil
}
