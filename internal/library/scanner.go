package library

import (
	"context"
	"strings"
	"time"

	"github.com/llehouerou/tides/internal/tags"
)

const numWorkers = 8

// ScanProgress reports the progress of a library scan.
type ScanProgress struct {
	Phase       string // "scanning", "processing", "cleaning", "done"
	Current     int
	Total       int
	CurrentFile string
	Stats       *ScanStats // Only populated when Phase == "done"
}

// ScanStats holds statistics for a completed scan.
type ScanStats struct {
	BySource map[string]*SourceStats // keyed by source path
}

// Totals sums the per-source statistics.
func (s *ScanStats) Totals() (added, updated, removed int) {
	for _, src := range s.BySource {
		added += len(src.Added)
		updated += len(src.Updated)
		removed += len(src.Removed)
	}
	return added, updated, removed
}

// SourceStats holds per-source scan statistics.
type SourceStats struct {
	Added   []string // relative paths of added entries
	Removed []string // relative paths of removed entries
	Updated []string // relative paths of updated entries (mtime changed)
}

// fileInfo holds information about a discovered music file.
type fileInfo struct {
	path   string
	mtime  int64
	source string // source path this file belongs to
}

// entryResult holds the result of processing a music file.
type entryResult struct {
	path     string
	mtime    int64
	info     *tags.Tag
	duration time.Duration
	source   string
	isNew    bool
}

// Refresh performs an incremental scan of the given source directories.
// progress is closed when the scan ends; pass nil to ignore progress.
func (l *Library) Refresh(ctx context.Context, sources []string, progress chan<- ScanProgress) (*ScanStats, error) {
	return l.refresh(ctx, sources, progress, false)
}

// FullRefresh rescans all files, ignoring modification times.
func (l *Library) FullRefresh(ctx context.Context, sources []string, progress chan<- ScanProgress) (*ScanStats, error) {
	return l.refresh(ctx, sources, progress, true)
}

func (l *Library) refresh(
	ctx context.Context,
	sources []string,
	progress chan<- ScanProgress,
	forceRescan bool,
) (*ScanStats, error) {
	report := func(p ScanProgress) {
		if progress != nil {
			progress <- p
		}
	}
	if progress != nil {
		defer close(progress)
	}

	stats := &ScanStats{
		BySource: make(map[string]*SourceStats),
	}
	for _, src := range sources {
		stats.BySource[src] = &SourceStats{}
	}

	// Phase 1: Scan directories for music files
	report(ScanProgress{Phase: "scanning"})
	files, discoveredPaths, err := discoverFiles(ctx, sources, report)
	if err != nil {
		return nil, err
	}

	// Phase 2: Get existing entries from DB (only from sources being scanned)
	existing, err := l.existingEntries(sources)
	if err != nil {
		return nil, err
	}

	filesToProcess := make([]fileInfo, 0, len(files))
	fileIsNew := make(map[string]bool)
	for _, f := range files {
		if !forceRescan {
			if mtime, ok := existing[f.path]; ok && mtime == f.mtime {
				continue
			}
		}
		_, existed := existing[f.path]
		fileIsNew[f.path] = !existed
		filesToProcess = append(filesToProcess, f)
	}

	// Phase 3: Process new/modified files in parallel
	if len(filesToProcess) > 0 {
		if err := l.processFiles(ctx, filesToProcess, fileIsNew, stats, report); err != nil {
			return nil, err
		}
	}

	// Phase 4: Clean up deleted files
	report(ScanProgress{Phase: "cleaning"})
	for path := range existing {
		if _, ok := discoveredPaths[path]; ok {
			continue
		}
		if err := l.deleteByPath(path); err != nil {
			return nil, err
		}
		for src := range stats.BySource {
			if strings.HasPrefix(path, src) {
				stats.BySource[src].Removed = append(stats.BySource[src].Removed, relativePath(src, path))
				break
			}
		}
	}

	report(ScanProgress{Phase: "done", Current: len(files), Total: len(files), Stats: stats})
	return stats, nil
}

// existingEntries returns path->mtime for the entries under sources.
func (l *Library) existingEntries(sources []string) (map[string]int64, error) {
	rows, err := l.db.Query(`SELECT path, mtime FROM catalog_entries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var path string
		var mtime int64
		if err := rows.Scan(&path, &mtime); err != nil {
			return nil, err
		}
		for _, src := range sources {
			if strings.HasPrefix(path, src) {
				out[path] = mtime
				break
			}
		}
	}
	return out, rows.Err()
}
