package library

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	dbutil "github.com/llehouerou/tides/internal/db"
	"github.com/llehouerou/tides/internal/decode"
	"github.com/llehouerou/tides/internal/tags"
)

// processFiles reads tags in parallel and writes results sequentially.
func (l *Library) processFiles(
	ctx context.Context,
	filesToProcess []fileInfo,
	fileIsNew map[string]bool,
	stats *ScanStats,
	report func(ScanProgress),
) error {
	total := len(filesToProcess)
	var processed atomic.Int64

	workCh := make(chan fileInfo, total)
	resultCh := make(chan entryResult, total)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for f := range workCh {
				if ctx.Err() != nil {
					processed.Add(1)
					continue
				}
				info, err := tags.Read(f.path)
				if err != nil {
					processed.Add(1)
					continue
				}
				// Unknown duration is stored as zero
				d, _ := decode.Duration(f.path)

				resultCh <- entryResult{
					path:     f.path,
					mtime:    f.mtime,
					info:     info,
					duration: d,
					source:   f.source,
					isNew:    fileIsNew[f.path],
				}
				processed.Add(1)
			}
		})
	}

	for _, f := range filesToProcess {
		workCh <- f
	}
	close(workCh)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				report(ScanProgress{Phase: "processing", Current: int(processed.Load()), Total: total})
			case <-done:
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Sequential writes: sqlite has a single writer
	var firstErr error
	for r := range resultCh {
		if firstErr != nil {
			continue
		}
		if err := upsertEntry(l.db, r.path, r.mtime, r.info, r.duration); err != nil {
			firstErr = err
			continue
		}
		rel := relativePath(r.source, r.path)
		if s, ok := stats.BySource[r.source]; ok {
			if r.isNew {
				s.Added = append(s.Added, rel)
			} else {
				s.Updated = append(s.Updated, rel)
			}
		}
	}
	close(done)

	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	report(ScanProgress{Phase: "processing", Current: total, Total: total})
	return nil
}

// AddFiles adds or refreshes specific files without walking their directories.
func (l *Library) AddFiles(paths []string) error {
	for _, path := range paths {
		info, err := tags.Read(path)
		if err != nil {
			return err
		}
		st, err := statMtime(path)
		if err != nil {
			return err
		}
		d, _ := decode.Duration(path)
		if err := upsertEntry(l.db, path, st, info, d); err != nil {
			return err
		}
	}
	return nil
}

// upsertEntry inserts or updates an entry. Play count, favorite and lyrics
// fetched later are kept; embedded lyrics only fill an empty blob.
// Uses file mtime for added_at on new entries.
func upsertEntry(ex executor, path string, mtime int64, info *tags.Tag, d time.Duration) error {
	now := time.Now().Unix()
	_, err := ex.Exec(`
		INSERT INTO catalog_entries (path, mtime, title, artist, album, genre, year, track_number,
			duration_ms, replay_gain, lyrics, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime = excluded.mtime,
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			genre = excluded.genre,
			year = excluded.year,
			track_number = excluded.track_number,
			duration_ms = excluded.duration_ms,
			replay_gain = excluded.replay_gain,
			lyrics = CASE WHEN catalog_entries.lyrics = '' THEN excluded.lyrics ELSE catalog_entries.lyrics END,
			updated_at = excluded.updated_at
	`, path, mtime, info.Title, info.Artist, info.Album, info.Genre, info.Year, dbutil.PositiveArg(info.TrackNumber),
		d.Milliseconds(), dbutil.PtrArg(info.ReplayGain), info.Lyrics, mtime, now)
	return err
}

func (l *Library) deleteByPath(path string) error {
	_, err := l.db.Exec(`DELETE FROM catalog_entries WHERE path = ?`, path)
	return err
}
