// Package library is the sqlite-backed catalog store and its directory scanner.
package library

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/llehouerou/tides/internal/catalog"
	dbutil "github.com/llehouerou/tides/internal/db"
	"github.com/llehouerou/tides/internal/tags"
)

// Verify Library implements catalog.Mutator at compile time.
var _ catalog.Mutator = (*Library)(nil)

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("entry not found")

type executor interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

type Library struct {
	db *sql.DB
}

func New(db *sql.DB) *Library {
	return &Library{db: db}
}

const entryColumns = `id, path, title, artist, album, genre, year, duration_ms,
	replay_gain, play_count, favorite, lyrics, added_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (catalog.Entry, error) {
	var e catalog.Entry
	var durationMs, addedAt int64
	var gain sql.NullFloat64
	err := row.Scan(&e.ID, &e.Path, &e.Title, &e.Artist, &e.Album, &e.Genre, &e.Year,
		&durationMs, &gain, &e.PlayCount, &e.Favorite, &e.Lyrics, &addedAt)
	if err != nil {
		return catalog.Entry{}, err
	}
	e.Duration = time.Duration(durationMs) * time.Millisecond
	e.AddedAt = time.Unix(addedAt, 0)
	e.ReplayGain = dbutil.NullFloat64ToPtr(gain)
	return e, nil
}

// All returns every entry ordered by artist, album and track number.
func (l *Library) All() ([]catalog.Entry, error) {
	rows, err := l.db.Query(`SELECT ` + entryColumns + ` FROM catalog_entries
		ORDER BY artist COLLATE NOCASE, album COLLATE NOCASE, track_number, title COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []catalog.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Entry returns the entry with the given id.
func (l *Library) Entry(id int64) (catalog.Entry, error) {
	return l.one(`WHERE id = ?`, id)
}

// EntryByPath returns the entry stored for path.
func (l *Library) EntryByPath(path string) (catalog.Entry, error) {
	return l.one(`WHERE path = ?`, path)
}

func (l *Library) one(where string, arg any) (catalog.Entry, error) {
	e, err := scanEntry(l.db.QueryRow(`SELECT `+entryColumns+` FROM catalog_entries `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Entry{}, ErrNotFound
	}
	return e, err
}

// Resolver returns a lookup over the current catalog, loaded once.
func (l *Library) Resolver() (func(id int64) (catalog.Entry, bool), error) {
	all, err := l.All()
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]catalog.Entry, len(all))
	for _, e := range all {
		byID[e.ID] = e
	}
	return func(id int64) (catalog.Entry, bool) {
		e, ok := byID[id]
		return e, ok
	}, nil
}

// Count returns the number of entries.
func (l *Library) Count() (int, error) {
	var n int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM catalog_entries`).Scan(&n)
	return n, err
}

// IncrementPlayCount adds one to the play count of id.
func (l *Library) IncrementPlayCount(id int64) error {
	return l.update(`UPDATE catalog_entries SET play_count = play_count + 1 WHERE id = ?`, id)
}

// SetFavorite sets the favorite flag of id.
func (l *Library) SetFavorite(id int64, favorite bool) error {
	return l.update(`UPDATE catalog_entries SET favorite = ? WHERE id = ?`, favorite, id)
}

// SetLyrics stores the lyric blob of id.
func (l *Library) SetLyrics(id int64, lyrics string) error {
	return l.update(`UPDATE catalog_entries SET lyrics = ? WHERE id = ?`, lyrics, id)
}

// UpdateMetadata applies the non-nil fields of u to the stored entry.
func (l *Library) UpdateMetadata(id int64, u tags.Update) error {
	if u.IsEmpty() {
		return nil
	}
	e, err := l.Entry(id)
	if err != nil {
		return err
	}
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Artist != nil {
		e.Artist = *u.Artist
	}
	if u.Album != nil {
		e.Album = *u.Album
	}
	if u.Genre != nil {
		e.Genre = *u.Genre
	}
	if u.Year != nil {
		e.Year = *u.Year
	}
	if u.Lyrics != nil {
		e.Lyrics = *u.Lyrics
	}
	return l.update(`
		UPDATE catalog_entries
		SET title = ?, artist = ?, album = ?, genre = ?, year = ?, lyrics = ?, updated_at = ?
		WHERE id = ?
	`, e.Title, e.Artist, e.Album, e.Genre, e.Year, e.Lyrics, time.Now().Unix(), id)
}

func (l *Library) update(query string, args ...any) error {
	res, err := l.db.Exec(query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: id %v", ErrNotFound, args[len(args)-1])
	}
	return nil
}
