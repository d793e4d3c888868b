// Package playlists stores smart playlists: a name and a rule tree evaluated
// against the catalog on demand.
package playlists

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/tides/internal/catalog"
	"github.com/llehouerou/tides/internal/rules"
)

var (
	ErrNotFound  = errors.New("playlist not found")
	ErrEmptyName = errors.New("playlist name is empty")
)

// Playlist is a smart playlist.
type Playlist struct {
	ID        string
	Name      string
	Rules     *rules.Tree
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Playlists provides database operations for smart playlists.
type Playlists struct {
	db *sql.DB
}

// New creates a new Playlists instance.
func New(db *sql.DB) *Playlists {
	return &Playlists{db: db}
}

// Create stores a new playlist. A nil tree stores an empty AND group, which
// matches nothing until rules are added.
func (p *Playlists) Create(name string, tree *rules.Tree) (Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Playlist{}, ErrEmptyName
	}
	if tree == nil {
		tree = rules.NewTree(rules.And)
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return Playlist{}, err
	}

	now := time.Now()
	pl := Playlist{
		ID:        uuid.NewString(),
		Name:      name,
		Rules:     tree,
		CreatedAt: time.Unix(now.Unix(), 0),
		UpdatedAt: time.Unix(now.Unix(), 0),
	}
	_, err = p.db.Exec(`
		INSERT INTO smart_playlists (id, name, rules, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, pl.ID, pl.Name, string(data), now.Unix(), now.Unix())
	if err != nil {
		return Playlist{}, err
	}
	return pl, nil
}

// Rename renames a playlist.
func (p *Playlists) Rename(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	return p.exec(id, `UPDATE smart_playlists SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().Unix(), id)
}

// UpdateRules replaces the rule tree of a playlist.
func (p *Playlists) UpdateRules(id string, tree *rules.Tree) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	return p.exec(id, `UPDATE smart_playlists SET rules = ?, updated_at = ? WHERE id = ?`,
		string(data), time.Now().Unix(), id)
}

// Delete deletes a playlist.
func (p *Playlists) Delete(id string) error {
	return p.exec(id, `DELETE FROM smart_playlists WHERE id = ?`, id)
}

// List returns all playlists sorted by name.
func (p *Playlists) List() ([]Playlist, error) {
	rows, err := p.db.Query(`
		SELECT id, name, rules, created_at, updated_at
		FROM smart_playlists
		ORDER BY name COLLATE NOCASE, created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Playlist
	for rows.Next() {
		pl, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pl)
	}
	return out, rows.Err()
}

// Get returns a playlist by its ID.
func (p *Playlists) Get(id string) (Playlist, error) {
	row := p.db.QueryRow(`
		SELECT id, name, rules, created_at, updated_at
		FROM smart_playlists
		WHERE id = ?
	`, id)
	pl, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Playlist{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return pl, err
}

// Find returns the playlist whose ID or name (case-insensitive) matches ref.
func (p *Playlists) Find(ref string) (Playlist, error) {
	if _, err := uuid.Parse(ref); err == nil {
		return p.Get(ref)
	}
	all, err := p.List()
	if err != nil {
		return Playlist{}, err
	}
	for _, pl := range all {
		if strings.EqualFold(pl.Name, ref) {
			return pl, nil
		}
	}
	return Playlist{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// Tracks evaluates playlist id against entries.
func (p *Playlists) Tracks(id string, entries []catalog.Entry) ([]catalog.Entry, error) {
	pl, err := p.Get(id)
	if err != nil {
		return nil, err
	}
	return rules.Filter(entries, pl.Rules), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlaylist(row rowScanner) (Playlist, error) {
	var pl Playlist
	var raw string
	var created, updated int64
	if err := row.Scan(&pl.ID, &pl.Name, &raw, &created, &updated); err != nil {
		return Playlist{}, err
	}
	tree, err := rules.Parse([]byte(raw))
	if err != nil {
		return Playlist{}, fmt.Errorf("playlist %s: %w", pl.ID, err)
	}
	pl.Rules = tree
	pl.CreatedAt = time.Unix(created, 0)
	pl.UpdatedAt = time.Unix(updated, 0)
	return pl, nil
}

func (p *Playlists) exec(id, query string, args ...any) error {
	res, err := p.db.Exec(query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
