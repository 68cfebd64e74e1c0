// Package backend persists playlists to SQLite: entries, playback
// pointers, repeat/shuffle modes and the active generator, restored on
// the next start.
package backend

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/yasserzoho/Clementine/internal/db"
	"github.com/yasserzoho/Clementine/internal/playlist"
	"github.com/yasserzoho/Clementine/internal/song"
)

const (
	appName    = "clementine"
	dbFileName = "playlists.db"
)

type Backend struct {
	db *sql.DB
}

// Open opens the playlist database at its XDG data path.
func Open() (*Backend, error) {
	path, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath opens a playlist database at an explicit path.
func OpenPath(path string) (*Backend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return &Backend{db: sqlDB}, nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}

func initSchema(sqlDB *sql.DB) error {
	_, err := sqlDB.Exec(`
		CREATE TABLE IF NOT EXISTS playlists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			current_row INTEGER NOT NULL DEFAULT -1,
			last_played_row INTEGER NOT NULL DEFAULT -1,
			stop_after_row INTEGER NOT NULL DEFAULT -1,
			repeat_mode INTEGER NOT NULL DEFAULT 0,
			shuffle_mode INTEGER NOT NULL DEFAULT 0,
			dynamic_generator TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS playlist_items (
			playlist_id INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			kind INTEGER NOT NULL,
			library_id INTEGER NOT NULL DEFAULT 0,
			url TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT,
			album TEXT,
			album_artist TEXT,
			genre TEXT,
			track_number INTEGER,
			year INTEGER,
			duration_ns INTEGER NOT NULL DEFAULT 0,
			rating REAL NOT NULL DEFAULT -1,
			compilation INTEGER NOT NULL DEFAULT 0,
			generated INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (playlist_id, position)
		);
	`)
	return err
}

// Entry is one persisted playlist row.
type Entry struct {
	Kind      song.Kind
	Song      song.Song
	Generated bool
}

// Snapshot is the persisted form of one playlist.
type Snapshot struct {
	Name          string
	Entries       []Entry
	CurrentRow    int
	LastPlayedRow int
	StopAfterRow  int
	RepeatMode    playlist.RepeatMode
	ShuffleMode   playlist.ShuffleMode
	GeneratorName string // "" when not dynamic
}

// Info describes a stored playlist without its entries.
type Info struct {
	ID      int64
	Name    string
	Entries int
}

// Create registers a new empty playlist and returns its id.
func (b *Backend) Create(name string) (int64, error) {
	now := time.Now().Unix()
	res, err := b.db.Exec(`
		INSERT INTO playlists (name, created_at, updated_at) VALUES (?, ?, ?)
	`, name, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Delete removes a playlist and its entries.
func (b *Backend) Delete(id int64) error {
	return db.WithTx(b.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM playlist_items WHERE playlist_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM playlists WHERE id = ?`, id)
		return err
	})
}

// Rename changes a playlist's display name.
func (b *Backend) Rename(id int64, name string) error {
	_, err := b.db.Exec(`UPDATE playlists SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().Unix(), id)
	return err
}

// List returns all stored playlists.
func (b *Backend) List() ([]Info, error) {
	rows, err := b.db.Query(`
		SELECT p.id, p.name, COUNT(i.playlist_id)
		FROM playlists p
		LEFT JOIN playlist_items i ON i.playlist_id = p.id
		GROUP BY p.id
		ORDER BY p.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.ID, &info.Name, &info.Entries); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Save replaces the stored state of a playlist with the snapshot.
func (b *Backend) Save(id int64, snap Snapshot) error {
	now := time.Now().Unix()
	return db.WithTx(b.db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE playlists SET name = ?, current_row = ?, last_played_row = ?,
				stop_after_row = ?, repeat_mode = ?, shuffle_mode = ?,
				dynamic_generator = ?, updated_at = ?
			WHERE id = ?
		`, snap.Name, snap.CurrentRow, snap.LastPlayedRow, snap.StopAfterRow,
			int(snap.RepeatMode), int(snap.ShuffleMode), snap.GeneratorName, now, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			if _, err := tx.Exec(`
				INSERT INTO playlists (id, name, current_row, last_played_row,
					stop_after_row, repeat_mode, shuffle_mode, dynamic_generator,
					created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, id, snap.Name, snap.CurrentRow, snap.LastPlayedRow, snap.StopAfterRow,
				int(snap.RepeatMode), int(snap.ShuffleMode), snap.GeneratorName, now, now); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(`DELETE FROM playlist_items WHERE playlist_id = ?`, id); err != nil {
			return err
		}
		for pos, e := range snap.Entries {
			s := e.Song
			compilation := 0
			if s.Compilation {
				compilation = 1
			}
			generated := 0
			if e.Generated {
				generated = 1
			}
			if _, err := tx.Exec(`
				INSERT INTO playlist_items (playlist_id, position, kind, library_id,
					url, title, artist, album, album_artist, genre, track_number,
					year, duration_ns, rating, compilation, generated)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, id, pos, int(e.Kind), s.LibraryID, s.URL, s.Title, s.Artist, s.Album,
				s.AlbumArtist, s.Genre, s.TrackNumber, s.Year, int64(s.Duration),
				s.Rating, compilation, generated); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load returns the stored snapshot of a playlist, or sql.ErrNoRows.
func (b *Backend) Load(id int64) (Snapshot, error) {
	var snap Snapshot
	var repeat, shuffle int
	err := b.db.QueryRow(`
		SELECT name, current_row, last_played_row, stop_after_row,
			repeat_mode, shuffle_mode, dynamic_generator
		FROM playlists WHERE id = ?
	`, id).Scan(&snap.Name, &snap.CurrentRow, &snap.LastPlayedRow,
		&snap.StopAfterRow, &repeat, &shuffle, &snap.GeneratorName)
	if err != nil {
		return Snapshot{}, err
	}
	snap.RepeatMode = playlist.RepeatMode(repeat)
	snap.ShuffleMode = playlist.ShuffleMode(shuffle)

	rows, err := b.db.Query(`
		SELECT kind, library_id, url, title, artist, album, album_artist,
			genre, track_number, year, duration_ns, rating, compilation, generated
		FROM playlist_items WHERE playlist_id = ? ORDER BY position
	`, id)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var e Entry
		var kind, compilation, generated int
		var artist, album, albumArtist, genre sql.NullString
		var trackNum, year sql.NullInt64
		var duration int64
		if err := rows.Scan(&kind, &e.Song.LibraryID, &e.Song.URL, &e.Song.Title,
			&artist, &album, &albumArtist, &genre, &trackNum, &year,
			&duration, &e.Song.Rating, &compilation, &generated); err != nil {
			return Snapshot{}, err
		}
		e.Kind = song.Kind(kind)
		e.Song.Artist = db.NullStringValue(artist)
		e.Song.Album = db.NullStringValue(album)
		e.Song.AlbumArtist = db.NullStringValue(albumArtist)
		e.Song.Genre = db.NullStringValue(genre)
		e.Song.TrackNumber = int(db.NullInt64Value(trackNum))
		e.Song.Year = int(db.NullInt64Value(year))
		e.Song.Duration = time.Duration(duration)
		e.Song.Compilation = compilation != 0
		e.Generated = generated != 0
		snap.Entries = append(snap.Entries, e)
	}
	return snap, rows.Err()
}
