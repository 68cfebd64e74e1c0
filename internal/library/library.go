// Package library stores the music collection in SQLite and resolves
// library track references for playlists and generators.
package library

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/yasserzoho/Clementine/internal/db"
	"github.com/yasserzoho/Clementine/internal/song"
)

const (
	appName    = "clementine"
	dbFileName = "library.db"
)

type Library struct {
	db *sql.DB
}

// Open opens the library database at its XDG data path, creating the
// schema if needed.
func Open() (*Library, error) {
	path, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath opens a library database at an explicit path.
func OpenPath(path string) (*Library, error) {
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
	return &Library{db: sqlDB}, nil
}

func (l *Library) Close() error {
	return l.db.Close()
}

func initSchema(sqlDB *sql.DB) error {
	_, err := sqlDB.Exec(`
		CREATE TABLE IF NOT EXISTS songs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			mtime INTEGER NOT NULL,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			album TEXT NOT NULL,
			album_artist TEXT NOT NULL,
			genre TEXT,
			track_number INTEGER,
			year INTEGER,
			duration_ns INTEGER NOT NULL DEFAULT 0,
			rating REAL NOT NULL DEFAULT -1,
			compilation INTEGER NOT NULL DEFAULT 0,
			added_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_songs_artist ON songs(artist);
		CREATE INDEX IF NOT EXISTS idx_songs_album_artist_album ON songs(album_artist, album);
	`)
	return err
}

const songColumns = `id, path, title, artist, album, album_artist, genre,
	track_number, year, duration_ns, rating, compilation`

func scanSong(scan func(...any) error) (song.Song, error) {
	var s song.Song
	var genre sql.NullString
	var trackNum, year, duration sql.NullInt64
	var compilation int
	err := scan(&s.LibraryID, &s.URL, &s.Title, &s.Artist, &s.Album, &s.AlbumArtist,
		&genre, &trackNum, &year, &duration, &s.Rating, &compilation)
	if err != nil {
		return song.Song{}, err
	}
	s.Genre = db.NullStringValue(genre)
	s.TrackNumber = int(db.NullInt64Value(trackNum))
	s.Year = int(db.NullInt64Value(year))
	s.Duration = time.Duration(db.NullInt64Value(duration))
	s.Compilation = compilation != 0
	return s, nil
}

func collectSongs(rows *sql.Rows) ([]song.Song, error) {
	defer rows.Close()
	var songs []song.Song
	for rows.Next() {
		s, err := scanSong(rows.Scan)
		if err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

// AddSongs inserts or updates songs keyed by path, in one transaction.
// Returns the stored songs with their library IDs filled in.
func (l *Library) AddSongs(songs []song.Song, mtimes []int64) ([]song.Song, error) {
	now := time.Now().Unix()
	stored := make([]song.Song, 0, len(songs))
	err := db.WithTx(l.db, func(tx *sql.Tx) error {
		for i, s := range songs {
			var mtime int64
			if i < len(mtimes) {
				mtime = mtimes[i]
			}
			compilation := 0
			if s.Compilation {
				compilation = 1
			}
			_, err := tx.Exec(`
				INSERT INTO songs (path, mtime, title, artist, album, album_artist,
					genre, track_number, year, duration_ns, rating, compilation,
					added_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(path) DO UPDATE SET
					mtime = excluded.mtime,
					title = excluded.title,
					artist = excluded.artist,
					album = excluded.album,
					album_artist = excluded.album_artist,
					genre = excluded.genre,
					track_number = excluded.track_number,
					year = excluded.year,
					duration_ns = excluded.duration_ns,
					compilation = excluded.compilation,
					updated_at = excluded.updated_at
			`, s.URL, mtime, s.Title, s.Artist, s.Album, s.AlbumArtist,
				s.Genre, s.TrackNumber, s.Year, int64(s.Duration), s.Rating, compilation,
				now, now)
			if err != nil {
				return err
			}
			// LastInsertId is meaningless on the update path of an
			// upsert, so resolve the id by path either way.
			if err := tx.QueryRow(`SELECT id FROM songs WHERE path = ?`, s.URL).Scan(&s.LibraryID); err != nil {
				return err
			}
			stored = append(stored, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// SongByID returns one song, or sql.ErrNoRows.
func (l *Library) SongByID(id int64) (song.Song, error) {
	row := l.db.QueryRow(`SELECT `+songColumns+` FROM songs WHERE id = ?`, id)
	return scanSong(row.Scan)
}

// SongsByIDs resolves library IDs into songs, preserving input order.
// Unknown IDs are skipped.
func (l *Library) SongsByIDs(ids []int64) ([]song.Song, error) {
	var songs []song.Song
	for _, id := range ids {
		s, err := l.SongByID(id)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}
	return songs, nil
}

// SongByPath returns the song stored for a path, or sql.ErrNoRows.
func (l *Library) SongByPath(path string) (song.Song, error) {
	row := l.db.QueryRow(`SELECT `+songColumns+` FROM songs WHERE path = ?`, path)
	return scanSong(row.Scan)
}

// AllSongs returns the whole collection in artist/album/track order.
func (l *Library) AllSongs() ([]song.Song, error) {
	rows, err := l.db.Query(`
		SELECT ` + songColumns + ` FROM songs
		ORDER BY album_artist COLLATE NOCASE, album COLLATE NOCASE, track_number, title COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	return collectSongs(rows)
}

// Artists returns all distinct artist names.
func (l *Library) Artists() ([]string, error) {
	rows, err := l.db.Query(`SELECT DISTINCT artist FROM songs ORDER BY artist COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artists []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

// SongCount returns the number of stored songs.
func (l *Library) SongCount() (int, error) {
	var n int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM songs`).Scan(&n)
	return n, err
}

// DeleteByPath removes the song stored for a path. Unknown paths are a
// no-op.
func (l *Library) DeleteByPath(path string) error {
	_, err := l.db.Exec(`DELETE FROM songs WHERE path = ?`, path)
	return err
}

// RandomSongs returns up to n random songs whose IDs are not excluded.
func (l *Library) RandomSongs(n int, exclude []int64) ([]song.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs`
	args := make([]any, 0, len(exclude)+1)
	if len(exclude) > 0 {
		query += ` WHERE id NOT IN (` + placeholders(len(exclude)) + `)`
		for _, id := range exclude {
			args = append(args, id)
		}
	}
	query += ` ORDER BY RANDOM() LIMIT ?`
	args = append(args, n)

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return collectSongs(rows)
}

// SongsByArtists returns up to n random songs by any of the given
// artists, skipping excluded IDs.
func (l *Library) SongsByArtists(artists []string, n int, exclude []int64) ([]song.Song, error) {
	if len(artists) == 0 {
		return nil, nil
	}
	query := `SELECT ` + songColumns + ` FROM songs WHERE artist COLLATE NOCASE IN (` +
		placeholders(len(artists)) + `)`
	args := make([]any, 0, len(artists)+len(exclude)+1)
	for _, a := range artists {
		args = append(args, a)
	}
	if len(exclude) > 0 {
		query += ` AND id NOT IN (` + placeholders(len(exclude)) + `)`
		for _, id := range exclude {
			args = append(args, id)
		}
	}
	query += ` ORDER BY RANDOM() LIMIT ?`
	args = append(args, n)

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return collectSongs(rows)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
