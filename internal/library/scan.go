package library

import (
	"io/fs"
	"path/filepath"

	"github.com/yasserzoho/Clementine/internal/song"
	"github.com/yasserzoho/Clementine/internal/tags"
)

// ScanStats summarizes one incremental scan.
type ScanStats struct {
	Added   int
	Updated int
	Removed int
	Skipped int // unchanged files
	Failed  int // unreadable files
}

// Scan walks the source directories and brings the database in line with
// the filesystem: new files are added, files with a changed mtime are
// re-read, and rows whose file disappeared are removed.
func (l *Library) Scan(sources []string) (ScanStats, error) {
	var stats ScanStats

	existing, err := l.pathMtimes()
	if err != nil {
		return stats, err
	}

	seen := make(map[string]bool)
	var songs []song.Song
	var mtimes []int64
	for _, src := range sources {
		err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !tags.IsSupported(path) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			mtime := info.ModTime().Unix()
			seen[path] = true

			prev, known := existing[path]
			if known && prev == mtime {
				stats.Skipped++
				return nil
			}

			s, err := tags.Read(path)
			if err != nil {
				stats.Failed++
				return nil
			}
			songs = append(songs, s)
			mtimes = append(mtimes, mtime)
			if known {
				stats.Updated++
			} else {
				stats.Added++
			}
			return nil
		})
		if err != nil {
			return stats, err
		}
	}

	if len(songs) > 0 {
		if _, err := l.AddSongs(songs, mtimes); err != nil {
			return stats, err
		}
	}

	for path := range existing {
		if !seen[path] {
			if err := l.DeleteByPath(path); err != nil {
				return stats, err
			}
			stats.Removed++
		}
	}
	return stats, nil
}

func (l *Library) pathMtimes() (map[string]int64, error) {
	rows, err := l.db.Query(`SELECT path, mtime FROM songs`)
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
		out[path] = mtime
	}
	return out, rows.Err()
}
