// Package tags provides unified tag reading for music files.
// It resolves local files into song metadata for playlist insertion.
package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/yasserzoho/Clementine/internal/song"
)

// File extensions supported by the tags package.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
)

// IsSupported returns true if the file extension is a known audio format.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3, ExtFLAC, ExtOPUS, ExtOGG, ExtM4A, ExtMP4:
		return true
	default:
		return false
	}
}

// Read reads tag metadata from a local audio file.
// Files with no readable tags still resolve; the title falls back to the
// file basename so untagged files remain playable.
func Read(path string) (song.Song, error) {
	if !IsSupported(path) {
		return song.Song{}, fmt.Errorf("unsupported format: %s", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return song.Song{}, err
	}
	defer f.Close()

	s := song.Song{
		URL:    path,
		Rating: -1,
	}

	m, err := tag.ReadFrom(f)
	if err != nil {
		// Untagged file: keep the basename as title.
		s.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return s, nil
	}

	s.Title = m.Title()
	s.Artist = m.Artist()
	s.Album = m.Album()
	s.AlbumArtist = m.AlbumArtist()
	s.Genre = m.Genre()
	s.Year = m.Year()
	s.TrackNumber, _ = m.Track()
	s.Compilation = m.AlbumArtist() == "Various Artists"

	if s.Title == "" {
		s.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return s, nil
}
