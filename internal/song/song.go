// Package song defines the metadata record shared by the playlist engine,
// the library and the persistence backend.
package song

import (
	"net/url"
	"path/filepath"
	"time"
)

// Kind tags where a song came from and how it should be treated.
type Kind int

const (
	// KindLibrary is a track backed by a library record.
	KindLibrary Kind = iota
	// KindFile is an ad-hoc local file outside the library.
	KindFile
	// KindStream is a remote URL resolved at insertion time.
	KindStream
	// KindRadio is a radio station; metadata arrives while streaming.
	KindRadio
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLibrary:
		return "library"
	case KindFile:
		return "file"
	case KindStream:
		return "stream"
	case KindRadio:
		return "radio"
	default:
		return "unknown"
	}
}

// Song holds static metadata for one playable track. All fields are
// comparable so two songs can be checked with ==.
type Song struct {
	LibraryID int64  // >0 when the song is backed by a library record
	URL       string // file path or stream URL

	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Genre       string
	TrackNumber int
	Year        int
	Duration    time.Duration
	Rating      float64 // 0..1, negative means unrated
	Compilation bool
}

// IsLibrary returns true if the song is backed by a library record.
func (s Song) IsLibrary() bool {
	return s.LibraryID > 0
}

// IsStream returns true if the song URL points at a remote resource.
func (s Song) IsStream() bool {
	u, err := url.Parse(s.URL)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// DisplayTitle returns the title, falling back to the URL basename for
// untagged files and bare streams.
func (s Song) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	if s.URL != "" {
		return filepath.Base(s.URL)
	}
	return "Unknown"
}

// AlbumKey groups songs that belong to the same album. Compilations with
// differing track artists still share a key through the album artist.
func (s Song) AlbumKey() string {
	artist := s.AlbumArtist
	if artist == "" {
		artist = s.Artist
	}
	if s.Compilation {
		artist = "Various Artists"
	}
	return artist + "\x00" + s.Album
}

// ArtistKey groups songs by performing artist.
func (s Song) ArtistKey() string {
	if s.Artist != "" {
		return s.Artist
	}
	return s.AlbumArtist
}

// SameAlbum reports whether two songs are on the same album.
func (s Song) SameAlbum(other Song) bool {
	return s.Album == other.Album && s.AlbumKey() == other.AlbumKey()
}
