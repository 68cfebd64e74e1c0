package generator

import (
	"fmt"

	"github.com/yasserzoho/Clementine/internal/song"
)

// SongSource is the slice of the library a generator needs.
type SongSource interface {
	// RandomSongs returns up to n random songs whose library IDs are not
	// in exclude.
	RandomSongs(n int, exclude []int64) ([]song.Song, error)
	// SongsByArtists returns up to n songs by the named artists, excluding
	// the given library IDs.
	SongsByArtists(artists []string, n int, exclude []int64) ([]song.Song, error)
}

// LibraryRandom deals random tracks from the library, never repeating one.
// Exhausted once every library track has been dealt.
type LibraryRandom struct {
	source SongSource
	dealt  []int64
}

// NewLibraryRandom creates a random-library generator.
func NewLibraryRandom(source SongSource) *LibraryRandom {
	return &LibraryRandom{source: source}
}

// Name implements Generator.
func (g *LibraryRandom) Name() string {
	return "library-random"
}

// Generate implements Generator.
func (g *LibraryRandom) Generate(n int) ([]song.Song, error) {
	songs, err := g.source.RandomSongs(n, g.dealt)
	if err != nil {
		return nil, fmt.Errorf("random songs: %w", err)
	}
	if len(songs) == 0 {
		return nil, ErrExhausted
	}
	for _, s := range songs {
		g.dealt = append(g.dealt, s.LibraryID)
	}
	return songs, nil
}
