// Package generator defines the pull-based track source behind dynamic
// playlists, plus the built-in generator implementations.
package generator

import (
	"errors"

	"github.com/yasserzoho/Clementine/internal/song"
)

// ErrExhausted signals that a generator has nothing left to offer. It is
// a normal terminal condition, not a failure: the dynamic playlist
// controller deactivates itself when it sees it.
var ErrExhausted = errors.New("generator exhausted")

// Generator produces songs on demand. The dynamic playlist controller
// decides when to call it and how many songs it wants; implementations
// may return fewer than requested.
type Generator interface {
	// Name identifies the generator in persisted playlists.
	Name() string
	// Generate returns up to n songs, or ErrExhausted when done.
	Generate(n int) ([]song.Song, error)
}
