package playlist

import (
	"github.com/yasserzoho/Clementine/internal/song"
)

// Item is one entry in a playlist. Items are owned by the playlist that
// holds them: read access is free, but mutation must go through playlist
// operations (UpdateItem and friends) so change notifications fire and the
// library reverse index stays consistent.
type Item struct {
	kind song.Kind
	song song.Song

	// streamMetadata temporarily overrides the static metadata while a
	// stream reports what it is actually playing.
	streamMetadata *song.Song

	valid     bool
	generated bool // inserted by the dynamic playlist controller
}

// NewItem creates a playlist item for a song.
func NewItem(kind song.Kind, s song.Song) *Item {
	return &Item{kind: kind, song: s, valid: true}
}

// NewItemAuto creates an item, deriving the kind from the song itself.
func NewItemAuto(s song.Song) *Item {
	switch {
	case s.IsLibrary():
		return NewItem(song.KindLibrary, s)
	case s.IsStream():
		return NewItem(song.KindStream, s)
	default:
		return NewItem(song.KindFile, s)
	}
}

// Kind returns the item's source kind.
func (it *Item) Kind() song.Kind {
	return it.kind
}

// Metadata returns the song to display and play: the temporary stream
// metadata if set, otherwise the static metadata.
func (it *Item) Metadata() song.Song {
	if it.streamMetadata != nil {
		return *it.streamMetadata
	}
	return it.song
}

// OriginalMetadata returns the static metadata, ignoring any stream override.
func (it *Item) OriginalMetadata() song.Song {
	return it.song
}

// SetStreamMetadata installs a temporary metadata override.
// Use via Playlist.SetStreamMetadata so an ItemChanged event fires.
func (it *Item) SetStreamMetadata(s song.Song) {
	it.streamMetadata = &s
}

// ClearStreamMetadata removes the temporary override.
func (it *Item) ClearStreamMetadata() {
	it.streamMetadata = nil
}

// HasStreamMetadata returns true if a temporary override is active.
func (it *Item) HasStreamMetadata() bool {
	return it.streamMetadata != nil
}

// IsValid returns false when the item is known to be broken (deleted file,
// dead stream); invalid items are typically greyed out by callers.
func (it *Item) IsValid() bool {
	return it.valid
}

// SetValid flags the item as playable or broken.
// Use via Playlist.ApplyValidity so an ItemChanged event fires.
func (it *Item) SetValid(v bool) {
	it.valid = v
}

// SetRating updates the song rating in place.
func (it *Item) SetRating(rating float64) {
	it.song.Rating = rating
}

// LibraryID returns the library back-reference, or 0 for non-library items.
func (it *Item) LibraryID() int64 {
	return it.song.LibraryID
}

// IsGenerated returns true if the dynamic playlist controller inserted
// this item.
func (it *Item) IsGenerated() bool {
	return it.generated
}

// MarkGenerated restores the generator-sourced flag on a reloaded item.
func (it *Item) MarkGenerated() {
	it.generated = true
}

func (it *Item) setSong(s song.Song) {
	it.song = s
}
