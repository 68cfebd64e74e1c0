package backend

import (
	"github.com/yasserzoho/Clementine/internal/playlist"
)

// Capture builds a snapshot of a live playlist. Stream metadata overrides
// are transient and not captured; entries persist their static metadata.
func Capture(p *playlist.Playlist, name string) Snapshot {
	items := p.AllItems()
	entries := make([]Entry, len(items))
	for i, it := range items {
		entries[i] = Entry{
			Kind:      it.Kind(),
			Song:      it.OriginalMetadata(),
			Generated: it.IsGenerated(),
		}
	}
	return Snapshot{
		Name:          name,
		Entries:       entries,
		CurrentRow:    p.CurrentRow(),
		LastPlayedRow: p.LastPlayedRow(),
		StopAfterRow:  p.StopAfterRow(),
		RepeatMode:    p.RepeatMode(),
		ShuffleMode:   p.ShuffleMode(),
		GeneratorName: p.DynamicGeneratorName(),
	}
}

// Restore replays a snapshot into an empty playlist: entries enter
// outside the undo log and without veto, then the modes and playback
// pointers are reapplied. Reattaching a dynamic generator from
// GeneratorName is the caller's job since generators are not persistable.
func Restore(p *playlist.Playlist, snap Snapshot) {
	p.SetRepeatMode(snap.RepeatMode)
	p.SetShuffleMode(snap.ShuffleMode)

	items := make([]*playlist.Item, len(snap.Entries))
	for i, e := range snap.Entries {
		it := playlist.NewItem(e.Kind, e.Song)
		if e.Generated {
			it.MarkGenerated()
		}
		items[i] = it
	}
	p.LoadItems(items)

	row := snap.CurrentRow
	if row < 0 {
		// Resume at the last played track when nothing was current.
		row = snap.LastPlayedRow
	}
	if row >= 0 && row < p.Len() {
		_ = p.SetCurrentRow(row)
	}
	if snap.StopAfterRow >= 0 && snap.StopAfterRow < p.Len() {
		_ = p.StopAfter(snap.StopAfterRow)
	}
}
