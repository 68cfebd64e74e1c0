package playlist

import (
	"slices"

	"github.com/yasserzoho/Clementine/internal/song"
)

// reshuffleLocked regenerates the playback-order permutation. Called on
// every structural mutation and on shuffle-mode changes; virtualItems is
// always a permutation of 0..len(items)-1.
func (p *Playlist) reshuffleLocked() {
	n := len(p.items)
	p.virtualItems = make([]int, n)
	for i := range p.virtualItems {
		p.virtualItems[i] = i
	}

	switch p.shuffleMode {
	case ShuffleOff:
		// identity
	case ShuffleAll:
		p.rng.Shuffle(n, func(i, j int) {
			p.virtualItems[i], p.virtualItems[j] = p.virtualItems[j], p.virtualItems[i]
		})
	case ShuffleAlbum:
		p.virtualItems = p.groupShuffleLocked(func(s song.Song) string { return s.AlbumKey() })
	case ShuffleArtist:
		p.virtualItems = p.groupShuffleLocked(func(s song.Song) string { return s.ArtistKey() })
	}
}

// groupShuffleLocked builds a permutation where rows sharing a key stay
// contiguous and in their original relative order, while the groups
// themselves come out in random order. This plays whole albums (or an
// artist's run of tracks) in sequence, just not in display order.
func (p *Playlist) groupShuffleLocked(key func(song.Song) string) []int {
	groups := make(map[string][]int)
	var order []string
	for row, it := range p.items {
		k := key(it.Metadata())
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], row)
	}

	p.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	result := make([]int, 0, len(p.items))
	for _, k := range order {
		result = append(result, groups[k]...)
	}
	return result
}

// VirtualItems returns a copy of the current playback-order permutation.
func (p *Playlist) VirtualItems() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.virtualItems)
}

// --- traversal -----------------------------------------------------------

// NextRow returns the row to play after the current track, honoring the
// repeat and shuffle modes and the display filter, or -1 when playback
// should stop.
func (p *Playlist) NextRow() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nextRowFromLocked(p.rowOfLocked(p.current))
}

// NextRowFrom answers the same question for an arbitrary row.
func (p *Playlist) NextRowFrom(row int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nextRowFromLocked(row)
}

func (p *Playlist) nextRowFromLocked(row int) int {
	if len(p.items) == 0 {
		return -1
	}
	if row >= 0 && p.stopAfter != nil && p.items[row] == p.stopAfter {
		return -1
	}
	if p.repeatMode == RepeatTrack && row >= 0 {
		return row
	}

	vi := p.virtualIndexOfLocked(row)
	next := p.nextVirtualIndexLocked(vi, row)
	if next >= len(p.virtualItems) {
		// Off the end of the playlist.
		switch p.repeatMode {
		case RepeatPlaylist:
			next = p.nextVirtualIndexLocked(-1, -1)
		case RepeatAlbum:
			next = p.firstVirtualOfAlbumLocked(row)
		default:
			return -1
		}
	}
	if next < 0 || next >= len(p.virtualItems) {
		return -1
	}
	return p.virtualItems[next]
}

// PreviousRow returns the row played before the current track, or -1 at
// the start unless repeat-playlist wraps.
func (p *Playlist) PreviousRow() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.previousRowFromLocked(p.rowOfLocked(p.current))
}

// PreviousRowFrom answers the same question for an arbitrary row.
func (p *Playlist) PreviousRowFrom(row int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.previousRowFromLocked(row)
}

func (p *Playlist) previousRowFromLocked(row int) int {
	if len(p.items) == 0 {
		return -1
	}
	if p.repeatMode == RepeatTrack && row >= 0 {
		return row
	}

	vi := p.virtualIndexOfLocked(row)
	if vi < 0 {
		vi = len(p.virtualItems)
	}
	prev := p.previousVirtualIndexLocked(vi, row)
	if prev < 0 {
		switch p.repeatMode {
		case RepeatPlaylist:
			prev = p.previousVirtualIndexLocked(len(p.virtualItems), -1)
		case RepeatAlbum:
			prev = p.lastVirtualOfAlbumLocked(row)
		default:
			return -1
		}
	}
	if prev < 0 || prev >= len(p.virtualItems) {
		return -1
	}
	return p.virtualItems[prev]
}

// virtualIndexOfLocked maps a row to its position in play order, -1 for
// row -1.
func (p *Playlist) virtualIndexOfLocked(row int) int {
	if row < 0 {
		return -1
	}
	return slices.Index(p.virtualItems, row)
}

// nextVirtualIndexLocked returns the first playable virtual position after
// i, or len(virtualItems) when traversal falls off the end. fromRow
// carries the album constraint under repeat-album; -1 means unconstrained.
func (p *Playlist) nextVirtualIndexLocked(i, fromRow int) int {
	albumOnly := p.repeatMode == RepeatAlbum && fromRow >= 0
	var last song.Song
	if albumOnly {
		last = p.items[fromRow].Metadata()
	}

	for j := i + 1; j < len(p.virtualItems); j++ {
		if !p.filterContainsVirtualIndexLocked(j) {
			continue
		}
		if albumOnly && !last.SameAlbum(p.items[p.virtualItems[j]].Metadata()) {
			continue
		}
		return j
	}
	return len(p.virtualItems)
}

// previousVirtualIndexLocked is the mirror scan, returning -1 off the
// start.
func (p *Playlist) previousVirtualIndexLocked(i, fromRow int) int {
	albumOnly := p.repeatMode == RepeatAlbum && fromRow >= 0
	var last song.Song
	if albumOnly {
		last = p.items[fromRow].Metadata()
	}

	for j := i - 1; j >= 0; j-- {
		if !p.filterContainsVirtualIndexLocked(j) {
			continue
		}
		if albumOnly && !last.SameAlbum(p.items[p.virtualItems[j]].Metadata()) {
			continue
		}
		return j
	}
	return -1
}

// firstVirtualOfAlbumLocked wraps repeat-album traversal back to the first
// playable track of the same album.
func (p *Playlist) firstVirtualOfAlbumLocked(row int) int {
	if row < 0 {
		return -1
	}
	last := p.items[row].Metadata()
	for j := 0; j < len(p.virtualItems); j++ {
		if !p.filterContainsVirtualIndexLocked(j) {
			continue
		}
		if last.SameAlbum(p.items[p.virtualItems[j]].Metadata()) {
			return j
		}
	}
	return -1
}

func (p *Playlist) lastVirtualOfAlbumLocked(row int) int {
	if row < 0 {
		return -1
	}
	last := p.items[row].Metadata()
	for j := len(p.virtualItems) - 1; j >= 0; j-- {
		if !p.filterContainsVirtualIndexLocked(j) {
			continue
		}
		if last.SameAlbum(p.items[p.virtualItems[j]].Metadata()) {
			return j
		}
	}
	return -1
}

// filterContainsVirtualIndexLocked evaluates the display filter for the
// row at virtual position j. The filter is a read-time predicate; it never
// mutates the permutation.
func (p *Playlist) filterContainsVirtualIndexLocked(j int) bool {
	if p.filter == nil {
		return true
	}
	row := p.virtualItems[j]
	return p.filter(row, p.items[row].Metadata())
}
