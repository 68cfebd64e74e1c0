package playlist

import (
	"github.com/google/uuid"

	"github.com/yasserzoho/Clementine/internal/song"
)

// VetoListener may prevent songs from being added to a playlist. Before an
// insertion every registered listener is shown the songs already in the
// playlist and the candidates about to be added, and returns the subset of
// candidates it considers invalid. Vetoed candidates are excluded from the
// insertion; listeners cannot transform songs, only exclude them, and the
// exclusions of all listeners are unioned in registration order.
type VetoListener interface {
	AboutToInsertSongs(existing, candidates []song.Song) []song.Song
}

// VetoHandle identifies one veto listener registration. The owner must
// call RemoveVetoListener with it; a handle that is no longer registered
// is ignored.
type VetoHandle string

type vetoReg struct {
	handle   VetoHandle
	listener VetoListener
}

// AddVetoListener registers a listener consulted on every insertion.
func (p *Playlist) AddVetoListener(l VetoListener) VetoHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := VetoHandle(uuid.NewString())
	p.veto = append(p.veto, vetoReg{handle: h, listener: l})
	return h
}

// RemoveVetoListener unregisters a listener. Unknown handles are a no-op.
func (p *Playlist) RemoveVetoListener(h VetoHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, reg := range p.veto {
		if reg.handle == h {
			p.veto = append(p.veto[:i], p.veto[i+1:]...)
			return
		}
	}
}

// applyVetoLocked runs all veto listeners and returns the surviving items.
func (p *Playlist) applyVetoLocked(items []*Item) []*Item {
	if len(p.veto) == 0 || len(items) == 0 {
		return items
	}

	existing := p.allSongsLocked()
	candidates := make([]song.Song, len(items))
	for i, it := range items {
		candidates[i] = it.Metadata()
	}

	vetoed := make(map[song.Song]bool)
	for _, reg := range p.veto {
		for _, s := range reg.listener.AboutToInsertSongs(existing, candidates) {
			vetoed[s] = true
		}
	}
	if len(vetoed) == 0 {
		return items
	}

	survivors := make([]*Item, 0, len(items))
	for _, it := range items {
		if !vetoed[it.Metadata()] {
			survivors = append(survivors, it)
		}
	}
	return survivors
}
