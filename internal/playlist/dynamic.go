package playlist

import (
	"errors"

	"github.com/yasserzoho/Clementine/internal/errmsg"
	"github.com/yasserzoho/Clementine/internal/generator"
)

// dynamicController keeps a dynamic playlist topped up: while active it
// maintains a lookahead of upcoming generated tracks after the current
// one and truncates the played prefix above the history watermark. All of
// its churn bypasses the undo log.
type dynamicController struct {
	gen generator.Generator
}

// IsDynamic returns true while a generator drives this playlist.
func (p *Playlist) IsDynamic() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dynamic != nil
}

// DynamicGeneratorName returns the active generator's name, or "".
func (p *Playlist) DynamicGeneratorName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dynamic == nil {
		return ""
	}
	return p.dynamic.gen.Name()
}

// TurnOnDynamicPlaylist attaches a generator and immediately fills the
// lookahead. Generated churn is not undoable; whether generator output is
// subject to veto listeners follows the VetoGenerated option.
func (p *Playlist) TurnOnDynamicPlaylist(gen generator.Generator) {
	p.mu.Lock()
	defer p.finish()
	p.dynamic = &dynamicController{gen: gen}
	p.emit(DynamicModeChanged{Dynamic: true})
	p.topUpLocked()
}

// TurnOffDynamicPlaylist detaches the generator. Un-played generated
// entries stay in place as ordinary entries.
func (p *Playlist) TurnOffDynamicPlaylist() {
	p.mu.Lock()
	defer p.finish()
	p.turnOffDynamicLocked()
}

func (p *Playlist) turnOffDynamicLocked() {
	if p.dynamic == nil {
		return
	}
	p.dynamic = nil
	p.emit(DynamicModeChanged{Dynamic: false})
}

// RepopulateDynamicPlaylist throws away the un-played generated tail and
// asks the generator for a fresh one.
func (p *Playlist) RepopulateDynamicPlaylist() {
	p.mu.Lock()
	defer p.finish()
	if p.dynamic == nil {
		return
	}

	var rows []int
	cur := p.rowOfLocked(p.current)
	for row := cur + 1; row < len(p.items); row++ {
		if p.items[row].generated {
			rows = append(rows, row)
		}
	}
	p.removeRowsWithoutUndoLocked(rows)
	p.topUpLocked()
}

// dynamicCurrentChangedLocked runs after every current-item change: trim
// the played prefix, then restore the lookahead.
func (p *Playlist) dynamicCurrentChangedLocked() {
	if p.dynamic == nil {
		return
	}
	p.trimHistoryLocked()
	p.topUpLocked()
}

// trimHistoryLocked drops the oldest already-played rows once more than
// the history watermark of them sit before the current track.
func (p *Playlist) trimHistoryLocked() {
	cur := p.rowOfLocked(p.current)
	if cur < 0 {
		return
	}
	excess := cur - p.history
	if excess <= 0 {
		return
	}
	rows := make([]int, excess)
	for i := range rows {
		rows[i] = i
	}
	p.removeRowsWithoutUndoLocked(rows)
}

// topUpLocked requests songs until the lookahead after the current track
// is restored. Generator exhaustion deactivates dynamic mode; other
// generator errors surface as LoadError and leave the playlist as-is.
func (p *Playlist) topUpLocked() {
	for p.dynamic != nil {
		upcoming := len(p.items) - (p.rowOfLocked(p.current) + 1)
		missing := p.lookahead - upcoming
		if missing <= 0 {
			return
		}

		songs, err := p.dynamic.gen.Generate(missing)
		if errors.Is(err, generator.ErrExhausted) {
			p.turnOffDynamicLocked()
			return
		}
		if err != nil {
			p.logger.Warn("dynamic playlist generation failed", "error", err)
			p.emit(LoadError{Message: errmsg.Format(errmsg.OpGenerate, err)})
			return
		}
		if len(songs) == 0 {
			// A well-behaved generator returns ErrExhausted instead;
			// treat an empty batch the same to avoid spinning.
			p.turnOffDynamicLocked()
			return
		}

		p.insertPipelineLocked(wrapSongs(songs), -1, pipelineFlags{
			withUndo:  false,
			applyVeto: p.vetoGenerated,
			generated: true,
		})
	}
}
