package playlist

import (
	"errors"

	"github.com/yasserzoho/Clementine/internal/errmsg"
	"github.com/yasserzoho/Clementine/internal/generator"
	"github.com/yasserzoho/Clementine/internal/song"
	"github.com/yasserzoho/Clementine/internal/tags"
)

var errNoLibrary = errors.New("no library provider configured")

// RadioStation is an insertable radio station reference.
type RadioStation struct {
	Name string
	URL  string
}

// InsertItems runs the insertion pipeline on already-built items: veto
// listeners see the candidates, survivors enter the store as one batched
// undoable command. playNow makes the first inserted item current;
// enqueue appends the inserted items to the play-next queue. The two
// flags are independent. A negative pos appends.
func (p *Playlist) InsertItems(items []*Item, pos int, playNow, enqueue bool) {
	p.mu.Lock()
	defer p.finish()
	p.insertPipelineLocked(items, pos, pipelineFlags{
		playNow:   playNow,
		enqueue:   enqueue,
		withUndo:  true,
		applyVeto: true,
	})
}

// InsertSongs wraps songs into items (kind derived per song) and inserts
// them through the pipeline.
func (p *Playlist) InsertSongs(songs []song.Song, pos int, playNow, enqueue bool) {
	p.InsertItems(wrapSongs(songs), pos, playNow, enqueue)
}

// InsertLibrarySongs resolves library track IDs through the library
// provider and inserts the results. IDs the library no longer knows are
// skipped with a LoadError notification; the remainder proceeds.
func (p *Playlist) InsertLibrarySongs(ids []int64, pos int, playNow, enqueue bool) {
	p.mu.Lock()
	defer p.finish()
	if p.library == nil {
		p.emit(LoadError{Message: errmsg.Format(errmsg.OpResolveLibrary, errNoLibrary)})
		return
	}
	songs, err := p.library.SongsByIDs(ids)
	if err != nil {
		p.emit(LoadError{Message: errmsg.Format(errmsg.OpResolveLibrary, err)})
		return
	}
	if len(songs) < len(ids) {
		p.logger.Warn("some library tracks could not be resolved",
			"requested", len(ids), "resolved", len(songs))
	}
	items := make([]*Item, len(songs))
	for i, s := range songs {
		items[i] = NewItem(song.KindLibrary, s)
	}
	p.insertPipelineLocked(items, pos, pipelineFlags{
		playNow:   playNow,
		enqueue:   enqueue,
		withUndo:  true,
		applyVeto: true,
	})
}

// InsertRadioStations inserts radio station references. Stations carry no
// static metadata beyond their name; real metadata arrives later via
// SetStreamMetadata.
func (p *Playlist) InsertRadioStations(stations []RadioStation, pos int, playNow, enqueue bool) {
	items := make([]*Item, len(stations))
	for i, st := range stations {
		items[i] = NewItem(song.KindRadio, song.Song{
			Title:  st.Name,
			URL:    st.URL,
			Rating: -1,
		})
	}
	p.InsertItems(items, pos, playNow, enqueue)
}

// InsertURLs resolves URLs in the background and inserts the results when
// they arrive. Local files are read for tags; http(s) URLs become stream
// entries as-is. Resolution results arriving after the playlist was
// cleared are dropped silently; unresolvable URLs produce LoadError
// notifications and are omitted while the rest proceeds.
func (p *Playlist) InsertURLs(urls []string, pos int, playNow, enqueue bool) {
	p.mu.Lock()
	epoch := p.epoch
	p.mu.Unlock()

	p.resolving.Add(1)
	go func() {
		defer p.resolving.Done()

		var songs []song.Song
		var failures []string
		for _, u := range urls {
			s, err := resolveURL(u)
			if err != nil {
				p.logger.Warn("URL resolution failed", "url", u, "error", err)
				failures = append(failures, errmsg.FormatWith(errmsg.OpResolveURL, u, err))
				continue
			}
			songs = append(songs, s)
		}
		p.applyResolved(epoch, songs, failures, pos, playNow, enqueue)
	}()
}

// applyResolved re-enters the playlist with resolution results. Positions
// are re-validated (the pipeline clamps) rather than assumed stable, and
// a stale epoch means the batch targets contents that no longer exist.
func (p *Playlist) applyResolved(epoch uint64, songs []song.Song, failures []string, pos int, playNow, enqueue bool) {
	p.mu.Lock()
	defer p.finish()
	if epoch != p.epoch {
		p.logger.Debug("dropping stale resolution result", "count", len(songs))
		return
	}
	for _, msg := range failures {
		p.emit(LoadError{Message: msg})
	}
	p.insertPipelineLocked(wrapSongs(songs), pos, pipelineFlags{
		playNow:   playNow,
		enqueue:   enqueue,
		withUndo:  true,
		applyVeto: true,
	})
}

// InsertGenerator pulls one batch of n songs from a generator and inserts
// it as a static batch; the playlist does not become dynamic. Use
// TurnOnDynamicPlaylist for self-replenishing behavior.
func (p *Playlist) InsertGenerator(gen generator.Generator, n, pos int, playNow, enqueue bool) error {
	songs, err := gen.Generate(n)
	if err != nil {
		return err
	}
	p.InsertSongs(songs, pos, playNow, enqueue)
	return nil
}

// Wait blocks until in-flight background URL resolutions have finished.
func (p *Playlist) Wait() {
	p.resolving.Wait()
}

// LoadItems appends restored items, skipping veto listeners and the undo
// log. For reloading persisted playlists, not for user insertions.
func (p *Playlist) LoadItems(items []*Item) {
	p.mu.Lock()
	defer p.finish()
	p.insertPipelineLocked(items, -1, pipelineFlags{})
}

type pipelineFlags struct {
	playNow   bool
	enqueue   bool
	withUndo  bool
	applyVeto bool
	generated bool // mark items as generator-sourced
}

// insertPipelineLocked is the single funnel every insertion goes through.
func (p *Playlist) insertPipelineLocked(items []*Item, pos int, flags pipelineFlags) {
	if flags.applyVeto {
		items = p.applyVetoLocked(items)
	}
	if len(items) == 0 {
		return
	}
	if flags.generated {
		for _, it := range items {
			it.generated = true
		}
	}

	var first int
	if flags.withUndo {
		cmd := &insertCommand{pos: pos, items: items}
		p.executeLocked(cmd)
		first = cmd.pos
	} else {
		first = p.insertItemsLocked(pos, items)
		p.undo.dropRedo()
	}

	if flags.enqueue && p.queue != nil {
		p.queue.Enqueue(items)
	}
	if flags.playNow {
		p.setCurrentLocked(p.items[first])
	}
}

func wrapSongs(songs []song.Song) []*Item {
	items := make([]*Item, len(songs))
	for i, s := range songs {
		items[i] = NewItemAuto(s)
	}
	return items
}

func resolveURL(u string) (song.Song, error) {
	s := song.Song{URL: u, Rating: -1}
	if s.IsStream() {
		return s, nil
	}
	return tags.Read(u)
}
