// Package playlist implements the playlist ordering and mutation engine:
// an ordered item store with a separate playback-order index, undoable
// structural changes, an insertion pipeline with veto listeners, and a
// dynamic playlist controller that replenishes the tail from a generator.
package playlist

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/yasserzoho/Clementine/internal/song"
)

// ErrOutOfRange reports a position or count outside the current bounds.
// It is always a caller bug and never retried.
var ErrOutOfRange = errors.New("position out of range")

// LibraryProvider resolves library track IDs into songs.
type LibraryProvider interface {
	SongsByIDs(ids []int64) ([]song.Song, error)
}

// Queue is the externally-owned play-next list. The playlist notifies it
// when items leave the store so it can drop stale references, and queries
// it to protect queued items from bulk housekeeping removals.
type Queue interface {
	Enqueue(items []*Item)
	Forget(items []*Item)
	IsQueued(it *Item) bool
}

// Filter restricts which rows are visible to traversal. It is evaluated
// lazily at read time and never cached; returning false hides the row
// from NextRow/PreviousRow without touching the playback order.
type Filter func(row int, s song.Song) bool

// Options configures a playlist.
type Options struct {
	UndoDepth        int
	DynamicLookahead int
	DynamicHistory   int
	VetoGenerated    bool // run veto listeners on generator output

	Library LibraryProvider // may be nil; InsertLibrarySongs then fails
	Queue   Queue           // may be nil
	Logger  *slog.Logger    // may be nil
	Rand    *rand.Rand      // may be nil; fixed seeds make shuffle deterministic in tests
}

// Playlist is an ordered collection of items with a stable mapping
// between display order and playback order.
//
// All mutation is serialized: no operation overlaps another, so the
// documented invariants hold between operations. Long-running work (URL
// resolution, generator calls) runs on background goroutines and re-enters
// through the same lock, re-validating positions on arrival.
type Playlist struct {
	mu      sync.Mutex
	id      int64
	logger  *slog.Logger
	pending []Event // emitted by finish() after the lock is released

	items        []*Item
	virtualItems []int // row indices in play order; always a permutation

	// Inverse of the items' library back-references, for O(1) refresh
	// when a library record changes.
	libraryItemsByID map[int64][]*Item

	current    *Item
	lastPlayed *Item
	stopAfter  *Item

	repeatMode  RepeatMode
	shuffleMode ShuffleMode
	rng         *rand.Rand
	filter      Filter

	undo    *undoStack
	bus     *eventBus
	veto    []vetoReg
	queue   Queue
	library LibraryProvider
	dynamic *dynamicController

	lookahead     int
	history       int
	vetoGenerated bool

	// epoch invalidates in-flight async resolutions; Clear bumps it and
	// stale completions are dropped silently.
	epoch     uint64
	resolving sync.WaitGroup
}

// New creates an empty playlist.
func New(id int64, opts Options) *Playlist {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	lookahead := opts.DynamicLookahead
	if lookahead <= 0 {
		lookahead = 20
	}
	history := opts.DynamicHistory
	if history <= 0 {
		history = 5
	}

	return &Playlist{
		id:               id,
		logger:           logger,
		libraryItemsByID: make(map[int64][]*Item),
		rng:              rng,
		undo:             newUndoStack(opts.UndoDepth),
		bus:              newEventBus(),
		queue:            opts.Queue,
		library:          opts.Library,
		lookahead:        lookahead,
		history:          history,
		vetoGenerated:    opts.VetoGenerated,
	}
}

// ID returns the playlist identifier.
func (p *Playlist) ID() int64 {
	return p.id
}

// Subscribe registers an event callback. The caller must Unsubscribe with
// the returned ID when done; callbacks run synchronously after each
// operation completes.
func (p *Playlist) Subscribe(fn func(Event)) SubscriptionID {
	return p.bus.subscribe(fn)
}

// Unsubscribe removes an event callback.
func (p *Playlist) Unsubscribe(id SubscriptionID) {
	p.bus.unsubscribe(id)
}

// finish releases the lock and delivers the events collected during the
// operation. Use as: p.mu.Lock(); defer p.finish().
func (p *Playlist) finish() {
	events := p.pending
	p.pending = nil
	p.mu.Unlock()
	if len(events) > 0 {
		p.bus.publish(events)
	}
}

func (p *Playlist) emit(e Event) {
	p.pending = append(p.pending, e)
}

// Len returns the number of items.
func (p *Playlist) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// ItemAt returns the item at the given row, or nil if out of bounds.
func (p *Playlist) ItemAt(row int) *Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	if row < 0 || row >= len(p.items) {
		return nil
	}
	return p.items[row]
}

// AllItems returns a copy of the item slice in display order.
func (p *Playlist) AllItems() []*Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]*Item, len(p.items))
	copy(result, p.items)
	return result
}

// AllSongs returns the metadata of every item in display order.
func (p *Playlist) AllSongs() []song.Song {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allSongsLocked()
}

func (p *Playlist) allSongsLocked() []song.Song {
	result := make([]song.Song, len(p.items))
	for i, it := range p.items {
		result[i] = it.Metadata()
	}
	return result
}

// TotalLength returns the summed duration of all items.
func (p *Playlist) TotalLength() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	var total time.Duration
	for _, it := range p.items {
		total += it.Metadata().Duration
	}
	return total
}

// RowOf returns the current row of an item, or -1 if it is not in the
// playlist. Rows are unstable across mutations; do not hold them.
func (p *Playlist) RowOf(it *Item) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rowOfLocked(it)
}

func (p *Playlist) rowOfLocked(it *Item) int {
	if it == nil {
		return -1
	}
	return slices.Index(p.items, it)
}

// LibraryItemsByID returns the items backed by the given library record.
func (p *Playlist) LibraryItemsByID(id int64) []*Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := p.libraryItemsByID[id]
	result := make([]*Item, len(items))
	copy(result, items)
	return result
}

// --- current-item pointers ---------------------------------------------

// CurrentRow returns the row of the current track, or -1.
func (p *Playlist) CurrentRow() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rowOfLocked(p.current)
}

// CurrentItem returns the current item, or nil.
func (p *Playlist) CurrentItem() *Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// CurrentMetadata returns the metadata of the current track.
func (p *Playlist) CurrentMetadata() (song.Song, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return song.Song{}, false
	}
	return p.current.Metadata(), true
}

// SetCurrentRow makes the track at row current (-1 clears). The new
// current track also becomes the last-played track, and the dynamic
// playlist controller gets a chance to trim history and top up lookahead.
func (p *Playlist) SetCurrentRow(row int) error {
	p.mu.Lock()
	defer p.finish()
	if row < -1 || row >= len(p.items) {
		return ErrOutOfRange
	}
	var it *Item
	if row >= 0 {
		it = p.items[row]
	}
	p.setCurrentLocked(it)
	return nil
}

func (p *Playlist) setCurrentLocked(it *Item) {
	if it == p.current {
		return
	}
	prev := p.current
	var oldMeta *song.Song
	if prev != nil {
		m := prev.Metadata()
		oldMeta = &m
	}
	p.current = it
	var newMeta *song.Song
	if it != nil {
		m := it.Metadata()
		newMeta = &m
		p.lastPlayed = it
	}
	p.emit(CurrentChanged{Old: oldMeta, New: newMeta})
	p.dynamicCurrentChangedLocked()
}

// LastPlayedRow returns the row of the last-played track, or -1.
func (p *Playlist) LastPlayedRow() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rowOfLocked(p.lastPlayed)
}

// StopAfter marks the track at row so traversal stops after it
// (-1 clears the marker).
func (p *Playlist) StopAfter(row int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if row < -1 || row >= len(p.items) {
		return ErrOutOfRange
	}
	if row < 0 {
		p.stopAfter = nil
		return nil
	}
	p.stopAfter = p.items[row]
	return nil
}

// StopAfterRow returns the row of the stop-after marker, or -1.
func (p *Playlist) StopAfterRow() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rowOfLocked(p.stopAfter)
}

// --- modes and filter ---------------------------------------------------

// RepeatMode returns the active repeat mode.
func (p *Playlist) RepeatMode() RepeatMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.repeatMode
}

// SetRepeatMode changes the repeat mode. Traversal picks it up on the
// next call; the playback order itself is unaffected.
func (p *Playlist) SetRepeatMode(m RepeatMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.repeatMode = m
}

// ShuffleMode returns the active shuffle mode.
func (p *Playlist) ShuffleMode() ShuffleMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shuffleMode
}

// SetShuffleMode changes the shuffle mode and regenerates the playback
// order.
func (p *Playlist) SetShuffleMode(m ShuffleMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m == p.shuffleMode {
		return
	}
	p.shuffleMode = m
	p.reshuffleLocked()
}

// SetFilter installs a display filter consulted by traversal, or nil to
// show everything.
func (p *Playlist) SetFilter(f Filter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = f
}

// --- undoable mutation ---------------------------------------------------

func (p *Playlist) executeLocked(c command) {
	c.apply(p)
	p.undo.push(c)
}

// Remove removes count items starting at pos. The removal is undoable.
// An empty range is a validated no-op.
func (p *Playlist) Remove(pos, count int) error {
	p.mu.Lock()
	defer p.finish()
	if pos < 0 || count < 0 || pos+count > len(p.items) {
		return ErrOutOfRange
	}
	if count == 0 {
		return nil
	}
	p.executeLocked(&removeCommand{pos: pos, count: count})
	return nil
}

// Move relocates the items at sourceRows (not necessarily contiguous) to
// begin at dest, preserving their relative order. dest is interpreted
// after the sources are taken out; a negative dest means the end. The
// move is undoable, and the current, last-played and stop-after markers
// follow their items through the permutation.
func (p *Playlist) Move(sourceRows []int, dest int) error {
	p.mu.Lock()
	defer p.finish()
	rows, err := p.checkRowsLocked(sourceRows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	p.executeLocked(&moveCommand{sourceRows: rows, dest: dest})
	return nil
}

// MoveToRows relocates the contiguous block starting at start to the
// scattered destRows (positions in the resulting order). It is the
// symmetric inverse of Move and produces the identical permutation for
// symmetric inputs.
func (p *Playlist) MoveToRows(start int, destRows []int) error {
	p.mu.Lock()
	defer p.finish()
	rows, err := p.checkRowsLocked(destRows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	if start < 0 || start+len(rows) > len(p.items) {
		return ErrOutOfRange
	}
	p.executeLocked(&moveToRowsCommand{start: start, destRows: rows})
	return nil
}

// checkRowsLocked validates, copies and sorts a row set.
func (p *Playlist) checkRowsLocked(rows []int) ([]int, error) {
	sorted := make([]int, len(rows))
	copy(sorted, rows)
	slices.Sort(sorted)
	for i, r := range sorted {
		if r < 0 || r >= len(p.items) {
			return nil, ErrOutOfRange
		}
		if i > 0 && sorted[i-1] == r {
			return nil, ErrOutOfRange // duplicate row
		}
	}
	return sorted, nil
}

// UpdateItem applies an in-place metadata change to the item at row and
// emits an ItemChanged event. The row numbering is untouched.
func (p *Playlist) UpdateItem(row int, mutate func(*Item)) error {
	p.mu.Lock()
	defer p.finish()
	if row < 0 || row >= len(p.items) {
		return ErrOutOfRange
	}
	mutate(p.items[row])
	p.emit(ItemChanged{Row: row})
	return nil
}

// Undo reverts the most recent undoable command. Returns false if there
// is nothing to undo.
func (p *Playlist) Undo() bool {
	p.mu.Lock()
	defer p.finish()
	c, ok := p.undo.undo()
	if !ok {
		return false
	}
	c.revert(p)
	return true
}

// Redo re-applies the most recently undone command.
func (p *Playlist) Redo() bool {
	p.mu.Lock()
	defer p.finish()
	c, ok := p.undo.redo()
	if !ok {
		return false
	}
	c.apply(p)
	return true
}

// CanUndo returns true if an undoable command is available.
func (p *Playlist) CanUndo() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.undo.canUndo()
}

// CanRedo returns true if an undone command can be re-applied.
func (p *Playlist) CanRedo() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.undo.canRedo()
}

// --- without-undo bypass -------------------------------------------------

// RemoveWithoutUndo removes the given rows outside the undo log. Used for
// housekeeping (dynamic history truncation, pruning); it drops any pending
// redo history so redo never replays onto a restructured store.
func (p *Playlist) RemoveWithoutUndo(rows []int) error {
	p.mu.Lock()
	defer p.finish()
	sorted, err := p.checkRowsLocked(rows)
	if err != nil {
		return err
	}
	p.removeRowsWithoutUndoLocked(sorted)
	return nil
}

// removeRowsWithoutUndoLocked removes sorted rows from the end backwards.
func (p *Playlist) removeRowsWithoutUndoLocked(sorted []int) {
	for i := len(sorted) - 1; i >= 0; i-- {
		p.removeRangeLocked(sorted[i], 1)
	}
	p.undo.dropRedo()
}

// RemoveItemsNotInQueue prunes every item that is neither queued nor
// current. The removal is not undoable.
func (p *Playlist) RemoveItemsNotInQueue() {
	p.mu.Lock()
	defer p.finish()
	var rows []int
	for row, it := range p.items {
		if it == p.current {
			continue
		}
		if p.queue != nil && p.queue.IsQueued(it) {
			continue
		}
		rows = append(rows, row)
	}
	p.removeRowsWithoutUndoLocked(rows)
}

// Clear removes everything, turns off dynamic mode and discards undo
// history. In-flight async resolutions targeting the old contents are
// invalidated and will be dropped on arrival.
func (p *Playlist) Clear() {
	p.mu.Lock()
	defer p.finish()
	p.epoch++
	p.turnOffDynamicLocked()
	p.removeRangeLocked(0, len(p.items))
	p.undo = newUndoStack(p.undo.limit)
}

// Shuffle randomizes the display order itself (unlike shuffle mode, which
// only changes playback order). Not undoable.
func (p *Playlist) Shuffle() {
	p.mu.Lock()
	defer p.finish()
	p.rng.Shuffle(len(p.items), func(i, j int) {
		p.items[i], p.items[j] = p.items[j], p.items[i]
	})
	p.undo.dropRedo()
	p.reshuffleLocked()
	p.emit(ItemsMoved{Dest: 0})
}

// --- runtime metadata ----------------------------------------------------

// SetStreamMetadata installs temporary stream metadata on every item whose
// URL matches; streams report what they are actually playing this way.
func (p *Playlist) SetStreamMetadata(url string, s song.Song) {
	p.mu.Lock()
	defer p.finish()
	for row, it := range p.items {
		if it.OriginalMetadata().URL != url {
			continue
		}
		it.SetStreamMetadata(s)
		p.emit(ItemChanged{Row: row})
		p.emitCurrentMetadataLocked(it)
	}
}

// ClearStreamMetadata removes the temporary override from the current item.
func (p *Playlist) ClearStreamMetadata() {
	p.mu.Lock()
	defer p.finish()
	if p.current == nil || !p.current.HasStreamMetadata() {
		return
	}
	p.current.ClearStreamMetadata()
	p.emit(ItemChanged{Row: p.rowOfLocked(p.current)})
	p.emitCurrentMetadataLocked(p.current)
}

// emitCurrentMetadataLocked fires CurrentChanged when the current item's
// visible metadata changed without the item itself changing.
func (p *Playlist) emitCurrentMetadataLocked(it *Item) {
	if it != p.current {
		return
	}
	m := it.Metadata()
	p.emit(CurrentChanged{Old: &m, New: &m})
}

// ApplyValidity flags every item with the given URL as playable or broken.
func (p *Playlist) ApplyValidity(url string, valid bool) {
	p.mu.Lock()
	defer p.finish()
	for row, it := range p.items {
		if it.Metadata().URL != url {
			continue
		}
		if it.IsValid() != valid {
			it.SetValid(valid)
			p.emit(ItemChanged{Row: row})
		}
	}
}

// InvalidateDeletedSongs greys out local-file items whose file no longer
// exists, and restores ones that came back.
func (p *Playlist) InvalidateDeletedSongs() {
	p.mu.Lock()
	defer p.finish()
	for row, it := range p.items {
		m := it.Metadata()
		if m.IsStream() || m.URL == "" {
			continue
		}
		_, err := os.Stat(m.URL)
		exists := err == nil
		if it.IsValid() != exists {
			it.SetValid(exists)
			p.emit(ItemChanged{Row: row})
		}
	}
}

// OnLibrarySongChanged refreshes every item backed by the changed library
// record. Wire this to the library provider's change notification.
func (p *Playlist) OnLibrarySongChanged(s song.Song) {
	if !s.IsLibrary() {
		return
	}
	p.mu.Lock()
	defer p.finish()
	for _, it := range p.libraryItemsByID[s.LibraryID] {
		it.setSong(s)
		p.emit(ItemChanged{Row: p.rowOfLocked(it)})
		p.emitCurrentMetadataLocked(it)
	}
}

// --- store primitives (commands and bypass path only) --------------------

func (p *Playlist) clampInsertPosLocked(pos int) int {
	if pos < 0 || pos > len(p.items) {
		return len(p.items)
	}
	return pos
}

// insertItemsLocked splices items in at pos (clamped) and returns the
// actual position. Maintains the reverse index and playback order and
// emits ItemsInserted.
func (p *Playlist) insertItemsLocked(pos int, items []*Item) int {
	pos = p.clampInsertPosLocked(pos)
	if len(items) == 0 {
		return pos
	}

	p.items = slices.Insert(p.items, pos, items...)
	for _, it := range items {
		if id := it.LibraryID(); id > 0 {
			p.libraryItemsByID[id] = append(p.libraryItemsByID[id], it)
		}
	}
	p.reshuffleLocked()
	p.emit(ItemsInserted{First: pos, Last: pos + len(items) - 1})
	return pos
}

// removeRangeLocked splices out [pos, pos+count) (clamped) and returns the
// removed items. Clears pointers that fall inside the range, tells the
// queue to forget the items, maintains the reverse index and playback
// order, and emits ItemsRemoved.
func (p *Playlist) removeRangeLocked(pos, count int) []*Item {
	if pos < 0 {
		pos = 0
	}
	if pos > len(p.items) {
		pos = len(p.items)
	}
	if count < 0 || pos+count > len(p.items) {
		count = len(p.items) - pos
	}
	if count == 0 {
		return nil
	}

	removed := make([]*Item, count)
	copy(removed, p.items[pos:pos+count])
	p.items = slices.Delete(p.items, pos, pos+count)

	for _, it := range removed {
		id := it.LibraryID()
		if id <= 0 {
			continue
		}
		peers := p.libraryItemsByID[id]
		if i := slices.Index(peers, it); i >= 0 {
			peers = append(peers[:i], peers[i+1:]...)
		}
		if len(peers) == 0 {
			delete(p.libraryItemsByID, id)
		} else {
			p.libraryItemsByID[id] = peers
		}
	}

	if p.current != nil && slices.Contains(removed, p.current) {
		m := p.current.Metadata()
		p.current = nil
		p.emit(CurrentChanged{Old: &m, New: nil})
	}
	if p.lastPlayed != nil && slices.Contains(removed, p.lastPlayed) {
		p.lastPlayed = nil
	}
	if p.stopAfter != nil && slices.Contains(removed, p.stopAfter) {
		p.stopAfter = nil
	}
	if p.queue != nil {
		p.queue.Forget(removed)
	}

	p.reshuffleLocked()
	p.emit(ItemsRemoved{First: pos, Last: pos + count - 1})
	return removed
}

// moveRowsLocked relocates sourceRows (sorted ascending) to begin at dest,
// where dest is a position in the order left after the sources are taken
// out. Returns the first row of the moved block.
func (p *Playlist) moveRowsLocked(sourceRows []int, dest int) int {
	if len(sourceRows) == 0 {
		return p.clampInsertPosLocked(dest)
	}

	moved := make([]*Item, 0, len(sourceRows))
	for _, r := range sourceRows {
		moved = append(moved, p.items[r])
	}
	for i := len(sourceRows) - 1; i >= 0; i-- {
		r := sourceRows[i]
		p.items = slices.Delete(p.items, r, r+1)
	}

	if dest < 0 || dest > len(p.items) {
		dest = len(p.items)
	}
	p.items = slices.Insert(p.items, dest, moved...)

	p.reshuffleLocked()
	p.emit(ItemsMoved{Dest: dest})
	return dest
}

// moveBlockToRowsLocked relocates the block [start, start+len(destRows))
// to the scattered destRows (sorted ascending, positions in the resulting
// order). The symmetric inverse of moveRowsLocked.
func (p *Playlist) moveBlockToRowsLocked(start int, destRows []int) {
	k := len(destRows)
	if k == 0 {
		return
	}
	if start < 0 {
		start = 0
	}
	if start+k > len(p.items) {
		start = len(p.items) - k
	}

	moved := make([]*Item, k)
	copy(moved, p.items[start:start+k])
	p.items = slices.Delete(p.items, start, start+k)

	for i, d := range destRows {
		if d < 0 || d > len(p.items) {
			d = len(p.items)
		}
		p.items = slices.Insert(p.items, d, moved[i])
	}

	p.reshuffleLocked()
	p.emit(ItemsMoved{Dest: destRows[0]})
}
