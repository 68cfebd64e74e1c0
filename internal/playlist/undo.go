package playlist

// command is one reversible structural change. Commands reach playlist
// internals through the unexported mutators below; they are the only code
// besides the without-undo bypass path allowed to restructure the item
// slice.
type command interface {
	apply(p *Playlist)
	revert(p *Playlist)
}

type insertCommand struct {
	pos   int
	items []*Item
}

func (c *insertCommand) apply(p *Playlist) {
	// Remember the clamped position so revert removes the right range.
	c.pos = p.insertItemsLocked(c.pos, c.items)
}

func (c *insertCommand) revert(p *Playlist) {
	p.removeRangeLocked(c.pos, len(c.items))
}

type removeCommand struct {
	pos, count int
	removed    []*Item // captured on apply, re-inserted on revert
}

func (c *removeCommand) apply(p *Playlist) {
	c.removed = p.removeRangeLocked(c.pos, c.count)
}

func (c *removeCommand) revert(p *Playlist) {
	p.insertItemsLocked(c.pos, c.removed)
}

type moveCommand struct {
	sourceRows []int // sorted ascending
	dest       int
	movedTo    int // first row of the moved block after apply
}

func (c *moveCommand) apply(p *Playlist) {
	c.movedTo = p.moveRowsLocked(c.sourceRows, c.dest)
}

func (c *moveCommand) revert(p *Playlist) {
	p.moveBlockToRowsLocked(c.movedTo, c.sourceRows)
}

type moveToRowsCommand struct {
	start    int
	destRows []int // sorted ascending
}

func (c *moveToRowsCommand) apply(p *Playlist) {
	p.moveBlockToRowsLocked(c.start, c.destRows)
}

func (c *moveToRowsCommand) revert(p *Playlist) {
	p.moveRowsLocked(c.destRows, c.start)
}

// undoStack holds executed commands with a cursor separating the undoable
// prefix from the redoable suffix. Depth is bounded: the oldest command is
// dropped silently once the limit is exceeded, forfeiting undo depth but
// never touching the store.
type undoStack struct {
	commands []command
	cursor   int // number of currently-applied commands
	limit    int
}

func newUndoStack(limit int) *undoStack {
	if limit <= 0 {
		limit = 100
	}
	return &undoStack{limit: limit}
}

func (s *undoStack) push(c command) {
	s.commands = append(s.commands[:s.cursor], c)
	if len(s.commands) > s.limit {
		s.commands = s.commands[1:]
	}
	s.cursor = len(s.commands)
}

func (s *undoStack) undo() (command, bool) {
	if s.cursor == 0 {
		return nil, false
	}
	s.cursor--
	return s.commands[s.cursor], true
}

func (s *undoStack) redo() (command, bool) {
	if s.cursor >= len(s.commands) {
		return nil, false
	}
	c := s.commands[s.cursor]
	s.cursor++
	return c, true
}

func (s *undoStack) canUndo() bool {
	return s.cursor > 0
}

func (s *undoStack) canRedo() bool {
	return s.cursor < len(s.commands)
}

// dropRedo discards the redoable suffix. Every without-undo bypass
// mutation calls this: redoing a command captured against a store the
// bypass has since restructured would corrupt it.
func (s *undoStack) dropRedo() {
	s.commands = s.commands[:s.cursor]
}
