package playlist

import (
	"fmt"
	"testing"

	"github.com/yasserzoho/Clementine/internal/song"
)

func TestUndo_Insert(t *testing.T) {
	p := newTestPlaylist(t)
	fillPlaylist(p, "A")
	fillPlaylist(p, "B", "C")

	if !p.Undo() {
		t.Fatal("Undo() = false")
	}
	assertTitles(t, p, "A")

	if !p.Redo() {
		t.Fatal("Redo() = false")
	}
	assertTitles(t, p, "A", "B", "C")
}

func TestUndo_Remove(t *testing.T) {
	p := newTestPlaylist(t)
	fillPlaylist(p, "A", "B", "C")
	if err := p.Remove(1, 1); err != nil {
		t.Fatal(err)
	}
	assertTitles(t, p, "A", "C")

	if !p.Undo() {
		t.Fatal("Undo() = false")
	}
	assertTitles(t, p, "A", "B", "C")

	if !p.Redo() {
		t.Fatal("Redo() = false")
	}
	assertTitles(t, p, "A", "C")
}

func TestUndo_Move(t *testing.T) {
	p := newTestPlaylist(t)
	fillPlaylist(p, "A", "B", "C", "D")

	if err := p.Move([]int{0, 2}, 1); err != nil {
		t.Fatal(err)
	}
	assertTitles(t, p, "B", "A", "C", "D")

	if !p.Undo() {
		t.Fatal("Undo() = false")
	}
	assertTitles(t, p, "A", "B", "C", "D")

	if !p.Redo() {
		t.Fatal("Redo() = false")
	}
	assertTitles(t, p, "B", "A", "C", "D")
}

func TestUndo_EmptyStack(t *testing.T) {
	p := newTestPlaylist(t)

	if p.Undo() {
		t.Error("Undo() on empty stack = true")
	}
	if p.Redo() {
		t.Error("Redo() on empty stack = true")
	}
	if p.CanUndo() || p.CanRedo() {
		t.Error("CanUndo/CanRedo on empty stack = true")
	}
}

func TestUndo_NewCommandDropsRedo(t *testing.T) {
	p := newTestPlaylist(t)
	fillPlaylist(p, "A")
	fillPlaylist(p, "B")

	if !p.Undo() {
		t.Fatal("Undo() = false")
	}
	if !p.CanRedo() {
		t.Fatal("CanRedo() = false after undo")
	}

	fillPlaylist(p, "C")

	if p.CanRedo() {
		t.Error("CanRedo() = true after new command")
	}
	assertTitles(t, p, "A", "C")
}

func TestUndo_DepthLimitDropsOldest(t *testing.T) {
	p := New(1, Options{UndoDepth: 3})
	for i := 0; i < 5; i++ {
		p.InsertSongs([]song.Song{makeSong(fmt.Sprintf("T%d", i))}, -1, false, false)
	}

	undone := 0
	for p.Undo() {
		undone++
	}
	if undone != 3 {
		t.Errorf("undone %d commands, want 3 (depth limit)", undone)
	}
	// The two oldest inserts are no longer reversible.
	assertTitles(t, p, "T0", "T1")
}

func TestUndo_RoundTripPreservesMetadata(t *testing.T) {
	p := newTestPlaylist(t)
	s := makeAlbumSong("A", "Artist", "Album")
	s.Rating = 0.6
	p.InsertSongs([]song.Song{s}, -1, false, false)

	if err := p.Remove(0, 1); err != nil {
		t.Fatal(err)
	}
	if !p.Undo() {
		t.Fatal("Undo() = false")
	}

	got := p.ItemAt(0).Metadata()
	if got.Artist != "Artist" || got.Album != "Album" || got.Rating != 0.6 {
		t.Errorf("restored song = %+v, want original metadata intact", got)
	}
}

func TestRemoveWithoutUndo_BypassesStack(t *testing.T) {
	p := newTestPlaylist(t)
	fillPlaylist(p, "A", "B", "C")

	if err := p.RemoveWithoutUndo([]int{1}); err != nil {
		t.Fatal(err)
	}
	assertTitles(t, p, "A", "C")

	// The only recorded command is the initial insert.
	if !p.Undo() {
		t.Fatal("Undo() = false")
	}
	if p.Len() != 0 {
		t.Errorf("Len() = %d, want 0 (undo reverts the insert, not the bypass removal)", p.Len())
	}
}

func TestRemoveWithoutUndo_DropsRedo(t *testing.T) {
	p := newTestPlaylist(t)
	fillPlaylist(p, "A")
	fillPlaylist(p, "B", "C")
	if !p.Undo() {
		t.Fatal("Undo() = false")
	}
	if !p.Redo() {
		t.Fatal("Redo() = false")
	}
	if !p.Undo() {
		t.Fatal("second Undo() = false")
	}

	if err := p.RemoveWithoutUndo([]int{0}); err != nil {
		t.Fatal(err)
	}

	if p.CanRedo() {
		t.Error("CanRedo() = true after a bypass mutation")
	}
}

func TestUndo_RedoAfterInterleavedHistory(t *testing.T) {
	p := newTestPlaylist(t)
	fillPlaylist(p, "A", "B", "C")
	if err := p.Move([]int{2}, 0); err != nil {
		t.Fatal(err)
	}
	assertTitles(t, p, "C", "A", "B")
	if err := p.Remove(0, 1); err != nil {
		t.Fatal(err)
	}
	assertTitles(t, p, "A", "B")

	if !p.Undo() {
		t.Fatal("Undo remove = false")
	}
	assertTitles(t, p, "C", "A", "B")
	if !p.Undo() {
		t.Fatal("Undo move = false")
	}
	assertTitles(t, p, "A", "B", "C")

	if !p.Redo() {
		t.Fatal("Redo move = false")
	}
	if !p.Redo() {
		t.Fatal("Redo remove = false")
	}
	assertTitles(t, p, "A", "B")
}
