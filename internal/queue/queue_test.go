package queue

import (
	"testing"

	"github.com/yasserzoho/Clementine/internal/playlist"
	"github.com/yasserzoho/Clementine/internal/song"
)

func makeItems(titles ...string) []*playlist.Item {
	items := make([]*playlist.Item, len(titles))
	for i, title := range titles {
		items[i] = playlist.NewItem(song.KindFile, song.Song{Title: title, URL: "/m/" + title + ".mp3"})
	}
	return items
}

func TestEnqueueAndTakeNext(t *testing.T) {
	q := New()
	items := makeItems("A", "B")
	q.Enqueue(items)

	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
	if got := q.TakeNext(); got != items[0] {
		t.Errorf("TakeNext() = %v, want A", got)
	}
	if got := q.TakeNext(); got != items[1] {
		t.Errorf("TakeNext() = %v, want B", got)
	}
	if got := q.TakeNext(); got != nil {
		t.Errorf("TakeNext() on empty queue = %v, want nil", got)
	}
}

func TestEnqueue_DuplicatesKeepPosition(t *testing.T) {
	q := New()
	items := makeItems("A", "B")
	q.Enqueue(items)
	q.Enqueue(items[:1])

	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
	if got := q.PositionOf(items[0]); got != 1 {
		t.Errorf("PositionOf(A) = %d, want 1", got)
	}
}

func TestEnqueueFirst(t *testing.T) {
	q := New()
	back := makeItems("C")
	front := makeItems("A", "B")
	q.Enqueue(back)
	q.EnqueueFirst(front)

	if got := q.PositionOf(front[0]); got != 1 {
		t.Errorf("PositionOf(A) = %d, want 1", got)
	}
	if got := q.PositionOf(front[1]); got != 2 {
		t.Errorf("PositionOf(B) = %d, want 2", got)
	}
	if got := q.PositionOf(back[0]); got != 3 {
		t.Errorf("PositionOf(C) = %d, want 3", got)
	}
}

func TestEnqueueFirst_MovesQueuedItemToFront(t *testing.T) {
	q := New()
	items := makeItems("A", "B")
	q.Enqueue(items)
	q.EnqueueFirst(items[1:])

	if got := q.PositionOf(items[1]); got != 1 {
		t.Errorf("PositionOf(B) = %d, want 1", got)
	}
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
}

func TestPositionOf_Unqueued(t *testing.T) {
	q := New()
	it := makeItems("A")[0]

	if got := q.PositionOf(it); got != 0 {
		t.Errorf("PositionOf(unqueued) = %d, want 0", got)
	}
}

func TestForget(t *testing.T) {
	q := New()
	items := makeItems("A", "B", "C")
	q.Enqueue(items)

	q.Forget(items[1:2])

	if q.IsQueued(items[1]) {
		t.Error("IsQueued(B) = true after Forget")
	}
	if got := q.PositionOf(items[2]); got != 2 {
		t.Errorf("PositionOf(C) = %d, want 2 after gap closes", got)
	}
	// Unknown items are ignored.
	q.Forget(makeItems("X"))
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
}

func TestToggle(t *testing.T) {
	q := New()
	it := makeItems("A")[0]

	q.Toggle(it)
	if !q.IsQueued(it) {
		t.Error("IsQueued() = false after first toggle")
	}
	q.Toggle(it)
	if q.IsQueued(it) {
		t.Error("IsQueued() = true after second toggle")
	}
}

func TestPeek(t *testing.T) {
	q := New()
	if q.Peek() != nil {
		t.Error("Peek() on empty queue != nil")
	}

	items := makeItems("A")
	q.Enqueue(items)
	if got := q.Peek(); got != items[0] {
		t.Errorf("Peek() = %v, want A", got)
	}
	if q.Len() != 1 {
		t.Error("Peek() must not consume")
	}
}

func TestClear(t *testing.T) {
	q := New()
	items := makeItems("A", "B")
	q.Enqueue(items)

	q.Clear()

	if !q.IsEmpty() {
		t.Error("IsEmpty() = false after Clear")
	}
	if q.IsQueued(items[0]) {
		t.Error("IsQueued() = true after Clear")
	}
}
