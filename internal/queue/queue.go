// Package queue implements the play-next queue: an ordered list of
// playlist item references played ahead of the playlist's own traversal
// order. Items are identified by reference, so queued entries follow
// their item through playlist moves and survive reordering.
package queue

import (
	"sync"

	"github.com/yasserzoho/Clementine/internal/playlist"
)

// Queue is an ordered play-next list. An item appears at most once; the
// owning playlist calls Forget when items leave its store so the queue
// never hands out dangling references.
type Queue struct {
	mu     sync.Mutex
	items  []*playlist.Item
	member map[*playlist.Item]bool
}

var _ playlist.Queue = (*Queue)(nil)

// New creates an empty queue.
func New() *Queue {
	return &Queue{member: make(map[*playlist.Item]bool)}
}

// Enqueue appends items to the back of the queue. Items already queued
// stay at their current position.
func (q *Queue) Enqueue(items []*playlist.Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, it := range items {
		if it == nil || q.member[it] {
			continue
		}
		q.items = append(q.items, it)
		q.member[it] = true
	}
}

// EnqueueFirst prepends items to the front of the queue, preserving
// their given order. Items already queued move to the front.
func (q *Queue) EnqueueFirst(items []*playlist.Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if it == nil {
			continue
		}
		if q.member[it] {
			q.removeLocked(it)
		}
		q.items = append([]*playlist.Item{it}, q.items...)
		q.member[it] = true
	}
}

// TakeNext pops the front of the queue, or nil when empty.
func (q *Queue) TakeNext() *playlist.Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	it := q.items[0]
	q.items = q.items[1:]
	delete(q.member, it)
	return it
}

// Peek returns the front of the queue without removing it, or nil.
func (q *Queue) Peek() *playlist.Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// PositionOf returns the 1-based queue position of an item, or 0 when
// the item is not queued. Positions are what track lists display next to
// queued entries.
func (q *Queue) PositionOf(it *playlist.Item) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.member[it] {
		return 0
	}
	for i, queued := range q.items {
		if queued == it {
			return i + 1
		}
	}
	return 0
}

// Forget drops the given items from the queue if present.
func (q *Queue) Forget(items []*playlist.Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, it := range items {
		if q.member[it] {
			q.removeLocked(it)
		}
	}
}

// IsQueued returns true if the item is currently queued.
func (q *Queue) IsQueued(it *playlist.Item) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.member[it]
}

// Toggle queues an unqueued item and unqueues a queued one.
func (q *Queue) Toggle(it *playlist.Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if it == nil {
		return
	}
	if q.member[it] {
		q.removeLocked(it)
		return
	}
	q.items = append(q.items, it)
	q.member[it] = true
}

// Items returns the queued items in play order.
func (q *Queue) Items() []*playlist.Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*playlist.Item, len(q.items))
	copy(out, q.items)
	return out
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.member = make(map[*playlist.Item]bool)
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty returns true when nothing is queued.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

func (q *Queue) removeLocked(it *playlist.Item) {
	for i, queued := range q.items {
		if queued == it {
			q.items = append(q.items[:i], q.items[i+1:]...)
			break
		}
	}
	delete(q.member, it)
}
