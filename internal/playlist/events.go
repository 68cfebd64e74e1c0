package playlist

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yasserzoho/Clementine/internal/song"
)

// Event is a notification emitted by a playlist after a completed
// operation. Events fire after all invariants are restored, never
// mid-mutation.
type Event interface {
	event()
}

// ItemsInserted reports the inclusive row range of a just-completed insert.
type ItemsInserted struct {
	First, Last int
}

// ItemsRemoved reports the inclusive row range of a just-completed removal.
type ItemsRemoved struct {
	First, Last int
}

// ItemsMoved reports a reorder. Dest is the first row of the moved block
// after the operation.
type ItemsMoved struct {
	Dest int
}

// ItemChanged reports an in-place metadata change at a single row.
type ItemChanged struct {
	Row int
}

// CurrentChanged reports a change of the current track. Old or New is nil
// when there was or is no current track.
type CurrentChanged struct {
	Old, New *song.Song
}

// DynamicModeChanged reports the dynamic playlist controller turning on
// or off.
type DynamicModeChanged struct {
	Dynamic bool
}

// LoadError reports a non-fatal resolution failure; the offending entry
// was skipped and the rest of the operation proceeded.
type LoadError struct {
	Message string
}

func (ItemsInserted) event()      {}
func (ItemsRemoved) event()       {}
func (ItemsMoved) event()         {}
func (ItemChanged) event()        {}
func (CurrentChanged) event()     {}
func (DynamicModeChanged) event() {}
func (LoadError) event()          {}

// SubscriptionID identifies one event subscription. The owner must call
// Unsubscribe with it; there is no automatic cleanup.
type SubscriptionID string

type eventSub struct {
	id SubscriptionID
	fn func(Event)
}

// eventBus delivers events synchronously, in subscription order.
type eventBus struct {
	mu   sync.Mutex
	subs []eventSub
}

func newEventBus() *eventBus {
	return &eventBus{}
}

func (b *eventBus) subscribe(fn func(Event)) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := SubscriptionID(uuid.NewString())
	b.subs = append(b.subs, eventSub{id: id, fn: fn})
	return id
}

func (b *eventBus) unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

func (b *eventBus) publish(events []Event) {
	b.mu.Lock()
	subs := make([]eventSub, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, e := range events {
		for _, s := range subs {
			s.fn(e)
		}
	}
}
