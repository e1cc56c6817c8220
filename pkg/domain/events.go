package domain

import "sync"

// EventKind enumerates the notifications published by repositories and the
// session register.
type EventKind string

const (
	// EventEntityAdded is published after a record is inserted.
	EventEntityAdded EventKind = "entity_added"
	// EventEntityUpdated is published after a record is replaced.
	EventEntityUpdated EventKind = "entity_updated"
	// EventCurrentUserChanged is published when the active passenger changes.
	EventCurrentUserChanged EventKind = "current_user_changed"
)

// Event carries the affected record. Previous is set for updates and user
// changes when a prior value exists.
type Event[T any] struct {
	Kind     EventKind
	Entity   EntityType
	Key      string
	Current  T
	Previous *T
}

// Subscriber receives events synchronously on the publisher's goroutine.
type Subscriber[T any] func(Event[T])

// Bus is a typed publish/subscribe list. Subscribers run in subscription
// order, once per published event.
type Bus[T any] struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription[T]
}

type subscription[T any] struct {
	id int
	fn Subscriber[T]
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus[T]) Subscribe(fn Subscriber[T]) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription[T]{id: id, fn: fn})
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Len reports the number of active subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers evt to every subscriber. The subscriber list is copied
// first so subscribers may subscribe or unsubscribe while being notified.
func (b *Bus[T]) Publish(evt Event[T]) {
	b.mu.RLock()
	subs := make([]subscription[T], len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()
	for _, s := range subs {
		s.fn(evt)
	}
}
