package store

import "sync"

// ChangeKind classifies a library mutation.
type ChangeKind string

// Change kinds published by the comic store.
const (
	ChangeComicAdded   ChangeKind = "comic_added"
	ChangeComicUpdated ChangeKind = "comic_updated"
	ChangeComicDeleted ChangeKind = "comic_deleted"
)

// Change describes one library mutation. ComicIDs may be empty for bulk
// operations where listing every row is not worth it; subscribers treat an
// empty set as "anything may have changed".
type Change struct {
	Kind     ChangeKind
	ComicIDs []string
}

// Notifier receives change notifications from a store.
// The comic store calls Notify after every committed mutation.
type Notifier interface {
	Notify(Change)
}

// NoopNotifier is a Notifier that drops everything. Used in tests and
// during bulk imports.
type NoopNotifier struct{}

// Notify implements Notifier as a no-op.
func (NoopNotifier) Notify(Change) {}

// Bus is an in-process fan-out of store changes. Delivery is non-blocking:
// a subscriber that falls behind loses notifications rather than stalling
// store writes, which is acceptable because every notification only means
// "re-query".
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Change
}

// NewBus creates an empty change bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Change)}
}

// Subscribe registers a new subscriber with the given channel buffer.
// The returned cancel func unregisters and closes the channel; it is safe
// to call more than once.
func (b *Bus) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Change, buffer)

	b.mu.Lock()
	token := b.next
	b.next++
	b.subs[token] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, token)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Notify implements Notifier by fanning the change out to all subscribers.
func (b *Bus) Notify(c Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- c:
		default:
			// Subscriber is behind; it will re-query on its next wake.
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
