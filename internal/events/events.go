package events

import "sync"

// Topic is an in-process publish/subscribe channel. Publish never blocks:
// subscribers that cannot keep up drop events. Subscriber channels are
// closed while holding the write lock, so a concurrent Publish can never
// send on a closed channel.
type Topic[T any] struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan T
}

// NewTopic creates an empty topic.
func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{subs: make(map[int]chan T)}
}

// Subscribe registers a subscriber with the given channel buffer size.
// The returned cancel func removes the subscription and closes the channel.
func (t *Topic[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan T, buffer)

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = ch
	t.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			close(ch)
			t.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers v to all current subscribers without blocking.
func (t *Topic[T]) Publish(v T) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, ch := range t.subs {
		select {
		case ch <- v:
		default:
			// Subscriber is behind. Drop rather than stall the publisher.
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (t *Topic[T]) SubscriberCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}
