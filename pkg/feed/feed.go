// Package feed provides small observable value cells: a current value
// plus conflated change notification for any number of subscribers.
// Readers always see a consistent snapshot; publishers never block.
package feed

import "sync"

// Feed holds one value of type T and notifies subscribers when it is
// replaced. Subscriber channels are conflated: a slow consumer skips
// intermediate values and receives the latest one.
type Feed[T any] struct {
	mu      sync.RWMutex
	value   T
	hasVal  bool
	subs    map[uint64]chan T
	nextSub uint64
}

// New creates an empty feed.
func New[T any]() *Feed[T] {
	return &Feed[T]{subs: make(map[uint64]chan T)}
}

// NewWith creates a feed seeded with an initial value.
func NewWith[T any](initial T) *Feed[T] {
	f := New[T]()
	f.value = initial
	f.hasVal = true
	return f
}

// Get returns the current value (zero value if nothing was published).
func (f *Feed[T]) Get() T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

// Set publishes a new value and notifies all subscribers without
// blocking.
func (f *Feed[T]) Set(v T) {
	f.mu.Lock()
	f.value = v
	f.hasVal = true
	chans := make([]chan T, 0, len(f.subs))
	for _, ch := range f.subs {
		chans = append(chans, ch)
	}
	f.mu.Unlock()

	for _, ch := range chans {
		deliver(ch, v)
	}
}

// Subscribe registers a consumer. The current value, if any, is
// delivered immediately. The returned cancel func must be called to
// release the subscription.
func (f *Feed[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)

	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch
	replay, hasVal := f.value, f.hasVal
	f.mu.Unlock()

	if hasVal {
		deliver(ch, replay)
	}

	cancel := func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
	return ch, cancel
}

// deliver pushes v into a buffered channel, evicting the stale value
// if the consumer has not drained it yet.
func deliver[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
