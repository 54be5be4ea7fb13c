// Package broker fans events out to in-process subscribers such as SSE
// streams and websocket connections.
package broker

import (
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the per-subscriber channel capacity
const DefaultBuffer = 64

// Broker delivers every published value to all current subscribers.
// Publish never blocks: a subscriber whose buffer is full misses the value.
type Broker[T any] struct {
	mu      sync.RWMutex
	subs    map[chan T]struct{}
	buffer  int
	dropped uint64
	closed  bool
}

// New creates a broker whose subscriber channels hold buffer values
func New[T any](buffer int) *Broker[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker[T]{
		subs:   make(map[chan T]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release it; it closes the channel and is safe to call twice.
func (b *Broker[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, b.buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
			b.mu.Unlock()
		})
	}
}

// Publish sends v to every subscriber without blocking
func (b *Broker[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- v:
		default:
			atomic.AddUint64(&b.dropped, 1)
		}
	}
}

// Dropped returns how many deliveries were skipped because a subscriber was full
func (b *Broker[T]) Dropped() uint64 {
	return atomic.LoadUint64(&b.dropped)
}

// Subscribers returns the number of active subscribers
func (b *Broker[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close disconnects all subscribers. Later subscriptions receive a closed channel.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
