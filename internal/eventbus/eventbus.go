// Package eventbus fans the engine's run events (run started, conflict,
// fallback, shortfall, run completed) out to in-process subscribers such as
// the metrics collector.
package eventbus

import "sync"

// Event is any run event published by the distribution engine.
type Event any

// subscriberBuffer bounds how many undelivered events a slow subscriber can
// hold; publishes beyond that are dropped for it rather than stalling a run.
const subscriberBuffer = 16

// EventBus is the publish/subscribe contract between the engine and its
// observers.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the in-process EventBus implementation.
type Bus struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
	closed    bool
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{listeners: make(map[chan Event]struct{})}
}

// Publish delivers the event to every subscriber without blocking. A
// subscriber whose buffer is full misses the event.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for ch := range b.listeners {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a listener and returns its channel. Subscribing to a
// closed bus yields an already-closed channel.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.listeners[ch] = struct{}{}
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the listener and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.listeners {
		if ch == sub {
			delete(b.listeners, ch)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes every subscriber channel and rejects further publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.listeners {
		close(ch)
	}
	b.listeners = nil
}
