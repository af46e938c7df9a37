package event

import (
	d "github.com/tj/go-debug"
)

var debug = d.Debug("iiif:event")

// Handler reacts to an event.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus dispatches events synchronously, in subscription order, on the
// publisher's goroutine. It belongs to a single viewer and is not safe for
// concurrent use.
type Bus struct {
	typed  map[Type][]subscription
	nextID uint64
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{
		typed: make(map[Type][]subscription),
	}
}

// Publish calls every handler subscribed to the event type.
func (b *Bus) Publish(e Event) {
	subs := make([]subscription, len(b.typed[e.Type()]))
	copy(subs, b.typed[e.Type()])

	debug("publish %s to %d handler(s)", e.Type(), len(subs))
	for _, sub := range subs {
		sub.handler(e)
	}
}

// Subscribe registers a handler for an event type. It returns the
// unsubscribe function.
func (b *Bus) Subscribe(t Type, handler Handler) func() {
	b.nextID++
	id := b.nextID
	b.typed[t] = append(b.typed[t], subscription{id, handler})

	return func() {
		subs := b.typed[t]
		for i, s := range subs {
			if s.id == id {
				b.typed[t] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Once registers fn through subscribe and removes it after the first event
// accepted by match. A nil match accepts any event. The returned function
// cancels the subscription if it has not fired yet.
func Once[E any](subscribe func(func(E)) func(), match func(E) bool, fn func(E)) func() {
	fired := false
	var unsubscribe func()

	unsubscribe = subscribe(func(e E) {
		if fired || (match != nil && !match(e)) {
			return
		}
		fired = true
		if unsubscribe != nil {
			unsubscribe()
		}
		fn(e)
	})

	if fired {
		unsubscribe()
	}

	return func() {
		if !fired {
			fired = true
			unsubscribe()
		}
	}
}
