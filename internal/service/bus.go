package service

import "sync"

// Refresher is the ordered "response changed" fan-out. Dependents register
// once at startup; after every successful response replacement the
// registered funcs run synchronously in registration order, so the store
// update happens-before every re-render that reads it.
type Refresher struct {
	mu  sync.Mutex
	fns []func(*LocationResponse)
}

// NewRefresher creates an empty refresher.
func NewRefresher() *Refresher {
	return &Refresher{}
}

// Register appends a dependent refresh func. Registration order is
// invocation order.
func (r *Refresher) Register(fn func(*LocationResponse)) {
	r.mu.Lock()
	r.fns = append(r.fns, fn)
	r.mu.Unlock()
}

// ResponseChanged invokes every registered func with the new response,
// in order, as one non-interleaved sequence.
func (r *Refresher) ResponseChanged(resp *LocationResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, fn := range r.fns {
		fn(resp)
	}
}

// Event represents a client-state mutation pushed to connected pages.
type Event struct {
	Resource string // "response" or "layers"
	Name     string // location name, when applicable
}

// EventBus is a simple fan-out pub/sub used to nudge connected viewer
// pages over SSE after the response or layer configuration changes.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{})}
}

// Publish sends an event to all subscribers (non-blocking).
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
}

// Subscribe returns a buffered channel that receives events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}
