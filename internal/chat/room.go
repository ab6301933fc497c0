package chat

import "sync"

// Room is the explicit subscriber set for the public room. Broadcast
// targets are resolved from this set rather than from any transport-level
// group feature, so the fan-out semantics stay independent of the
// WebSocket library.
type Room struct {
	name string
	mu   sync.RWMutex
	subs map[string]struct{} // connection IDs
}

// NewRoom creates an empty room with the given name.
func NewRoom(name string) *Room {
	return &Room{
		name: name,
		subs: make(map[string]struct{}),
	}
}

// Name returns the room's name.
func (r *Room) Name() string {
	return r.name
}

// Join subscribes a connection to the room. Joining twice is a no-op.
func (r *Room) Join(connID string) {
	r.mu.Lock()
	r.subs[connID] = struct{}{}
	r.mu.Unlock()
}

// Leave unsubscribes a connection. Leaving an unsubscribed connection is
// a no-op.
func (r *Room) Leave(connID string) {
	r.mu.Lock()
	delete(r.subs, connID)
	r.mu.Unlock()
}

// Subscribers returns a snapshot of the subscribed connection IDs. The
// slice is safe to iterate without holding any lock.
func (r *Room) Subscribers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.subs))
	for connID := range r.subs {
		out = append(out, connID)
	}
	return out
}

// Size returns the current subscriber count.
func (r *Room) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
