// Package presence tracks which authenticated identity owns which live
// WebSocket connections. It is the single source of truth for "who is
// online" and supports multiple simultaneous connections per identity
// (multi-tab, multi-device).
package presence

import "sync"

// Registry is a goroutine-safe bidirectional index between identities and
// their live connection IDs. A single mutex guards both maps so that the
// forward index (identity -> connections) and the reverse index
// (connection -> identity) can never be observed out of sync.
type Registry struct {
	mu       sync.RWMutex
	byUser   map[int64][]string // identity id -> ordered connection IDs
	byConnID map[string]int64   // connection ID -> identity id
}

// NewRegistry creates an empty Registry ready for use.
func NewRegistry() *Registry {
	return &Registry{
		byUser:   make(map[int64][]string),
		byConnID: make(map[string]int64),
	}
}

// Register adds a connection to the identity's set, creating the set if
// this is the identity's first live connection. Registering the same
// connection twice is a no-op. Returns true if this was the identity's
// first connection (the identity just came online).
func (r *Registry) Register(identityID int64, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.byConnID[connID]; dup {
		return false
	}

	first := len(r.byUser[identityID]) == 0
	r.byUser[identityID] = append(r.byUser[identityID], connID)
	r.byConnID[connID] = identityID
	return first
}

// Unregister removes a connection from whichever identity owns it. If the
// identity's set becomes empty the identity entry is deleted entirely, so
// no empty sets ever persist. The second return value reports whether the
// connection was registered at all; false means the disconnect raced
// ahead of registration, which is benign. The third return value is true
// when this was the identity's last connection (the identity went offline).
func (r *Registry) Unregister(connID string) (identityID int64, found bool, last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identityID, found = r.byConnID[connID]
	if !found {
		return 0, false, false
	}
	delete(r.byConnID, connID)

	conns := r.byUser[identityID]
	for i, id := range conns {
		if id == connID {
			conns = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(conns) == 0 {
		delete(r.byUser, identityID)
		return identityID, true, true
	}
	r.byUser[identityID] = conns
	return identityID, true, false
}

// ConnectionsOf returns a snapshot of the identity's live connection IDs
// in registration order. The slice is empty (never nil) when the identity
// is offline and is safe for the caller to retain.
func (r *Registry) ConnectionsOf(identityID int64) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.byUser[identityID]
	out := make([]string, len(conns))
	copy(out, conns)
	return out
}

// IsOnline reports whether the identity has at least one live connection.
func (r *Registry) IsOnline(identityID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[identityID]) > 0
}

// IdentityOf returns the identity owning the given connection.
func (r *Registry) IdentityOf(connID string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byConnID[connID]
	return id, ok
}

// OnlineCount returns the number of identities with at least one live
// connection. Used by the metrics layer.
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

// ConnectionCount returns the total number of registered connections.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConnID)
}
