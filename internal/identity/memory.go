package identity

import (
	"context"
	"strings"
	"sync"
)

// MemoryDirectory is an in-memory Directory used when no database is
// configured (local development) and by tests.
type MemoryDirectory struct {
	mu     sync.RWMutex
	byID   map[int64]Identity
	byName map[string]Identity
	nextID int64
}

// NewMemoryDirectory creates an empty MemoryDirectory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byID:   make(map[int64]Identity),
		byName: make(map[string]Identity),
		nextID: 1,
	}
}

// Add registers a username and returns the stored identity. Adding an
// existing username returns the existing identity unchanged.
func (d *MemoryDirectory) Add(username string) Identity {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := strings.ToLower(username)
	if ident, ok := d.byName[key]; ok {
		return ident
	}

	ident := Identity{ID: d.nextID, Username: username}
	d.nextID++
	d.byID[ident.ID] = ident
	d.byName[key] = ident
	return ident
}

func (d *MemoryDirectory) FindByID(ctx context.Context, id int64) (*Identity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ident, ok := d.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ident, nil
}

func (d *MemoryDirectory) FindByUsername(ctx context.Context, username string) (*Identity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ident, ok := d.byName[strings.ToLower(username)]
	if !ok {
		return nil, ErrNotFound
	}
	return &ident, nil
}
