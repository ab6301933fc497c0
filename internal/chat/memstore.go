package chat

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used when the server runs without a
// database (local development) and by tests. It preserves the Append and
// QueryVisibleTo contracts but loses everything on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	messages []Message
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Append stores a copy of the message and assigns it the next id.
func (s *MemoryStore) Append(ctx context.Context, m *Message) (int64, error) {
	if (m.Room == nil) == (m.RecipientID == nil) {
		return 0, ErrInvalidVisibility
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.nextID
	s.nextID++
	s.messages = append(s.messages, *m)
	return m.ID, nil
}

// QueryVisibleTo returns the replay set for the identity in append order,
// which matches ascending creation time since the log is append-only.
func (s *MemoryStore) QueryVisibleTo(ctx context.Context, identityID int64) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Message
	for _, m := range s.messages {
		switch {
		case m.Room != nil && *m.Room == DefaultRoom:
			out = append(out, m)
		case m.SenderID == identityID:
			out = append(out, m)
		case m.RecipientID != nil && *m.RecipientID == identityID:
			out = append(out, m)
		}
	}
	return out, nil
}

// Len returns the number of stored messages.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
