// Package chat implements the message model, the durable message store,
// the routing engine that fans accepted messages out to live connections,
// and the connection lifecycle controller that ties presence, history
// replay, and sessions together.
package chat

import "time"

// DefaultRoom is the single public room every authenticated connection is
// implicitly a member of.
const DefaultRoom = "general"

// Message is one persisted chat message. Exactly one of Room and
// RecipientID is set: Room for public messages, RecipientID for private
// ones. Messages are append-only; once persisted they are never updated
// or deleted.
type Message struct {
	ID            int64
	SenderID      int64
	SenderName    string
	Content       string
	CreatedAt     time.Time
	Room          *string
	RecipientID   *int64
	RecipientName string // resolved display name, empty for public messages
}

// IsPrivate reports whether the message targets a single recipient.
func (m *Message) IsPrivate() bool {
	return m.RecipientID != nil
}

// Kind returns the wire visibility discriminator, "public" or "private".
func (m *Message) Kind() string {
	if m.IsPrivate() {
		return "private"
	}
	return "public"
}
