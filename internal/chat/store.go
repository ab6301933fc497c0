package chat

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store is the durable append-only message log. Append must be atomic per
// call; QueryVisibleTo returns the replay set for a reconnecting identity.
// There are no update or delete operations.
type Store interface {
	// Append persists a fully-formed message and returns its id. It
	// fails with ErrInvalidVisibility unless exactly one of Room and
	// RecipientID is set.
	Append(ctx context.Context, m *Message) (int64, error)

	// QueryVisibleTo returns every public message in the fixed room plus
	// every private message where the identity is sender or recipient,
	// ascending by creation time.
	QueryVisibleTo(ctx context.Context, identityID int64) ([]Message, error)
}

// PostgresStore is the production Store backed by the messages table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a message store on the given database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append inserts one message row. The exactly-one-of invariant is checked
// here in addition to the table CHECK constraint so that a misconfigured
// schema cannot silently admit malformed rows.
func (s *PostgresStore) Append(ctx context.Context, m *Message) (int64, error) {
	if (m.Room == nil) == (m.RecipientID == nil) {
		return 0, ErrInvalidVisibility
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO messages (sender_id, sender_username, content, created_at, room, recipient_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		m.SenderID, m.SenderName, m.Content, m.CreatedAt, m.Room, m.RecipientID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("chat: append message: %w", err)
	}
	m.ID = id
	return id, nil
}

// QueryVisibleTo loads the replay set for an identity: all messages in the
// fixed public room plus private traffic the identity took part in. The
// recipient display name is resolved in the same query so history entries
// can be rendered without further lookups.
func (s *PostgresStore) QueryVisibleTo(ctx context.Context, identityID int64) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, m.sender_id, m.sender_username, m.content, m.created_at,
		        m.room, m.recipient_id, COALESCE(u.username, '')
		 FROM messages m
		 LEFT JOIN users u ON u.id = m.recipient_id
		 WHERE m.room = $1
		    OR m.sender_id = $2
		    OR m.recipient_id = $2
		 ORDER BY m.created_at ASC, m.id ASC`,
		DefaultRoom, identityID,
	)
	if err != nil {
		return nil, fmt.Errorf("chat: query history for identity %d: %w", identityID, err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderName, &m.Content,
			&m.CreatedAt, &m.Room, &m.RecipientID, &m.RecipientName); err != nil {
			return nil, fmt.Errorf("chat: scan history row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chat: iterate history rows: %w", err)
	}
	return messages, nil
}
