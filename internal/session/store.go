// Package session mirrors live WebSocket connections into Redis so that
// operators can inspect who is connected to which server instance. The
// in-memory presence registry remains the source of truth for routing;
// these records are operational metadata only.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TVLlam/CHAT-AES/internal/identity"
)

const (
	// ConnPrefix is the Redis key prefix for all connection hashes.
	ConnPrefix = "conn:"

	// ConnTTL is the time-to-live for connection keys. The heartbeat
	// refreshes it, so a key only expires when the server died without
	// cleaning up.
	ConnTTL = 1 * time.Hour
)

// Record is a connection's session state as stored in Redis.
type Record struct {
	ConnID      string `redis:"conn_id"`
	IdentityID  int64  `redis:"identity_id"`
	Username    string `redis:"username"`
	Server      string `redis:"server"` // which server instance owns the connection
	ConnectedAt int64  `redis:"connected_at"`
}

// Store manages connection session records in Redis.
type Store struct {
	client     *redis.Client
	serverName string
}

// NewStore creates a session store connected to Redis and verifies the
// connection.
func NewStore(redisAddr string, serverName string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("session: redis connection failed: %w", err)
	}

	return &Store{client: client, serverName: serverName}, nil
}

// Create stores a new connection record with a TTL.
func (s *Store) Create(ctx context.Context, connID string, ident identity.Identity) error {
	key := ConnPrefix + connID

	record := map[string]interface{}{
		"conn_id":      connID,
		"identity_id":  ident.ID,
		"username":     ident.Username,
		"server":       s.serverName,
		"connected_at": time.Now().Unix(),
	}

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, record)
	pipe.Expire(ctx, key, ConnTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Get retrieves a connection record. Returns nil if not found.
func (s *Store) Get(ctx context.Context, connID string) (*Record, error) {
	key := ConnPrefix + connID
	var record Record
	if err := s.client.HGetAll(ctx, key).Scan(&record); err != nil {
		return nil, err
	}
	if record.ConnID == "" {
		return nil, nil // not found
	}
	return &record, nil
}

// RefreshTTL extends a connection record's TTL. Called by the heartbeat.
func (s *Store) RefreshTTL(ctx context.Context, connID string) error {
	return s.client.Expire(ctx, ConnPrefix+connID, ConnTTL).Err()
}

// Delete removes a connection record.
func (s *Store) Delete(ctx context.Context, connID string) error {
	return s.client.Del(ctx, ConnPrefix+connID).Err()
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client for use by other packages
// (the rate limiter shares the connection pool).
func (s *Store) Client() *redis.Client {
	return s.client
}
