// Package identity exposes the read side of the user directory. Account
// creation and credential storage belong to the registration service; the
// chat core only ever resolves identities that already exist.
package identity

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no identity matches the lookup key.
var ErrNotFound = errors.New("identity: not found")

// Identity is an authenticated user, referenced by stable id and display
// name. Immutable once created.
type Identity struct {
	ID       int64
	Username string
}

// Directory resolves identities by id or display name.
type Directory interface {
	FindByID(ctx context.Context, id int64) (*Identity, error)
	FindByUsername(ctx context.Context, username string) (*Identity, error)
}
