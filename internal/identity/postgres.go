package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresDirectory looks up identities in the users table maintained by
// the registration service.
type PostgresDirectory struct {
	db *sql.DB
}

// NewPostgresDirectory creates a directory backed by the given database
// handle.
func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

// FindByID returns the identity with the given id, or ErrNotFound.
func (d *PostgresDirectory) FindByID(ctx context.Context, id int64) (*Identity, error) {
	var ident Identity
	err := d.db.QueryRowContext(ctx,
		`SELECT id, username FROM users WHERE id = $1`, id,
	).Scan(&ident.ID, &ident.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("identity: find by id %d: %w", id, err)
	}
	return &ident, nil
}

// FindByUsername returns the identity with the given display name, or
// ErrNotFound.
func (d *PostgresDirectory) FindByUsername(ctx context.Context, username string) (*Identity, error) {
	var ident Identity
	err := d.db.QueryRowContext(ctx,
		`SELECT id, username FROM users WHERE username = $1`, username,
	).Scan(&ident.ID, &ident.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("identity: find by username %q: %w", username, err)
	}
	return &ident, nil
}
