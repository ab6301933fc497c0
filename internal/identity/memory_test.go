package identity

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryDirectoryLookup(t *testing.T) {
	dir := NewMemoryDirectory()
	alice := dir.Add("alice")

	got, err := dir.FindByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("FindByID username = %q, want alice", got.Username)
	}

	got, err = dir.FindByUsername(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if got.ID != alice.ID {
		t.Errorf("FindByUsername ID = %d, want %d", got.ID, alice.ID)
	}
}

func TestMemoryDirectoryUnknown(t *testing.T) {
	dir := NewMemoryDirectory()

	if _, err := dir.FindByID(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID unknown: err = %v, want ErrNotFound", err)
	}
	if _, err := dir.FindByUsername(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByUsername unknown: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryDirectoryAddIsIdempotent(t *testing.T) {
	dir := NewMemoryDirectory()

	first := dir.Add("bob")
	second := dir.Add("bob")

	if first.ID != second.ID {
		t.Errorf("duplicate Add created a new identity: %d vs %d", first.ID, second.ID)
	}
}
