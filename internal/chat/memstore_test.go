package chat

import (
	"context"
	"errors"
	"testing"
)

func TestAppendRejectsBothVisibilitiesSet(t *testing.T) {
	s := NewMemoryStore()
	room := DefaultRoom
	recipient := int64(2)

	_, err := s.Append(context.Background(), &Message{
		SenderID: 1, SenderName: "alice", Content: "x",
		Room: &room, RecipientID: &recipient,
	})
	if !errors.Is(err, ErrInvalidVisibility) {
		t.Errorf("expected ErrInvalidVisibility, got %v", err)
	}
}

func TestAppendRejectsNeitherVisibilitySet(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Append(context.Background(), &Message{
		SenderID: 1, SenderName: "alice", Content: "x",
	})
	if !errors.Is(err, ErrInvalidVisibility) {
		t.Errorf("expected ErrInvalidVisibility, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("invalid message must not be stored, got %d", s.Len())
	}
}

func TestAppendAssignsMonotonicIDs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	room := DefaultRoom

	var prev int64
	for i := 0; i < 5; i++ {
		id, err := s.Append(ctx, &Message{SenderID: 1, SenderName: "a", Content: "m", Room: &room})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if id <= prev {
			t.Fatalf("expected monotonically increasing ids, got %d after %d", id, prev)
		}
		prev = id
	}
}

func TestQueryVisibleToScoping(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	room := DefaultRoom
	two := int64(2)
	three := int64(3)

	seed := []Message{
		{SenderID: 1, SenderName: "alice", Content: "public", Room: &room},
		{SenderID: 1, SenderName: "alice", Content: "to bob", RecipientID: &two, RecipientName: "bob"},
		{SenderID: 2, SenderName: "bob", Content: "to carol", RecipientID: &three, RecipientName: "carol"},
	}
	for i := range seed {
		if _, err := s.Append(ctx, &seed[i]); err != nil {
			t.Fatalf("seed append failed: %v", err)
		}
	}

	msgs, err := s.QueryVisibleTo(ctx, 2)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	// Bob sees the public message, the DM addressed to him, and the DM he
	// sent, three in total.
	if len(msgs) != 3 {
		t.Fatalf("expected 3 visible messages for bob, got %d", len(msgs))
	}

	msgs, err = s.QueryVisibleTo(ctx, 99)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "public" {
		t.Errorf("stranger should only see public traffic, got %+v", msgs)
	}
}
