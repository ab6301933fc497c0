package chat

import (
	"fmt"
	"sync"
	"testing"
)

func TestRoomJoinLeave(t *testing.T) {
	r := NewRoom(DefaultRoom)

	r.Join("c1")
	r.Join("c2")
	r.Join("c1") // duplicate join is a no-op

	if r.Size() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", r.Size())
	}

	r.Leave("c1")
	if r.Size() != 1 {
		t.Fatalf("expected 1 subscriber after leave, got %d", r.Size())
	}

	r.Leave("never-joined") // no-op
	if r.Size() != 1 {
		t.Errorf("leaving an unsubscribed connection changed the set")
	}
}

func TestRoomSubscribersSnapshot(t *testing.T) {
	r := NewRoom(DefaultRoom)
	r.Join("c1")

	snapshot := r.Subscribers()
	r.Join("c2")

	if len(snapshot) != 1 {
		t.Errorf("snapshot should be unaffected by later joins, got %v", snapshot)
	}
}

func TestRoomConcurrentAccess(t *testing.T) {
	r := NewRoom(DefaultRoom)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				connID := fmt.Sprintf("conn-%d-%d", n, i%10)
				r.Join(connID)
				r.Subscribers()
				if i%3 == 0 {
					r.Leave(connID)
				}
			}
		}(w)
	}
	wg.Wait()
}
