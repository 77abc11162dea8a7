package broadcast

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
)

type fakeSubscriber struct {
	mu       sync.Mutex
	received [][]byte
	fail     bool
	closed   bool
}

func (s *fakeSubscriber) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("connection reset")
	}
	s.received = append(s.received, data)
	return nil
}

func (s *fakeSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSubscriber) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

type payload struct {
	Type string `json:"type"`
}

func TestBroadcastDeliversToAllOnce(t *testing.T) {
	hub := NewHub(slog.Default())
	a, b := &fakeSubscriber{}, &fakeSubscriber{}
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(payload{Type: "leaderboard_update"})

	if a.count() != 1 || b.count() != 1 {
		t.Fatalf("expected one delivery each, got a=%d b=%d", a.count(), b.count())
	}
}

func TestBroadcastPrunesFailedSubscriber(t *testing.T) {
	hub := NewHub(slog.Default())
	healthy, dead := &fakeSubscriber{}, &fakeSubscriber{fail: true}
	hub.Register(healthy)
	hub.Register(dead)

	hub.Broadcast(payload{Type: "question_start"})

	if healthy.count() != 1 {
		t.Fatalf("failing subscriber must not block delivery to the rest, got %d", healthy.count())
	}
	if hub.Len() != 1 {
		t.Fatalf("expected dead subscriber pruned, registry size %d", hub.Len())
	}
	if !dead.closed {
		t.Fatalf("expected dead subscriber closed after failed delivery")
	}

	// A later broadcast must not revisit the pruned handle.
	hub.Broadcast(payload{Type: "question_start"})
	if healthy.count() != 2 {
		t.Fatalf("expected second delivery, got %d", healthy.count())
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(slog.Default())
	sub := &fakeSubscriber{}
	hub.Register(sub)

	hub.Unregister(sub)
	hub.Unregister(sub)
	hub.Unregister(&fakeSubscriber{}) // never registered

	if hub.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", hub.Len())
	}
}

func TestBroadcastSkipsRemovedSubscriber(t *testing.T) {
	hub := NewHub(slog.Default())
	sub := &fakeSubscriber{}
	hub.Register(sub)
	hub.Unregister(sub)

	hub.Broadcast(payload{Type: "leaderboard_update"})

	if sub.count() != 0 {
		t.Fatalf("removed subscriber must receive nothing, got %d deliveries", sub.count())
	}
}

func TestRegisterDuringBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Register(&fakeSubscriber{})
		}()
		go func() {
			defer wg.Done()
			hub.Broadcast(payload{Type: "leaderboard_update"})
		}()
	}
	wg.Wait()

	if hub.Len() != 16 {
		t.Fatalf("expected 16 subscribers, got %d", hub.Len())
	}
}
