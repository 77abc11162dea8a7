package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Subscriber is an opaque live connection handle. Send must be bounded:
// return an error rather than wait on a stalled peer.
type Subscriber interface {
	Send(data []byte) error
	Close() error
}

// Hub is the subscriber registry plus fan-out engine. Its mutex guards only
// membership; delivery happens against a snapshot of the registry with the
// lock released, so one slow or dead subscriber never stalls the rest or a
// submitting request. A failed delivery removes and closes the subscriber.
type Hub struct {
	logger *slog.Logger

	mu   sync.Mutex
	subs map[Subscriber]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		subs:   make(map[Subscriber]struct{}),
	}
}

// Register adds a subscriber to the live set.
func (h *Hub) Register(sub Subscriber) {
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("subscriber registered", "subscribers", h.Len())
}

// Unregister removes a subscriber. It is idempotent: removing an absent or
// already-removed handle is a no-op, since a disconnect can race with a
// failed-delivery removal.
func (h *Hub) Unregister(sub Subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

// Len reports the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Broadcast serializes the event once and delivers it to every subscriber
// registered at snapshot time. Dead subscribers are pruned in a second
// brief-locked pass; their failures never surface to the caller.
func (h *Hub) Broadcast(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("broadcast marshal failed", "error", err)
		return
	}

	h.mu.Lock()
	snapshot := make([]Subscriber, 0, len(h.subs))
	for sub := range h.subs {
		snapshot = append(snapshot, sub)
	}
	h.mu.Unlock()

	var dead []Subscriber
	for _, sub := range snapshot {
		if err := sub.Send(data); err != nil {
			dead = append(dead, sub)
		}
	}

	if len(dead) == 0 {
		return
	}
	h.mu.Lock()
	for _, sub := range dead {
		delete(h.subs, sub)
	}
	h.mu.Unlock()
	for _, sub := range dead {
		_ = sub.Close()
	}
	h.logger.Debug("pruned dead subscribers", "count", len(dead))
}
