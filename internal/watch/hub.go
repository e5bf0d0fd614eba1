// internal/watch/hub.go
//
// Snapshot subscription hub: the re-render channel between GameState and a
// presentation layer. Handlers publish a fresh snapshot after every mutation
// and every watcher of that game receives it as one JSON frame.
//
// Watchers are strictly read-only: inbound frames are discarded, so a
// watch connection can observe a game but never drive it.

package watch

import (
	"encoding/json"
	"sync"

	"github.com/pairdown/go-server/internal/game"
	"github.com/pairdown/go-server/internal/metrics"
)

// Hub tracks the subscriber set per game id.
type Hub struct {
	mu   sync.RWMutex                    // guards subs
	subs map[string]map[*Client]struct{} // game id -> watchers
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Client]struct{})}
}

// Publish fans the snapshot out to every watcher of the game.
// Watchers whose send buffer is full are dropped rather than blocking the
// caller; they can reconnect and fetch the current state.
func (h *Hub) Publish(gameID string, snap game.Snapshot) {
	msg, err := json.Marshal(snap)
	if err != nil {
		return
	}

	h.mu.RLock()
	var slow []*Client
	for c := range h.subs[gameID] {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.drop(c)
	}
}

// Count returns the number of watchers for a game.
func (h *Hub) Count(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[gameID])
}

// add registers a client under its game id.
func (h *Hub) add(c *Client) {
	h.mu.Lock()
	set := h.subs[c.gameID]
	if set == nil {
		set = make(map[*Client]struct{})
		h.subs[c.gameID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
	metrics.WatchSubscribers.Inc()
}

// drop unregisters a client and closes its send channel, which ends the
// write pump. Dropping twice is safe.
func (h *Hub) drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[c.gameID]
	if set == nil {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.subs, c.gameID)
	}
	close(c.send)
	metrics.WatchSubscribers.Dec()
}
