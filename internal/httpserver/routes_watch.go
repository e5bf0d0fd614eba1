// internal/httpserver/routes_watch.go
//
// WebSocket spectating. GET /game/{id}/watch upgrades the connection and
// streams board snapshots: one frame immediately, then one per state change.
// Watchers are read-only; inbound frames are ignored.

package httpserver

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser clients
		}
		allowed := os.Getenv("CLIENT_ORIGIN")
		if allowed == "" {
			allowed = "http://localhost:5173"
		}
		return origin == allowed
	},
}

// handleWatch attaches a spectator to a live game.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, err := s.store.Get(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("watch upgrade")
		return
	}
	c := s.hub.Subscribe(g.ID, conn)

	// First frame: the current board, so watchers render without waiting
	// for the next move.
	unlock := s.lockGame(g.ID)
	snap := g.Snapshot()
	unlock()
	c.Send(snap)
}
