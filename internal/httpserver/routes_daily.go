// internal/httpserver/routes_daily.go
//
// Daily deal endpoints.
// Responsibilities:
//   - POST /daily/new: start (or resume) today's deal for the caller. Every
//     player gets the same board for a given date, derived from an HMAC seed.
//   - POST /daily/flip: apply a selection to the caller's daily board; record
//     the result once the board is cleared.
//   - GET /daily/leaderboard: fewest-turns ranking for a date.
//
// Sessions are keyed by user id (or anonymous cookie id) so a refresh resumes
// the same board. One result per user per date; replays after a recorded win
// are refused.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/pairdown/go-server/internal/daily"
	"github.com/pairdown/go-server/internal/game"
	"github.com/pairdown/go-server/internal/metrics"
)

// dailySession tracks which board a player is on and for which date.
type dailySession struct {
	date   string
	gameID string
}

// dailyServer carries daily-mode state and its persistence handle.
type dailyServer struct {
	srv   *Server
	store *daily.Store
	salt  string
	pairs int

	mu       sync.Mutex
	sessions map[string]*dailySession // uid -> session
}

// mountDaily registers the daily routes on r (already wrapped with optional auth).
func (s *Server) mountDaily(r chi.Router) {
	pairs := game.DefaultPairs
	if v := getEnv("DAILY_PAIRS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			pairs = n
		}
	}
	ds := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     getEnv("DAILY_SALT", "dev_daily_salt"),
		pairs:    pairs,
		sessions: make(map[string]*dailySession),
	}
	r.Post("/daily/new", ds.handleDailyNew)
	r.Post("/daily/flip", ds.handleDailyFlip)
	r.Get("/daily/leaderboard", ds.handleDailyLeaderboard)
}

// uid resolves the caller identity: account id when logged in, anon cookie otherwise.
func (ds *dailyServer) uid(w http.ResponseWriter, r *http.Request) string {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID
	}
	return ds.srv.ensureAnonID(w, r)
}

type dailyNewRes struct {
	Date   string         `json:"date"`
	Played bool           `json:"played,omitempty"`
	GameID string         `json:"gameId,omitempty"`
	State  *game.Snapshot `json:"state,omitempty"`
}

// handleDailyNew starts or resumes today's board for the caller.
func (ds *dailyServer) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	uid := ds.uid(w, r)
	now := time.Now().UTC()
	date := daily.DateKey(now)

	played, err := ds.store.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		log.Warn().Err(err).Msg("daily played lookup")
	}
	if played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: true})
		return
	}

	// Resume an in-flight board; drop yesterday's leftover if the date rolled.
	ds.mu.Lock()
	sess := ds.sessions[uid]
	if sess != nil && sess.date != date {
		ds.srv.forgetGame(r.Context(), sess.gameID)
		delete(ds.sessions, uid)
		sess = nil
	}
	ds.mu.Unlock()

	if sess != nil {
		if g, err := ds.srv.store.Get(r.Context(), sess.gameID); err == nil {
			unlock := ds.srv.lockGame(g.ID)
			snap := g.Snapshot()
			unlock()
			_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, GameID: g.ID, State: &snap})
			return
		}
		// Session points at an evicted game; deal again.
	}

	g, err := game.New(ds.pairs, nil, daily.Seed(now, ds.salt))
	if err != nil {
		log.Error().Err(err).Int("pairs", ds.pairs).Msg("daily deal")
		http.Error(w, `{"error":"deal_failed"}`, http.StatusInternalServerError)
		return
	}
	if err := ds.srv.store.Save(r.Context(), g); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	metrics.GamesStarted.WithLabelValues("daily").Inc()

	ds.mu.Lock()
	ds.sessions[uid] = &dailySession{date: date, gameID: g.ID}
	ds.mu.Unlock()

	snap := g.Snapshot()
	_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, GameID: g.ID, State: &snap})
}

type dailyFlipReq struct {
	CardID string `json:"cardId"`
}

// handleDailyFlip applies a selection to the caller's board for today.
// A cleared board records the caller's result (once; later flips are no-ops).
func (ds *dailyServer) handleDailyFlip(w http.ResponseWriter, r *http.Request) {
	var req dailyFlipReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	uid := ds.uid(w, r)
	date := daily.DateKey(time.Now().UTC())

	ds.mu.Lock()
	sess := ds.sessions[uid]
	ds.mu.Unlock()
	if sess == nil || sess.date != date {
		http.Error(w, `{"error":"no_active_daily"}`, http.StatusNotFound)
		return
	}
	g, err := ds.srv.store.Get(r.Context(), sess.gameID)
	if err != nil {
		http.Error(w, `{"error":"no_active_daily"}`, http.StatusNotFound)
		return
	}

	unlock := ds.srv.lockGame(g.ID)
	defer unlock()

	outcome, err := g.Flip(req.CardID)
	if err != nil {
		http.Error(w, `{"error":"unknown_card"}`, http.StatusNotFound)
		return
	}
	metrics.CardFlips.WithLabelValues(string(outcome)).Inc()

	snap := g.Snapshot()
	ds.srv.hub.Publish(g.ID, snap)
	if err := ds.srv.store.Save(r.Context(), g); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	if snap.Won {
		metrics.GamesWon.WithLabelValues("daily").Inc()
		res := daily.Result{UserID: uid, Date: date, Pairs: snap.Pairs, Turns: snap.Turns, Score: snap.Score}
		if err := ds.store.InsertResult(r.Context(), res); err != nil {
			log.Warn().Err(err).Str("uid", uid).Msg("record daily result")
		}
	}

	_ = json.NewEncoder(w).Encode(flipRes{Outcome: outcome, State: snap})
}

// handleDailyLeaderboard returns the fewest-turns ranking for ?date (default today).
func (ds *dailyServer) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now().UTC())
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	rows, err := ds.store.Leaderboard(r.Context(), date, limit)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"date": date, "results": rows})
}
