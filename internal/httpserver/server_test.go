package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/pairdown/go-server/internal/db"
	"github.com/pairdown/go-server/internal/game"
	"github.com/pairdown/go-server/internal/store"
	"github.com/pairdown/go-server/internal/watch"
)

// newTestServer wires a Server against a throwaway migrated database.
func newTestServer(t *testing.T) (*Server, *sql.DB) {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("db.Migrate: %v", err)
	}
	return New(store.NewMemoryStore(), conn, watch.NewHub()), conn
}

// doJSON runs one request through the router with an optional JSON body and cookies.
func doJSON(t *testing.T, s *Server, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rd)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

// symbolPairs peeks at the live game to pair card ids by symbol.
func symbolPairs(t *testing.T, s *Server, gameID string) [][2]string {
	t.Helper()
	g, err := s.store.Get(context.Background(), gameID)
	if err != nil {
		t.Fatalf("store.Get(%s): %v", gameID, err)
	}
	bySym := map[string][]string{}
	for _, c := range g.Cards {
		bySym[c.Symbol] = append(bySym[c.Symbol], c.ID)
	}
	var out [][2]string
	for sym, ids := range bySym {
		if len(ids) != 2 {
			t.Fatalf("symbol %q has %d cards", sym, len(ids))
		}
		out = append(out, [2]string{ids[0], ids[1]})
	}
	return out
}

// winGame clears the whole board through POST /game/flip.
func winGame(t *testing.T, s *Server, gameID string, cookies []*http.Cookie) flipRes {
	t.Helper()
	var last flipRes
	for _, p := range symbolPairs(t, s, gameID) {
		for _, cardID := range p {
			rec := doJSON(t, s, http.MethodPost, "/game/flip", flipReq{GameID: gameID, CardID: cardID}, cookies)
			if rec.Code != http.StatusOK {
				t.Fatalf("flip %s: status %d body %s", cardID, rec.Code, rec.Body.String())
			}
			decodeInto(t, rec, &last)
		}
		if last.Outcome != game.OutcomeMatched {
			t.Fatalf("pair flip ended with %q, want %q", last.Outcome, game.OutcomeMatched)
		}
	}
	if !last.State.Won {
		t.Fatal("board cleared but state not won")
	}
	return last
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != `{"ok":true}` {
		t.Fatalf("body = %s", got)
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/no-such-route", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	decodeInto(t, rec, &body)
	if body["error"] != "not_found" {
		t.Fatalf("body = %v", body)
	}
}

func TestNewGameDefaults(t *testing.T) {
	s, conn := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/game/new", map[string]any{}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	var res newGameRes
	decodeInto(t, rec, &res)
	if res.GameID == "" {
		t.Fatal("empty gameId")
	}
	if res.State.Pairs != game.DefaultPairs {
		t.Fatalf("pairs = %d, want %d", res.State.Pairs, game.DefaultPairs)
	}
	if len(res.State.Cards) != 2*game.DefaultPairs {
		t.Fatalf("cards = %d, want %d", len(res.State.Cards), 2*game.DefaultPairs)
	}
	for _, cv := range res.State.Cards {
		if cv.Symbol != "" {
			t.Fatalf("fresh deal leaks symbol on card %s", cv.ID)
		}
	}

	// An anonymous cookie was set and a metadata row recorded.
	var anon string
	for _, c := range rec.Result().Cookies() {
		if c.Name == anonCookieName {
			anon = c.Value
		}
	}
	if anon == "" {
		t.Fatal("no anonymous cookie set")
	}
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM games WHERE id=? AND anonymous_id=?`, res.GameID, anon).Scan(&n); err != nil || n != 1 {
		t.Fatalf("game metadata rows = %d (err %v), want 1", n, err)
	}
}

func TestNewGameValidation(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/game/new", map[string]any{"pairs": 5}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("odd pairs: status = %d, want 400", rec.Code)
	}
	rec = doJSON(t, s, http.MethodPost, "/game/new", map[string]any{"theme": "submarines"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown theme: status = %d, want 400", rec.Code)
	}
	rec = doJSON(t, s, http.MethodPost, "/game/new", map[string]any{"theme": "fruits", "pairs": 10}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fruits x10: status = %d body %s", rec.Code, rec.Body.String())
	}
}

func TestFlipFlow(t *testing.T) {
	s, conn := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/game/new", newGameReq{Pairs: 2, Seed: 7}, nil)
	var res newGameRes
	decodeInto(t, rec, &res)
	cookies := rec.Result().Cookies()

	pairs := symbolPairs(t, s, res.GameID)

	// First selection of a pair: revealed.
	rec = doJSON(t, s, http.MethodPost, "/game/flip", flipReq{GameID: res.GameID, CardID: pairs[0][0]}, cookies)
	var fr flipRes
	decodeInto(t, rec, &fr)
	if fr.Outcome != game.OutcomeRevealed {
		t.Fatalf("outcome = %q, want %q", fr.Outcome, game.OutcomeRevealed)
	}
	if fr.State.Pending != pairs[0][0] {
		t.Fatalf("pending = %q, want %q", fr.State.Pending, pairs[0][0])
	}

	// Its partner: matched, scored.
	rec = doJSON(t, s, http.MethodPost, "/game/flip", flipReq{GameID: res.GameID, CardID: pairs[0][1]}, cookies)
	decodeInto(t, rec, &fr)
	if fr.Outcome != game.OutcomeMatched {
		t.Fatalf("outcome = %q, want %q", fr.Outcome, game.OutcomeMatched)
	}
	if fr.State.Score != game.MatchReward {
		t.Fatalf("score = %d, want %d", fr.State.Score, game.MatchReward)
	}

	// Remaining pair: board complete, row finalized.
	rec = doJSON(t, s, http.MethodPost, "/game/flip", flipReq{GameID: res.GameID, CardID: pairs[1][0]}, cookies)
	rec = doJSON(t, s, http.MethodPost, "/game/flip", flipReq{GameID: res.GameID, CardID: pairs[1][1]}, cookies)
	decodeInto(t, rec, &fr)
	if !fr.State.Won {
		t.Fatal("state not won after clearing the board")
	}

	var status string
	var turns int
	if err := conn.QueryRow(`SELECT status, turns FROM games WHERE id=?`, res.GameID).Scan(&status, &turns); err != nil {
		t.Fatalf("query game row: %v", err)
	}
	if status != "won" || turns != 2 {
		t.Fatalf("game row = (%s, %d), want (won, 2)", status, turns)
	}
}

func TestFlipErrors(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/game/flip", flipReq{GameID: "nope", CardID: "x"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown game: status = %d, want 404", rec.Code)
	}

	nrec := doJSON(t, s, http.MethodPost, "/game/new", newGameReq{Pairs: 2, Seed: 1}, nil)
	var res newGameRes
	decodeInto(t, nrec, &res)

	rec = doJSON(t, s, http.MethodPost, "/game/flip", flipReq{GameID: res.GameID, CardID: "not-a-card"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown card: status = %d, want 404", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/game/flip", bytes.NewReader([]byte("{bad")))
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad json: status = %d, want 400", w.Code)
	}
}

func TestResetEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/game/new", newGameReq{Pairs: 2, Seed: 9}, nil)
	var res newGameRes
	decodeInto(t, rec, &res)
	cookies := rec.Result().Cookies()

	pairs := symbolPairs(t, s, res.GameID)
	doJSON(t, s, http.MethodPost, "/game/flip", flipReq{GameID: res.GameID, CardID: pairs[0][0]}, cookies)
	doJSON(t, s, http.MethodPost, "/game/flip", flipReq{GameID: res.GameID, CardID: pairs[0][1]}, cookies)

	rec = doJSON(t, s, http.MethodPost, "/game/reset", resetReq{GameID: res.GameID}, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	var snap game.Snapshot
	decodeInto(t, rec, &snap)
	if snap.Score != 0 || snap.Turns != 0 || snap.Pending != "" {
		t.Fatalf("reset kept progress: %+v", snap)
	}
	if len(snap.Cards) != 4 {
		t.Fatalf("cards = %d, want 4", len(snap.Cards))
	}
	for _, cv := range snap.Cards {
		if cv.FaceUp || cv.Matched || cv.Symbol != "" {
			t.Fatalf("reset deck has revealed card %+v", cv)
		}
	}

	rec = doJSON(t, s, http.MethodPost, "/game/reset", resetReq{GameID: "nope"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown game: status = %d, want 404", rec.Code)
	}
}

func TestPairsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/game/new", newGameReq{Seed: 2}, nil)
	var res newGameRes
	decodeInto(t, rec, &res)

	rec = doJSON(t, s, http.MethodPost, "/game/pairs", pairsReq{GameID: res.GameID, Pairs: 4}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	var snap game.Snapshot
	decodeInto(t, rec, &snap)
	if snap.Pairs != 4 || len(snap.Cards) != 8 {
		t.Fatalf("resized board = %d pairs / %d cards, want 4 / 8", snap.Pairs, len(snap.Cards))
	}

	// Invalid count: rejected, board untouched.
	rec = doJSON(t, s, http.MethodPost, "/game/pairs", pairsReq{GameID: res.GameID, Pairs: 7}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("odd count: status = %d, want 400", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/game/"+res.GameID, nil, nil)
	decodeInto(t, rec, &snap)
	if snap.Pairs != 4 {
		t.Fatalf("pairs after rejection = %d, want 4", snap.Pairs)
	}
}

func TestGetGame(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/game/new", newGameReq{Pairs: 2, Seed: 5}, nil)
	var res newGameRes
	decodeInto(t, rec, &res)

	rec = doJSON(t, s, http.MethodGet, "/game/"+res.GameID, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap game.Snapshot
	decodeInto(t, rec, &snap)
	if snap.GameID != res.GameID {
		t.Fatalf("gameId = %q, want %q", snap.GameID, res.GameID)
	}

	rec = doJSON(t, s, http.MethodGet, "/game/nope", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown game: status = %d, want 404", rec.Code)
	}
}

func TestSignupLoginMe(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/auth/signup", map[string]string{"username": "player_one", "password": "supersecret"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("signup: status = %d body %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()

	rec = doJSON(t, s, http.MethodGet, "/auth/me", nil, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status = %d body %s", rec.Code, rec.Body.String())
	}
	var me authUser
	decodeInto(t, rec, &me)
	if me.Username != "player_one" {
		t.Fatalf("username = %q", me.Username)
	}

	// Wrong password rejected; right one accepted.
	rec = doJSON(t, s, http.MethodPost, "/auth/login", map[string]string{"username": "player_one", "password": "wrong"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: status = %d, want 401", rec.Code)
	}
	rec = doJSON(t, s, http.MethodPost, "/auth/login", map[string]string{"username": "player_one", "password": "supersecret"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d body %s", rec.Code, rec.Body.String())
	}
}

func TestSignupValidation(t *testing.T) {
	s, _ := newTestServer(t)

	cases := []struct {
		name string
		user string
		pass string
		want int
	}{
		{"short username", "ab", "supersecret", http.StatusBadRequest},
		{"bad characters", "no spaces!", "supersecret", http.StatusBadRequest},
		{"short password", "player_two", "short", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/auth/signup", map[string]string{"username": tc.user, "password": tc.pass}, nil)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}

	doJSON(t, s, http.MethodPost, "/auth/signup", map[string]string{"username": "taken_name", "password": "supersecret"}, nil)
	rec := doJSON(t, s, http.MethodPost, "/auth/signup", map[string]string{"username": "Taken_Name", "password": "supersecret"}, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate (case-insensitive): status = %d, want 409", rec.Code)
	}
}

func TestAuthGates(t *testing.T) {
	s, _ := newTestServer(t)
	for _, path := range []string{"/auth/me", "/stats/me", "/games/mine"} {
		rec := doJSON(t, s, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s without auth: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestStatsAndHistoryAfterWin(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/auth/signup", map[string]string{"username": "winner", "password": "supersecret"}, nil)
	cookies := rec.Result().Cookies()

	rec = doJSON(t, s, http.MethodPost, "/game/new", newGameReq{Pairs: 2, Seed: 3}, cookies)
	var res newGameRes
	decodeInto(t, rec, &res)
	winGame(t, s, res.GameID, cookies)

	rec = doJSON(t, s, http.MethodGet, "/stats/me", nil, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: status = %d body %s", rec.Code, rec.Body.String())
	}
	var stats struct {
		GamesPlayed int   `json:"gamesPlayed"`
		GamesWon    int   `json:"gamesWon"`
		BestTurns   int64 `json:"bestTurns"`
	}
	decodeInto(t, rec, &stats)
	if stats.GamesPlayed != 1 || stats.GamesWon != 1 {
		t.Fatalf("stats = %+v, want 1 played / 1 won", stats)
	}
	if stats.BestTurns != 2 {
		t.Fatalf("bestTurns = %d, want 2", stats.BestTurns)
	}

	rec = doJSON(t, s, http.MethodGet, "/games/mine", nil, cookies)
	var mine []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Turns  int    `json:"turns"`
		Score  int    `json:"score"`
	}
	decodeInto(t, rec, &mine)
	if len(mine) != 1 {
		t.Fatalf("history rows = %d, want 1", len(mine))
	}
	if mine[0].ID != res.GameID || mine[0].Status != "won" || mine[0].Score != 2*game.MatchReward {
		t.Fatalf("history row = %+v", mine[0])
	}
}

func TestAnonGamesClaimedOnSignup(t *testing.T) {
	s, conn := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/game/new", newGameReq{Pairs: 2, Seed: 4}, nil)
	var res newGameRes
	decodeInto(t, rec, &res)
	anonCookies := rec.Result().Cookies()

	rec = doJSON(t, s, http.MethodPost, "/auth/signup", map[string]string{"username": "late_signup", "password": "supersecret"}, anonCookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("signup: status = %d body %s", rec.Code, rec.Body.String())
	}
	var u struct {
		ID string `json:"id"`
	}
	decodeInto(t, rec, &u)

	var userID sql.NullString
	var anonID sql.NullString
	if err := conn.QueryRow(`SELECT user_id, anonymous_id FROM games WHERE id=?`, res.GameID).Scan(&userID, &anonID); err != nil {
		t.Fatalf("query game row: %v", err)
	}
	if !userID.Valid || userID.String != u.ID {
		t.Fatalf("game not claimed: user_id = %v", userID)
	}
	if anonID.Valid {
		t.Fatalf("anonymous_id still set: %v", anonID)
	}
}
