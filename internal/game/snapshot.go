// internal/game/snapshot.go
//
// Client-facing view of a game, produced after every mutation so the
// presentation layer can re-render. Face-down cards do not expose their
// symbol; a client that could read hidden symbols could cheat.

package game

// CardView is the client-facing representation of a card.
// Symbol is only included while the card is face-up or matched.
type CardView struct {
	ID      string `json:"id"`
	FaceUp  bool   `json:"faceUp"`
	Matched bool   `json:"matched"`
	Symbol  string `json:"symbol,omitempty"`
}

// Snapshot is the observable state of a game: the full board plus score,
// pair count, the pending card (if any), turns taken, and the derived
// won condition.
type Snapshot struct {
	GameID  string     `json:"gameId"`
	Cards   []CardView `json:"cards"`
	Score   int        `json:"score"`
	Pairs   int        `json:"pairs"`
	Pending string     `json:"pending,omitempty"`
	Turns   int        `json:"turns"`
	Won     bool       `json:"won"`
}

// Snapshot builds the client-facing view of the current state.
func (g *Game) Snapshot() Snapshot {
	cards := make([]CardView, len(g.Cards))
	for i, c := range g.Cards {
		cv := CardView{ID: c.ID, FaceUp: c.FaceUp, Matched: c.Matched}
		if c.FaceUp || c.Matched {
			cv.Symbol = c.Symbol
		}
		cards[i] = cv
	}
	return Snapshot{
		GameID:  g.ID,
		Cards:   cards,
		Score:   g.Score,
		Pairs:   g.Pairs,
		Pending: g.Pending,
		Turns:   g.Turns,
		Won:     g.Won(),
	}
}
