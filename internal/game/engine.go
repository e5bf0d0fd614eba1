// internal/game/engine.go
//
// Core game engine for a single Pairdown session.
// Responsibilities:
//   - Create new games with a validated pair count and a fresh shuffled deck.
//   - Apply card flips: reveal, compare, match, score.
//   - Rebuild the deck on reset / pair count change.
//
// Notes:
//   - Symbol alphabets are provided by the symbols package.
//   - The engine is single-threaded by design: every operation is an
//     instantaneous state transition and the caller owns serialization.
//   - randomID() is a compact hex identifier for correlating server state.
//
// Package-level defaults are kept in types.go.
package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"math/rand"

	"github.com/google/uuid"

	"github.com/pairdown/go-server/internal/symbols"
)

// New constructs a new game instance.
// If alphabet is empty, the default theme from the symbols package is used.
// If pairs is zero, DefaultPairs is used. If seed is zero, the shuffle source
// is seeded from crypto/rand; any other value makes the deal deterministic
// (same seed, same layout; card ids are still unique per instance).
func New(pairs int, alphabet []string, seed int64) (*Game, error) {
	if len(alphabet) == 0 {
		alphabet = symbols.Default()
	}
	if pairs == 0 {
		pairs = DefaultPairs
	}
	g := &Game{
		ID:      randomID(),
		symbols: alphabet,
		rng:     rand.New(rand.NewSource(pickSeed(seed))),
	}
	if err := g.SetPairs(pairs); err != nil {
		return nil, err
	}
	return g, nil
}

// Flip applies a card selection, mutating the game state.
// Returns the outcome category, or ErrUnknownCard if id is not in the deck.
//
// Rules (one "turn" is Idle → OneRevealed → Matched|Mismatched → Idle):
//   - Face-up or matched cards are ignored clicks: no state change, no error.
//   - With no card pending, every non-matched card is swept face-down first
//     (this hides a leftover mismatched pair), then the selected card is
//     revealed and recorded as pending.
//   - With a card pending, the symbols are compared. Equal: both cards are
//     locked as matched and Score grows by MatchReward. Unequal: both stay
//     face-up; the next flip's sweep hides them. Either way the pending
//     marker is cleared, Turns increments, and the selected card ends face-up.
func (g *Game) Flip(id string) (Outcome, error) {
	card := g.find(id)
	if card == nil {
		return OutcomeIgnored, ErrUnknownCard
	}
	if card.Matched || card.FaceUp {
		return OutcomeIgnored, nil
	}

	if g.Pending == "" {
		for _, c := range g.Cards {
			if !c.Matched {
				c.FaceUp = false
			}
		}
		card.FaceUp = true
		g.Pending = card.ID
		return OutcomeRevealed, nil
	}

	pending := g.find(g.Pending)
	g.Pending = ""
	g.Turns++
	card.FaceUp = true

	if pending != nil && pending.Symbol == card.Symbol {
		pending.Matched = true
		card.Matched = true
		g.Score += MatchReward
		return OutcomeMatched, nil
	}
	return OutcomeMismatched, nil
}

// SetPairs changes the pair count and rebuilds the deck.
// n must be even, within [MinPairs, MaxPairs], and no larger than the active
// alphabet; anything else returns ErrInvalidPairCount and leaves the game
// untouched.
func (g *Game) SetPairs(n int) error {
	if n < MinPairs || n > MaxPairs || n%2 != 0 || n > len(g.symbols) {
		return ErrInvalidPairCount
	}
	g.Pairs = n
	g.Reset()
	return nil
}

// Reset replaces the deck with 2*Pairs face-down cards: Pairs symbols chosen
// uniformly from the alphabet, each duplicated once, in shuffled order.
// Score, Pending, and Turns are cleared.
func (g *Game) Reset() {
	pool := append([]string(nil), g.symbols...)
	g.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	cards := make([]*Card, 0, 2*g.Pairs)
	for _, sym := range pool[:g.Pairs] {
		cards = append(cards,
			&Card{ID: uuid.NewString(), Symbol: sym},
			&Card{ID: uuid.NewString(), Symbol: sym},
		)
	}
	g.rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })

	g.Cards = cards
	g.Score = 0
	g.Pending = ""
	g.Turns = 0
}

// Won reports whether every card in the deck has been matched.
func (g *Game) Won() bool {
	for _, c := range g.Cards {
		if !c.Matched {
			return false
		}
	}
	return len(g.Cards) > 0
}

// find returns the card with the given id, or nil.
func (g *Game) find(id string) *Card {
	for _, c := range g.Cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// pickSeed returns seed unchanged unless it is zero, in which case a fresh
// value is drawn from crypto/rand. Zero is reserved to mean "not seeded".
func pickSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	var b [8]byte
	_, _ = crand.Read(b[:])
	s := int64(binary.BigEndian.Uint64(b[:]))
	if s == 0 {
		s = 1
	}
	return s
}

// randomID returns a compact 16‑hex‑char identifier.
// Collisions are extremely unlikely given crypto/rand entropy.
func randomID() string {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return hex.EncodeToString(b[:])
}
