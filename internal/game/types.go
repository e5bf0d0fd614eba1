// internal/game/types.go
//
// Core type definitions for the Pairdown game engine.
// Defines:
//   - Outcome: result category of a single card flip.
//   - Card: one card in the deck (symbol + face/matched flags).
//   - Game: state for a single in-progress or finished game.

package game

import (
	"errors"
	"math/rand"
)

// Outcome categorizes what a call to Flip did.
// Possible values:
//   - "revealed":   first card of a turn turned face-up.
//   - "matched":    second card completed a pair; both are locked.
//   - "mismatched": second card did not pair; both stay up until the next flip.
//   - "ignored":    click on a face-up or matched card; no state change.
type Outcome string

const (
	OutcomeRevealed   Outcome = "revealed"
	OutcomeMatched    Outcome = "matched"
	OutcomeMismatched Outcome = "mismatched"
	OutcomeIgnored    Outcome = "ignored"
)

const (
	// MatchReward is the fixed score increment for completing a pair.
	MatchReward = 10

	// Pair counts come from a fixed allowed set: even values in
	// [MinPairs, MaxPairs], bounded above by the active alphabet size.
	MinPairs     = 2
	MaxPairs     = 12
	DefaultPairs = 8
)

// Sentinel errors. Both are recoverable: the game they are returned from is
// left exactly as it was.
var (
	// ErrUnknownCard is returned by Flip for an id that is not in the deck.
	ErrUnknownCard = errors.New("card not in deck")

	// ErrInvalidPairCount is returned by SetPairs (and New) when the requested
	// pair count is outside the allowed set or exceeds the symbol alphabet.
	ErrInvalidPairCount = errors.New("invalid pair count")
)

// Card is a single card in the deck. Cards are created in bulk by Reset and
// mutated in place; the whole deck is replaced on the next Reset.
type Card struct {
	ID      string // Opaque unique identifier (UUID); purely a lookup key.
	Symbol  string // Token from the active theme; exactly two cards share it.
	FaceUp  bool   // True while the card is revealed.
	Matched bool   // True once its pair was found; never reverts except via Reset.
}

// Game holds the state of a single Pairdown session.
//
// Invariants maintained by the methods in this package:
//   - len(Cards) == 2*Pairs immediately after any Reset.
//   - Every symbol in the deck appears on exactly two cards.
//   - Pending is either "" or the id of the one face-up, unmatched card.
//   - Matched is monotonic per card; Score only grows by MatchReward or
//     resets to zero.
type Game struct {
	ID      string  // Unique session identifier (random hex string).
	Cards   []*Card // The deck, in board order.
	Score   int     // MatchReward per completed pair; 0 after Reset.
	Pairs   int     // Number of pairs in the deck (even, MinPairs..MaxPairs).
	Pending string  // Id of the card awaiting comparison, or "".
	Turns   int     // Comparisons resolved so far (matches + mismatches).

	symbols []string   // Active alphabet the deck is drawn from.
	rng     *rand.Rand // Shuffle source; seeded for deterministic deals.
}
