package domain

import (
	"errors"
	"fmt"
)

// TurnPhase is the per-turn protocol state.
type TurnPhase string

const (
	// PhaseWaitingForPlayOrDraw accepts a play or draw intent from the current player.
	PhaseWaitingForPlayOrDraw TurnPhase = "waiting_for_play_or_draw"
	// PhaseRingoCheck follows a draw: the drawer decides between a ringo
	// play (if the opportunity exists), inserting the card, or discarding it.
	PhaseRingoCheck TurnPhase = "ringo_check"
	// PhaseWaitingForCapture awaits the new combo owner's keep/discard
	// decision for the cards of the combo they just beat.
	PhaseWaitingForCapture TurnPhase = "waiting_for_capture_decision"
)

// Status is the lifecycle stage of a round.
type Status string

const (
	StatusLobby    Status = "lobby"
	StatusPlaying  Status = "playing"
	StatusGameOver Status = "game_over"

	// StatusAborted marks a round torn down after an integrity failure.
	// No further intents are accepted on an aborted game.
	StatusAborted Status = "aborted"
)

// ErrCorruptState signals an invariant violation (a card ID duplicated or
// lost across hands, pile, and table). It indicates a logic defect, never a
// user error, and the owning match must be torn down rather than healed.
var ErrCorruptState = errors.New("corrupt game state")

// Player holds the per-seat state for a participant in the round.
type Player struct {
	UserID string
	Seat   int
	Hand   Hand
}

// RoundConfig is fixed at round creation for the round's duration.
type RoundConfig struct {
	HandSize     int  `json:"hand_size"`
	SpecialCards bool `json:"special_cards"`
	TurnTimerSec int  `json:"turn_timer_sec"`
}

// Game is the authoritative state for one Ringo round. It is owned by a
// single match and mutated only by the app service, one intent at a time.
type Game struct {
	ID      string
	Players []*Player

	CurrentPlayer int
	Phase         TurnPhase
	Status        Status
	WinnerSeat    int

	Combo *Combo

	// DrawnCard and Ringo are visible only to the current player while set.
	DrawnCard *Card
	Ringo     *RingoPlay

	// PendingCapture holds the just-beaten combo's cards awaiting the new
	// owner's decision; CaptureSeat is that owner.
	PendingCapture []Card
	CaptureSeat    int

	DrawPile []Card
	Discards []Card

	Config RoundConfig

	// Revision increments on every applied intent. Asynchronous bot
	// decisions compare it to detect stale results before applying.
	Revision int64
}

// PlayerBySeat returns the player occupying the given seat, or nil.
func (g *Game) PlayerBySeat(seat int) *Player {
	for _, p := range g.Players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

// Current returns the player whose turn it is.
func (g *Game) Current() *Player {
	return g.Players[g.CurrentPlayer]
}

// DeckSize returns the total number of cards the round was created with.
func (g *Game) DeckSize() int {
	n := MaxValue * CopiesPerValue
	if g.Config.SpecialCards {
		n += len(splitPairs)
	}
	return n
}

// CheckIntegrity verifies that hands, draw pile, table combo, pending capture,
// the drawn card, and discards partition the full card set with no ID seen
// twice. It returns ErrCorruptState on the first violation.
func (g *Game) CheckIntegrity() error {
	seen := make(map[int]string, g.DeckSize())
	note := func(c Card, where string) error {
		if prev, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: card %d in both %s and %s", ErrCorruptState, c.ID, prev, where)
		}
		seen[c.ID] = where
		return nil
	}

	for _, p := range g.Players {
		for _, c := range p.Hand {
			if err := note(c, fmt.Sprintf("hand[seat %d]", p.Seat)); err != nil {
				return err
			}
		}
	}
	for _, c := range g.DrawPile {
		if err := note(c, "draw pile"); err != nil {
			return err
		}
	}
	if g.Combo != nil {
		for _, c := range g.Combo.Cards {
			if err := note(c, "table combo"); err != nil {
				return err
			}
		}
	}
	for _, c := range g.PendingCapture {
		if err := note(c, "pending capture"); err != nil {
			return err
		}
	}
	if g.DrawnCard != nil {
		if err := note(*g.DrawnCard, "drawn card"); err != nil {
			return err
		}
	}
	for _, c := range g.Discards {
		if err := note(c, "discards"); err != nil {
			return err
		}
	}

	if len(seen) != g.DeckSize() {
		return fmt.Errorf("%w: %d cards tracked, deck has %d", ErrCorruptState, len(seen), g.DeckSize())
	}
	return nil
}

// Clone returns a deep copy of the game, used for hypothetical simulation.
func (g *Game) Clone() *Game {
	out := *g
	out.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		cp := *p
		cp.Hand = p.Hand.Clone()
		out.Players[i] = &cp
	}
	if g.Combo != nil {
		combo := *g.Combo
		combo.Cards = append([]Card(nil), g.Combo.Cards...)
		out.Combo = &combo
	}
	if g.DrawnCard != nil {
		c := *g.DrawnCard
		out.DrawnCard = &c
	}
	if g.Ringo != nil {
		r := *g.Ringo
		r.Indices = append([]int(nil), g.Ringo.Indices...)
		out.Ringo = &r
	}
	out.PendingCapture = append([]Card(nil), g.PendingCapture...)
	out.DrawPile = append([]Card(nil), g.DrawPile...)
	out.Discards = append([]Card(nil), g.Discards...)
	return &out
}
