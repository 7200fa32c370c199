package bot

import (
	"context"
	"errors"

	"ringo/internal/app"
)

// ErrUnhandledContext means a brain was asked a question it has no answer
// for; the session layer falls back to its timeout default.
var ErrUnhandledContext = errors.New("no decision for phase context")

// BotLevel selects a difficulty tier.
type BotLevel int

const (
	BotLevelReflex BotLevel = iota + 1
	BotLevelHeuristic
	BotLevelStrategic
	BotLevelSearch
)

// PhaseContext narrows a decision to the question the state machine is
// actually asking. The session layer derives it from the view's phase.
type PhaseContext string

const (
	// ContextTurn asks for a play or a draw.
	ContextTurn PhaseContext = "turn"
	// ContextRingoOffer asks whether to take the available ringo; declining
	// brains answer with an insert or discard intent directly.
	ContextRingoOffer PhaseContext = "ringo_offer"
	// ContextInsertPlacement asks where the drawn card goes (no ringo exists).
	ContextInsertPlacement PhaseContext = "insert_placement"
	// ContextCapture asks what to do with the just-beaten combo's cards.
	ContextCapture PhaseContext = "capture"
)

// ContextFor derives the phase context the given view is asking about.
func ContextFor(view app.View) PhaseContext {
	switch {
	case view.PendingCapture != nil:
		return ContextCapture
	case view.DrawnCard != nil && view.Ringo != nil:
		return ContextRingoOffer
	case view.DrawnCard != nil:
		return ContextInsertPlacement
	default:
		return ContextTurn
	}
}

// Brain is the interface all bot tiers implement. Decide receives exactly the
// redacted view a human client would; it must return an intent valid for the
// asked context. OnEvent lets stateful brains track public information.
type Brain interface {
	Decide(ctx context.Context, view app.View, pc PhaseContext) (app.Intent, error)
	OnEvent(ev app.Event)
}
