package bot

import (
	"context"
	"math/rand"

	"ringo/internal/app"
	botinternal "ringo/internal/bot/internal"
)

// ReflexBot is the lowest tier. It leads with its largest run, answers with
// the cheapest beat, places drawn cards at random, keeps only split cards
// from captures, and takes about half of its ringo chances.
type ReflexBot struct {
	rng *rand.Rand
}

func (b *ReflexBot) intn(n int) int {
	if b.rng != nil {
		return b.rng.Intn(n)
	}
	return rand.Intn(n)
}

func (b *ReflexBot) Decide(_ context.Context, view app.View, pc PhaseContext) (app.Intent, error) {
	hand := view.OwnHand()

	switch pc {
	case ContextTurn:
		moves := botinternal.GetValidMoves(hand, view.Combo)
		if len(moves) == 0 {
			return app.Intent{Kind: app.IntentDraw}, nil
		}

		best := moves[0]
		for _, m := range moves[1:] {
			if view.Combo == nil {
				// Lead: largest run, ties by highest value.
				if m.Size > best.Size || (m.Size == best.Size && m.Value > best.Value) {
					best = m
				}
			} else {
				// Respond: smallest beat, ties by lowest value.
				if m.Size < best.Size || (m.Size == best.Size && m.Value < best.Value) {
					best = m
				}
			}
		}
		return app.Intent{Kind: app.IntentPlay, Indices: best.Indices, Resolutions: best.Resolutions}, nil

	case ContextRingoOffer:
		if b.intn(2) == 0 {
			return app.Intent{
				Kind:        app.IntentRingo,
				InsertPos:   view.Ringo.InsertPos,
				Indices:     view.Ringo.Indices,
				Resolutions: view.Ringo.Resolutions,
			}, nil
		}
		return b.placeDrawn(view), nil

	case ContextInsertPlacement:
		return b.placeDrawn(view), nil

	case ContextCapture:
		for _, c := range view.PendingCapture {
			if c.IsSplit() {
				return app.Intent{
					Kind:      app.IntentCaptureDecision,
					Capture:   app.CaptureInsertOne,
					CardID:    c.ID,
					InsertPos: b.intn(len(hand) + 1),
				}, nil
			}
		}
		return app.Intent{Kind: app.IntentCaptureDecision, Capture: app.CaptureDiscardAll}, nil
	}

	return app.Intent{}, ErrUnhandledContext
}

func (b *ReflexBot) placeDrawn(view app.View) app.Intent {
	return app.Intent{
		Kind:      app.IntentInsertDrawn,
		InsertPos: b.intn(len(view.OwnHand()) + 1),
	}
}

func (b *ReflexBot) OnEvent(app.Event) {}
