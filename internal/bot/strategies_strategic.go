package bot

import (
	"context"
	"math/rand"
	"sort"

	"ringo/internal/app"
	botinternal "ringo/internal/bot/internal"
	"ringo/internal/domain"
)

// StrategicBot extends the heuristic tier with a denial bias against seats
// about to go out, a stiffer ammo economy, and a little score jitter so its
// play is not fully predictable. It passes on thin single-card ringos when
// no one is threatening.
type StrategicBot struct {
	rng *rand.Rand
}

func (b *StrategicBot) float64() float64 {
	if b.rng != nil {
		return b.rng.Float64()
	}
	return rand.Float64()
}

func (b *StrategicBot) Decide(_ context.Context, view app.View, pc PhaseContext) (app.Intent, error) {
	hand := view.OwnHand()
	phase := botinternal.DetectPhase(view)
	weights := strategicTuning.ForPhase(phase)
	danger := botinternal.DetectThreat(view, view.ViewerSeat, strategicTuning.DangerThreshold)
	emergency := botinternal.DetectThreat(view, view.ViewerSeat, strategicTuning.EmergencyThreshold)

	switch pc {
	case ContextTurn:
		moves := botinternal.GetValidMoves(hand, view.Combo)
		if len(moves) == 0 {
			return app.Intent{Kind: app.IntentDraw}, nil
		}

		if emergency && view.Combo != nil {
			return playIntent(cheapestBeat(moves)), nil
		}

		scored := botinternal.BuildScoredMoves(hand, moves, weights, view.Combo.Size(), danger)
		for i := range scored {
			scored[i].Score *= 1 + strategicTuning.JitterFrac*(2*b.float64()-1)
		}
		sort.Slice(scored, func(i, j int) bool {
			if scored[i].Score != scored[j].Score {
				return scored[i].Score > scored[j].Score
			}
			return scored[i].Move.Value < scored[j].Move.Value
		})

		if view.Combo != nil && !danger {
			currentScore := botinternal.ScoreHand(hand, weights)
			if scored[0].Score < currentScore+strategicTuning.DrawThreshold {
				return app.Intent{Kind: app.IntentDraw}, nil
			}
		}
		return playIntent(scored[0].Move), nil

	case ContextRingoOffer:
		// A one-card shed is rarely worth spending the drawn card on.
		if view.Ringo.Size == 1 && !danger && b.float64() < 0.6 {
			return app.Intent{
				Kind:      app.IntentInsertDrawn,
				InsertPos: domain.BestInsertPosition(hand, *view.DrawnCard, true),
			}, nil
		}
		return app.Intent{
			Kind:        app.IntentRingo,
			InsertPos:   view.Ringo.InsertPos,
			Indices:     view.Ringo.Indices,
			Resolutions: view.Ringo.Resolutions,
		}, nil

	case ContextInsertPlacement:
		return app.Intent{
			Kind:      app.IntentInsertDrawn,
			InsertPos: domain.BestInsertPosition(hand, *view.DrawnCard, true),
		}, nil

	case ContextCapture:
		if captureImproves(hand, view.PendingCapture, weights) {
			return app.Intent{Kind: app.IntentCaptureDecision, Capture: app.CaptureInsertAll}, nil
		}
		return app.Intent{Kind: app.IntentCaptureDecision, Capture: app.CaptureDiscardAll}, nil
	}

	return app.Intent{}, ErrUnhandledContext
}

func (b *StrategicBot) OnEvent(app.Event) {}
