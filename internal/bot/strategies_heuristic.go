package bot

import (
	"context"
	"sort"

	"ringo/internal/app"
	botinternal "ringo/internal/bot/internal"
	"ringo/internal/domain"
)

// HeuristicBot scores candidate plays by the structure of the hand they
// leave behind, phase-adjusted. It always takes a ringo, keeps captures only
// when they improve the hand, and switches to always-beat once an opponent
// is close to going out.
type HeuristicBot struct{}

func (b *HeuristicBot) Decide(_ context.Context, view app.View, pc PhaseContext) (app.Intent, error) {
	hand := view.OwnHand()
	phase := botinternal.DetectPhase(view)
	weights := DefaultTuning.ForPhase(phase)
	danger := botinternal.DetectThreat(view, view.ViewerSeat, DefaultTuning.DangerThreshold)

	switch pc {
	case ContextTurn:
		moves := botinternal.GetValidMoves(hand, view.Combo)
		if len(moves) == 0 {
			return app.Intent{Kind: app.IntentDraw}, nil
		}

		if danger && view.Combo != nil {
			return playIntent(cheapestBeat(moves)), nil
		}

		scored := botinternal.BuildScoredMoves(hand, moves, weights, view.Combo.Size(), false)
		sort.Slice(scored, func(i, j int) bool {
			if scored[i].Score != scored[j].Score {
				return scored[i].Score > scored[j].Score
			}
			// Save higher values when scores are equal.
			return scored[i].Move.Value < scored[j].Move.Value
		})

		if view.Combo != nil {
			currentScore := botinternal.ScoreHand(hand, weights)
			if scored[0].Score < currentScore+DefaultTuning.DrawThreshold {
				return app.Intent{Kind: app.IntentDraw}, nil
			}
		}
		return playIntent(scored[0].Move), nil

	case ContextRingoOffer:
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

func (b *HeuristicBot) OnEvent(app.Event) {}

func playIntent(m botinternal.ValidMove) app.Intent {
	return app.Intent{Kind: app.IntentPlay, Indices: m.Indices, Resolutions: m.Resolutions}
}

// cheapestBeat picks the smallest run, ties by lowest value.
func cheapestBeat(moves []botinternal.ValidMove) botinternal.ValidMove {
	best := moves[0]
	for _, m := range moves[1:] {
		if m.Size < best.Size || (m.Size == best.Size && m.Value < best.Value) {
			best = m
		}
	}
	return best
}

// captureImproves simulates inserting every captured card at its best
// position and keeps the cards when they complete a triple-or-larger group
// or pay for the larger hand in structure value.
func captureImproves(hand domain.Hand, captured []domain.Card, weights botinternal.PhaseWeights) bool {
	after := hand.Clone()
	total := 0
	for _, c := range captured {
		after = after.InsertAt(domain.BestInsertPosition(after, c, true), c)
		total += c.Low
	}

	if largestGroup(after) >= 3 && largestGroup(after) > largestGroup(hand) {
		return true
	}
	gain := botinternal.ScoreHand(after, weights) - botinternal.ScoreHand(hand, weights)
	return gain+weights.ValueWeight*float64(total) > 0
}

func largestGroup(h domain.Hand) int {
	max := 0
	for _, g := range domain.AdjacentGroups(h) {
		if g.Size > max {
			max = g.Size
		}
	}
	return max
}
