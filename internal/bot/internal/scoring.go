package internal

import "ringo/internal/domain"

// PhaseWeights tune move scoring for a specific phase.
type PhaseWeights struct {
	MessinessWeight  float64
	GroupWeight      float64
	HandSizePenalty  float64
	ValueWeight      float64
	SplitAmmoPenalty float64
	OversizePenalty  float64
	DenialBonus      float64
	FinishBonus      float64
}

// BotTuning defines phase weights and thresholds for a bot difficulty.
type BotTuning struct {
	Opening PhaseWeights
	Mid     PhaseWeights
	End     PhaseWeights

	// DrawThreshold is how far below the current hand score the best play may
	// fall before drawing is preferred instead.
	DrawThreshold float64
	// DangerThreshold is the opponent hand size that switches to
	// always-beat-cheapest; EmergencyThreshold tightens it further.
	DangerThreshold    int
	EmergencyThreshold int
	// JitterFrac randomizes final scores by up to this fraction.
	JitterFrac float64
}

// ForPhase returns the weights that match the supplied phase.
func (t BotTuning) ForPhase(phase GamePhase) PhaseWeights {
	switch phase {
	case PhaseOpening:
		return t.Opening
	case PhaseEnd:
		return t.End
	default:
		return t.Mid
	}
}

// ScoredMove holds a move with its computed score and the hand left behind.
type ScoredMove struct {
	Move      ValidMove
	Score     float64
	Remaining domain.Hand
}

// ScoreHand evaluates a hand's structure: tidy, grouped, small hands score
// high. It is the baseline against which move deltas are judged.
func ScoreHand(h domain.Hand, weights PhaseWeights) float64 {
	score := -weights.MessinessWeight * domain.Messiness(h)
	score -= weights.HandSizePenalty * float64(len(h))
	for _, g := range domain.AdjacentGroups(h) {
		if g.Size >= 2 {
			score += weights.GroupWeight * float64(g.Size)
		}
	}
	return score
}

// BuildScoredMoves scores each move by the structure of the hand it leaves,
// plus play-level adjustments. tableSize is the current combo's size (0 on a
// lead); threat biases toward high resolved values the next player must answer.
func BuildScoredMoves(hand domain.Hand, moves []ValidMove, weights PhaseWeights, tableSize int, threat bool) []ScoredMove {
	scored := make([]ScoredMove, 0, len(moves))
	for _, move := range moves {
		remaining := hand.RemoveRun(move.Indices[0], move.Size)
		score := ScoreHand(remaining, weights)

		if len(remaining) == 0 {
			score += weights.FinishBonus
		}

		score += weights.ValueWeight * float64(move.Value)
		score -= weights.SplitAmmoPenalty * float64(countSplits(hand, move.Indices))

		// Burning more cards than the table demands wastes ammo.
		if tableSize > 0 && move.Size > tableSize+1 {
			score -= weights.OversizePenalty * float64(move.Size-tableSize-1)
		}

		if threat {
			score += weights.DenialBonus * float64(move.Value)
		}

		scored = append(scored, ScoredMove{
			Move:      move,
			Score:     score,
			Remaining: remaining,
		})
	}
	return scored
}

func countSplits(hand domain.Hand, indices []int) int {
	count := 0
	for _, idx := range indices {
		if hand[idx].IsSplit() {
			count++
		}
	}
	return count
}
