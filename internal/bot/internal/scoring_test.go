package internal

import (
	"testing"

	"ringo/internal/domain"
)

var testWeights = PhaseWeights{
	MessinessWeight:  2.0,
	GroupWeight:      1.0,
	HandSizePenalty:  0.5,
	ValueWeight:      0.1,
	SplitAmmoPenalty: 1.5,
	OversizePenalty:  2.0,
	DenialBonus:      0.5,
	FinishBonus:      1000,
}

func TestScoreHandPrefersTidyHands(t *testing.T) {
	tidy := domain.Hand{single(1, 4), single(2, 4), single(3, 4)}
	messy := domain.Hand{single(4, 1), single(5, 5), single(6, 3)}

	if ScoreHand(tidy, testWeights) <= ScoreHand(messy, testWeights) {
		t.Error("a grouped hand must outscore a scattered one")
	}
}

func TestBuildScoredMovesFinishBonus(t *testing.T) {
	hand := domain.Hand{single(1, 6), single(2, 6)}
	moves := GetValidMoves(hand, nil)

	scored := BuildScoredMoves(hand, moves, testWeights, 0, false)
	var best ScoredMove
	for _, sm := range scored {
		if sm.Score > best.Score {
			best = sm
		}
	}
	if len(best.Remaining) != 0 {
		t.Errorf("best move leaves %d cards, want the finishing pair", len(best.Remaining))
	}
}

func TestBuildScoredMovesSplitAmmo(t *testing.T) {
	hand := domain.Hand{single(1, 5), split(2, 5, 6)}
	moves := GetValidMoves(hand, nil)

	var plainSingle, splitSingle *ScoredMove
	scored := BuildScoredMoves(hand, moves, testWeights, 0, false)
	for i := range scored {
		if scored[i].Move.Size != 1 || scored[i].Move.Value != 5 {
			continue
		}
		if hand[scored[i].Move.Indices[0]].IsSplit() {
			splitSingle = &scored[i]
		} else {
			plainSingle = &scored[i]
		}
	}
	if plainSingle == nil || splitSingle == nil {
		t.Fatal("expected a plain and a split single at value 5")
	}
	if splitSingle.Score >= plainSingle.Score {
		t.Error("spending a split card must cost more than a plain card")
	}
}

func TestBuildScoredMovesDenial(t *testing.T) {
	hand := domain.Hand{single(1, 2), single(2, 8)}
	moves := GetValidMoves(hand, nil)

	calm := BuildScoredMoves(hand, moves, testWeights, 0, false)
	hot := BuildScoredMoves(hand, moves, testWeights, 0, true)

	for i := range calm {
		delta := hot[i].Score - calm[i].Score
		want := testWeights.DenialBonus * float64(calm[i].Move.Value)
		if delta < want-1e-9 || delta > want+1e-9 {
			t.Errorf("denial delta for value %d = %v, want %v", calm[i].Move.Value, delta, want)
		}
	}
}
