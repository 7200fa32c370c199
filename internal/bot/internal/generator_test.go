package internal

import (
	"testing"

	"ringo/internal/domain"
)

func single(id, v int) domain.Card   { return domain.Card{ID: id, Low: v} }
func split(id, a, b int) domain.Card { return domain.Card{ID: id, Low: a, High: b} }

func TestGetValidMovesLead(t *testing.T) {
	hand := domain.Hand{single(1, 3), single(2, 3), single(3, 7)}
	moves := GetValidMoves(hand, nil)

	// 3 singles + the pair of threes. The 3-7 boundary shares no value.
	if len(moves) != 4 {
		t.Fatalf("moves = %d, want 4: %+v", len(moves), moves)
	}
	foundPair := false
	for _, m := range moves {
		if m.Size == 2 && m.Value == 3 {
			foundPair = true
		}
		if m.Size > 2 {
			t.Errorf("unexpected run %+v across a value boundary", m)
		}
	}
	if !foundPair {
		t.Error("missing the pair of threes")
	}
}

func TestGetValidMovesSplitProducesBothValues(t *testing.T) {
	hand := domain.Hand{split(1, 4, 5), split(2, 4, 5)}
	moves := GetValidMoves(hand, nil)

	// Each split alone plays as 4 or 5, and the pair plays as 4 or 5.
	values := map[int]int{}
	for _, m := range moves {
		if m.Size == 2 {
			values[m.Value]++
			if m.Resolutions[1] != m.Value || m.Resolutions[2] != m.Value {
				t.Errorf("pair resolutions %v disagree with value %d", m.Resolutions, m.Value)
			}
		}
	}
	if values[4] != 1 || values[5] != 1 {
		t.Errorf("pair values = %v, want one pair at 4 and one at 5", values)
	}
}

func TestGetValidMovesAgainstCombo(t *testing.T) {
	hand := domain.Hand{single(1, 2), single(2, 6), single(3, 6)}
	table := &domain.Combo{Cards: []domain.Card{single(9, 5)}, Value: 5, OwnerSeat: 1}

	moves := GetValidMoves(hand, table)
	for _, m := range moves {
		if m.Size == 1 && m.Value <= 5 {
			t.Errorf("single %d does not beat a 5", m.Value)
		}
	}
	// The 6s beat as a single and as a pair; the 2 cannot. The 2-6 boundary
	// yields no runs.
	if len(moves) != 3 {
		t.Errorf("moves = %d, want 3: %+v", len(moves), moves)
	}
}

func TestGetValidMovesLongRunBeatsBigCombo(t *testing.T) {
	hand := domain.Hand{
		split(1, 3, 4), single(2, 4), single(3, 4), single(4, 4), single(5, 4), split(6, 4, 5),
	}
	table := &domain.Combo{
		Cards: []domain.Card{single(90, 8), single(91, 8), single(92, 8), single(93, 8), single(94, 8)},
		Value: 8, OwnerSeat: 1,
	}

	// Only the full six-card run outsizes the table combo.
	moves := GetValidMoves(hand, table)
	found := false
	for _, m := range moves {
		if m.Size == 6 && m.Value == 4 {
			found = true
		}
	}
	if !found {
		t.Errorf("moves = %+v, want the six-card run at 4", moves)
	}
}

func TestGetValidMovesNoneWhenOutgunned(t *testing.T) {
	hand := domain.Hand{single(1, 1), single(2, 2)}
	table := &domain.Combo{Cards: []domain.Card{single(9, 3), single(10, 3), single(11, 3)}, Value: 3, OwnerSeat: 1}

	if moves := GetValidMoves(hand, table); len(moves) != 0 {
		t.Errorf("moves = %+v, want none against a triple", moves)
	}
}
