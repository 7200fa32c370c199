package domain

import (
	"errors"
	"testing"
)

func TestValidateSelectionContiguity(t *testing.T) {
	hand := Hand{{ID: 0, Low: 3}, {ID: 1, Low: 3}, {ID: 2, Low: 5}, {ID: 3, Low: 3}}

	tests := []struct {
		name    string
		indices []int
		wantErr error
	}{
		{name: "empty run", indices: nil, wantErr: ErrInvalidSelection},
		{name: "out of range", indices: []int{4}, wantErr: ErrInvalidSelection},
		{name: "gap in run", indices: []int{0, 1, 3}, wantErr: ErrInvalidSelection},
		{name: "descending run", indices: []int{1, 0}, wantErr: ErrInvalidSelection},
		{name: "no shared value", indices: []int{1, 2}, wantErr: ErrInvalidSelection},
		{name: "valid pair", indices: []int{0, 1}, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateSelection(hand, tt.indices, nil, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSelection() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSelectionSplitResolution(t *testing.T) {
	// Hand [A(1), B(1/2), C(2)] on an empty table.
	hand := Hand{{ID: 0, Low: 1}, {ID: 1, Low: 1, High: 2}, {ID: 2, Low: 2}}

	// A+B resolve to 1, B+C resolve to 2. The full run has no shared value:
	// A fixes 1, C fixes 2.
	if _, err := ValidateSelection(hand, []int{0, 1, 2}, nil, nil); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("three-card run across fixed 1 and 2 should be invalid, got %v", err)
	}

	result, err := ValidateSelection(hand, []int{0, 1}, nil, nil)
	if err != nil {
		t.Fatalf("A+B should validate: %v", err)
	}
	if result.Combo.Value != 1 {
		t.Errorf("A+B resolved value = %d, want 1", result.Combo.Value)
	}
	if got := result.Resolutions[1]; got != 1 {
		t.Errorf("split card resolution = %d, want 1", got)
	}

	result, err = ValidateSelection(hand, []int{1, 2}, nil, nil)
	if err != nil {
		t.Fatalf("B+C should validate: %v", err)
	}
	if result.Combo.Value != 2 {
		t.Errorf("B+C resolved value = %d, want 2", result.Combo.Value)
	}
}

func TestValidateSelectionAmbiguousSplits(t *testing.T) {
	// Two split cards sharing both 3 and 4.
	hand := Hand{{ID: 0, Low: 3, High: 4}, {ID: 1, Low: 3, High: 4}}

	// Nil resolution defaults to the maximum shared value.
	result, err := ValidateSelection(hand, []int{0, 1}, nil, nil)
	if err != nil {
		t.Fatalf("default resolution failed: %v", err)
	}
	if result.Combo.Value != 4 {
		t.Errorf("default resolved value = %d, want 4", result.Combo.Value)
	}

	// Explicit agreement on the lower value.
	result, err = ValidateSelection(hand, []int{0, 1}, nil, SplitResolution{0: 3, 1: 3})
	if err != nil {
		t.Fatalf("explicit resolution failed: %v", err)
	}
	if result.Combo.Value != 3 {
		t.Errorf("explicit resolved value = %d, want 3", result.Combo.Value)
	}

	// Disagreeing choices are rejected.
	if _, err := ValidateSelection(hand, []int{0, 1}, nil, SplitResolution{0: 3, 1: 4}); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("disagreeing resolutions should be invalid, got %v", err)
	}

	// Missing a choice for one ambiguous split is rejected.
	if _, err := ValidateSelection(hand, []int{0, 1}, nil, SplitResolution{0: 3}); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("incomplete resolutions should be invalid, got %v", err)
	}

	// A choice outside the shared intersection is rejected.
	if _, err := ValidateSelection(hand, []int{0, 1}, nil, SplitResolution{0: 5, 1: 5}); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("out-of-intersection resolution should be invalid, got %v", err)
	}
}

func TestValidateSelectionBeatRule(t *testing.T) {
	// Table combo size 1, value 5.
	table := &Combo{Cards: []Card{{ID: 90, Low: 5}}, Value: 5}

	tests := []struct {
		name    string
		hand    Hand
		indices []int
		wantErr error
	}{
		{
			name:    "equal size equal value is illegal",
			hand:    Hand{{ID: 0, Low: 5}},
			indices: []int{0},
			wantErr: ErrIllegalBeat,
		},
		{
			name:    "equal size lower value is illegal",
			hand:    Hand{{ID: 0, Low: 4}},
			indices: []int{0},
			wantErr: ErrIllegalBeat,
		},
		{
			name:    "equal size higher value is legal",
			hand:    Hand{{ID: 0, Low: 6}},
			indices: []int{0},
			wantErr: nil,
		},
		{
			name:    "bigger size beats any value",
			hand:    Hand{{ID: 0, Low: 1}, {ID: 1, Low: 1}},
			indices: []int{0, 1},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateSelection(tt.hand, tt.indices, table, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSelection() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Smaller size is illegal regardless of value.
	bigTable := &Combo{Cards: []Card{{ID: 90, Low: 1}, {ID: 91, Low: 1}}, Value: 1}
	if _, err := ValidateSelection(Hand{{ID: 0, Low: 8}}, []int{0}, bigTable, nil); !errors.Is(err, ErrIllegalBeat) {
		t.Errorf("smaller run should be illegal, got %v", err)
	}
}

func TestHasLegalPlayLongRun(t *testing.T) {
	// Six cards sharing value 4 against a size-5 table combo. Only the full
	// six-card run beats it, so a play must still be found.
	hand := Hand{
		{ID: 0, Low: 3, High: 4},
		{ID: 1, Low: 4},
		{ID: 2, Low: 4},
		{ID: 3, Low: 4},
		{ID: 4, Low: 4},
		{ID: 5, Low: 4, High: 5},
	}
	table := &Combo{
		Cards: []Card{{ID: 90, Low: 8}, {ID: 91, Low: 8}, {ID: 92, Low: 8}, {ID: 93, Low: 8}, {ID: 94, Low: 8}},
		Value: 8,
	}

	if _, err := ValidateSelection(hand, []int{0, 1, 2, 3, 4, 5}, table, nil); err != nil {
		t.Fatalf("six-card run should beat the size-5 combo: %v", err)
	}
	if !HasLegalPlay(hand, table) {
		t.Error("HasLegalPlay missed the six-card beat")
	}
}

func TestFindRingo(t *testing.T) {
	t.Run("drawn card completes a beat", func(t *testing.T) {
		hand := Hand{{ID: 0, Low: 3}, {ID: 1, Low: 7}}
		drawn := Card{ID: 9, Low: 3}
		table := &Combo{Cards: []Card{{ID: 90, Low: 8}}, Value: 8}

		play, ok := FindRingo(hand, drawn, table)
		if !ok {
			t.Fatal("expected a ringo opportunity")
		}
		if play.Size != 2 || play.Value != 3 {
			t.Errorf("ringo play = size %d value %d, want size 2 value 3", play.Size, play.Value)
		}

		// The play must replay identically against the spliced hand.
		spliced := hand.InsertAt(play.InsertPos, drawn)
		if _, err := ValidateSelection(spliced, play.Indices, table, play.Resolutions); err != nil {
			t.Errorf("ringo play does not replay: %v", err)
		}
	})

	t.Run("no opportunity without a beat", func(t *testing.T) {
		hand := Hand{{ID: 0, Low: 2}}
		drawn := Card{ID: 9, Low: 4}
		table := &Combo{Cards: []Card{{ID: 90, Low: 1}, {ID: 91, Low: 1}, {ID: 92, Low: 1}}, Value: 1}

		if _, ok := FindRingo(hand, drawn, table); ok {
			t.Error("no ringo should exist against a triple with two loose cards")
		}
	})

	t.Run("empty table accepts the drawn card alone", func(t *testing.T) {
		play, ok := FindRingo(Hand{}, Card{ID: 9, Low: 6}, nil)
		if !ok {
			t.Fatal("single drawn card on an empty table should be playable")
		}
		if play.Size != 1 || play.InsertPos != 0 {
			t.Errorf("play = %+v, want size 1 at position 0", play)
		}
	})

	t.Run("prefers the largest shed", func(t *testing.T) {
		hand := Hand{{ID: 0, Low: 5}, {ID: 1, Low: 5}}
		drawn := Card{ID: 9, Low: 5}

		play, ok := FindRingo(hand, drawn, nil)
		if !ok {
			t.Fatal("expected an opportunity")
		}
		if play.Size != 3 {
			t.Errorf("size = %d, want 3 (drawn card joining both fives)", play.Size)
		}
	})
}
