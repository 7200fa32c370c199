package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSelection covers non-contiguous runs, runs with no shared
	// candidate value, and unresolved or inconsistent split choices.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrIllegalBeat means the selection is a coherent combo but does not
	// take the table under the size/value rule.
	ErrIllegalBeat = errors.New("selection does not beat the table combo")
)

// SplitResolution maps a split card's ID to the single value chosen for it
// within one combo.
type SplitResolution map[int]int

// PlayResult is the outcome of a successful validation: the resolved combo
// and the split choices actually used (echoed back so the state machine and
// clients agree on what was played).
type PlayResult struct {
	Combo       Combo
	Resolutions SplitResolution
}

// MaxRunLength caps the run sizes the ringo opportunity search enumerates.
const MaxRunLength = 5

// ValidateSelection decides whether the given positional index run is a legal
// play from the hand against the current table combo (nil for an empty table).
//
// The run must be contiguous and ascending in the hand as currently ordered.
// The candidate values of its cards must share at least one common value.
// When more than one shared value survives, res must name one value per split
// card in the run, all agreeing on a single value inside the intersection; a
// nil res defaults to the maximum shared value (bot evaluation does not care).
// Finally the run must beat the table: strictly larger, or equal size with a
// strictly higher resolved value.
func ValidateSelection(h Hand, indices []int, current *Combo, res SplitResolution) (PlayResult, error) {
	if len(indices) == 0 {
		return PlayResult{}, fmt.Errorf("%w: empty run", ErrInvalidSelection)
	}
	for i, idx := range indices {
		if idx < 0 || idx >= len(h) {
			return PlayResult{}, fmt.Errorf("%w: index %d out of range", ErrInvalidSelection, idx)
		}
		if i > 0 && idx != indices[i-1]+1 {
			return PlayResult{}, fmt.Errorf("%w: run not contiguous at index %d", ErrInvalidSelection, idx)
		}
	}

	cards := make([]Card, len(indices))
	for i, idx := range indices {
		cards[i] = h[idx]
	}

	shared := sharedValues(cards)
	if len(shared) == 0 {
		return PlayResult{}, fmt.Errorf("%w: cards share no candidate value", ErrInvalidSelection)
	}

	value, used, err := resolveValue(cards, shared, res)
	if err != nil {
		return PlayResult{}, err
	}

	if !current.Beats(len(cards), value) {
		return PlayResult{}, fmt.Errorf("%w: size %d value %d vs size %d value %d",
			ErrIllegalBeat, len(cards), value, current.Size(), currentValue(current))
	}

	return PlayResult{
		Combo:       Combo{Cards: cards, Value: value},
		Resolutions: used,
	}, nil
}

func currentValue(c *Combo) int {
	if c == nil {
		return 0
	}
	return c.Value
}

// sharedValues returns the ascending intersection of candidate values.
func sharedValues(cards []Card) []int {
	var shared []int
	for v := MinValue; v <= MaxValue; v++ {
		ok := true
		for _, c := range cards {
			if !c.HasValue(v) {
				ok = false
				break
			}
		}
		if ok {
			shared = append(shared, v)
		}
	}
	return shared
}

// resolveValue picks the combo's single value from the shared intersection,
// consulting the caller's split choices when the intersection is ambiguous.
func resolveValue(cards []Card, shared []int, res SplitResolution) (int, SplitResolution, error) {
	value := shared[len(shared)-1]
	if len(shared) > 1 && res != nil {
		chosen := 0
		for _, c := range cards {
			if !c.IsSplit() {
				continue
			}
			v, ok := res[c.ID]
			if !ok {
				return 0, nil, fmt.Errorf("%w: split card %d unresolved", ErrInvalidSelection, c.ID)
			}
			if !contains(shared, v) {
				return 0, nil, fmt.Errorf("%w: split card %d resolved outside shared values", ErrInvalidSelection, c.ID)
			}
			if chosen != 0 && v != chosen {
				return 0, nil, fmt.Errorf("%w: split resolutions disagree", ErrInvalidSelection)
			}
			chosen = v
		}
		if chosen != 0 {
			value = chosen
		}
	}

	used := make(SplitResolution)
	for _, c := range cards {
		if c.IsSplit() {
			used[c.ID] = value
		}
	}
	return value, used, nil
}

func contains(vs []int, v int) bool {
	for _, x := range vs {
		if x == v {
			return true
		}
	}
	return false
}

// HasLegalPlay reports whether any contiguous run in the hand beats the
// current table combo. Resolution always tries the maximum shared value,
// which dominates any lower choice under the beat rule. Run length is bounded
// only by the hand; the size cap applies to ringo splices, not regular plays.
func HasLegalPlay(h Hand, current *Combo) bool {
	for start := 0; start < len(h); start++ {
		for length := 1; start+length <= len(h); length++ {
			if _, err := ValidateSelection(h, runIndices(start, length), current, nil); err == nil {
				return true
			}
		}
	}
	return false
}

// RingoPlay describes a legal way to play the just-drawn card together with
// hand cards: splice the drawn card at InsertPos, then play Indices (expressed
// against the post-splice hand).
type RingoPlay struct {
	InsertPos   int
	Indices     []int
	Resolutions SplitResolution
	Size        int
	Value       int
}

// FindRingo searches every insertion position and every contiguous run of
// length 1..MaxRunLength through that position for a legal play that includes
// the drawn card. It returns the best opportunity found (largest run, then
// highest value) and whether one exists.
func FindRingo(h Hand, drawn Card, current *Combo) (RingoPlay, bool) {
	var best RingoPlay
	found := false

	for pos := 0; pos <= len(h); pos++ {
		spliced := h.InsertAt(pos, drawn)
		for length := 1; length <= MaxRunLength && length <= len(spliced); length++ {
			for start := pos - length + 1; start <= pos; start++ {
				if start < 0 || start+length > len(spliced) {
					continue
				}
				indices := runIndices(start, length)
				result, err := ValidateSelection(spliced, indices, current, nil)
				if err != nil {
					continue
				}
				candidate := RingoPlay{
					InsertPos:   pos,
					Indices:     indices,
					Resolutions: result.Resolutions,
					Size:        len(indices),
					Value:       result.Combo.Value,
				}
				if !found || candidate.Size > best.Size ||
					(candidate.Size == best.Size && candidate.Value > best.Value) {
					best = candidate
					found = true
				}
			}
		}
	}
	return best, found
}

func runIndices(start, length int) []int {
	indices := make([]int, length)
	for i := range indices {
		indices[i] = start + i
	}
	return indices
}
