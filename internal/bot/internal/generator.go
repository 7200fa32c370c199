package internal

import (
	"ringo/internal/domain"
)

// ValidMove represents a possible legal play from the live hand.
type ValidMove struct {
	Indices     []int
	Resolutions domain.SplitResolution
	Size        int
	Value       int
}

// GetValidMoves returns every legal contiguous run for the hand against the
// current table combo (nil for an empty table). Runs whose split cards admit
// more than one shared value produce one move per resolvable value.
func GetValidMoves(hand domain.Hand, current *domain.Combo) []ValidMove {
	var moves []ValidMove
	for start := 0; start < len(hand); start++ {
		for length := 1; start+length <= len(hand); length++ {
			indices := make([]int, length)
			for i := range indices {
				indices[i] = start + i
			}

			for _, v := range sharedValues(hand[start : start+length]) {
				res := resolutionFor(hand[start:start+length], v)
				result, err := domain.ValidateSelection(hand, indices, current, res)
				if err != nil {
					continue
				}
				moves = append(moves, ValidMove{
					Indices:     indices,
					Resolutions: result.Resolutions,
					Size:        length,
					Value:       result.Combo.Value,
				})
			}
		}
	}
	return moves
}

// sharedValues is the ascending intersection of candidate values of a run.
func sharedValues(cards []domain.Card) []int {
	var shared []int
	for v := domain.MinValue; v <= domain.MaxValue; v++ {
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

// resolutionFor pins every split card in the run to the chosen value.
func resolutionFor(cards []domain.Card, value int) domain.SplitResolution {
	var res domain.SplitResolution
	for _, c := range cards {
		if c.IsSplit() {
			if res == nil {
				res = make(domain.SplitResolution)
			}
			res[c.ID] = value
		}
	}
	return res
}
