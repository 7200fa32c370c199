package internal

import "ringo/internal/app"

// GamePhase describes the current strategic stage of a round.
type GamePhase int

const (
	// PhaseOpening indicates every seat still holds its dealt hand size.
	PhaseOpening GamePhase = iota
	// PhaseMid indicates no one has reached the endgame threshold yet.
	PhaseMid
	// PhaseEnd indicates a seat is close to going out or the pile is nearly gone.
	PhaseEnd
)

const (
	endgameHandSize = 3
	endgamePileSize = 5
)

// DetectPhase infers the phase from visible hand counts and the pile.
func DetectPhase(view app.View) GamePhase {
	if len(view.Seats) == 0 {
		return PhaseMid
	}

	opening := true
	end := view.PileCount <= endgamePileSize

	for _, sv := range view.Seats {
		if sv.HandCount != view.Config.HandSize {
			opening = false
		}
		if sv.HandCount <= endgameHandSize {
			end = true
		}
	}

	if opening {
		return PhaseOpening
	}
	if end {
		return PhaseEnd
	}
	return PhaseMid
}

// DetectThreat reports whether any opponent's hand is at or below the
// supplied card threshold.
func DetectThreat(view app.View, seat, threshold int) bool {
	if threshold <= 0 {
		return false
	}
	for _, sv := range view.Seats {
		if sv.Seat == seat {
			continue
		}
		if sv.HandCount > 0 && sv.HandCount <= threshold {
			return true
		}
	}
	return false
}
