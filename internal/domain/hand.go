package domain

// Hand is an ordered sequence of cards. Order is meaningful: only positionally
// contiguous runs can be played together. All operations return a new Hand and
// leave the receiver untouched, so hypothetical splices are cheap.
type Hand []Card

// Clone returns an independent copy of the hand.
func (h Hand) Clone() Hand {
	out := make(Hand, len(h))
	copy(out, h)
	return out
}

// InsertAt returns a new hand with c spliced in at pos. Positions outside
// [0, len] are clamped.
func (h Hand) InsertAt(pos int, c Card) Hand {
	if pos < 0 {
		pos = 0
	}
	if pos > len(h) {
		pos = len(h)
	}
	out := make(Hand, 0, len(h)+1)
	out = append(out, h[:pos]...)
	out = append(out, c)
	out = append(out, h[pos:]...)
	return out
}

// RemoveRun returns a new hand with the contiguous run [start, start+length) removed.
func (h Hand) RemoveRun(start, length int) Hand {
	out := make(Hand, 0, len(h)-length)
	out = append(out, h[:start]...)
	out = append(out, h[start+length:]...)
	return out
}

// Append returns a new hand with c added at the end (draw pickup).
func (h Hand) Append(c Card) Hand {
	out := make(Hand, 0, len(h)+1)
	out = append(out, h...)
	out = append(out, c)
	return out
}

// IndexOfID returns the position of the card with the given ID, or -1.
func (h Hand) IndexOfID(id int) int {
	for i, c := range h {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Group is a maximal contiguous run of value-adjacent cards.
type Group struct {
	Start int
	Size  int
}

// AdjacentGroups partitions the hand into maximal contiguous runs where each
// consecutive pair of cards shares at least one candidate value. This is the
// basis for which selections can possibly validate.
func AdjacentGroups(h Hand) []Group {
	if len(h) == 0 {
		return nil
	}
	groups := []Group{{Start: 0, Size: 1}}
	for i := 1; i < len(h); i++ {
		if h[i].SharesValue(h[i-1]) {
			groups[len(groups)-1].Size++
		} else {
			groups = append(groups, Group{Start: i, Size: 1})
		}
	}
	return groups
}

// Messiness scores hand fragmentation: (number of groups - 1) plus half a
// point for every position of separation between occurrences of the same
// value. Lower is better. Used only by the AI tiers, never by validation.
func Messiness(h Hand) float64 {
	if len(h) == 0 {
		return 0
	}
	score := float64(len(AdjacentGroups(h)) - 1)
	for v := MinValue; v <= MaxValue; v++ {
		prev := -1
		for i, c := range h {
			if !c.HasValue(v) {
				continue
			}
			if prev >= 0 && i-prev > 1 {
				score += 0.5 * float64(i-prev-1)
			}
			prev = i
		}
	}
	return score
}

// InsertScore rates splicing c at pos: +10 for each neighbor sharing a
// candidate value, and optionally the (negated, scaled) messiness delta so
// that tidier hands score higher.
func InsertScore(h Hand, c Card, pos int, weighMessiness bool) float64 {
	score := 0.0
	if pos > 0 && h[pos-1].SharesValue(c) {
		score += 10
	}
	if pos < len(h) && h[pos].SharesValue(c) {
		score += 10
	}
	if weighMessiness {
		delta := Messiness(h.InsertAt(pos, c)) - Messiness(h)
		score -= 2 * delta
	}
	return score
}

// BestInsertPosition returns the insertion index with the highest InsertScore.
// Ties break toward the lowest index.
func BestInsertPosition(h Hand, c Card, weighMessiness bool) int {
	best := 0
	bestScore := InsertScore(h, c, 0, weighMessiness)
	for pos := 1; pos <= len(h); pos++ {
		if s := InsertScore(h, c, pos, weighMessiness); s > bestScore {
			best, bestScore = pos, s
		}
	}
	return best
}
