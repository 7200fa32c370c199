package domain

// MinValue and MaxValue bound the printed values on Ringo cards.
const (
	MinValue = 1
	MaxValue = 8
)

// Card is a single Ringo card. Low holds the printed value; split cards carry
// a second candidate in High (normalized so Low < High). High is zero for
// single-valued cards. ID is unique within a deck and is the key used by
// split-resolution maps and belief tracking.
type Card struct {
	ID   int
	Low  int
	High int
}

// IsSplit reports whether the card has two candidate values.
func (c Card) IsSplit() bool {
	return c.High != 0
}

// CandidateValues returns the set of values this card can resolve to.
func (c Card) CandidateValues() []int {
	if c.High != 0 {
		return []int{c.Low, c.High}
	}
	return []int{c.Low}
}

// HasValue reports whether v is one of the card's candidate values.
func (c Card) HasValue(v int) bool {
	return v == c.Low || (c.High != 0 && v == c.High)
}

// SharesValue reports whether two cards have at least one candidate value in common.
func (c Card) SharesValue(other Card) bool {
	if other.HasValue(c.Low) {
		return true
	}
	return c.High != 0 && other.HasValue(c.High)
}
