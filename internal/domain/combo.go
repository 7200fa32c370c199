package domain

// Combo is a played run of cards resolved to a single value. Size and value
// are fixed once played; only ownership, capture, or replacement change it.
type Combo struct {
	Cards     []Card
	Value     int
	OwnerSeat int
}

// Size returns the number of cards in the combo.
func (c *Combo) Size() int {
	if c == nil {
		return 0
	}
	return len(c.Cards)
}

// Beats reports whether a play of the given size and resolved value takes the
// table from this combo: strictly more cards always wins, equal size needs a
// strictly higher value. A nil combo (empty table) is beaten by anything.
func (c *Combo) Beats(size, value int) bool {
	if c == nil {
		return size > 0
	}
	if size > len(c.Cards) {
		return true
	}
	return size == len(c.Cards) && value > c.Value
}
