package domain

// CopiesPerValue is the number of single-valued copies of each value in the base deck.
const CopiesPerValue = 4

// splitPairs lists the candidate pairs printed on the special split cards.
var splitPairs = [][2]int{
	{1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}, {6, 7}, {7, 8}, {1, 8},
}

// NewDeck returns an ordered deck with sequential card IDs. When specialCards
// is true the eight split cards are included after the base set.
func NewDeck(specialCards bool) []Card {
	deck := make([]Card, 0, MaxValue*CopiesPerValue+len(splitPairs))
	id := 0
	for v := MinValue; v <= MaxValue; v++ {
		for c := 0; c < CopiesPerValue; c++ {
			deck = append(deck, Card{ID: id, Low: v})
			id++
		}
	}
	if specialCards {
		for _, p := range splitPairs {
			deck = append(deck, Card{ID: id, Low: p[0], High: p[1]})
			id++
		}
	}
	return deck
}
