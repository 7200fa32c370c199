package brain

import (
	"golang.org/x/exp/rand"

	"ringo/internal/app"
	"ringo/internal/domain"
)

// Determinize samples one fully-specified hidden state consistent with the
// view's public counts and the seat's belief: known-kept cards stay in their
// owner's hand, the remaining unseen cards are dealt to opponents up to their
// visible hand counts, and whatever is left becomes the draw pile.
func Determinize(view app.View, mem *GameMemory, rng *rand.Rand) *domain.Game {
	unseen, known := mem.Snapshot()
	rng.Shuffle(len(unseen), func(i, j int) { unseen[i], unseen[j] = unseen[j], unseen[i] })

	g := &domain.Game{
		ID:          view.RoundID,
		Phase:       view.Phase,
		Status:      view.Status,
		WinnerSeat:  view.WinnerSeat,
		CaptureSeat: view.CaptureSeat,
		Config:      view.Config,
	}
	g.PendingCapture = append([]domain.Card(nil), view.PendingCapture...)
	g.Discards = append([]domain.Card(nil), view.Discards...)
	if view.Combo != nil {
		combo := *view.Combo
		combo.Cards = append([]domain.Card(nil), view.Combo.Cards...)
		g.Combo = &combo
	}
	if view.DrawnCard != nil {
		card := *view.DrawnCard
		g.DrawnCard = &card
		if view.Ringo != nil {
			play := *view.Ringo
			play.Indices = append([]int(nil), view.Ringo.Indices...)
			g.Ringo = &play
		}
	}

	next := 0
	deal := func(n int) domain.Hand {
		if next+n > len(unseen) {
			n = len(unseen) - next
		}
		h := domain.Hand(append([]domain.Card(nil), unseen[next:next+n]...))
		next += n
		return h
	}

	for i, sv := range view.Seats {
		p := &domain.Player{UserID: sv.UserID, Seat: sv.Seat}
		if sv.Seat == view.ViewerSeat {
			p.Hand = sv.Hand.Clone()
		} else {
			p.Hand = append(domain.Hand(nil), known[sv.Seat]...)
			if len(p.Hand) > sv.HandCount {
				p.Hand = p.Hand[:sv.HandCount]
			}
			p.Hand = append(p.Hand, deal(sv.HandCount-len(p.Hand))...)
		}
		g.Players = append(g.Players, p)
		if sv.Seat == view.TurnSeat {
			g.CurrentPlayer = i
		}
	}

	g.DrawPile = append([]domain.Card(nil), unseen[next:]...)
	rng.Shuffle(len(g.DrawPile), func(i, j int) {
		g.DrawPile[i], g.DrawPile[j] = g.DrawPile[j], g.DrawPile[i]
	})
	return g
}
