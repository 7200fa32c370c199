package app

import "ringo/internal/domain"

// SeatView is one seat as a given viewer sees it. Hand is populated only for
// the viewer's own seat; everyone else exposes a count.
type SeatView struct {
	UserID    string      `json:"user_id"`
	Seat      int         `json:"seat"`
	HandCount int         `json:"hand_count"`
	Hand      domain.Hand `json:"hand,omitempty"`
}

// View is the read-only projection of a game for one viewer. It never reveals
// another player's hand, the draw pile's contents, or another player's drawn
// card. Bot seats consume exactly this shape; there is no privileged bypass.
type View struct {
	RoundID    string           `json:"round_id"`
	ViewerSeat int              `json:"viewer_seat"`
	Seats      []SeatView       `json:"seats"`
	TurnSeat   int              `json:"turn_seat"`
	Phase      domain.TurnPhase `json:"phase"`
	Status     domain.Status    `json:"status"`
	WinnerSeat int              `json:"winner_seat"`

	Combo *domain.Combo `json:"combo,omitempty"`

	DrawnCard *domain.Card      `json:"drawn_card,omitempty"`
	Ringo     *domain.RingoPlay `json:"ringo,omitempty"`

	PendingCapture []domain.Card `json:"pending_capture,omitempty"`
	CaptureSeat    int           `json:"capture_seat"`

	PileCount int           `json:"pile_count"`
	Discards  []domain.Card `json:"discards"`

	Config domain.RoundConfig `json:"config"`
}

// Project builds the redacted view of g for viewerSeat. A viewerSeat that is
// not at the table (e.g. a spectator) sees only public information.
func Project(g *domain.Game, viewerSeat int) View {
	view := View{
		RoundID:        g.ID,
		ViewerSeat:     viewerSeat,
		TurnSeat:       g.Current().Seat,
		Phase:          g.Phase,
		Status:         g.Status,
		WinnerSeat:     g.WinnerSeat,
		PendingCapture: append([]domain.Card(nil), g.PendingCapture...),
		CaptureSeat:    g.CaptureSeat,
		PileCount:      len(g.DrawPile),
		Discards:       append([]domain.Card(nil), g.Discards...),
		Config:         g.Config,
	}

	if g.Combo != nil {
		combo := *g.Combo
		combo.Cards = append([]domain.Card(nil), g.Combo.Cards...)
		view.Combo = &combo
	}

	for _, p := range g.Players {
		sv := SeatView{UserID: p.UserID, Seat: p.Seat, HandCount: len(p.Hand)}
		if p.Seat == viewerSeat {
			sv.Hand = p.Hand.Clone()
		}
		view.Seats = append(view.Seats, sv)
	}

	if g.DrawnCard != nil && g.Current().Seat == viewerSeat {
		card := *g.DrawnCard
		view.DrawnCard = &card
		if g.Ringo != nil {
			play := *g.Ringo
			play.Indices = append([]int(nil), g.Ringo.Indices...)
			view.Ringo = &play
		}
	}

	return view
}

// OwnHand returns the viewer's hand from the view, or nil when the viewer is
// not seated.
func (v View) OwnHand() domain.Hand {
	for _, sv := range v.Seats {
		if sv.Seat == v.ViewerSeat {
			return sv.Hand
		}
	}
	return nil
}

// SeatBy returns the seat view for the given seat, or nil.
func (v View) SeatBy(seat int) *SeatView {
	for i := range v.Seats {
		if v.Seats[i].Seat == seat {
			return &v.Seats[i]
		}
	}
	return nil
}
