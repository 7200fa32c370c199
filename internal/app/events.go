package app

import "ringo/internal/domain"

// EventKind identifies emitted domain events for port dispatch.
type EventKind string

const (
	EventRoundStarted  EventKind = "round_started"
	EventHandDealt     EventKind = "hand_dealt"
	EventComboPlayed   EventKind = "combo_played"
	EventCardDrawn     EventKind = "card_drawn"
	EventDrawResolved  EventKind = "draw_resolved"
	EventCaptureOffer  EventKind = "capture_offer"
	EventCaptureChoice EventKind = "capture_choice"
	EventPileClosed    EventKind = "pile_closed"
	EventGameEnded     EventKind = "game_ended"
)

// Event is an app event with optional targeted recipients. An empty
// Recipients list means broadcast; private payloads (hands, drawn cards)
// always name their single viewer.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type RoundStartedPayload struct {
	RoundID       string
	FirstTurnSeat int
	Seats         []int
	Config        domain.RoundConfig
}

type HandDealtPayload struct {
	Seat int
	Hand domain.Hand
}

// ComboPlayedPayload covers both plain plays and ringo plays (Ringo true).
type ComboPlayedPayload struct {
	Seat         int
	Combo        domain.Combo
	Ringo        bool
	NextTurnSeat int
	HandCount    int
}

// CardDrawnPayload is the drawer's private copy; observers receive
// CardDrawnPublicPayload instead.
type CardDrawnPayload struct {
	Seat  int
	Card  domain.Card
	Ringo *domain.RingoPlay
}

type CardDrawnPublicPayload struct {
	Seat      int
	PileCount int
}

// DrawResolvedPayload reports the drawer inserting or discarding the drawn
// card. A discarded card becomes public knowledge; an inserted card does not.
type DrawResolvedPayload struct {
	Seat         int
	Discarded    *domain.Card
	HandCount    int
	NextTurnSeat int
}

type CaptureOfferPayload struct {
	Seat  int
	Cards []domain.Card
}

// CaptureChoicePayload reports the capture owner's decision. For insert_all
// the owner receives a recipient-restricted copy with Hand set to the
// post-insert hand, since the insert positions are chosen server-side.
type CaptureChoicePayload struct {
	Seat         int
	Action       CaptureAction
	Card         *domain.Card
	Remaining    int
	HandCount    int
	NextTurnSeat int
	Hand         domain.Hand
}

type PileClosedPayload struct {
	OwnerSeat int
	Discarded []domain.Card
}

// EndReason states why a round concluded.
type EndReason string

const (
	EndReasonWin           EndReason = "win"
	EndReasonPileExhausted EndReason = "pile_exhausted"
	EndReasonForfeit       EndReason = "forfeit"
)

type GameEndedPayload struct {
	WinnerSeat int
	Reason     EndReason
}
