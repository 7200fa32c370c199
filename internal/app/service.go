package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"ringo/internal/domain"
)

// Service contains the Ringo turn state machine operating on domain state.
// Intents are processed one at a time; a failed intent leaves the game
// untouched and returns a typed rejection.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrWrongPhase         = errors.New("intent not valid for current phase")
	ErrNotYourTurn        = errors.New("not this seat's turn")
	ErrNotCaptureOwner    = errors.New("seat does not own the pending capture")
	ErrOpportunityExpired = errors.New("ringo opportunity expired")
	ErrEmptyDrawPile      = errors.New("draw pile is empty")
	ErrGameOver           = errors.New("game is over")
	ErrTooFewPlayers      = errors.New("not enough players to start")
	ErrBadConfig          = errors.New("round config cannot be satisfied")
	ErrUnknownIntent      = errors.New("unknown intent kind")
)

// MaxSeats is the table capacity.
const MaxSeats = 5

// StartRound creates a fresh round for the occupied seats. seatUserIDs is
// indexed by seat; empty strings mark vacant seats. firstSeat names the seat
// that leads (the previous winner); any other value falls back to the lowest
// occupied seat.
func (s *Service) StartRound(seatUserIDs []string, firstSeat int, cfg domain.RoundConfig) (*domain.Game, []Event, error) {
	var players []*domain.Player
	for seat, userID := range seatUserIDs {
		if userID == "" {
			continue
		}
		players = append(players, &domain.Player{UserID: userID, Seat: seat})
	}
	if len(players) < 2 {
		return nil, nil, ErrTooFewPlayers
	}
	if len(players) > MaxSeats {
		return nil, nil, fmt.Errorf("%w: %d players", ErrBadConfig, len(players))
	}

	deck := domain.NewDeck(cfg.SpecialCards)
	if cfg.HandSize <= 0 || len(players)*cfg.HandSize >= len(deck) {
		return nil, nil, fmt.Errorf("%w: hand size %d for %d players", ErrBadConfig, cfg.HandSize, len(players))
	}
	s.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	game := &domain.Game{
		ID:          uuid.NewString(),
		Players:     players,
		Phase:       domain.PhaseWaitingForPlayOrDraw,
		Status:      domain.StatusPlaying,
		WinnerSeat:  -1,
		CaptureSeat: -1,
		Config:      cfg,
	}

	events := make([]Event, 0, len(players)+1)
	idx := 0
	for _, pl := range players {
		pl.Hand = domain.Hand(append([]domain.Card(nil), deck[idx:idx+cfg.HandSize]...))
		idx += cfg.HandSize
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{Seat: pl.Seat, Hand: pl.Hand},
			Recipients: []string{pl.UserID},
		})
	}
	game.DrawPile = deck[idx:]

	game.CurrentPlayer = 0
	for i, pl := range players {
		if pl.Seat == firstSeat {
			game.CurrentPlayer = i
			break
		}
	}

	seats := make([]int, len(players))
	for i, pl := range players {
		seats[i] = pl.Seat
	}
	events = append(events, Event{
		Kind: EventRoundStarted,
		Payload: RoundStartedPayload{
			RoundID:       game.ID,
			FirstTurnSeat: game.Current().Seat,
			Seats:         seats,
			Config:        cfg,
		},
	})

	return game, events, nil
}

// Apply routes one intent from a seat through the single validation path and
// advances the state machine. On success the game revision increments and the
// card-partition invariant is re-checked.
func (s *Service) Apply(g *domain.Game, seat int, intent Intent) ([]Event, error) {
	if g.Status != domain.StatusPlaying {
		return nil, ErrGameOver
	}

	var (
		events []Event
		err    error
	)
	switch intent.Kind {
	case IntentPlay:
		events, err = s.play(g, seat, intent.Indices, intent.Resolutions)
	case IntentDraw:
		events, err = s.draw(g, seat)
	case IntentRingo:
		events, err = s.ringo(g, seat, intent.InsertPos, intent.Indices, intent.Resolutions)
	case IntentInsertDrawn:
		events, err = s.insertDrawn(g, seat, intent.InsertPos)
	case IntentDiscardDrawn:
		events, err = s.discardDrawn(g, seat)
	case IntentCaptureDecision:
		events, err = s.captureDecision(g, seat, intent.Capture, intent.CardID, intent.InsertPos)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, intent.Kind)
	}
	if err != nil {
		return nil, err
	}

	g.Revision++
	if err := g.CheckIntegrity(); err != nil {
		// The state is compromised and cannot be trusted for further play.
		// Abort the round so subsequent intents are rejected up front.
		g.Status = domain.StatusAborted
		return nil, err
	}
	return events, nil
}

func (s *Service) requireTurn(g *domain.Game, seat int, phase domain.TurnPhase) error {
	if g.Phase != phase {
		return fmt.Errorf("%w: %s during %s", ErrWrongPhase, phase, g.Phase)
	}
	if g.Current().Seat != seat {
		return fmt.Errorf("%w: seat %d, current is %d", ErrNotYourTurn, seat, g.Current().Seat)
	}
	return nil
}

// play validates and applies a selection from the live hand. When the mover
// beat a previous combo, its cards become the pending capture and the turn
// pauses for the capture decision; otherwise the turn advances.
func (s *Service) play(g *domain.Game, seat int, indices []int, res domain.SplitResolution) ([]Event, error) {
	if err := s.requireTurn(g, seat, domain.PhaseWaitingForPlayOrDraw); err != nil {
		return nil, err
	}
	pl := g.Current()

	result, err := domain.ValidateSelection(pl.Hand, indices, g.Combo, res)
	if err != nil {
		return nil, err
	}

	pl.Hand = pl.Hand.RemoveRun(indices[0], len(indices))
	prev := g.Combo
	combo := result.Combo
	combo.OwnerSeat = seat
	g.Combo = &combo

	return s.afterCombo(g, seat, combo, prev, false)
}

// afterCombo applies the shared post-conditions of a play or ringo: win
// check, pending capture when a previous combo was beaten, turn advancement
// otherwise. It returns the full event list in emission order.
func (s *Service) afterCombo(g *domain.Game, seat int, combo domain.Combo, prev *domain.Combo, viaRingo bool) ([]Event, error) {
	pl := g.PlayerBySeat(seat)
	played := Event{
		Kind: EventComboPlayed,
		Payload: ComboPlayedPayload{
			Seat:         seat,
			Combo:        combo,
			Ringo:        viaRingo,
			NextTurnSeat: seat,
			HandCount:    len(pl.Hand),
		},
	}

	if len(pl.Hand) == 0 {
		// The win pre-empts any capture decision: the beaten combo is spent.
		if prev != nil {
			g.Discards = append(g.Discards, prev.Cards...)
		}
		return append([]Event{played}, s.endGame(g, seat)...), nil
	}

	if prev != nil {
		g.PendingCapture = prev.Cards
		g.CaptureSeat = seat
		g.Phase = domain.PhaseWaitingForCapture
		return []Event{played, {
			Kind:    EventCaptureOffer,
			Payload: CaptureOfferPayload{Seat: seat, Cards: g.PendingCapture},
		}}, nil
	}

	post := s.advanceTurn(g)
	played.Payload = ComboPlayedPayload{
		Seat:         seat,
		Combo:        combo,
		Ringo:        viaRingo,
		NextTurnSeat: g.Current().Seat,
		HandCount:    len(pl.Hand),
	}
	return append([]Event{played}, post...), nil
}

func (s *Service) draw(g *domain.Game, seat int) ([]Event, error) {
	if err := s.requireTurn(g, seat, domain.PhaseWaitingForPlayOrDraw); err != nil {
		return nil, err
	}
	pl := g.Current()
	if len(g.DrawPile) == 0 {
		if domain.HasLegalPlay(pl.Hand, g.Combo) {
			return nil, ErrEmptyDrawPile
		}
		// Nothing to draw and nothing to play: the round cannot proceed, so
		// it ends on card count.
		return s.resolveExhaustedPile(g), nil
	}

	card := g.DrawPile[len(g.DrawPile)-1]
	g.DrawPile = g.DrawPile[:len(g.DrawPile)-1]
	g.DrawnCard = &card
	g.Ringo = nil
	if play, ok := domain.FindRingo(pl.Hand, card, g.Combo); ok {
		g.Ringo = &play
	}
	g.Phase = domain.PhaseRingoCheck

	return []Event{
		{
			Kind:       EventCardDrawn,
			Payload:    CardDrawnPayload{Seat: seat, Card: card, Ringo: g.Ringo},
			Recipients: []string{pl.UserID},
		},
		{
			Kind:    EventCardDrawn,
			Payload: CardDrawnPublicPayload{Seat: seat, PileCount: len(g.DrawPile)},
		},
	}, nil
}

// ringo splices the drawn card into the hand at insertPos and validates the
// supplied post-splice run, which must include the drawn card. Success
// proceeds exactly like a play.
func (s *Service) ringo(g *domain.Game, seat int, insertPos int, indices []int, res domain.SplitResolution) ([]Event, error) {
	if err := s.requireTurn(g, seat, domain.PhaseRingoCheck); err != nil {
		return nil, err
	}
	if g.Ringo == nil {
		return nil, ErrOpportunityExpired
	}
	pl := g.Current()

	if insertPos < 0 || insertPos > len(pl.Hand) {
		return nil, fmt.Errorf("%w: insert position %d", domain.ErrInvalidSelection, insertPos)
	}
	includesDrawn := false
	for _, idx := range indices {
		if idx == insertPos {
			includesDrawn = true
			break
		}
	}
	if !includesDrawn {
		return nil, fmt.Errorf("%w: run does not include the drawn card", domain.ErrInvalidSelection)
	}

	spliced := pl.Hand.InsertAt(insertPos, *g.DrawnCard)
	result, err := domain.ValidateSelection(spliced, indices, g.Combo, res)
	if err != nil {
		return nil, err
	}

	pl.Hand = spliced.RemoveRun(indices[0], len(indices))
	g.DrawnCard = nil
	g.Ringo = nil
	prev := g.Combo
	combo := result.Combo
	combo.OwnerSeat = seat
	g.Combo = &combo

	return s.afterCombo(g, seat, combo, prev, true)
}

func (s *Service) insertDrawn(g *domain.Game, seat int, pos int) ([]Event, error) {
	if err := s.requireTurn(g, seat, domain.PhaseRingoCheck); err != nil {
		return nil, err
	}
	pl := g.Current()

	pl.Hand = pl.Hand.InsertAt(pos, *g.DrawnCard)
	g.DrawnCard = nil
	g.Ringo = nil

	post := s.advanceTurn(g)
	events := []Event{{
		Kind: EventDrawResolved,
		Payload: DrawResolvedPayload{
			Seat:         seat,
			HandCount:    len(pl.Hand),
			NextTurnSeat: g.Current().Seat,
		},
	}}
	return append(events, post...), nil
}

func (s *Service) discardDrawn(g *domain.Game, seat int) ([]Event, error) {
	if err := s.requireTurn(g, seat, domain.PhaseRingoCheck); err != nil {
		return nil, err
	}
	pl := g.Current()

	card := *g.DrawnCard
	g.Discards = append(g.Discards, card)
	g.DrawnCard = nil
	g.Ringo = nil

	post := s.advanceTurn(g)
	events := []Event{{
		Kind: EventDrawResolved,
		Payload: DrawResolvedPayload{
			Seat:         seat,
			Discarded:    &card,
			HandCount:    len(pl.Hand),
			NextTurnSeat: g.Current().Seat,
		},
	}}
	return append(events, post...), nil
}

// captureDecision resolves the just-beaten combo's cards: discard them all,
// insert a named card at a chosen position, or insert everything at scored
// positions. The turn advances once no captured cards remain.
func (s *Service) captureDecision(g *domain.Game, seat int, action CaptureAction, cardID int, pos int) ([]Event, error) {
	if g.Phase != domain.PhaseWaitingForCapture {
		return nil, fmt.Errorf("%w: capture decision during %s", ErrWrongPhase, g.Phase)
	}
	if g.CaptureSeat != seat {
		return nil, fmt.Errorf("%w: seat %d, owner is %d", ErrNotCaptureOwner, seat, g.CaptureSeat)
	}
	pl := g.PlayerBySeat(seat)

	switch action {
	case CaptureDiscardAll:
		g.Discards = append(g.Discards, g.PendingCapture...)
		g.PendingCapture = nil
		g.CaptureSeat = -1
		post := s.advanceTurn(g)
		return append([]Event{{
			Kind: EventCaptureChoice,
			Payload: CaptureChoicePayload{
				Seat:         seat,
				Action:       action,
				HandCount:    len(pl.Hand),
				NextTurnSeat: g.Current().Seat,
			},
		}}, post...), nil

	case CaptureInsertOne:
		idx := -1
		for i, c := range g.PendingCapture {
			if c.ID == cardID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: card %d not in pending capture", domain.ErrInvalidSelection, cardID)
		}
		card := g.PendingCapture[idx]
		pl.Hand = pl.Hand.InsertAt(pos, card)
		g.PendingCapture = append(g.PendingCapture[:idx], g.PendingCapture[idx+1:]...)

		var post []Event
		if len(g.PendingCapture) == 0 {
			g.PendingCapture = nil
			g.CaptureSeat = -1
			post = s.advanceTurn(g)
		}
		return append([]Event{{
			Kind: EventCaptureChoice,
			Payload: CaptureChoicePayload{
				Seat:         seat,
				Action:       action,
				Card:         &card,
				Remaining:    len(g.PendingCapture),
				HandCount:    len(pl.Hand),
				NextTurnSeat: g.Current().Seat,
			},
		}}, post...), nil

	case CaptureInsertAll:
		for _, card := range g.PendingCapture {
			pl.Hand = pl.Hand.InsertAt(domain.BestInsertPosition(pl.Hand, card, true), card)
		}
		g.PendingCapture = nil
		g.CaptureSeat = -1
		post := s.advanceTurn(g)
		// The server picks every insert position, so the owner gets a copy
		// carrying the resulting hand order. Everyone else sees counts only.
		return append([]Event{
			{
				Kind: EventCaptureChoice,
				Payload: CaptureChoicePayload{
					Seat:         seat,
					Action:       action,
					Hand:         pl.Hand.Clone(),
					HandCount:    len(pl.Hand),
					NextTurnSeat: g.Current().Seat,
				},
				Recipients: []string{pl.UserID},
			},
			{
				Kind: EventCaptureChoice,
				Payload: CaptureChoicePayload{
					Seat:         seat,
					Action:       action,
					HandCount:    len(pl.Hand),
					NextTurnSeat: g.Current().Seat,
				},
			},
		}, post...), nil

	default:
		return nil, fmt.Errorf("%w: capture action %q", ErrUnknownIntent, action)
	}
}

// advanceTurn hands control to the next seat, closing the pile first when
// control would return to the current combo's owner untouched.
func (s *Service) advanceTurn(g *domain.Game) []Event {
	var events []Event
	next := (g.CurrentPlayer + 1) % len(g.Players)

	if g.Combo != nil && g.Players[next].Seat == g.Combo.OwnerSeat {
		discarded := g.Combo.Cards
		g.Discards = append(g.Discards, discarded...)
		events = append(events, Event{
			Kind:    EventPileClosed,
			Payload: PileClosedPayload{OwnerSeat: g.Combo.OwnerSeat, Discarded: discarded},
		})
		g.Combo = nil
	}

	g.CurrentPlayer = next
	g.Phase = domain.PhaseWaitingForPlayOrDraw
	return events
}

func (s *Service) endGame(g *domain.Game, winnerSeat int) []Event {
	g.Status = domain.StatusGameOver
	g.WinnerSeat = winnerSeat
	return []Event{{
		Kind:    EventGameEnded,
		Payload: GameEndedPayload{WinnerSeat: winnerSeat, Reason: EndReasonWin},
	}}
}

// ForfeitRound ends an active round in favor of winnerSeat. The port invokes
// it when every other player in the round has abandoned the match.
func (s *Service) ForfeitRound(g *domain.Game, winnerSeat int) ([]Event, error) {
	if g.Status != domain.StatusPlaying {
		return nil, ErrGameOver
	}
	if g.PlayerBySeat(winnerSeat) == nil {
		return nil, fmt.Errorf("%w: seat %d not in round", domain.ErrInvalidSelection, winnerSeat)
	}
	g.Status = domain.StatusGameOver
	g.WinnerSeat = winnerSeat
	g.Revision++
	return []Event{{
		Kind:    EventGameEnded,
		Payload: GameEndedPayload{WinnerSeat: winnerSeat, Reason: EndReasonForfeit},
	}}, nil
}

// resolveExhaustedPile ends a round that can no longer proceed: the smallest
// hand wins, ties broken toward the lowest seat.
func (s *Service) resolveExhaustedPile(g *domain.Game) []Event {
	winner := g.Players[0]
	for _, p := range g.Players[1:] {
		if len(p.Hand) < len(winner.Hand) {
			winner = p
		}
	}
	g.Status = domain.StatusGameOver
	g.WinnerSeat = winner.Seat
	return []Event{{
		Kind:    EventGameEnded,
		Payload: GameEndedPayload{WinnerSeat: winner.Seat, Reason: EndReasonPileExhausted},
	}}
}
