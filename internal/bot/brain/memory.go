package brain

import (
	"sync"

	"ringo/internal/app"
	"ringo/internal/domain"
)

// GameMemory is one seat's belief about hidden cards: the multiset of cards
// not yet visible to it, and cards publicly known to sit in a specific hand
// (captures the opponent chose to keep). It is per-game state and dies with
// the game.
//
// The match loop feeds events from the single-writer path while the searcher
// reads from a worker, so access is guarded.
type GameMemory struct {
	mu      sync.Mutex
	ownSeat int
	unseen  map[int]domain.Card
	known   map[int]map[int]domain.Card // seat -> card ID -> card
	offers  map[int][]domain.Card       // capture cards awaiting a keep/discard choice
}

// NewMemory builds the initial belief for a seat: the full deck minus the
// seat's own dealt hand.
func NewMemory(cfg domain.RoundConfig, ownSeat int, ownHand domain.Hand) *GameMemory {
	m := &GameMemory{
		ownSeat: ownSeat,
		unseen:  make(map[int]domain.Card),
		known:   make(map[int]map[int]domain.Card),
		offers:  make(map[int][]domain.Card),
	}
	for _, c := range domain.NewDeck(cfg.SpecialCards) {
		m.unseen[c.ID] = c
	}
	for _, c := range ownHand {
		delete(m.unseen, c.ID)
	}
	return m
}

// Observe folds one public event into the belief. Private payloads for other
// seats never reach this seat, so everything here is common knowledge.
func (m *GameMemory) Observe(ev app.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch p := ev.Payload.(type) {
	case app.HandDealtPayload:
		if p.Seat == m.ownSeat {
			for _, c := range p.Hand {
				delete(m.unseen, c.ID)
			}
		}
	case app.ComboPlayedPayload:
		for _, c := range p.Combo.Cards {
			m.reveal(c)
		}
	case app.DrawResolvedPayload:
		if p.Discarded != nil {
			m.reveal(*p.Discarded)
		}
	case app.CardDrawnPayload:
		if p.Seat == m.ownSeat {
			delete(m.unseen, p.Card.ID)
		}
	case app.CaptureOfferPayload:
		// The offered cards are already common knowledge (they were on the
		// table); hold them until the owner chooses keep or discard.
		m.offers[p.Seat] = append([]domain.Card(nil), p.Cards...)
	case app.CaptureChoicePayload:
		m.resolveCapture(p)
	}
}

// resolveCapture moves offered cards into the known-in-hand set when the
// owner keeps them, and drops the bookkeeping when they hit the discards.
func (m *GameMemory) resolveCapture(p app.CaptureChoicePayload) {
	pending := m.offers[p.Seat]
	switch p.Action {
	case app.CaptureInsertOne:
		if p.Card != nil {
			if p.Seat != m.ownSeat {
				m.markKnown(p.Seat, *p.Card)
			}
			for i, c := range pending {
				if c.ID == p.Card.ID {
					pending = append(pending[:i], pending[i+1:]...)
					break
				}
			}
			m.offers[p.Seat] = pending
		}
		if p.Remaining == 0 {
			delete(m.offers, p.Seat)
		}
	case app.CaptureInsertAll:
		if p.Seat != m.ownSeat {
			for _, c := range pending {
				m.markKnown(p.Seat, c)
			}
		}
		delete(m.offers, p.Seat)
	case app.CaptureDiscardAll:
		delete(m.offers, p.Seat)
	}
}

// reveal makes a card common knowledge outside any hidden zone. Callers hold
// the lock.
func (m *GameMemory) reveal(c domain.Card) {
	delete(m.unseen, c.ID)
	for _, cards := range m.known {
		delete(cards, c.ID)
	}
}

func (m *GameMemory) markKnown(seat int, c domain.Card) {
	delete(m.unseen, c.ID)
	if m.known[seat] == nil {
		m.known[seat] = make(map[int]domain.Card)
	}
	m.known[seat][c.ID] = c
}

// SyncVisible reconciles the belief with everything a view makes public:
// the viewer's own hand, the discards, the table combo, and any pending
// capture. Called before each search so a missed event cannot poison the
// sample space.
func (m *GameMemory) SyncVisible(view app.View) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range view.OwnHand() {
		delete(m.unseen, c.ID)
	}
	for _, c := range view.Discards {
		m.reveal(c)
	}
	if view.Combo != nil {
		for _, c := range view.Combo.Cards {
			m.reveal(c)
		}
	}
	for _, c := range view.PendingCapture {
		m.reveal(c)
	}
	if view.DrawnCard != nil {
		delete(m.unseen, view.DrawnCard.ID)
	}
}

// Snapshot copies the belief for a determinization pass. knownBySeat excludes
// cards a later event revealed.
func (m *GameMemory) Snapshot() (unseen []domain.Card, knownBySeat map[int][]domain.Card) {
	m.mu.Lock()
	defer m.mu.Unlock()

	unseen = make([]domain.Card, 0, len(m.unseen))
	for _, c := range m.unseen {
		unseen = append(unseen, c)
	}
	knownBySeat = make(map[int][]domain.Card, len(m.known))
	for seat, cards := range m.known {
		for _, c := range cards {
			knownBySeat[seat] = append(knownBySeat[seat], c)
		}
	}
	return unseen, knownBySeat
}
