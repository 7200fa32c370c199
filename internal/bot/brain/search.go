package brain

import (
	"context"
	"errors"
	mathrand "math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"ringo/internal/app"
	botinternal "ringo/internal/bot/internal"
	"ringo/internal/domain"
)

// ErrNoCandidates means the search found nothing legal to choose between.
var ErrNoCandidates = errors.New("no candidate intents")

// Option configures a Searcher.
type Option func(*Searcher)

// WithBudget bounds one Search call's wall time.
func WithBudget(d time.Duration) Option {
	return func(s *Searcher) { s.budget = d }
}

// WithDeterminizations bounds how many hidden-state samples are evaluated.
func WithDeterminizations(n int) Option {
	return func(s *Searcher) { s.determinizations = n }
}

// WithSeed fixes the sampling stream for reproducible searches.
func WithSeed(seed uint64) Option {
	return func(s *Searcher) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithLogger attaches a logger for per-search diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Searcher) { s.log = log }
}

// Searcher evaluates candidate intents by sampling determinized hidden
// states and rolling each candidate out with heuristic stand-in players.
// Many shallow determinizations beat one deep search under a turn-sized
// budget.
type Searcher struct {
	budget           time.Duration
	determinizations int
	rolloutSteps     int
	rng              *rand.Rand
	log              zerolog.Logger
}

// NewSearcher applies options over conservative defaults.
func NewSearcher(options ...Option) *Searcher {
	s := &Searcher{
		budget:           700 * time.Millisecond,
		determinizations: 48,
		rolloutSteps:     80,
		rng:              rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		log:              zerolog.Nop(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// candidate is one root intent with its accumulated playout value.
type candidate struct {
	intent app.Intent
	size   int // cards shed at the root, for tie breaking
	value  int
	total  float64
	visits int
}

func (c *candidate) mean() float64 {
	if c.visits == 0 {
		return 0
	}
	return c.total / float64(c.visits)
}

// Search picks the intent with the best mean playout value across
// determinizations. It respects ctx cancellation and the time budget; on a
// cold stop it returns the best candidate seen so far.
func (s *Searcher) Search(ctx context.Context, view app.View, mem *GameMemory) (app.Intent, error) {
	candidates := s.rootCandidates(view)
	if len(candidates) == 0 {
		return app.Intent{}, ErrNoCandidates
	}
	if len(candidates) == 1 {
		return candidates[0].intent, nil
	}

	deadline := time.Now().Add(s.budget)
	start := time.Now()
	samples := 0

	for i := 0; i < s.determinizations; i++ {
		if time.Now().After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return app.Intent{}, ctx.Err()
		default:
		}

		g := Determinize(view, mem, s.rng)
		svc := app.NewService(mathrand.New(mathrand.NewSource(int64(s.rng.Uint64()))))
		for j := range candidates {
			sim := g.Clone()
			score, ok := s.playout(svc, sim, view.ViewerSeat, candidates[j].intent)
			if !ok {
				continue
			}
			candidates[j].total += score
			candidates[j].visits++
		}
		samples++
	}

	sort.Slice(candidates, func(i, j int) bool {
		mi, mj := candidates[i].mean(), candidates[j].mean()
		if mi != mj {
			return mi > mj
		}
		// Cheapest beat first, then largest shed.
		if candidates[i].value != candidates[j].value {
			return candidates[i].value < candidates[j].value
		}
		return candidates[i].size > candidates[j].size
	})

	best := candidates[0]
	s.log.Debug().
		Int("samples", samples).
		Int("candidates", len(candidates)).
		Dur("elapsed", time.Since(start)).
		Str("kind", string(best.intent.Kind)).
		Float64("mean", best.mean()).
		Msg("search complete")

	return best.intent, nil
}

// rootCandidates enumerates the phase-appropriate action set.
func (s *Searcher) rootCandidates(view app.View) []candidate {
	hand := view.OwnHand()
	var out []candidate

	switch {
	case view.PendingCapture != nil:
		out = append(out,
			candidate{intent: app.Intent{Kind: app.IntentCaptureDecision, Capture: app.CaptureDiscardAll}},
			candidate{intent: app.Intent{Kind: app.IntentCaptureDecision, Capture: app.CaptureInsertAll}},
		)

	case view.DrawnCard != nil:
		if view.Ringo != nil {
			out = append(out, candidate{
				intent: app.Intent{
					Kind:        app.IntentRingo,
					InsertPos:   view.Ringo.InsertPos,
					Indices:     view.Ringo.Indices,
					Resolutions: view.Ringo.Resolutions,
				},
				size:  view.Ringo.Size,
				value: view.Ringo.Value,
			})
		}
		for _, pos := range insertPositions(hand, *view.DrawnCard) {
			out = append(out, candidate{
				intent: app.Intent{Kind: app.IntentInsertDrawn, InsertPos: pos},
			})
		}
		out = append(out, candidate{intent: app.Intent{Kind: app.IntentDiscardDrawn}})

	default:
		for _, m := range botinternal.GetValidMoves(hand, view.Combo) {
			out = append(out, candidate{
				intent: app.Intent{Kind: app.IntentPlay, Indices: m.Indices, Resolutions: m.Resolutions},
				size:   m.Size,
				value:  m.Value,
			})
		}
		if view.PileCount > 0 {
			out = append(out, candidate{intent: app.Intent{Kind: app.IntentDraw}})
		}
	}
	return out
}

// insertPositions proposes a small set of distinct placements for a card.
func insertPositions(hand domain.Hand, c domain.Card) []int {
	seen := map[int]bool{}
	var out []int
	for _, pos := range []int{
		domain.BestInsertPosition(hand, c, true),
		domain.BestInsertPosition(hand, c, false),
		0,
		len(hand),
	} {
		if !seen[pos] {
			seen[pos] = true
			out = append(out, pos)
		}
	}
	return out
}

// playout applies the root intent, then advances the game with heuristic
// stand-ins until it ends or the step cap is hit, and scores the outcome for
// the searching seat.
func (s *Searcher) playout(svc *app.Service, g *domain.Game, seat int, root app.Intent) (float64, bool) {
	startHand := len(g.PlayerBySeat(seat).Hand)
	if _, err := svc.Apply(g, seat, root); err != nil {
		return 0, false
	}

	for step := 0; step < s.rolloutSteps && g.Status == domain.StatusPlaying; step++ {
		actor := s.actorSeat(g)
		intent := rolloutIntent(app.Project(g, actor))
		if _, err := svc.Apply(g, actor, intent); err != nil {
			break
		}
	}

	return s.score(g, seat, startHand), true
}

func (s *Searcher) actorSeat(g *domain.Game) int {
	if g.Phase == domain.PhaseWaitingForCapture {
		return g.CaptureSeat
	}
	return g.Current().Seat
}

// score blends the win indicator with shed progress and opponent pressure.
func (s *Searcher) score(g *domain.Game, seat, startHand int) float64 {
	own := g.PlayerBySeat(seat)
	score := 0.05 * float64(startHand-len(own.Hand))
	if g.Status == domain.StatusGameOver {
		if g.WinnerSeat == seat {
			score += 1.0
		} else {
			score -= 1.0
		}
		return score
	}
	for _, p := range g.Players {
		if p.Seat != seat && len(p.Hand) <= 2 {
			score -= 0.1
		}
	}
	return score
}

// rolloutIntent is the heuristic stand-in policy for every seat during
// playouts: tidy plays, accepted ringos, structure-guided inserts.
func rolloutIntent(view app.View) app.Intent {
	hand := view.OwnHand()

	switch {
	case view.PendingCapture != nil:
		return app.Intent{Kind: app.IntentCaptureDecision, Capture: app.CaptureDiscardAll}

	case view.DrawnCard != nil:
		if view.Ringo != nil {
			return app.Intent{
				Kind:        app.IntentRingo,
				InsertPos:   view.Ringo.InsertPos,
				Indices:     view.Ringo.Indices,
				Resolutions: view.Ringo.Resolutions,
			}
		}
		return app.Intent{
			Kind:      app.IntentInsertDrawn,
			InsertPos: domain.BestInsertPosition(hand, *view.DrawnCard, true),
		}

	default:
		moves := botinternal.GetValidMoves(hand, view.Combo)
		if len(moves) == 0 {
			return app.Intent{Kind: app.IntentDraw}
		}
		scored := botinternal.BuildScoredMoves(hand, moves, rolloutWeights, view.Combo.Size(), false)
		best := scored[0]
		for _, sm := range scored[1:] {
			if sm.Score > best.Score {
				best = sm
			}
		}
		return app.Intent{Kind: app.IntentPlay, Indices: best.Move.Indices, Resolutions: best.Move.Resolutions}
	}
}

// rolloutWeights is a flat, phase-free tuning good enough for stand-ins.
var rolloutWeights = botinternal.PhaseWeights{
	MessinessWeight:  1.0,
	GroupWeight:      0.6,
	HandSizePenalty:  1.0,
	ValueWeight:      0.1,
	SplitAmmoPenalty: 0.8,
	OversizePenalty:  0.6,
	FinishBonus:      1000,
}
