package bot

import (
	"context"
	"errors"

	"ringo/internal/app"
	"ringo/internal/bot/brain"
)

// SearchBot is the strongest tier: belief-tracking plus determinized playout
// search. It is the only CPU-bound brain; the session layer runs its Decide
// off the single-writer path and revalidates the result before applying it.
type SearchBot struct {
	searcher *brain.Searcher
	mem      *brain.GameMemory
}

// NewSearchBot builds a search brain; options tune budget and sampling.
func NewSearchBot(opts ...brain.Option) *SearchBot {
	return &SearchBot{searcher: brain.NewSearcher(opts...)}
}

func (b *SearchBot) Decide(ctx context.Context, view app.View, pc PhaseContext) (app.Intent, error) {
	if b.mem == nil {
		b.mem = brain.NewMemory(view.Config, view.ViewerSeat, view.OwnHand())
	}
	b.mem.SyncVisible(view)

	intent, err := b.searcher.Search(ctx, view, b.mem)
	if errors.Is(err, brain.ErrNoCandidates) {
		// Nothing to weigh: only a draw (or stall resolution) remains.
		if pc == ContextTurn {
			return app.Intent{Kind: app.IntentDraw}, nil
		}
		return app.Intent{}, ErrUnhandledContext
	}
	if err != nil {
		return app.Intent{}, err
	}
	return intent, nil
}

func (b *SearchBot) OnEvent(ev app.Event) {
	switch ev.Payload.(type) {
	case app.RoundStartedPayload:
		// Belief state is per-round; a fresh deal starts a fresh belief.
		b.mem = nil
	default:
		if b.mem != nil {
			b.mem.Observe(ev)
		}
	}
}
