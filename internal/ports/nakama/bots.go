package nakama

import (
	"context"
	"math/rand"
	"os"
	"time"

	"ringo/internal/app"
	"ringo/internal/bot"
	"ringo/internal/bot/brain"
	"ringo/internal/config"
	"ringo/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/rs/zerolog"
)

// searchLogger feeds search diagnostics to stderr alongside Nakama's own logs.
var searchLogger = zerolog.New(os.Stderr).With().Timestamp().Str("component", "bot_search").Logger()

// searchTask is one in-flight asynchronous bot decision. The match loop never
// blocks on it; the result is collected on a later tick and revalidated
// against the game revision it was computed for.
type searchTask struct {
	userID   string
	seat     int
	revision int64
	cancel   context.CancelFunc
	result   chan searchResult
}

type searchResult struct {
	intent app.Intent
	err    error
}

func (ms *MatchState) cancelSearch() {
	if ms.Search != nil {
		ms.Search.cancel()
		ms.Search = nil
	}
}

// newBrainFor builds the decision maker matching a bot identity's level.
func (ms *MatchState) newBrainFor(userID string) (bot.Brain, error) {
	identity, _ := bot.GetBotConfig(userID)
	level := bot.LevelFor(identity)

	var opts []brain.Option
	if level == bot.BotLevelSearch {
		cfg := config.GetGameConfig()
		opts = append(opts,
			brain.WithBudget(time.Duration(cfg.SearchBudgetMs)*time.Millisecond),
			brain.WithDeterminizations(cfg.SearchDeterminizations),
			brain.WithSeed(ms.rng.Uint64()),
			brain.WithLogger(searchLogger),
		)
	}

	return bot.NewBrain(level, rand.New(rand.NewSource(ms.rng.Int63())), opts...)
}

// ensureBrains creates a decision maker for every seated bot that lacks one.
func (mh *matchHandler) ensureBrains(state *MatchState, logger runtime.Logger) {
	for _, userID := range state.Seats {
		if userID == "" || !isBotUserId(userID) {
			continue
		}
		if _, ok := state.Brains[userID]; ok {
			continue
		}
		b, err := state.newBrainFor(userID)
		if err != nil {
			logger.Error("ensureBrains: Failed to create decision maker for %s: %v", userID, err)
			continue
		}
		state.Brains[userID] = b
	}
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill lobby with bots if there's only one human player after delay
	if state.Game == nil {
		humanCount := state.GetConnectedHumanCount()
		if humanCount == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				added := false
				for i, seat := range state.Seats {
					if seat == "" {
						identity := bot.GetBotIdentity(i)
						botID := identity.UserID
						state.Seats[i] = botID

						b, err := state.newBrainFor(botID)
						if err != nil {
							logger.Error("processBots: Failed to create decision maker for %s: %v", botID, err)
						} else {
							state.Brains[botID] = b
						}

						logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Username, botID, i)
						added = true
					}
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastMatchState(state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
	}

	// 2. Collect a finished asynchronous decision before scheduling anything new.
	mh.collectSearchResult(ctx, state, dispatcher, logger)

	// 3. Handle bot decisions in-game
	if state.Game == nil || state.Game.Status != domain.StatusPlaying {
		state.BotWaitUntil = 0
		return
	}

	g := state.Game
	seat := actorSeat(g)
	userID := state.Seats[seat]
	if !isBotUserId(userID) {
		state.BotWaitUntil = 0
		return
	}
	if state.Search != nil {
		// A decision for this turn is already being computed.
		return
	}

	if state.BotWaitUntil == 0 {
		delay := state.rng.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot %s (seat %d) will act at tick %d (current %d)", userID, seat, state.BotWaitUntil, state.Tick)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	b, exists := state.Brains[userID]
	if !exists {
		var err error
		b, err = state.newBrainFor(userID)
		if err != nil {
			logger.Error("processBots: Failed to create fallback decision maker: %v", err)
			return
		}
		state.Brains[userID] = b
	}

	identity, _ := bot.GetBotConfig(userID)
	if bot.LevelFor(identity) == bot.BotLevelSearch {
		mh.startSearch(ctx, state, logger, b, userID, seat)
		return
	}

	view := app.Project(g, seat)
	intent, err := b.Decide(ctx, view, bot.ContextFor(view))
	if err != nil {
		logger.Warn("processBots: Bot %s produced no decision (%v), using phase default", userID, err)
		intent = defaultIntent(g)
	}
	mh.applyBotIntent(ctx, state, dispatcher, logger, userID, seat, intent)
}

// startSearch launches a time-boxed decision off the match goroutine. The
// projection is taken synchronously so the worker never touches live state.
func (mh *matchHandler) startSearch(ctx context.Context, state *MatchState, logger runtime.Logger, b bot.Brain, userID string, seat int) {
	view := app.Project(state.Game, seat)
	pc := bot.ContextFor(view)

	searchCtx, cancel := context.WithCancel(context.Background())
	task := &searchTask{
		userID:   userID,
		seat:     seat,
		revision: state.Game.Revision,
		cancel:   cancel,
		result:   make(chan searchResult, 1),
	}
	state.Search = task

	logger.Debug("startSearch: Bot %s (seat %d) searching at revision %d", userID, seat, task.revision)

	go func() {
		intent, err := b.Decide(searchCtx, view, pc)
		task.result <- searchResult{intent: intent, err: err}
	}()
}

// collectSearchResult applies a finished asynchronous decision, discarding it
// when the game moved on while the search ran.
func (mh *matchHandler) collectSearchResult(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	task := state.Search
	if task == nil {
		return
	}

	select {
	case res := <-task.result:
		state.Search = nil
		task.cancel()

		g := state.Game
		if g == nil || g.Status != domain.StatusPlaying ||
			g.Revision != task.revision || actorSeat(g) != task.seat {
			logger.Debug("collectSearchResult: Discarding stale decision for %s (revision %d)", task.userID, task.revision)
			return
		}

		intent := res.intent
		if res.err != nil {
			logger.Warn("collectSearchResult: Bot %s search failed (%v), using phase default", task.userID, res.err)
			intent = defaultIntent(g)
		}
		mh.applyBotIntent(ctx, state, dispatcher, logger, task.userID, task.seat, intent)
	default:
		// Still computing.
	}
}

// applyBotIntent runs one bot decision through the same validation path as a
// client message, falling back to the phase default so a bad decision never
// stalls the table.
func (mh *matchHandler) applyBotIntent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, seat int, intent app.Intent) {
	events, err := state.App.Apply(state.Game, seat, intent)
	if err != nil {
		logger.Warn("applyBotIntent: Bot %s (seat %d) rejected %s: %v", userID, seat, intent.Kind, err)
		state.noteApplyError(err)
		if state.Halted {
			return
		}
		fallback := defaultIntent(state.Game)
		if fallback.Kind == intent.Kind {
			logger.Error("applyBotIntent: Bot %s default %s also rejected: %v", userID, fallback.Kind, err)
			return
		}
		events, err = state.App.Apply(state.Game, seat, fallback)
		if err != nil {
			logger.Error("applyBotIntent: Bot %s default %s also rejected: %v", userID, fallback.Kind, err)
			state.noteApplyError(err)
			return
		}
	}

	for _, ev := range events {
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}
}
