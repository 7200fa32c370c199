package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"ringo/internal/app"
	"ringo/internal/bot"
	"ringo/internal/config"
	"ringo/internal/domain"
	"ringo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// matchLabel is the JSON label Nakama indexes for match listing queries.
type matchLabel struct {
	Open  int    `json:"open"`
	State string `json:"state"`
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats          [app.MaxSeats]string        `json:"seats"`            // Array of user IDs, empty string means seat is empty
	OwnerSeat      int                         `json:"owner_seat"`       // Seat index of the match owner
	LastWinnerSeat int                         `json:"last_winner_seat"` // Seat index of the winner of the last round
	Tick           int64                       `json:"tick"`             // Current tick of the match for turn-based logic
	Presences      map[string]runtime.Presence `json:"-"`                // Map UserId -> Presence for targeted messaging
	App            *app.Service                `json:"-"`                // Ringo app service with game logic
	Game           *domain.Game                `json:"-"`                // Current active round state (nil if in lobby)

	BotsEnabled          bool  `json:"bots_enabled"`            // Whether AI players are allowed
	BotMinDelay          int   `json:"bot_min_delay"`           // Min ticks a bot waits before acting
	BotMaxDelay          int   `json:"bot_max_delay"`           // Max ticks a bot waits before acting
	BotAutoFillDelay     int   `json:"bot_auto_fill_delay"`     // Ticks to wait before auto-filling with bots
	BotWaitUntil         int64 `json:"bot_wait_until"`          // Tick when the acting bot should move
	LastSinglePlayerTick int64 `json:"last_single_player_tick"` // Tick when a single player started waiting

	TurnDeadline  int64 `json:"turn_deadline"`  // Tick when the current actor forfeits the decision
	TimedRevision int64 `json:"timed_revision"` // Game revision the deadline was armed for
	Halted        bool  `json:"halted"`         // Set when the round state failed its integrity check; the match is torn down

	Brains map[string]bot.Brain `json:"-"` // Active bot decision makers
	Search *searchTask          `json:"-"` // In-flight asynchronous bot decision, if any
	Stats  ports.StatsPort      `json:"-"` // Round result persistence

	rng *rand.Rand
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" {
			count++
		}
	}
	return count
}

// GetConnectedHumanCount counts seats held by humans that still have a live presence.
func (ms *MatchState) GetConnectedHumanCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" || isBotUserId(seat) {
			continue
		}
		if _, ok := ms.Presences[seat]; ok {
			count++
		}
	}
	return count
}

// soleActiveSeat returns the one seat still playing on its own behalf after
// every other player in the round disconnected. Bot seats count as active, and
// a round never forfeits to a bot.
func soleActiveSeat(ms *MatchState, g *domain.Game) (int, bool) {
	seat, userID, count := -1, "", 0
	for _, p := range g.Players {
		if isBotUserId(p.UserID) {
			seat, userID, count = p.Seat, p.UserID, count+1
			continue
		}
		if _, ok := ms.Presences[p.UserID]; ok {
			seat, userID, count = p.Seat, p.UserID, count+1
		}
	}
	if count != 1 || len(g.Players) < 2 || isBotUserId(userID) {
		return -1, false
	}
	return seat, true
}

// noteApplyError flags the match for teardown when an intent left the round
// state corrupted. Any other rejection is recoverable and ignored here.
func (ms *MatchState) noteApplyError(err error) {
	if errors.Is(err, domain.ErrCorruptState) {
		ms.Halted = true
	}
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// seatOf returns the seat index a user occupies, or -1.
func seatOf(seats []string, userID string) int {
	for i, seatUserId := range seats {
		if seatUserId == userID {
			return i
		}
	}
	return -1
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	// Load bot identities and game tuning from the data folder
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}
	cfg := config.GetGameConfig()

	state := &MatchState{
		Tick:           time.Now().Unix(),
		Presences:      make(map[string]runtime.Presence),
		App:            app.NewService(nil),
		OwnerSeat:      -1,
		LastWinnerSeat: -1,
		Brains:         make(map[string]bot.Brain),
		Stats:          NewNakamaStatsAdapter(nk),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	// Tick rate is one per second, so delays configured in milliseconds are
	// rounded up to whole ticks.
	state.BotMinDelay = ticksFromMs(cfg.BotMinDelayMs)
	state.BotMaxDelay = ticksFromMs(cfg.BotMaxDelayMs)
	state.BotAutoFillDelay = cfg.BotAutoFillDelaySeconds
	state.BotsEnabled = true

	// Environment variables override file configuration per deployment.
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["ringo_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["ringo_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["ringo_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env["ringo_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotAutoFillDelay = i
		}
	}

	if state.BotMinDelay <= 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay < state.BotMinDelay {
		state.BotMaxDelay = state.BotMinDelay
	}
	if state.BotAutoFillDelay <= 0 {
		state.BotAutoFillDelay = 5
	}

	labelBytes, err := json.Marshal(matchLabel{Open: state.GetOpenSeatsCount(), State: "lobby"})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func ticksFromMs(ms int) int {
	if ms <= 0 {
		return 0
	}
	return (ms + 999) / 1000
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Returning players keep their seat mid-round.
	if seatOf(matchState.Seats[:], presence.GetUserId()) >= 0 {
		return state, true, ""
	}

	// Allow join if there is an empty seat OR a bot to replace (if round hasn't started)
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		if matchState.Game == nil {
			for _, seat := range matchState.Seats {
				if isBotUserId(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		if seatOf(matchState.Seats[:], p.GetUserId()) >= 0 {
			logger.Debug("MatchJoin: User %s reconnected to their seat.", p.GetUserId())
			continue
		}

		// Assign seat: Try empty seats first, then bots (if lobby)
		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}

		if !assigned && matchState.Game == nil {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, p.GetUserId(), i)
					delete(matchState.Brains, seatUserId)
					matchState.Seats[i] = p.GetUserId()
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", p.GetUserId())
			continue
		}
	}

	// Ensure owner seat is assigned to a human player only.
	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match. During an
// active round the seat is kept so the round can finish; the turn timer plays
// out the absentee's decisions. In the lobby the seat is freed.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		if matchState.Game != nil {
			continue
		}
		for i, seatUserId := range matchState.Seats {
			if seatUserId == p.GetUserId() {
				matchState.Seats[i] = ""
				logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)
				break
			}
		}
	}

	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
	}

	if g := matchState.Game; g != nil && g.Status == domain.StatusPlaying {
		if seat, ok := soleActiveSeat(matchState, g); ok {
			events, err := matchState.App.ForfeitRound(g, seat)
			if err != nil {
				logger.Error("MatchLeave: Could not forfeit round to seat %d: %v", seat, err)
			} else {
				logger.Info("MatchLeave: All opponents left, round forfeited to seat %d.", seat)
				for _, ev := range events {
					mh.dispatchEvent(ctx, matchState, dispatcher, logger, ev)
				}
			}
		}
	}

	if matchState.GetConnectedHumanCount() == 0 {
		logger.Info("MatchLeave: Terminating match with no connected humans.")
		matchState.cancelSearch()
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartRound:
			mh.handleStartRound(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCombo, OpDrawCard, OpPlayRingo, OpInsertDrawn, OpDiscardDrawn, OpCaptureDecision:
			mh.handleIntent(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.enforceTurnTimer(ctx, matchState, dispatcher, logger)

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	if matchState.Halted {
		logger.Error("MatchLoop: Terminating match after a game state integrity failure.")
		matchState.cancelSearch()
		return nil
	}

	return matchState
}

func (mh *matchHandler) handleStartRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := seatOf(state.Seats[:], senderID)

	logger.Info("StartRound: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if state.Game != nil && state.Game.Status == domain.StatusPlaying {
		mh.sendError(state, dispatcher, logger, senderID, 409, "round already in progress")
		return
	}
	if senderSeat != state.OwnerSeat {
		logger.Warn("StartRound: User %s tried to start round but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the owner can start the round")
		return
	}

	cfg := config.GetGameConfig()
	roundCfg := domain.RoundConfig{
		HandSize:     cfg.HandSize,
		SpecialCards: cfg.SpecialCards,
		TurnTimerSec: cfg.TurnDurationSeconds,
	}

	game, events, err := state.App.StartRound(state.Seats[:], state.LastWinnerSeat, roundCfg)
	if err != nil {
		logger.Error("StartRound: Failed to start round: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		return
	}

	state.Game = game
	state.TimedRevision = -1
	mh.ensureBrains(state, logger)

	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}

	logger.Info("StartRound: Round started with %d players.", len(game.Players))
}

func (mh *matchHandler) handleIntent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := seatOf(state.Seats[:], senderID)

	if state.Game == nil {
		logger.Warn("handleIntent: Round not started.")
		mh.sendError(state, dispatcher, logger, senderID, 409, "no active round")
		return
	}
	if senderSeat < 0 {
		mh.sendError(state, dispatcher, logger, senderID, 403, "not seated at this table")
		return
	}

	intent, err := intentFromMessage(msg.GetOpCode(), msg.GetData())
	if err != nil {
		logger.Warn("handleIntent: Bad payload from %s (op %d): %v", senderID, msg.GetOpCode(), err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	events, err := state.App.Apply(state.Game, senderSeat, intent)
	if err != nil {
		logger.Warn("handleIntent: User %s (seat %d) rejected %s: %v", senderID, senderSeat, intent.Kind, err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		state.noteApplyError(err)
		return
	}

	for _, ev := range events {
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}
}

// actorSeat names the seat the state machine is waiting on: the capture owner
// during a capture decision, otherwise the seat on turn.
func actorSeat(g *domain.Game) int {
	if g.Phase == domain.PhaseWaitingForCapture {
		return g.CaptureSeat
	}
	return g.Current().Seat
}

// enforceTurnTimer plays a safe default for a human actor that let the turn
// clock run out: draw when waiting for a play, discard the drawn card during a
// ringo check, discard all during a capture decision. Bots are excluded; they
// act on their own schedule.
func (mh *matchHandler) enforceTurnTimer(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	g := state.Game
	if g == nil || g.Status != domain.StatusPlaying || g.Config.TurnTimerSec <= 0 {
		return
	}
	if g.Revision != state.TimedRevision {
		state.TimedRevision = g.Revision
		state.TurnDeadline = state.Tick + int64(g.Config.TurnTimerSec)
		return
	}
	if state.Tick < state.TurnDeadline {
		return
	}

	seat := actorSeat(g)
	userID := state.Seats[seat]
	if isBotUserId(userID) {
		return
	}

	intent := defaultIntent(g)
	logger.Info("enforceTurnTimer: Seat %d (%s) timed out, applying %s", seat, userID, intent.Kind)

	events, err := state.App.Apply(g, seat, intent)
	if err != nil {
		// A draw can be refused when the pile is empty but a play exists.
		// Delegate the forced move to a reflex decision maker.
		fallback, ferr := bot.NewBrain(bot.BotLevelReflex, state.rng)
		if ferr == nil {
			view := app.Project(g, seat)
			if forced, derr := fallback.Decide(ctx, view, bot.ContextFor(view)); derr == nil {
				events, err = state.App.Apply(g, seat, forced)
			}
		}
	}
	if err != nil {
		logger.Error("enforceTurnTimer: Could not apply timeout default for seat %d: %v", seat, err)
		state.noteApplyError(err)
		return
	}
	for _, ev := range events {
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}
}

// defaultIntent is the forfeit action for each phase.
func defaultIntent(g *domain.Game) app.Intent {
	switch g.Phase {
	case domain.PhaseRingoCheck:
		return app.Intent{Kind: app.IntentDiscardDrawn}
	case domain.PhaseWaitingForCapture:
		return app.Intent{Kind: app.IntentCaptureDecision, Capture: app.CaptureDiscardAll}
	}
	return app.Intent{Kind: app.IntentDraw}
}

// eventOpCodes maps app event kinds to wire opcodes.
var eventOpCodes = map[app.EventKind]int64{
	app.EventRoundStarted:  OpRoundStarted,
	app.EventHandDealt:     OpHandDealt,
	app.EventComboPlayed:   OpComboPlayed,
	app.EventCardDrawn:     OpCardDrawn,
	app.EventDrawResolved:  OpDrawResolved,
	app.EventCaptureOffer:  OpCaptureOffer,
	app.EventCaptureChoice: OpCaptureChoice,
	app.EventPileClosed:    OpPileClosed,
	app.EventGameEnded:     OpGameEnded,
}

// dispatchEvent forwards one app event to connected clients and to every bot
// brain entitled to see it.
func (mh *matchHandler) dispatchEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	// Bots observe the same redacted stream as clients.
	for botID, brain := range state.Brains {
		if seatOf(state.Seats[:], botID) < 0 {
			continue
		}
		if len(ev.Recipients) == 0 || containsUser(ev.Recipients, botID) {
			brain.OnEvent(ev)
		}
	}

	if ev.Kind == app.EventGameEnded {
		mh.finishRound(ctx, state, dispatcher, logger, ev.Payload.(app.GameEndedPayload))
	}

	bytes, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected (e.g. they are
		// bots), we MUST NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

func containsUser(userIDs []string, userID string) bool {
	for _, id := range userIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// finishRound records the result, remembers the winner for the next lead and
// returns the match to the lobby.
func (mh *matchHandler) finishRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, payload app.GameEndedPayload) {
	state.cancelSearch()

	if state.Game != nil && state.Stats != nil {
		result := ports.RoundResult{
			MatchID: matchIDFrom(ctx),
			Reason:  string(payload.Reason),
		}
		for _, p := range state.Game.Players {
			if isBotUserId(p.UserID) {
				continue
			}
			result.Participants = append(result.Participants, p.UserID)
			if p.Seat == payload.WinnerSeat {
				result.WinnerID = p.UserID
			}
		}
		if len(result.Participants) > 0 {
			if err := state.Stats.RecordResult(ctx, result); err != nil {
				logger.Error("Failed to record round result: %v", err)
			}
		}
	}

	state.LastWinnerSeat = payload.WinnerSeat
	state.Game = nil
	mh.updateLabel(state, dispatcher, logger)
}

func matchIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	return id
}

// snapshotSeat is one seat in the lobby/table snapshot sent on join.
type snapshotSeat struct {
	UserID      string `json:"user_id"`
	Seat        int    `json:"seat"`
	IsOwner     bool   `json:"is_owner"`
	IsBot       bool   `json:"is_bot"`
	DisplayName string `json:"display_name"`
	HandCount   int    `json:"hand_count"`
}

// matchSnapshot is personalized per viewer: View carries that viewer's
// redacted projection when a round is active.
type matchSnapshot struct {
	Seats          []snapshotSeat `json:"seats"`
	OwnerSeat      int            `json:"owner_seat"`
	LastWinnerSeat int            `json:"last_winner_seat"`
	Tick           int64          `json:"tick"`
	View           *app.View      `json:"view,omitempty"`
}

// broadcastMatchState sends each connected presence its own snapshot. Views
// are projected per seat so no message ever carries another player's hand.
func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	var seats []snapshotSeat
	for i, userId := range state.Seats {
		if userId == "" {
			continue
		}

		displayName := userId
		if p, exists := state.Presences[userId]; exists {
			displayName = p.GetUsername()
		} else if name := bot.GetBotDisplayName(userId); name != "" {
			displayName = name
		}

		handCount := 0
		if state.Game != nil {
			if p := state.Game.PlayerBySeat(i); p != nil {
				handCount = len(p.Hand)
			}
		}

		seats = append(seats, snapshotSeat{
			UserID:      userId,
			Seat:        i,
			IsOwner:     i == state.OwnerSeat,
			IsBot:       isBotUserId(userId),
			DisplayName: displayName,
			HandCount:   handCount,
		})
	}

	for userID, presence := range state.Presences {
		snapshot := matchSnapshot{
			Seats:          seats,
			OwnerSeat:      state.OwnerSeat,
			LastWinnerSeat: state.LastWinnerSeat,
			Tick:           state.Tick,
		}
		if state.Game != nil {
			view := app.Project(state.Game, seatOf(state.Seats[:], userID))
			snapshot.View = &view
		}
		bytes, err := json.Marshal(snapshot)
		if err != nil {
			logger.Error("Failed to marshal match snapshot: %v", err)
			return
		}
		dispatcher.BroadcastMessage(OpMatchSnapshot, bytes, []runtime.Presence{presence}, nil, true)
	}
}

// gameErrorEvent is the unicast rejection payload.
type gameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// sendError sends a gameErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(gameErrorEvent{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal gameErrorEvent: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	matchState := "lobby"
	if state.Game != nil {
		matchState = "playing"
	}

	labelBytes, err := json.Marshal(matchLabel{Open: state.GetOpenSeatsCount(), State: matchState})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	if matchState, ok := state.(*MatchState); ok {
		matchState.cancelSearch()
	}
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
