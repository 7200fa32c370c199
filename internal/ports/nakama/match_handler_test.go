package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"ringo/internal/app"
	"ringo/internal/bot"
	"ringo/internal/domain"
	"ringo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// mockPresence satisfies runtime.Presence for seated test users.
type mockPresence struct {
	userID string
}

func (mp mockPresence) GetUserId() string                 { return mp.userID }
func (mp mockPresence) GetSessionId() string              { return "session-" + mp.userID }
func (mp mockPresence) GetNodeId() string                 { return "node" }
func (mp mockPresence) GetHidden() bool                   { return false }
func (mp mockPresence) GetPersistence() bool              { return true }
func (mp mockPresence) GetUsername() string               { return mp.userID }
func (mp mockPresence) GetStatus() string                 { return "" }
func (mp mockPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }

type broadcast struct {
	opCode     int64
	data       []byte
	recipients []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcasts   []broadcast
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcasts = append(md.broadcasts, broadcast{
		opCode:     opCode,
		data:       append([]byte(nil), data...),
		recipients: presences,
	})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

// mockMatchData wraps a presence into a client message for MatchLoop tests.
type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (md mockMatchData) GetOpCode() int64      { return md.opCode }
func (md mockMatchData) GetData() []byte       { return md.data }
func (md mockMatchData) GetReliable() bool     { return true }
func (md mockMatchData) GetReceiveTime() int64 { return 0 }

// mockStats records round results.
type mockStats struct {
	results []ports.RoundResult
}

func (ms *mockStats) RecordResult(ctx context.Context, result ports.RoundResult) error {
	ms.results = append(ms.results, result)
	return nil
}

func init() {
	// Load bot identities for testing.
	if err := bot.LoadIdentities("test_bot_identities.json"); err != nil {
		panic("Failed to load bot identities for tests: " + err.Error())
	}
}

// newPlayingState starts a round with the given seat occupants. Human user
// IDs get a live presence; bot IDs get a decision maker.
func newPlayingState(t *testing.T, seatUserIDs ...string) (*matchHandler, *MatchState) {
	t.Helper()

	handler := &matchHandler{}
	state := &MatchState{
		Presences:      make(map[string]runtime.Presence),
		App:            app.NewService(rand.New(rand.NewSource(1))),
		Brains:         make(map[string]bot.Brain),
		Stats:          &mockStats{},
		OwnerSeat:      -1,
		LastWinnerSeat: -1,
		BotMinDelay:    1,
		BotMaxDelay:    1,
		rng:            rand.New(rand.NewSource(2)),
	}
	for i, userID := range seatUserIDs {
		state.Seats[i] = userID
		if userID != "" && !isBotUserId(userID) {
			state.Presences[userID] = mockPresence{userID: userID}
			if state.OwnerSeat < 0 {
				state.OwnerSeat = i
			}
		}
	}

	game, _, err := state.App.StartRound(state.Seats[:], -1, domain.RoundConfig{
		HandSize:     5,
		SpecialCards: true,
		TurnTimerSec: 30,
	})
	if err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}
	state.Game = game
	state.TimedRevision = -1
	handler.ensureBrains(state, noopLogger{})

	return handler, state
}

func TestFindFirstHumanSeat(t *testing.T) {
	bot1 := bot.GetBotIdentity(0).UserID
	bot2 := bot.GetBotIdentity(1).UserID

	tests := []struct {
		name  string
		seats []string
		want  int
	}{
		{
			name:  "FirstHumanAfterBot",
			seats: []string{bot1, "user-1", "", "", ""},
			want:  1,
		},
		{
			name:  "AllBots",
			seats: []string{bot1, bot2, "", "", ""},
			want:  -1,
		},
		{
			name:  "AllEmpty",
			seats: []string{"", "", "", "", ""},
			want:  -1,
		},
		{
			name:  "FirstHumanIsSeatZero",
			seats: []string{"user-1", bot1, "user-2", "", ""},
			want:  0,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := findFirstHumanSeat(test.seats); got != test.want {
				t.Fatalf("findFirstHumanSeat() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestMatchLabel_Marshal(t *testing.T) {
	tests := []struct {
		name     string
		label    matchLabel
		expected string
	}{
		{
			name:     "LobbyState",
			label:    matchLabel{Open: 3, State: "lobby"},
			expected: `{"open":3,"state":"lobby"}`,
		},
		{
			name:     "PlayingState",
			label:    matchLabel{Open: 0, State: "playing"},
			expected: `{"open":0,"state":"playing"}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			payload, err := json.Marshal(test.label)
			if err != nil {
				t.Fatalf("Failed to marshal label: %v", err)
			}
			if string(payload) != test.expected {
				t.Errorf("Got %s, want %s", payload, test.expected)
			}
		})
	}
}

func TestIntentFromMessage(t *testing.T) {
	t.Run("Play", func(t *testing.T) {
		intent, err := intentFromMessage(OpPlayCombo, []byte(`{"indices":[2,3],"resolutions":{"7":5}}`))
		if err != nil {
			t.Fatalf("intentFromMessage() error = %v", err)
		}
		if intent.Kind != app.IntentPlay {
			t.Fatalf("Kind = %s, want %s", intent.Kind, app.IntentPlay)
		}
		if len(intent.Indices) != 2 || intent.Indices[0] != 2 || intent.Indices[1] != 3 {
			t.Fatalf("Indices = %v, want [2 3]", intent.Indices)
		}
		if intent.Resolutions[7] != 5 {
			t.Fatalf("Resolutions[7] = %d, want 5", intent.Resolutions[7])
		}
	})

	t.Run("DrawWithEmptyPayload", func(t *testing.T) {
		intent, err := intentFromMessage(OpDrawCard, nil)
		if err != nil {
			t.Fatalf("intentFromMessage() error = %v", err)
		}
		if intent.Kind != app.IntentDraw {
			t.Fatalf("Kind = %s, want %s", intent.Kind, app.IntentDraw)
		}
	})

	t.Run("Capture", func(t *testing.T) {
		intent, err := intentFromMessage(OpCaptureDecision, []byte(`{"action":"insert_one","card_id":12,"insert_pos":3}`))
		if err != nil {
			t.Fatalf("intentFromMessage() error = %v", err)
		}
		if intent.Kind != app.IntentCaptureDecision {
			t.Fatalf("Kind = %s, want %s", intent.Kind, app.IntentCaptureDecision)
		}
		if intent.Capture != app.CaptureInsertOne || intent.CardID != 12 || intent.InsertPos != 3 {
			t.Fatalf("Capture decision fields = %+v", intent)
		}
	})

	t.Run("UnknownOpcode", func(t *testing.T) {
		if _, err := intentFromMessage(99, nil); err == nil {
			t.Fatal("Expected error for unknown opcode")
		}
	})
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "NotYourTurn", err: app.ErrNotYourTurn, want: 403},
		{name: "WrappedNotYourTurn", err: fmt.Errorf("%w: seat 2", app.ErrNotYourTurn), want: 403},
		{name: "WrongPhase", err: app.ErrWrongPhase, want: 409},
		{name: "GameOver", err: app.ErrGameOver, want: 410},
		{name: "IllegalBeat", err: domain.ErrIllegalBeat, want: 422},
		{name: "EmptyPile", err: app.ErrEmptyDrawPile, want: 422},
		{name: "CorruptState", err: domain.ErrCorruptState, want: 500},
		{name: "Unclassified", err: errors.New("boom"), want: 400},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := errorCode(test.err); got != test.want {
				t.Fatalf("errorCode() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestProcessBots_AutoFillsSoloLobby(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := &MatchState{
		Seats:                [app.MaxSeats]string{"user-1", "", "", "", ""},
		Presences:            map[string]runtime.Presence{"user-1": mockPresence{userID: "user-1"}},
		Brains:               make(map[string]bot.Brain),
		BotAutoFillDelay:     2,
		LastSinglePlayerTick: 8,
		Tick:                 10,
		rng:                  rand.New(rand.NewSource(3)),
	}

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	botCount := 0
	for _, seat := range state.Seats {
		if isBotUserId(seat) {
			botCount++
		}
	}
	if botCount != app.MaxSeats-1 {
		t.Fatalf("Expected %d bots, got %d", app.MaxSeats-1, botCount)
	}
	if state.GetOpenSeatsCount() != 0 {
		t.Fatalf("Expected no open seats after auto-fill, got %d", state.GetOpenSeatsCount())
	}
	if state.LastSinglePlayerTick != 0 {
		t.Fatalf("Expected auto-fill timer reset, got %d", state.LastSinglePlayerTick)
	}
	if len(state.Brains) != botCount {
		t.Fatalf("Expected a decision maker per bot, got %d", len(state.Brains))
	}
	if dispatcher.labelUpdates == 0 || len(dispatcher.broadcasts) == 0 {
		t.Fatal("Expected match state broadcast and label update after auto-fill")
	}
}

func TestProcessBots_BotLeadsAfterDelay(t *testing.T) {
	botID := bot.GetBotIdentity(0).UserID
	handler, state := newPlayingState(t, botID, "user-1")
	dispatcher := &mockDispatcher{}
	state.Tick = 100

	// First pass arms the delay; the bot must not act yet.
	handler.processBots(context.Background(), state, dispatcher, noopLogger{})
	if state.Game.Revision != 0 {
		t.Fatalf("Bot acted before its delay elapsed (revision %d)", state.Game.Revision)
	}
	if state.BotWaitUntil == 0 {
		t.Fatal("Expected bot delay to be armed")
	}

	state.Tick = state.BotWaitUntil + 1
	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	if state.Game.Revision == 0 {
		t.Fatal("Expected the bot to act after its delay")
	}
	if len(dispatcher.broadcasts) == 0 {
		t.Fatal("Expected events to be broadcast after the bot acted")
	}
}

func TestEnforceTurnTimer_AppliesDefaultForAbsentHuman(t *testing.T) {
	handler, state := newPlayingState(t, "user-1", "user-2")
	dispatcher := &mockDispatcher{}
	state.Tick = 50

	// First pass arms the deadline for the current revision.
	handler.enforceTurnTimer(context.Background(), state, dispatcher, noopLogger{})
	if state.Game.Revision != 0 {
		t.Fatalf("Timer acted while arming (revision %d)", state.Game.Revision)
	}

	state.Tick = state.TurnDeadline + 1
	handler.enforceTurnTimer(context.Background(), state, dispatcher, noopLogger{})

	if state.Game.Revision != 1 {
		t.Fatalf("Expected one applied default intent, revision = %d", state.Game.Revision)
	}
	if state.Game.Phase != domain.PhaseRingoCheck {
		t.Fatalf("Expected timed-out seat to draw, phase = %s", state.Game.Phase)
	}
}

func TestCollectSearchResult_DiscardsStaleDecision(t *testing.T) {
	botID := bot.GetBotIdentity(3).UserID
	handler, state := newPlayingState(t, botID, "user-1")
	dispatcher := &mockDispatcher{}

	_, cancel := context.WithCancel(context.Background())
	result := make(chan searchResult, 1)
	result <- searchResult{intent: app.Intent{Kind: app.IntentDraw}}
	state.Search = &searchTask{
		userID:   botID,
		seat:     0,
		revision: 99, // does not match the live game
		cancel:   cancel,
		result:   result,
	}

	handler.collectSearchResult(context.Background(), state, dispatcher, noopLogger{})

	if state.Search != nil {
		t.Fatal("Expected the stale task to be cleared")
	}
	if state.Game.Revision != 0 {
		t.Fatalf("Stale decision was applied (revision %d)", state.Game.Revision)
	}
	if len(dispatcher.broadcasts) != 0 {
		t.Fatal("Expected no broadcasts from a discarded decision")
	}
}

func TestDispatchEvent_PrivatePayloadNotLeakedWhenRecipientOffline(t *testing.T) {
	handler, state := newPlayingState(t, "user-1", "user-2")
	dispatcher := &mockDispatcher{}

	ev := app.Event{
		Kind:       app.EventHandDealt,
		Payload:    app.HandDealtPayload{Seat: 0},
		Recipients: []string{"user-gone"},
	}
	handler.dispatchEvent(context.Background(), state, dispatcher, noopLogger{}, ev)

	if len(dispatcher.broadcasts) != 0 {
		t.Fatal("Private event to a disconnected recipient must not be broadcast")
	}
}

func TestBroadcastMatchState_RedactsOtherHands(t *testing.T) {
	handler, state := newPlayingState(t, "user-1", "user-2")
	dispatcher := &mockDispatcher{}

	handler.broadcastMatchState(state, dispatcher, noopLogger{})

	if len(dispatcher.broadcasts) != 2 {
		t.Fatalf("Expected one snapshot per presence, got %d", len(dispatcher.broadcasts))
	}
	for _, b := range dispatcher.broadcasts {
		if b.opCode != OpMatchSnapshot {
			t.Fatalf("Expected opcode %d, got %d", OpMatchSnapshot, b.opCode)
		}
		if len(b.recipients) != 1 {
			t.Fatalf("Expected unicast snapshot, got %d recipients", len(b.recipients))
		}
		viewer := b.recipients[0].GetUserId()

		var snapshot matchSnapshot
		if err := json.Unmarshal(b.data, &snapshot); err != nil {
			t.Fatalf("Failed to unmarshal snapshot: %v", err)
		}
		if snapshot.View == nil {
			t.Fatal("Expected a view for a seated player")
		}
		for _, sv := range snapshot.View.Seats {
			if sv.UserID == viewer {
				if len(sv.Hand) == 0 {
					t.Fatalf("Viewer %s should see their own hand", viewer)
				}
			} else if len(sv.Hand) != 0 {
				t.Fatalf("Viewer %s can see seat %d's hand", viewer, sv.Seat)
			}
		}
	}
}

func TestFinishRound_RecordsResultAndReturnsToLobby(t *testing.T) {
	handler, state := newPlayingState(t, "user-1", "user-2")
	dispatcher := &mockDispatcher{}
	stats := &mockStats{}
	state.Stats = stats

	handler.finishRound(context.Background(), state, dispatcher, noopLogger{}, app.GameEndedPayload{
		WinnerSeat: 1,
		Reason:     app.EndReasonWin,
	})

	if len(stats.results) != 1 {
		t.Fatalf("Expected one recorded result, got %d", len(stats.results))
	}
	result := stats.results[0]
	if result.WinnerID != "user-2" {
		t.Fatalf("WinnerID = %s, want user-2", result.WinnerID)
	}
	if len(result.Participants) != 2 {
		t.Fatalf("Expected 2 participants, got %d", len(result.Participants))
	}
	if state.Game != nil {
		t.Fatal("Expected the match to return to the lobby")
	}
	if state.LastWinnerSeat != 1 {
		t.Fatalf("LastWinnerSeat = %d, want 1", state.LastWinnerSeat)
	}
	if dispatcher.labelUpdates == 0 {
		t.Fatal("Expected a label update back to lobby")
	}
}

func TestMatchLoop_TerminatesOnIntegrityFailure(t *testing.T) {
	handler, state := newPlayingState(t, "user-1", "user-2")
	dispatcher := &mockDispatcher{}

	// Plant a duplicate of the current player's first hand card on top of
	// the pile. The next draw applies, fails the integrity check and must
	// bring the whole match down instead of playing on.
	g := state.Game
	seat := g.Current().Seat
	userID := state.Seats[seat]
	g.DrawPile = append(g.DrawPile, g.Players[seat].Hand[0])

	msg := mockMatchData{mockPresence: mockPresence{userID: userID}, opCode: OpDrawCard}
	out := handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{msg})

	if out != nil {
		t.Fatal("Expected the match to terminate after the integrity failure")
	}
	if g.Status != domain.StatusAborted {
		t.Fatalf("Game status = %s, want aborted", g.Status)
	}
	sawError := false
	for _, b := range dispatcher.broadcasts {
		if b.opCode == OpGameError {
			sawError = true
		}
	}
	if !sawError {
		t.Fatal("Expected a game error sent to the acting player")
	}
}

func TestMatchLeave_ForfeitsRoundToLastConnectedSeat(t *testing.T) {
	handler, state := newPlayingState(t, "user-1", "user-2")
	dispatcher := &mockDispatcher{}
	stats := &mockStats{}
	state.Stats = stats

	out := handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state,
		[]runtime.Presence{mockPresence{userID: "user-2"}})

	if out == nil {
		t.Fatal("Expected the match to stay alive for the remaining player")
	}
	if state.Game != nil {
		t.Fatal("Expected the round to end by forfeit")
	}
	if state.LastWinnerSeat != 0 {
		t.Fatalf("LastWinnerSeat = %d, want 0", state.LastWinnerSeat)
	}
	if len(stats.results) != 1 {
		t.Fatalf("Expected one recorded result, got %d", len(stats.results))
	}
	result := stats.results[0]
	if result.WinnerID != "user-1" || result.Reason != string(app.EndReasonForfeit) {
		t.Fatalf("result = %+v, want a forfeit win for user-1", result)
	}
	sawEnd := false
	for _, b := range dispatcher.broadcasts {
		if b.opCode == OpGameEnded {
			sawEnd = true
		}
	}
	if !sawEnd {
		t.Fatal("Expected a game ended broadcast")
	}
}
