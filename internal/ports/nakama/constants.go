package nakama

const (
	// RpcFindMatchID is the Nakama RPC id clients call to find or create a
	// lobby-capable match.
	RpcFindMatchID = "find_match"

	// MatchNameRingo is the authoritative match handler name registered with Nakama.
	MatchNameRingo = "ringo_match"

	// MatchLabelKey_OpenSeats is the label key carrying the open seat count.
	MatchLabelKey_OpenSeats = "open"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartRound      int64 = 1
	OpPlayCombo       int64 = 2
	OpDrawCard        int64 = 3
	OpPlayRingo       int64 = 4
	OpInsertDrawn     int64 = 5
	OpDiscardDrawn    int64 = 6
	OpCaptureDecision int64 = 7

	// Server -> Client events
	OpMatchSnapshot int64 = 101
	OpRoundStarted  int64 = 102
	OpHandDealt     int64 = 103 // send privately
	OpComboPlayed   int64 = 104
	OpCardDrawn     int64 = 105 // drawer gets the card, everyone else a pile count
	OpDrawResolved  int64 = 106
	OpCaptureOffer  int64 = 107
	OpCaptureChoice int64 = 108
	OpPileClosed    int64 = 109
	OpGameEnded     int64 = 110
	OpGameError     int64 = 120
)
