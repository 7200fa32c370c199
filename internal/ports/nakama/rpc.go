package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"ringo/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// FindMatchResponse is the payload returned to clients when requesting a
// lobby-capable match.
type FindMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RpcFindMatch searches for an available match with open seats.
// If an available match is found, it returns the Match ID.
// If no match is found, it creates a new match and returns its ID.
func RpcFindMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userId, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	// Search for matches with at least one open seat.
	// +label.open means we are filtering on the "open" key in the JSON label.
	// :>=1 means the value must be greater than or equal to 1.
	limit := 1
	authoritative := true
	labelQuery := fmt.Sprintf("+label.%s:>=1", MatchLabelKey_OpenSeats)
	minSize := 0
	maxSize := app.MaxSeats

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, labelQuery)
	if err != nil {
		logger.Error("RpcFindMatch [User:%s]: Failed to list matches: %v", userId, err)
		return "", err
	}

	if len(matches) > 0 {
		matchId := matches[0].MatchId
		logger.Info("RpcFindMatch [User:%s]: Found existing match %s", userId, matchId)
		return marshalFindMatch(FindMatchResponse{MatchID: matchId, IsNew: false})
	}

	matchId, err := nk.MatchCreate(ctx, MatchNameRingo, nil)
	if err != nil {
		logger.Error("RpcFindMatch [User:%s]: Failed to create match: %v", userId, err)
		return "", err
	}

	logger.Info("RpcFindMatch [User:%s]: Created new match %s", userId, matchId)
	return marshalFindMatch(FindMatchResponse{MatchID: matchId, IsNew: true})
}

func marshalFindMatch(resp FindMatchResponse) (string, error) {
	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
