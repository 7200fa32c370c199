package nakama

import (
	"context"
	"encoding/json"

	"ringo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	statsCollection = "ringo_stats"
	statsKey        = "results"
)

// playerStats is the stored per-user record.
type playerStats struct {
	Games int `json:"games"`
	Wins  int `json:"wins"`
}

// NakamaStatsAdapter implements ports.StatsPort on Nakama's storage engine.
type NakamaStatsAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaStatsAdapter creates a new stats adapter.
func NewNakamaStatsAdapter(nk runtime.NakamaModule) *NakamaStatsAdapter {
	return &NakamaStatsAdapter{nk: nk}
}

// RecordResult increments games played for every participant and wins for the
// winner. Each user's record lives under their own storage owner so reads go
// through normal per-user storage permissions.
func (a *NakamaStatsAdapter) RecordResult(ctx context.Context, result ports.RoundResult) error {
	var writes []*runtime.StorageWrite
	for _, userID := range result.Participants {
		stats, version, err := a.read(ctx, userID)
		if err != nil {
			return err
		}
		stats.Games++
		if userID == result.WinnerID {
			stats.Wins++
		}
		value, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		writes = append(writes, &runtime.StorageWrite{
			Collection:      statsCollection,
			Key:             statsKey,
			UserID:          userID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  1, // owner read
			PermissionWrite: 0, // server only
		})
	}
	if len(writes) == 0 {
		return nil
	}
	_, err := a.nk.StorageWrite(ctx, writes)
	return err
}

func (a *NakamaStatsAdapter) read(ctx context.Context, userID string) (playerStats, string, error) {
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: statsCollection,
		Key:        statsKey,
		UserID:     userID,
	}})
	if err != nil {
		return playerStats{}, "", err
	}
	if len(objects) == 0 {
		return playerStats{}, "*", nil
	}
	var stats playerStats
	if err := json.Unmarshal([]byte(objects[0].Value), &stats); err != nil {
		return playerStats{}, "", err
	}
	return stats, objects[0].Version, nil
}

var _ ports.StatsPort = (*NakamaStatsAdapter)(nil)
