package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotIdentity is one entry of the configured bot pool.
type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Level       int    `json:"level"` // 1 (reflex) .. 4 (search)
	AvatarIndex int    `json:"avatar_index"`
}

var (
	botIdentities []BotIdentity
	botIDMap      map[string]bool
	botConfigMap  map[string]BotIdentity
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}

		if err := json.Unmarshal(data, &botIdentities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}

		botIDMap = make(map[string]bool)
		botConfigMap = make(map[string]BotIdentity)
		for _, identity := range botIdentities {
			if identity.UserID != "" {
				mapIdentity(identity)
			}
		}
	})
	return loadErr
}

func mapIdentity(identity BotIdentity) {
	botIDMap[identity.UserID] = true
	botConfigMap[identity.UserID] = identity
}

// ProvisionBots ensures bot accounts exist in the Nakama database and carry
// the is_bot metadata.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) error {
	var err error
	provisionOnce.Do(func() {
		for i := range botIdentities {
			identity := &botIdentities[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, authErr := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if authErr != nil {
				logger.Error("ProvisionBots: failed to authenticate bot %s: %v", identity.Username, authErr)
				if err == nil {
					err = fmt.Errorf("failed to authenticate bot %s: %w", identity.Username, authErr)
				}
				continue
			}

			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":       true,
				"level":        identity.Level,
				"avatar_index": identity.AvatarIndex,
			}
			authErr = nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", "")
			if authErr != nil {
				logger.Warn("ProvisionBots: failed to update bot account %s: %v", userID, authErr)
			}

			mapIdentity(*identity)
			logger.Info("ProvisionBots: bot %s (%s) ready at level %d", identity.DisplayName, userID, identity.Level)
		}
	})
	return err
}

// GetBotConfig returns the full identity configuration for a given bot ID.
func GetBotConfig(userID string) (BotIdentity, bool) {
	config, ok := botConfigMap[userID]
	return config, ok
}

// GetBotDisplayName returns the display name for a bot ID, or an empty
// string if not a bot.
func GetBotDisplayName(userID string) string {
	c, ok := botConfigMap[userID]
	if !ok {
		return ""
	}
	if c.DisplayName == "" {
		return c.Username
	}
	return c.DisplayName
}

// GetBotIdentity returns an identity for a bot by index (mod pool size).
// When no pool is loaded a synthetic identity is minted and registered, so
// IsBot and GetBotConfig still recognize the seat.
func GetBotIdentity(index int) BotIdentity {
	if len(botIdentities) == 0 {
		identity := BotIdentity{
			UserID:      fmt.Sprintf("bot-%d", index),
			Username:    fmt.Sprintf("bot_%d", index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
			Level:       int(BotLevelHeuristic),
		}
		if botIDMap == nil {
			botIDMap = make(map[string]bool)
			botConfigMap = make(map[string]BotIdentity)
		}
		if !botIDMap[identity.UserID] {
			mapIdentity(identity)
		}
		return identity
	}
	return botIdentities[index%len(botIdentities)]
}

// LevelFor maps an identity's configured level to a BotLevel, defaulting to
// the heuristic tier for out-of-range values.
func LevelFor(identity BotIdentity) BotLevel {
	if identity.Level < int(BotLevelReflex) || identity.Level > int(BotLevelSearch) {
		return BotLevelHeuristic
	}
	return BotLevel(identity.Level)
}

// IsBot reports whether the given user ID belongs to the bot pool.
func IsBot(userID string) bool {
	if botIDMap == nil {
		return false
	}
	return botIDMap[userID]
}
