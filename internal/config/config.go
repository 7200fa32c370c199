package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type GameConfig struct {
	HandSize            int  `json:"hand_size"`
	SpecialCards        bool `json:"special_cards"`
	TurnDurationSeconds int  `json:"turn_duration_seconds"`

	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a solo human lobby.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	BotMinDelayMs           int `json:"bot_min_delay_ms"`
	BotMaxDelayMs           int `json:"bot_max_delay_ms"`

	// Search budget for the strongest bot tier.
	SearchBudgetMs         int `json:"search_budget_ms"`
	SearchDeterminizations int `json:"search_determinizations"`
}

// Defaults returns the configuration used when no file is provided.
func Defaults() GameConfig {
	return GameConfig{
		HandSize:                7,
		SpecialCards:            true,
		TurnDurationSeconds:     30,
		BotAutoFillDelaySeconds: 10,
		BotMinDelayMs:           1000,
		BotMaxDelayMs:           3000,
		SearchBudgetMs:          700,
		SearchDeterminizations:  48,
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path. Missing
// fields keep their defaults.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c := Defaults()
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Defaults()
	}
	return *cfg
}
