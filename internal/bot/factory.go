package bot

import (
	"fmt"
	"math/rand"

	"ringo/internal/bot/brain"
)

// NewBrain creates a bot brain for the given level. The rng drives tie
// breaking and pacing jitter; a nil rng falls back to the global source.
// Options apply to the search tier only.
func NewBrain(level BotLevel, rng *rand.Rand, opts ...brain.Option) (Brain, error) {
	switch level {
	case BotLevelReflex:
		return &ReflexBot{rng: rng}, nil
	case BotLevelHeuristic:
		return &HeuristicBot{}, nil
	case BotLevelStrategic:
		return &StrategicBot{rng: rng}, nil
	case BotLevelSearch:
		return NewSearchBot(opts...), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
