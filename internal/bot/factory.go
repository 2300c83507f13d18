package bot

import (
	"fmt"
	"math/rand"
)

// BotLevel selects a strategy tier.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota
	BotLevelSmart
	BotLevelPerfect
)

// NewBrain creates a new AI brain based on the specified level.
// rng is only used by levels that make randomized mistakes.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	switch level {
	case BotLevelEasy:
		return &EasyBot{}, nil
	case BotLevelSmart:
		return &SmartBot{Rng: rng, Tuning: smartBotTuning}, nil
	case BotLevelPerfect:
		return &PerfectBot{}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}

// LevelFromDifficulty maps an identity difficulty string to a level,
// defaulting to the smart tier.
func LevelFromDifficulty(difficulty string) BotLevel {
	switch difficulty {
	case "easy":
		return BotLevelEasy
	case "perfect", "hard":
		return BotLevelPerfect
	default:
		return BotLevelSmart
	}
}
