package bot

import (
	"math/rand"
	"time"

	"numclash/internal/domain"
)

// Agent represents an autonomous bot player occupying a seat.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// NewAgent builds an agent for a provisioned bot identity, choosing the
// strategy tier from the identity's difficulty.
func NewAgent(userID string) (*Agent, error) {
	level := BotLevelSmart
	name := userID
	if identity, ok := GetBotConfig(userID); ok {
		level = LevelFromDifficulty(identity.Difficulty)
		if identity.DisplayName != "" {
			name = identity.DisplayName
		}
	}

	brain, err := NewBrain(level, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return nil, err
	}
	return &Agent{ID: userID, Name: name, Strategy: brain}, nil
}

// Play asks the agent to build an expression for its current hand.
func (a *Agent) Play(game *domain.Game) (Move, error) {
	player, ok := game.Players[a.ID]
	if !ok || player.Hand == nil {
		// Agent is not part of this game.
		return Move{Forfeit: true}, nil
	}

	move, err := a.Strategy.CalculateMove(player.Hand, game.Target)
	if err != nil {
		return Move{Forfeit: true}, err
	}
	return move, nil
}
