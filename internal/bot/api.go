package bot

import (
	"numclash/internal/domain"
)

// Move represents the decision made by the AI.
type Move struct {
	// Forfeit is set when the brain cannot produce a playable expression.
	Forfeit    bool
	Expression *domain.Expression
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	CalculateMove(hand *domain.Hand, target int) (Move, error)
}
