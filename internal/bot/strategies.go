package bot

import (
	"math"
	"math/rand"

	"numclash/internal/domain"
)

// EasyBot plays the plain left-to-right layout without searching. It
// never breaks the table rules but rarely lands near the target.
type EasyBot struct{}

func (b *EasyBot) CalculateMove(hand *domain.Hand, target int) (Move, error) {
	if hand == nil || len(hand.Numbers) == 0 {
		return Move{Forfeit: true}, nil
	}

	expr := domain.FallbackExpression(hand)
	if expr.IsEmpty() {
		return Move{Forfeit: true}, nil
	}
	return Move{Expression: expr}, nil
}

// SmartBot searches like the top tier but deliberately leaves value on
// the table according to its tuning, so a practiced human can still
// out-play it.
type SmartBot struct {
	Rng    *rand.Rand
	Tuning BotTuning
}

func (b *SmartBot) CalculateMove(hand *domain.Hand, target int) (Move, error) {
	if hand == nil || len(hand.Numbers) == 0 {
		return Move{Forfeit: true}, nil
	}

	simple := domain.FallbackExpression(hand)
	if withinDistance(simple, target, b.Tuning.AcceptableDistance) {
		return Move{Expression: simple}, nil
	}
	if b.Rng != nil && b.Rng.Float64() < b.Tuning.MistakeChance {
		if !simple.IsEmpty() {
			return Move{Expression: simple}, nil
		}
	}

	expr := domain.FindBestExpression(hand, target)
	if expr.IsEmpty() {
		return Move{Forfeit: true}, nil
	}
	return Move{Expression: expr}, nil
}

// PerfectBot always plays the exhaustive-search result.
type PerfectBot struct{}

func (b *PerfectBot) CalculateMove(hand *domain.Hand, target int) (Move, error) {
	if hand == nil || len(hand.Numbers) == 0 {
		return Move{Forfeit: true}, nil
	}

	expr := domain.FindBestExpression(hand, target)
	if expr.IsEmpty() {
		return Move{Forfeit: true}, nil
	}
	return Move{Expression: expr}, nil
}

func withinDistance(expr *domain.Expression, target int, tolerance float64) bool {
	if expr == nil || expr.IsEmpty() {
		return false
	}
	res := domain.Evaluate(expr)
	if !res.OK {
		return false
	}
	return math.Abs(res.Value-float64(target)) <= tolerance
}
