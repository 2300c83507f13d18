package domain

import "math/rand"

// DealConfig controls the composition of a dealt hand and the target
// range for a round.
type DealConfig struct {
	NumberCards   int
	OperatorCards int
	// SpecialChance is the probability, per draw slot, of adding one
	// special card of each kind (two slots per kind).
	SpecialChance float64
	// HandicapChance is the probability of disabling one base operator
	// kind for the round.
	HandicapChance float64
	TargetMin      int
	TargetMax      int
}

// DefaultDealConfig mirrors the standard table rules: three numbers,
// three operators, occasional specials, targets up to 50.
func DefaultDealConfig() DealConfig {
	return DealConfig{
		NumberCards:   3,
		OperatorCards: 3,
		SpecialChance: 0.25,
		TargetMin:     1,
		TargetMax:     50,
	}
}

// baseOperators are the kinds operator cards are drawn from. Multiply
// enters play only through forced-multiply special cards.
var baseOperators = []Operator{OpAdd, OpSubtract, OpDivide}

// DealHand draws a fresh hand from the given rng. The deal keeps hands
// solvable: forced multiplies never exceed the operator gaps, and when
// an operator kind is disabled the operator cards are drawn from the
// remaining kinds so enough usable cards exist.
func DealHand(rng *rand.Rand, cfg DealConfig) *Hand {
	h := NewHand()

	drawable := baseOperators
	if cfg.HandicapChance > 0 && rng.Float64() < cfg.HandicapChance {
		disabled := baseOperators[rng.Intn(len(baseOperators))]
		h.DisableOperator(disabled)
		drawable = make([]Operator, 0, len(baseOperators)-1)
		for _, op := range baseOperators {
			if op != disabled {
				drawable = append(drawable, op)
			}
		}
	}

	for i := 0; i < cfg.NumberCards; i++ {
		h.AddCard(NumberCard(rng.Intn(11)))
	}
	for i := 0; i < cfg.OperatorCards; i++ {
		h.AddCard(OperatorCard(drawable[rng.Intn(len(drawable))]))
	}

	slots := cfg.NumberCards - 1
	if slots < 0 {
		slots = 0
	}
	forced := 0
	for i := 0; i < 2; i++ {
		if forced < slots && rng.Float64() < cfg.SpecialChance {
			h.AddCard(SpecialCard(SpecialForcedMultiply))
			forced++
		}
	}
	for i := 0; i < 2; i++ {
		if rng.Float64() < cfg.SpecialChance {
			h.AddCard(SpecialCard(SpecialRoot))
		}
	}

	return h
}

// DrawTarget picks the round target within the configured range.
func DrawTarget(rng *rand.Rand, cfg DealConfig) int {
	span := cfg.TargetMax - cfg.TargetMin
	if span <= 0 {
		return cfg.TargetMin
	}
	return cfg.TargetMin + rng.Intn(span+1)
}
