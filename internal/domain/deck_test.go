package domain

import (
	"math/rand"
	"testing"
)

func TestDealHandComposition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cfg := DefaultDealConfig()

	for i := 0; i < 200; i++ {
		h := DealHand(rng, cfg)

		if len(h.Numbers) != cfg.NumberCards {
			t.Fatalf("deal %d: %d number cards, want %d", i, len(h.Numbers), cfg.NumberCards)
		}
		if len(h.Operators) != cfg.OperatorCards {
			t.Fatalf("deal %d: %d operator cards, want %d", i, len(h.Operators), cfg.OperatorCards)
		}
		for _, c := range h.Numbers {
			if c.Value < 0 || c.Value > 10 {
				t.Fatalf("deal %d: number value %d out of range", i, c.Value)
			}
		}
		for _, c := range h.Operators {
			if c.Op == OpMultiply {
				t.Fatalf("deal %d: multiply must not appear as a base operator card", i)
			}
		}

		// Every deal must be solvable.
		slots := len(h.Numbers) - 1
		if m := h.RequiredMultiplies(); m > slots {
			t.Fatalf("deal %d: %d forced multiplies for %d slots", i, m, slots)
		}
		if slots-h.RequiredMultiplies() > len(h.AvailableOperators()) {
			t.Fatalf("deal %d: not enough usable operator cards", i)
		}
	}
}

func TestDealHandHandicapKeepsHandSolvable(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	cfg := DefaultDealConfig()
	cfg.HandicapChance = 1.0

	for i := 0; i < 100; i++ {
		h := DealHand(rng, cfg)
		if len(h.DisabledOperators()) != 1 {
			t.Fatalf("deal %d: expected exactly one disabled operator", i)
		}
		if len(h.AvailableOperators()) != len(h.Operators) {
			t.Fatalf("deal %d: dealt operator cards must avoid the disabled kind", i)
		}
	}
}

func TestDrawTargetRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	cfg := DealConfig{TargetMin: 5, TargetMax: 9}

	for i := 0; i < 100; i++ {
		target := DrawTarget(rng, cfg)
		if target < 5 || target > 9 {
			t.Fatalf("target %d out of [5,9]", target)
		}
	}

	degenerate := DealConfig{TargetMin: 4, TargetMax: 4}
	if got := DrawTarget(rng, degenerate); got != 4 {
		t.Fatalf("degenerate range target = %d, want 4", got)
	}
}
