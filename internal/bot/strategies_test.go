package bot

import (
	"math"
	"math/rand"
	"testing"

	"numclash/internal/domain"
)

func botHand(numbers []int, ops []domain.Operator, specials []domain.SpecialKind) *domain.Hand {
	h := domain.NewHand()
	for _, n := range numbers {
		h.AddCard(domain.NumberCard(n))
	}
	for _, op := range ops {
		h.AddCard(domain.OperatorCard(op))
	}
	for _, sp := range specials {
		h.AddCard(domain.SpecialCard(sp))
	}
	return h
}

func moveValue(t *testing.T, m Move) float64 {
	t.Helper()
	if m.Forfeit || m.Expression == nil {
		t.Fatalf("expected a playable move, got forfeit")
	}
	res := domain.Evaluate(m.Expression)
	if !res.OK {
		t.Fatalf("bot produced unevaluable expression %q: %s", m.Expression.String(), res.Message)
	}
	return res.Value
}

func TestEasyBotPlaysLeftToRightLayout(t *testing.T) {
	h := botHand([]int{4, 9, 2}, []domain.Operator{domain.OpSubtract, domain.OpAdd}, nil)

	b := &EasyBot{}
	move, err := b.CalculateMove(h, 50)
	if err != nil {
		t.Fatalf("CalculateMove: %v", err)
	}
	if move.Forfeit {
		t.Fatal("easy bot must not forfeit a playable hand")
	}
	if res := domain.Validate(move.Expression, h); !res.IsValid {
		t.Fatalf("easy bot move invalid: %s", res.Detail)
	}
	// 4 - 9 + 2, in held order.
	if v := moveValue(t, move); math.Abs(v-(-3)) > 1e-9 {
		t.Fatalf("value = %v, want -3", v)
	}
}

func TestPerfectBotHitsReachableTarget(t *testing.T) {
	h := botHand([]int{4, 5, 11}, []domain.Operator{domain.OpAdd, domain.OpSubtract, domain.OpDivide}, nil)

	b := &PerfectBot{}
	move, err := b.CalculateMove(h, 20)
	if err != nil {
		t.Fatalf("CalculateMove: %v", err)
	}
	if v := moveValue(t, move); math.Abs(v-20) > 1e-9 {
		t.Fatalf("value = %v, want exact 20", v)
	}
}

func TestPerfectBotHonorsSpecialCards(t *testing.T) {
	h := botHand([]int{9, 4, 2},
		[]domain.Operator{domain.OpAdd, domain.OpSubtract},
		[]domain.SpecialKind{domain.SpecialRoot, domain.SpecialForcedMultiply})

	b := &PerfectBot{}
	move, err := b.CalculateMove(h, 10)
	if err != nil {
		t.Fatalf("CalculateMove: %v", err)
	}
	if res := domain.Validate(move.Expression, h); !res.IsValid {
		t.Fatalf("move invalid: %s", res.Detail)
	}
}

func TestSmartBotAlwaysLegal(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	b := &SmartBot{Rng: rng, Tuning: smartBotTuning}

	for i := 0; i < 50; i++ {
		h := domain.DealHand(rng, domain.DefaultDealConfig())
		target := domain.DrawTarget(rng, domain.DefaultDealConfig())

		move, err := b.CalculateMove(h, target)
		if err != nil {
			t.Fatalf("deal %d: %v", i, err)
		}
		if move.Forfeit {
			t.Fatalf("deal %d: smart bot forfeited a dealt hand", i)
		}
		if res := domain.Validate(move.Expression, h); !res.IsValid {
			t.Fatalf("deal %d: move invalid: %s (%q)", i, res.Detail, move.Expression.String())
		}
	}
}

func TestSmartBotSettlesForCloseEnough(t *testing.T) {
	// 4 + 5 = 9 is already within the acceptable distance of the
	// target, so the smart tier takes the lazy layout without searching.
	h := botHand([]int{4, 5}, []domain.Operator{domain.OpAdd}, nil)

	b := &SmartBot{Rng: rand.New(rand.NewSource(1)), Tuning: smartBotTuning}
	move, err := b.CalculateMove(h, 10)
	if err != nil {
		t.Fatalf("CalculateMove: %v", err)
	}
	if v := moveValue(t, move); math.Abs(v-9) > 1e-9 {
		t.Fatalf("value = %v, want 9", v)
	}
}

func TestBotsForfeitEmptyHand(t *testing.T) {
	brains := map[string]Brain{
		"easy":    &EasyBot{},
		"smart":   &SmartBot{Rng: rand.New(rand.NewSource(1)), Tuning: smartBotTuning},
		"perfect": &PerfectBot{},
	}

	for name, b := range brains {
		t.Run(name, func(t *testing.T) {
			move, err := b.CalculateMove(domain.NewHand(), 10)
			if err != nil {
				t.Fatalf("CalculateMove: %v", err)
			}
			if !move.Forfeit {
				t.Fatal("expected forfeit for an empty hand")
			}
		})
	}
}

func TestNewBrainLevels(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	if _, err := NewBrain(BotLevelEasy, rng); err != nil {
		t.Fatalf("easy: %v", err)
	}
	if _, err := NewBrain(BotLevelSmart, rng); err != nil {
		t.Fatalf("smart: %v", err)
	}
	if _, err := NewBrain(BotLevelPerfect, rng); err != nil {
		t.Fatalf("perfect: %v", err)
	}
	if _, err := NewBrain(BotLevel(99), rng); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLevelFromDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want BotLevel
	}{
		{"easy", BotLevelEasy},
		{"smart", BotLevelSmart},
		{"perfect", BotLevelPerfect},
		{"hard", BotLevelPerfect},
		{"", BotLevelSmart},
		{"bogus", BotLevelSmart},
	}

	for _, tt := range tests {
		if got := LevelFromDifficulty(tt.in); got != tt.want {
			t.Fatalf("LevelFromDifficulty(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
