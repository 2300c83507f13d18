package domain

import (
	"math"
	"testing"
)

func solveValue(t *testing.T, e *Expression) float64 {
	t.Helper()
	res := Evaluate(e)
	if !res.OK {
		t.Fatalf("solver returned unevaluable expression %q: %s", e.String(), res.Message)
	}
	return res.Value
}

func TestFindBestExpressionExactTarget(t *testing.T) {
	h := handWith([]int{4, 5, 11}, []Operator{OpAdd, OpSubtract, OpDivide}, nil)

	expr := FindBestExpression(h, 20)
	if res := Validate(expr, h); !res.IsValid {
		t.Fatalf("result invalid: %s", res.Detail)
	}
	if v := solveValue(t, expr); math.Abs(v-20) > 1e-9 {
		// 11 + 5 + 4 reaches the target exactly.
		t.Fatalf("value = %v, want 20 (expr %q)", v, expr.String())
	}
}

func TestFindBestExpressionRestrictsToHeldOperators(t *testing.T) {
	// No Multiply card and no forced multiply: the engine must not
	// reach for operators the hand does not hold.
	h := handWith([]int{4, 5, 2}, []Operator{OpAdd, OpSubtract, OpDivide}, nil)

	expr := FindBestExpression(h, 40)
	for _, op := range expr.Ops {
		if op == OpMultiply {
			t.Fatalf("multiply used without a forced-multiply card: %q", expr.String())
		}
	}
	if res := Validate(expr, h); !res.IsValid {
		t.Fatalf("result invalid: %s", res.Detail)
	}
}

func TestFindBestExpressionUsesAllSpecials(t *testing.T) {
	tests := []struct {
		name     string
		specials []SpecialKind
	}{
		{name: "OneRoot", specials: []SpecialKind{SpecialRoot}},
		{name: "OneForcedMultiply", specials: []SpecialKind{SpecialForcedMultiply}},
		{name: "RootAndForcedMultiply", specials: []SpecialKind{SpecialRoot, SpecialForcedMultiply}},
		{name: "TwoForcedMultiplies", specials: []SpecialKind{SpecialForcedMultiply, SpecialForcedMultiply}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handWith([]int{9, 4, 2}, []Operator{OpAdd, OpSubtract, OpDivide}, tt.specials)

			expr := FindBestExpression(h, 10)
			if res := Validate(expr, h); !res.IsValid {
				t.Fatalf("result invalid: %s", res.Detail)
			}

			roots, muls := 0, 0
			for _, term := range expr.Terms {
				if term.Rooted {
					roots++
				}
			}
			for _, op := range expr.Ops {
				if op == OpMultiply {
					muls++
				}
			}
			if roots != h.RequiredRoots() {
				t.Fatalf("roots used = %d, want %d", roots, h.RequiredRoots())
			}
			if muls != h.RequiredMultiplies() {
				t.Fatalf("multiplies used = %d, want %d", muls, h.RequiredMultiplies())
			}
		})
	}
}

func TestFindBestExpressionInfeasibleHands(t *testing.T) {
	tests := []struct {
		name string
		hand *Hand
	}{
		{
			name: "NoNumbers",
			hand: handWith(nil, []Operator{OpAdd}, nil),
		},
		{
			name: "TooManyForcedMultiplies",
			hand: handWith([]int{1, 2}, []Operator{OpAdd}, []SpecialKind{SpecialForcedMultiply, SpecialForcedMultiply}),
		},
		{
			name: "TooFewOperatorCards",
			hand: handWith([]int{1, 2, 3}, []Operator{OpAdd}, nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := FindBestExpression(tt.hand, 10)
			if !expr.IsEmpty() {
				t.Fatalf("expected empty expression, got %q", expr.String())
			}
		})
	}
}

func TestFindBestExpressionDisabledOperator(t *testing.T) {
	h := handWith([]int{8, 2}, []Operator{OpAdd, OpDivide}, nil)
	h.DisableOperator(OpAdd)

	expr := FindBestExpression(h, 4)
	if res := Validate(expr, h); !res.IsValid {
		t.Fatalf("result invalid: %s", res.Detail)
	}
	if v := solveValue(t, expr); math.Abs(v-4) > 1e-9 {
		// Only 8 / 2 remains reachable.
		t.Fatalf("value = %v, want 4", v)
	}
}

func TestFindBestExpressionDuplicateNumbers(t *testing.T) {
	h := handWith([]int{2, 2, 2}, []Operator{OpAdd, OpAdd}, nil)

	expr := FindBestExpression(h, 6)
	if v := solveValue(t, expr); math.Abs(v-6) > 1e-9 {
		t.Fatalf("value = %v, want 6", v)
	}
}

func TestFindBestExpressionDeterministic(t *testing.T) {
	h := handWith([]int{7, 3, 6}, []Operator{OpAdd, OpSubtract, OpDivide}, []SpecialKind{SpecialRoot})

	first := FindBestExpression(h, 12)
	for i := 0; i < 5; i++ {
		again := FindBestExpression(h, 12)
		if again.String() != first.String() {
			t.Fatalf("run %d differs: %q vs %q", i, again.String(), first.String())
		}
	}
}

func TestFindBestExpressionReturnsIndependentCopy(t *testing.T) {
	h := handWith([]int{4, 5}, []Operator{OpAdd}, nil)

	a := FindBestExpression(h, 9)
	b := FindBestExpression(h, 9)
	a.Clear()
	if b.IsEmpty() {
		t.Fatalf("results must not alias each other")
	}
}

func TestFallbackExpressionLayout(t *testing.T) {
	h := handWith([]int{4, 9, 2}, []Operator{OpSubtract}, []SpecialKind{SpecialRoot, SpecialForcedMultiply})

	e := FallbackExpression(h)
	if !e.IsComplete() {
		t.Fatalf("fallback should be structurally complete")
	}
	if !e.Terms[0].Rooted || e.Terms[1].Rooted || e.Terms[2].Rooted {
		t.Fatalf("root should land on the first number only")
	}
	if e.Ops[0] != OpMultiply {
		t.Fatalf("forced multiply should fill the first gap, got %v", e.Ops[0])
	}
	if e.Ops[1] != OpSubtract {
		t.Fatalf("held operator should fill the next gap, got %v", e.Ops[1])
	}
}

func TestFallbackExpressionDefaultsToAdd(t *testing.T) {
	h := handWith([]int{1, 2, 3}, nil, nil)

	e := FallbackExpression(h)
	if len(e.Ops) != 2 || e.Ops[0] != OpAdd || e.Ops[1] != OpAdd {
		t.Fatalf("exhausted operator cards should default to Add: %q", e.String())
	}
}
