package domain

import (
	"fmt"
	"math"
)

// MsgInvalidExpression is the generic user-facing rejection text; the
// Detail field carries the internal reason for logs and tests.
const MsgInvalidExpression = "That expression cannot be played with this hand."

// ValidationResult reports whether an expression is legal for a hand.
type ValidationResult struct {
	IsValid bool
	Message string
	Detail  string
}

func invalid(detail string) ValidationResult {
	return ValidationResult{Message: MsgInvalidExpression, Detail: detail}
}

// Validate checks an expression against the hand's required card usage
// as an ordered pipeline, stopping at the first failing stage.
func Validate(e *Expression, h *Hand) ValidationResult {
	if e == nil || e.IsEmpty() {
		return invalid("expression is empty")
	}
	if !e.IsComplete() {
		return invalid(fmt.Sprintf("expression is incomplete: %d terms, %d operators", len(e.Terms), len(e.Ops)))
	}

	if res := checkNumberUsage(e, h); !res.IsValid {
		return res
	}

	roots := 0
	for _, t := range e.Terms {
		if t.Rooted {
			roots++
		}
	}
	if required := h.RequiredRoots(); roots != required {
		return invalid(fmt.Sprintf("root modifier used %d times, hand requires %d", roots, required))
	}

	multiplies := 0
	for _, op := range e.Ops {
		if op == OpMultiply {
			multiplies++
		}
	}
	if required := h.RequiredMultiplies(); multiplies != required {
		return invalid(fmt.Sprintf("multiply used %d times, hand requires %d", multiplies, required))
	}

	// Multiply is exempt: special cards govern it, and it is never on
	// the disable list itself.
	for _, op := range e.Ops {
		if op != OpMultiply && h.IsDisabled(op) {
			return invalid(fmt.Sprintf("operator %q is disabled this round", op.Symbol()))
		}
	}

	return ValidationResult{IsValid: true}
}

// checkNumberUsage verifies multiset equality between the expression's
// rounded term values and the hand's number cards, naming the first
// discrepancy found.
func checkNumberUsage(e *Expression, h *Hand) ValidationResult {
	held := make(map[int]int)
	for _, v := range h.NumberValues() {
		held[v]++
	}

	used := make(map[int]int)
	for _, t := range e.Terms {
		used[int(math.Round(t.Value))]++
	}

	for value, count := range used {
		if count > held[value] {
			return invalid(fmt.Sprintf("number %d used %d times, hand holds %d", value, count, held[value]))
		}
	}
	for value, count := range held {
		if used[value] < count {
			return invalid(fmt.Sprintf("number %d used %d times, hand holds %d", value, used[value], count))
		}
	}

	return ValidationResult{IsValid: true}
}
