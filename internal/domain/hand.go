package domain

// Hand owns the cards available to one side for a round. It is built
// fresh each round by the dealer and treated as read-only once handed
// to the solver or validator.
type Hand struct {
	Numbers   []Card
	Operators []Card
	Specials  []Card

	disabled map[Operator]bool
}

// NewHand returns an empty hand.
func NewHand() *Hand {
	return &Hand{disabled: make(map[Operator]bool)}
}

// AddCard routes a card into the matching collection.
func (h *Hand) AddCard(c Card) {
	switch c.Kind {
	case KindNumber:
		h.Numbers = append(h.Numbers, c)
	case KindOperator:
		h.Operators = append(h.Operators, c)
	case KindSpecial:
		h.Specials = append(h.Specials, c)
	}
}

// Clear empties the hand for the next round.
func (h *Hand) Clear() {
	h.Numbers = nil
	h.Operators = nil
	h.Specials = nil
	h.disabled = make(map[Operator]bool)
}

// NumberValues returns the values of the held number cards in held
// order. The multiset of these values is exactly what a valid
// expression must use.
func (h *Hand) NumberValues() []int {
	values := make([]int, len(h.Numbers))
	for i, c := range h.Numbers {
		values[i] = c.Value
	}
	return values
}

// RequiredRoots returns how many root applications an expression built
// from this hand must contain.
func (h *Hand) RequiredRoots() int {
	count := 0
	for _, c := range h.Specials {
		if c.Special == SpecialRoot {
			count++
		}
	}
	return count
}

// RequiredMultiplies returns how many Multiply operators an expression
// built from this hand must contain.
func (h *Hand) RequiredMultiplies() int {
	count := 0
	for _, c := range h.Specials {
		if c.Special == SpecialForcedMultiply {
			count++
		}
	}
	return count
}

// AvailableOperators returns the kinds of the held, non-disabled base
// operator cards in held order. Each entry is an individually
// consumable card instance.
func (h *Hand) AvailableOperators() []Operator {
	ops := make([]Operator, 0, len(h.Operators))
	for _, c := range h.Operators {
		if h.disabled[c.Op] {
			continue
		}
		ops = append(ops, c.Op)
	}
	return ops
}

// DisableOperator marks an operator kind unusable for this round.
// Multiply is governed by special cards, never by the disable list.
func (h *Hand) DisableOperator(op Operator) {
	if op == OpMultiply {
		return
	}
	if h.disabled == nil {
		h.disabled = make(map[Operator]bool)
	}
	h.disabled[op] = true
}

// IsDisabled reports whether the operator kind is disabled.
func (h *Hand) IsDisabled(op Operator) bool {
	return h.disabled[op]
}

// DisabledOperators returns the disabled kinds in a fixed order.
func (h *Hand) DisabledOperators() []Operator {
	var out []Operator
	for _, op := range []Operator{OpAdd, OpSubtract, OpDivide} {
		if h.disabled[op] {
			out = append(out, op)
		}
	}
	return out
}

// Clone returns an independent copy of the hand with consumed flags
// reset on every card.
func (h *Hand) Clone() *Hand {
	out := NewHand()
	for _, c := range h.Numbers {
		out.Numbers = append(out.Numbers, c.Clone())
	}
	for _, c := range h.Operators {
		out.Operators = append(out.Operators, c.Clone())
	}
	for _, c := range h.Specials {
		out.Specials = append(out.Specials, c.Clone())
	}
	for op := range h.disabled {
		out.disabled[op] = true
	}
	return out
}
