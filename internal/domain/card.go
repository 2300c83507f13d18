package domain

import "fmt"

// Operator identifies one of the four binary arithmetic operators.
type Operator int

const (
	OpAdd Operator = iota
	OpSubtract
	OpMultiply
	OpDivide
)

// Precedence returns the binding strength used by the evaluator.
// Multiply/Divide bind tighter than Add/Subtract.
func (o Operator) Precedence() int {
	switch o {
	case OpMultiply, OpDivide:
		return 2
	default:
		return 1
	}
}

// Symbol returns the display glyph for the operator.
func (o Operator) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "x"
	case OpDivide:
		return "/"
	}
	return "?"
}

// SpecialKind identifies a special card effect.
type SpecialKind int

const (
	// SpecialForcedMultiply requires one Multiply operator in the
	// submitted expression per card held.
	SpecialForcedMultiply SpecialKind = iota
	// SpecialRoot requires the non-negative square root to be applied
	// to one number term per card held.
	SpecialRoot
)

// Symbol returns the display glyph for the special effect.
func (k SpecialKind) Symbol() string {
	switch k {
	case SpecialForcedMultiply:
		return "x!"
	case SpecialRoot:
		return "sqrt"
	}
	return "?"
}

// CardKind discriminates the closed set of card variants.
type CardKind int

const (
	KindNumber CardKind = iota
	KindOperator
	KindSpecial
)

// Card is one card in a NumClash hand. The variant set is fixed, so a
// tagged struct with a kind discriminator replaces subclassing; only
// the field matching Kind is meaningful.
type Card struct {
	Kind     CardKind
	Value    int         // number cards: 0..10
	Op       Operator    // operator cards
	Special  SpecialKind // special cards
	Consumed bool
}

// NumberCard returns a number card holding the given value.
func NumberCard(value int) Card {
	return Card{Kind: KindNumber, Value: value}
}

// OperatorCard returns an operator card of the given kind.
func OperatorCard(op Operator) Card {
	return Card{Kind: KindOperator, Op: op}
}

// SpecialCard returns a special card of the given kind.
func SpecialCard(kind SpecialKind) Card {
	return Card{Kind: KindSpecial, Special: kind}
}

// Clone returns an independent copy with the consumed flag reset.
func (c Card) Clone() Card {
	out := c
	out.Consumed = false
	return out
}

// Label returns the display text for the card.
func (c Card) Label() string {
	switch c.Kind {
	case KindNumber:
		return fmt.Sprintf("%d", c.Value)
	case KindOperator:
		return c.Op.Symbol()
	case KindSpecial:
		return c.Special.Symbol()
	}
	return "?"
}
