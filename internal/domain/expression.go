package domain

import (
	"strconv"
	"strings"
)

// Term is one numeric entry in an expression, optionally carrying the
// root modifier.
type Term struct {
	Value  float64
	Rooted bool
}

// Expression is an alternating sequence of numeric terms and binary
// operators. The structural invariant is
// len(Ops) == max(0, len(Terms)-1); callers enforce game legality.
type Expression struct {
	Terms []Term
	Ops   []Operator
}

// AddNumber appends a numeric term.
func (e *Expression) AddNumber(value float64, rooted bool) {
	e.Terms = append(e.Terms, Term{Value: value, Rooted: rooted})
}

// AddOperator appends a binary operator.
func (e *Expression) AddOperator(op Operator) {
	e.Ops = append(e.Ops, op)
}

// RemoveLast undoes the most recent addition: the trailing operator
// when the sequence currently expects a number, otherwise the trailing
// term.
func (e *Expression) RemoveLast() {
	if e.IsEmpty() {
		return
	}
	if e.ExpectingNumber() && len(e.Ops) > 0 {
		e.Ops = e.Ops[:len(e.Ops)-1]
		return
	}
	e.Terms = e.Terms[:len(e.Terms)-1]
}

// Clear resets the expression to empty.
func (e *Expression) Clear() {
	e.Terms = nil
	e.Ops = nil
}

// IsEmpty reports whether no terms have been added.
func (e *Expression) IsEmpty() bool {
	return len(e.Terms) == 0
}

// IsComplete reports whether the structural invariant holds with at
// least one term, i.e. the expression is evaluable.
func (e *Expression) IsComplete() bool {
	return len(e.Terms) > 0 && len(e.Ops) == len(e.Terms)-1
}

// ExpectingNumber reports whether the next legal addition is a term:
// true before the first number and after every operator.
func (e *Expression) ExpectingNumber() bool {
	return len(e.Terms) == len(e.Ops)
}

// Clone returns an independent copy; mutating the clone never affects
// the original.
func (e *Expression) Clone() *Expression {
	out := &Expression{}
	if len(e.Terms) > 0 {
		out.Terms = append([]Term(nil), e.Terms...)
	}
	if len(e.Ops) > 0 {
		out.Ops = append([]Operator(nil), e.Ops...)
	}
	return out
}

// String renders the expression for logs and reveal events.
func (e *Expression) String() string {
	var sb strings.Builder
	for i, t := range e.Terms {
		if i > 0 && i-1 < len(e.Ops) {
			sb.WriteString(" ")
			sb.WriteString(e.Ops[i-1].Symbol())
			sb.WriteString(" ")
		}
		if t.Rooted {
			sb.WriteString("sqrt(")
		}
		sb.WriteString(strconv.FormatFloat(t.Value, 'f', -1, 64))
		if t.Rooted {
			sb.WriteString(")")
		}
	}
	return sb.String()
}
