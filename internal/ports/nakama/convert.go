package nakama

import (
	"fmt"

	"numclash/internal/domain"
)

// Wire DTOs exchanged with clients as JSON match data. Operators travel
// as their display symbols, specials as short names.

type WireTerm struct {
	Value  float64 `json:"value"`
	Rooted bool    `json:"rooted"`
}

type WireExpression struct {
	Terms []WireTerm `json:"terms"`
	Ops   []string   `json:"ops"`
}

type WireCard struct {
	Kind    string `json:"kind"` // "number", "operator", "special"
	Value   int    `json:"value,omitempty"`
	Op      string `json:"op,omitempty"`
	Special string `json:"special,omitempty"`
}

type WireHand struct {
	Numbers   []WireCard `json:"numbers"`
	Operators []WireCard `json:"operators"`
	Specials  []WireCard `json:"specials"`
	Disabled  []string   `json:"disabled,omitempty"`
}

func opToWire(op domain.Operator) string {
	return op.Symbol()
}

func opFromWire(s string) (domain.Operator, error) {
	switch s {
	case domain.OpAdd.Symbol():
		return domain.OpAdd, nil
	case domain.OpSubtract.Symbol():
		return domain.OpSubtract, nil
	case domain.OpMultiply.Symbol():
		return domain.OpMultiply, nil
	case domain.OpDivide.Symbol():
		return domain.OpDivide, nil
	default:
		return domain.OpAdd, fmt.Errorf("unknown operator symbol %q", s)
	}
}

func specialToWire(kind domain.SpecialKind) string {
	switch kind {
	case domain.SpecialRoot:
		return "root"
	case domain.SpecialForcedMultiply:
		return "multiply"
	default:
		return ""
	}
}

func specialFromWire(s string) (domain.SpecialKind, error) {
	switch s {
	case "root":
		return domain.SpecialRoot, nil
	case "multiply":
		return domain.SpecialForcedMultiply, nil
	default:
		return domain.SpecialRoot, fmt.Errorf("unknown special kind %q", s)
	}
}

func expressionToWire(e *domain.Expression) WireExpression {
	out := WireExpression{}
	if e == nil {
		return out
	}
	for _, term := range e.Terms {
		out.Terms = append(out.Terms, WireTerm{Value: term.Value, Rooted: term.Rooted})
	}
	for _, op := range e.Ops {
		out.Ops = append(out.Ops, opToWire(op))
	}
	return out
}

func expressionFromWire(w WireExpression) (*domain.Expression, error) {
	e := &domain.Expression{}
	for _, term := range w.Terms {
		e.AddNumber(term.Value, term.Rooted)
	}
	for _, s := range w.Ops {
		op, err := opFromWire(s)
		if err != nil {
			return nil, err
		}
		e.AddOperator(op)
	}
	return e, nil
}

func handToWire(h *domain.Hand) WireHand {
	out := WireHand{
		Numbers:   []WireCard{},
		Operators: []WireCard{},
		Specials:  []WireCard{},
	}
	if h == nil {
		return out
	}
	for _, c := range h.Numbers {
		out.Numbers = append(out.Numbers, WireCard{Kind: "number", Value: c.Value})
	}
	for _, c := range h.Operators {
		out.Operators = append(out.Operators, WireCard{Kind: "operator", Op: opToWire(c.Op)})
	}
	for _, c := range h.Specials {
		out.Specials = append(out.Specials, WireCard{Kind: "special", Special: specialToWire(c.Special)})
	}
	for _, op := range h.DisabledOperators() {
		out.Disabled = append(out.Disabled, opToWire(op))
	}
	return out
}
