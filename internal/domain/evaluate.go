package domain

import "math"

// ZeroEpsilon is the tolerance below which a divisor counts as zero.
const ZeroEpsilon = 1e-9

// EvaluationResult carries the outcome of evaluating one expression.
// Internal marks consistency faults in the engine itself (never a
// player error); callers must exclude such candidates, not select them.
type EvaluationResult struct {
	OK       bool
	Value    float64
	Message  string
	Internal bool
}

func evalFailure(msg string) EvaluationResult {
	return EvaluationResult{Message: msg}
}

func evalFault(msg string) EvaluationResult {
	return EvaluationResult{Message: msg, Internal: true}
}

// Evaluate computes the numeric value of an expression using operator
// precedence. It is safe to call on unvalidated expressions: empties
// and structural gaps are rejected here as well.
func Evaluate(e *Expression) EvaluationResult {
	if e == nil || e.IsEmpty() {
		return evalFailure("empty expression")
	}
	if !e.IsComplete() {
		return evalFailure("incomplete expression")
	}

	// Pass 1: apply root modifiers.
	values := make([]float64, len(e.Terms))
	for i, t := range e.Terms {
		v := t.Value
		if t.Rooted {
			if v < 0 {
				return evalFailure("negative argument to unary root")
			}
			v = math.Sqrt(v)
		}
		values[i] = v
	}

	// Pass 2: dual-stack precedence evaluation. Popping while the top
	// operator binds at least as tightly keeps equal-precedence
	// operators left-to-right.
	operands := make([]float64, 0, len(values))
	operators := make([]Operator, 0, len(e.Ops))
	operands = append(operands, values[0])

	for i, op := range e.Ops {
		for len(operators) > 0 && operators[len(operators)-1].Precedence() >= op.Precedence() {
			if res := reduceTop(&operands, &operators); !res.OK {
				return res
			}
		}
		operators = append(operators, op)
		operands = append(operands, values[i+1])
	}

	for len(operators) > 0 {
		if res := reduceTop(&operands, &operators); !res.OK {
			return res
		}
	}

	return EvaluationResult{OK: true, Value: operands[0]}
}

// reduceTop pops one operator and two operands, applies, and pushes the
// result. An operand shortage is an engine defect, not a player error.
func reduceTop(operands *[]float64, operators *[]Operator) EvaluationResult {
	if len(*operands) < 2 {
		return evalFault("operand stack underflow")
	}
	op := (*operators)[len(*operators)-1]
	*operators = (*operators)[:len(*operators)-1]

	right := (*operands)[len(*operands)-1]
	left := (*operands)[len(*operands)-2]
	*operands = (*operands)[:len(*operands)-2]

	var value float64
	switch op {
	case OpAdd:
		value = left + right
	case OpSubtract:
		value = left - right
	case OpMultiply:
		value = left * right
	case OpDivide:
		if math.Abs(right) < ZeroEpsilon {
			return evalFailure("division by zero")
		}
		value = left / right
	}

	*operands = append(*operands, value)
	return EvaluationResult{OK: true}
}
