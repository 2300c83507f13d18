package domain

import "testing"

func TestExpressionStructure(t *testing.T) {
	e := &Expression{}

	if !e.IsEmpty() {
		t.Fatalf("new expression should be empty")
	}
	if !e.ExpectingNumber() {
		t.Fatalf("empty expression should expect a number")
	}

	e.AddNumber(4, false)
	if e.ExpectingNumber() {
		t.Fatalf("should expect an operator after a number")
	}
	if !e.IsComplete() {
		t.Fatalf("single number is a complete expression")
	}

	e.AddOperator(OpAdd)
	if !e.ExpectingNumber() {
		t.Fatalf("should expect a number after an operator")
	}
	if e.IsComplete() {
		t.Fatalf("trailing operator should leave expression incomplete")
	}

	e.AddNumber(3, true)
	if !e.IsComplete() {
		t.Fatalf("number-op-number should be complete")
	}
}

func TestExpressionRemoveLast(t *testing.T) {
	e := &Expression{}
	e.AddNumber(4, false)
	e.AddOperator(OpSubtract)

	// Trailing operator goes first.
	e.RemoveLast()
	if len(e.Ops) != 0 || len(e.Terms) != 1 {
		t.Fatalf("expected operator removed, got %d terms %d ops", len(e.Terms), len(e.Ops))
	}

	// Then the number.
	e.RemoveLast()
	if !e.IsEmpty() {
		t.Fatalf("expected empty expression after removing last number")
	}

	// Removing from empty is a no-op.
	e.RemoveLast()
	if !e.IsEmpty() {
		t.Fatalf("remove on empty should be a no-op")
	}
}

func TestExpressionCloneIsolation(t *testing.T) {
	e := &Expression{}
	e.AddNumber(4, false)
	e.AddOperator(OpMultiply)
	e.AddNumber(3, true)

	clone := e.Clone()
	clone.AddOperator(OpAdd)
	clone.AddNumber(2, false)
	clone.Terms[0].Value = 99

	if len(e.Terms) != 2 || len(e.Ops) != 1 {
		t.Fatalf("original mutated by clone: %d terms %d ops", len(e.Terms), len(e.Ops))
	}
	if e.Terms[0].Value != 4 {
		t.Fatalf("original term mutated by clone: %v", e.Terms[0].Value)
	}
}

func TestExpressionString(t *testing.T) {
	e := &Expression{}
	e.AddNumber(4, false)
	e.AddOperator(OpMultiply)
	e.AddNumber(9, true)

	if got := e.String(); got != "4 x sqrt(9)" {
		t.Fatalf("String() = %q", got)
	}
}
