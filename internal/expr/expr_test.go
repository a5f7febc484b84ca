package expr

import "testing"

type intValue int

func (i intValue) CompareWith(other Value, op Op) bool {
	o, ok := other.(intValue)
	if !ok {
		return false
	}
	switch op {
	case Eq:
		return i == o
	case Ne:
		return i != o
	case Gt:
		return i > o
	case Ge:
		return i >= o
	case Lt:
		return i < o
	case Le:
		return i <= o
	default:
		return false
	}
}

type mapCtx map[string]Value

func (m mapCtx) GetValue(name string) (Value, bool) {
	v, ok := m[name]
	return v, ok
}

func TestCompareAbsentVariableIsFalse(t *testing.T) {
	c := NewCompare(Eq, "missing", intValue(1))
	if c.Evaluate(mapCtx{}) {
		t.Fatal("expected false for absent variable")
	}
}

func TestCompareBasic(t *testing.T) {
	ctx := mapCtx{"x": intValue(5)}
	if !NewCompare(Gt, "x", intValue(1)).Evaluate(ctx) {
		t.Fatal("expected 5 > 1")
	}
	if NewCompare(Lt, "x", intValue(1)).Evaluate(ctx) {
		t.Fatal("expected 5 < 1 to be false")
	}
}

func TestLogicShortCircuit(t *testing.T) {
	ctx := mapCtx{"x": intValue(5)}
	left := NewCompare(Eq, "missing", intValue(1)) // false, absent
	right := NewCompare(Eq, "x", intValue(5))
	and := NewLogic(And, left, right)
	if and.Evaluate(ctx) {
		t.Fatal("And with false left must be false")
	}
	or := NewLogic(Or, right, left)
	if !or.Evaluate(ctx) {
		t.Fatal("Or with true left must be true")
	}
	not := NewLogic(Not, nil, right)
	if not.Evaluate(ctx) {
		t.Fatal("Not(true) must be false")
	}
}

func TestDisplaySymbolsDiffer(t *testing.T) {
	e := NewLogic(And, NewCompare(Eq, "a", intValue(1)), NewCompare(Gt, "b", intValue(2)))
	rust := Display(e, RustSymbols{})
	sql := Display(e, SQLSymbols{})
	if rust == sql {
		t.Fatal("expected different textual rendering between symbol providers")
	}
}
