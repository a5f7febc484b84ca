package wpl

import "testing"

func commonLogRule() *WplRule {
	return &WplRule{
		Name:       "r",
		Completion: true,
		Statements: []Statement{
			&FieldStmt{Type: TypeIP, Name: "ip"},
			&FieldStmt{Type: TypeIgnore, Params: map[string]string{"len": "2"}},
			&FieldStmt{Type: TypeTime, Name: "time"},
			&FieldStmt{Type: TypeChars, Name: "chars", Params: map[string]string{"quote": "\""}},
			&FieldStmt{Type: TypeIgnore, Params: map[string]string{"len": "1"}},
			&FieldStmt{Type: TypeDigit, Name: "digit"},
		},
	}
}

func TestS1FullScenario(t *testing.T) {
	rule := commonLogRule()
	rule.Completion = false // trailing \n would otherwise fail completion
	cur := NewCursor(`10.0.0.1  [01/Jan/2024:00:00:00 +0000] "hello" 42` + "\n")
	rec, _, err := Evaluate(rule, cur)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Fields) != 4 {
		t.Fatalf("expected 4 fields, got %d: %+v", len(rec.Fields), rec.Fields)
	}
	ip, _ := rec.Get("ip")
	if ip.String() != "10.0.0.1" {
		t.Fatalf("unexpected ip: %v", ip)
	}
	chars, _ := rec.Get("chars")
	if chars.Str != "hello" {
		t.Fatalf("unexpected chars: %v", chars)
	}
	digit, _ := rec.Get("digit")
	if digit.Int != 42 {
		t.Fatalf("unexpected digit: %v", digit)
	}
}

func TestS2LessData(t *testing.T) {
	rule := commonLogRule()
	cur := NewCursor("10.0.0.1 ") // truncated well before the timestamp
	_, _, err := Evaluate(rule, cur)
	if err == nil {
		t.Fatal("expected an error")
	}
	we, ok := err.(*WparseError)
	if !ok {
		t.Fatalf("expected *WparseError, got %T", err)
	}
	if we.Reason != ReasonLessData {
		t.Fatalf("expected ReasonLessData, got %v", we.Reason)
	}
}

func TestS3AltGroup(t *testing.T) {
	rule := &WplRule{
		Statements: []Statement{
			&GroupStmt{Kind: GroupAlt, Inner: [][]Statement{
				{&FieldStmt{Type: TypeDigit, Name: "d"}},
				{&FieldStmt{Type: TypeChars, Name: "c", Params: map[string]string{"quote": "\""}}},
			}},
		},
	}
	cur := NewCursor(`"mixed"`)
	rec, residue, err := Evaluate(rule, cur)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if residue != "" {
		t.Fatalf("expected full consumption, residue=%q", residue)
	}
	c, ok := rec.Get("c")
	if !ok || c.Str != "mixed" {
		t.Fatalf("expected chars field 'mixed', got %+v", rec.Fields)
	}
}

func TestS4OptGroup(t *testing.T) {
	rule := &WplRule{
		Statements: []Statement{
			&GroupStmt{Kind: GroupOpt, Inner: [][]Statement{
				{&FieldStmt{Type: TypeIP, Name: "ip"}},
			}},
			&FieldStmt{Type: TypeChars, Name: "c", Params: map[string]string{"quote": "'"}},
		},
	}
	cur := NewCursor(`'nonip'`)
	rec, _, err := Evaluate(rule, cur)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Fields) != 1 {
		t.Fatalf("expected only the chars field to be emitted, got %+v", rec.Fields)
	}
}

func TestS5EmptyInput(t *testing.T) {
	rule := commonLogRule()
	cur := NewCursor("")
	_, _, err := Evaluate(rule, cur)
	we, ok := err.(*WparseError)
	if !ok || we.Reason != ReasonEmpty {
		t.Fatalf("expected ReasonEmpty, got %v", err)
	}
}

func TestSomeOfRequiresOneCountableSuccess(t *testing.T) {
	rule := &WplRule{
		Statements: []Statement{
			&GroupStmt{Kind: GroupSomeOf, Inner: [][]Statement{
				{&GroupStmt{Kind: GroupOpt, Inner: [][]Statement{
					{&FieldStmt{Type: TypeIP, Name: "ip"}},
				}}},
			}},
		},
	}
	cur := NewCursor("notanip")
	_, _, err := Evaluate(rule, cur)
	if err == nil {
		t.Fatal("expected an error: only a trivial opt success occurred")
	}
}

func TestCompletionFlagRequiresEmptyResidue(t *testing.T) {
	rule := &WplRule{
		Completion: true,
		Statements: []Statement{
			&FieldStmt{Type: TypeDigit, Name: "d"},
		},
	}
	cur := NewCursor("42 trailing")
	_, _, err := Evaluate(rule, cur)
	we, ok := err.(*WparseError)
	if !ok || we.Reason != ReasonNotComplete {
		t.Fatalf("expected ReasonNotComplete, got %v", err)
	}
}
