package wpl

import "github.com/sirupsen/logrus"

// Evaluate drives rule's statements against cur starting at its current
// position, producing a DataRecord plus the residue (unconsumed tail). If
// rule.Completion is true, a non-empty residue after all statements fails
// with ReasonNotComplete.
func Evaluate(rule *WplRule, cur *Cursor) (*DataRecord, Residue, error) {
	if cur.AtEnd() {
		return nil, "", errEmpty()
	}
	rec := &DataRecord{}
	for _, stmt := range rule.Statements {
		if _, err := runStatement(stmt, cur, rec); err != nil {
			return nil, "", err
		}
	}
	residue := Residue(cur.Remaining())
	if rule.Completion && residue != "" {
		return nil, "", errNotComplete("")
	}
	return rec, residue, nil
}

// runStatement executes a single statement against cur, appending any
// emitted fields to rec. The returned bool is false for a statement whose
// success is trivial (an opt group that found nothing). Callers in this file
// discard it; some_of classifies bare opt branches itself in
// runSomeOfBranch.
func runStatement(stmt Statement, cur *Cursor, rec *DataRecord) (bool, error) {
	switch s := stmt.(type) {
	case *FieldStmt:
		return runField(s, cur, rec)
	case *GroupStmt:
		return runGroup(s, cur, rec)
	case *FunctionStmt:
		return runFunction(s, rec)
	default:
		return false, errParse("unknown statement kind", "")
	}
}

func runField(stmt *FieldStmt, cur *Cursor, rec *DataRecord) (bool, error) {
	start := cur.Pos()
	_, value, err := parseTyped(stmt, cur)
	if err != nil {
		cur.Reset(start)
		return false, err
	}
	raw := RawBytes([]byte(value.String()))
	for _, pf := range stmt.Pipe {
		out, perr := pf.Apply(raw)
		if perr != nil {
			cur.Reset(start)
			return false, errFormat(perr.Error(), "", FieldIndexDesc(stmt.Index))
		}
		raw = out
	}
	if len(stmt.Pipe) > 0 {
		value = StrValue(raw.AsString())
	}
	if stmt.Type != TypeIgnore && stmt.Name != "" {
		rec.Fields = append(rec.Fields, DataField{Name: stmt.Name, Value: value})
	} else if stmt.Type != TypeIgnore {
		rec.Fields = append(rec.Fields, DataField{Name: "", Value: value})
	}
	return true, nil
}

func runFunction(stmt *FunctionStmt, rec *DataRecord) (bool, error) {
	if len(rec.Fields) == 0 {
		return false, errParse("function pipe with no preceding field", "")
	}
	last := &rec.Fields[len(rec.Fields)-1]
	raw := RawBytes([]byte(last.Value.String()))
	out, err := stmt.Fn.Apply(raw)
	if err != nil {
		return false, errFormat(err.Error(), "", "")
	}
	last.Value = StrValue(out.AsString())
	return true, nil
}

func runGroup(g *GroupStmt, cur *Cursor, rec *DataRecord) (bool, error) {
	switch g.Kind {
	case GroupSeq:
		return runSeq(g, cur, rec)
	case GroupAlt:
		return runAlt(g, cur, rec)
	case GroupOpt:
		return runOpt(g, cur, rec)
	case GroupSomeOf:
		return runSomeOf(g, cur, rec)
	default:
		return false, errParse("unknown group kind", GroupIndexDesc(g.Index))
	}
}

// runBranch runs one ordered statement sequence atomically: all must
// succeed, or the cursor and any partial field emissions are rolled back.
func runBranch(branch []Statement, cur *Cursor, rec *DataRecord) error {
	start := cur.Pos()
	fieldStart := len(rec.Fields)
	for _, stmt := range branch {
		if _, err := runStatement(stmt, cur, rec); err != nil {
			cur.Reset(start)
			rec.Fields = rec.Fields[:fieldStart]
			return err
		}
	}
	return nil
}

func runSeq(g *GroupStmt, cur *Cursor, rec *DataRecord) (bool, error) {
	if len(g.Inner) == 0 {
		return true, nil
	}
	if err := runBranch(g.Inner[0], cur, rec); err != nil {
		return false, err
	}
	return true, nil
}

// runAlt tries each alternative in declaration order; the first success
// wins. The cursor resets between failed attempts.
func runAlt(g *GroupStmt, cur *Cursor, rec *DataRecord) (bool, error) {
	var lastErr error
	for _, branch := range g.Inner {
		start := cur.Pos()
		if err := runBranch(branch, cur, rec); err == nil {
			return true, nil
		} else {
			cur.Reset(start)
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = errFormat("empty alt group", "", GroupIndexDesc(g.Index))
	}
	return false, lastErr
}

// runOpt attempts its single branch once; failure succeeds trivially with no
// emitted fields and the cursor unchanged.
func runOpt(g *GroupStmt, cur *Cursor, rec *DataRecord) (bool, error) {
	if len(g.Inner) == 0 {
		return false, nil
	}
	start := cur.Pos()
	if err := runBranch(g.Inner[0], cur, rec); err != nil {
		cur.Reset(start)
		return false, nil
	}
	return true, nil
}

// runSomeOf attempts every alternative at most once, each continuing from
// wherever the cursor ended up after the previous attempt. A trivially
// succeeding opt branch does not count toward the "at least one succeeded"
// requirement.
func runSomeOf(g *GroupStmt, cur *Cursor, rec *DataRecord) (bool, error) {
	countable := false
	for _, branch := range g.Inner {
		start := cur.Pos()
		counts, err := runSomeOfBranch(branch, cur, rec)
		if err != nil {
			cur.Reset(start)
			continue
		}
		if counts {
			countable = true
		}
	}
	if !countable {
		logrus.WithField("component", "wpl.vm").Debug("some_of group had no counting success")
		return false, errFormat("no alternative succeeded", "", GroupIndexDesc(g.Index))
	}
	return true, nil
}

// runSomeOfBranch runs one some_of alternative; if the branch is itself a
// bare opt group, its success is not countable.
func runSomeOfBranch(branch []Statement, cur *Cursor, rec *DataRecord) (bool, error) {
	if len(branch) == 1 {
		if gs, ok := branch[0].(*GroupStmt); ok && gs.Kind == GroupOpt {
			// opt always succeeds trivially; it never counts toward
			// some_of's "at least one" requirement.
			_, _ = runGroup(gs, cur, rec)
			return false, nil
		}
	}
	if err := runBranch(branch, cur, rec); err != nil {
		return false, err
	}
	return true, nil
}
