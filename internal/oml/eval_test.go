package oml

import (
	"testing"

	"wparse/internal/expr"
	"wparse/internal/wpl"
)

func TestBindingAndFmt(t *testing.T) {
	rec := &wpl.DataRecord{Fields: []wpl.DataField{{Name: "ip", Value: wpl.StrValue("10.0.0.1")}}}
	ops := []Operation{
		Binding{Target: "host", Value: DirectAccessor{Field: "ip"}},
		FmtOp{Target: "label", Parts: []FmtPart{
			{Literal: "host="},
			{Sub: EnvAccessor{Name: "host"}},
		}},
	}
	out, err := Evaluate(ops, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := out.Get("label")
	if !ok || v.Str != "host=10.0.0.1" {
		t.Fatalf("unexpected label field: %+v", out.Fields)
	}
}

func TestRecordOpWithKnowledgeQuery(t *testing.T) {
	rec := &wpl.DataRecord{Fields: []wpl.DataField{{Name: "ip", Value: wpl.StrValue("10.0.0.1")}}}
	calls := 0
	q := func(params map[string]string) (map[string]string, error) {
		calls++
		return map[string]string{"geo": "local"}, nil
	}
	ops := []Operation{
		RecordOp{Field: "ip", Query: q, Params: map[string]Accessor{"ip": DirectAccessor{Field: "ip"}}, ResultPrefix: "kb_"},
	}
	out, err := Evaluate(ops, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one query invocation, got %d", calls)
	}
	v, ok := out.Get("kb_geo")
	if !ok || v.Str != "local" {
		t.Fatalf("expected enriched kb_geo field, got %+v", out.Fields)
	}
}

func TestRecordOpQueryErrorYieldsEmptyEnrichment(t *testing.T) {
	rec := &wpl.DataRecord{Fields: []wpl.DataField{{Name: "ip", Value: wpl.StrValue("10.0.0.1")}}}
	q := func(params map[string]string) (map[string]string, error) {
		return nil, assertErr
	}
	ops := []Operation{
		RecordOp{Field: "ip", Query: q, ResultPrefix: "kb_"},
	}
	out, err := Evaluate(ops, rec)
	if err != nil {
		t.Fatalf("query errors must never propagate as OML failures: %v", err)
	}
	if len(out.Fields) != 1 {
		t.Fatalf("expected no enrichment fields appended on query error, got %+v", out.Fields)
	}
}

var assertErr = &RunError{Reason: ReasonFmtConv, Detail: "boom"}

func TestConditionOpGatesThen(t *testing.T) {
	rec := &wpl.DataRecord{Fields: []wpl.DataField{{Name: "code", Value: wpl.IntValue(500)}}}
	cond := ConditionOp{
		Expr: expr.NewCompare(expr.Ge, "code", wpl.IntValue(500)),
		Then: []Operation{FmtOp{Target: "alert", Parts: []FmtPart{{Literal: "1"}}}},
	}
	out, err := Evaluate([]Operation{cond}, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := out.Get("alert"); !ok || v.Str != "1" {
		t.Fatalf("expected Then to run when the condition holds, got %+v", out.Fields)
	}

	low := &wpl.DataRecord{Fields: []wpl.DataField{{Name: "code", Value: wpl.IntValue(200)}}}
	out, err = Evaluate([]Operation{cond}, low)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := out.Get("alert"); ok {
		t.Fatalf("expected Then to be skipped when the condition fails, got %+v", out.Fields)
	}
}
