package oml

import (
	"fmt"
	"sort"
	"strings"

	"wparse/internal/expr"
	"wparse/internal/knowledge"
	"wparse/internal/wpl"
)

// Cache is the §4.5 single-flight knowledge cache fronting RecordOp queries,
// keyed by the canonicalized param set of a single lookup.
type Cache = knowledge.Cache[string, map[string]string]

// RunReasonKind enumerates OMLRunReason; currently a single kind, matching
// the interface this evaluator is built against.
type RunReasonKind int

const (
	ReasonFmtConv RunReasonKind = iota
)

// RunError is OMLRunError: a detail string tagged with a RunReasonKind.
type RunError struct {
	Reason RunReasonKind
	Detail string
}

func (e *RunError) Error() string { return "oml: " + e.Detail }

func fmtConvErr(detail string) *RunError { return &RunError{Reason: ReasonFmtConv, Detail: detail} }

// Accessor reads a string value out of the record/environment.
type Accessor interface {
	Eval(rec *wpl.DataRecord, env map[string]string) (string, bool)
}

// DirectAccessor reads rec.Get(Field).
type DirectAccessor struct{ Field string }

func (a DirectAccessor) Eval(rec *wpl.DataRecord, env map[string]string) (string, bool) {
	if v, ok := rec.Get(a.Field); ok {
		return v.String(), true
	}
	return "", false
}

// EnvAccessor reads a previously-bound OML variable.
type EnvAccessor struct{ Name string }

func (a EnvAccessor) Eval(rec *wpl.DataRecord, env map[string]string) (string, bool) {
	v, ok := env[a.Name]
	return v, ok
}

// LiteralAccessor returns a fixed constant.
type LiteralAccessor struct{ Value string }

func (a LiteralAccessor) Eval(rec *wpl.DataRecord, env map[string]string) (string, bool) {
	return a.Value, true
}

// DefaultAccessor reads Primary; on miss evaluates Default instead.
type DefaultAccessor struct {
	Primary Accessor
	Default Accessor
}

func (a DefaultAccessor) Eval(rec *wpl.DataRecord, env map[string]string) (string, bool) {
	if v, ok := a.Primary.Eval(rec, env); ok {
		return v, true
	}
	if a.Default != nil {
		return a.Default.Eval(rec, env)
	}
	return "", false
}

// QueryFunc looks up knowledge rows given named parameters, mirroring the
// knowledge cache's query function contract (internal/knowledge).
type QueryFunc func(params map[string]string) (map[string]string, error)

// Binding assigns Target = Accessor evaluated against the record/env.
type Binding struct {
	Target   string
	Value    Accessor
	PipeOps  []PipeOp
}

// RecordOp looks up Field in the record; on miss evaluates Default. If
// Query is set, it additionally invokes a knowledge lookup keyed by Params
// and appends each column of the resulting row to the record as a field
// named ResultPrefix+column.
type RecordOp struct {
	Field        string
	Default      Accessor
	Query        QueryFunc
	Params       map[string]Accessor
	ResultPrefix string
}

// FmtOp builds a string by interpolating Parts (literal text interleaved
// with sub-accessors) and assigns it to Target.
type FmtOp struct {
	Target string
	Parts  []FmtPart
}

type FmtPart struct {
	Literal string
	Sub     Accessor
}

// ConditionOp only runs its Then operations when Expr evaluates true against
// the record (reusing the expression core with an SQL symbol provider).
type ConditionOp struct {
	Expr expr.Expr
	Then []Operation
}

// Operation is any OML statement: Binding, RecordOp, FmtOp, ConditionOp.
type Operation interface {
	isOperation()
}

func (Binding) isOperation()      {}
func (RecordOp) isOperation()     {}
func (FmtOp) isOperation()        {}
func (ConditionOp) isOperation()  {}

// recordCtx adapts a DataRecord + env map into an expr.Context for
// ConditionOp evaluation.
type recordCtx struct {
	rec *wpl.DataRecord
	env map[string]string
}

func (c recordCtx) GetValue(name string) (expr.Value, bool) {
	if v, ok := c.rec.Get(name); ok {
		return v, true
	}
	if s, ok := c.env[name]; ok {
		return wpl.StrValue(s), true
	}
	return nil, false
}

// Evaluate runs ops against rec, returning a new DataRecord with any derived
// fields appended. It never panics on a failed knowledge query: per §4.5 a
// query error yields an empty result, not a propagated failure; only pipe
// (FmtConv) failures are returned as errors.
func Evaluate(ops []Operation, rec *wpl.DataRecord) (*wpl.DataRecord, error) {
	return EvaluateWithCache(ops, rec, nil)
}

// EvaluateWithCache is Evaluate, additionally fronting every RecordOp.Query
// call through cache so concurrent lookups for the same param set collapse
// into one query (§4.5). A nil cache falls back to calling Query directly.
func EvaluateWithCache(ops []Operation, rec *wpl.DataRecord, cache *Cache) (*wpl.DataRecord, error) {
	env := make(map[string]string)
	out := &wpl.DataRecord{MessageID: rec.MessageID, Origin: rec.Origin, Fields: append([]wpl.DataField{}, rec.Fields...)}
	for _, op := range ops {
		if err := runOp(op, out, env, cache); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// queryKey canonicalizes a param set into a stable cache key: params sorted
// by name and joined, so the same lookup always maps to the same key
// regardless of map iteration order.
func queryKey(params map[string]string) string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, k := range names {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
		b.WriteByte('\x1f')
	}
	return b.String()
}

func runOp(op Operation, rec *wpl.DataRecord, env map[string]string, cache *Cache) error {
	switch o := op.(type) {
	case Binding:
		v, ok := o.Value.Eval(rec, env)
		if !ok {
			return nil
		}
		converted, err := RunPipe(v, o.PipeOps)
		if err != nil {
			return fmtConvErr(err.Error())
		}
		env[o.Target] = converted
		return nil
	case RecordOp:
		v, ok := rec.Get(o.Field)
		val := ""
		if ok {
			val = v.String()
		} else if o.Default != nil {
			val, ok = o.Default.Eval(rec, env)
		}
		if !ok {
			return nil
		}
		env[o.Field] = val
		if o.Query != nil {
			params := make(map[string]string, len(o.Params))
			for k, acc := range o.Params {
				if pv, ok := acc.Eval(rec, env); ok {
					params[k] = pv
				}
			}
			var row map[string]string
			var err error
			if cache != nil {
				row = cache.Query(queryKey(params), func(string) (map[string]string, error) {
					return o.Query(params)
				})
			} else {
				row, err = o.Query(params)
			}
			if err != nil {
				row = nil // miss/error both yield empty enrichment, never a failure
			}
			for k, rv := range row {
				rec.Fields = append(rec.Fields, wpl.DataField{Name: o.ResultPrefix + k, Value: wpl.StrValue(rv)})
			}
		}
		return nil
	case FmtOp:
		var b strings.Builder
		for _, part := range o.Parts {
			b.WriteString(part.Literal)
			if part.Sub != nil {
				if v, ok := part.Sub.Eval(rec, env); ok {
					b.WriteString(v)
				}
			}
		}
		env[o.Target] = b.String()
		rec.Fields = append(rec.Fields, wpl.DataField{Name: o.Target, Value: wpl.StrValue(b.String())})
		return nil
	case ConditionOp:
		if o.Expr.Evaluate(recordCtx{rec: rec, env: env}) {
			for _, inner := range o.Then {
				if err := runOp(inner, rec, env, cache); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("oml: unknown operation %T", op)
	}
}
