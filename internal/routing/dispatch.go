package routing

import (
	"wparse/internal/metrics"
	"wparse/internal/wpl"
)

// Outcome classifies a parse+route attempt for a single raw record, per
// §4.6's routing decision table.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeResidue
	OutcomeMiss
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeResidue:
		return "residue"
	case OutcomeMiss:
		return "miss"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Dispatch routes one parsed (or failed) record according to §4.6:
//   - success, no residue        -> business group (or default)
//   - success, non-empty residue -> BOTH business group (DataRecord) AND
//     `residue` group (the residue string) — the literal reading of the
//     routing table's "duplicate" wording (see SPEC_FULL.md §13, decision 3).
//   - LessData/Empty             -> `miss` group carries the raw record
//   - any other parse error      -> `error` group carries the raw record
//
// Observability counters always increment regardless of the outcome.
func Dispatch(reg *Registry, businessGroup string, rec *wpl.DataRecord, residue wpl.Residue, parseErr error, rawRecord string) Outcome {
	if parseErr != nil {
		return dispatchError(reg, parseErr, rawRecord)
	}
	if residue != "" {
		dispatchTo(reg, businessGroup, rec)
		dispatchResidue(reg, string(residue))
		metrics.RecordsOutcomeTotal.WithLabelValues(metrics.OutcomeResidue).Inc()
		return OutcomeResidue
	}
	dispatchTo(reg, businessGroup, rec)
	metrics.RecordsOutcomeTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	return OutcomeOK
}

func dispatchTo(reg *Registry, group string, rec *wpl.DataRecord) {
	name := group
	if name == "" {
		name = GroupDefault
	}
	if g, ok := reg.Group(name); ok {
		g.Fanout(rec)
		return
	}
	if g, ok := reg.Group(GroupDefault); ok {
		g.Fanout(rec)
	}
}

func dispatchResidue(reg *Registry, residue string) {
	if g, ok := reg.Group(GroupResidue); ok {
		g.FanoutStr(residue)
	}
}

func dispatchError(reg *Registry, parseErr error, rawRecord string) Outcome {
	we, ok := parseErr.(*wpl.WparseError)
	isDataShortage := ok && (we.Reason == wpl.ReasonLessData || we.Reason == wpl.ReasonEmpty)
	if isDataShortage {
		if g, ok := reg.Group(GroupMiss); ok {
			g.FanoutStr(rawRecord)
		}
		metrics.RecordsOutcomeTotal.WithLabelValues(metrics.OutcomeMiss).Inc()
		return OutcomeMiss
	}
	if g, ok := reg.Group(GroupError); ok {
		g.FanoutStr(rawRecord)
	}
	metrics.RecordsOutcomeTotal.WithLabelValues(metrics.OutcomeError).Inc()
	return OutcomeError
}
