package routing

import (
	"context"
	"sync"
	"testing"

	"wparse/internal/wpl"
)

// captureBackend records every payload handed to it, for assertions.
type captureBackend struct {
	mu      sync.Mutex
	records []*wpl.DataRecord
	strs    []string
}

func (c *captureBackend) SinkRecord(ctx context.Context, r *wpl.DataRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
	return nil
}
func (c *captureBackend) SinkRecords(ctx context.Context, rs []*wpl.DataRecord) error { return nil }
func (c *captureBackend) SinkStr(ctx context.Context, s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strs = append(c.strs, s)
	return nil
}
func (c *captureBackend) SinkBytes(ctx context.Context, b []byte) error { return nil }
func (c *captureBackend) Stop(ctx context.Context) error                { return nil }
func (c *captureBackend) Reconnect(ctx context.Context) error           { return nil }

func newTestRegistry() (*Registry, *captureBackend, *captureBackend) {
	reg := NewRegistry()
	biz := &captureBackend{}
	res := &captureBackend{}
	reg.AddGroup(&SinkGroup{Name: "business", Instances: []*SinkInstance{NewSinkInstance("business", "biz", biz)}})
	reg.AddGroup(&SinkGroup{Name: GroupResidue, Instances: []*SinkInstance{NewSinkInstance(GroupResidue, "res", res)}})
	reg.AddGroup(&SinkGroup{Name: GroupMiss, Instances: []*SinkInstance{NewSinkInstance(GroupMiss, "miss", &BlackHole{})}})
	reg.AddGroup(&SinkGroup{Name: GroupError, Instances: []*SinkInstance{NewSinkInstance(GroupError, "err", &BlackHole{})}})
	return reg, biz, res
}

func TestDispatchResidueDeliversBothRecordAndResidue(t *testing.T) {
	reg, biz, res := newTestRegistry()
	stats := &StatRecord{}
	rec := &wpl.DataRecord{Fields: []wpl.DataField{{Name: "a", Value: wpl.StrValue("v")}}}
	outcome := Dispatch(reg, "business", rec, wpl.Residue("leftover"), nil, "")
	stats.Record(outcome)
	if outcome != OutcomeResidue {
		t.Fatalf("expected OutcomeResidue, got %v", outcome)
	}
	if len(biz.records) != 1 {
		t.Fatalf("expected the business group to receive the DataRecord, got %d", len(biz.records))
	}
	if len(res.strs) != 1 || res.strs[0] != "leftover" {
		t.Fatalf("expected the residue group to receive the residue string, got %+v", res.strs)
	}
	if stats.Admitted() != 1 || stats.Residue != 1 {
		t.Fatalf("unexpected stat counters: %+v", stats)
	}
}

func TestDispatchPartitionsAdmittedExactly(t *testing.T) {
	reg, _, _ := newTestRegistry()
	stats := &StatRecord{}
	rec := &wpl.DataRecord{}
	stats.Record(Dispatch(reg, "business", rec, "", nil, ""))
	stats.Record(Dispatch(reg, "business", nil, "", &wpl.WparseError{Reason: wpl.ReasonEmpty}, "raw"))
	stats.Record(Dispatch(reg, "business", nil, "", &wpl.WparseError{Reason: wpl.ReasonFormatError}, "raw2"))
	if stats.Admitted() != stats.OK+stats.Miss+stats.Residue+stats.Error {
		t.Fatal("admitted must equal the sum of the four outcome counters")
	}
	if stats.Admitted() != 3 {
		t.Fatalf("expected 3 admitted records, got %d", stats.Admitted())
	}
}
