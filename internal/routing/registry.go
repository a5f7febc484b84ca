// Package routing implements the sink registry: named groups of sink
// instances (including the reserved infra groups), the §4.6 routing
// decision table, and per-instance bounded delivery with backoff-then-drop.
package routing

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"wparse/internal/actor"
	"wparse/internal/metrics"
	"wparse/internal/wpl"
)

// Reserved infra group names.
const (
	GroupDefault = "default"
	GroupMiss    = "miss"
	GroupResidue = "residue"
	GroupError   = "error"
	GroupMonitor = "monitor"
)

// SinkChannelCap is the default bounded-queue capacity per sink instance.
const SinkChannelCap = 128

// TextFmt selects a sink group's wire format adapter.
type TextFmt int

const (
	FmtJSON TextFmt = iota
	FmtKV
	FmtRaw
)

// Backend is the async contract a concrete sink implementation fulfills.
// Implementations must be cancellation-safe: a canceled context may leave
// at most the in-flight record unacknowledged but must never corrupt state.
type Backend interface {
	SinkRecord(ctx context.Context, r *wpl.DataRecord) error
	SinkRecords(ctx context.Context, rs []*wpl.DataRecord) error
	SinkStr(ctx context.Context, s string) error
	SinkBytes(ctx context.Context, b []byte) error
	Stop(ctx context.Context) error
	Reconnect(ctx context.Context) error
}

// payload is the unit of work queued to a sink instance.
type payload struct {
	record *wpl.DataRecord
	str    string
	bytes  []byte
}

// SinkInstance owns one backend and its bounded delivery queue.
type SinkInstance struct {
	Name    string
	Group   string
	Backend Backend
	status  int32 // actor.Status
	queue   chan payload

	dropBudget    time.Duration
	backoffPolicy BackoffPolicy
}

// BackoffPolicy controls how long an enqueue blocks before the record is
// dropped and counted as an error.
type BackoffPolicy struct {
	MaxWait time.Duration
}

var DefaultBackoff = BackoffPolicy{MaxWait: 50 * time.Millisecond}

// NewSinkInstance builds an instance with the default bounded queue.
func NewSinkInstance(group, name string, backend Backend) *SinkInstance {
	return &SinkInstance{
		Name:          name,
		Group:         group,
		Backend:       backend,
		queue:         make(chan payload, SinkChannelCap),
		backoffPolicy: DefaultBackoff,
	}
}

func (si *SinkInstance) Status() actor.Status {
	return actor.Status(si.status)
}

func (si *SinkInstance) freeze() { si.status = int32(actor.Freezing) }
func (si *SinkInstance) ready()  { si.status = int32(actor.Ready) }

// enqueueRecord offers r to the instance's queue, applying the backoff
// policy on a full queue and dropping (counted as error) beyond MaxWait.
func (si *SinkInstance) enqueueRecord(r *wpl.DataRecord) {
	metrics.SinkQueueDepth.WithLabelValues(si.Group, si.Name).Set(float64(len(si.queue)))
	select {
	case si.queue <- payload{record: r}:
		return
	default:
	}
	timer := time.NewTimer(si.backoffPolicy.MaxWait)
	defer timer.Stop()
	select {
	case si.queue <- payload{record: r}:
	case <-timer.C:
		metrics.SinkDroppedTotal.WithLabelValues(si.Group, si.Name).Inc()
		metrics.RecordsOutcomeTotal.WithLabelValues(metrics.OutcomeError).Inc()
		logrus.WithFields(logrus.Fields{"component": "routing.sink", "group": si.Group, "sink": si.Name}).
			Warn("sink queue full beyond backoff budget; record dropped")
	}
}

func (si *SinkInstance) enqueueStr(s string) {
	select {
	case si.queue <- payload{str: s}:
	default:
		metrics.SinkDroppedTotal.WithLabelValues(si.Group, si.Name).Inc()
	}
}

// Run drains the instance's queue until Stop, calling the backend for each
// payload. It implements actor.Task.
func (si *SinkInstance) Run(cmds <-chan actor.Command) {
	ctx := context.Background()
	for {
		select {
		case cmd := <-cmds:
			switch cmd {
			case actor.Drain:
				si.freeze()
				si.drainRemaining(ctx)
			case actor.Stop:
				si.drainRemaining(ctx)
				_ = si.Backend.Stop(ctx)
				return
			case actor.Reconnect:
				_ = si.Backend.Reconnect(ctx)
			}
		case p, ok := <-si.queue:
			if !ok {
				return
			}
			si.deliver(ctx, p)
		case <-time.After(actor.IdleTick()):
		}
	}
}

func (si *SinkInstance) drainRemaining(ctx context.Context) {
	for {
		select {
		case p := <-si.queue:
			si.deliver(ctx, p)
		default:
			return
		}
	}
}

func (si *SinkInstance) deliver(ctx context.Context, p payload) {
	var err error
	switch {
	case p.record != nil:
		err = si.Backend.SinkRecord(ctx, p.record)
	case p.str != "":
		err = si.Backend.SinkStr(ctx, p.str)
	case p.bytes != nil:
		err = si.Backend.SinkBytes(ctx, p.bytes)
	}
	if err != nil {
		metrics.RecordsOutcomeTotal.WithLabelValues(metrics.OutcomeError).Inc()
		logrus.WithFields(logrus.Fields{"component": "routing.sink", "group": si.Group, "sink": si.Name}).
			WithError(err).Warn("sink delivery failed")
	}
}

// SinkGroup is an immutable-after-build named list of sink instances sharing
// one wire format.
type SinkGroup struct {
	Name      string
	Instances []*SinkInstance
	Fmt       TextFmt
}

// Fanout delivers r to every instance in the group (at-most-once handoff per
// instance; independent, unordered across instances).
func (g *SinkGroup) Fanout(r *wpl.DataRecord) {
	for _, inst := range g.Instances {
		inst.enqueueRecord(r)
	}
}

func (g *SinkGroup) FanoutStr(s string) {
	for _, inst := range g.Instances {
		inst.enqueueStr(s)
	}
}

// Registry owns the name → group mapping.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]*SinkGroup
}

func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]*SinkGroup)}
}

func (r *Registry) AddGroup(g *SinkGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[g.Name] = g
}

func (r *Registry) Group(name string) (*SinkGroup, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[name]
	return g, ok
}

// Spawn starts every instance across every registered group under the
// supplied task group.
func (r *Registry) Spawn(tg *actor.TaskGroup) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.groups {
		for _, inst := range g.Instances {
			tg.Spawn(inst)
		}
	}
}
