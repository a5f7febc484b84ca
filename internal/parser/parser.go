// Package parser implements the parser worker pool: actors that consume
// SourceBatches, run the WPL VM and optional OML enrichment, route outputs,
// and update stat counters, observing control commands between records.
package parser

import (
	"context"

	"github.com/sirupsen/logrus"

	"wparse/internal/actor"
	"wparse/internal/metrics"
	"wparse/internal/oml"
	"wparse/internal/routing"
	"wparse/internal/source"
	"wparse/internal/tracing"
	"wparse/internal/wpl"
)

// KnowledgeCache is the pool-wide §4.5 cache fronting OML RecordOp queries.
type KnowledgeCache = oml.Cache

// RuleBinding associates a source with the rule it is parsed by, its
// optional OML enrichment program, and its declared business sink group.
type RuleBinding struct {
	Rule  *wpl.WplRule
	OML   []oml.Operation
	Group string
}

// RuleResolver maps a batch's source id to the binding that should parse it.
type RuleResolver func(sourceID string) (*RuleBinding, bool)

// Pool is a set of parser worker actors sharing one input channel, sink
// registry, and stat record.
type Pool struct {
	In        <-chan *source.SourceBatch
	Resolve   RuleResolver
	Registry  *routing.Registry
	Stats     *routing.StatRecord
	Workers   int
	Tracer    *tracing.Manager // optional; nil disables span emission
	Knowledge *KnowledgeCache  // optional; nil disables single-flight collapse
}

func NewPool(in <-chan *source.SourceBatch, resolve RuleResolver, reg *routing.Registry, stats *routing.StatRecord, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{In: in, Resolve: resolve, Registry: reg, Stats: stats, Workers: workers}
}

// Spawn starts Workers worker actors under tg.
func (p *Pool) Spawn(tg *actor.TaskGroup) {
	for i := 0; i < p.Workers; i++ {
		tg.Spawn(&worker{id: i, pool: p})
	}
}

type worker struct {
	id   int
	pool *Pool
}

// Run implements actor.Task. It observes control commands only between
// records (not mid-record) for prompt shutdown.
func (w *worker) Run(cmds <-chan actor.Command) {
	logger := logrus.WithFields(logrus.Fields{"component": "parser.worker", "worker": w.id})
	stopping := false
	for {
		select {
		case cmd := <-cmds:
			if cmd == actor.Stop || cmd == actor.Drain {
				stopping = true
			}
		case batch, ok := <-w.pool.In:
			if !ok {
				return
			}
			w.processBatch(batch, logger)
			if stopping {
				return
			}
		}
		if stopping && len(w.pool.In) == 0 {
			return
		}
	}
}

func (w *worker) processBatch(batch *source.SourceBatch, logger *logrus.Entry) {
	w.pool.Stats.IncTask()
	binding, ok := w.pool.Resolve(batch.SourceID)
	if !ok {
		logger.WithField("source", batch.SourceID).Warn("no rule bound to source; dropping batch")
		return
	}
	for _, raw := range batch.Records {
		w.processRecord(raw, binding, logger)
	}
}

func (w *worker) processRecord(raw source.RawRecord, binding *RuleBinding, logger *logrus.Entry) {
	metrics.RecordsAdmittedTotal.Inc()
	w.pool.Stats.IncBegin()
	defer w.pool.Stats.IncEnd()

	var span *tracing.Span
	if w.pool.Tracer != nil {
		_, span = w.pool.Tracer.Start(context.Background(), "parser.process_record")
		span.SetString("rule", binding.Rule.Name)
		defer span.End()
	}

	cur := wpl.NewCursor(raw.String())
	rec, residue, err := wpl.Evaluate(binding.Rule, cur)
	if err != nil {
		if span != nil {
			span.RecordError(err)
		}
		outcome := routing.Dispatch(w.pool.Registry, binding.Group, nil, "", err, raw.String())
		w.pool.Stats.Record(outcome)
		return
	}

	if len(binding.OML) > 0 {
		enriched, omlErr := oml.EvaluateWithCache(binding.OML, rec, w.pool.Knowledge)
		if omlErr != nil {
			logger.WithError(omlErr).Warn("oml evaluation failed; routing parsed record without enrichment")
		} else {
			rec = enriched
		}
	}

	outcome := routing.Dispatch(w.pool.Registry, binding.Group, rec, residue, nil, "")
	if span != nil {
		span.SetString("outcome", outcome.String())
	}
	w.pool.Stats.Record(outcome)
}
