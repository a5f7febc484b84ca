// Package metrics registers the Prometheus counters/gauges that observe the
// data plane: per-record outcome counters, knowledge cache hit/miss, sink
// queue depth, and NODELAY toggle frequency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsAdmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wparse_records_admitted_total",
		Help: "Total raw records admitted to the parser pool.",
	})

	RecordsOutcomeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wparse_records_outcome_total",
		Help: "Per-record outcome counters: ok, miss, residue, error.",
	}, []string{"outcome"})

	KnowledgeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wparse_knowledge_cache_lookups_total",
		Help: "Knowledge cache lookups by result: hit, miss, error.",
	}, []string{"result"})

	SinkQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wparse_sink_queue_depth",
		Help: "Current occupancy of a sink instance's bounded outbound queue.",
	}, []string{"group", "sink"})

	SinkDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wparse_sink_dropped_total",
		Help: "Records dropped at a sink instance after exceeding the backoff budget.",
	}, []string{"group", "sink"})

	NodelayToggleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wparse_nodelay_toggle_total",
		Help: "TCP_NODELAY state changes by connection and direction.",
	}, []string{"connection", "direction"})

	ParserChannelOccupancy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wparse_parser_channel_occupancy_ratio",
		Help: "Parser batch channel occupancy as a fraction of capacity.",
	})

	SourceBatchCoalescedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wparse_source_batch_coalesced_total",
		Help: "Source batches merged due to high parser-channel occupancy.",
	}, []string{"source"})
)

// Outcome labels used with RecordsOutcomeTotal, matching §4.6's routing
// decision table.
const (
	OutcomeOK      = "ok"
	OutcomeMiss    = "miss"
	OutcomeResidue = "residue"
	OutcomeError   = "error"
)
