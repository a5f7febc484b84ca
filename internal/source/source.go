// Package source implements the source worker actor: per-connector actors
// that assemble raw records into batches under watermark-aware pull policy
// (small-batch coalescence above 80% parser-channel occupancy, early stop
// above 95%).
package source

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"wparse/internal/actor"
	"wparse/internal/metrics"
)

// Occupancy thresholds from §4.7.
const (
	CoalesceHighWaterPct = 0.80
	EarlyStopPct         = 0.95
)

// Default batch/channel capacities from §4.7.
const (
	DefaultBatchSize       = 64
	ParserChannelCapacity  = 512
	TCPReaderBatchCapacity = 64
)

// RawRecord is one of {owned string, owned bytes, shared bytes}.
type RawRecord struct {
	Str   string
	Bytes []byte
}

func (r RawRecord) String() string {
	if r.Str != "" {
		return r.Str
	}
	return string(r.Bytes)
}

// SourceBatch is an ordered sequence of RawRecord tagged with source
// identity, a monotonic sequence id, and a collection timestamp.
type SourceBatch struct {
	SourceID  string
	SeqID     uint64
	Collected time.Time
	Records   []RawRecord
}

// Connector produces raw records for one source worker to assemble into
// batches. Pull returns ok=false when no record is immediately available.
type Connector interface {
	Pull(ctx context.Context) (RawRecord, bool, error)
	Close() error
}

// Occupancy reports the current fraction [0,1] of the downstream parser
// channel's capacity that is occupied.
type Occupancy func() float64

// Worker is one source actor: it pulls from Connector, batches records, and
// submits completed SourceBatches to Out.
type Worker struct {
	SourceID  string
	Connector Connector
	Out       chan<- *SourceBatch
	Occupancy Occupancy
	BatchSize int

	seq uint64
}

func NewWorker(sourceID string, c Connector, out chan<- *SourceBatch, occ Occupancy) *Worker {
	return &Worker{SourceID: sourceID, Connector: c, Out: out, Occupancy: occ, BatchSize: DefaultBatchSize}
}

// Run implements actor.Task: pull records, apply the batching/backpressure
// policy, and submit batches until Stop is observed.
func (w *Worker) Run(cmds <-chan actor.Command) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := logrus.WithFields(logrus.Fields{"component": "source.worker", "source": w.SourceID})

	var pending *SourceBatch
	for {
		select {
		case cmd := <-cmds:
			switch cmd {
			case actor.Stop, actor.Drain:
				if pending != nil && len(pending.Records) > 0 {
					w.submit(pending)
				}
				_ = w.Connector.Close()
				return
			}
		default:
		}

		occ := 0.0
		if w.Occupancy != nil {
			occ = w.Occupancy()
		}
		metrics.ParserChannelOccupancy.Set(occ)

		if occ > EarlyStopPct {
			logger.Debug("parser channel above early-stop watermark; pausing pull")
			time.Sleep(actor.IdleTick())
			continue
		}

		rec, ok, err := w.Connector.Pull(ctx)
		if err != nil {
			logger.WithError(err).Warn("connector pull failed")
			time.Sleep(actor.IdleTick())
			continue
		}
		if !ok {
			if pending != nil && len(pending.Records) > 0 {
				w.submit(pending)
				pending = nil
			}
			time.Sleep(actor.IdleTick())
			continue
		}

		if pending == nil {
			pending = w.newBatch()
		}
		pending.Records = append(pending.Records, rec)

		full := len(pending.Records) >= w.batchSize()
		coalesce := occ > CoalesceHighWaterPct
		if full && !coalesce {
			w.submit(pending)
			pending = nil
		} else if full && coalesce {
			metrics.SourceBatchCoalescedTotal.WithLabelValues(w.SourceID).Inc()
			// keep accumulating into the same batch instead of submitting now
		}
	}
}

func (w *Worker) batchSize() int {
	if w.BatchSize > 0 {
		return w.BatchSize
	}
	return DefaultBatchSize
}

func (w *Worker) newBatch() *SourceBatch {
	return &SourceBatch{
		SourceID:  w.SourceID,
		SeqID:     atomic.AddUint64(&w.seq, 1),
		Collected: time.Now(),
	}
}

func (w *Worker) submit(b *SourceBatch) {
	select {
	case w.Out <- b:
	default:
		logrus.WithFields(logrus.Fields{"component": "source.worker", "source": w.SourceID}).
			Warn("parser channel full; batch submission blocked")
		w.Out <- b
	}
}
