package routing

import "sync/atomic"

// StatRecord holds the process-wide, per-rule/per-tag counters. All fields
// are lock-free atomics; no cross-component locks are held across
// suspension points.
type StatRecord struct {
	Begin   int64
	End     int64
	Task    int64
	OK      int64
	Miss    int64
	Residue int64
	Error   int64
}

func (s *StatRecord) IncBegin()   { atomic.AddInt64(&s.Begin, 1) }
func (s *StatRecord) IncEnd()     { atomic.AddInt64(&s.End, 1) }
func (s *StatRecord) IncTask()    { atomic.AddInt64(&s.Task, 1) }
func (s *StatRecord) IncOK()      { atomic.AddInt64(&s.OK, 1) }
func (s *StatRecord) IncMiss()    { atomic.AddInt64(&s.Miss, 1) }
func (s *StatRecord) IncResidue() { atomic.AddInt64(&s.Residue, 1) }
func (s *StatRecord) IncError()   { atomic.AddInt64(&s.Error, 1) }

// Admitted returns the sum partitioned exactly into ok+miss+residue+error,
// matching Testable Property 1.
func (s *StatRecord) Admitted() int64 {
	return atomic.LoadInt64(&s.OK) + atomic.LoadInt64(&s.Miss) +
		atomic.LoadInt64(&s.Residue) + atomic.LoadInt64(&s.Error)
}

func (s *StatRecord) Record(outcome Outcome) {
	switch outcome {
	case OutcomeOK:
		s.IncOK()
	case OutcomeResidue:
		s.IncResidue()
	case OutcomeMiss:
		s.IncMiss()
	case OutcomeError:
		s.IncError()
	}
}
