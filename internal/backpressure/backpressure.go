// Package backpressure samples host memory/CPU utilization and grades it
// into levels. The admin HTTP health endpoint reports the level; the source
// workers and the net transport do not read the sampler.
package backpressure

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

// Level mirrors the teacher's graded backpressure levels.
type Level int

const (
	LevelNone Level = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Sampler periodically refreshes CPU/memory utilization and exposes the
// graded Level plus a 0..1 queue-occupancy-compatible ratio.
type Sampler struct {
	interval time.Duration
	ratio    float64
}

func NewSampler(interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Sampler{interval: interval}
}

// Run samples in a loop until stop is closed.
func (s *Sampler) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.sampleOnce()
		}
	}
}

func (s *Sampler) sampleOnce() {
	memPct := 0.0
	if vm, err := mem.VirtualMemory(); err == nil {
		memPct = vm.UsedPercent / 100
	} else {
		logrus.WithField("component", "backpressure.sampler").WithError(err).Debug("memory sample failed")
	}
	cpuPct := 0.0
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		cpuPct = pcts[0] / 100
	}
	s.ratio = maxFloat(memPct, cpuPct)
}

// Ratio returns the most recently sampled utilization in [0,1].
func (s *Sampler) Ratio() float64 { return s.ratio }

// Level grades Ratio into the teacher's five-level scheme.
func (s *Sampler) Level() Level {
	r := s.ratio
	switch {
	case r >= 0.95:
		return LevelCritical
	case r >= 0.90:
		return LevelHigh
	case r >= 0.75:
		return LevelMedium
	case r >= 0.60:
		return LevelLow
	default:
		return LevelNone
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
