package pipeline

import (
	"sync/atomic"
)

// Metrics holds the pipeline counters.
type Metrics struct {
	Frames       atomic.Uint64
	Skipped      atomic.Uint64
	Dissected    atomic.Uint64
	Dropped      atomic.Uint64
	Reported     atomic.Uint64
	ReportErrors atomic.Uint64
	Diagnostics  atomic.Uint64
}

// Stats is a snapshot of Metrics.
type Stats struct {
	Frames       uint64 // frames read from the source
	Skipped      uint64 // frames without a UDP payload
	Dissected    uint64
	Dropped      uint64 // packets lost to full worker queues
	Reported     uint64
	ReportErrors uint64
	Diagnostics  uint64
}

func (m *Metrics) snapshot() Stats {
	return Stats{
		Frames:       m.Frames.Load(),
		Skipped:      m.Skipped.Load(),
		Dissected:    m.Dissected.Load(),
		Dropped:      m.Dropped.Load(),
		Reported:     m.Reported.Load(),
		ReportErrors: m.ReportErrors.Load(),
		Diagnostics:  m.Diagnostics.Load(),
	}
}
