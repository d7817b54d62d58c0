package zones

import (
	"sync/atomic"
	"time"

	"github.com/jroosing/bindzone/internal/zoneerr"
)

// Stats collects zone operation statistics.
// All methods are safe for concurrent use.
type Stats struct {
	operations     atomic.Uint64
	mutations      atomic.Uint64
	failures       atomic.Uint64
	notFound       atomic.Uint64
	remoteFailures atomic.Uint64
	latencyTotalNs atomic.Uint64
}

// NewStats creates a new statistics collector.
func NewStats() *Stats {
	return &Stats{}
}

// Record accounts for one finished operation.
func (s *Stats) Record(mutation bool, elapsed time.Duration, err error) {
	s.operations.Add(1)
	if mutation {
		s.mutations.Add(1)
	}
	if elapsed > 0 {
		s.latencyTotalNs.Add(uint64(elapsed))
	}
	if err == nil {
		return
	}
	s.failures.Add(1)
	switch zoneerr.KindOf(err) {
	case zoneerr.KindNotFound:
		s.notFound.Add(1)
	case zoneerr.KindAuth, zoneerr.KindConnect, zoneerr.KindTransport:
		s.remoteFailures.Add(1)
	}
}

// StatsSnapshot is a point-in-time snapshot of zone operation statistics.
type StatsSnapshot struct {
	Operations     uint64
	Mutations      uint64
	Failures       uint64
	NotFound       uint64
	RemoteFailures uint64
	AvgLatencyMs   float64
}

// Snapshot returns the current statistics.
func (s *Stats) Snapshot() StatsSnapshot {
	total := s.operations.Load()
	latencyNs := s.latencyTotalNs.Load()

	avgLatencyMs := 0.0
	if total > 0 {
		avgLatencyMs = float64(latencyNs) / float64(total) / 1e6
	}

	return StatsSnapshot{
		Operations:     total,
		Mutations:      s.mutations.Load(),
		Failures:       s.failures.Load(),
		NotFound:       s.notFound.Load(),
		RemoteFailures: s.remoteFailures.Load(),
		AvgLatencyMs:   avgLatencyMs,
	}
}
