package relgraph

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// prommetrics package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordIndex is called after each IndexRecord call.
	// reindexed is true when the relation was already present.
	RecordIndex(duration time.Duration, reindexed bool, err error)

	// RecordUnindex is called after each UnindexRecord call.
	RecordUnindex(duration time.Duration, found bool)

	// RecordQuery is called once per query when it is prepared.
	// op names the find operation, err is non-nil for rejected queries.
	RecordQuery(op string, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIndex(time.Duration, bool, error) {}
func (NoopMetricsCollector) RecordUnindex(time.Duration, bool)      {}
func (NoopMetricsCollector) RecordQuery(string, error)              {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	IndexCount        atomic.Int64
	ReindexCount      atomic.Int64
	IndexErrors       atomic.Int64
	IndexTotalNanos   atomic.Int64
	UnindexCount      atomic.Int64
	UnindexMisses     atomic.Int64
	UnindexTotalNanos atomic.Int64
	QueryCount        atomic.Int64
	QueryErrors       atomic.Int64
}

// RecordIndex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIndex(duration time.Duration, reindexed bool, err error) {
	b.IndexCount.Add(1)
	b.IndexTotalNanos.Add(duration.Nanoseconds())
	if reindexed {
		b.ReindexCount.Add(1)
	}
	if err != nil {
		b.IndexErrors.Add(1)
	}
}

// RecordUnindex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUnindex(duration time.Duration, found bool) {
	b.UnindexCount.Add(1)
	b.UnindexTotalNanos.Add(duration.Nanoseconds())
	if !found {
		b.UnindexMisses.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ string, err error) {
	b.QueryCount.Add(1)
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		IndexCount:      b.IndexCount.Load(),
		ReindexCount:    b.ReindexCount.Load(),
		IndexErrors:     b.IndexErrors.Load(),
		IndexAvgNanos:   avg(b.IndexTotalNanos.Load(), b.IndexCount.Load()),
		UnindexCount:    b.UnindexCount.Load(),
		UnindexMisses:   b.UnindexMisses.Load(),
		UnindexAvgNanos: avg(b.UnindexTotalNanos.Load(), b.UnindexCount.Load()),
		QueryCount:      b.QueryCount.Load(),
		QueryErrors:     b.QueryErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	IndexCount      int64
	ReindexCount    int64
	IndexErrors     int64
	IndexAvgNanos   int64
	UnindexCount    int64
	UnindexMisses   int64
	UnindexAvgNanos int64
	QueryCount      int64
	QueryErrors     int64
}
