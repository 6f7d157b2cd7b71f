package knnspace

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement it to integrate with a monitoring system.
type MetricsCollector interface {
	// RecordResolve is called after each parameter resolution.
	RecordResolve(duration time.Duration, err error)

	// RecordScore is called after n raw backend results were scored.
	RecordScore(n int, duration time.Duration)

	// RecordSearch is called after each search through a backend.
	RecordSearch(k int, duration time.Duration, err error)

	// RecordVersionFallback is called when the minimum cluster version
	// could not be derived and the local version was used instead.
	RecordVersionFallback()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordResolve(time.Duration, error)     {}
func (NoopMetricsCollector) RecordScore(int, time.Duration)         {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordVersionFallback()                 {}

// BasicMetricsCollector keeps counters in memory.
type BasicMetricsCollector struct {
	ResolveCount      atomic.Int64
	ResolveErrors     atomic.Int64
	ResolveTotalNanos atomic.Int64
	ScoreCalls        atomic.Int64
	ScoredResults     atomic.Int64
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchTotalNanos  atomic.Int64
	VersionFallbacks  atomic.Int64
}

// RecordResolve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResolve(duration time.Duration, err error) {
	b.ResolveCount.Add(1)
	b.ResolveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ResolveErrors.Add(1)
	}
}

// RecordScore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScore(n int, _ time.Duration) {
	b.ScoreCalls.Add(1)
	b.ScoredResults.Add(int64(n))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordVersionFallback implements MetricsCollector.
func (b *BasicMetricsCollector) RecordVersionFallback() {
	b.VersionFallbacks.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ResolveCount:     b.ResolveCount.Load(),
		ResolveErrors:    b.ResolveErrors.Load(),
		ResolveAvgNanos:  avg(b.ResolveTotalNanos.Load(), b.ResolveCount.Load()),
		ScoreCalls:       b.ScoreCalls.Load(),
		ScoredResults:    b.ScoredResults.Load(),
		SearchCount:      b.SearchCount.Load(),
		SearchErrors:     b.SearchErrors.Load(),
		SearchAvgNanos:   avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		VersionFallbacks: b.VersionFallbacks.Load(),
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
	ResolveCount     int64
	ResolveErrors    int64
	ResolveAvgNanos  int64
	ScoreCalls       int64
	ScoredResults    int64
	SearchCount      int64
	SearchErrors     int64
	SearchAvgNanos   int64
	VersionFallbacks int64
}
