package gridex

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// metric provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordBuild is called after each collection build.
	// records is the number of records scanned, populated the number of
	// populated cells, duration the total time taken and err is nil if
	// successful.
	RecordBuild(records, populated int, duration time.Duration, err error)

	// RecordReindex is called after each reindex onto a published grid.
	RecordReindex(carried, dropped int, duration time.Duration, err error)

	// RecordPublish is called after each publication of a new grid.
	RecordPublish(density float64, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordReindex(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordPublish(float64, error)                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount       atomic.Int64
	BuildErrors      atomic.Int64
	BuildRecords     atomic.Int64
	BuildTotalNanos  atomic.Int64
	ReindexCount     atomic.Int64
	ReindexErrors    atomic.Int64
	ReindexCarried   atomic.Int64
	ReindexDropped   atomic.Int64
	PublishCount     atomic.Int64
	PublishErrors    atomic.Int64
	lastDensityMicro atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(records, _ int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildRecords.Add(int64(records))
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordReindex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReindex(carried, dropped int, _ time.Duration, err error) {
	b.ReindexCount.Add(1)
	if err != nil {
		b.ReindexErrors.Add(1)
		return
	}
	b.ReindexCarried.Add(int64(carried))
	b.ReindexDropped.Add(int64(dropped))
}

// RecordPublish implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPublish(density float64, err error) {
	b.PublishCount.Add(1)
	if err != nil {
		b.PublishErrors.Add(1)
		return
	}
	b.lastDensityMicro.Store(int64(density * 1e6))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:           b.BuildCount.Load(),
		BuildErrors:          b.BuildErrors.Load(),
		BuildRecords:         b.BuildRecords.Load(),
		BuildAvgNanos:        b.getAvgBuildNanos(),
		ReindexCount:         b.ReindexCount.Load(),
		ReindexErrors:        b.ReindexErrors.Load(),
		ReindexCarried:       b.ReindexCarried.Load(),
		ReindexDropped:       b.ReindexDropped.Load(),
		PublishCount:         b.PublishCount.Load(),
		PublishErrors:        b.PublishErrors.Load(),
		LastPublishedDensity: float64(b.lastDensityMicro.Load()) / 1e6,
	}
}

func (b *BasicMetricsCollector) getAvgBuildNanos() int64 {
	count := b.BuildCount.Load()
	if count == 0 {
		return 0
	}
	return b.BuildTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount           int64
	BuildErrors          int64
	BuildRecords         int64
	BuildAvgNanos        int64
	ReindexCount         int64
	ReindexErrors        int64
	ReindexCarried       int64
	ReindexDropped       int64
	PublishCount         int64
	PublishErrors        int64
	LastPublishedDensity float64
}
