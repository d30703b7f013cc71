package blockarena

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    allocCounter    prometheus.Counter
//	    movedBytes      prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordAllocate(size int, duration time.Duration, err error) {
//	    p.allocCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordAllocate is called after each allocate operation.
	// size is the requested block size, err is nil if successful.
	RecordAllocate(size int, duration time.Duration, err error)

	// RecordFree is called after each free operation.
	RecordFree(duration time.Duration, err error)

	// RecordDefragment is called after each compaction pass, including
	// passes that moved nothing.
	RecordDefragment(movedBlocks, movedBytes int, duration time.Duration)

	// RecordGrowth is called when the descriptor table grows by slots,
	// shifting shiftedBytes of block data.
	RecordGrowth(slots, shiftedBytes int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAllocate(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordFree(time.Duration, error)          {}
func (NoopMetricsCollector) RecordDefragment(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordGrowth(int, int)                    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AllocateCount      atomic.Int64
	AllocateErrors     atomic.Int64
	AllocateBytes      atomic.Int64
	AllocateTotalNanos atomic.Int64
	FreeCount          atomic.Int64
	FreeErrors         atomic.Int64
	DefragmentCount    atomic.Int64
	MovedBlocks        atomic.Int64
	MovedBytes         atomic.Int64
	GrowthCount        atomic.Int64
	GrowthSlots        atomic.Int64
	ShiftedBytes       atomic.Int64
}

// RecordAllocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAllocate(size int, duration time.Duration, err error) {
	b.AllocateCount.Add(1)
	b.AllocateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AllocateErrors.Add(1)
		return
	}
	b.AllocateBytes.Add(int64(size))
}

// RecordFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFree(duration time.Duration, err error) {
	b.FreeCount.Add(1)
	if err != nil {
		b.FreeErrors.Add(1)
	}
}

// RecordDefragment implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDefragment(movedBlocks, movedBytes int, duration time.Duration) {
	b.DefragmentCount.Add(1)
	b.MovedBlocks.Add(int64(movedBlocks))
	b.MovedBytes.Add(int64(movedBytes))
}

// RecordGrowth implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrowth(slots, shiftedBytes int) {
	b.GrowthCount.Add(1)
	b.GrowthSlots.Add(int64(slots))
	b.ShiftedBytes.Add(int64(shiftedBytes))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AllocateCount:    b.AllocateCount.Load(),
		AllocateErrors:   b.AllocateErrors.Load(),
		AllocateBytes:    b.AllocateBytes.Load(),
		AllocateAvgNanos: b.getAvgAllocateNanos(),
		FreeCount:        b.FreeCount.Load(),
		FreeErrors:       b.FreeErrors.Load(),
		DefragmentCount:  b.DefragmentCount.Load(),
		MovedBlocks:      b.MovedBlocks.Load(),
		MovedBytes:       b.MovedBytes.Load(),
		GrowthCount:      b.GrowthCount.Load(),
		GrowthSlots:      b.GrowthSlots.Load(),
		ShiftedBytes:     b.ShiftedBytes.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgAllocateNanos() int64 {
	count := b.AllocateCount.Load()
	if count == 0 {
		return 0
	}
	return b.AllocateTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AllocateCount    int64
	AllocateErrors   int64
	AllocateBytes    int64
	AllocateAvgNanos int64
	FreeCount        int64
	FreeErrors       int64
	DefragmentCount  int64
	MovedBlocks      int64
	MovedBytes       int64
	GrowthCount      int64
	GrowthSlots      int64
	ShiftedBytes     int64
}
