package blockarena

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Stats is a point-in-time summary of an arena's occupancy.
//
// TableSlots counts descriptor slots whether allocated or not. UsedBytes
// covers the header, the table and the block data.
type Stats struct {
	Capacity        int
	TableSlots      int
	AllocatedBlocks int
	DataStart       int
	UsedDataBytes   int
	UsedBytes       int
	FreeBytes       int
}

// Utilization returns UsedBytes as a percentage of Capacity.
func (s Stats) Utilization() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.UsedBytes) * 100 / float64(s.Capacity)
}

func (s Stats) String() string {
	return fmt.Sprintf("%d blocks in %d slots, %s of %s used (%.1f %%), %s free",
		s.AllocatedBlocks, s.TableSlots, ibytes(s.UsedBytes), ibytes(s.Capacity), s.Utilization(), ibytes(s.FreeBytes))
}

func ibytes(n int) string {
	return humanize.IBytes(uint64(max(n, 0))) //nolint:gosec // clamped to zero
}

// Stats returns the current occupancy of the arena.
func (a *Arena) Stats() (Stats, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.buf == nil {
		return Stats{}, ErrDisposed
	}
	return a.statsLocked(), nil
}

func (a *Arena) statsLocked() Stats {
	data := a.usedDataLocked()
	start := a.tbl.DataStart()
	return Stats{
		Capacity:        a.capacity,
		TableSlots:      a.tbl.Len(),
		AllocatedBlocks: a.allocatedCountLocked(),
		DataStart:       start,
		UsedDataBytes:   data,
		UsedBytes:       start + data,
		FreeBytes:       a.capacity - start - data,
	}
}

// String renders the block count and the used and total size in KB.
func (a *Arena) String() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.buf == nil {
		return "arena disposed"
	}
	s := a.statsLocked()
	return fmt.Sprintf("%d Blocks (%.1f KB / %.1f KB, %.1f %%)",
		s.AllocatedBlocks, float64(s.UsedBytes)/1024, float64(s.Capacity)/1024, s.Utilization())
}
