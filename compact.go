package blockarena

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/hupe1980/blockarena/internal/pool"
	"github.com/hupe1980/blockarena/internal/table"
)

// minTableGrowth is the smallest number of slots added when the table is full.
const minTableGrowth = 16

// Defragment packs all live blocks contiguously from the start of the data
// region, in ascending id order, and trims unused slots from the end of the
// descriptor table. Running it twice in a row moves nothing the second time.
func (a *Arena) Defragment() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.buf == nil {
		return ErrDisposed
	}
	a.defragmentLocked()
	return nil
}

type move struct {
	id   int
	from int
	to   int
	size int
}

func (a *Arena) defragmentLocked() {
	start := time.Now()

	n := a.tbl.Len()
	end := n
	for end > 0 && !a.tbl.IsAllocated(end-1) {
		end--
	}
	if end < n {
		a.tbl.SetLen(end)
		a.free.RemoveRange(uint64(end), uint64(n)) //nolint:gosec // table lengths are never negative
	}

	var (
		moves   []move
		next    = table.DataStart(end)
		ordered = true
		last    = -1
		bytes   = 0
	)
	for id := 0; id < end; id++ {
		if !a.tbl.IsAllocated(id) {
			continue
		}
		d := a.tbl.Get(id)
		if d.Offset < last {
			ordered = false
		}
		last = d.Offset
		if d.Offset != next {
			moves = append(moves, move{id: id, from: d.Offset, to: next, size: d.Size})
			bytes += d.Size
		}
		next += d.Size
	}

	if len(moves) > 0 {
		if ordered {
			// Offsets ascend with ids, so every target lies at or left of its
			// source and past every block already placed.
			for _, m := range moves {
				a.moveLocked(m.id, m.to)
			}
		} else {
			a.stagedMoveLocked(moves, bytes)
		}
		a.logger.LogDefragment(context.Background(), len(moves), bytes, !ordered)
	}

	a.metrics.RecordDefragment(len(moves), bytes, time.Since(start))
}

// stagedMoveLocked relocates blocks whose offsets no longer ascend with their
// ids. Slot reuse can put a low id after a high one; moving such blocks in
// place could overwrite one that has not been moved yet, so every displaced
// block is copied out before any is written back.
func (a *Arena) stagedMoveLocked(moves []move, total int) {
	s := pool.Get(total)
	defer pool.Put(s)
	scratch := s.Buf

	pos := 0
	for _, m := range moves {
		_ = a.tbl.WithLock(m.id, func(table.Descriptor) error {
			a.bulk.Copy(scratch[pos:pos+m.size], a.buf[m.from:m.from+m.size])
			return nil
		})
		pos += m.size
	}

	pos = 0
	for _, m := range moves {
		_ = a.tbl.WithLock(m.id, func(table.Descriptor) error {
			a.bulk.Copy(a.buf[m.to:m.to+m.size], scratch[pos:pos+m.size])
			a.tbl.SetOffset(m.id, m.to)
			return nil
		})
		pos += m.size
	}
}

// moveLocked copies the data of block id to offset under the block's guard.
func (a *Arena) moveLocked(id, offset int) {
	_ = a.tbl.WithLock(id, func(d table.Descriptor) error {
		a.bulk.Copy(a.buf[offset:offset+d.Size], a.buf[d.Offset:d.End()])
		a.tbl.SetOffset(id, offset)
		return nil
	})
}

// growLocked adds slots to a full table, shifting all block data right to
// make room, and returns the id of the last new slot. The table is assumed
// to be compacted. Growth is clamped to what fits alongside a pending block
// of size bytes.
func (a *Arena) growLocked(size int) (int, error) {
	n := a.tbl.Len()
	used := a.usedDataLocked()

	avail := a.capacity - a.tbl.DataStart() - used - size
	fits := min(avail/TableEntrySize, math.MaxInt32-n)
	if fits < 1 {
		return -1, fmt.Errorf("%w: no room to grow the descriptor table for a block of %d bytes", ErrOutOfMemory, size)
	}
	growth := min(tableGrowth(n), fits)
	shift := growth * TableEntrySize

	live := make([]int, 0, n)
	for id := 0; id < n; id++ {
		if a.tbl.IsAllocated(id) {
			live = append(live, id)
		}
	}
	// Highest offset first, so no block lands on one that has not moved yet.
	slices.SortFunc(live, func(x, y int) int {
		return cmp.Compare(a.tbl.Offset(y), a.tbl.Offset(x))
	})
	for _, id := range live {
		a.moveLocked(id, a.tbl.Offset(id)+shift)
	}

	// The new slots cover bytes that belonged to the data region.
	a.tbl.Reset(n, n+growth)
	a.tbl.SetLen(n + growth)
	a.free.AddRange(uint64(n), uint64(n+growth)) //nolint:gosec // table lengths are never negative

	a.metrics.RecordGrowth(growth, used)
	a.logger.LogGrowth(context.Background(), n, n+growth, used)

	return n + growth - 1, nil
}

// tableGrowth returns how many slots to add to a full table of n slots.
// The square-root term keeps small tables lean; the proportional term
// bounds the total data shifted across many growths to a constant factor
// of the data allocated.
func tableGrowth(n int) int {
	sqrtTerm := int(math.Ceil(2 * math.Sqrt(float64(n+1))))
	return max(minTableGrowth, sqrtTerm, (n+1)/2)
}
