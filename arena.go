package blockarena

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/blockarena/internal/bulk"
	"github.com/hupe1980/blockarena/internal/conv"
	"github.com/hupe1980/blockarena/internal/mem"
	"github.com/hupe1980/blockarena/internal/table"
	"github.com/hupe1980/blockarena/provider"
	"github.com/hupe1980/blockarena/resource"
)

const (
	// WordSize is the size of the buffer's header word, and the smallest
	// capacity an arena accepts.
	WordSize = table.WordSize
	// TableEntrySize is the size of one descriptor record in the table.
	TableEntrySize = table.EntrySize
)

// Arena sub-allocates blocks from one contiguous buffer reserved up front.
//
// # Concurrency Model
//
// All structural changes (Allocate, Free, Defragment, Close) hold the arena
// lock exclusively and are totally ordered. Block byte access and the
// read-only queries hold it shared, so they run in parallel with each other
// but never observe a half-finished move. Accesses to the same block are
// additionally serialized by that block's descriptor guard.
//
// Growth and compaction run to completion; there is no way to interrupt
// them. Tables with very many slots or heavily fragmented data make
// Allocate and Free proportionally slower.
type Arena struct {
	mu       sync.RWMutex
	buf      []byte // nil once closed
	tbl      table.Table
	capacity int
	// free indexes the Unallocated slots below the table length.
	free *roaring.Bitmap

	provider provider.Provider
	rc       *resource.Controller
	bulk     *bulk.Runner
	logger   *Logger
	metrics  MetricsCollector
}

// New reserves a buffer of exactly capacity bytes and returns an empty arena over it.
//
// It fails with ErrInvalidConfig if capacity is smaller than WordSize, and with
// an *AllocationError (matching ErrAllocationFailed and ErrOutOfMemory) if the
// provider or the resource controller cannot supply the buffer.
func New(capacity int, opts ...Option) (*Arena, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx := context.Background()

	if capacity < WordSize {
		err := fmt.Errorf("%w: the arena must have a minimum capacity of %d bytes, got %d", ErrInvalidConfig, WordSize, capacity)
		o.logger.LogOpen(ctx, capacity, err)
		return nil, err
	}

	if err := o.controller.AcquireMemory(int64(capacity)); err != nil {
		err = &AllocationError{Size: capacity, cause: err}
		o.logger.LogOpen(ctx, capacity, err)
		return nil, err
	}

	buf, err := o.provider.Reserve(capacity)
	if err != nil {
		o.controller.ReleaseMemory(int64(capacity))
		err = &AllocationError{Size: capacity, cause: err}
		o.logger.LogOpen(ctx, capacity, err)
		return nil, err
	}

	if len(buf) != capacity || !mem.IsAligned(buf, WordSize) {
		_ = o.provider.Release(buf)
		o.controller.ReleaseMemory(int64(capacity))
		err = fmt.Errorf("%w: provider returned %d bytes, want %d bytes aligned to %d", ErrInvalidConfig, len(buf), capacity, WordSize)
		o.logger.LogOpen(ctx, capacity, err)
		return nil, err
	}

	a := &Arena{
		buf:      buf,
		tbl:      table.New(buf),
		capacity: capacity,
		free:     roaring.New(),
		provider: o.provider,
		rc:       o.controller,
		bulk:     bulk.NewRunner(o.controller, o.parallelThreshold),
		logger:   o.logger.WithCapacity(capacity),
		metrics:  o.metricsCollector,
	}
	a.tbl.SetLen(0)

	o.logger.LogOpen(ctx, capacity, nil)

	return a, nil
}

// Close releases the buffer to the provider. It is idempotent.
//
// Every later operation on the arena, and on any Block obtained from it,
// fails with ErrDisposed.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.buf == nil {
		return nil
	}

	live := a.allocatedCountLocked()
	err := a.provider.Release(a.buf)

	a.buf = nil
	a.tbl = table.Table{}
	a.free = nil
	a.rc.ReleaseMemory(int64(a.capacity))

	a.logger.LogClose(context.Background(), live, err)

	if err != nil {
		return fmt.Errorf("blockarena: release buffer: %w", err)
	}
	return nil
}

// IsDisposed reports whether Close has been called.
func (a *Arena) IsDisposed() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.buf == nil
}

// Allocate returns a handle to a new block of exactly size bytes.
//
// The arena is compacted first. The block is zero-filled unless WithoutClear
// is given. Allocate fails with ErrOutOfMemory if the free space cannot hold
// size bytes plus two descriptor records of table growth margin.
func (a *Arena) Allocate(size int, opts ...AllocateOption) (*Block, error) {
	ao := allocateOptions{clear: true}
	for _, opt := range opts {
		opt(&ao)
	}

	start := time.Now()
	id, err := a.allocate(size, ao.clear)

	a.metrics.RecordAllocate(size, time.Since(start), err)
	a.logger.LogAllocate(context.Background(), id, size, err)

	if err != nil {
		return nil, err
	}
	return &Block{arena: a, id: id}, nil
}

func (a *Arena) allocate(size int, clearRegion bool) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.buf == nil {
		return -1, ErrDisposed
	}
	if size < 0 {
		return -1, fmt.Errorf("%w: negative block size %d", ErrOutOfRange, size)
	}

	a.defragmentLocked()

	freeBytes := a.capacity - a.usedBytesLocked()
	need, err := conv.Add(size, 2*TableEntrySize)
	if err != nil || freeBytes < need {
		return -1, fmt.Errorf("%w: %d bytes requested, %d bytes free", ErrOutOfMemory, size, freeBytes)
	}

	id, ok := a.lowestFreeSlotLocked()
	if !ok {
		if id, err = a.growLocked(size); err != nil {
			return -1, err
		}
	}

	// Bump placement: live blocks are packed from the data region's start.
	offset := a.tbl.DataStart() + a.usedDataLocked()
	if offset > a.capacity-size {
		return -1, fmt.Errorf("%w: block of %d bytes at offset %d exceeds capacity %d", ErrOutOfMemory, size, offset, a.capacity)
	}

	a.tbl.Put(id, offset, size)
	a.free.Remove(uint32(id)) //nolint:gosec // slot ids are capped at MaxInt32 by growLocked

	if clearRegion {
		_ = a.tbl.WithLock(id, func(d table.Descriptor) error {
			a.bulk.Zero(a.buf[d.Offset:d.End()])
			return nil
		})
	}

	return id, nil
}

// Free releases the block. The slot becomes reusable and the arena is compacted.
//
// It fails with ErrNotFound if the block does not belong to this arena or
// is not currently allocated.
func (a *Arena) Free(b *Block) error {
	if b == nil {
		return fmt.Errorf("%w: nil block", ErrNotFound)
	}
	if b.arena != a {
		return fmt.Errorf("%w: block %d belongs to another arena", ErrNotFound, b.id)
	}

	start := time.Now()
	err := a.freeID(b.id)

	a.metrics.RecordFree(time.Since(start), err)
	a.logger.LogFree(context.Background(), b.id, err)

	return err
}

func (a *Arena) freeID(id int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.buf == nil {
		return ErrDisposed
	}
	if !a.tbl.Valid(id) || !a.tbl.IsAllocated(id) {
		return fmt.Errorf("%w: no allocated block with id %d", ErrNotFound, id)
	}

	a.tbl.Release(id)

	if n := a.tbl.Len(); id == n-1 {
		a.tbl.SetLen(n - 1)
	} else {
		a.free.Add(uint32(id)) //nolint:gosec // slot ids are capped at MaxInt32 by growLocked
	}

	a.defragmentLocked()

	return nil
}

// GetBlock returns a new handle to the allocated block with the given id.
//
// Several handles may alias the same block; all of them become invalid
// once it is freed. GetBlock fails with ErrNotFound if id does not name an
// allocated block.
func (a *Arena) GetBlock(id int) (*Block, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.buf == nil {
		return nil, ErrDisposed
	}
	if !a.tbl.Valid(id) || !a.tbl.IsAllocated(id) {
		return nil, fmt.Errorf("%w: no allocated block with id %d", ErrNotFound, id)
	}
	return &Block{arena: a, id: id}, nil
}

// UsedBytes returns the header, descriptor table and block data bytes in use.
func (a *Arena) UsedBytes() (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.buf == nil {
		return 0, ErrDisposed
	}
	return a.usedBytesLocked(), nil
}

// UsedDataBytes returns the sum of the sizes of all allocated blocks.
func (a *Arena) UsedDataBytes() (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.buf == nil {
		return 0, ErrDisposed
	}
	return a.usedDataLocked(), nil
}

// TotalSize returns the arena capacity in bytes.
func (a *Arena) TotalSize() (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.buf == nil {
		return 0, ErrDisposed
	}
	return a.capacity, nil
}

// FreeBytes returns TotalSize minus UsedBytes.
func (a *Arena) FreeBytes() (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.buf == nil {
		return 0, ErrDisposed
	}
	return a.capacity - a.usedBytesLocked(), nil
}

// AllocatedBlockCount returns the number of live blocks.
func (a *Arena) AllocatedBlockCount() (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.buf == nil {
		return 0, ErrDisposed
	}
	return a.allocatedCountLocked(), nil
}

// withBlock runs fn under the shared arena lock and the block's guard.
func (a *Arena) withBlock(id int, fn func(d table.Descriptor) error) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.buf == nil {
		return ErrDisposed
	}
	if !a.tbl.Valid(id) {
		return fmt.Errorf("%w: block %d is not allocated", ErrInvalidOperation, id)
	}

	err := a.tbl.WithLock(id, fn)
	if errors.Is(err, table.ErrNotAllocated) {
		return fmt.Errorf("%w: block %d is not allocated", ErrInvalidOperation, id)
	}
	return err
}

func (a *Arena) lowestFreeSlotLocked() (int, bool) {
	if a.free.IsEmpty() {
		return -1, false
	}
	return int(a.free.Minimum()), true
}

func (a *Arena) usedDataLocked() int {
	used := 0
	for id, n := 0, a.tbl.Len(); id < n; id++ {
		if a.tbl.IsAllocated(id) {
			used += a.tbl.Size(id)
		}
	}
	return used
}

func (a *Arena) usedBytesLocked() int {
	return a.tbl.DataStart() + a.usedDataLocked()
}

func (a *Arena) allocatedCountLocked() int {
	return a.tbl.Len() - int(a.free.GetCardinality()) //nolint:gosec // cardinality never exceeds the table length
}
