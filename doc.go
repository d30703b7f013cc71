// Package blockarena provides an in-process memory arena that sub-allocates
// variable-sized blocks from one contiguous buffer reserved up front.
//
// The buffer carries its own bookkeeping. It starts with an 8-byte header
// word holding the descriptor table length, followed by the table of 24-byte
// descriptors, followed by the data region where blocks are packed:
//
//	[ len | desc 0 | desc 1 | ... | desc n-1 | block data ... | free ... ]
//
// Callers hold Block handles that name a descriptor slot, never an address.
// Blocks move when the table grows or the arena compacts, and every access
// resolves the current offset through the table.
//
// # Quick Start
//
//	a, err := blockarena.New(1 << 20)
//	if err != nil {
//		return err
//	}
//	defer a.Close()
//
//	b, err := a.Allocate(4096)
//	if err != nil {
//		return err
//	}
//	defer b.Free()
//
//	_ = b.SetByteAt(0, 0x2a)
//	v, _ := b.ByteAt(0)
//
// # Allocation
//
// Allocate compacts the arena, reuses the lowest free descriptor slot or
// grows the table when none is free, and places the block right after the
// live data. New blocks are zero-filled unless WithoutClear is passed.
// Allocation fails with ErrOutOfMemory when the free space cannot hold the
// block plus room for two more descriptors.
//
// Free releases the slot and compacts again, so live data is always packed
// in ascending id order after every structural operation.
//
// # Buffers
//
// The buffer comes from a provider.Provider. The default maps anonymous
// memory outside the Go heap; provider.Heap() uses an ordinary aligned
// slice. A resource.Controller can cap the memory reserved by several
// arenas, bound the goroutines used for large copies and throttle
// Block.WriteTo.
//
// # Observability
//
// WithLogger attaches a structured slog-based Logger and
// WithMetricsCollector receives allocation, free, growth and compaction
// events. Both default to no-ops.
package blockarena
