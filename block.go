package blockarena

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/blockarena/internal/conv"
	"github.com/hupe1980/blockarena/internal/table"
	"github.com/hupe1980/blockarena/resource"
)

// Block is a handle to one allocated block of an Arena.
//
// A Block holds no bytes itself; every access resolves the block's current
// offset through the arena's descriptor table, so handles stay valid while
// compaction moves data around. Handles are not reference counted: freeing
// through one handle invalidates every other handle to the same block.
type Block struct {
	arena *Arena
	id    int
}

// ID returns the descriptor slot index of the block.
func (b *Block) ID() int {
	return b.id
}

// Arena returns the arena the block was allocated from.
func (b *Block) Arena() *Arena {
	return b.arena
}

// Size returns the block size in bytes.
func (b *Block) Size() (int, error) {
	d, err := b.describe()
	return d.Size, err
}

// Offset returns the current position of the block in the arena buffer.
// It changes whenever the arena grows its table or compacts.
func (b *Block) Offset() (int, error) {
	d, err := b.describe()
	return d.Offset, err
}

// ByteAt returns the byte at index i of the block.
func (b *Block) ByteAt(i int) (byte, error) {
	var v byte
	err := b.access(func(d table.Descriptor) error {
		if i < 0 || i >= d.Size {
			return fmt.Errorf("%w: index %d in block of %d bytes", ErrOutOfRange, i, d.Size)
		}
		v = b.arena.buf[d.Offset+i]
		return nil
	})
	return v, err
}

// SetByteAt stores v at index i of the block.
func (b *Block) SetByteAt(i int, v byte) error {
	return b.access(func(d table.Descriptor) error {
		if i < 0 || i >= d.Size {
			return fmt.Errorf("%w: index %d in block of %d bytes", ErrOutOfRange, i, d.Size)
		}
		b.arena.buf[d.Offset+i] = v
		return nil
	})
}

// ToBytes returns a copy of the whole block.
func (b *Block) ToBytes() ([]byte, error) {
	var out []byte
	err := b.access(func(d table.Descriptor) error {
		out = make([]byte, d.Size)
		b.arena.bulk.Copy(out, b.arena.buf[d.Offset:d.End()])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ToBytesRange returns a copy of count bytes starting at offset within the block.
func (b *Block) ToBytesRange(offset, count int) ([]byte, error) {
	var out []byte
	err := b.access(func(d table.Descriptor) error {
		end, err := conv.Add(offset, count)
		if err != nil || end > d.Size {
			return fmt.Errorf("%w: range [%d, %d+%d) in block of %d bytes", ErrOutOfRange, offset, offset, count, d.Size)
		}
		out = make([]byte, count)
		b.arena.bulk.Copy(out, b.arena.buf[d.Offset+offset:d.Offset+end])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NewReader returns a read-only stream over a snapshot of the block.
//
// Later writes to the block are not visible through the reader.
func (b *Block) NewReader() (*SnapshotReader, error) {
	data, err := b.ToBytes()
	if err != nil {
		return nil, err
	}
	return NewSnapshotReader(data), nil
}

// WriteTo writes a snapshot of the block to w, throttled by the arena's
// resource controller if it sets an IO limit.
func (b *Block) WriteTo(w io.Writer) (int64, error) {
	return b.WriteToContext(context.Background(), w)
}

// WriteToContext is WriteTo with a context. The snapshot is taken up front,
// so the block stays free for other writers while the export waits on the
// IO limit. Canceling ctx stops the export between chunks.
func (b *Block) WriteToContext(ctx context.Context, w io.Writer) (int64, error) {
	data, err := b.ToBytes()
	if err != nil {
		return 0, err
	}

	var rc *resource.Controller
	if b.arena != nil {
		rc = b.arena.rc
	}

	return resource.WriteThrottled(ctx, rc, w, data)
}

// Free releases the block back to its arena.
func (b *Block) Free() error {
	if b.arena == nil {
		return ErrDisposed
	}
	return b.arena.Free(b)
}

// Close is Free, so a Block can be released with defer.
func (b *Block) Close() error {
	return b.Free()
}

// String renders the block id, its descriptor and its arena.
func (b *Block) String() string {
	d, err := b.describe()
	if err != nil {
		return fmt.Sprintf("ID: %08x, %v", b.id, err)
	}
	return fmt.Sprintf("ID: %08x, %s, MEM: %s", b.id, d, b.arena)
}

// describe returns the block's descriptor as seen under its guard. The
// Locked bit that the guard itself sets is masked out.
func (b *Block) describe() (table.Descriptor, error) {
	var desc table.Descriptor
	err := b.access(func(d table.Descriptor) error {
		desc = d
		desc.State &^= table.Locked
		return nil
	})
	return desc, err
}

func (b *Block) access(fn func(d table.Descriptor) error) error {
	if b.arena == nil {
		return ErrDisposed
	}
	return b.arena.withBlock(b.id, fn)
}
