package table

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"
)

const (
	// WordSize is the size of the header word holding the table length.
	WordSize = 8
	// EntrySize is the size of one descriptor record.
	EntrySize = 24

	offsetField = 8
	sizeField   = 16

	// guardBackoff is how long Lock sleeps between attempts while the guard is held.
	guardBackoff = 20 * time.Microsecond
)

// State holds the descriptor flags.
type State uint32

const (
	// Unallocated marks a free slot.
	Unallocated State = 0
	// Allocated marks a slot describing a live block.
	Allocated State = 1 << 0
	// Locked marks a slot whose guard is held.
	Locked State = 1 << 1
)

// ErrNotAllocated is returned when guarding a descriptor that is not Allocated.
var ErrNotAllocated = errors.New("table: descriptor is not allocated")

func (s State) String() string {
	switch {
	case s&Allocated != 0 && s&Locked != 0:
		return "Allocated, Locked"
	case s&Allocated != 0:
		return "Allocated"
	case s&Locked != 0:
		return "Locked"
	default:
		return "Unallocated"
	}
}

// Descriptor is a decoded table record.
type Descriptor struct {
	State  State
	Offset int
	Size   int
}

// IsAllocated reports whether the descriptor describes a live block.
func (d Descriptor) IsAllocated() bool {
	return d.State&Allocated != 0
}

// End returns the offset one past the last byte of the block.
func (d Descriptor) End() int {
	return d.Offset + d.Size
}

func (d Descriptor) String() string {
	return fmt.Sprintf("[%08xh ... %08xh] (%.1f KB, %s)", d.Offset, d.End(), float64(d.Size)/1024, d.State)
}

// Table is a view over an arena buffer. It is a small value and is cheap to copy.
type Table struct {
	buf []byte
}

// New returns a Table over buf. buf must hold at least WordSize bytes.
func New(buf []byte) Table {
	return Table{buf: buf}
}

// DataStart returns where the data region begins for a table of n slots.
func DataStart(n int) int {
	return WordSize + n*EntrySize
}

// Len returns the number of descriptor slots.
func (t Table) Len() int {
	return int(binary.LittleEndian.Uint64(t.buf[:WordSize])) //nolint:gosec // length is bounded by capacity/EntrySize
}

// SetLen stores the number of descriptor slots.
func (t Table) SetLen(n int) {
	binary.LittleEndian.PutUint64(t.buf[:WordSize], uint64(n)) //nolint:gosec // n is never negative
}

// DataStart returns where the data region currently begins.
func (t Table) DataStart() int {
	return DataStart(t.Len())
}

// Valid reports whether id addresses a slot of the current table.
func (t Table) Valid(id int) bool {
	return id >= 0 && id < t.Len()
}

// Get decodes descriptor id.
func (t Table) Get(id int) Descriptor {
	base := entryBase(id)
	return Descriptor{
		State:  t.State(id),
		Offset: int(binary.LittleEndian.Uint64(t.buf[base+offsetField:])), //nolint:gosec // offsets are bounded by capacity
		Size:   int(binary.LittleEndian.Uint64(t.buf[base+sizeField:])),   //nolint:gosec // sizes are bounded by capacity
	}
}

// State atomically loads the state word of descriptor id.
func (t Table) State(id int) State {
	return State(atomic.LoadUint32(t.statePtr(id)))
}

// IsAllocated reports whether descriptor id is Allocated.
func (t Table) IsAllocated(id int) bool {
	return t.State(id)&Allocated != 0
}

// Offset returns the absolute data offset of descriptor id.
func (t Table) Offset(id int) int {
	return int(binary.LittleEndian.Uint64(t.buf[entryBase(id)+offsetField:])) //nolint:gosec // offsets are bounded by capacity
}

// Size returns the block size of descriptor id.
func (t Table) Size(id int) int {
	return int(binary.LittleEndian.Uint64(t.buf[entryBase(id)+sizeField:])) //nolint:gosec // sizes are bounded by capacity
}

// SetOffset updates the data offset of descriptor id.
func (t Table) SetOffset(id, offset int) {
	binary.LittleEndian.PutUint64(t.buf[entryBase(id)+offsetField:], uint64(offset)) //nolint:gosec // offset is never negative
}

// Put writes an Allocated descriptor for a block at offset with the given size.
// The state word is published last.
func (t Table) Put(id, offset, size int) {
	base := entryBase(id)
	binary.LittleEndian.PutUint64(t.buf[base+offsetField:], uint64(offset)) //nolint:gosec // offset is never negative
	binary.LittleEndian.PutUint64(t.buf[base+sizeField:], uint64(size))     //nolint:gosec // size is never negative
	atomic.StoreUint32(t.statePtr(id), uint32(Allocated))
}

// Release marks descriptor id Unallocated and zeroes its fields.
func (t Table) Release(id int) {
	atomic.StoreUint32(t.statePtr(id), uint32(Unallocated))
	base := entryBase(id)
	clear(t.buf[base+offsetField : base+EntrySize])
}

// Reset zeroes the descriptor records of slots [from, to).
// Used when the table grows over bytes that previously belonged to the data region.
func (t Table) Reset(from, to int) {
	if from >= to {
		return
	}
	clear(t.buf[entryBase(from):entryBase(to)])
}

// Lock acquires the guard of descriptor id, sleeping briefly between attempts
// while another holder has it. It fails immediately with ErrNotAllocated if the
// descriptor is not Allocated. The guard is not reentrant.
func (t Table) Lock(id int) error {
	p := t.statePtr(id)
	for {
		s := atomic.LoadUint32(p)
		if State(s)&Allocated == 0 {
			return ErrNotAllocated
		}
		if State(s)&Locked == 0 && atomic.CompareAndSwapUint32(p, s, s|uint32(Locked)) {
			return nil
		}
		time.Sleep(guardBackoff)
	}
}

// Unlock releases the guard of descriptor id.
func (t Table) Unlock(id int) {
	atomic.AndUint32(t.statePtr(id), ^uint32(Locked))
}

// WithLock runs fn while holding the guard of descriptor id.
// The guard is released on every exit path, including a panic in fn.
func (t Table) WithLock(id int, fn func(d Descriptor) error) error {
	if err := t.Lock(id); err != nil {
		return err
	}
	defer t.Unlock(id)
	return fn(t.Get(id))
}

func (t Table) statePtr(id int) *uint32 {
	return (*uint32)(unsafe.Pointer(&t.buf[entryBase(id)])) //nolint:gosec // state words are 8-byte aligned in an aligned buffer
}

func entryBase(id int) int {
	return WordSize + id*EntrySize
}
