// Package pool provides reusable scratch buffers for staging block moves.
// Uses sync.Pool so repeated compactions do not allocate a fresh buffer each time.
package pool

import "sync"

const (
	// DefaultScratchSize is the initial capacity of a pooled buffer.
	DefaultScratchSize = 64 << 10

	// MaxPooledSize is the largest capacity kept in the pool.
	// Bigger buffers are dropped on Put so one huge move does not pin memory.
	MaxPooledSize = 16 << 20
)

// Scratch holds a reusable byte buffer.
type Scratch struct {
	Buf []byte
}

var scratchPool = sync.Pool{
	New: func() any {
		return &Scratch{Buf: make([]byte, 0, DefaultScratchSize)}
	},
}

// Get retrieves a Scratch whose Buf has length n. The contents are undefined.
func Get(n int) *Scratch {
	s := scratchPool.Get().(*Scratch)
	if cap(s.Buf) < n {
		s.Buf = make([]byte, n)
	}
	s.Buf = s.Buf[:n]
	return s
}

// Put returns a Scratch to the pool for reuse.
func Put(s *Scratch) {
	if cap(s.Buf) > MaxPooledSize {
		s.Buf = make([]byte, 0, DefaultScratchSize)
	}
	s.Buf = s.Buf[:0]
	scratchPool.Put(s)
}
