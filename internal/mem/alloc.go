package mem

import (
	"errors"
	"fmt"
	"math"
	"unsafe"
)

// Alignment is the byte alignment of every returned slice (one cache line).
const Alignment = 64

// MaxSize is the largest request AllocAligned will attempt. Larger sizes
// cannot be padded for alignment without overflowing int.
const MaxSize = math.MaxInt - Alignment

// ErrInvalidSize is returned for negative or overflowing sizes.
var ErrInvalidSize = errors.New("mem: invalid allocation size")

// AllocAligned allocates a zeroed byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) (buf []byte, err error) {
	if size < 0 || size > MaxSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size == 0 {
		return nil, nil
	}

	// make panics with a runtime error when the length exceeds the
	// platform's addressable limit.
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%w: %d bytes: %v", ErrInvalidSize, size, r)
		}
	}()

	raw := make([]byte, size+Alignment)

	addr := uintptr(unsafe.Pointer(&raw[0])) //nolint:gosec // unsafe is required for memory alignment
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return raw[offset : offset+uintptr(size) : offset+uintptr(size)], nil
}

// IsAligned reports whether buf starts at an address divisible by align.
// Empty slices are considered aligned.
func IsAligned(buf []byte, align int) bool {
	if len(buf) == 0 || align <= 1 {
		return true
	}
	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for alignment checks
	return addr%uintptr(align) == 0
}
