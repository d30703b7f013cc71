package blockarena

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when an arena is configured with an unusable capacity or provider.
	ErrInvalidConfig = errors.New("blockarena: invalid configuration")
	// ErrOutOfMemory is returned when an allocation does not fit in the arena.
	ErrOutOfMemory = errors.New("blockarena: out of memory")
	// ErrAllocationFailed is returned when the buffer provider cannot reserve the arena buffer.
	// Errors matching it also match ErrOutOfMemory.
	ErrAllocationFailed = errors.New("blockarena: allocation failed")
	// ErrNotFound is returned when an id does not name an allocated block.
	ErrNotFound = errors.New("blockarena: block not found")
	// ErrDisposed is returned by every operation after the arena has been closed.
	ErrDisposed = errors.New("blockarena: arena disposed")
	// ErrInvalidOperation is returned when accessing a block that is no longer allocated.
	ErrInvalidOperation = errors.New("blockarena: invalid operation")
	// ErrOutOfRange is returned for byte addresses or ranges outside a block.
	ErrOutOfRange = errors.New("blockarena: out of range")
	// ErrIO is returned for invalid positioning of a snapshot reader.
	ErrIO = errors.New("blockarena: i/o error")
)

// AllocationError reports that the buffer provider could not reserve an arena buffer.
//
// It matches both ErrAllocationFailed and ErrOutOfMemory with errors.Is.
// The provider's error can be accessed via errors.Unwrap.
type AllocationError struct {
	Size  int
	cause error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("blockarena: unable to allocate %d bytes: %v", e.Size, e.cause)
}

func (e *AllocationError) Unwrap() error { return e.cause }

// Is implements errors.Is.
func (e *AllocationError) Is(target error) bool {
	return target == ErrAllocationFailed || target == ErrOutOfMemory
}
