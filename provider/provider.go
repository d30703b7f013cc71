package provider

import (
	"errors"
)

// ErrUnknownBuffer is returned by Release for a buffer the provider did not hand out.
var ErrUnknownBuffer = errors.New("provider: buffer not reserved by this provider")

// Provider reserves and releases raw byte buffers.
//
// Reserve must return a zero-filled buffer of exactly size bytes whose first
// byte is at least 8-byte aligned, or an error. Implementations must be safe
// for concurrent use.
type Provider interface {
	Reserve(size int) ([]byte, error)
	Release(buf []byte) error
}

// Funcs adapts a pair of plain functions to the Provider interface.
type Funcs struct {
	ReserveFunc func(size int) ([]byte, error)
	ReleaseFunc func(buf []byte) error
}

// Reserve implements Provider.
func (f Funcs) Reserve(size int) ([]byte, error) {
	return f.ReserveFunc(size)
}

// Release implements Provider. A nil ReleaseFunc is a no-op.
func (f Funcs) Release(buf []byte) error {
	if f.ReleaseFunc == nil {
		return nil
	}
	return f.ReleaseFunc(buf)
}
