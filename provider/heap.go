package provider

import (
	"fmt"

	"github.com/hupe1980/blockarena/internal/mem"
)

type heapProvider struct{}

// Heap returns a provider backed by the Go heap. Buffers are released by
// dropping the last reference; the garbage collector reclaims them.
func Heap() Provider {
	return heapProvider{}
}

func (heapProvider) Reserve(size int) ([]byte, error) {
	buf, err := mem.AllocAligned(size)
	if err != nil {
		return nil, fmt.Errorf("provider: heap reserve: %w", err)
	}
	return buf, nil
}

func (heapProvider) Release([]byte) error {
	return nil
}
