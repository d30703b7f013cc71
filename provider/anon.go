package provider

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/hupe1980/blockarena/internal/mmap"
)

// AnonProvider reserves buffers as anonymous memory mappings outside the Go heap.
type AnonProvider struct {
	mu       sync.Mutex
	mappings map[uintptr]*mmap.Mapping
}

var defaultAnon = NewAnon()

// Anon returns the process-wide anonymous mapping provider.
func Anon() *AnonProvider {
	return defaultAnon
}

// NewAnon creates an anonymous mapping provider with its own bookkeeping.
func NewAnon() *AnonProvider {
	return &AnonProvider{
		mappings: make(map[uintptr]*mmap.Mapping),
	}
}

// Reserve implements Provider.
func (p *AnonProvider) Reserve(size int) ([]byte, error) {
	m, err := mmap.MapAnon(size)
	if err != nil {
		return nil, fmt.Errorf("provider: anon reserve: %w", err)
	}

	buf := m.Bytes()

	p.mu.Lock()
	p.mappings[bufferKey(buf)] = m
	p.mu.Unlock()

	return buf, nil
}

// Release implements Provider.
func (p *AnonProvider) Release(buf []byte) error {
	if len(buf) == 0 {
		return ErrUnknownBuffer
	}

	key := bufferKey(buf)

	p.mu.Lock()
	m, ok := p.mappings[key]
	delete(p.mappings, key)
	p.mu.Unlock()

	if !ok {
		return ErrUnknownBuffer
	}
	return m.Close()
}

// Live returns the number of buffers reserved and not yet released.
func (p *AnonProvider) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.mappings)
}

func bufferKey(buf []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(buf))) //nolint:gosec // address is used as a map key only
}
