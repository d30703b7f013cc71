// Package mmap provides anonymous read-write memory mappings.
//
// # Overview
//
// MapAnon reserves a zero-filled region outside the Go heap. The garbage
// collector never scans or moves it, which makes it a good backing store
// for large arena buffers.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT
//
// # Thread Safety
//
// Close is idempotent and protected by atomic operations. Callers must
// ensure no goroutine touches Bytes() after Close returns.
package mmap
