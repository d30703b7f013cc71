// Package provider supplies the raw buffers that arenas sub-allocate from.
//
// A Provider has exactly two operations: Reserve hands out a zero-filled
// buffer of the requested size and Release gives it back. Arenas call
// Reserve once at construction and Release once when closed; they never
// see how the bytes were obtained.
//
// Two implementations are included:
//
//   - Anon: off-heap anonymous memory mappings (default for arenas)
//   - Heap: 64-byte aligned Go heap slices
//
// Any bookkeeping an implementation needs to release a buffer (such as the
// mapping behind it) stays private to that implementation.
package provider
