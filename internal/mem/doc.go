// Package mem provides aligned heap allocation.
//
// # Aligned Allocation
//
// Returns cache-line aligned (64-byte) zeroed byte slices. Oversized or
// overflowing requests are reported as errors instead of crashing the
// runtime.
package mem
