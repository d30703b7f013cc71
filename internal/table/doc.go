// Package table encodes the descriptor table stored at the head of an arena buffer.
//
// # Layout
//
//	[0, 8)                  table length n (uint64, little endian)
//	[8 + i*24, 8 + (i+1)*24) descriptor i:
//	    +0  state  uint32 (native order, accessed atomically)
//	    +4  reserved, always zero
//	    +8  offset uint64 (little endian, absolute from buffer start)
//	    +16 size   uint64 (little endian)
//	[8 + n*24, capacity)    data region
//
// # Concurrency
//
// Table does no structural locking of its own. The owning arena serializes
// every call that changes the length, offsets or sizes. The state word is
// the exception: its Locked bit is the per-descriptor guard and is always
// read and written atomically, so Lock/Unlock may run concurrently from
// many goroutines.
//
// The buffer must be at least 8-byte aligned so that every state word is
// naturally aligned for atomic access.
package table
