// Package resource implements a controller for limits shared by many arenas.
//
// A Controller governs three resource types:
//
//   - Memory: bytes reserved by arena buffers (non-blocking, fail-fast)
//   - Workers: extra goroutines used to split bulk fill/move work
//   - IO: throughput of streamed block exports (token bucket)
//
// # Memory
//
// Every arena reserves its whole capacity up front, so the controller only
// sees one AcquireMemory per arena and one ReleaseMemory when it is closed:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB across all arenas
//	})
//
//	a, err := blockarena.New(64<<20, blockarena.WithResourceController(rc))
//	if errors.Is(err, blockarena.ErrAllocationFailed) {
//	    // budget exhausted
//	}
//
// # Workers
//
// TryAcquireWorker never blocks. A bulk operation that cannot get a slot
// simply does that share of the work on the calling goroutine.
//
// # Nil Safety
//
// All methods handle a nil Controller: memory and IO become unlimited and
// worker slots are always granted.
package resource
