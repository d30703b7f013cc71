// Package bulk implements byte-range fill and copy kernels that split large
// ranges across goroutines.
//
// Only the post-condition is guaranteed: when Zero or Copy returns, the
// whole range has been written. Which part completes first is unspecified.
package bulk

import (
	"unsafe"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/blockarena/resource"
)

const (
	// DefaultThreshold is the smallest range that is split across workers.
	DefaultThreshold = 256 * 1024
	// minChunk is the smallest share handed to one worker.
	minChunk = 64 * 1024
)

// Runner executes bulk operations, borrowing helper goroutines from a
// resource controller. A nil controller allows up to GOMAXPROCS helpers.
type Runner struct {
	rc        *resource.Controller
	threshold int
}

// NewRunner creates a Runner. Ranges shorter than threshold run on the
// calling goroutine; threshold <= 0 selects DefaultThreshold.
func NewRunner(rc *resource.Controller, threshold int) *Runner {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Runner{rc: rc, threshold: threshold}
}

// Zero sets every byte of dst to zero.
func (r *Runner) Zero(dst []byte) {
	r.run(len(dst), func(lo, hi int) {
		clear(dst[lo:hi])
	})
}

// Copy copies src into dst; len(dst) must equal len(src). Overlapping
// ranges are handled with a single memmove on the calling goroutine.
func (r *Runner) Copy(dst, src []byte) {
	if len(dst) != len(src) {
		panic("bulk: copy length mismatch")
	}
	if Overlaps(dst, src) {
		copy(dst, src)
		return
	}
	r.run(len(dst), func(lo, hi int) {
		copy(dst[lo:hi], src[lo:hi])
	})
}

// run splits [0, n) into contiguous shares and applies fn to each.
func (r *Runner) run(n int, fn func(lo, hi int)) {
	if n == 0 {
		return
	}
	if n < r.threshold {
		fn(0, n)
		return
	}

	want := min(r.rc.MaxWorkers(), n/minChunk) - 1
	helpers := 0
	for helpers < want && r.rc.TryAcquireWorker() {
		helpers++
	}
	defer func() {
		for i := 0; i < helpers; i++ {
			r.rc.ReleaseWorker()
		}
	}()

	if helpers == 0 {
		fn(0, n)
		return
	}

	shares := helpers + 1
	size := (n + shares - 1) / shares

	var g errgroup.Group
	for lo := size; lo < n; lo += size {
		hi := min(lo+size, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	fn(0, min(size, n))
	_ = g.Wait()
}

// Overlaps reports whether a and b share any bytes.
func Overlaps(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	aLo := uintptr(unsafe.Pointer(unsafe.SliceData(a))) //nolint:gosec // address comparison only
	bLo := uintptr(unsafe.Pointer(unsafe.SliceData(b))) //nolint:gosec // address comparison only
	return aLo < bLo+uintptr(len(b)) && bLo < aLo+uintptr(len(a))
}
