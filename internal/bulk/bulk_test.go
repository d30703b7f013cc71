package bulk

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/blockarena/resource"
)

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*7 + 3)
	}
	return b
}

func TestRunner_Zero(t *testing.T) {
	sizes := []int{0, 1, 1000, DefaultThreshold - 1, DefaultThreshold, 3*DefaultThreshold + 17}
	runners := map[string]*Runner{
		"default":     NewRunner(nil, 0),
		"one-worker":  NewRunner(resource.NewController(resource.Config{MaxWorkers: 1}), 0),
		"tiny-thresh": NewRunner(resource.NewController(resource.Config{MaxWorkers: 4}), 1),
	}

	for name, r := range runners {
		for _, n := range sizes {
			buf := pattern(n)
			r.Zero(buf)
			assert.Equal(t, make([]byte, n), buf, "%s n=%d", name, n)
		}
	}
}

func TestRunner_Copy(t *testing.T) {
	r := NewRunner(resource.NewController(resource.Config{MaxWorkers: 4}), 0)

	for _, n := range []int{0, 10, DefaultThreshold, 2*DefaultThreshold + 5} {
		src := pattern(n)
		dst := make([]byte, n)
		r.Copy(dst, src)
		assert.True(t, bytes.Equal(src, dst), "n=%d", n)
	}
}

func TestRunner_CopyOverlapping(t *testing.T) {
	r := NewRunner(nil, 1)

	const n = 1 << 20
	want := pattern(n)

	// Move left by a small shift, as compaction does.
	buf := make([]byte, n+100)
	copy(buf[100:], want)
	r.Copy(buf[:n], buf[100:])
	assert.True(t, bytes.Equal(want, buf[:n]))

	// Move right, as table growth does.
	buf = make([]byte, n+100)
	copy(buf, want)
	r.Copy(buf[100:], buf[:n])
	assert.True(t, bytes.Equal(want, buf[100:]))
}

func TestRunner_CopyLengthMismatch(t *testing.T) {
	r := NewRunner(nil, 0)
	assert.Panics(t, func() { r.Copy(make([]byte, 2), make([]byte, 3)) })
}

func TestRunner_ReleasesWorkers(t *testing.T) {
	rc := resource.NewController(resource.Config{MaxWorkers: 3})
	r := NewRunner(rc, 1)

	r.Zero(make([]byte, 1<<20))

	for i := 0; i < 3; i++ {
		assert.True(t, rc.TryAcquireWorker(), "slot %d not returned", i)
	}
}

func TestOverlaps(t *testing.T) {
	buf := make([]byte, 100)

	assert.True(t, Overlaps(buf[0:50], buf[49:60]))
	assert.True(t, Overlaps(buf[10:20], buf[0:100]))
	assert.False(t, Overlaps(buf[0:50], buf[50:60]))
	assert.False(t, Overlaps(buf[0:0], buf[0:10]))
	assert.False(t, Overlaps(buf, make([]byte, 100)))
}

func BenchmarkRunner_Zero(b *testing.B) {
	buf := make([]byte, 8<<20)
	r := NewRunner(nil, 0)

	b.SetBytes(int64(len(buf)))
	for b.Loop() {
		r.Zero(buf)
	}
}
