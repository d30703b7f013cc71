package blockarena

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestArena_ConcurrentAllocate(t *testing.T) {
	const (
		workers = 32
		size    = 1024
	)

	a := newArena(t, 1024*1024)

	blocks := make([]*Block, workers)
	var g errgroup.Group
	for i := range workers {
		g.Go(func() error {
			b, err := a.Allocate(size)
			if err != nil {
				return err
			}
			got, err := b.Size()
			if err != nil {
				return err
			}
			if got != size {
				return fmt.Errorf("block %d has size %d", b.ID(), got)
			}
			blocks[i] = b
			return nil
		})
	}
	require.NoError(t, g.Wait())

	count, err := a.AllocatedBlockCount()
	require.NoError(t, err)
	assert.Equal(t, workers, count)
	assertPacked(t, a)

	require.NoError(t, a.Defragment())
	assertCompacted(t, a)

	var fg errgroup.Group
	for _, b := range blocks {
		fg.Go(b.Free)
	}
	require.NoError(t, fg.Wait())

	count, err = a.AllocatedBlockCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestArena_ConcurrentAccessDuringMoves(t *testing.T) {
	const (
		writers = 8
		rounds  = 200
	)

	a := newArena(t, 256*1024, WithParallelThreshold(512))

	var g errgroup.Group

	// Writers own one block each and keep verifying it while others
	// allocate and free around it, forcing growth and compaction moves.
	for w := range writers {
		g.Go(func() error {
			b, err := a.Allocate(300 + w)
			if err != nil {
				return err
			}
			defer func() { _ = b.Free() }()

			for r := range rounds {
				seed := byte(w*31 + r)
				size, err := b.Size()
				if err != nil {
					return err
				}
				for i := range size {
					if err := b.SetByteAt(i, seed+byte(i)); err != nil {
						return err
					}
				}
				data, err := b.ToBytes()
				if err != nil {
					return err
				}
				for i, v := range data {
					if v != seed+byte(i) {
						return fmt.Errorf("writer %d round %d: byte %d = %#x", w, r, i, v)
					}
				}
			}
			return nil
		})
	}

	for c := range writers {
		g.Go(func() error {
			for r := range rounds {
				b, err := a.Allocate(64 + (c*r)%700)
				if err != nil {
					return err
				}
				if err := b.Free(); err != nil {
					return err
				}
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())

	count, err := a.AllocatedBlockCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestArena_ConcurrentBookkeeping(t *testing.T) {
	a := newArena(t, 512*1024)

	var (
		mu   sync.Mutex
		live = map[int]*Block{}
	)

	var g errgroup.Group
	for w := range 16 {
		g.Go(func() error {
			var mine []*Block
			for i := range 64 {
				b, err := a.Allocate(16 + (w+i)%128)
				if err != nil {
					return err
				}
				mine = append(mine, b)
				if i%4 == 3 {
					victim := mine[0]
					mine = mine[1:]
					if err := victim.Free(); err != nil {
						return err
					}
				}
			}
			mu.Lock()
			for _, b := range mine {
				live[b.ID()] = b
			}
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	count, err := a.AllocatedBlockCount()
	require.NoError(t, err)
	assert.Equal(t, 16*48, count)
	assert.Len(t, live, count, "live blocks have distinct ids")
	assertPacked(t, a)

	require.NoError(t, a.Defragment())
	assertCompacted(t, a)
}
