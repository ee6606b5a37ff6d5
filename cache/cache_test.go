// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/statecore/basecache"
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/thor"
)

type testCache struct {
	*cache.Cache
	handles []basecache.Handle[uint64, uint64]
}

// newTestCache registers merkle capable sub-caches, plus one without merkle support in second position.
func newTestCache(t *testing.T, merkle int, opts ...func(*cache.Builder)) *testCache {
	b := cache.NewBuilder()
	for _, opt := range opts {
		opt(b)
	}
	var handles []basecache.Handle[uint64, uint64]
	for i := 0; i < merkle; i++ {
		name := string(rune('a' + i))
		handles = append(handles, basecache.Register(b, basecache.New[uint64, uint64](name, basecache.Options[uint64, uint64]{MerkleRoot: true})))
		if i == 0 {
			handles = append(handles, basecache.Register(b, basecache.New[uint64, uint64]("plain", basecache.Options[uint64, uint64]{})))
		}
	}
	return &testCache{Cache: b.Build(), handles: handles}
}

func (tc *testCache) commit(t *testing.T, height thor.Height, fn func(d *cache.Delta)) {
	d, err := tc.CreateDelta(context.Background())
	require.NoError(t, err)
	fn(d)
	require.NoError(t, tc.Commit(height))
}

func TestCommitVisibility(t *testing.T) {
	tc := newTestCache(t, 1)
	h := tc.handles[0]

	d, err := tc.CreateDelta(context.Background())
	require.NoError(t, err)
	cache.DeltaOf(d, h).Set(1, 100)

	view := tc.CreateView()
	assert.False(t, cache.ViewOf(view, h).Contains(1))
	assert.Equal(t, thor.Height(0), view.Height())
	view.Close()

	require.NoError(t, tc.Commit(1))
	assert.Equal(t, thor.Height(1), tc.Height())

	view = tc.CreateView()
	defer view.Close()
	v, ok := cache.ViewOf(view, h).Get(1)
	assert.True(t, ok)
	assert.Equal(t, uint64(100), v)
	assert.Equal(t, thor.Height(1), view.Height())

	ro := view.ReadOnly()
	assert.True(t, cache.ReaderOf(ro, h).Contains(1))
}

func TestCommitWithoutDelta(t *testing.T) {
	tc := newTestCache(t, 1)
	assert.Equal(t, cache.ErrNoOutstandingDelta, tc.Commit(1))
}

func TestHeightPolicy(t *testing.T) {
	tc := newTestCache(t, 1)
	tc.commit(t, 1, func(*cache.Delta) {})

	_, err := tc.CreateDelta(context.Background())
	require.NoError(t, err)
	err = tc.Commit(1)
	assert.True(t, cache.IsHeightNotIncreasing(err))
	// the rejected delta stays outstanding
	require.NoError(t, tc.Commit(2))

	reset := newTestCache(t, 1, func(b *cache.Builder) { b.AllowHeightReset() })
	reset.commit(t, 5, func(*cache.Delta) {})
	reset.commit(t, 3, func(*cache.Delta) {})
	assert.Equal(t, thor.Height(3), reset.Height())
}

func TestWritePermit(t *testing.T) {
	tc := newTestCache(t, 1)
	d, err := tc.CreateDelta(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = tc.CreateDelta(ctx)
	assert.Error(t, err)

	d.Discard()
	d.Discard()
	_, err = tc.CreateDelta(context.Background())
	require.NoError(t, err)

	acquired := make(chan *cache.Delta)
	go func() {
		d3, err := tc.CreateDelta(context.Background())
		if err == nil {
			acquired <- d3
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second delta acquired while first outstanding")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, tc.Commit(1))
	select {
	case d3 := <-acquired:
		d3.Close()
	case <-time.After(time.Second):
		t.Fatal("second delta not acquired after commit")
	}
}

func TestDetachedDelta(t *testing.T) {
	tc := newTestCache(t, 1)
	h := tc.handles[0]

	dd := tc.CreateDetachableDelta()
	assert.Equal(t, thor.Height(0), dd.Height())
	detached := dd.Detach()
	assert.Panics(t, func() { dd.Detach() })
	dd.Close()
	dd.Close()

	locked, ok := detached.TryLock()
	require.True(t, ok)
	cache.DeltaOf(locked, h).Set(7, 7)
	locked.DependentState().NumTotalTransactions = 3
	locked.Close()

	// changes accumulate across lock sessions
	locked, ok = detached.TryLock()
	require.True(t, ok)
	assert.True(t, cache.DeltaOf(locked, h).Contains(7))
	assert.Equal(t, uint64(3), locked.DependentState().NumTotalTransactions)
	locked.Close()

	tc.commit(t, 1, func(*cache.Delta) {})

	_, ok = detached.TryLock()
	assert.False(t, ok, "stale after commit")

	view := tc.CreateView()
	defer view.Close()
	assert.False(t, cache.ViewOf(view, h).Contains(7))
	assert.Equal(t, uint64(0), view.DependentState().NumTotalTransactions)
}

func TestDetachedLockBlocksCommit(t *testing.T) {
	tc := newTestCache(t, 1)
	dd := tc.CreateDetachableDelta()
	detached := dd.Detach()
	dd.Close()

	locked, ok := detached.TryLock()
	require.True(t, ok)

	_, err := tc.CreateDelta(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	committed := make(chan struct{})
	go func() {
		defer wg.Done()
		assert.NoError(t, tc.Commit(1))
		close(committed)
	}()

	select {
	case <-committed:
		t.Fatal("commit went through while a delta is locked")
	case <-time.After(20 * time.Millisecond):
	}
	locked.Close()
	wg.Wait()

	_, ok = detached.TryLock()
	assert.False(t, ok)
}

func TestDetachableLockWithWaitingCommit(t *testing.T) {
	tc := newTestCache(t, 1)
	h := tc.handles[0]
	dd := tc.CreateDetachableDelta()

	_, err := tc.CreateDelta(context.Background())
	require.NoError(t, err)
	committed := make(chan error, 1)
	go func() { committed <- tc.Commit(1) }()
	time.Sleep(20 * time.Millisecond)

	// the commit now waits for dd, so a second read lock would be refused
	locked := dd.Lock()
	cache.DeltaOf(locked, h).Set(5, 5)
	assert.True(t, cache.DeltaOf(locked, h).Contains(5))
	assert.Panics(t, func() { dd.Detach() })
	locked.Close()

	select {
	case <-committed:
		t.Fatal("commit went through while the snapshot is held")
	default:
	}
	dd.Close()
	select {
	case err := <-committed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("commit not released")
	}

	view := tc.CreateView()
	defer view.Close()
	assert.False(t, cache.ViewOf(view, h).Contains(5))
}

func TestDependentState(t *testing.T) {
	tc := newTestCache(t, 1)
	d, err := tc.CreateDelta(context.Background())
	require.NoError(t, err)
	d.DependentState().LastRecalculationHeight = 9

	view := tc.CreateView()
	assert.Equal(t, thor.Height(0), view.DependentState().LastRecalculationHeight)
	view.Close()

	require.NoError(t, tc.Commit(1))
	view = tc.CreateView()
	defer view.Close()
	assert.Equal(t, thor.Height(9), view.DependentState().LastRecalculationHeight)
}

func TestStateHash(t *testing.T) {
	tc := newTestCache(t, 3)
	require.Len(t, tc.handles, 4)
	assert.Equal(t, []string{"a", "plain", "b", "c"}, tc.SubCacheNames())

	tc.commit(t, 1, func(d *cache.Delta) {
		for i, h := range tc.handles {
			cache.DeltaOf(d, h).Set(uint64(i), uint64(i+1))
		}
		info := d.CalculateStateHash(1)
		assert.Len(t, info.SubCacheMerkleRoots, 3)
	})

	view := tc.CreateView()
	defer view.Close()

	info := view.CalculateStateHash()
	require.Len(t, info.SubCacheMerkleRoots, 3)

	var roots [][]byte
	for _, h := range []basecache.Handle[uint64, uint64]{tc.handles[0], tc.handles[2], tc.handles[3]} {
		root, ok := cache.ViewOf(view, h).TryGetMerkleRoot()
		require.True(t, ok)
		roots = append(roots, root.Bytes())
	}
	assert.Equal(t, thor.Sha3(roots...), info.StateHash)
	assert.Equal(t, info, view.CalculateStateHash())
}

func TestDeltaStateHashIsPure(t *testing.T) {
	tc := newTestCache(t, 2)
	h := tc.handles[0]
	tc.commit(t, 1, func(d *cache.Delta) { cache.DeltaOf(d, h).Set(1, 1) })

	view := tc.CreateView()
	committed := view.CalculateStateHash()
	view.Close()

	d, err := tc.CreateDelta(context.Background())
	require.NoError(t, err)
	defer d.Close()

	// an untouched delta hashes like committed state
	assert.Equal(t, committed, d.CalculateStateHash(2))

	cache.DeltaOf(d, h).Set(2, 2)
	first := d.CalculateStateHash(2)
	assert.NotEqual(t, committed.StateHash, first.StateHash)
	assert.Equal(t, first, d.CalculateStateHash(2))
	// only the root of the touched sub-cache moves
	require.Len(t, first.SubCacheMerkleRoots, len(committed.SubCacheMerkleRoots))
	require.Len(t, first.SubCacheMerkleRoots, 2)
	assert.NotEqual(t, committed.SubCacheMerkleRoots[0], first.SubCacheMerkleRoots[0])
	assert.Equal(t, committed.SubCacheMerkleRoots[1], first.SubCacheMerkleRoots[1])
	assert.True(t, cache.DeltaOf(d, h).Contains(2))

	view = tc.CreateView()
	defer view.Close()
	assert.Equal(t, committed, view.CalculateStateHash())
}

func TestStateHashWithoutMerkleSubCaches(t *testing.T) {
	b := cache.NewBuilder()
	basecache.Register(b, basecache.New[uint64, uint64]("plain", basecache.Options[uint64, uint64]{}))
	c := b.Build()
	view := c.CreateView()
	defer view.Close()
	info := view.CalculateStateHash()
	assert.True(t, info.StateHash.IsZero())
	assert.Empty(t, info.SubCacheMerkleRoots)
}

func TestDeltaCheckpoint(t *testing.T) {
	tc := newTestCache(t, 1)
	h := tc.handles[0]
	d, err := tc.CreateDelta(context.Background())
	require.NoError(t, err)
	defer d.Close()

	cache.DeltaOf(d, h).Set(1, 1)
	before := d.CalculateStateHash(1)

	cp := d.Checkpoint()
	cache.DeltaOf(d, h).Set(2, 2)
	d.DependentState().NumTotalTransactions = 5
	d.RevertTo(cp)

	assert.False(t, cache.DeltaOf(d, h).Contains(2))
	assert.Equal(t, uint64(0), d.DependentState().NumTotalTransactions)
	assert.Equal(t, before, d.CalculateStateHash(1))
}

func TestRegisterDuplicate(t *testing.T) {
	b := cache.NewBuilder()
	basecache.Register(b, basecache.New[uint64, uint64]("x", basecache.Options[uint64, uint64]{}))
	assert.Panics(t, func() {
		basecache.Register(b, basecache.New[uint64, uint64]("x", basecache.Options[uint64, uint64]{}))
	})
}
