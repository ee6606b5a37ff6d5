// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package basecache provides a generic map backed sub-cache for the composite cache.
package basecache

import (
	"sync/atomic"

	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/thor"
)

// PruneFunc reports whether an entry is stale at the given height and time.
type PruneFunc[K comparable, V any] func(key K, value V, height thor.Height, time thor.Timestamp) bool

// Options of a sub-cache.
type Options[K comparable, V any] struct {
	// Codec defaults to RLPCodec.
	Codec Codec[K, V]
	// MerkleRoot makes the sub-cache contribute to the state hash.
	MerkleRoot bool
	// Prune enables pruning when set.
	Prune PruneFunc[K, V]
}

// Reader is the read-only projection shared by views and deltas.
type Reader[K comparable, V any] interface {
	Get(key K) (V, bool)
	Contains(key K) bool
	Size() int
	// ForEach visits entries in no particular order until fn returns false.
	ForEach(fn func(key K, value V) bool)
}

// Handle is the typed handle of a registered basecache.
type Handle[K comparable, V any] = cache.Handle[*View[K, V], *Delta[K, V], Reader[K, V]]

// Cache is a sub-cache keeping committed entries in a map.
// It must only be driven through the composite cache, which serializes commits
// against every reader.
type Cache[K comparable, V any] struct {
	name      string
	opts      Options[K, V]
	committed map[K]V
	root      thor.Bytes32
	current   *Delta[K, V]
	epoch     atomic.Uint64
}

var _ cache.SubCache[*View[uint64, uint64], *Delta[uint64, uint64], Reader[uint64, uint64]] = (*Cache[uint64, uint64])(nil)

// New creates an empty sub-cache.
func New[K comparable, V any](name string, opts Options[K, V]) *Cache[K, V] {
	if opts.Codec == nil {
		opts.Codec = RLPCodec[K, V]()
	}
	c := &Cache[K, V]{
		name:      name,
		opts:      opts,
		committed: make(map[K]V),
	}
	if opts.MerkleRoot {
		c.root = c.computeRoot(c.forEachCommitted)
	}
	return c
}

// Register adds c to the cache builder and returns its typed handle.
func Register[K comparable, V any](b *cache.Builder, c *Cache[K, V]) Handle[K, V] {
	return cache.Register[*View[K, V], *Delta[K, V], Reader[K, V]](b, c)
}

func (c *Cache[K, V]) Name() string { return c.name }

// Codec returns the codec used for merkle leaves and storage.
func (c *Cache[K, V]) Codec() Codec[K, V] { return c.opts.Codec }

func (c *Cache[K, V]) SupportsMerkleRoot() bool { return c.opts.MerkleRoot }

func (c *Cache[K, V]) CreateView() *View[K, V] {
	return &View[K, V]{c}
}

func (c *Cache[K, V]) CreateDelta() *Delta[K, V] {
	c.current = newDelta(c)
	return c.current
}

func (c *Cache[K, V]) CreateDetachedDelta() cache.DetachedSubCache[*Delta[K, V]] {
	return &detached[K, V]{
		base:  c,
		epoch: c.epoch.Load(),
		delta: newDelta(c),
	}
}

// Commit folds the pending delta into the committed map.
func (c *Cache[K, V]) Commit() {
	d := c.current
	if d == nil {
		return
	}
	upserts, removed := d.Changes()
	for key, value := range upserts {
		c.committed[key] = value
	}
	for _, key := range removed {
		delete(c.committed, key)
	}
	if c.opts.MerkleRoot {
		if d.rootDirty {
			c.root = c.computeRoot(c.forEachCommitted)
		} else {
			c.root = d.root
		}
	}
	c.current = nil
	c.epoch.Add(1)
}

func (c *Cache[K, V]) ViewReader(v *View[K, V]) Reader[K, V]   { return v }
func (c *Cache[K, V]) DeltaReader(d *Delta[K, V]) Reader[K, V] { return d }

// Replace swaps the committed content for entries, as done when loading from storage.
func (c *Cache[K, V]) Replace(entries map[K]V) {
	if entries == nil {
		entries = make(map[K]V)
	}
	c.committed = entries
	if c.opts.MerkleRoot {
		c.root = c.computeRoot(c.forEachCommitted)
	}
	c.current = nil
	c.epoch.Add(1)
}

func (c *Cache[K, V]) forEachCommitted(fn func(key K, value V) bool) {
	for key, value := range c.committed {
		if !fn(key, value) {
			return
		}
	}
}

type detached[K comparable, V any] struct {
	base  *Cache[K, V]
	epoch uint64
	delta *Delta[K, V]
}

// Lock hands out the detached delta while no commit happened since it was created.
func (d *detached[K, V]) Lock() (*Delta[K, V], bool) {
	if d.base.epoch.Load() != d.epoch {
		return nil, false
	}
	return d.delta, true
}

// View reads committed entries.
type View[K comparable, V any] struct {
	base *Cache[K, V]
}

func (v *View[K, V]) Get(key K) (V, bool) {
	value, ok := v.base.committed[key]
	return value, ok
}

func (v *View[K, V]) Contains(key K) bool {
	_, ok := v.base.committed[key]
	return ok
}

func (v *View[K, V]) Size() int { return len(v.base.committed) }

func (v *View[K, V]) ForEach(fn func(key K, value V) bool) {
	v.base.forEachCommitted(fn)
}

// TryGetMerkleRoot returns the committed root.
func (v *View[K, V]) TryGetMerkleRoot() (thor.Bytes32, bool) {
	return v.base.root, v.base.opts.MerkleRoot
}
