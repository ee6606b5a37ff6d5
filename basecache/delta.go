// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package basecache

import (
	"github.com/vechain/statecore/stackedmap"
	"github.com/vechain/statecore/thor"
)

type entry[V any] struct {
	value   V
	removed bool
}

type checkpoint struct {
	size      int
	root      thor.Bytes32
	rootDirty bool
}

// Delta journals changes over the committed map.
type Delta[K comparable, V any] struct {
	base        *Cache[K, V]
	sm          *stackedmap.StackedMap[K, entry[V]]
	size        int
	root        thor.Bytes32
	rootDirty   bool
	checkpoints []checkpoint
}

func newDelta[K comparable, V any](base *Cache[K, V]) *Delta[K, V] {
	d := &Delta[K, V]{
		base: base,
		sm: stackedmap.New[K, entry[V]](func(key K) (entry[V], bool) {
			value, ok := base.committed[key]
			return entry[V]{value: value}, ok
		}),
		size: len(base.committed),
		root: base.root,
	}
	d.sm.Push()
	return d
}

func (d *Delta[K, V]) Get(key K) (V, bool) {
	e, ok := d.sm.Get(key)
	if !ok || e.removed {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (d *Delta[K, V]) Contains(key K) bool {
	_, ok := d.Get(key)
	return ok
}

func (d *Delta[K, V]) Size() int { return d.size }

// Set inserts or replaces the value of key.
func (d *Delta[K, V]) Set(key K, value V) {
	if !d.Contains(key) {
		d.size++
	}
	d.sm.Put(key, entry[V]{value: value})
	d.rootDirty = true
}

// Insert adds key and reports false if it is already present.
func (d *Delta[K, V]) Insert(key K, value V) bool {
	if d.Contains(key) {
		return false
	}
	d.Set(key, value)
	return true
}

// Remove deletes key and reports whether it was present.
func (d *Delta[K, V]) Remove(key K) bool {
	if !d.Contains(key) {
		return false
	}
	d.sm.Put(key, entry[V]{removed: true})
	d.size--
	d.rootDirty = true
	return true
}

func (d *Delta[K, V]) ForEach(fn func(key K, value V) bool) {
	for key, value := range d.base.committed {
		if d.sm.Touched(key) {
			continue
		}
		if !fn(key, value) {
			return
		}
	}
	for key, e := range d.sm.Changes() {
		if e.removed {
			continue
		}
		if !fn(key, e.value) {
			return
		}
	}
}

// Changes returns the net effect of the delta on the committed map.
func (d *Delta[K, V]) Changes() (upserts map[K]V, removed []K) {
	upserts = make(map[K]V)
	for key, e := range d.sm.Changes() {
		if !e.removed {
			upserts[key] = e.value
			continue
		}
		if _, ok := d.base.committed[key]; ok {
			removed = append(removed, key)
		}
	}
	return
}

// Journal visits every change in the order it was made.
func (d *Delta[K, V]) Journal(fn func(key K, value V, removed bool) bool) {
	d.sm.Journal(func(key K, e entry[V]) bool {
		return fn(key, e.value, e.removed)
	})
}

// Checkpoint marks the current position. The returned value is only meaningful to RevertTo.
func (d *Delta[K, V]) Checkpoint() int {
	d.checkpoints = append(d.checkpoints, checkpoint{d.size, d.root, d.rootDirty})
	return d.sm.Push()
}

// RevertTo drops every change made after the checkpoint was taken.
func (d *Delta[K, V]) RevertTo(cp int) {
	if cp < 1 || cp > len(d.checkpoints) {
		panic("basecache: invalid checkpoint")
	}
	saved := d.checkpoints[cp-1]
	d.checkpoints = d.checkpoints[:cp-1]
	d.sm.PopTo(cp)
	d.size, d.root, d.rootDirty = saved.size, saved.root, saved.rootDirty
}

// UpdateMerkleRoot recomputes the root if entries changed since the last update.
func (d *Delta[K, V]) UpdateMerkleRoot(_ thor.Height) {
	if !d.base.opts.MerkleRoot || !d.rootDirty {
		return
	}
	d.root = d.base.computeRoot(d.ForEach)
	d.rootDirty = false
}

// TryGetMerkleRoot returns the root, unless changes were made since the last update.
func (d *Delta[K, V]) TryGetMerkleRoot() (thor.Bytes32, bool) {
	if !d.base.opts.MerkleRoot || d.rootDirty {
		return thor.Bytes32{}, false
	}
	return d.root, true
}

// Prune removes every entry the prune function reports as stale.
func (d *Delta[K, V]) Prune(height thor.Height, time thor.Timestamp) {
	prune := d.base.opts.Prune
	if prune == nil {
		return
	}
	var stale []K
	d.ForEach(func(key K, value V) bool {
		if prune(key, value, height, time) {
			stale = append(stale, key)
		}
		return true
	})
	for _, key := range stale {
		d.Remove(key)
	}
}
