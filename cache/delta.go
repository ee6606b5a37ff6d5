// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync"

	"github.com/vechain/statecore/thor"
)

// Delta stages changes against committed state.
//
// A primary delta comes from Cache.CreateDelta and holds the write permit until it is
// committed or discarded. A locked delta comes from DetachedDelta.TryLock and holds the
// height read lock until closed. Neither is safe for concurrent use.
type Delta struct {
	cache   *Cache
	subs    []any
	state   *DependentState
	primary bool

	// for locked deltas
	release func()
	once    sync.Once
}

// DependentState returns the private dependent state of the delta, which replaces
// the committed one when the delta is committed.
func (d *Delta) DependentState() *DependentState { return d.state }

// ReadOnly returns a read-only projection over the delta.
func (d *Delta) ReadOnly() *ReadOnly {
	readers := make([]any, len(d.subs))
	for i, p := range d.cache.plugins {
		readers[i] = p.deltaReader(d.subs[i])
	}
	return &ReadOnly{height: d.cache.Height(), readers: readers, dependentState: *d.state}
}

// CalculateStateHash refreshes the merkle roots of supporting sub-caches for height
// and combines them into the state hash.
func (d *Delta) CalculateStateHash(height thor.Height) StateHashInfo {
	return calculateStateHash(d.cache.plugins, d.subs, &height)
}

// Prune forwards to every sub-cache delta that supports pruning.
func (d *Delta) Prune(height thor.Height, time thor.Timestamp) {
	for _, sub := range d.subs {
		if p, ok := sub.(Pruner); ok {
			p.Prune(height, time)
		}
	}
}

// Checkpoint marks a point the delta can be reverted to.
type Checkpoint struct {
	subs  []int
	state DependentState
}

// Checkpoint captures the current staging position of every sub-cache that supports it.
func (d *Delta) Checkpoint() Checkpoint {
	cp := Checkpoint{subs: make([]int, len(d.subs)), state: *d.state}
	for i, sub := range d.subs {
		if c, ok := sub.(Checkpointer); ok {
			cp.subs[i] = c.Checkpoint()
		}
	}
	return cp
}

// RevertTo drops every change staged after cp.
func (d *Delta) RevertTo(cp Checkpoint) {
	for i, sub := range d.subs {
		if c, ok := sub.(Checkpointer); ok {
			c.RevertTo(cp.subs[i])
		}
	}
	*d.state = cp.state
}

// Discard abandons a primary delta and releases the write permit.
// It has no effect on a committed delta.
func (d *Delta) Discard() {
	if d.primary {
		d.cache.release(d)
	}
}

// Close releases whatever the delta holds: the write permit of an uncommitted primary
// delta or the read lock of a locked delta. It is safe to call more than once.
func (d *Delta) Close() {
	if d.primary {
		d.Discard()
		return
	}
	d.once.Do(d.release)
}
