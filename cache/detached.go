// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync"

	"github.com/vechain/statecore/thor"
)

// DetachableDelta is a snapshot of committed state that can be detached once.
// It holds the height read lock until closed.
type DetachableDelta struct {
	cache    *Cache
	height   thor.Height
	release  func()
	once     sync.Once
	detached *DetachedDelta
}

// Height returns the committed height the snapshot was taken at.
func (dd *DetachableDelta) Height() thor.Height { return dd.height }

// Epoch returns the cache epoch the snapshot belongs to.
func (dd *DetachableDelta) Epoch() uint64 { return dd.detached.epoch }

// Detach hands out the DetachedDelta. It panics when called twice.
func (dd *DetachableDelta) Detach() *DetachedDelta {
	if dd.detached.taken {
		panic("cache: delta already detached")
	}
	dd.detached.taken = true
	return dd.detached
}

// Lock consumes the DetachedDelta like Detach and returns a delta over it that shares the
// read lock held by dd, so it cannot be refused by a waiting commit. The delta is valid
// until dd is closed and closing it releases nothing.
func (dd *DetachableDelta) Lock() *Delta {
	detached := dd.Detach()
	subs := make([]any, len(detached.subs))
	for i, sub := range detached.subs {
		delta, ok := sub.lock()
		if !ok {
			panic("cache: sub-cache committed under a held read lock")
		}
		subs[i] = delta
	}
	return &Delta{
		cache:   dd.cache,
		subs:    subs,
		state:   detached.state,
		release: func() {},
	}
}

// Close releases the height read lock. The DetachedDelta stays usable until the next commit.
func (dd *DetachableDelta) Close() {
	dd.once.Do(dd.release)
}

// DetachedDelta accumulates speculative changes across many lock sessions.
// It is invalidated by any commit that happens after it was created.
type DetachedDelta struct {
	cache *Cache
	epoch uint64
	subs  []detachedPlugin
	state *DependentState
	taken bool
}

// TryLock returns a delta over the detached sub-cache deltas, or false when the snapshot
// is stale or a commit is in progress. It never blocks and never returns a partial delta.
// Every successful call returns a delta sharing the same staged changes. The returned
// delta holds the height read lock until closed.
func (dd *DetachedDelta) TryLock() (*Delta, bool) {
	c := dd.cache
	if c.epoch.Load() != dd.epoch {
		return nil, false
	}
	if !c.lock.TryRLock() {
		return nil, false
	}
	// a commit may have slipped in between the two checks
	if c.epoch.Load() != dd.epoch {
		c.lock.RUnlock()
		return nil, false
	}

	subs := make([]any, len(dd.subs))
	for i, sub := range dd.subs {
		delta, ok := sub.lock()
		if !ok {
			c.lock.RUnlock()
			return nil, false
		}
		subs[i] = delta
	}
	return &Delta{
		cache:   c,
		subs:    subs,
		state:   dd.state,
		release: c.lock.RUnlock,
	}, true
}
