// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cache implements the composite versioned ledger cache.
//
// A Cache owns an ordered set of sub-caches and a height. Readers take Views,
// the single writer takes a Delta and commits it at a new height. DetachableDeltas
// let long-lived consumers such as the mempool stage speculative changes against
// a snapshot, which becomes unusable as soon as the cache commits.
package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/vechain/statecore/log"
	"github.com/vechain/statecore/thor"
)

var logger = log.WithContext("pkg", "cache")

// Builder collects sub-caches before the Cache is created.
type Builder struct {
	plugins          []plugin
	storages         []Storage
	changesStorages  []ChangesStorage
	stateStorage     StateStorage
	allowHeightReset bool
	built            bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AllowHeightReset makes Commit accept any height, including lower ones.
func (b *Builder) AllowHeightReset() *Builder {
	b.allowHeightReset = true
	return b
}

// Register appends sub to the builder. Registration order defines the order of
// commits and the state hash layout.
func Register[V, D, R any](b *Builder, sub SubCache[V, D, R]) Handle[V, D, R] {
	if b.built {
		panic("cache: register after build")
	}
	for _, p := range b.plugins {
		if p.name() == sub.Name() {
			panic("cache: duplicate sub-cache " + sub.Name())
		}
	}
	b.plugins = append(b.plugins, &adapter[V, D, R]{sub})
	return Handle[V, D, R]{id: len(b.plugins) - 1, name: sub.Name()}
}

// AttachStorage adds persistence adapters. Either may be nil.
func (b *Builder) AttachStorage(storage Storage, changes ChangesStorage) *Builder {
	if storage != nil {
		b.storages = append(b.storages, storage)
	}
	if changes != nil {
		b.changesStorages = append(b.changesStorages, changes)
	}
	return b
}

// AttachStateStorage sets the storage of the dependent state. Attaching the same
// storage again is a no-op.
func (b *Builder) AttachStateStorage(storage StateStorage) *Builder {
	if b.stateStorage != nil && b.stateStorage != storage {
		panic("cache: state storage already attached")
	}
	b.stateStorage = storage
	return b
}

// Build creates the cache at height zero.
func (b *Builder) Build() *Cache {
	b.built = true
	return &Cache{
		plugins:          b.plugins,
		storages:         b.storages,
		changesStorages:  b.changesStorages,
		stateStorage:     b.stateStorage,
		allowHeightReset: b.allowHeightReset,
		permit:           semaphore.NewWeighted(1),
	}
}

// Cache is the composite ledger cache.
type Cache struct {
	plugins          []plugin
	storages         []Storage
	changesStorages  []ChangesStorage
	stateStorage     StateStorage
	allowHeightReset bool

	// lock is the height guard: readers hold it shared for the lifetime of
	// views and locked deltas, commit holds it exclusively.
	lock           sync.RWMutex
	dependentState DependentState // guarded by lock

	height atomic.Uint64
	epoch  atomic.Uint64

	permit      *semaphore.Weighted
	outstanding atomic.Pointer[Delta]
}

// Height returns the committed height.
func (c *Cache) Height() thor.Height {
	return thor.Height(c.height.Load())
}

// Epoch returns a counter bumped by every commit or load.
func (c *Cache) Epoch() uint64 {
	return c.epoch.Load()
}

// SubCacheNames returns the names of the registered sub-caches in registration order.
func (c *Cache) SubCacheNames() []string {
	names := make([]string, 0, len(c.plugins))
	for _, p := range c.plugins {
		names = append(names, p.name())
	}
	return names
}

// CreateView returns a read view of committed state. The view blocks commits until closed.
func (c *Cache) CreateView() *View {
	c.lock.RLock()
	subs := make([]any, len(c.plugins))
	for i, p := range c.plugins {
		subs[i] = p.createView()
	}
	return &View{
		cache:          c,
		height:         c.Height(),
		subs:           subs,
		dependentState: c.dependentState,
		release:        c.lock.RUnlock,
	}
}

// CreateDelta returns the single writable delta. It blocks while another delta
// created by CreateDelta is neither committed nor discarded.
func (c *Cache) CreateDelta(ctx context.Context) (*Delta, error) {
	if err := c.permit.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "acquire delta permit")
	}

	c.lock.RLock()
	state := c.dependentState
	c.lock.RUnlock()

	subs := make([]any, len(c.plugins))
	for i, p := range c.plugins {
		subs[i] = p.createDelta()
	}
	d := &Delta{
		cache:   c,
		subs:    subs,
		state:   &state,
		primary: true,
	}
	c.outstanding.Store(d)
	return d, nil
}

// CreateDetachableDelta returns a snapshot from which a DetachedDelta can be taken.
// It blocks commits until closed.
func (c *Cache) CreateDetachableDelta() *DetachableDelta {
	c.lock.RLock()
	detached := make([]detachedPlugin, len(c.plugins))
	for i, p := range c.plugins {
		detached[i] = p.createDetachedDelta()
	}
	state := c.dependentState
	return &DetachableDelta{
		cache:   c,
		height:  c.Height(),
		release: c.lock.RUnlock,
		detached: &DetachedDelta{
			cache: c,
			epoch: c.epoch.Load(),
			subs:  detached,
			state: &state,
		},
	}
}

// Commit folds the outstanding delta into committed state at height.
// It waits for all views and locked deltas to be closed.
func (c *Cache) Commit(height thor.Height) error {
	d := c.outstanding.Load()
	if d == nil {
		return ErrNoOutstandingDelta
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	current := c.Height()
	if height <= current {
		if !c.allowHeightReset {
			return errors.Wrapf(ErrHeightNotIncreasing, "commit %v at %v", height, current)
		}
		logger.Warn("resetting cache height", "from", current, "to", height)
	}

	for _, p := range c.plugins {
		p.commit()
	}
	c.dependentState = *d.state
	c.height.Store(uint64(height))
	c.epoch.Add(1)

	c.release(d)
	logger.Trace("committed", "height", height, "epoch", c.epoch.Load())
	return nil
}

// release gives back the write permit held by d, once.
func (c *Cache) release(d *Delta) {
	if c.outstanding.CompareAndSwap(d, nil) {
		c.permit.Release(1)
	}
}
