// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"github.com/vechain/statecore/thor"
)

// SubCache is one independently managed facet of ledger state.
// V is the committed read view, D the staging delta and R the read-only projection
// shared by both.
//
// A SubCache is driven exclusively through the composite Cache: CreateDelta and Commit
// are only called by the holder of the write permit, Commit only under the height write lock.
type SubCache[V, D, R any] interface {
	Name() string
	// CreateView returns a view over committed state.
	CreateView() V
	// CreateDelta opens the pending delta, replacing any previous uncommitted one.
	CreateDelta() D
	// CreateDetachedDelta opens a delta not tied to the pending one.
	CreateDetachedDelta() DetachedSubCache[D]
	// Commit folds the pending delta into committed state.
	Commit()

	ViewReader(view V) R
	DeltaReader(delta D) R
}

// DetachedSubCache is the sub-cache half of a DetachedDelta.
// Lock returns the same delta on every successful call.
type DetachedSubCache[D any] interface {
	Lock() (D, bool)
}

// MerkleRootSupporter is implemented by sub-caches that contribute to the state hash.
type MerkleRootSupporter interface {
	SupportsMerkleRoot() bool
}

// MerkleRootProvider is implemented by views and deltas of merkle capable sub-caches.
type MerkleRootProvider interface {
	TryGetMerkleRoot() (thor.Bytes32, bool)
}

// MerkleRootUpdater is implemented by deltas that recompute their root lazily.
type MerkleRootUpdater interface {
	UpdateMerkleRoot(height thor.Height)
}

// Pruner is implemented by deltas that can drop stale entries.
type Pruner interface {
	Prune(height thor.Height, time thor.Timestamp)
}

// Checkpointer is implemented by deltas able to revert to an earlier point.
type Checkpointer interface {
	Checkpoint() int
	RevertTo(checkpoint int)
}

// plugin erases the type parameters of a registered SubCache.
type plugin interface {
	name() string
	createView() any
	createDelta() any
	createDetachedDelta() detachedPlugin
	commit()
	viewReader(view any) any
	deltaReader(delta any) any
	supportsMerkleRoot() bool
}

type detachedPlugin interface {
	lock() (any, bool)
}

type adapter[V, D, R any] struct {
	sub SubCache[V, D, R]
}

func (a *adapter[V, D, R]) name() string      { return a.sub.Name() }
func (a *adapter[V, D, R]) createView() any   { return a.sub.CreateView() }
func (a *adapter[V, D, R]) createDelta() any  { return a.sub.CreateDelta() }
func (a *adapter[V, D, R]) commit()           { a.sub.Commit() }
func (a *adapter[V, D, R]) viewReader(view any) any {
	return a.sub.ViewReader(view.(V))
}

func (a *adapter[V, D, R]) deltaReader(delta any) any {
	return a.sub.DeltaReader(delta.(D))
}

func (a *adapter[V, D, R]) createDetachedDelta() detachedPlugin {
	return &detachedAdapter[D]{a.sub.CreateDetachedDelta()}
}

func (a *adapter[V, D, R]) supportsMerkleRoot() bool {
	if s, ok := a.sub.(MerkleRootSupporter); ok {
		return s.SupportsMerkleRoot()
	}
	return false
}

type detachedAdapter[D any] struct {
	detached DetachedSubCache[D]
}

func (d *detachedAdapter[D]) lock() (any, bool) {
	delta, ok := d.detached.Lock()
	if !ok {
		return nil, false
	}
	return delta, true
}

// Handle addresses a registered sub-cache with its concrete types.
type Handle[V, D, R any] struct {
	id   int
	name string
}

// ID returns the dense registration index.
func (h Handle[V, D, R]) ID() int { return h.id }

// Name returns the sub-cache name.
func (h Handle[V, D, R]) Name() string { return h.name }

// ViewOf returns the typed sub-cache view held by v.
func ViewOf[V, D, R any](v *View, h Handle[V, D, R]) V {
	return v.subs[h.id].(V)
}

// DeltaOf returns the typed sub-cache delta held by d.
func DeltaOf[V, D, R any](d *Delta, h Handle[V, D, R]) D {
	return d.subs[h.id].(D)
}

// ReaderOf returns the typed read-only projection held by ro.
func ReaderOf[V, D, R any](ro *ReadOnly, h Handle[V, D, R]) R {
	return ro.readers[h.id].(R)
}
