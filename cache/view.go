// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync"

	"github.com/vechain/statecore/thor"
)

// View is a read-only snapshot of committed state.
// It holds the height read lock until Close is called.
type View struct {
	cache          *Cache
	height         thor.Height
	subs           []any
	dependentState DependentState
	release        func()
	once           sync.Once
}

// Height returns the height the view was taken at.
func (v *View) Height() thor.Height { return v.height }

// DependentState returns a copy of the committed dependent state.
func (v *View) DependentState() DependentState { return v.dependentState }

// ReadOnly returns the read-only projection of the view.
func (v *View) ReadOnly() *ReadOnly {
	readers := make([]any, len(v.subs))
	for i, p := range v.cache.plugins {
		readers[i] = p.viewReader(v.subs[i])
	}
	return &ReadOnly{height: v.height, readers: readers, dependentState: v.dependentState}
}

// CalculateStateHash combines the committed merkle roots of all supporting sub-caches.
func (v *View) CalculateStateHash() StateHashInfo {
	return calculateStateHash(v.cache.plugins, v.subs, nil)
}

// Close releases the height read lock. It is safe to call more than once.
func (v *View) Close() {
	v.once.Do(v.release)
}

// ReadOnly gives typed read access to every sub-cache of a View or a Delta.
type ReadOnly struct {
	height         thor.Height
	readers        []any
	dependentState DependentState
}

// Height returns the height of the underlying view, or the committed height a delta was based on.
func (ro *ReadOnly) Height() thor.Height { return ro.height }

// DependentState returns a copy of the dependent state at the time of projection.
func (ro *ReadOnly) DependentState() DependentState { return ro.dependentState }

// StateHashInfo is the result of a state hash calculation.
type StateHashInfo struct {
	StateHash           thor.Bytes32
	SubCacheMerkleRoots []thor.Bytes32
}

// calculateStateHash hashes the concatenated roots of merkle capable sub-caches in
// registration order. Without any root the state hash is zero.
// When height is non-nil, deltas are asked to refresh their roots first.
func calculateStateHash(plugins []plugin, subs []any, height *thor.Height) StateHashInfo {
	var roots []thor.Bytes32
	for i, p := range plugins {
		if subs[i] == nil || !p.supportsMerkleRoot() {
			continue
		}
		if height != nil {
			if u, ok := subs[i].(MerkleRootUpdater); ok {
				u.UpdateMerkleRoot(*height)
			}
		}
		provider, ok := subs[i].(MerkleRootProvider)
		if !ok {
			continue
		}
		if root, ok := provider.TryGetMerkleRoot(); ok {
			roots = append(roots, root)
		}
	}

	info := StateHashInfo{SubCacheMerkleRoots: roots}
	if len(roots) == 0 {
		return info
	}
	data := make([][]byte, 0, len(roots))
	for _, root := range roots {
		data = append(data, root[:])
	}
	info.StateHash = thor.Sha3(data...)
	return info
}
