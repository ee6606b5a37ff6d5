// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txpool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/tx"
)

func TestUtCache(t *testing.T) {
	pool := NewUtCache(3)
	a1 := newTransfer(alice, bob, 1, 0, 1)
	a2 := newTransfer(alice, bob, 1, 0, 2)
	b1 := newTransfer(bob, alice, 1, 0, 3)
	b2 := newTransfer(bob, alice, 1, 0, 4)

	m := pool.Modifier()
	assert.True(t, m.Add(a1))
	assert.False(t, m.Add(a1))
	assert.True(t, m.Add(b1))
	assert.True(t, m.Add(a2))
	assert.False(t, m.Add(b2), "pool is full")
	assert.Equal(t, 2, m.Count(alice))
	assert.Equal(t, 1, m.Count(bob))

	removed, ok := m.Remove(a1.Hash)
	assert.True(t, ok)
	assert.Equal(t, a1.Hash, removed.Hash)
	_, ok = m.Remove(a1.Hash)
	assert.False(t, ok)
	assert.Equal(t, 1, m.Count(alice))
	assert.True(t, m.Add(b2))
	m.Close()

	assert.Equal(t, 3, pool.Size())
	assert.True(t, pool.Contains(b2.Hash))
	assert.False(t, pool.Contains(a1.Hash))
	assert.Equal(t, []thor.Bytes32{b1.Hash, a2.Hash, b2.Hash}, pool.All().Hashes())

	m = pool.Modifier()
	all := m.RemoveAll()
	assert.Equal(t, 0, m.Size())
	assert.Equal(t, 0, m.Count(bob))
	m.Close()
	assert.Equal(t, []thor.Bytes32{b1.Hash, a2.Hash, b2.Hash}, all.Hashes())
}

func TestUtCacheCompaction(t *testing.T) {
	pool := NewUtCache(0)
	m := pool.Modifier()
	defer m.Close()

	var kept tx.Infos
	for i := uint64(0); i < 500; i++ {
		info := newTransfer(alice, bob, 1, 0, i)
		m.Add(info)
		if i%10 == 0 {
			kept = append(kept, info)
		} else {
			m.Remove(info.Hash)
		}
	}
	assert.Equal(t, len(kept), m.Size())
	assert.Equal(t, kept.Hashes(), pool.all().Hashes())
	assert.LessOrEqual(t, len(pool.order), 2*len(kept)+64+1)
}
