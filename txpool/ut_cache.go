// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txpool

import (
	"sync"

	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/tx"
)

// UtCache holds unconfirmed transactions in arrival order, with a per signer quota count.
type UtCache struct {
	lock    sync.RWMutex
	maxSize int
	byHash  map[thor.Bytes32]tx.Info
	order   []thor.Bytes32
	quota   map[thor.Address]int
}

// NewUtCache creates a pool holding at most maxSize transactions; zero means unbounded.
func NewUtCache(maxSize int) *UtCache {
	return &UtCache{
		maxSize: maxSize,
		byHash:  make(map[thor.Bytes32]tx.Info),
		quota:   make(map[thor.Address]int),
	}
}

// Size returns the number of pooled transactions.
func (c *UtCache) Size() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.byHash)
}

// Contains reports whether a tx with the hash is pooled.
func (c *UtCache) Contains(hash thor.Bytes32) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	_, ok := c.byHash[hash]
	return ok
}

// All returns the pooled transactions in arrival order.
func (c *UtCache) All() tx.Infos {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.all()
}

func (c *UtCache) all() tx.Infos {
	infos := make(tx.Infos, 0, len(c.byHash))
	for _, hash := range c.order {
		if info, ok := c.byHash[hash]; ok {
			infos = append(infos, info)
		}
	}
	return infos
}

// Modifier locks the pool for writing until the modifier is closed.
func (c *UtCache) Modifier() *Modifier {
	c.lock.Lock()
	return &Modifier{c}
}

// Modifier mutates the pool while holding its lock.
type Modifier struct {
	c *UtCache
}

func (m *Modifier) Size() int { return len(m.c.byHash) }

// Count returns the number of pooled transactions of signer.
func (m *Modifier) Count(signer thor.Address) int { return m.c.quota[signer] }

func (m *Modifier) Contains(hash thor.Bytes32) bool {
	_, ok := m.c.byHash[hash]
	return ok
}

// Add pools info. It returns false if the hash is already pooled or the pool is full.
func (m *Modifier) Add(info tx.Info) bool {
	c := m.c
	if _, ok := c.byHash[info.Hash]; ok {
		return false
	}
	if c.maxSize > 0 && len(c.byHash) >= c.maxSize {
		return false
	}
	c.byHash[info.Hash] = info
	c.order = append(c.order, info.Hash)
	c.quota[info.Tx.Signer()]++
	return true
}

// Remove drops the tx with the hash and returns it.
func (m *Modifier) Remove(hash thor.Bytes32) (tx.Info, bool) {
	c := m.c
	info, ok := c.byHash[hash]
	if !ok {
		return tx.Info{}, false
	}
	delete(c.byHash, hash)
	signer := info.Tx.Signer()
	if c.quota[signer]--; c.quota[signer] == 0 {
		delete(c.quota, signer)
	}
	// compact once removed hashes dominate the order slice
	if len(c.order) > 2*len(c.byHash)+64 {
		c.order = c.all().Hashes()
	}
	return info, true
}

// RemoveAll empties the pool and returns its content in arrival order.
func (m *Modifier) RemoveAll() tx.Infos {
	c := m.c
	infos := c.all()
	c.byHash = make(map[thor.Bytes32]tx.Info)
	c.order = nil
	c.quota = make(map[thor.Address]int)
	return infos
}

// Close releases the pool lock.
func (m *Modifier) Close() {
	m.c.lock.Unlock()
}
