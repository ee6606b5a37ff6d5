// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package basecache

import (
	"slices"

	"github.com/ethereum/go-ethereum/trie"
	"github.com/pkg/errors"

	"github.com/vechain/statecore/thor"
)

type leaf struct {
	key   thor.Bytes32
	value []byte
}

// computeRoot builds a patricia trie over all entries. Leaf keys are the blake2b
// hashes of the encoded keys, so no key is a prefix of another.
func (c *Cache[K, V]) computeRoot(forEach func(fn func(key K, value V) bool)) thor.Bytes32 {
	var leaves []leaf
	forEach(func(key K, value V) bool {
		k, err := c.opts.Codec.EncodeKey(key)
		if err != nil {
			panic(errors.Wrapf(err, "%v: encode key", c.name))
		}
		v, err := c.opts.Codec.EncodeValue(value)
		if err != nil {
			panic(errors.Wrapf(err, "%v: encode value", c.name))
		}
		leaves = append(leaves, leaf{thor.Blake2b(k), v})
		return true
	})
	slices.SortFunc(leaves, func(a, b leaf) int { return a.key.Compare(b.key) })

	st := trie.NewStackTrie(nil)
	for _, l := range leaves {
		if err := st.Update(l.key[:], l.value); err != nil {
			panic(errors.Wrapf(err, "%v: update trie", c.name))
		}
	}
	return thor.Bytes32(st.Hash())
}
