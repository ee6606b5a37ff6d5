// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"encoding/binary"

	"github.com/holiman/uint256"

	"github.com/vechain/statecore/block"
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/execution"
	"github.com/vechain/statecore/thor"
)

// Hit derives the hit of a block from its generation hash.
func Hit(generationHash thor.Bytes32) uint64 {
	return binary.BigEndian.Uint64(generationHash[:8])
}

// Target returns the value a hit must stay below for a harvester of the given importance,
// elapsed milliseconds after its parent. The target grows linearly with both, and reaches
// 2^64 when a harvester owning all importance waits one target block time.
func Target(importance thor.Importance, elapsed thor.Timestamp, total thor.Importance, blockTime thor.Timestamp) *uint256.Int {
	if total == 0 || blockTime == 0 {
		return new(uint256.Int)
	}
	target := uint256.NewInt(uint64(importance))
	target.Mul(target, uint256.NewInt(uint64(elapsed)))
	target.Lsh(target, 64)
	denominator := uint256.NewInt(uint64(total))
	denominator.Mul(denominator, uint256.NewInt(uint64(blockTime)))
	return target.Div(target, denominator)
}

// HitPredicateFactory checks that the harvester of a child block had enough importance,
// as of the cache state, to produce it when it did.
func (p *Plugins) HitPredicateFactory() execution.BlockHitPredicateFactory {
	return func(ro *cache.ReadOnly) execution.BlockHitPredicate {
		return func(parent, child *block.Header, generationHash thor.Bytes32) bool {
			if child.Timestamp() <= parent.Timestamp() {
				return false
			}
			importance := p.Importance(ro, child.Signer(), ro.Height())
			if importance == 0 {
				return false
			}
			elapsed := child.Timestamp() - parent.Timestamp()
			target := Target(importance, elapsed, p.opts.TotalImportance, p.opts.TargetBlockTime)
			return uint256.NewInt(Hit(generationHash)).Lt(target)
		}
	}
}
