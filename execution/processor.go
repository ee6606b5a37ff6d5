// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package execution

import (
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"

	"github.com/vechain/statecore/block"
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/thor"
)

// ObserverState is what entity processing writes to.
type ObserverState struct {
	Cache *cache.Delta
	// Receipts may be nil.
	Receipts *ReceiptBuilder
}

// BatchEntityProcessor executes entities in order and stops at the first non-success result.
// The delta is left as is on failure; callers revert or drop it.
type BatchEntityProcessor func(height thor.Height, timestamp thor.Timestamp, entities []EntityInfo, state ObserverState) Result

// NewBatchEntityProcessor creates a batch processor over the plugins of cfg.
func NewBatchEntityProcessor(cfg *Config) BatchEntityProcessor {
	return func(height thor.Height, timestamp thor.Timestamp, entities []EntityInfo, state ObserverState) Result {
		vctx, octx := cfg.NewContexts(state.Cache, height, timestamp, state.Receipts)
		for i, info := range entities {
			if state.Receipts != nil {
				state.Receipts.SetSource(uint32(i + 1))
			}
			sub := NewProcessingSubscriber(cfg, vctx, octx, false)
			result := Process(sub, cfg.Publisher.Publish(info))
			metricEntitiesProcessed().AddWithLabel(1, resultLabel(result))
			if !result.IsSuccess() {
				logger.Debug("entity not processed", "height", height, "hash", info.Hash, "result", result)
				return result
			}
		}
		return Success
	}
}

// BlockHitPredicate decides whether child was legitimately produced on top of parent.
type BlockHitPredicate func(parent, child *block.Header, generationHash thor.Bytes32) bool

// BlockHitPredicateFactory builds a hit predicate over cache state.
type BlockHitPredicateFactory func(ro *cache.ReadOnly) BlockHitPredicate

// BlockChainProcessor executes a chain of blocks on top of parent, mutating delta.
// On failure delta holds exactly the blocks processed successfully before the failing one.
type BlockChainProcessor func(parent *block.Element, elements []*block.Element, delta *cache.Delta) Result

// NewBlockChainProcessor creates a chain processor.
func NewBlockChainProcessor(cfg *Config, hitFactory BlockHitPredicateFactory, batch BatchEntityProcessor) BlockChainProcessor {
	return func(parent *block.Element, elements []*block.Element, delta *cache.Delta) Result {
		if len(elements) == 0 {
			return Neutral
		}

		hit := hitFactory(delta.ReadOnly())
		for _, el := range elements {
			startTime := mclock.Now()
			result := processBlock(cfg, hit, batch, parent, el, delta)
			metricBlocksProcessed().AddWithLabel(1, resultLabel(result))
			if !result.IsSuccess() {
				logger.Debug("block not processed", "height", el.Height(), "hash", el.Hash, "result", result)
				return result
			}
			metricBlockDuration().Observe(time.Duration(mclock.Now() - startTime).Milliseconds())
			parent = el
		}
		return Success
	}
}

func isLinked(parent, child *block.Element) bool {
	return parent.Height().Next() == child.Height() && parent.Hash == child.Block.Header().PreviousHash()
}

func processBlock(
	cfg *Config,
	hit BlockHitPredicate,
	batch BatchEntityProcessor,
	parent, el *block.Element,
	delta *cache.Delta,
) Result {
	if !isLinked(parent, el) {
		return FailureChainUnlinked
	}
	header := el.Block.Header()
	if !hit(parent.Block.Header(), header, el.GenerationHash) {
		return FailureChainBlockNotHit
	}

	checkpoint := delta.Checkpoint()
	revert := func(r Result) Result {
		delta.RevertTo(checkpoint)
		return r
	}

	var receipts *ReceiptBuilder
	if cfg.EnableVerifiableReceipts {
		receipts = NewReceiptBuilder()
	}
	result := batch(header.Height(), header.Timestamp(), BlockEntities(el), ObserverState{Cache: delta, Receipts: receipts})
	if !result.IsSuccess() {
		return revert(result)
	}

	if receipts != nil && receipts.Hash() != header.ReceiptsHash() {
		return revert(FailureChainInconsistentReceiptsHash)
	}

	if cfg.EnableVerifiableState {
		info := delta.CalculateStateHash(header.Height())
		if info.StateHash != header.StateHash() {
			logger.Debug("state hash mismatch", "height", header.Height(), "expected", header.StateHash(), "actual", info.StateHash)
			return revert(FailureChainInconsistentStateHash)
		}
		el.SubCacheMerkleRoots = info.SubCacheMerkleRoots
	}
	return Success
}
