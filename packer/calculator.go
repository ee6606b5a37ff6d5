// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/vechain/statecore/block"
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/execution"
	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/tx"
)

// HashesResult is the outcome of executing a candidate block.
type HashesResult struct {
	Success             bool
	StateHash           thor.Bytes32
	ReceiptsHash        thor.Bytes32
	SubCacheMerkleRoots []thor.Bytes32
}

type memoKey struct {
	epoch uint64
	hash  thor.Bytes32
}

// BlockExecutionHashesCalculator executes candidate blocks on a throwaway snapshot of the
// confirmed cache to learn their hashes. Neither the cache nor any pool is modified.
type BlockExecutionHashesCalculator struct {
	cache *cache.Cache
	cfg   *execution.Config
	batch execution.BatchEntityProcessor
	memo  *lru.Cache
}

// NewBlockExecutionHashesCalculator creates a calculator remembering up to memoSize results.
func NewBlockExecutionHashesCalculator(c *cache.Cache, cfg *execution.Config, memoSize int) (*BlockExecutionHashesCalculator, error) {
	memo, err := lru.New(memoSize)
	if err != nil {
		return nil, errors.Wrap(err, "create memo")
	}
	return &BlockExecutionHashesCalculator{
		cache: c,
		cfg:   cfg,
		batch: execution.NewBatchEntityProcessor(cfg),
		memo:  memo,
	}, nil
}

// Calculate executes blk, whose transactions hash to txHashes, on top of the confirmed cache.
// The result is unsuccessful when blk does not follow the confirmed height or any of its
// entities is rejected.
func (c *BlockExecutionHashesCalculator) Calculate(blk *block.Block, txHashes []thor.Bytes32) HashesResult {
	dd := c.cache.CreateDetachableDelta()
	defer dd.Close()

	header := blk.Header()
	txs := blk.Transactions()
	if header.Height() != dd.Height().Next() || len(txs) != len(txHashes) {
		return HashesResult{}
	}

	key := memoKey{epoch: dd.Epoch(), hash: blk.Hash()}
	if v, ok := c.memo.Get(key); ok {
		metricHashesCalculations().AddWithLabel(1, map[string]string{"memoized": "true"})
		return v.(HashesResult)
	}
	metricHashesCalculations().AddWithLabel(1, map[string]string{"memoized": "false"})

	delta := dd.Lock()
	defer delta.Close()

	el := &block.Element{
		Block:        blk,
		Hash:         blk.Hash(),
		Transactions: make(tx.Infos, 0, len(txs)),
	}
	for i, trx := range txs {
		el.Transactions = append(el.Transactions, tx.Info{Tx: trx, Hash: txHashes[i], MerkleComponentHash: txHashes[i]})
	}

	var receipts *execution.ReceiptBuilder
	if c.cfg.EnableVerifiableReceipts {
		receipts = execution.NewReceiptBuilder()
	}
	state := execution.ObserverState{Cache: delta, Receipts: receipts}
	if result := c.batch(header.Height(), header.Timestamp(), execution.BlockEntities(el), state); !result.IsSuccess() {
		logger.Debug("candidate block rejected", "height", header.Height(), "hash", el.Hash, "result", result)
		return HashesResult{}
	}

	res := HashesResult{Success: true}
	if c.cfg.EnableVerifiableState {
		info := delta.CalculateStateHash(header.Height())
		res.StateHash = info.StateHash
		res.SubCacheMerkleRoots = info.SubCacheMerkleRoots
	}
	if receipts != nil {
		res.ReceiptsHash = receipts.Hash()
	}
	c.memo.Add(key, res)
	return res
}
