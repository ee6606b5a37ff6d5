// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import (
	"github.com/vechain/statecore/block"
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/execution"
	"github.com/vechain/statecore/log"
	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/tx"
)

var logger = log.WithContext("pkg", "packer")

// HarvestingUtFacadeFactory creates facades for building candidate blocks.
type HarvestingUtFacadeFactory struct {
	cache *cache.Cache
	cfg   *execution.Config
}

// NewHarvestingUtFacadeFactory creates a factory over the confirmed cache.
func NewHarvestingUtFacadeFactory(c *cache.Cache, cfg *execution.Config) *HarvestingUtFacadeFactory {
	return &HarvestingUtFacadeFactory{cache: c, cfg: cfg}
}

// Create returns a facade building the block following the confirmed height, or nil when
// a commit raced ahead of the snapshot.
func (f *HarvestingUtFacadeFactory) Create(blockTime thor.Timestamp) *HarvestingUtFacade {
	dd := f.cache.CreateDetachableDelta()
	height := dd.Height().Next()
	detached := dd.Detach()
	dd.Close()

	delta, ok := detached.TryLock()
	if !ok {
		logger.Debug("facade snapshot unavailable", "height", height)
		return nil
	}

	var receipts *execution.ReceiptBuilder
	if f.cfg.EnableVerifiableReceipts {
		receipts = execution.NewReceiptBuilder()
	}
	return &HarvestingUtFacade{
		cfg:       f.cfg,
		delta:     delta,
		height:    height,
		blockTime: blockTime,
		receipts:  receipts,
		executor:  execution.NewEntityExecutor(f.cfg, delta, height, blockTime, receipts),
		applied:   make(map[thor.Bytes32]struct{}),
	}
}

// HarvestingUtFacade applies transactions one by one to a private snapshot and assembles
// them into a block. It holds the height read lock until closed, and is not safe for
// concurrent use.
type HarvestingUtFacade struct {
	cfg       *execution.Config
	delta     *cache.Delta
	height    thor.Height
	blockTime thor.Timestamp
	receipts  *execution.ReceiptBuilder
	executor  *execution.EntityExecutor

	infos     tx.Infos
	undos     []func()
	applied   map[thor.Bytes32]struct{}
	committed bool
}

// Height returns the height of the block being built.
func (f *HarvestingUtFacade) Height() thor.Height { return f.height }

// BlockTime returns the timestamp transactions are executed at.
func (f *HarvestingUtFacade) BlockTime() thor.Timestamp { return f.blockTime }

// TransactionInfos returns the applied transactions in order.
func (f *HarvestingUtFacade) TransactionInfos() tx.Infos { return f.infos.Copy() }

// Apply executes info on top of the applied transactions. A rejected tx leaves no trace.
func (f *HarvestingUtFacade) Apply(info tx.Info) error {
	if f.committed {
		return errCommitted
	}
	if _, ok := f.applied[info.Hash]; ok {
		return errKnownTx
	}

	if f.receipts != nil {
		f.receipts.SetSource(uint32(len(f.infos) + 1))
	}
	result, undo := f.executor.Execute(execution.TransactionEntity(info))
	metricTxApplied().AddWithLabel(1, map[string]string{"result": resultName(result)})
	if !result.IsSuccess() {
		return rejectedTxError{result}
	}

	f.infos = append(f.infos, info)
	f.undos = append(f.undos, undo)
	f.applied[info.Hash] = struct{}{}
	return nil
}

// Unapply rolls back the most recently applied transaction. It panics when nothing is applied.
func (f *HarvestingUtFacade) Unapply() {
	if f.committed {
		panic("packer: unapply after commit")
	}
	n := len(f.infos)
	if n == 0 {
		panic("packer: nothing to unapply")
	}
	f.undos[n-1]()
	delete(f.applied, f.infos[n-1].Hash)
	f.infos = f.infos[:n-1]
	f.undos = f.undos[:n-1]
}

// Commit executes the block entity of a block made of header and the applied transactions,
// and returns the block with its state and receipts hashes filled in. It returns nil when
// the block entity is rejected. Height and timestamp are taken from the facade.
func (f *HarvestingUtFacade) Commit(header *block.Header) *block.Block {
	if f.committed {
		panic("packer: facade committed twice")
	}

	builder := new(block.Builder).
		FromHeader(header).
		Height(f.height).
		Timestamp(f.blockTime)
	for _, info := range f.infos {
		builder.Transaction(info.Tx)
	}
	draft := builder.Build()

	if f.receipts != nil {
		f.receipts.SetSource(uint32(len(f.infos) + 1))
	}
	result, _ := f.executor.Execute(execution.EntityInfo{Entity: draft, Hash: draft.Hash(), Header: draft.Header()})
	if !result.IsSuccess() {
		logger.Debug("block entity rejected", "height", f.height, "result", result)
		return nil
	}
	f.committed = true

	var stateHash, receiptsHash thor.Bytes32
	if f.cfg.EnableVerifiableState {
		stateHash = f.delta.CalculateStateHash(f.height).StateHash
	}
	if f.receipts != nil {
		receiptsHash = f.receipts.Hash()
	}
	return builder.StateHash(stateHash).ReceiptsHash(receiptsHash).Build()
}

// Close releases the snapshot. The facade is unusable afterwards.
func (f *HarvestingUtFacade) Close() {
	f.delta.Close()
}

func resultName(r execution.Result) string {
	switch {
	case r.IsSuccess():
		return "success"
	case r.IsNeutral():
		return "neutral"
	default:
		return "failure"
	}
}
