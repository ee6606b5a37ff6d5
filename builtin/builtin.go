// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin is the default plugin set: account balances, confirmed transaction hashes
// and per block statistics, together with the publisher, validators and observers driving them.
package builtin

import (
	"github.com/vechain/statecore/basecache"
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/execution"
	"github.com/vechain/statecore/storage"
	"github.com/vechain/statecore/thor"
)

// Sub-cache names. Registration order is part of the state hash and must never change.
const (
	AccountsName = "accounts"
	HashesName   = "hashes"
	StatsName    = "stats"
)

// Account is the state of an address.
type Account struct {
	Balance    thor.Amount
	Importance thor.Importance
}

// BlockStats is recorded for every block within the retention window.
type BlockStats struct {
	NumTransactions uint64
	// PreviousRecalculationHeight is the recalculation height before the block, restored on rollback.
	PreviousRecalculationHeight thor.Height
}

// Options of the plugin set.
type Options struct {
	Network execution.Network
	// MaxTransactionLifetime bounds how far in the future a deadline may be, in milliseconds.
	MaxTransactionLifetime thor.Timestamp
	// MinFee every transaction pays.
	MinFee thor.Amount
	// BlockReward credited to the harvester of every block.
	BlockReward thor.Amount
	// ImportanceGrouping is the number of blocks between importance recalculations.
	ImportanceGrouping thor.Height
	// StatsRetention is the number of blocks statistics are kept for.
	StatsRetention thor.Height
	// TotalImportance of all accounts, the denominator of the hit target.
	TotalImportance thor.Importance
	// TargetBlockTime in milliseconds.
	TargetBlockTime thor.Timestamp

	EnableVerifiableState    bool
	EnableVerifiableReceipts bool
}

// DefaultOptions returns the options of the default network.
func DefaultOptions() Options {
	return Options{
		Network:                  execution.Network{Identifier: 0x68},
		MaxTransactionLifetime:   24 * 60 * 60 * 1000,
		MinFee:                   0,
		BlockReward:              0,
		ImportanceGrouping:       720,
		StatsRetention:           360,
		TotalImportance:          9_000_000_000,
		TargetBlockTime:          15_000,
		EnableVerifiableState:    true,
		EnableVerifiableReceipts: true,
	}
}

// Plugins holds the registered sub-caches.
type Plugins struct {
	opts Options

	Accounts basecache.Handle[thor.Address, Account]
	Hashes   basecache.Handle[thor.Bytes32, thor.Timestamp]
	Stats    basecache.Handle[thor.Height, BlockStats]
}

// Register adds the builtin sub-caches to b. When store is not nil every sub-cache is
// persisted in it.
func Register(b *cache.Builder, store *storage.Store, opts Options) *Plugins {
	accounts := basecache.New(AccountsName, basecache.Options[thor.Address, Account]{
		MerkleRoot: true,
	})
	hashes := basecache.New(HashesName, basecache.Options[thor.Bytes32, thor.Timestamp]{
		MerkleRoot: true,
		Prune: func(_ thor.Bytes32, deadline thor.Timestamp, _ thor.Height, time thor.Timestamp) bool {
			return deadline < time
		},
	})
	stats := basecache.New(StatsName, basecache.Options[thor.Height, BlockStats]{
		Prune: func(blockHeight thor.Height, _ BlockStats, height thor.Height, _ thor.Timestamp) bool {
			return blockHeight+opts.StatsRetention < height
		},
	})

	p := &Plugins{opts: opts}
	if store != nil {
		p.Accounts = storage.Attach(b, store, accounts)
		p.Hashes = storage.Attach(b, store, hashes)
		p.Stats = storage.Attach(b, store, stats)
	} else {
		p.Accounts = basecache.Register(b, accounts)
		p.Hashes = basecache.Register(b, hashes)
		p.Stats = basecache.Register(b, stats)
	}
	return p
}

// Options returns the options the plugins were registered with.
func (p *Plugins) Options() Options { return p.opts }

// ExecutionConfig assembles the execution config of the plugin set.
func (p *Plugins) ExecutionConfig() *execution.Config {
	return &execution.Config{
		Network:                  p.opts.Network,
		StatelessValidator:       p.statelessValidators(),
		StatefulValidator:        p.statefulValidators(),
		Observer:                 p.observers(),
		Publisher:                Publisher{},
		EnableVerifiableState:    p.opts.EnableVerifiableState,
		EnableVerifiableReceipts: p.opts.EnableVerifiableReceipts,
	}
}

// Seed credits accounts in delta, as done for the nemesis block. Importance starts at the balance.
func (p *Plugins) Seed(delta *cache.Delta, balances map[thor.Address]thor.Amount) {
	accounts := cache.DeltaOf(delta, p.Accounts)
	for addr, balance := range balances {
		acc, _ := accounts.Get(addr)
		acc.Balance += balance
		acc.Importance += thor.Importance(balance)
		accounts.Set(addr, acc)
	}
}

// Importance returns the importance of an account, zero for unknown ones.
func (p *Plugins) Importance(ro *cache.ReadOnly, addr thor.Address, _ thor.Height) thor.Importance {
	acc, _ := cache.ReaderOf(ro, p.Accounts).Get(addr)
	return acc.Importance
}
