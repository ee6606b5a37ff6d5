// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/statecore/basecache"
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/execution"
	"github.com/vechain/statecore/thor"
)

// Receipt types.
const (
	ReceiptFee execution.ReceiptType = iota + 1
	ReceiptTransfer
	ReceiptHarvest
)

type accountsDelta = *basecache.Delta[thor.Address, Account]

func credit(d accountsDelta, addr thor.Address, amount thor.Amount) {
	acc, _ := d.Get(addr)
	acc.Balance += amount
	d.Set(addr, acc)
}

// debit drops accounts left empty, so that a rolled back credit leaves no trace.
func debit(d accountsDelta, addr thor.Address, amount thor.Amount) {
	acc, _ := d.Get(addr)
	if acc.Balance < amount {
		panic("builtin: debit exceeds balance")
	}
	acc.Balance -= amount
	if acc == (Account{}) {
		d.Remove(addr)
		return
	}
	d.Set(addr, acc)
}

func (p *Plugins) observers() execution.Observers {
	return execution.Observers{
		execution.NewObserver(p.observeTransaction),
		execution.NewObserver(p.observeFee),
		execution.NewObserver(p.observeTransfer),
		execution.NewObserver(p.observeBlock),
	}
}

func (p *Plugins) observeTransaction(n TransactionNotification, ctx *execution.ObserverContext) {
	hashes := cache.DeltaOf(ctx.Delta, p.Hashes)
	switch ctx.Direction {
	case execution.Apply:
		hashes.Set(n.Hash, n.Deadline)
	case execution.Rollback:
		hashes.Remove(n.Hash)
	default:
		panic("builtin: unknown direction")
	}
}

func (p *Plugins) observeFee(n FeeNotification, ctx *execution.ObserverContext) {
	if n.Fee == 0 {
		return
	}
	accounts := cache.DeltaOf(ctx.Delta, p.Accounts)
	payer := ctx.Resolvers.ResolveAddress(n.Payer)
	switch ctx.Direction {
	case execution.Apply:
		debit(accounts, payer, n.Fee)
		ctx.AddReceipt(execution.Receipt{Type: ReceiptFee, Account: payer, Amount: n.Fee})
	case execution.Rollback:
		credit(accounts, payer, n.Fee)
	default:
		panic("builtin: unknown direction")
	}
}

func (p *Plugins) observeTransfer(n BalanceTransferNotification, ctx *execution.ObserverContext) {
	accounts := cache.DeltaOf(ctx.Delta, p.Accounts)
	sender := ctx.Resolvers.ResolveAddress(n.Sender)
	recipient := ctx.Resolvers.ResolveAddress(n.Recipient)
	switch ctx.Direction {
	case execution.Apply:
		debit(accounts, sender, n.Amount)
		credit(accounts, recipient, n.Amount)
		ctx.AddReceipt(execution.Receipt{Type: ReceiptTransfer, Account: recipient, Amount: n.Amount})
	case execution.Rollback:
		debit(accounts, recipient, n.Amount)
		credit(accounts, sender, n.Amount)
	default:
		panic("builtin: unknown direction")
	}
}

func (p *Plugins) observeBlock(n BlockNotification, ctx *execution.ObserverContext) {
	accounts := cache.DeltaOf(ctx.Delta, p.Accounts)
	stats := cache.DeltaOf(ctx.Delta, p.Stats)
	state := ctx.State()
	grouping := p.opts.ImportanceGrouping

	switch ctx.Direction {
	case execution.Apply:
		if p.opts.BlockReward > 0 {
			credit(accounts, n.Harvester, p.opts.BlockReward)
			ctx.AddReceipt(execution.Receipt{Type: ReceiptHarvest, Account: n.Harvester, Amount: p.opts.BlockReward})
		}
		stats.Set(ctx.Height, BlockStats{
			NumTransactions:             n.NumTransactions,
			PreviousRecalculationHeight: state.LastRecalculationHeight,
		})
		state.NumTotalTransactions += n.NumTransactions
		if grouping > 0 && ctx.Height%grouping == 0 {
			state.LastRecalculationHeight = ctx.Height
		}
	case execution.Rollback:
		recorded, ok := stats.Get(ctx.Height)
		if !ok {
			panic("builtin: rollback of a block without stats")
		}
		if p.opts.BlockReward > 0 {
			debit(accounts, n.Harvester, p.opts.BlockReward)
		}
		stats.Remove(ctx.Height)
		state.NumTotalTransactions -= n.NumTransactions
		state.LastRecalculationHeight = recorded.PreviousRecalculationHeight
	default:
		panic("builtin: unknown direction")
	}
}
