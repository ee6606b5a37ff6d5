// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/execution"
	"github.com/vechain/statecore/thor"
)

func (p *Plugins) statelessValidators() execution.StatelessValidators {
	return execution.StatelessValidators{
		execution.NewStatelessValidator(func(n EntityNotification) execution.Result {
			if n.Signer.IsZero() {
				return FailureCoreZeroSigner
			}
			return execution.Success
		}),
		execution.NewStatelessValidator(func(n FeeNotification) execution.Result {
			if n.Fee < p.opts.MinFee {
				return FailureCoreInsufficientFee
			}
			return execution.Success
		}),
		execution.NewStatelessValidator(func(n BalanceTransferNotification) execution.Result {
			if n.Sender == n.Recipient {
				return FailureCoreSelfTransfer
			}
			if n.Amount == 0 {
				return NeutralCoreEmptyTransfer
			}
			return execution.Success
		}),
	}
}

func (p *Plugins) statefulValidators() execution.StatefulValidators {
	return execution.StatefulValidators{
		execution.NewStatefulValidator(func(n TransactionNotification, ctx *execution.ValidatorContext) execution.Result {
			if n.Deadline < ctx.BlockTime {
				return FailureCorePastDeadline
			}
			if n.Deadline-ctx.BlockTime > p.opts.MaxTransactionLifetime {
				return FailureCoreFutureDeadline
			}
			if cache.ReaderOf(ctx.Cache, p.Hashes).Contains(n.Hash) {
				return FailureCoreDuplicateTransaction
			}
			return execution.Success
		}),
		execution.NewStatefulValidator(func(n FeeNotification, ctx *execution.ValidatorContext) execution.Result {
			return p.checkBalance(ctx, n.Payer, n.Fee)
		}),
		execution.NewStatefulValidator(func(n BalanceTransferNotification, ctx *execution.ValidatorContext) execution.Result {
			return p.checkBalance(ctx, n.Sender, n.Amount)
		}),
	}
}

func (p *Plugins) checkBalance(ctx *execution.ValidatorContext, addr thor.Address, amount thor.Amount) execution.Result {
	acc, _ := cache.ReaderOf(ctx.Cache, p.Accounts).Get(ctx.Resolvers.ResolveAddress(addr))
	if acc.Balance < amount {
		return FailureCoreInsufficientBalance
	}
	return execution.Success
}
