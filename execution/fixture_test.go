// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package execution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/statecore/basecache"
	"github.com/vechain/statecore/block"
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/tx"
)

var (
	failureZeroCredit = DefineResult("Failure_Test_Zero_Credit", SeverityFailure, FacilityCore, 0xf001)
	neutralSkipped    = DefineResult("Neutral_Test_Skipped", SeverityNeutral, FacilityCore, 0xf002)
	failureBlocked    = DefineResult("Failure_Test_Blocked", SeverityFailure, FacilityCore, 0xf003)
)

const receiptCredit ReceiptType = 1

// creditNotification credits an account.
type creditNotification struct {
	Account thor.Address
	Amount  thor.Amount
}

func (creditNotification) Type() NotificationType { return 1 }

// recorder observes every notification, in both directions.
type recorder struct {
	calls []string
}

func (r *recorder) Notify(n Notification, ctx *ObserverContext) {
	r.calls = append(r.calls, ctx.Direction.String())
}

type fixture struct {
	cache    *cache.Cache
	balances basecache.Handle[thor.Address, thor.Amount]
	cfg      *Config
	blocked  map[thor.Address]bool
}

func creditObserver(balances basecache.Handle[thor.Address, thor.Amount]) Observer {
	return NewObserver(func(n creditNotification, ctx *ObserverContext) {
		d := cache.DeltaOf(ctx.Delta, balances)
		balance, _ := d.Get(n.Account)
		switch ctx.Direction {
		case Apply:
			d.Set(n.Account, balance+n.Amount)
			ctx.AddReceipt(Receipt{Type: receiptCredit, Account: n.Account, Amount: n.Amount})
		case Rollback:
			if balance == n.Amount {
				d.Remove(n.Account)
			} else {
				d.Set(n.Account, balance-n.Amount)
			}
		default:
			panic("unexpected direction")
		}
	})
}

// newFixture publishes a credit of the tx amount to the recipient, followed by a credit of
// the fee to the signer, and a credit of 1 to the block signer for every block.
func newFixture(t *testing.T) *fixture {
	b := cache.NewBuilder()
	f := &fixture{
		balances: basecache.Register(b, basecache.New[thor.Address, thor.Amount]("balances", basecache.Options[thor.Address, thor.Amount]{MerkleRoot: true})),
		blocked:  make(map[thor.Address]bool),
	}
	f.cache = b.Build()
	f.cfg = &Config{
		StatelessValidator: StatelessValidators{
			NewStatelessValidator(func(n creditNotification) Result {
				if n.Amount == 0 {
					return failureZeroCredit
				}
				return Success
			}),
		},
		StatefulValidator: StatefulValidators{
			NewStatefulValidator(func(n creditNotification, ctx *ValidatorContext) Result {
				if f.blocked[ctx.Resolvers.ResolveAddress(n.Account)] {
					return failureBlocked
				}
				if n.Amount == 7 {
					return neutralSkipped
				}
				return Success
			}),
		},
		Observer: Observers{creditObserver(f.balances)},
		Publisher: PublisherFunc(func(info EntityInfo) []Notification {
			switch e := info.Entity.(type) {
			case *tx.Transaction:
				return []Notification{
					creditNotification{e.Recipient(), e.Amount()},
					creditNotification{e.Signer(), e.Fee()},
				}
			case *block.Block:
				return []Notification{creditNotification{e.Header().Signer(), 1}}
			}
			return nil
		}),
		EnableVerifiableState: true,
	}
	return f
}

func (f *fixture) delta(t *testing.T) *cache.Delta {
	d, err := f.cache.CreateDelta(context.Background())
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func (f *fixture) balance(d *cache.Delta, addr thor.Address) thor.Amount {
	v, _ := cache.DeltaOf(d, f.balances).Get(addr)
	return v
}

func transfer(recipient thor.Address, amount, fee thor.Amount) tx.Info {
	return tx.NewInfo(tx.NewBuilder(tx.TypeTransfer).
		Signer(thor.Address{0xaa}).
		Recipient(recipient).
		Amount(amount).
		Fee(fee).
		Build())
}

var genesis = block.NewElement(new(block.Builder).Height(0).Build(), thor.Bytes32{})

// buildChain builds n blocks over genesis, each with a single transfer to a distinct account.
// Header hashes are computed by executing the blocks against a scratch cache; corrupt is
// called with the builder of every block before it is finalized.
func buildChain(t *testing.T, n int, corrupt func(i int, b *block.Builder)) []*block.Element {
	scratch := newFixture(t)
	d := scratch.delta(t)
	batch := NewBatchEntityProcessor(scratch.cfg)

	parent := genesis
	var elements []*block.Element
	for i := 1; i <= n; i++ {
		info := transfer(thor.Address{byte(i)}, thor.Amount(100*i), 3)
		signer := thor.Address{0xbb}
		height := thor.Height(i)

		builder := new(block.Builder).
			Height(height).
			Timestamp(thor.Timestamp(1000 * i)).
			PreviousHash(parent.Hash).
			Signer(signer).
			Transaction(info.Tx)

		// execute a draft to learn the resulting hashes
		draft := block.NewElement(builder.Build(), parent.GenerationHash)
		receipts := NewReceiptBuilder()
		require.Equal(t, Success, batch(height, thor.Timestamp(1000*i), BlockEntities(draft), ObserverState{d, receipts}))
		builder.StateHash(d.CalculateStateHash(height).StateHash).ReceiptsHash(receipts.Hash())
		if corrupt != nil {
			corrupt(i, builder)
		}

		el := block.NewElement(builder.Build(), parent.GenerationHash)
		elements = append(elements, el)
		parent = el
	}
	return elements
}

func alwaysHit(*cache.ReadOnly) BlockHitPredicate {
	return func(_, _ *block.Header, _ thor.Bytes32) bool { return true }
}
