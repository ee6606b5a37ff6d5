// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txpool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/statecore/basecache"
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/execution"
	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/tx"
)

var (
	failureInsufficientBalance = execution.DefineResult("Failure_Test_Insufficient_Balance", execution.SeverityFailure, execution.FacilityCore, 0xf101)
	neutralIgnored             = execution.DefineResult("Neutral_Test_Ignored", execution.SeverityNeutral, execution.FacilityCore, 0xf102)
)

type transferNotification struct {
	From, To thor.Address
	Amount   thor.Amount
}

func (transferNotification) Type() execution.NotificationType { return 1 }

type failure struct {
	hash   thor.Bytes32
	result execution.Result
}

type fixture struct {
	cache     *cache.Cache
	balances  basecache.Handle[thor.Address, thor.Amount]
	cfg       *execution.Config
	pool      *UtCache
	published map[thor.Bytes32]int
	failures  []failure
}

func newTransfer(signer, recipient thor.Address, amount, fee thor.Amount, nonce uint64) tx.Info {
	return tx.NewInfo(tx.NewBuilder(tx.TypeTransfer).
		Signer(signer).
		Recipient(recipient).
		Amount(amount).
		Fee(fee).
		Nonce(nonce).
		Build())
}

// newFixture funds the accounts with the given balances at height 1. A transfer of 7 is neutral.
func newFixture(t *testing.T, funds map[thor.Address]thor.Amount) *fixture {
	b := cache.NewBuilder()
	f := &fixture{
		balances:  basecache.Register(b, basecache.New[thor.Address, thor.Amount]("balances", basecache.Options[thor.Address, thor.Amount]{MerkleRoot: true})),
		pool:      NewUtCache(0),
		published: make(map[thor.Bytes32]int),
	}
	f.cache = b.Build()

	d, err := f.cache.CreateDelta(context.Background())
	require.NoError(t, err)
	for addr, amount := range funds {
		cache.DeltaOf(d, f.balances).Set(addr, amount)
	}
	require.NoError(t, f.cache.Commit(1))

	f.cfg = &execution.Config{
		StatefulValidator: execution.NewStatefulValidator(func(n transferNotification, ctx *execution.ValidatorContext) execution.Result {
			if n.Amount == 7 {
				return neutralIgnored
			}
			balance, _ := cache.ReaderOf(ctx.Cache, f.balances).Get(n.From)
			if balance < n.Amount {
				return failureInsufficientBalance
			}
			return execution.Success
		}),
		Observer: execution.NewObserver(func(n transferNotification, ctx *execution.ObserverContext) {
			d := cache.DeltaOf(ctx.Delta, f.balances)
			from, _ := d.Get(n.From)
			to, _ := d.Get(n.To)
			switch ctx.Direction {
			case execution.Apply:
				d.Set(n.From, from-n.Amount)
				d.Set(n.To, to+n.Amount)
			case execution.Rollback:
				d.Set(n.From, from+n.Amount)
				d.Set(n.To, to-n.Amount)
			}
		}),
		Publisher: execution.PublisherFunc(func(info execution.EntityInfo) []execution.Notification {
			f.published[info.Hash]++
			trx := info.Entity.(*tx.Transaction)
			return []execution.Notification{transferNotification{trx.Signer(), trx.Recipient(), trx.Amount() + trx.Fee()}}
		}),
	}
	return f
}

func (f *fixture) updater(throttle ThrottleFunc) *Updater {
	sink := func(info tx.Info, result execution.Result) {
		f.failures = append(f.failures, failure{info.Hash, result})
	}
	return NewUpdater(f.pool, f.cache, f.cfg, func() thor.Timestamp { return 1000 }, sink, throttle)
}

func (f *fixture) commit(t *testing.T, height thor.Height, fn func(d *basecache.Delta[thor.Address, thor.Amount])) {
	d, err := f.cache.CreateDelta(context.Background())
	require.NoError(t, err)
	fn(cache.DeltaOf(d, f.balances))
	require.NoError(t, f.cache.Commit(height))
}

var (
	alice = thor.Address{0xa1}
	bob   = thor.Address{0xb0}
)

func TestUpdaterAppliesToSnapshot(t *testing.T) {
	f := newFixture(t, map[thor.Address]thor.Amount{alice: 100})
	u := f.updater(nil)
	assert.Equal(t, thor.Height(1), u.Height())

	ok1 := newTransfer(alice, bob, 50, 10, 1)
	ok2 := newTransfer(alice, bob, 30, 0, 2)
	// only 10 left after the first two
	broke := newTransfer(alice, bob, 20, 0, 3)
	neutral := newTransfer(bob, alice, 7, 0, 4)
	u.Update(tx.Infos{ok1, ok2, broke, neutral})

	assert.Equal(t, []thor.Bytes32{ok1.Hash, ok2.Hash}, f.pool.All().Hashes())
	assert.Equal(t, []failure{{broke.Hash, failureInsufficientBalance}}, f.failures)

	// the committed cache is untouched
	view := f.cache.CreateView()
	defer view.Close()
	balance, _ := cache.ViewOf(view, f.balances).Get(alice)
	assert.Equal(t, thor.Amount(100), balance)
}

func TestUpdaterSkipsPooledHashes(t *testing.T) {
	f := newFixture(t, map[thor.Address]thor.Amount{alice: 100})
	u := f.updater(nil)

	info := newTransfer(alice, bob, 10, 0, 1)
	u.Update(tx.Infos{info})
	u.Update(tx.Infos{info, info})
	u.UpdateConfirmed(nil, tx.Infos{info})

	assert.Equal(t, 1, f.pool.Size())
	// once on admission, once when the pool was rebuilt
	assert.Equal(t, 2, f.published[info.Hash])
}

func TestUpdaterThrottle(t *testing.T) {
	f := newFixture(t, map[thor.Address]thor.Amount{alice: 100})
	var seen []*ThrottleContext
	u := f.updater(func(info tx.Info, ctx *ThrottleContext) bool {
		seen = append(seen, ctx)
		return ctx.Pool.Size() >= 1
	})

	first := newTransfer(alice, bob, 10, 0, 1)
	second := newTransfer(alice, bob, 10, 0, 2)
	u.Update(tx.Infos{first, second})

	assert.Equal(t, []thor.Bytes32{first.Hash}, f.pool.All().Hashes())
	assert.Equal(t, []failure{{second.Hash, execution.FailureChainUnconfirmedCacheTooFull}}, f.failures)
	assert.Zero(t, f.published[second.Hash])
	require.Len(t, seen, 2)
	assert.Equal(t, SourceNew, seen[0].Source)
	assert.Equal(t, thor.Height(1), seen[0].CacheHeight)
}

func TestUpdaterUnvalidatedAdmission(t *testing.T) {
	f := newFixture(t, map[thor.Address]thor.Amount{alice: 100})
	u := f.updater(nil)

	// a commit makes the snapshot stale: alice is drained
	f.commit(t, 2, func(d *basecache.Delta[thor.Address, thor.Amount]) { d.Set(alice, 5) })

	valid := newTransfer(alice, bob, 5, 0, 1)
	invalid := newTransfer(alice, bob, 50, 0, 2)
	u.Update(tx.Infos{valid, invalid})
	assert.Equal(t, 2, f.pool.Size())
	assert.Zero(t, f.published[valid.Hash])
	assert.Empty(t, f.failures)

	u.UpdateConfirmed(nil, nil)
	assert.Equal(t, thor.Height(2), u.Height())
	assert.Equal(t, []thor.Bytes32{valid.Hash}, f.pool.All().Hashes())
	assert.Equal(t, []failure{{invalid.Hash, failureInsufficientBalance}}, f.failures)
}

func TestUpdaterUpdateConfirmed(t *testing.T) {
	f := newFixture(t, map[thor.Address]thor.Amount{alice: 100, bob: 100})
	u := f.updater(nil)

	a1 := newTransfer(alice, bob, 10, 0, 1)
	a2 := newTransfer(alice, bob, 10, 0, 2)
	b1 := newTransfer(bob, alice, 10, 0, 3)
	u.Update(tx.Infos{a1, a2, b1})
	require.Equal(t, 3, f.pool.Size())

	// a1 got confirmed, r1 came back from a dropped block
	f.commit(t, 2, func(d *basecache.Delta[thor.Address, thor.Amount]) {
		d.Set(alice, 90)
		d.Set(bob, 110)
	})
	r1 := newTransfer(bob, alice, 20, 0, 4)
	u.UpdateConfirmed([]thor.Bytes32{a1.Hash}, tx.Infos{r1})

	assert.Equal(t, []thor.Bytes32{r1.Hash, a2.Hash, b1.Hash}, f.pool.All().Hashes())
	assert.Empty(t, f.failures)
}

func TestUpdaterTxEvents(t *testing.T) {
	f := newFixture(t, map[thor.Address]thor.Amount{alice: 100})
	u := f.updater(nil)

	ch := make(chan *TxEvent, 10)
	sub := u.SubscribeTxEvent(ch)
	defer sub.Unsubscribe()

	info := newTransfer(alice, bob, 10, 0, 1)
	u.Update(tx.Infos{info, newTransfer(alice, bob, 1000, 0, 2)})

	require.Len(t, ch, 1)
	ev := <-ch
	assert.Equal(t, info.Hash, ev.Info.Hash)
	assert.Equal(t, SourceNew, ev.Source)
	assert.True(t, ev.Validated)
}
