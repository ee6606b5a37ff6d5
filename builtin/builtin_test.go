// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/statecore/block"
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/execution"
	"github.com/vechain/statecore/storage"
	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/tx"
)

var (
	alice     = thor.Address{0xa1}
	bob       = thor.Address{0xb0}
	harvester = thor.Address{0xee}
)

type fixture struct {
	cache   *cache.Cache
	plugins *Plugins
	cfg     *execution.Config
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.MinFee = 1
	opts.BlockReward = 5
	opts.ImportanceGrouping = 4
	opts.TotalImportance = 10_000
	return opts
}

// newFixture seeds alice and the harvester at height 1.
func newFixture(t *testing.T, store *storage.Store, opts Options) *fixture {
	b := cache.NewBuilder()
	f := &fixture{plugins: Register(b, store, opts)}
	f.cache = b.Build()
	f.cfg = f.plugins.ExecutionConfig()

	d := f.delta(t)
	f.plugins.Seed(d, map[thor.Address]thor.Amount{alice: 1000, harvester: 9000})
	require.NoError(t, f.cache.Commit(1))
	return f
}

func (f *fixture) delta(t *testing.T) *cache.Delta {
	d, err := f.cache.CreateDelta(context.Background())
	require.NoError(t, err)
	return d
}

func (f *fixture) account(d *cache.Delta, addr thor.Address) Account {
	acc, _ := cache.DeltaOf(d, f.plugins.Accounts).Get(addr)
	return acc
}

func transfer(from, to thor.Address, amount, fee thor.Amount, deadline thor.Timestamp) tx.Info {
	return tx.NewInfo(tx.NewBuilder(tx.TypeTransfer).
		Signer(from).
		Recipient(to).
		Amount(amount).
		Fee(fee).
		Deadline(deadline).
		Build())
}

func TestTransfer(t *testing.T) {
	f := newFixture(t, nil, testOptions())
	d := f.delta(t)
	defer d.Discard()
	before := d.CalculateStateHash(2)

	receipts := execution.NewReceiptBuilder()
	exec := execution.NewEntityExecutor(f.cfg, d, 2, 1000, receipts)
	info := transfer(alice, bob, 100, 10, 5000)

	result, undo := exec.Execute(execution.TransactionEntity(info))
	require.Equal(t, execution.Success, result)
	assert.Equal(t, thor.Amount(890), f.account(d, alice).Balance)
	assert.Equal(t, thor.Importance(1000), f.account(d, alice).Importance)
	assert.Equal(t, thor.Amount(100), f.account(d, bob).Balance)
	deadline, ok := cache.DeltaOf(d, f.plugins.Hashes).Get(info.Hash)
	assert.True(t, ok)
	assert.Equal(t, thor.Timestamp(5000), deadline)
	require.Equal(t, 2, receipts.Len())
	assert.Equal(t, ReceiptFee, receipts.Receipts()[0].Type)
	assert.Equal(t, ReceiptTransfer, receipts.Receipts()[1].Type)

	again, _ := exec.Execute(execution.TransactionEntity(info))
	assert.Equal(t, FailureCoreDuplicateTransaction, again)

	undo()
	assert.False(t, cache.DeltaOf(d, f.plugins.Accounts).Contains(bob))
	assert.False(t, cache.DeltaOf(d, f.plugins.Hashes).Contains(info.Hash))
	assert.Equal(t, before, d.CalculateStateHash(2))
	assert.Zero(t, receipts.Len())
}

func TestValidation(t *testing.T) {
	f := newFixture(t, nil, testOptions())
	d := f.delta(t)
	defer d.Discard()
	exec := execution.NewEntityExecutor(f.cfg, d, 2, 1000, nil)
	lifetime := testOptions().MaxTransactionLifetime

	tests := []struct {
		name   string
		info   tx.Info
		result execution.Result
	}{
		{"ok", transfer(alice, bob, 1, 1, 1000), execution.Success},
		{"past deadline", transfer(alice, bob, 1, 1, 999), FailureCorePastDeadline},
		{"far deadline", transfer(alice, bob, 1, 1, 1001+lifetime), FailureCoreFutureDeadline},
		{"zero signer", transfer(thor.Address{}, bob, 1, 1, 2000), FailureCoreZeroSigner},
		{"low fee", transfer(alice, bob, 1, 0, 2000), FailureCoreInsufficientFee},
		{"self", transfer(alice, alice, 1, 1, 2000), FailureCoreSelfTransfer},
		{"empty", transfer(alice, bob, 0, 1, 2000), NeutralCoreEmptyTransfer},
		{"fee too high", transfer(bob, alice, 1, 5000, 2000), FailureCoreInsufficientBalance},
		{"overdraft", transfer(alice, bob, 5000, 1, 2000), FailureCoreInsufficientBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, undo := exec.Execute(execution.TransactionEntity(tt.info))
			assert.Equal(t, tt.result, result)
			if undo != nil {
				undo()
			}
		})
	}
	assert.Equal(t, thor.Amount(1000), f.account(d, alice).Balance)
}

func TestBlockObserver(t *testing.T) {
	f := newFixture(t, nil, testOptions())
	d := f.delta(t)
	defer d.Discard()
	before := d.CalculateStateHash(4)

	blk := new(block.Builder).
		Height(4).
		Timestamp(1000).
		Signer(harvester).
		Transaction(transfer(alice, bob, 1, 1, 2000).Tx).
		Build()
	receipts := execution.NewReceiptBuilder()
	exec := execution.NewEntityExecutor(f.cfg, d, 4, 1000, receipts)
	result, undo := exec.Execute(execution.EntityInfo{Entity: blk, Hash: blk.Hash(), Header: blk.Header()})
	require.Equal(t, execution.Success, result)

	assert.Equal(t, thor.Amount(9005), f.account(d, harvester).Balance)
	stats, ok := cache.DeltaOf(d, f.plugins.Stats).Get(4)
	assert.True(t, ok)
	assert.Equal(t, BlockStats{NumTransactions: 1}, stats)
	assert.Equal(t, uint64(1), d.DependentState().NumTotalTransactions)
	assert.Equal(t, thor.Height(4), d.DependentState().LastRecalculationHeight)
	assert.Equal(t, 1, receipts.Len())

	undo()
	assert.Equal(t, thor.Amount(9000), f.account(d, harvester).Balance)
	assert.False(t, cache.DeltaOf(d, f.plugins.Stats).Contains(4))
	assert.Equal(t, cache.DependentState{}, *d.DependentState())
	assert.Equal(t, before, d.CalculateStateHash(4))
}

func TestBlockRollbackRestoresRecalculationHeight(t *testing.T) {
	f := newFixture(t, nil, testOptions())
	d := f.delta(t)
	defer d.Discard()
	// the last recalculation is more than one grouping back
	d.DependentState().LastRecalculationHeight = 1

	blk := new(block.Builder).Height(8).Timestamp(1000).Signer(harvester).Build()
	exec := execution.NewEntityExecutor(f.cfg, d, 8, 1000, nil)
	result, undo := exec.Execute(execution.EntityInfo{Entity: blk, Hash: blk.Hash(), Header: blk.Header()})
	require.Equal(t, execution.Success, result)
	assert.Equal(t, thor.Height(8), d.DependentState().LastRecalculationHeight)
	stats, _ := cache.DeltaOf(d, f.plugins.Stats).Get(8)
	assert.Equal(t, thor.Height(1), stats.PreviousRecalculationHeight)

	undo()
	assert.Equal(t, thor.Height(1), d.DependentState().LastRecalculationHeight)
	assert.False(t, cache.DeltaOf(d, f.plugins.Stats).Contains(8))
}

func TestPrune(t *testing.T) {
	f := newFixture(t, nil, testOptions())
	d := f.delta(t)
	hashes := cache.DeltaOf(d, f.plugins.Hashes)
	hashes.Set(thor.Bytes32{1}, 100)
	hashes.Set(thor.Bytes32{2}, 300)
	stats := cache.DeltaOf(d, f.plugins.Stats)
	stats.Set(1, BlockStats{NumTransactions: 3})
	stats.Set(700, BlockStats{NumTransactions: 3})
	require.NoError(t, f.cache.Commit(2))

	d = f.delta(t)
	defer d.Discard()
	d.Prune(1000, 200)
	assert.False(t, cache.DeltaOf(d, f.plugins.Hashes).Contains(thor.Bytes32{1}))
	assert.True(t, cache.DeltaOf(d, f.plugins.Hashes).Contains(thor.Bytes32{2}))
	assert.False(t, cache.DeltaOf(d, f.plugins.Stats).Contains(1))
	assert.True(t, cache.DeltaOf(d, f.plugins.Stats).Contains(700))
}

func TestHitPredicate(t *testing.T) {
	full := Target(100, 15, 100, 15)
	assert.Equal(t, new(uint256.Int).Lsh(uint256.NewInt(1), 64), full)
	assert.Equal(t, new(uint256.Int).Lsh(uint256.NewInt(1), 63), Target(50, 15, 100, 15))
	assert.True(t, Target(1, 1, 0, 15).IsZero())

	f := newFixture(t, nil, testOptions())
	view := f.cache.CreateView()
	defer view.Close()
	hit := f.plugins.HitPredicateFactory()(view.ReadOnly())

	parent := new(block.Builder).Height(1).Timestamp(1000).Build().Header()
	child := func(signer thor.Address, ts thor.Timestamp) *block.Header {
		return new(block.Builder).Height(2).Timestamp(ts).Signer(signer).Build().Header()
	}
	maxHash := thor.Bytes32{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

	// the harvester owns 90% of the importance
	assert.True(t, hit(parent, child(harvester, 16000), thor.Bytes32{}))
	assert.False(t, hit(parent, child(harvester, 16000), maxHash))
	assert.True(t, hit(parent, child(harvester, 100000), maxHash))
	assert.False(t, hit(parent, child(harvester, 1000), thor.Bytes32{}))
	assert.False(t, hit(parent, child(bob, 100000), thor.Bytes32{}))
}

func TestStorage(t *testing.T) {
	store, err := storage.OpenMem()
	require.NoError(t, err)
	defer store.Close()

	f := newFixture(t, store, testOptions())
	require.NoError(t, f.cache.SaveAll(context.Background()))
	view := f.cache.CreateView()
	expected := view.CalculateStateHash()
	view.Close()

	loaded := newFixtureUnseeded(store, testOptions())
	require.NoError(t, loaded.cache.LoadAll(context.Background()))
	assert.Equal(t, thor.Height(1), loaded.cache.Height())
	view = loaded.cache.CreateView()
	defer view.Close()
	assert.Equal(t, expected, view.CalculateStateHash())
	acc, _ := cache.ViewOf(view, loaded.plugins.Accounts).Get(alice)
	assert.Equal(t, Account{Balance: 1000, Importance: 1000}, acc)
}

func newFixtureUnseeded(store *storage.Store, opts Options) *fixture {
	b := cache.NewBuilder()
	f := &fixture{plugins: Register(b, store, opts)}
	f.cache = b.Build()
	f.cfg = f.plugins.ExecutionConfig()
	return f
}
