// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txpool

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/ethereum/go-ethereum/event"

	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/execution"
	"github.com/vechain/statecore/log"
	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/tx"
)

var logger = log.WithContext("pkg", "txpool")

// FailedTransactionSink receives transactions rejected by validation or by the throttle.
type FailedTransactionSink func(info tx.Info, result execution.Result)

// TimeSupplier returns the time new transactions are validated at.
type TimeSupplier func() thor.Timestamp

// TxEvent is posted when a transaction enters the pool.
type TxEvent struct {
	Info      tx.Info
	Source    Source
	Validated bool
}

// Updater keeps the pool consistent with a detached snapshot of the confirmed cache.
// Transactions in the pool have all been applied, in pool order, to the snapshot.
type Updater struct {
	pool     *UtCache
	cache    *cache.Cache
	cfg      *execution.Config
	now      TimeSupplier
	sink     FailedTransactionSink
	throttle ThrottleFunc
	txFeed   event.Feed

	lock        sync.Mutex
	height      thor.Height
	detached    *cache.DetachedDelta
	unvalidated []thor.Bytes32
}

// NewUpdater creates an updater over pool. sink and throttle may be nil.
func NewUpdater(
	pool *UtCache,
	c *cache.Cache,
	cfg *execution.Config,
	now TimeSupplier,
	sink FailedTransactionSink,
	throttle ThrottleFunc,
) *Updater {
	if sink == nil {
		sink = func(tx.Info, execution.Result) {}
	}
	u := &Updater{
		pool:     pool,
		cache:    c,
		cfg:      cfg,
		now:      now,
		sink:     sink,
		throttle: throttle,
	}
	u.rebase()
	return u
}

// SubscribeTxEvent receives an event for every transaction entering the pool.
func (u *Updater) SubscribeTxEvent(ch chan *TxEvent) event.Subscription {
	return u.txFeed.Subscribe(ch)
}

func (u *Updater) rebase() {
	dd := u.cache.CreateDetachableDelta()
	defer dd.Close()
	u.height = dd.Height()
	u.detached = dd.Detach()
}

// Update handles freshly received transactions. When the snapshot cannot be locked because
// a commit raced ahead, the transactions are pooled without validation and validated on the
// next pass that locks.
func (u *Updater) Update(infos tx.Infos) {
	startTime := mclock.Now()
	events := u.update(infos)
	metricUpdateTiming().Observe(time.Duration(mclock.Now() - startTime).Milliseconds())
	u.post(events)
}

func (u *Updater) update(infos tx.Infos) []*TxEvent {
	u.lock.Lock()
	defer u.lock.Unlock()

	m := u.pool.Modifier()
	defer func() {
		metricPoolSize().Set(int64(m.Size()))
		m.Close()
	}()

	delta, ok := u.detached.TryLock()
	if !ok {
		logger.Debug("snapshot unavailable, pooling without validation", "count", len(infos))
		return u.addUnvalidated(m, infos, SourceNew)
	}
	defer delta.Close()

	a := u.newApplier(m, delta)
	a.revalidate(u.unvalidated)
	u.unvalidated = nil
	for _, info := range infos {
		a.apply(info, SourceNew)
	}
	return a.events
}

// UpdateConfirmed handles a cache commit. Pooled transactions found in confirmed are dropped,
// reverted transactions are applied first, then the rest of the previous pool in its order.
func (u *Updater) UpdateConfirmed(confirmed []thor.Bytes32, reverted tx.Infos) {
	startTime := mclock.Now()
	events := u.updateConfirmed(confirmed, reverted)
	metricUpdateTiming().Observe(time.Duration(mclock.Now() - startTime).Milliseconds())
	u.post(events)
}

func (u *Updater) updateConfirmed(confirmed []thor.Bytes32, reverted tx.Infos) []*TxEvent {
	u.lock.Lock()
	defer u.lock.Unlock()

	m := u.pool.Modifier()
	defer func() {
		metricPoolSize().Set(int64(m.Size()))
		m.Close()
	}()

	previous := m.RemoveAll()
	u.unvalidated = nil
	u.rebase()

	isConfirmed := make(map[thor.Bytes32]struct{}, len(confirmed))
	for _, hash := range confirmed {
		isConfirmed[hash] = struct{}{}
	}
	existing := make(tx.Infos, 0, len(previous))
	for _, info := range previous {
		if _, ok := isConfirmed[info.Hash]; !ok {
			existing = append(existing, info)
		}
	}

	delta, ok := u.detached.TryLock()
	if !ok {
		logger.Debug("snapshot unavailable after rebase", "height", u.height)
		events := u.addUnvalidated(m, reverted, SourceReverted)
		return append(events, u.addUnvalidated(m, existing, SourceExisting)...)
	}
	defer delta.Close()

	a := u.newApplier(m, delta)
	for _, info := range reverted {
		a.apply(info, SourceReverted)
	}
	for _, info := range existing {
		a.apply(info, SourceExisting)
	}
	logger.Debug("pool rebased", "height", u.height, "reverted", len(reverted), "kept", m.Size())
	return a.events
}

func (u *Updater) addUnvalidated(m *Modifier, infos tx.Infos, source Source) []*TxEvent {
	var events []*TxEvent
	for _, info := range infos {
		if m.Add(info) {
			u.unvalidated = append(u.unvalidated, info.Hash)
			events = append(events, &TxEvent{Info: info, Source: source})
		}
	}
	return events
}

func (u *Updater) post(events []*TxEvent) {
	for _, ev := range events {
		u.txFeed.Send(ev)
	}
}

type applier struct {
	u        *Updater
	modifier *Modifier
	ro       *cache.ReadOnly
	executor *execution.EntityExecutor
	events   []*TxEvent
}

func (u *Updater) newApplier(m *Modifier, delta *cache.Delta) *applier {
	return &applier{
		u:        u,
		modifier: m,
		ro:       delta.ReadOnly(),
		executor: execution.NewEntityExecutor(u.cfg, delta, u.height.Next(), u.now(), nil),
	}
}

// apply throttles, pools and executes info. Pooled hashes are never executed again.
func (a *applier) apply(info tx.Info, source Source) {
	u := a.u
	if a.modifier.Contains(info.Hash) {
		return
	}

	if u.throttle != nil {
		ctx := &ThrottleContext{
			Source:      source,
			CacheHeight: u.height,
			Cache:       a.ro,
			Pool:        a.modifier,
		}
		if u.throttle(info, ctx) {
			metricTxRejected().AddWithLabel(1, map[string]string{"source": source.String(), "reason": "throttled"})
			logger.Debug("tx throttled", "hash", info.Hash, "source", source, "pool", a.modifier.Size())
			u.sink(info, execution.FailureChainUnconfirmedCacheTooFull)
			return
		}
	}

	if !a.modifier.Add(info) {
		return
	}
	if !a.execute(info, source) {
		return
	}
	a.events = append(a.events, &TxEvent{Info: info, Source: source, Validated: true})
}

// revalidate executes pooled transactions admitted without validation.
func (a *applier) revalidate(hashes []thor.Bytes32) {
	for _, hash := range hashes {
		info, ok := a.u.pool.byHash[hash]
		if !ok {
			continue
		}
		a.execute(info, SourceExisting)
	}
}

func (a *applier) execute(info tx.Info, source Source) bool {
	result, _ := a.executor.Execute(execution.TransactionEntity(info))
	if result.IsSuccess() {
		return true
	}
	// the entity is already undone
	a.modifier.Remove(info.Hash)
	if result.IsFailure() {
		metricTxRejected().AddWithLabel(1, map[string]string{"source": source.String(), "reason": "invalid"})
		logger.Debug("tx rejected", "hash", info.Hash, "source", source, "result", result)
		a.u.sink(info, result)
	}
	return false
}

// Height returns the confirmed height the pool is validated against.
func (u *Updater) Height() thor.Height {
	u.lock.Lock()
	defer u.lock.Unlock()
	return u.height
}
