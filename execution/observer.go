// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package execution

import (
	"fmt"

	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/thor"
)

// Direction tells observers whether to apply a notification or to roll it back.
type Direction uint8

const (
	Apply Direction = iota + 1
	Rollback
)

func (d Direction) String() string {
	switch d {
	case Apply:
		return "apply"
	case Rollback:
		return "rollback"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ObserverContext is the environment of an observer.
type ObserverContext struct {
	Delta     *cache.Delta
	Height    thor.Height
	Direction Direction
	Resolvers ResolverContext
	// Receipts is nil when receipts are not collected.
	Receipts *ReceiptBuilder
}

// State returns the dependent state of the delta.
func (ctx *ObserverContext) State() *cache.DependentState {
	return ctx.Delta.DependentState()
}

// AddReceipt records r when receipts are collected and the direction is Apply.
func (ctx *ObserverContext) AddReceipt(r Receipt) {
	if ctx.Receipts != nil && ctx.Direction == Apply {
		ctx.Receipts.Add(r)
	}
}

// Observer mutates the delta in response to a notification.
// Rolling back a notification must exactly reverse applying it.
type Observer interface {
	Notify(n Notification, ctx *ObserverContext)
}

// Observers notifies in order on Apply and in reverse order on Rollback.
type Observers []Observer

func (obs Observers) Notify(n Notification, ctx *ObserverContext) {
	switch ctx.Direction {
	case Apply:
		for _, o := range obs {
			o.Notify(n, ctx)
		}
	case Rollback:
		for i := len(obs) - 1; i >= 0; i-- {
			obs[i].Notify(n, ctx)
		}
	default:
		panic(fmt.Sprintf("execution: unexpected %v", ctx.Direction))
	}
}

type observer[N Notification] func(N, *ObserverContext)

func (f observer[N]) Notify(n Notification, ctx *ObserverContext) {
	if typed, ok := n.(N); ok {
		f(typed, ctx)
	}
}

// NewObserver creates an observer applying fn to notifications of type N only.
func NewObserver[N Notification](fn func(N, *ObserverContext)) Observer {
	return observer[N](fn)
}
