// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package execution

import (
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/thor"
)

// Network identifies the chain.
type Network struct {
	Identifier         byte
	GenerationHashSeed thor.Bytes32
}

// ResolverContext resolves aliases found in notifications.
type ResolverContext struct {
	resolveAddress func(thor.Address) thor.Address
}

// NewResolverContext creates a resolver context. A nil function resolves every address to itself.
func NewResolverContext(resolveAddress func(thor.Address) thor.Address) ResolverContext {
	return ResolverContext{resolveAddress}
}

// ResolveAddress returns the account address behind addr.
func (r ResolverContext) ResolveAddress(addr thor.Address) thor.Address {
	if r.resolveAddress == nil {
		return addr
	}
	return r.resolveAddress(addr)
}

// ResolverContextFactory builds resolvers over the given cache state.
type ResolverContextFactory func(ro *cache.ReadOnly) ResolverContext

// ValidatorContext is the environment of a stateful validation.
type ValidatorContext struct {
	Height    thor.Height
	BlockTime thor.Timestamp
	Network   Network
	Resolvers ResolverContext
	Cache     *cache.ReadOnly
}

// StatelessValidator checks a notification on its own.
type StatelessValidator interface {
	Validate(n Notification) Result
}

// StatefulValidator checks a notification against cache state.
type StatefulValidator interface {
	Validate(n Notification, ctx *ValidatorContext) Result
}

// StatelessValidators runs validators in order and stops at the first failure.
type StatelessValidators []StatelessValidator

func (vs StatelessValidators) Validate(n Notification) Result {
	result := Success
	for _, v := range vs {
		result = Aggregate(result, v.Validate(n))
		if result.IsFailure() {
			break
		}
	}
	return result
}

// StatefulValidators runs validators in order and stops at the first failure.
type StatefulValidators []StatefulValidator

func (vs StatefulValidators) Validate(n Notification, ctx *ValidatorContext) Result {
	result := Success
	for _, v := range vs {
		result = Aggregate(result, v.Validate(n, ctx))
		if result.IsFailure() {
			break
		}
	}
	return result
}

type statelessValidator[N Notification] func(N) Result

func (f statelessValidator[N]) Validate(n Notification) Result {
	if typed, ok := n.(N); ok {
		return f(typed)
	}
	return Success
}

// NewStatelessValidator creates a validator applying fn to notifications of type N only.
func NewStatelessValidator[N Notification](fn func(N) Result) StatelessValidator {
	return statelessValidator[N](fn)
}

type statefulValidator[N Notification] func(N, *ValidatorContext) Result

func (f statefulValidator[N]) Validate(n Notification, ctx *ValidatorContext) Result {
	if typed, ok := n.(N); ok {
		return f(typed, ctx)
	}
	return Success
}

// NewStatefulValidator creates a validator applying fn to notifications of type N only.
func NewStatefulValidator[N Notification](fn func(N, *ValidatorContext) Result) StatefulValidator {
	return statefulValidator[N](fn)
}
