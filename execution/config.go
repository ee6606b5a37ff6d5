// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package execution

import (
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/thor"
)

// Config wires the plugins that give notifications their meaning.
type Config struct {
	Network                Network
	StatelessValidator     StatelessValidator
	StatefulValidator      StatefulValidator
	Observer               Observer
	Publisher              NotificationPublisher
	ResolverContextFactory ResolverContextFactory

	// EnableVerifiableState checks block state hashes against the cache.
	EnableVerifiableState bool
	// EnableVerifiableReceipts checks block receipts hashes against collected receipts.
	EnableVerifiableReceipts bool
}

func (c *Config) resolvers(ro *cache.ReadOnly) ResolverContext {
	if c.ResolverContextFactory == nil {
		return ResolverContext{}
	}
	return c.ResolverContextFactory(ro)
}

// NewContexts builds the validator and observer contexts for executing entities at height
// against delta.
func (c *Config) NewContexts(delta *cache.Delta, height thor.Height, blockTime thor.Timestamp, receipts *ReceiptBuilder) (*ValidatorContext, *ObserverContext) {
	ro := delta.ReadOnly()
	resolvers := c.resolvers(ro)
	vctx := &ValidatorContext{
		Height:    height,
		BlockTime: blockTime,
		Network:   c.Network,
		Resolvers: resolvers,
		Cache:     ro,
	}
	octx := &ObserverContext{
		Delta:     delta,
		Height:    height,
		Direction: Apply,
		Resolvers: resolvers,
		Receipts:  receipts,
	}
	return vctx, octx
}
