// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txpool

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/tx"
)

// ThrottleConfig tunes the spam throttle.
type ThrottleConfig struct {
	// MaxBoostFee is the fee granting the full importance boost.
	MaxBoostFee thor.Amount `yaml:"max-boost-fee"`
	// TotalImportance of all accounts.
	TotalImportance thor.Importance `yaml:"total-importance"`
	// MaxBlockSize in transactions. Pools up to this size never throttle.
	MaxBlockSize uint64 `yaml:"max-block-size"`
	// MaxCacheSize in transactions. Pools of this size always throttle.
	MaxCacheSize uint64 `yaml:"max-cache-size"`
	// BypassBonded exempts aggregate bonded transactions from the importance curve.
	BypassBonded bool `yaml:"bypass-bonded"`
	// DecayRate of the exponential curve over the pool fill ratio.
	DecayRate float64 `yaml:"decay-rate"`
	// BoostCapPercent caps the fee boost as a percentage of TotalImportance.
	BoostCapPercent uint64 `yaml:"boost-cap-percent"`
	// SlotScale multiplies the number of transactions an account may pool.
	SlotScale float64 `yaml:"slot-scale"`
}

// DefaultThrottleConfig returns the default throttle settings.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		MaxBoostFee:     10_000_000,
		TotalImportance: 9_000_000_000,
		MaxBlockSize:    6_000,
		MaxCacheSize:    1_000_000,
		BypassBonded:    true,
		DecayRate:       3,
		BoostCapPercent: 1,
		SlotScale:       100,
	}
}

// Pool is the part of the pool the throttle looks at.
type Pool interface {
	Size() int
	Count(signer thor.Address) int
}

// Source tells where a transaction handed to the updater comes from.
type Source uint8

const (
	// SourceNew transactions arrive from the network or an API.
	SourceNew Source = iota + 1
	// SourceExisting transactions were pooled before the last commit.
	SourceExisting
	// SourceReverted transactions come from blocks dropped by a rollback.
	SourceReverted
)

func (s Source) String() string {
	switch s {
	case SourceNew:
		return "new"
	case SourceExisting:
		return "existing"
	case SourceReverted:
		return "reverted"
	default:
		return "unknown"
	}
}

// ThrottleContext is the environment of a throttle decision.
type ThrottleContext struct {
	Source      Source
	CacheHeight thor.Height
	Cache       *cache.ReadOnly
	Pool        Pool
}

// ThrottleFunc reports whether info must be rejected to protect the pool.
type ThrottleFunc func(info tx.Info, ctx *ThrottleContext) bool

// ImportanceLookup returns the importance of an account.
type ImportanceLookup func(ro *cache.ReadOnly, account thor.Address, height thor.Height) thor.Importance

// EffectiveImportance adds a fee proportional boost to importance. The boost grows linearly
// up to BoostCapPercent of the total importance, reached at MaxBoostFee.
func EffectiveImportance(importance thor.Importance, fee thor.Amount, cfg ThrottleConfig) thor.Importance {
	capBoost := new(uint256.Int).SetUint64(uint64(cfg.TotalImportance))
	capBoost.Mul(capBoost, uint256.NewInt(cfg.BoostCapPercent))
	capBoost.Div(capBoost, uint256.NewInt(100))

	boost := new(uint256.Int).Set(capBoost)
	if cfg.MaxBoostFee > 0 {
		boost.Mul(boost, uint256.NewInt(uint64(fee)))
		boost.Div(boost, uint256.NewInt(uint64(cfg.MaxBoostFee)))
	}
	if boost.Gt(capBoost) {
		boost = capBoost
	}

	total := new(uint256.Int).SetUint64(uint64(importance))
	total.Add(total, boost)
	if !total.IsUint64() {
		return thor.Importance(math.MaxUint64)
	}
	return thor.Importance(total.Uint64())
}

// MaxTransactions returns how many transactions an account of the given effective importance
// may have pooled when the pool holds poolSize transactions.
func MaxTransactions(poolSize uint64, effective thor.Importance, cfg ThrottleConfig) uint64 {
	if poolSize >= cfg.MaxCacheSize || cfg.TotalImportance == 0 {
		return 0
	}
	slotsLeft := float64(cfg.MaxCacheSize - poolSize)
	scale := math.Exp(-cfg.DecayRate * float64(poolSize) / float64(cfg.MaxCacheSize))
	return uint64(scale * float64(effective) * slotsLeft * cfg.SlotScale / float64(cfg.TotalImportance))
}

// TransactionSpamThrottle creates a throttle limiting the share of the pool an account can
// take, relative to its importance, once the pool holds more than a block worth of transactions.
// isBonded may be nil.
func TransactionSpamThrottle(cfg ThrottleConfig, lookup ImportanceLookup, isBonded func(*tx.Transaction) bool) ThrottleFunc {
	return func(info tx.Info, ctx *ThrottleContext) bool {
		size := uint64(ctx.Pool.Size())
		if size <= cfg.MaxBlockSize {
			return false
		}
		if size >= cfg.MaxCacheSize {
			return true
		}
		if cfg.BypassBonded && isBonded != nil && isBonded(info.Tx) {
			return false
		}

		signer := info.Tx.Signer()
		importance := lookup(ctx.Cache, signer, ctx.CacheHeight)
		effective := EffectiveImportance(importance, info.Tx.Fee(), cfg)
		return uint64(ctx.Pool.Count(signer)) >= MaxTransactions(size, effective, cfg)
	}
}

// IsAggregateBonded is the default bonded predicate.
func IsAggregateBonded(trx *tx.Transaction) bool {
	return trx.Type() == tx.TypeAggregateBonded
}
