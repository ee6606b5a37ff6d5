// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the node configuration from YAML.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/statecore/builtin"
	"github.com/vechain/statecore/execution"
	"github.com/vechain/statecore/storage"
	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/txpool"
)

// Config is the whole node configuration.
type Config struct {
	Network   Network               `yaml:"network"`
	Cache     Cache                 `yaml:"cache"`
	Execution Execution             `yaml:"execution"`
	Pool      Pool                  `yaml:"pool"`
	Throttle  txpool.ThrottleConfig `yaml:"throttle"`
	Log       Log                   `yaml:"log"`
	// Nemesis balances, keyed by hex address.
	Nemesis map[string]thor.Amount `yaml:"nemesis"`
}

type Network struct {
	Identifier         uint8  `yaml:"identifier"`
	GenerationHashSeed string `yaml:"generation-hash-seed"`
}

type Cache struct {
	DataDir                string `yaml:"data-dir"`
	CacheSize              int    `yaml:"cache-size"`
	OpenFilesCacheCapacity int    `yaml:"open-files-cache-capacity"`
	AllowHeightReset       bool   `yaml:"allow-height-reset"`
}

type Execution struct {
	MaxTransactionLifetime   thor.Timestamp  `yaml:"max-transaction-lifetime"`
	MinFee                   thor.Amount     `yaml:"min-fee"`
	BlockReward              thor.Amount     `yaml:"block-reward"`
	ImportanceGrouping       thor.Height     `yaml:"importance-grouping"`
	StatsRetention           thor.Height     `yaml:"stats-retention"`
	TotalImportance          thor.Importance `yaml:"total-importance"`
	TargetBlockTime          thor.Timestamp  `yaml:"target-block-time"`
	EnableVerifiableState    bool            `yaml:"enable-verifiable-state"`
	EnableVerifiableReceipts bool            `yaml:"enable-verifiable-receipts"`
}

type Pool struct {
	MaxSize        int `yaml:"max-size"`
	HashesMemoSize int `yaml:"hashes-memo-size"`
}

type Log struct {
	// Level is one of trace, debug, info, warn, error, crit.
	Level string `yaml:"level"`
	// Format is auto, json or logfmt. Auto picks logfmt on terminals.
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	opts := builtin.DefaultOptions()
	return &Config{
		Network: Network{Identifier: opts.Network.Identifier},
		Cache: Cache{
			DataDir:                "data",
			CacheSize:              256,
			OpenFilesCacheCapacity: 512,
		},
		Execution: Execution{
			MaxTransactionLifetime:   opts.MaxTransactionLifetime,
			MinFee:                   opts.MinFee,
			BlockReward:              opts.BlockReward,
			ImportanceGrouping:       opts.ImportanceGrouping,
			StatsRetention:           opts.StatsRetention,
			TotalImportance:          opts.TotalImportance,
			TargetBlockTime:          opts.TargetBlockTime,
			EnableVerifiableState:    opts.EnableVerifiableState,
			EnableVerifiableReceipts: opts.EnableVerifiableReceipts,
		},
		Pool: Pool{
			MaxSize:        1_000_000,
			HashesMemoSize: 32,
		},
		Throttle: txpool.DefaultThrottleConfig(),
		Log: Log{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads the file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot work together.
func (c *Config) Validate() error {
	if _, err := c.generationHashSeed(); err != nil {
		return errors.Wrap(err, "network.generation-hash-seed")
	}
	if _, err := c.NemesisBalances(); err != nil {
		return err
	}
	t := c.Throttle
	if t.MaxCacheSize == 0 || t.MaxBlockSize >= t.MaxCacheSize {
		return errors.New("throttle.max-block-size must be below throttle.max-cache-size")
	}
	if t.BoostCapPercent > 100 {
		return errors.New("throttle.boost-cap-percent above 100")
	}
	if c.Execution.TargetBlockTime == 0 {
		return errors.New("execution.target-block-time must be positive")
	}
	if c.Pool.HashesMemoSize <= 0 {
		return errors.New("pool.hashes-memo-size must be positive")
	}
	switch c.Log.Format {
	case "auto", "json", "logfmt":
	default:
		return errors.Errorf("log.format %q unknown", c.Log.Format)
	}
	return nil
}

func (c *Config) generationHashSeed() (thor.Bytes32, error) {
	if c.Network.GenerationHashSeed == "" {
		return thor.Bytes32{}, nil
	}
	return thor.ParseBytes32(c.Network.GenerationHashSeed)
}

// NemesisBalances parses the nemesis section.
func (c *Config) NemesisBalances() (map[thor.Address]thor.Amount, error) {
	balances := make(map[thor.Address]thor.Amount, len(c.Nemesis))
	for s, amount := range c.Nemesis {
		addr, err := thor.ParseAddress(s)
		if err != nil {
			return nil, errors.Wrapf(err, "nemesis address %s", s)
		}
		balances[addr] += amount
	}
	return balances, nil
}

// BuiltinOptions returns the options of the builtin plugin set.
func (c *Config) BuiltinOptions() builtin.Options {
	seed, _ := c.generationHashSeed()
	e := c.Execution
	return builtin.Options{
		Network: execution.Network{
			Identifier:         c.Network.Identifier,
			GenerationHashSeed: seed,
		},
		MaxTransactionLifetime:   e.MaxTransactionLifetime,
		MinFee:                   e.MinFee,
		BlockReward:              e.BlockReward,
		ImportanceGrouping:       e.ImportanceGrouping,
		StatsRetention:           e.StatsRetention,
		TotalImportance:          e.TotalImportance,
		TargetBlockTime:          e.TargetBlockTime,
		EnableVerifiableState:    e.EnableVerifiableState,
		EnableVerifiableReceipts: e.EnableVerifiableReceipts,
	}
}

// StorageOptions returns the leveldb options.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		CacheSize:              c.Cache.CacheSize,
		OpenFilesCacheCapacity: c.Cache.OpenFilesCacheCapacity,
	}
}
