// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/statecore/thor"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	opts := cfg.BuiltinOptions()
	assert.Equal(t, cfg.Execution.TotalImportance, opts.TotalImportance)
	assert.True(t, opts.Network.GenerationHashSeed.IsZero())
	assert.Equal(t, 256, cfg.StorageOptions().CacheSize)
}

func TestParse(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
network:
  identifier: 152
  generation-hash-seed: "0x0000000000000000000000000000000000000000000000000000000000000001"
throttle:
  max-block-size: 120
  max-cache-size: 1200
execution:
  min-fee: 5
log:
  format: json
nemesis:
  "0x00000000000000000000000000000000000000a1": 1000
`))
	require.NoError(t, err)

	assert.Equal(t, uint8(152), cfg.Network.Identifier)
	assert.Equal(t, uint64(120), cfg.Throttle.MaxBlockSize)
	assert.Equal(t, uint64(1200), cfg.Throttle.MaxCacheSize)
	// untouched keys keep their defaults
	assert.Equal(t, Default().Throttle.DecayRate, cfg.Throttle.DecayRate)
	assert.Equal(t, thor.Amount(5), cfg.BuiltinOptions().MinFee)
	assert.Equal(t, thor.Bytes32{31: 1}, cfg.BuiltinOptions().Network.GenerationHashSeed)

	balances, err := cfg.NemesisBalances()
	require.NoError(t, err)
	assert.Equal(t, map[thor.Address]thor.Amount{{19: 0xa1}: 1000}, balances)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "bogus: 1"},
		{"bad seed", "network:\n  generation-hash-seed: nope"},
		{"bad nemesis", "nemesis:\n  nope: 1"},
		{"block above cache", "throttle:\n  max-block-size: 2000\n  max-cache-size: 1000"},
		{"boost cap", "throttle:\n  boost-cap-percent: 101"},
		{"log format", "log:\n  format: xml"},
		{"memo size", "pool:\n  hashes-memo-size: 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool:\n  max-size: 10\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Pool.MaxSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
