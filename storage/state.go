// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"context"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/thor"
)

// stateKey lies outside every sub-cache key space, which starts with the sub-cache name.
var stateKey = []byte("\x00dependent-state")

type storedState struct {
	Height                  thor.Height
	LastRecalculationHeight thor.Height
	LastFinalizedHeight     thor.Height
	NumTotalTransactions    uint64
}

var _ cache.StateStorage = (*Store)(nil)

// SaveState writes the dependent state of the cache at height.
func (s *Store) SaveState(ctx context.Context, state cache.DependentState, height thor.Height) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := rlp.EncodeToBytes(&storedState{
		Height:                  height,
		LastRecalculationHeight: state.LastRecalculationHeight,
		LastFinalizedHeight:     state.LastFinalizedHeight,
		NumTotalTransactions:    state.NumTotalTransactions,
	})
	if err != nil {
		return errors.Wrap(err, "encode dependent state")
	}
	return errors.Wrap(s.db.Put(stateKey, data, writeOpt), "put dependent state")
}

// LoadState reads the dependent state saved last.
func (s *Store) LoadState(ctx context.Context) (cache.DependentState, thor.Height, bool, error) {
	if err := ctx.Err(); err != nil {
		return cache.DependentState{}, 0, false, err
	}
	data, err := s.db.Get(stateKey, readOpt)
	if err == leveldb.ErrNotFound {
		return cache.DependentState{}, 0, false, nil
	}
	if err != nil {
		return cache.DependentState{}, 0, false, errors.Wrap(err, "get dependent state")
	}
	var stored storedState
	if err := rlp.DecodeBytes(data, &stored); err != nil {
		return cache.DependentState{}, 0, false, errors.Wrap(err, "decode dependent state")
	}
	return cache.DependentState{
		LastRecalculationHeight: stored.LastRecalculationHeight,
		LastFinalizedHeight:     stored.LastFinalizedHeight,
		NumTotalTransactions:    stored.NumTotalTransactions,
	}, stored.Height, true, nil
}
