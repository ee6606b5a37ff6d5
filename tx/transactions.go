// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import "github.com/vechain/statecore/thor"

// Transactions a slice of transactions.
type Transactions []*Transaction

// Copy returns a shallow copy.
func (txs Transactions) Copy() Transactions {
	return append(Transactions(nil), txs...)
}

// RootHash computes merkle root hash of transactions.
func (txs Transactions) RootHash() thor.Bytes32 {
	hashes := make([]thor.Bytes32, 0, len(txs))
	for _, trx := range txs {
		hashes = append(hashes, trx.Hash())
	}
	return thor.MerkleRoot(hashes)
}

// Infos wraps every tx into an Info.
func (txs Transactions) Infos() Infos {
	infos := make(Infos, 0, len(txs))
	for _, trx := range txs {
		infos = append(infos, NewInfo(trx))
	}
	return infos
}
