// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import "github.com/vechain/statecore/thor"

// Info couples a tx with its entity hash and the hash used when building merkle trees.
// The mempool owns an Info once added; execution receives copies.
type Info struct {
	Tx                  *Transaction
	Hash                thor.Bytes32
	MerkleComponentHash thor.Bytes32
}

// NewInfo builds an Info for the given tx.
func NewInfo(trx *Transaction) Info {
	hash := trx.Hash()
	return Info{
		Tx:                  trx,
		Hash:                hash,
		MerkleComponentHash: hash,
	}
}

// Infos a slice of tx infos.
type Infos []Info

// Copy returns a shallow copy. Transactions are immutable so they are shared.
func (infos Infos) Copy() Infos {
	return append(Infos(nil), infos...)
}

// Transactions extracts the transactions.
func (infos Infos) Transactions() Transactions {
	txs := make(Transactions, 0, len(infos))
	for _, info := range infos {
		txs = append(txs, info.Tx)
	}
	return txs
}

// Hashes extracts the entity hashes.
func (infos Infos) Hashes() []thor.Bytes32 {
	hashes := make([]thor.Bytes32, 0, len(infos))
	for _, info := range infos {
		hashes = append(hashes, info.Hash)
	}
	return hashes
}
