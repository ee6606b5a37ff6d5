// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/tx"
)

func newTx(nonce uint64) *tx.Transaction {
	return tx.NewBuilder(tx.TypeTransfer).
		Signer(thor.BytesToAddress([]byte("alice"))).
		Recipient(thor.BytesToAddress([]byte("bob"))).
		Amount(100).
		Fee(10).
		Deadline(1000).
		Nonce(nonce).
		Build()
}

func TestTransactionHash(t *testing.T) {
	a := newTx(1)
	assert.Equal(t, a.Hash(), newTx(1).Hash())
	assert.NotEqual(t, a.Hash(), newTx(2).Hash())

	data, err := rlp.EncodeToBytes(a)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(data)), a.Size())

	var decoded tx.Transaction
	require.NoError(t, rlp.DecodeBytes(data, &decoded))
	assert.Equal(t, a.Hash(), decoded.Hash())
	assert.Equal(t, a.Signer(), decoded.Signer())
	assert.Equal(t, tx.TypeTransfer, decoded.Type())
}

func TestTransactionExpiry(t *testing.T) {
	trx := newTx(1)
	assert.False(t, trx.IsExpired(999))
	assert.False(t, trx.IsExpired(1000))
	assert.True(t, trx.IsExpired(1001))
}

func TestInfos(t *testing.T) {
	txs := tx.Transactions{newTx(1), newTx(2), newTx(3)}
	infos := txs.Infos()

	require.Len(t, infos, 3)
	assert.Equal(t, txs[1].Hash(), infos[1].Hash)
	assert.Equal(t, []thor.Bytes32{txs[0].Hash(), txs[1].Hash(), txs[2].Hash()}, infos.Hashes())
	assert.Equal(t, txs, infos.Transactions())

	cpy := infos.Copy()
	cpy[0] = tx.NewInfo(newTx(9))
	assert.Equal(t, txs[0].Hash(), infos[0].Hash)

	assert.Equal(t, thor.MerkleRoot(infos.Hashes()), txs.RootHash())
	assert.True(t, tx.Transactions{}.RootHash().IsZero())
}
