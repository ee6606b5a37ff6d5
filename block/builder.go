// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/tx"
)

// Builder to make it easy to build a block object.
type Builder struct {
	headerBody headerBody
	txs        tx.Transactions
}

// FromHeader seeds the builder with all fields of an existing header.
func (b *Builder) FromHeader(h *Header) *Builder {
	b.headerBody = h.body
	return b
}

// Height set height.
func (b *Builder) Height(height thor.Height) *Builder {
	b.headerBody.Height = height
	return b
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(ts thor.Timestamp) *Builder {
	b.headerBody.Timestamp = ts
	return b
}

// PreviousHash set parent hash.
func (b *Builder) PreviousHash(hash thor.Bytes32) *Builder {
	b.headerBody.PreviousHash = hash
	return b
}

// Signer set the harvester.
func (b *Builder) Signer(signer thor.Address) *Builder {
	b.headerBody.Signer = signer
	return b
}

// Difficulty set difficulty.
func (b *Builder) Difficulty(difficulty uint64) *Builder {
	b.headerBody.Difficulty = difficulty
	return b
}

// StateHash set state hash.
func (b *Builder) StateHash(hash thor.Bytes32) *Builder {
	b.headerBody.StateHash = hash
	return b
}

// ReceiptsHash set receipts hash.
func (b *Builder) ReceiptsHash(hash thor.Bytes32) *Builder {
	b.headerBody.ReceiptsHash = hash
	return b
}

// Transaction add a transaction.
func (b *Builder) Transaction(trx *tx.Transaction) *Builder {
	b.txs = append(b.txs, trx)
	return b
}

// Build build a block object. The transactions hash is derived from the added transactions.
func (b *Builder) Build() *Block {
	header := Header{body: b.headerBody}
	header.body.TransactionsHash = b.txs.RootHash()

	return &Block{
		header: &header,
		txs:    b.txs.Copy(),
	}
}
