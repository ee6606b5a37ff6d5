// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package execution

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/statecore/thor"
)

// ReceiptType classifies receipts.
type ReceiptType uint16

// Receipt records a side effect of execution that is not visible in the entity itself.
type Receipt struct {
	Type    ReceiptType
	// Source is the 1-based position of the producing entity within its block.
	Source  uint32
	Account thor.Address
	Amount  thor.Amount
}

// Hash returns the sha3 hash of the rlp encoded receipt.
func (r *Receipt) Hash() thor.Bytes32 {
	return thor.Sha3Fn(func(w io.Writer) {
		rlp.Encode(w, r)
	})
}

// ReceiptBuilder collects the receipts of one block.
type ReceiptBuilder struct {
	source   uint32
	receipts []Receipt
}

// NewReceiptBuilder creates an empty builder.
func NewReceiptBuilder() *ReceiptBuilder {
	return &ReceiptBuilder{}
}

// SetSource sets the source stamped on receipts added afterwards.
func (b *ReceiptBuilder) SetSource(source uint32) { b.source = source }

// Add appends r, stamping it with the current source.
func (b *ReceiptBuilder) Add(r Receipt) {
	r.Source = b.source
	b.receipts = append(b.receipts, r)
}

// Len returns the number of receipts.
func (b *ReceiptBuilder) Len() int { return len(b.receipts) }

// Truncate drops receipts added after the builder had n of them.
func (b *ReceiptBuilder) Truncate(n int) {
	if n < len(b.receipts) {
		b.receipts = b.receipts[:n]
	}
}

// Receipts returns a copy of the receipts.
func (b *ReceiptBuilder) Receipts() []Receipt {
	return append([]Receipt(nil), b.receipts...)
}

// Hash returns the merkle root of the receipt hashes, zero when there is none.
func (b *ReceiptBuilder) Hash() thor.Bytes32 {
	hashes := make([]thor.Bytes32, 0, len(b.receipts))
	for i := range b.receipts {
		hashes = append(hashes, b.receipts[i].Hash())
	}
	return thor.MerkleRoot(hashes)
}
