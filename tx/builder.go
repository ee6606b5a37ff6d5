// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import "github.com/vechain/statecore/thor"

// Builder to make it easy to build transaction.
type Builder struct {
	body body
}

// NewBuilder creates a builder for the given tx type.
func NewBuilder(typ Type) *Builder {
	return &Builder{body: body{Type: typ}}
}

// Signer sets the signing account.
func (b *Builder) Signer(signer thor.Address) *Builder {
	b.body.Signer = signer
	return b
}

// Recipient sets the receiving account.
func (b *Builder) Recipient(recipient thor.Address) *Builder {
	b.body.Recipient = recipient
	return b
}

// Amount sets the transferred amount.
func (b *Builder) Amount(amount thor.Amount) *Builder {
	b.body.Amount = amount
	return b
}

// Fee sets the offered fee.
func (b *Builder) Fee(fee thor.Amount) *Builder {
	b.body.Fee = fee
	return b
}

// Deadline sets the deadline.
func (b *Builder) Deadline(deadline thor.Timestamp) *Builder {
	b.body.Deadline = deadline
	return b
}

// Nonce set nonce.
func (b *Builder) Nonce(nonce uint64) *Builder {
	b.body.Nonce = nonce
	return b
}

// Build build tx object.
func (b *Builder) Build() *Transaction {
	return &Transaction{body: b.body}
}
