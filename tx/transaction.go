// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/statecore/thor"
)

// Type of a transaction.
type Type uint8

const (
	// TypeTransfer moves an amount from the signer to a recipient.
	TypeTransfer Type = iota + 1
	// TypeAggregateBonded carries cosignatures collected off-chain; such transactions
	// may be exempt from importance based throttling.
	TypeAggregateBonded
)

func (t Type) String() string {
	switch t {
	case TypeTransfer:
		return "transfer"
	case TypeAggregateBonded:
		return "aggregate-bonded"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Transaction is an immutable tx type.
type Transaction struct {
	body body

	cache struct {
		hash atomic.Pointer[thor.Bytes32]
		size atomic.Uint64
	}
}

// body describes details of a tx.
type body struct {
	Type      Type
	Signer    thor.Address
	Recipient thor.Address
	Amount    thor.Amount
	Fee       thor.Amount
	Deadline  thor.Timestamp
	Nonce     uint64
}

// Hash returns the entity hash of the tx.
func (t *Transaction) Hash() thor.Bytes32 {
	if cached := t.cache.hash.Load(); cached != nil {
		return *cached
	}

	h := thor.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, &t.body)
	})
	t.cache.hash.Store(&h)
	return h
}

// Type returns tx type.
func (t *Transaction) Type() Type { return t.body.Type }

// Signer returns the account that signed the tx.
func (t *Transaction) Signer() thor.Address { return t.body.Signer }

// Recipient returns the receiving account.
func (t *Transaction) Recipient() thor.Address { return t.body.Recipient }

// Amount returns the transferred amount.
func (t *Transaction) Amount() thor.Amount { return t.body.Amount }

// Fee returns the fee offered by the signer.
func (t *Transaction) Fee() thor.Amount { return t.body.Fee }

// Deadline returns the timestamp after which the tx can no longer be confirmed.
func (t *Transaction) Deadline() thor.Timestamp { return t.body.Deadline }

// Nonce returns nonce value.
func (t *Transaction) Nonce() uint64 { return t.body.Nonce }

// IsExpired returns whether the tx is expired at the given block time.
func (t *Transaction) IsExpired(blockTime thor.Timestamp) bool {
	return blockTime > t.body.Deadline
}

// Size returns size in bytes when RLP encoded.
func (t *Transaction) Size() uint64 {
	if cached := t.cache.size.Load(); cached != 0 {
		return cached
	}
	data, err := rlp.EncodeToBytes(&t.body)
	if err != nil {
		panic(err)
	}
	size := uint64(len(data))
	t.cache.size.Store(size)
	return size
}

// EncodeRLP implements rlp.Encoder
func (t *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &t.body)
}

// DecodeRLP implements rlp.Decoder
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	var body body
	if err := s.Decode(&body); err != nil {
		return err
	}
	t.body = body
	t.cache.hash.Store(nil)
	t.cache.size.Store(0)
	return nil
}

func (t *Transaction) String() string {
	return fmt.Sprintf(`Tx(%v)
	Type:		%v
	Signer:		%v
	Recipient:	%v
	Amount:		%v
	Fee:		%v
	Deadline:	%v
	Nonce:		%v`, t.Hash(), t.body.Type, t.body.Signer, t.body.Recipient,
		t.body.Amount, t.body.Fee, t.body.Deadline, t.body.Nonce)
}
