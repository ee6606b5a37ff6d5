// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/statecore/thor"
)

// Header contains almost all information about a block, except block body.
// It's immutable.
type Header struct {
	body headerBody

	cache struct {
		hash atomic.Pointer[thor.Bytes32]
	}
}

// headerBody body of header
type headerBody struct {
	Height       thor.Height
	Timestamp    thor.Timestamp
	PreviousHash thor.Bytes32
	Signer       thor.Address
	Difficulty   uint64

	TransactionsHash thor.Bytes32
	ReceiptsHash     thor.Bytes32
	StateHash        thor.Bytes32
}

// Height returns the height of this block.
func (h *Header) Height() thor.Height { return h.body.Height }

// Timestamp returns timestamp of this block.
func (h *Header) Timestamp() thor.Timestamp { return h.body.Timestamp }

// PreviousHash returns hash of the parent block.
func (h *Header) PreviousHash() thor.Bytes32 { return h.body.PreviousHash }

// Signer returns the harvester of this block.
func (h *Header) Signer() thor.Address { return h.body.Signer }

// Difficulty returns the difficulty of this block.
func (h *Header) Difficulty() uint64 { return h.body.Difficulty }

// TransactionsHash returns merkle root of txs contained in this block.
func (h *Header) TransactionsHash() thor.Bytes32 { return h.body.TransactionsHash }

// ReceiptsHash returns merkle root of receipts emitted while executing this block.
func (h *Header) ReceiptsHash() thor.Bytes32 { return h.body.ReceiptsHash }

// StateHash returns the aggregate state hash after executing this block.
func (h *Header) StateHash() thor.Bytes32 { return h.body.StateHash }

// Hash computes hash of header.
func (h *Header) Hash() thor.Bytes32 {
	if cached := h.cache.hash.Load(); cached != nil {
		return *cached
	}
	hash := thor.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, &h.body)
	})
	h.cache.hash.Store(&hash)
	return hash
}

// EncodeRLP implements rlp.Encoder
func (h *Header) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &h.body)
}

// DecodeRLP implements rlp.Decoder.
func (h *Header) DecodeRLP(s *rlp.Stream) error {
	var body headerBody
	if err := s.Decode(&body); err != nil {
		return err
	}
	h.body = body
	h.cache.hash.Store(nil)
	return nil
}

func (h *Header) String() string {
	return fmt.Sprintf(`Header(%v):
	Height:			%v
	Timestamp:		%v
	PreviousHash:		%v
	Signer:			%v
	Difficulty:		%v
	TransactionsHash:	%v
	ReceiptsHash:		%v
	StateHash:		%v`, h.Hash(), h.body.Height, h.body.Timestamp, h.body.PreviousHash,
		h.body.Signer, h.body.Difficulty, h.body.TransactionsHash, h.body.ReceiptsHash, h.body.StateHash)
}
