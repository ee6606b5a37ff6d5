// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/tx"
)

// Element is a block annotated with data derived while processing it.
type Element struct {
	Block          *Block
	Hash           thor.Bytes32
	GenerationHash thor.Bytes32
	Transactions   tx.Infos

	// SubCacheMerkleRoots are filled in once the block has been executed successfully.
	SubCacheMerkleRoots []thor.Bytes32
}

// NewElement builds an element for blk, chaining the generation hash from the parent's.
func NewElement(blk *Block, parentGenerationHash thor.Bytes32) *Element {
	return &Element{
		Block:          blk,
		Hash:           blk.Hash(),
		GenerationHash: NextGenerationHash(parentGenerationHash, blk.Header().Signer()),
		Transactions:   blk.Transactions().Infos(),
	}
}

// Height shortcut to block height.
func (e *Element) Height() thor.Height {
	return e.Block.Header().Height()
}

// NextGenerationHash derives the generation hash of a child block.
func NextGenerationHash(parent thor.Bytes32, signer thor.Address) thor.Bytes32 {
	return thor.Sha3(parent[:], signer[:])
}
