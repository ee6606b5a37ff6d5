// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

// MerkleRoot computes the SHA3-256 merkle root of the given hashes.
// An odd hash at any level is paired with itself. Empty input yields the zero hash.
func MerkleRoot(hashes []Bytes32) Bytes32 {
	if len(hashes) == 0 {
		return Bytes32{}
	}

	level := append([]Bytes32(nil), hashes...)
	for len(level) > 1 {
		next := level[:0]
		for i := 0; i < len(level); i += 2 {
			right := level[i]
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, Sha3(level[i][:], right[:]))
		}
		level = next
	}
	return level[0]
}
