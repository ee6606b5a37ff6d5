// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package basecache

import (
	"github.com/ethereum/go-ethereum/rlp"
)

// Codec converts keys and values to bytes for merkle leaves and storage.
// Encoded values must never be empty.
type Codec[K comparable, V any] interface {
	EncodeKey(key K) ([]byte, error)
	DecodeKey(data []byte) (K, error)
	EncodeValue(value V) ([]byte, error)
	DecodeValue(data []byte) (V, error)
}

// RLPCodec encodes both keys and values with rlp.
func RLPCodec[K comparable, V any]() Codec[K, V] {
	return rlpCodec[K, V]{}
}

type rlpCodec[K comparable, V any] struct{}

func (rlpCodec[K, V]) EncodeKey(key K) ([]byte, error) {
	return rlp.EncodeToBytes(key)
}

func (rlpCodec[K, V]) DecodeKey(data []byte) (key K, err error) {
	err = rlp.DecodeBytes(data, &key)
	return
}

func (rlpCodec[K, V]) EncodeValue(value V) ([]byte, error) {
	return rlp.EncodeToBytes(value)
}

func (rlpCodec[K, V]) DecodeValue(data []byte) (value V, err error) {
	err = rlp.DecodeBytes(data, &value)
	return
}
