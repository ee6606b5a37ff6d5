// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"context"
	"encoding/binary"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vechain/statecore/basecache"
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/log"
	"github.com/vechain/statecore/thor"
)

var logger = log.WithContext("pkg", "storage")

const (
	entrySpace  = byte('e')
	heightSpace = byte('h')
)

// SubCacheStorage stores one basecache under its own key space.
// Values are encoded with the sub-cache codec and compressed with snappy.
type SubCacheStorage[K comparable, V any] struct {
	store  *Store
	handle basecache.Handle[K, V]
	base   *basecache.Cache[K, V]
	prefix []byte
}

var (
	_ cache.Storage        = (*SubCacheStorage[uint64, uint64])(nil)
	_ cache.ChangesStorage = (*SubCacheStorage[uint64, uint64])(nil)
)

// New creates the storage of a registered sub-cache.
func New[K comparable, V any](store *Store, handle basecache.Handle[K, V], base *basecache.Cache[K, V]) *SubCacheStorage[K, V] {
	return &SubCacheStorage[K, V]{
		store:  store,
		handle: handle,
		base:   base,
		prefix: append([]byte(base.Name()), 0),
	}
}

// Attach registers base with the builder and attaches its storage for both full saves and changes.
// The store also keeps the dependent state of the cache.
func Attach[K comparable, V any](b *cache.Builder, store *Store, base *basecache.Cache[K, V]) basecache.Handle[K, V] {
	h := basecache.Register(b, base)
	s := New(store, h, base)
	b.AttachStorage(s, s)
	b.AttachStateStorage(store)
	return h
}

func (s *SubCacheStorage[K, V]) Name() string { return s.base.Name() }

func (s *SubCacheStorage[K, V]) key(space byte, suffix []byte) []byte {
	k := make([]byte, 0, len(s.prefix)+1+len(suffix))
	k = append(k, s.prefix...)
	k = append(k, space)
	return append(k, suffix...)
}

func (s *SubCacheStorage[K, V]) encode(key K, value V) ([]byte, []byte, error) {
	codec := s.base.Codec()
	k, err := codec.EncodeKey(key)
	if err != nil {
		return nil, nil, errors.Wrap(err, "encode key")
	}
	v, err := codec.EncodeValue(value)
	if err != nil {
		return nil, nil, errors.Wrap(err, "encode value")
	}
	return s.key(entrySpace, k), snappy.Encode(nil, v), nil
}

func (s *SubCacheStorage[K, V]) putHeight(batch *leveldb.Batch, height thor.Height) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(height))
	batch.Put(s.key(heightSpace, nil), buf[:])
}

// SaveAll replaces the stored entries with those visible through view.
func (s *SubCacheStorage[K, V]) SaveAll(ctx context.Context, view *cache.View) error {
	batch := new(leveldb.Batch)

	it := s.store.db.NewIterator(util.BytesPrefix(s.key(entrySpace, nil)), readOpt)
	for it.Next() {
		batch.Delete(append([]byte(nil), it.Key()...))
	}
	it.Release()
	if err := it.Error(); err != nil {
		return errors.Wrap(err, "iterate entries")
	}

	var err error
	cache.ViewOf(view, s.handle).ForEach(func(key K, value V) bool {
		var k, v []byte
		if k, v, err = s.encode(key, value); err != nil {
			return false
		}
		batch.Put(k, v)
		return ctx.Err() == nil
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.putHeight(batch, view.Height())

	if err := s.store.db.Write(batch, writeOpt); err != nil {
		return errors.Wrap(err, "write batch")
	}
	logger.Debug("sub-cache saved", "name", s.Name(), "height", view.Height(), "ops", batch.Len())
	return nil
}

// LoadAll fills the committed sub-cache from the store.
func (s *SubCacheStorage[K, V]) LoadAll(ctx context.Context) (thor.Height, error) {
	var height thor.Height
	switch data, err := s.store.db.Get(s.key(heightSpace, nil), readOpt); {
	case err == leveldb.ErrNotFound:
	case err != nil:
		return 0, errors.Wrap(err, "get height")
	case len(data) != 8:
		return 0, errors.Errorf("malformed height of %v", s.Name())
	default:
		height = thor.Height(binary.BigEndian.Uint64(data))
	}

	codec := s.base.Codec()
	entries := make(map[K]V)
	entryPrefix := s.key(entrySpace, nil)
	it := s.store.db.NewIterator(util.BytesPrefix(entryPrefix), readOpt)
	defer it.Release()
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		key, err := codec.DecodeKey(it.Key()[len(entryPrefix):])
		if err != nil {
			return 0, errors.Wrap(err, "decode key")
		}
		raw, err := snappy.Decode(nil, it.Value())
		if err != nil {
			return 0, errors.Wrap(err, "decompress value")
		}
		value, err := codec.DecodeValue(raw)
		if err != nil {
			return 0, errors.Wrap(err, "decode value")
		}
		entries[key] = value
	}
	if err := it.Error(); err != nil {
		return 0, errors.Wrap(err, "iterate entries")
	}

	s.base.Replace(entries)
	logger.Debug("sub-cache loaded", "name", s.Name(), "height", height, "entries", len(entries))
	return height, nil
}

// SaveChanges writes the net changes of the sub-cache delta in one batch.
func (s *SubCacheStorage[K, V]) SaveChanges(ctx context.Context, delta *cache.Delta, height thor.Height) error {
	upserts, removed := cache.DeltaOf(delta, s.handle).Changes()

	batch := new(leveldb.Batch)
	for key, value := range upserts {
		k, v, err := s.encode(key, value)
		if err != nil {
			return err
		}
		batch.Put(k, v)
	}
	codec := s.base.Codec()
	for _, key := range removed {
		k, err := codec.EncodeKey(key)
		if err != nil {
			return errors.Wrap(err, "encode key")
		}
		batch.Delete(s.key(entrySpace, k))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.putHeight(batch, height)
	return errors.Wrap(s.store.db.Write(batch, writeOpt), "write batch")
}
