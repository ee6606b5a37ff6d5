// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage persists basecache sub-caches in leveldb.
package storage

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	lvlstorage "github.com/syndtr/goleveldb/leveldb/storage"
)

var (
	writeOpt = &opt.WriteOptions{}
	readOpt  = &opt.ReadOptions{}
)

// Options tune the underlying leveldb.
type Options struct {
	// CacheSize in MiB.
	CacheSize              int
	OpenFilesCacheCapacity int
}

// Store is a leveldb instance shared by the storages of all sub-caches.
type Store struct {
	db  *leveldb.DB
	stg lvlstorage.Storage
}

func open(stg lvlstorage.Storage, options Options) (*Store, error) {
	if options.CacheSize < 16 {
		options.CacheSize = 16
	}
	if options.OpenFilesCacheCapacity < 64 {
		options.OpenFilesCacheCapacity = 64
	}

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: options.OpenFilesCacheCapacity,
		BlockCacheCapacity:     options.CacheSize / 2 * opt.MiB,
		WriteBuffer:            options.CacheSize / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		stg.Close()
		return nil, errors.Wrap(err, "open level db")
	}
	return &Store{db, stg}, nil
}

// Open opens or creates a persistent store at path.
func Open(path string, options Options) (*Store, error) {
	stg, err := lvlstorage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "open storage dir")
	}
	return open(stg, options)
}

// OpenMem creates a store living in memory.
func OpenMem() (*Store, error) {
	return open(lvlstorage.NewMemStorage(), Options{})
}

// Close closes the store and releases the directory lock.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		s.stg.Close()
		return err
	}
	return s.stg.Close()
}
