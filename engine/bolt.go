// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"path/filepath"
	"time"

	"github.com/dreamsxin/kvstore"
	"github.com/go-kit/log"
	bolt "go.etcd.io/bbolt"
)

// bucketName is the single bbolt bucket BoltStore keeps all keys in.
var bucketName = []byte("kv")

// BoltStore is the alternate Engine implementation (spec §4.4), standing in
// for the sled-backed engine from the original kvs course: an embedded,
// transactional B+Tree database rather than a hand-rolled log. It exists so
// a server can be benchmarked or operated against a different durability
// strategy without changing any wire-level behavior.
type BoltStore struct {
	db     *bolt.DB
	logger log.Logger
}

// OpenBolt opens (creating if necessary) a bbolt-backed store rooted at dir.
func OpenBolt(dir string, opts Options) (*BoltStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	if err := ensureDataDir(dir); err != nil {
		return nil, err
	}
	if err := checkAndWriteMarker(dir, NameBolt); err != nil {
		return nil, err
	}

	db, err := bolt.Open(filepath.Join(dir, "kvstore.bolt"), 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, logger: logger}, nil
}

// Set writes key/value in a single bbolt transaction.
func (b *BoltStore) Set(key, value string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
}

// Get reads the value for key, returning (nil, nil) on a miss.
func (b *BoltStore) Get(key string) (*string, error) {
	var value *string
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return nil
		}
		s := string(v)
		value = &s
		return nil
	})
	return value, err
}

// Remove deletes key, returning kvstore.ErrKeyNotFound if it was absent.
func (b *BoltStore) Remove(key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketName)
		if bkt.Get([]byte(key)) == nil {
			return kvstore.ErrKeyNotFound
		}
		return bkt.Delete([]byte(key))
	})
}

// Clone returns b itself: *bolt.DB is already safe for concurrent use by
// multiple goroutines.
func (b *BoltStore) Clone() Engine { return b }

// Close closes the underlying bbolt database file.
func (b *BoltStore) Close() error {
	return b.db.Close()
}
