// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

// Package engine implements the storage engines behind a kvstore server: the
// native log-structured engine (Store) and an alternate engine backed by an
// embedded bbolt database, both conforming to the Engine interface so a
// server can be parameterized over either.
package engine

// Engine is the polymorphic contract every storage backend must satisfy
// (spec §4.4). Implementations must be cheap to Clone and safe to share
// across goroutines: Clone must not duplicate state, only reference it.
type Engine interface {
	Set(key, value string) error
	Get(key string) (*string, error)
	Remove(key string) error
	Clone() Engine
	Close() error
}

// Name identifies which Engine implementation a data directory was written
// by, so the server can refuse to reopen a directory with a different one
// (spec §4.5, §8 S6).
type Name string

const (
	NameKVS  Name = "kvs"
	NameBolt Name = "bolt"
)
