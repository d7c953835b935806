// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"sync/atomic"

	"github.com/benbjohnson/immutable"
)

// indexEntry points at the most recent Set record for a key: which segment
// it lives in and the byte offset that record starts at.
type indexEntry struct {
	segmentID uint64
	offset    int64
}

// index is an immutable, persistent map from key to indexEntry. A new
// version is produced on every mutation (Set/Remove/compact) and published
// through an atomic.Value so that readers can load a consistent snapshot
// without taking a lock. Go's garbage collector reclaims superseded
// snapshots once the last reader holding a reference drops it, so no
// explicit reference counting is needed.
type index struct {
	m *immutable.SortedMap[string, indexEntry]
}

func newIndex() *index {
	return &index{m: &immutable.SortedMap[string, indexEntry]{}}
}

func (i *index) get(key string) (indexEntry, bool) {
	return i.m.Get(key)
}

func (i *index) set(key string, e indexEntry) *index {
	b := i.m.Set(key, e)
	return &index{m: b}
}

func (i *index) delete(key string) *index {
	b := i.m.Delete(key)
	return &index{m: b}
}

func (i *index) len() int {
	return i.m.Len()
}

func (i *index) iterate(fn func(key string, e indexEntry) bool) {
	itr := i.m.Iterator()
	itr.First()
	for !itr.Done() {
		k, v, ok := itr.Next()
		if !ok {
			break
		}
		if !fn(k, v) {
			return
		}
	}
}

// indexHandle is the atomically-published pointer to the current *index.
type indexHandle struct {
	v atomic.Value
}

func newIndexHandle() *indexHandle {
	h := &indexHandle{}
	h.v.Store(newIndex())
	return h
}

func (h *indexHandle) load() *index {
	return h.v.Load().(*index)
}

func (h *indexHandle) store(i *index) {
	h.v.Store(i)
}
