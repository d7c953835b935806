// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"os"
	"sync"

	"github.com/dreamsxin/kvstore"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
)

// writerState is the mutable, single-writer half of a Store: the currently
// active (appendable) segment and how many bytes have been committed to it.
// Every field here is only ever touched while holding Store.writeMu, keeping
// writer-owned state separate from the reader-visible index snapshot.
type writerState struct {
	activeID   uint64
	activeFile *os.File
	activeEnd  int64
}

// Store is the native log-structured Engine (spec §4). Reads are lock-free:
// they load an immutable index snapshot and read directly from the segment
// files it references. Writes are serialized through writeMu, append to the
// active segment, and publish a new index snapshot atomically.
type Store struct {
	dir     string
	idx     *indexHandle
	metrics *storeMetrics
	logger  log.Logger

	writeMu sync.Mutex
	ws      *writerState
	unused  int

	// lastWriteOffset is set by appendRecord and consumed immediately
	// afterwards by Set/Remove while still holding writeMu.
	lastWriteOffset int64
}

// Options configures Open.
type Options struct {
	Logger   log.Logger
	Registry prometheus.Registerer
}

// Open opens (creating if necessary) a log-structured store rooted at dir,
// replaying every segment file present to rebuild the in-memory index
// (spec §4.3.1, invariant I2).
func Open(dir string, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	if err := ensureDataDir(dir); err != nil {
		return nil, err
	}
	if err := checkAndWriteMarker(dir, NameKVS); err != nil {
		return nil, err
	}

	ids, err := sortedSegmentIDs(dir)
	if err != nil {
		return nil, err
	}

	s := &Store{
		dir:     dir,
		idx:     newIndexHandle(),
		metrics: newStoreMetrics(opts.Registry),
		logger:  logger,
	}

	var total int
	idx := newIndex()
	for _, id := range ids {
		path := segmentPath(dir, id)
		f, err := openSegmentReadOnly(path)
		if err != nil {
			return nil, err
		}
		entries, _, err := replaySegment(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			total++
			switch e.record.Kind {
			case kvstore.CommandSet.String():
				idx = idx.set(e.record.Key, indexEntry{segmentID: id, offset: e.offset})
			case kvstore.CommandRm.String():
				idx = idx.delete(e.record.Key)
			}
		}
	}
	s.idx.store(idx)
	s.unused = total - idx.len()

	var activeID uint64
	if len(ids) == 0 {
		activeID = 0
		f, err := createSegment(segmentPath(dir, activeID))
		if err != nil {
			return nil, err
		}
		s.ws = &writerState{activeID: activeID, activeFile: f, activeEnd: 0}
	} else {
		activeID = ids[len(ids)-1]
		path := segmentPath(dir, activeID)
		f, err := openSegmentWritable(path)
		if err != nil {
			return nil, err
		}
		// Writes below use WriteAt rather than the file's cursor, so reusing
		// f directly to replay (which advances that cursor) is harmless.
		_, end, err := replaySegment(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		s.ws = &writerState{activeID: activeID, activeFile: f, activeEnd: end}
	}

	segmentCount := len(ids)
	if segmentCount == 0 {
		segmentCount = 1
	}
	level.Info(logger).Log("msg", "store opened", "dir", dir, "segments", segmentCount, "keys", idx.len())
	return s, nil
}

// Set appends a Set record to the active segment and publishes a new index
// snapshot pointing at it (spec §4.3.1, invariant I1/I3).
func (s *Store) Set(key, value string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.appendRecord(recordFromCommand(kvstore.NewSet(key, value))); err != nil {
		return err
	}
	entry := indexEntry{segmentID: s.ws.activeID, offset: s.lastWriteOffset}

	old := s.idx.load()
	if _, existed := old.get(key); existed {
		s.unused++
	}
	s.idx.store(old.set(key, entry))
	s.metrics.sets.Inc()
	s.metrics.staleRecords.Set(float64(s.unused))

	return s.maybeRotateAndCompactLocked()
}

// Get reads the current value for key, if any, with no locking: it loads an
// immutable index snapshot and reads the segment file it references
// directly (spec §4.3.1 read path).
func (s *Store) Get(key string) (*string, error) {
	s.metrics.gets.Inc()
	idx := s.idx.load()
	entry, ok := idx.get(key)
	if !ok {
		return nil, nil
	}

	rec, err := readRecordAt(segmentPath(s.dir, entry.segmentID), entry.offset)
	if err != nil {
		return nil, err
	}
	if rec.Kind != kvstore.CommandSet.String() {
		return nil, kvstore.ErrLogInconsistent
	}
	s.metrics.bytesRead.Add(float64(len(rec.Key) + len(rec.Value)))
	v := rec.Value
	return &v, nil
}

// Remove appends a Rm record (so replay after a crash still observes the
// deletion) and drops key from the index snapshot.
func (s *Store) Remove(key string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	old := s.idx.load()
	if _, ok := old.get(key); !ok {
		return kvstore.ErrKeyNotFound
	}

	if err := s.appendRecord(recordFromCommand(kvstore.NewRm(key))); err != nil {
		return err
	}
	s.idx.store(old.delete(key))
	// The removed Set becomes stale.
	s.unused++
	s.metrics.removes.Inc()
	s.metrics.staleRecords.Set(float64(s.unused))

	return s.maybeRotateAndCompactLocked()
}

// appendRecord writes rec to the end of the active segment. Callers must
// hold writeMu.
func (s *Store) appendRecord(rec logRecord) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	n, err := s.ws.activeFile.WriteAt(data, s.ws.activeEnd)
	if err != nil {
		return err
	}
	s.lastWriteOffset = s.ws.activeEnd
	s.ws.activeEnd += int64(n)
	s.metrics.bytesWritten.Add(float64(n))
	return nil
}

// Clone returns an Engine handle sharing this Store's index, writer and
// metrics, matching the cheap, reference-sharing Clone semantics the kvs
// server relies on to hand one engine instance to every connection-handling
// task. Unlike the Rust original's Arc<Mutex<..>>, no wrapping is required:
// Store is already safe for concurrent use.
func (s *Store) Clone() Engine { return s }

// Close closes the active segment file.
func (s *Store) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.ws == nil || s.ws.activeFile == nil {
		return nil
	}
	return s.ws.activeFile.Close()
}
