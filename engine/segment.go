// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/coreos/etcd/pkg/fileutil"
)

// segmentMax is the size, in bytes, past which a write rotates the active
// segment onto a new file (spec §4.3.2, SEGMENT_MAX).
const segmentMax = 1024 * 1024

// unusedLimit is the count of stale (overwritten or removed) records past
// which a compaction is triggered after a rotation (spec §4.3.2, UNUSED_LIMIT).
const unusedLimit = 1024

// segmentExt is the file extension used for on-disk log segments.
const segmentExt = ".log"

func segmentFileName(id uint64) string {
	return fmt.Sprintf("%09d%s", id, segmentExt)
}

func segmentPath(dir string, id uint64) string {
	return filepath.Join(dir, segmentFileName(id))
}

// sortedSegmentIDs lists, in ascending order, the generation numbers of
// every segment file present in dir.
func sortedSegmentIDs(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var ids []uint64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, segmentExt) {
			continue
		}
		idStr := strings.TrimSuffix(name, segmentExt)
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// openSegmentReadOnly opens an existing segment file for reads.
func openSegmentReadOnly(path string) (*os.File, error) {
	return os.Open(path)
}

// createSegment creates a brand new, empty segment file at path, preallocated
// to segmentMax bytes so subsequent writes avoid repeated filesystem extents.
func createSegment(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	if err := fileutil.Preallocate(f, segmentMax, true); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// openSegmentWritable reopens an existing segment (the most recent one found
// on disk at startup) for further appends.
func openSegmentWritable(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR, 0o644)
}

// ensureDataDir makes sure dir exists, creating it (and any parents) if not.
func ensureDataDir(dir string) error {
	return fileutil.TouchDirAll(dir)
}
