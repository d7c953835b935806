// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"os"
	"path/filepath"

	"github.com/coreos/etcd/pkg/fileutil"
	"github.com/dreamsxin/kvstore"
)

// markerFileName names the file a data directory uses to record which
// Engine implementation last wrote to it (spec §4.5, §8 S6). Supplements
// the original kvs-server's behavior of refusing to start against a data
// directory that was built by a different backend (there, inferred from
// which of `db.kvs`/`db.sled` exists).
const markerFileName = "ENGINE"

// checkAndWriteMarker reads dir's marker file, if any, and fails with
// kvstore.ErrEngineMismatch when it names a different engine than want. If
// dir has no marker yet (a brand new data directory), one is written.
func checkAndWriteMarker(dir string, want Name) error {
	path := filepath.Join(dir, markerFileName)

	if !fileutil.Exist(path) {
		return os.WriteFile(path, []byte(want), 0o644)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if Name(data) != want {
		return kvstore.ErrEngineMismatch
	}
	return nil
}
