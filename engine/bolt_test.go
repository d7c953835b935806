// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"testing"

	"github.com/dreamsxin/kvstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestBoltStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b, err := OpenBolt(dir, Options{Registry: prometheus.NewRegistry()})
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Set("key1", "value1"))
	v, err := b.Get("key1")
	require.NoError(t, err)
	require.Equal(t, "value1", *v)

	require.NoError(t, b.Remove("key1"))
	v, err = b.Get("key1")
	require.NoError(t, err)
	require.Nil(t, v)

	require.ErrorIs(t, b.Remove("key1"), kvstore.ErrKeyNotFound)
}
