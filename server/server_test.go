// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package server

import (
	"net"
	"testing"

	"github.com/dreamsxin/kvstore"
	"github.com/dreamsxin/kvstore/client"
	"github.com/dreamsxin/kvstore/engine"
	"github.com/dreamsxin/kvstore/threadpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) net.Addr {
	t.Helper()
	eng, err := engine.Open(t.TempDir(), engine.Options{Registry: prometheus.NewRegistry()})
	require.NoError(t, err)

	pool, err := threadpool.New(threadpool.KindSharedQueue, 4, nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(ln, Config{Engine: eng, Pool: pool, Registry: prometheus.NewRegistry()})
	go srv.Serve()
	t.Cleanup(func() {
		srv.Close()
		eng.Close()
	})
	return ln.Addr()
}

func TestServerSetGetRemove(t *testing.T) {
	addr := startTestServer(t)

	require.NoError(t, client.Set(addr.String(), "key1", "value1"))

	v, err := client.Get(addr.String(), "key1")
	require.NoError(t, err)
	require.NotNil(t, v)
	require.Equal(t, "value1", *v)

	require.NoError(t, client.Remove(addr.String(), "key1"))

	v, err = client.Get(addr.String(), "key1")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestServerGetMissingKey(t *testing.T) {
	addr := startTestServer(t)

	v, err := client.Get(addr.String(), "nope")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestServerRemoveMissingKeyFails(t *testing.T) {
	addr := startTestServer(t)

	err := client.Remove(addr.String(), "nope")
	require.ErrorIs(t, err, kvstore.ErrKeyNotFound)
}

func TestServerRunNStopsAfterCap(t *testing.T) {
	eng, err := engine.Open(t.TempDir(), engine.Options{Registry: prometheus.NewRegistry()})
	require.NoError(t, err)
	defer eng.Close()

	pool, err := threadpool.New(threadpool.KindSharedQueue, 2, nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(ln, Config{Engine: eng, Pool: pool, Registry: prometheus.NewRegistry()})
	done := make(chan error, 1)
	go func() { done <- srv.RunN(1) }()

	require.NoError(t, client.Set(ln.Addr().String(), "key1", "value1"))
	require.NoError(t, <-done)

	srv.Close()
}

func TestServerHandlesManyConcurrentClients(t *testing.T) {
	addr := startTestServer(t)

	const n = 50
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			key := "key"
			errs <- client.Set(addr.String(), key, "value")
		}(i)
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}
}
