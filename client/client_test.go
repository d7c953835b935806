// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package client

import (
	"bufio"
	"net"
	"testing"

	"github.com/dreamsxin/kvstore"
	"github.com/dreamsxin/kvstore/wire"
	"github.com/stretchr/testify/require"
)

// fakeServer answers exactly one request the way the real server's
// handler.go does, without depending on package server, so these tests
// exercise the client against a fixed response alone.
func fakeServer(t *testing.T, respond func(cmd kvstore.Command) kvstore.Response) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		cmd, err := wire.ReadRequest(bufio.NewReader(conn))
		if err != nil {
			return
		}
		_ = wire.WriteResponse(conn, respond(cmd))
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.CloseWrite()
		}
	}()
	return ln.Addr().String()
}

func TestClientSet(t *testing.T) {
	addr := fakeServer(t, func(cmd kvstore.Command) kvstore.Response {
		require.Equal(t, kvstore.CommandSet, cmd.Kind)
		require.Equal(t, "k", cmd.Key)
		require.Equal(t, "v", cmd.Value)
		return kvstore.SuccessSet()
	})
	require.NoError(t, Set(addr, "k", "v"))
}

func TestClientGetHit(t *testing.T) {
	v := "v"
	addr := fakeServer(t, func(cmd kvstore.Command) kvstore.Response {
		return kvstore.SuccessGet(&v)
	})
	got, err := Get(addr, "k")
	require.NoError(t, err)
	require.Equal(t, "v", *got)
}

func TestClientGetMiss(t *testing.T) {
	addr := fakeServer(t, func(cmd kvstore.Command) kvstore.Response {
		return kvstore.SuccessGet(nil)
	})
	got, err := Get(addr, "k")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestClientRemoveMissingKeyTranslatesError(t *testing.T) {
	addr := fakeServer(t, func(cmd kvstore.Command) kvstore.Response {
		return kvstore.FailKeyNotFound()
	})
	err := Remove(addr, "k")
	require.ErrorIs(t, err, kvstore.ErrKeyNotFound)
}
