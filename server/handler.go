// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package server

import (
	"bufio"
	"net"
	"time"

	"github.com/dreamsxin/kvstore"
	"github.com/dreamsxin/kvstore/wire"
	"github.com/go-kit/log/level"
)

// handleConn reads exactly one length-prefixed request, executes it against
// a cloned Engine handle, writes back one unframed response, then closes
// the connection and half-closes the write side first so ReadResponse's
// read-to-EOF framing on the client side terminates (spec §5).
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	start := time.Now()

	eng := s.eng.Clone()
	r := bufio.NewReader(conn)

	cmd, err := wire.ReadRequest(r)
	if err != nil {
		s.metrics.requestErrors.Inc()
		level.Warn(s.logger).Log("msg", "failed to read request", "remote", conn.RemoteAddr(), "err", err)
		return
	}

	resp, err := s.execute(eng, cmd)
	if err != nil {
		s.metrics.requestErrors.Inc()
		level.Warn(s.logger).Log("msg", "command failed, dropping connection", "remote", conn.RemoteAddr(), "err", err)
		return
	}

	if err := wire.WriteResponse(conn, resp); err != nil {
		s.metrics.requestErrors.Inc()
		level.Warn(s.logger).Log("msg", "failed to write response", "remote", conn.RemoteAddr(), "err", err)
		return
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
	}

	s.metrics.requestsHandled.Inc()
	s.metrics.recordLatency(time.Since(start))
}

// execute runs cmd against eng and translates the result into a Response.
// Per the propagation policy (spec §7, §4.5 step 3), only Rm's
// KeyNotFound is a protocol-level failure reported to the client as
// Response.Fail; every other engine error is returned to the caller so
// handleConn can drop the connection without writing a response, matching
// the original kvs server's process_command, where `?` propagates any
// non-KeyNotFound error out of the request-handling closure and the caller
// drops the stream instead of answering it.
func (s *Server) execute(eng interface {
	Set(key, value string) error
	Get(key string) (*string, error)
	Remove(key string) error
}, cmd kvstore.Command) (kvstore.Response, error) {
	switch cmd.Kind {
	case kvstore.CommandSet:
		if err := eng.Set(cmd.Key, cmd.Value); err != nil {
			return kvstore.Response{}, err
		}
		return kvstore.SuccessSet(), nil

	case kvstore.CommandGet:
		v, err := eng.Get(cmd.Key)
		if err != nil {
			return kvstore.Response{}, err
		}
		return kvstore.SuccessGet(v), nil

	case kvstore.CommandRm:
		if err := eng.Remove(cmd.Key); err != nil {
			if err == kvstore.ErrKeyNotFound {
				return kvstore.FailKeyNotFound(), nil
			}
			return kvstore.Response{}, err
		}
		return kvstore.SuccessRm(), nil

	default:
		return kvstore.Response{}, kvstore.NewCodecError("unknown command kind")
	}
}
