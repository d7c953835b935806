// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

// Package client implements the kvstore wire protocol from the caller's
// side: dial, send one framed Command, read one unframed Response, close
// (spec §5).
package client

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dreamsxin/kvstore"
	"github.com/dreamsxin/kvstore/wire"
)

// dialTimeout bounds how long Dial waits for a TCP handshake.
const dialTimeout = 5 * time.Second

// Client holds a connection to one kvstore server for exactly one request,
// matching the original kvs-client's connect-per-invocation usage.
type Client struct {
	conn net.Conn
}

// Dial connects to addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends cmd and waits for the server's Response.
func (c *Client) Do(cmd kvstore.Command) (kvstore.Response, error) {
	if err := wire.WriteRequest(c.conn, cmd); err != nil {
		return kvstore.Response{}, err
	}
	if tc, ok := c.conn.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
	}
	return wire.ReadResponse(c.conn)
}

// responseToError turns a Fail response into a Go error, recognizing the
// well-known "Key not found" message so callers can use errors.Is against
// kvstore.ErrKeyNotFound.
func responseToError(resp kvstore.Response) error {
	if resp.Kind != kvstore.ResponseFail {
		return nil
	}
	if resp.Message == kvstore.ErrKeyNotFound.Error() {
		return kvstore.ErrKeyNotFound
	}
	return errors.New(resp.Message)
}

// Set is a one-shot convenience wrapper around Dial+Do+Close for SET.
func Set(addr, key, value string) error {
	c, err := Dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	resp, err := c.Do(kvstore.NewSet(key, value))
	if err != nil {
		return err
	}
	if resp.Kind != kvstore.ResponseSuccessSet {
		return responseOrUnexpected(resp)
	}
	return nil
}

// Get is a one-shot convenience wrapper around Dial+Do+Close for GET. A
// missing key is reported as (nil, nil), never an error.
func Get(addr, key string) (*string, error) {
	c, err := Dial(addr)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	resp, err := c.Do(kvstore.NewGet(key))
	if err != nil {
		return nil, err
	}
	if resp.Kind != kvstore.ResponseSuccessGet {
		return nil, responseOrUnexpected(resp)
	}
	return resp.Value, nil
}

// Remove is a one-shot convenience wrapper around Dial+Do+Close for RM.
func Remove(addr, key string) error {
	c, err := Dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	resp, err := c.Do(kvstore.NewRm(key))
	if err != nil {
		return err
	}
	if resp.Kind != kvstore.ResponseSuccessRm {
		return responseOrUnexpected(resp)
	}
	return nil
}

func responseOrUnexpected(resp kvstore.Response) error {
	if err := responseToError(resp); err != nil {
		return err
	}
	return fmt.Errorf("unexpected response kind %s", resp.Kind)
}
