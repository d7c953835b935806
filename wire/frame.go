// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package wire

import (
	"bufio"
	"io"
	"strconv"

	"github.com/dreamsxin/kvstore"
)

// WriteRequest frames cmd as `<decimal length>#<payload>` and writes it to w.
func WriteRequest(w io.Writer, cmd kvstore.Command) error {
	payload := EncodeCommand(cmd)
	_, err := io.WriteString(w, strconv.Itoa(len(payload))+"#"+payload)
	return err
}

// ReadRequest reads one length-prefixed frame from r and decodes it into a
// Command. r must be buffered so the '#' delimiter and the fixed-length
// payload that follows can both be read without over-reading the socket.
func ReadRequest(r *bufio.Reader) (kvstore.Command, error) {
	lenBytes, err := r.ReadBytes('#')
	if err != nil {
		return kvstore.Command{}, err
	}
	lenStr := lenBytes[:len(lenBytes)-1]
	n, err := strconv.Atoi(string(lenStr))
	if err != nil || n < 0 {
		return kvstore.Command{}, kvstore.NewCodecError("invalid frame length prefix")
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return kvstore.Command{}, err
	}
	return DecodeCommand(string(payload))
}

// WriteResponse writes resp's encoded payload with no length prefix; the
// caller is responsible for half-closing the write side afterwards so the
// reader can detect the end of the message via EOF.
func WriteResponse(w io.Writer, resp kvstore.Response) error {
	_, err := io.WriteString(w, EncodeResponse(resp))
	return err
}

// ReadResponse reads r to EOF and decodes the result as a Response.
func ReadResponse(r io.Reader) (kvstore.Response, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return kvstore.Response{}, err
	}
	return DecodeResponse(string(data))
}
