// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

// Package wire implements the length-prefixed request framing and the
// self-describing text value encoding used on the kvstore TCP protocol. It
// is a small, hand-written codec specialized to Command and Response rather
// than a general-purpose serde: the wire format is fixed by the protocol
// (see spec §4.1 and §6), so there is no schema negotiation to generalize
// over.
package wire

import (
	"strconv"

	"github.com/dreamsxin/kvstore"
)

// cursor parses the value encoding from the front of a string, consuming as
// it goes. Every method returns a *kvstore.CodecError on malformed input; it
// never panics, matching the "total parser for well-formed input" contract.
type cursor struct {
	s string
}

func (c *cursor) codecErr(reason string) error {
	return kvstore.NewCodecError(reason)
}

func (c *cursor) eof() bool { return len(c.s) == 0 }

func (c *cursor) peekByte() (byte, error) {
	if c.eof() {
		return 0, c.codecErr("unexpected end of input")
	}
	return c.s[0], nil
}

func (c *cursor) expectByte(b byte) error {
	got, err := c.peekByte()
	if err != nil {
		return err
	}
	if got != b {
		return c.codecErr("expected '" + string(b) + "'")
	}
	c.s = c.s[1:]
	return nil
}

// readTerm reads up to (and consumes) the next comma, returning what
// preceded it. Used for length and count prefixes, which never themselves
// contain a comma.
func (c *cursor) readTerm() (string, error) {
	idx := -1
	for i := 0; i < len(c.s); i++ {
		if c.s[i] == ',' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", c.codecErr("missing ',' terminator")
	}
	term := c.s[:idx]
	c.s = c.s[idx+1:]
	return term, nil
}

func (c *cursor) readUint() (int, error) {
	term, err := c.readTerm()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(term)
	if err != nil || n < 0 {
		return 0, c.codecErr("expected a non-negative integer")
	}
	return n, nil
}

// readString reads a `'<N>,<N bytes>,` value.
func (c *cursor) readString() (string, error) {
	if err := c.expectByte('\''); err != nil {
		return "", err
	}
	n, err := c.readUint()
	if err != nil {
		return "", err
	}
	if len(c.s) < n+1 {
		return "", c.codecErr("string value runs past end of input")
	}
	data := c.s[:n]
	if c.s[n] != ',' {
		return "", c.codecErr("expected ',' after string value")
	}
	c.s = c.s[n+1:]
	return data, nil
}

func (c *cursor) readBool() (bool, error) {
	switch {
	case len(c.s) >= len("'4,true,") && c.s[:len("'4,true,")] == "'4,true,":
		c.s = c.s[len("'4,true,"):]
		return true, nil
	case len(c.s) >= len("'5,false,") && c.s[:len("'5,false,")] == "'5,false,":
		c.s = c.s[len("'5,false,"):]
		return false, nil
	default:
		return false, c.codecErr("expected bool")
	}
}

func (c *cursor) readUnit() error {
	if len(c.s) >= 3 && c.s[:3] == "=0," {
		c.s = c.s[3:]
		return nil
	}
	return c.codecErr("expected unit '=0,'")
}

// readVariantHeader reads an `=<1+N>,<name>,` variant tag and returns the
// variant name plus its payload arity N.
func (c *cursor) readVariantHeader() (name string, arity int, err error) {
	if err := c.expectByte('='); err != nil {
		return "", 0, err
	}
	count, err := c.readUint()
	if err != nil {
		return "", 0, err
	}
	if count < 1 {
		return "", 0, c.codecErr("variant tag count must be at least 1")
	}
	name, err = c.readString()
	if err != nil {
		return "", 0, err
	}
	return name, count - 1, nil
}

// readOptionString reads an Option<string>: nil means None.
func (c *cursor) readOptionString() (*string, error) {
	name, arity, err := c.readVariantHeader()
	if err != nil {
		return nil, err
	}
	switch name {
	case "None":
		if arity != 0 {
			return nil, c.codecErr("None takes no payload")
		}
		return nil, nil
	case "Some":
		if arity != 1 {
			return nil, c.codecErr("Some takes exactly one payload field")
		}
		inner, err := c.readString()
		if err != nil {
			return nil, err
		}
		return &inner, nil
	default:
		return nil, c.codecErr("expected option variant 'None' or 'Some', got " + name)
	}
}

// finish errors if there is trailing input left after a top-level parse.
func (c *cursor) finish() error {
	if !c.eof() {
		return c.codecErr("trailing characters after value")
	}
	return nil
}
