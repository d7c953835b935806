// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package wire

import "github.com/dreamsxin/kvstore"

// DecodeCommand parses a Command from its value encoding. It is a total
// parser for well-formed input and never panics on malformed input.
func DecodeCommand(payload string) (kvstore.Command, error) {
	c := &cursor{s: payload}
	name, arity, err := c.readVariantHeader()
	if err != nil {
		return kvstore.Command{}, err
	}

	var cmd kvstore.Command
	switch name {
	case "Set":
		if arity != 2 {
			return kvstore.Command{}, c.codecErr("Set expects 2 fields")
		}
		key, err := c.readString()
		if err != nil {
			return kvstore.Command{}, err
		}
		value, err := c.readString()
		if err != nil {
			return kvstore.Command{}, err
		}
		cmd = kvstore.NewSet(key, value)
	case "Get":
		if arity != 1 {
			return kvstore.Command{}, c.codecErr("Get expects 1 field")
		}
		key, err := c.readString()
		if err != nil {
			return kvstore.Command{}, err
		}
		cmd = kvstore.NewGet(key)
	case "Rm":
		if arity != 1 {
			return kvstore.Command{}, c.codecErr("Rm expects 1 field")
		}
		key, err := c.readString()
		if err != nil {
			return kvstore.Command{}, err
		}
		cmd = kvstore.NewRm(key)
	default:
		return kvstore.Command{}, c.codecErr("unknown command variant " + name)
	}

	if err := c.finish(); err != nil {
		return kvstore.Command{}, err
	}
	return cmd, nil
}

// DecodeResponse parses a Response from its value encoding.
func DecodeResponse(payload string) (kvstore.Response, error) {
	c := &cursor{s: payload}
	name, arity, err := c.readVariantHeader()
	if err != nil {
		return kvstore.Response{}, err
	}

	var resp kvstore.Response
	switch name {
	case "SuccessSet":
		if arity != 0 {
			return kvstore.Response{}, c.codecErr("SuccessSet takes no fields")
		}
		resp = kvstore.SuccessSet()
	case "SuccessGet":
		if arity != 1 {
			return kvstore.Response{}, c.codecErr("SuccessGet expects 1 field")
		}
		value, err := c.readOptionString()
		if err != nil {
			return kvstore.Response{}, err
		}
		resp = kvstore.SuccessGet(value)
	case "SuccessRm":
		if arity != 0 {
			return kvstore.Response{}, c.codecErr("SuccessRm takes no fields")
		}
		resp = kvstore.SuccessRm()
	case "Fail":
		if arity != 1 {
			return kvstore.Response{}, c.codecErr("Fail expects 1 field")
		}
		message, err := c.readString()
		if err != nil {
			return kvstore.Response{}, err
		}
		resp = kvstore.Fail(message)
	default:
		return kvstore.Response{}, c.codecErr("unknown response variant " + name)
	}

	if err := c.finish(); err != nil {
		return kvstore.Response{}, err
	}
	return resp, nil
}
