// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package wire

import (
	"strconv"
	"strings"

	"github.com/dreamsxin/kvstore"
)

func writeString(sb *strings.Builder, s string) {
	sb.WriteByte('\'')
	sb.WriteString(strconv.Itoa(len(s)))
	sb.WriteByte(',')
	sb.WriteString(s)
	sb.WriteByte(',')
}

func writeVariantTag(sb *strings.Builder, name string, arity int) {
	sb.WriteByte('=')
	sb.WriteString(strconv.Itoa(1 + arity))
	sb.WriteByte(',')
	writeString(sb, name)
}

func writeOptionString(sb *strings.Builder, v *string) {
	if v == nil {
		writeVariantTag(sb, "None", 0)
		return
	}
	writeVariantTag(sb, "Some", 1)
	writeString(sb, *v)
}

// EncodeCommand renders a Command using the value encoding described in
// spec §4.1: an enum variant tag followed by its fields in order.
func EncodeCommand(cmd kvstore.Command) string {
	var sb strings.Builder
	switch cmd.Kind {
	case kvstore.CommandSet:
		writeVariantTag(&sb, "Set", 2)
		writeString(&sb, cmd.Key)
		writeString(&sb, cmd.Value)
	case kvstore.CommandGet:
		writeVariantTag(&sb, "Get", 1)
		writeString(&sb, cmd.Key)
	case kvstore.CommandRm:
		writeVariantTag(&sb, "Rm", 1)
		writeString(&sb, cmd.Key)
	}
	return sb.String()
}

// EncodeResponse renders a Response using the same value encoding.
func EncodeResponse(resp kvstore.Response) string {
	var sb strings.Builder
	switch resp.Kind {
	case kvstore.ResponseSuccessSet:
		writeVariantTag(&sb, "SuccessSet", 0)
	case kvstore.ResponseSuccessGet:
		writeVariantTag(&sb, "SuccessGet", 1)
		writeOptionString(&sb, resp.Value)
	case kvstore.ResponseSuccessRm:
		writeVariantTag(&sb, "SuccessRm", 0)
	case kvstore.ResponseFail:
		writeVariantTag(&sb, "Fail", 1)
		writeString(&sb, resp.Message)
	}
	return sb.String()
}
