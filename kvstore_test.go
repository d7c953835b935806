// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package kvstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandKindString(t *testing.T) {
	require.Equal(t, "Set", CommandSet.String())
	require.Equal(t, "Get", CommandGet.String())
	require.Equal(t, "Rm", CommandRm.String())
}

func TestResponseConstructors(t *testing.T) {
	require.Equal(t, Response{Kind: ResponseSuccessSet}, SuccessSet())
	require.Equal(t, Response{Kind: ResponseSuccessRm}, SuccessRm())

	v := "v"
	require.Equal(t, Response{Kind: ResponseSuccessGet, Value: &v}, SuccessGet(&v))
	require.Equal(t, Response{Kind: ResponseSuccessGet}, SuccessGet(nil))

	require.Equal(t, Response{Kind: ResponseFail, Message: "Key not found"}, FailKeyNotFound())
}

func TestCodecErrorMessage(t *testing.T) {
	err := NewCodecError("bad input")
	require.EqualError(t, err, "codec error: bad input")
}
