// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var errTest = NewRequireError("test failure")

func TestIsMatchesDetail(t *testing.T) {
	err := errTest.WithDetail("amount 5")
	assert.ErrorIs(t, err, errTest)
	assert.Equal(t, "test failure: amount 5", err.Error())
	assert.Equal(t, "test failure", err.Message())

	wrapped := errors.Wrap(err, "call")
	assert.ErrorIs(t, wrapped, errTest)
	assert.True(t, IsRevertErr(wrapped))

	assert.NotErrorIs(t, NewRequireError("other"), errTest)
	assert.False(t, IsRevertErr(errors.New("plain")))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr("string"))
}

func TestBytes(t *testing.T) {
	data := NewRequireError("hi").Bytes()
	assert.Equal(t, "08c379a0", hex.EncodeToString(data[:4]))
	assert.Len(t, data, 4+32+32+32)

	decoded, ok := Unpack(data)
	assert.True(t, ok)
	assert.Equal(t, "hi", decoded.Error())

	_, ok = Unpack([]byte{1, 2, 3, 4})
	assert.False(t, ok)

	var nilErr *ErrRequire
	assert.Nil(t, nilErr.Bytes())
}
