// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/swell/lvldb"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
)

type TestStruct struct {
	Field1 uint64
	Addr1  swell.Address
	Amount *big.Int
}

func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(swell.Address{1}, state.New(db))
}

func TestAddressAndBool(t *testing.T) {
	ctx := newTestContext(t)

	addr := NewAddress(ctx, Slot("addr"))
	got, err := addr.Get()
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	want := swell.BytesToAddress([]byte("someone"))
	addr.Set(&want)
	got, _ = addr.Get()
	assert.Equal(t, want, got)
	addr.Set(nil)
	got, _ = addr.Get()
	assert.True(t, got.IsZero())

	flag := NewBool(ctx, Slot("flag"))
	v, err := flag.Get()
	require.NoError(t, err)
	assert.False(t, v)
	flag.Set(true)
	v, _ = flag.Get()
	assert.True(t, v)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, Slot("u"))

	require.NoError(t, u.Add(uint256.NewInt(10)))
	require.NoError(t, u.Sub(uint256.NewInt(3)))
	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v.Uint64())

	assert.ErrorIs(t, u.Sub(uint256.NewInt(8)), swell.ErrOverflow)
	v, _ = u.Get()
	assert.Equal(t, uint64(7), v.Uint64())

	u.Set(new(uint256.Int).SetAllOne())
	assert.ErrorIs(t, u.Add(uint256.NewInt(1)), swell.ErrOverflow)
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[swell.Bytes32, *TestStruct](ctx, Slot("m"))
	key := swell.Bytes32{7}

	empty, err := m.Get(key)
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Zero(t, empty.Field1)

	value := &TestStruct{Field1: 5, Addr1: swell.Address{2}, Amount: big.NewInt(99)}
	require.NoError(t, m.Set(key, value))
	got, err := m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	m.Delete(key)
	got, _ = m.Get(key)
	assert.Zero(t, got.Field1)

	// entries of different mappings do not collide
	other := NewMapping[swell.Bytes32, uint64](ctx, Slot("other"))
	require.NoError(t, other.Set(key, 1))
	got, _ = m.Get(key)
	assert.Zero(t, got.Field1)
}

func TestArray(t *testing.T) {
	ctx := newTestContext(t)
	arr := NewArray[[]byte](ctx, Slot("arr"))

	n, err := arr.Len()
	require.NoError(t, err)
	assert.Zero(t, n)

	i, err := arr.Push([]byte{1})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), i)
	i, _ = arr.Push([]byte{2})
	assert.Equal(t, uint64(1), i)

	require.NoError(t, arr.Set(0, []byte{3}))
	v, err := arr.Get(0)
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, v)

	_, err = arr.Get(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, arr.Set(5, nil), ErrIndexOutOfRange)
}
