// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package swell

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulDiv(t *testing.T) {
	tests := []struct {
		x, y, d  uint64
		floor    uint64
		ceil     uint64
		hasError bool
	}{
		{7, 1e18, 10, 7e17, 7e17, false},
		{1, 1, 3, 0, 1, false},
		{10, 10, 3, 33, 34, false},
		{0, 5, 7, 0, 0, false},
		{1, 1, 0, 0, 0, true},
	}
	for _, tt := range tests {
		x, y, d := uint256.NewInt(tt.x), uint256.NewInt(tt.y), uint256.NewInt(tt.d)
		floor, err := MulDiv(x, y, d)
		if tt.hasError {
			assert.ErrorIs(t, err, ErrDivisionByZero)
			_, err = MulDivUp(x, y, d)
			assert.ErrorIs(t, err, ErrDivisionByZero)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.floor, floor.Uint64())

		ceil, err := MulDivUp(x, y, d)
		require.NoError(t, err)
		assert.Equal(t, tt.ceil, ceil.Uint64())
	}
}

func TestMulDivWideIntermediate(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	// (max * max) / max does not fit the intermediate in 256 bits but the result does
	z, err := MulDiv(max, max, max)
	require.NoError(t, err)
	assert.True(t, z.Eq(max))

	_, err = MulDiv(max, max, uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestToU256(t *testing.T) {
	u, err := ToU256(big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), u.Uint64())

	_, err = ToU256(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = ToU256(new(big.Int).Lsh(big.NewInt(1), 256))
	assert.ErrorIs(t, err, ErrOverflow)

	u, err = ToU256(nil)
	require.NoError(t, err)
	assert.True(t, u.IsZero())
}

func TestAbsDiff(t *testing.T) {
	assert.Equal(t, uint64(3), AbsDiff(uint256.NewInt(5), uint256.NewInt(2)).Uint64())
	assert.Equal(t, uint64(3), AbsDiff(uint256.NewInt(2), uint256.NewInt(5)).Uint64())
}
