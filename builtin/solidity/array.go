// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/swell/swell"
)

var ErrIndexOutOfRange = errors.New("index out of range")

type index uint64

func (i index) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(i))
}

// Array is a dynamically sized list, laid out like a Solidity storage array.
// The length lives at pos and elements are kept in a mapping keyed by index.
type Array[V any] struct {
	length *Uint256
	items  *Mapping[index, V]
}

func NewArray[V any](context *Context, pos swell.Bytes32) *Array[V] {
	return &Array[V]{
		length: NewUint256(context, pos),
		items:  NewMapping[index, V](context, swell.Blake2b(pos.Bytes())),
	}
}

func (a *Array[V]) Len() (uint64, error) {
	l, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	return l.Uint64(), nil
}

func (a *Array[V]) Get(i uint64) (value V, err error) {
	n, err := a.Len()
	if err != nil {
		return value, err
	}
	if i >= n {
		return value, errors.Wrapf(ErrIndexOutOfRange, "get %d of %d", i, n)
	}
	return a.items.Get(index(i))
}

func (a *Array[V]) Set(i uint64, value V) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if i >= n {
		return errors.Wrapf(ErrIndexOutOfRange, "set %d of %d", i, n)
	}
	return a.items.Set(index(i), value)
}

// Push appends value and returns its index.
func (a *Array[V]) Push(value V) (uint64, error) {
	n, err := a.Len()
	if err != nil {
		return 0, err
	}
	if err := a.items.Set(index(n), value); err != nil {
		return 0, err
	}
	a.length.Set(new(uint256.Int).SetUint64(n + 1))
	return n, nil
}
