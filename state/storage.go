// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/swell/swell"
)

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr swell.Address, key swell.Bytes32) (swell.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return swell.Bytes32{}, err
	}
	if len(raw) == 0 {
		return swell.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return swell.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return swell.Blake2b(raw), nil
	}
	return swell.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr swell.Address, key, value swell.Bytes32) {
	var raw []byte
	if !value.IsZero() {
		raw, _ = rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	}
	s.SetRawStorage(addr, key, raw)
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be passed through.
func (s *State) DecodeStorage(addr swell.Address, key swell.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	return dec(raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr swell.Address, key swell.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}
