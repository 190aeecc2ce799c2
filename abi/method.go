// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"bytes"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
)

// MethodID is the 4-byte selector prefixing call data.
type MethodID [4]byte

// Method encodes calls to and results of one contract method.
type Method struct {
	id     MethodID
	method *ethabi.Method
}

func (m *Method) ID() MethodID {
	return m.id
}

func (m *Method) Name() string {
	return m.method.Name
}

// Payable reports whether the method accepts ETH.
func (m *Method) Payable() bool {
	return m.method.Payable || m.method.StateMutability == "payable"
}

// Const reports whether the method only reads state.
func (m *Method) Const() bool {
	return m.method.Constant || m.method.StateMutability == "view" || m.method.StateMutability == "pure"
}

// EncodeInput packs args behind the selector.
func (m *Method) EncodeInput(args ...any) ([]byte, error) {
	data, err := m.method.Inputs.Pack(args...)
	if err != nil {
		return nil, errors.WithMessagef(err, "encode %v input", m.method.Name)
	}
	return append(m.id[:], data...), nil
}

// DecodeInput unpacks call data into v, a pointer to a struct with one field per argument.
func (m *Method) DecodeInput(input []byte, v any) error {
	if !bytes.HasPrefix(input, m.id[:]) {
		return errors.Errorf("%v: input has incorrect prefix", m.method.Name)
	}
	if len(m.method.Inputs) == 0 {
		return nil
	}
	values, err := m.method.Inputs.Unpack(input[len(m.id):])
	if err != nil {
		return errors.WithMessagef(err, "decode %v input", m.method.Name)
	}
	return m.method.Inputs.Copy(v, values)
}

func (m *Method) EncodeOutput(args ...any) ([]byte, error) {
	return m.method.Outputs.Pack(args...)
}

func (m *Method) DecodeOutput(output []byte, v any) error {
	if len(output)%32 != 0 {
		return errors.Errorf("%v: output has incorrect length %d", m.method.Name, len(output))
	}
	values, err := m.method.Outputs.Unpack(output)
	if err != nil {
		return errors.WithMessagef(err, "decode %v output", m.method.Name)
	}
	return m.method.Outputs.Copy(v, values)
}

// ExtractMethodID returns the selector of input.
func ExtractMethodID(input []byte) (MethodID, error) {
	var id MethodID
	if len(input) < len(id) {
		return id, errors.New("input data too short")
	}
	copy(id[:], input)
	return id, nil
}
