// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	stringType, _ = abi.NewType("string", "", nil)
	errorArgs     = abi.Arguments{{Type: stringType}}
	// 4-byte selector for Error(string)
	errorSelector = []byte{0x08, 0xc3, 0x79, 0xa0}
)

// ErrRequire is a revert raised by a failed precondition.
// Two values match under errors.Is when their messages are equal, so a sentinel
// keeps matching after WithDetail.
type ErrRequire struct {
	message string
	detail  string
}

func NewRequireError(message string) *ErrRequire {
	return &ErrRequire{
		message: message,
	}
}

// WithDetail returns a copy carrying extra context in its Error text.
func (e *ErrRequire) WithDetail(detail string) *ErrRequire {
	return &ErrRequire{message: e.message, detail: detail}
}

func (e *ErrRequire) Error() string {
	if e.detail != "" {
		return e.message + ": " + e.detail
	}
	return e.message
}

// Message returns the reason without detail.
func (e *ErrRequire) Message() string {
	return e.message
}

func (e *ErrRequire) Is(target error) bool {
	t, ok := target.(*ErrRequire)
	return ok && t != nil && t.message == e.message
}

// Bytes returns the abi encoded Error(string) revert payload.
func (e *ErrRequire) Bytes() []byte {
	if e == nil {
		return nil
	}
	data, err := errorArgs.Pack(e.message)
	if err != nil {
		return nil
	}
	return append(append([]byte{}, errorSelector...), data...)
}

// Unpack decodes an Error(string) revert payload.
func Unpack(data []byte) (*ErrRequire, bool) {
	if len(data) < 4 || string(data[:4]) != string(errorSelector) {
		return nil, false
	}
	msg, err := abi.UnpackRevert(data)
	if err != nil {
		return nil, false
	}
	return NewRequireError(msg), true
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRequire
	if errors.As(e, &ve) {
		return ve != nil
	}
	return false
}
