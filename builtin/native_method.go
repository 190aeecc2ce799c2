// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"errors"
	"fmt"

	"github.com/vechain/swell/abi"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/xenv"
)

var errNonPayable = errors.New("native call: method is not payable")

// nativeMethod describes a native call.
type nativeMethod struct {
	addr    swell.Address
	method  *abi.Method
	view    bool
	payable bool
	run     func(env *bridge) ([]any, error)
}

// Payable marks the method as accepting value.
func (n *nativeMethod) Payable() *nativeMethod {
	n.payable = true
	return n
}

// call runs the method against env and abi encodes its outputs.
func (n *nativeMethod) call(env *xenv.Environment, input []byte) (output []byte, err error) {
	if !n.payable && env.Value().Sign() > 0 {
		return nil, errNonPayable
	}

	defer func() {
		// handle panic in bridge.ParseArgs
		if e := recover(); e != nil {
			err = fmt.Errorf("native: %v", e)
		}
	}()

	out, err := n.run(&bridge{
		env,
		input,
		n.method,
	})
	if err != nil {
		return nil, err
	}
	return n.method.EncodeOutput(out...)
}

// bridge env of native call invocation.
type bridge struct {
	*xenv.Environment

	input  []byte
	method *abi.Method
}

// ParseArgs unpack input into args.
func (b *bridge) ParseArgs(v any) {
	if err := b.method.DecodeInput(b.input, v); err != nil {
		// nativeMethod.call will handle it
		panic(err)
	}
}
