// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/swell/abi"
	"github.com/vechain/swell/swell"
)

type contract struct {
	name    string
	Address swell.Address
	ABI     *abi.ABI
}

func newContract(name string, abi *abi.ABI) *contract {
	return &contract{
		name,
		swell.BytesToAddress([]byte(name)),
		abi,
	}
}

// Name returns the contract name, which also derives its address.
func (c *contract) Name() string {
	return c.name
}

// impl binds run to the named method of the contract ABI.
func (c *contract) impl(name string, view bool, run func(env *bridge) ([]any, error)) *nativeMethod {
	return implOf(c.Address, c.ABI, name, view, run)
}

func implOf(addr swell.Address, abi *abi.ABI, name string, view bool, run func(env *bridge) ([]any, error)) *nativeMethod {
	method, found := abi.MethodByName(name)
	if !found {
		panic("method not found: " + name)
	}
	return &nativeMethod{
		addr:   addr,
		method: method,
		view:   view,
		run:    run,
	}
}
