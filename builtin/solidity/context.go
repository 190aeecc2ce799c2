// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
)

// Context binds storage wrappers to a contract address and the state they read and write.
type Context struct {
	address swell.Address
	state   *state.State
}

func NewContext(address swell.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() swell.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Slot derives a storage position from a human readable name.
func Slot(name string) swell.Bytes32 {
	return swell.BytesToBytes32([]byte(name))
}
