// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/swell/builtin/access"
	"github.com/vechain/swell/builtin/beacon"
	"github.com/vechain/swell/builtin/deposit"
	"github.com/vechain/swell/builtin/registry"
	"github.com/vechain/swell/builtin/sweth"
	"github.com/vechain/swell/builtin/whitelist"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
)

// Builtin contracts binding.
var (
	AccessControl        = &accessControlContract{newContract("AccessControl", access.ABI)}
	SwETH                = &swETHContract{newContract("SwETH", sweth.ABI)}
	Whitelist            = &whitelistContract{newContract("Whitelist", whitelist.ABI)}
	NodeOperatorRegistry = &registryContract{newContract("NodeOperatorRegistry", registry.ABI)}
	DepositManager       = &depositManagerContract{newContract("DepositManager", deposit.ABI)}
	BeaconDeposit        = &beaconDepositContract{newContract("BeaconDeposit", beacon.ABI)}
)

type (
	accessControlContract  struct{ *contract }
	swETHContract          struct{ *contract }
	whitelistContract      struct{ *contract }
	registryContract       struct{ *contract }
	depositManagerContract struct{ *contract }
	beaconDepositContract  struct{ *contract }
)

func (a *accessControlContract) WithState(state *state.State) *access.AccessControl {
	return access.New(a.Address, state)
}

func (s *swETHContract) WithState(state *state.State) *sweth.SwETH {
	return sweth.New(s.Address, state, Whitelist.WithState(state))
}

func (w *whitelistContract) WithState(state *state.State) *whitelist.Whitelist {
	return whitelist.New(w.Address, state, AccessControl.WithState(state))
}

func (r *registryContract) WithState(state *state.State) *registry.Registry {
	return registry.New(r.Address, state, AccessControl.WithState(state))
}

func (d *depositManagerContract) WithState(state *state.State) *deposit.DepositManager {
	return deposit.New(d.Address, state, BeaconDeposit.WithState(state))
}

func (b *beaconDepositContract) WithState(state *state.State) *beacon.Deposit {
	return beacon.New(b.Address, state)
}

func all() []*contract {
	return []*contract{
		AccessControl.contract,
		SwETH.contract,
		Whitelist.contract,
		NodeOperatorRegistry.contract,
		DepositManager.contract,
		BeaconDeposit.contract,
	}
}

// NameOf returns the name of the builtin contract at addr.
func NameOf(addr swell.Address) (string, bool) {
	for _, c := range all() {
		if c.Address == addr {
			return c.name, true
		}
	}
	return "", false
}
