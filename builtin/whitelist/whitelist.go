// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package whitelist

import (
	"github.com/vechain/swell/abi"
	"github.com/vechain/swell/builtin/access"
	"github.com/vechain/swell/builtin/gen"
	"github.com/vechain/swell/builtin/reverts"
	"github.com/vechain/swell/builtin/solidity"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/xenv"
)

var (
	ErrAddressAlreadyWhitelisted = reverts.NewRequireError("AddressAlreadyWhitelisted")
	ErrAddressNotInWhitelist     = reverts.NewRequireError("AddressNotInWhitelist")

	ABI           = abi.MustNew(gen.MustABI("Whitelist"))
	addedEvent    = ABI.MustEventByName("AddedToWhitelist")
	removedEvent  = ABI.MustEventByName("RemovedFromWhitelist")
	enabledEvent  = ABI.MustEventByName("WhitelistEnabled")
	disabledEvent = ABI.MustEventByName("WhitelistDisabled")
)

// Whitelist binder of the deposit allow-list. It starts enabled and empty.
type Whitelist struct {
	addr     swell.Address
	aca      *access.AccessControl
	disabled *solidity.Bool
	members  *solidity.Mapping[swell.Address, bool]
}

func New(addr swell.Address, state *state.State, aca *access.AccessControl) *Whitelist {
	sctx := solidity.NewContext(addr, state)
	return &Whitelist{
		addr:     addr,
		aca:      aca,
		disabled: solidity.NewBool(sctx, solidity.Slot("whitelist-disabled")),
		members:  solidity.NewMapping[swell.Address, bool](sctx, solidity.Slot("whitelist")),
	}
}

func (w *Whitelist) Address() swell.Address {
	return w.addr
}

// Enabled reports whether the allow-list is enforced.
func (w *Whitelist) Enabled() (bool, error) {
	disabled, err := w.disabled.Get()
	return !disabled, err
}

// IsAllowed reports whether addr may deposit. Everyone is allowed while the list is disabled.
func (w *Whitelist) IsAllowed(addr swell.Address) (bool, error) {
	enabled, err := w.Enabled()
	if err != nil {
		return false, err
	}
	if !enabled {
		return true, nil
	}
	return w.members.Get(addr)
}

func (w *Whitelist) AddToWhitelist(env *xenv.Environment, addr swell.Address) error {
	if err := w.aca.CheckRole(access.PlatformAdmin, env.Caller()); err != nil {
		return err
	}
	if addr.IsZero() {
		return reverts.ErrCannotBeZeroAddress
	}
	listed, err := w.members.Get(addr)
	if err != nil {
		return err
	}
	if listed {
		return ErrAddressAlreadyWhitelisted
	}
	if err := w.members.Set(addr, true); err != nil {
		return err
	}
	return env.Log(addedEvent, w.addr, []swell.Bytes32{swell.BytesToBytes32(addr.Bytes())})
}

func (w *Whitelist) RemoveFromWhitelist(env *xenv.Environment, addr swell.Address) error {
	if err := w.aca.CheckRole(access.PlatformAdmin, env.Caller()); err != nil {
		return err
	}
	listed, err := w.members.Get(addr)
	if err != nil {
		return err
	}
	if !listed {
		return ErrAddressNotInWhitelist
	}
	w.members.Delete(addr)
	return env.Log(removedEvent, w.addr, []swell.Bytes32{swell.BytesToBytes32(addr.Bytes())})
}

func (w *Whitelist) EnableWhitelist(env *xenv.Environment) error {
	if err := w.aca.CheckRole(access.PlatformAdmin, env.Caller()); err != nil {
		return err
	}
	w.disabled.Set(false)
	return env.Log(enabledEvent, w.addr, nil)
}

func (w *Whitelist) DisableWhitelist(env *xenv.Environment) error {
	if err := w.aca.CheckRole(access.PlatformAdmin, env.Caller()); err != nil {
		return err
	}
	w.disabled.Set(true)
	return env.Log(disabledEvent, w.addr, nil)
}
