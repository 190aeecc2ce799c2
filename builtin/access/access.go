// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package access implements the access control manager: role registry, pause switches,
// the treasury and the addresses of the core components.
package access

import (
	"fmt"

	"github.com/vechain/swell/abi"
	"github.com/vechain/swell/builtin/gen"
	"github.com/vechain/swell/builtin/reverts"
	"github.com/vechain/swell/builtin/solidity"
	"github.com/vechain/swell/builtin/token"
	"github.com/vechain/swell/log"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/xenv"
)

var (
	// PlatformAdmin administers every component.
	PlatformAdmin = swell.Keccak256([]byte("PLATFORM_ADMIN"))
	// Bot operates reprice and validator setup.
	Bot = swell.Keccak256([]byte("BOT"))

	ErrCannotRemoveLastAdmin = reverts.NewRequireError("CannotRemoveLastAdmin")

	logger = log.WithContext("pkg", "access")

	ABI                        = abi.MustNew(gen.MustABI("AccessControl"))
	roleGrantedEvent           = ABI.MustEventByName("RoleGranted")
	roleRevokedEvent           = ABI.MustEventByName("RoleRevoked")
	treasuryUpdatedEvent       = ABI.MustEventByName("UpdatedSwellTreasury")
	depositManagerUpdatedEvent = ABI.MustEventByName("UpdatedDepositManager")
	registryUpdatedEvent       = ABI.MustEventByName("UpdatedNodeOperatorRegistry")
	coreMethodsPauseEvent      = ABI.MustEventByName("CoreMethodsPause")
	botMethodsPauseEvent       = ABI.MustEventByName("BotMethodsPause")
	tokensWithdrawnEvent       = ABI.MustEventByName("TokensWithdrawn")
)

// RoleName returns a readable name of the well known roles.
func RoleName(role swell.Bytes32) string {
	switch role {
	case PlatformAdmin:
		return "PLATFORM_ADMIN"
	case Bot:
		return "BOT"
	default:
		return role.String()
	}
}

type memberKey struct {
	role    swell.Bytes32
	account swell.Address
}

func (k memberKey) Bytes() []byte {
	return append(append(make([]byte, 0, 32+swell.AddressLength), k.role[:]...), k.account[:]...)
}

// AccessControl binder of the access control manager contract.
type AccessControl struct {
	addr  swell.Address
	state *state.State

	initialized          *solidity.Bool
	members              *solidity.Mapping[memberKey, bool]
	memberCount          *solidity.Mapping[swell.Bytes32, uint64]
	coreMethodsPaused    *solidity.Bool
	botMethodsPaused     *solidity.Bool
	swellTreasury        *solidity.Address
	depositManager       *solidity.Address
	nodeOperatorRegistry *solidity.Address
}

func New(addr swell.Address, state *state.State) *AccessControl {
	sctx := solidity.NewContext(addr, state)
	return &AccessControl{
		addr:                 addr,
		state:                state,
		initialized:          solidity.NewBool(sctx, solidity.Slot("initialized")),
		members:              solidity.NewMapping[memberKey, bool](sctx, solidity.Slot("role-members")),
		memberCount:          solidity.NewMapping[swell.Bytes32, uint64](sctx, solidity.Slot("role-member-count")),
		coreMethodsPaused:    solidity.NewBool(sctx, solidity.Slot("core-methods-paused")),
		botMethodsPaused:     solidity.NewBool(sctx, solidity.Slot("bot-methods-paused")),
		swellTreasury:        solidity.NewAddress(sctx, solidity.Slot("swell-treasury")),
		depositManager:       solidity.NewAddress(sctx, solidity.Slot("deposit-manager")),
		nodeOperatorRegistry: solidity.NewAddress(sctx, solidity.Slot("node-operator-registry")),
	}
}

func (a *AccessControl) Address() swell.Address {
	return a.addr
}

// Initialize grants PlatformAdmin to admin and sets the treasury. It can run once.
func (a *AccessControl) Initialize(env *xenv.Environment, admin, treasury swell.Address) error {
	done, err := a.initialized.Get()
	if err != nil {
		return err
	}
	if done {
		return reverts.ErrAlreadyInitialized
	}
	if admin.IsZero() {
		return reverts.ErrCannotBeZeroAddress.WithDetail("admin")
	}
	if treasury.IsZero() {
		return reverts.ErrCannotBeZeroAddress.WithDetail("treasury")
	}

	a.initialized.Set(true)
	if err := a.grant(env, PlatformAdmin, admin); err != nil {
		return err
	}
	a.swellTreasury.Set(&treasury)
	if err := env.Log(treasuryUpdatedEvent, a.addr, nil, swell.Address{}, treasury); err != nil {
		return err
	}
	logger.Info("access control initialized", "admin", admin, "treasury", treasury)
	return nil
}

// Initialized reports whether Initialize has run.
func (a *AccessControl) Initialized() (bool, error) {
	return a.initialized.Get()
}

//
// Roles
//

// HasRole reports whether account holds role.
func (a *AccessControl) HasRole(role swell.Bytes32, account swell.Address) (bool, error) {
	return a.members.Get(memberKey{role, account})
}

// CheckRole returns ErrUnauthorized unless account holds role.
func (a *AccessControl) CheckRole(role swell.Bytes32, account swell.Address) error {
	ok, err := a.HasRole(role, account)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.ErrUnauthorized.WithDetail(
			fmt.Sprintf("AccessControl: account %v is missing role %v", account, role))
	}
	return nil
}

// RoleMemberCount returns the number of accounts holding role.
func (a *AccessControl) RoleMemberCount(role swell.Bytes32) (uint64, error) {
	return a.memberCount.Get(role)
}

// GrantRole gives role to account. Granting a held role does nothing.
func (a *AccessControl) GrantRole(env *xenv.Environment, role swell.Bytes32, account swell.Address) error {
	if err := a.CheckRole(PlatformAdmin, env.Caller()); err != nil {
		return err
	}
	if account.IsZero() {
		return reverts.ErrCannotBeZeroAddress
	}
	return a.grant(env, role, account)
}

// RevokeRole takes role away from account. Revoking a role not held does nothing.
func (a *AccessControl) RevokeRole(env *xenv.Environment, role swell.Bytes32, account swell.Address) error {
	if err := a.CheckRole(PlatformAdmin, env.Caller()); err != nil {
		return err
	}
	if account.IsZero() {
		return reverts.ErrCannotBeZeroAddress
	}
	return a.revoke(env, role, account)
}

// RenounceRole drops role from the caller.
func (a *AccessControl) RenounceRole(env *xenv.Environment, role swell.Bytes32) error {
	return a.revoke(env, role, env.Caller())
}

func (a *AccessControl) grant(env *xenv.Environment, role swell.Bytes32, account swell.Address) error {
	key := memberKey{role, account}
	held, err := a.members.Get(key)
	if err != nil {
		return err
	}
	if held {
		return nil
	}
	count, err := a.memberCount.Get(role)
	if err != nil {
		return err
	}
	if err := a.members.Set(key, true); err != nil {
		return err
	}
	if err := a.memberCount.Set(role, count+1); err != nil {
		return err
	}
	return env.Log(roleGrantedEvent, a.addr, []swell.Bytes32{role, addressTopic(account), addressTopic(env.Caller())})
}

func (a *AccessControl) revoke(env *xenv.Environment, role swell.Bytes32, account swell.Address) error {
	key := memberKey{role, account}
	held, err := a.members.Get(key)
	if err != nil {
		return err
	}
	if !held {
		return nil
	}
	count, err := a.memberCount.Get(role)
	if err != nil {
		return err
	}
	if role == PlatformAdmin && count <= 1 {
		return ErrCannotRemoveLastAdmin
	}
	a.members.Delete(key)
	if err := a.memberCount.Set(role, count-1); err != nil {
		return err
	}
	return env.Log(roleRevokedEvent, a.addr, []swell.Bytes32{role, addressTopic(account), addressTopic(env.Caller())})
}

//
// Component registry
//

// SwellTreasury returns the address receiving protocol fees and withdrawn tokens.
func (a *AccessControl) SwellTreasury() (swell.Address, error) {
	return a.swellTreasury.Get()
}

// SetSwellTreasury replaces the treasury.
func (a *AccessControl) SetSwellTreasury(env *xenv.Environment, treasury swell.Address) error {
	return a.setAddress(env, a.swellTreasury, treasuryUpdatedEvent, treasury)
}

// DepositManager returns the registered deposit manager, zero when unset.
func (a *AccessControl) DepositManager() (swell.Address, error) {
	return a.depositManager.Get()
}

// SetDepositManager registers the deposit manager.
func (a *AccessControl) SetDepositManager(env *xenv.Environment, addr swell.Address) error {
	return a.setAddress(env, a.depositManager, depositManagerUpdatedEvent, addr)
}

// NodeOperatorRegistry returns the registered node operator registry, zero when unset.
func (a *AccessControl) NodeOperatorRegistry() (swell.Address, error) {
	return a.nodeOperatorRegistry.Get()
}

// SetNodeOperatorRegistry registers the node operator registry.
func (a *AccessControl) SetNodeOperatorRegistry(env *xenv.Environment, addr swell.Address) error {
	return a.setAddress(env, a.nodeOperatorRegistry, registryUpdatedEvent, addr)
}

func (a *AccessControl) setAddress(env *xenv.Environment, slot *solidity.Address, event *abi.Event, addr swell.Address) error {
	if err := a.CheckRole(PlatformAdmin, env.Caller()); err != nil {
		return err
	}
	if addr.IsZero() {
		return reverts.ErrCannotBeZeroAddress
	}
	old, err := slot.Get()
	if err != nil {
		return err
	}
	slot.Set(&addr)
	return env.Log(event, a.addr, nil, old, addr)
}

//
// Pause switches
//

// CoreMethodsPaused reports whether user facing methods are paused.
func (a *AccessControl) CoreMethodsPaused() (bool, error) {
	return a.coreMethodsPaused.Get()
}

// BotMethodsPaused reports whether bot operated methods are paused.
func (a *AccessControl) BotMethodsPaused() (bool, error) {
	return a.botMethodsPaused.Get()
}

// CheckCoreMethodsNotPaused returns ErrCoreMethodsPaused while core methods are paused.
func (a *AccessControl) CheckCoreMethodsNotPaused() error {
	paused, err := a.coreMethodsPaused.Get()
	if err != nil {
		return err
	}
	if paused {
		return reverts.ErrCoreMethodsPaused
	}
	return nil
}

// CheckBotMethodsNotPaused returns ErrBotMethodsPaused while bot methods are paused.
func (a *AccessControl) CheckBotMethodsNotPaused() error {
	paused, err := a.botMethodsPaused.Get()
	if err != nil {
		return err
	}
	if paused {
		return reverts.ErrBotMethodsPaused
	}
	return nil
}

func (a *AccessControl) PauseCoreMethods(env *xenv.Environment) error {
	return a.setPaused(env, a.coreMethodsPaused, coreMethodsPauseEvent, true)
}

func (a *AccessControl) UnpauseCoreMethods(env *xenv.Environment) error {
	return a.setPaused(env, a.coreMethodsPaused, coreMethodsPauseEvent, false)
}

func (a *AccessControl) PauseBotMethods(env *xenv.Environment) error {
	return a.setPaused(env, a.botMethodsPaused, botMethodsPauseEvent, true)
}

func (a *AccessControl) UnpauseBotMethods(env *xenv.Environment) error {
	return a.setPaused(env, a.botMethodsPaused, botMethodsPauseEvent, false)
}

// setPaused is idempotent, the event is emitted on every call.
func (a *AccessControl) setPaused(env *xenv.Environment, flag *solidity.Bool, event *abi.Event, paused bool) error {
	if err := a.CheckRole(PlatformAdmin, env.Caller()); err != nil {
		return err
	}
	flag.Set(paused)
	return env.Log(event, a.addr, nil, paused)
}

// WithdrawERC20 sends the whole balance of tokenAddr held by this contract to the treasury.
func (a *AccessControl) WithdrawERC20(env *xenv.Environment, tokenAddr swell.Address) error {
	if err := a.CheckRole(PlatformAdmin, env.Caller()); err != nil {
		return err
	}
	return WithdrawERC20To(env, a, tokenAddr, a.addr)
}

// WithdrawERC20To implements withdrawERC20 for the component at holder: the whole balance of
// tokenAddr goes to the treasury and holder emits TokensWithdrawn.
// Authorization is left to the caller.
func WithdrawERC20To(env *xenv.Environment, aca *AccessControl, tokenAddr, holder swell.Address) error {
	treasury, err := aca.SwellTreasury()
	if err != nil {
		return err
	}
	amount, err := token.WithdrawAll(env, tokenAddr, holder, treasury)
	if err != nil {
		return err
	}
	return env.Log(tokensWithdrawnEvent, holder, []swell.Bytes32{addressTopic(env.Caller()), addressTopic(tokenAddr)}, amount)
}

func addressTopic(addr swell.Address) swell.Bytes32 {
	return swell.BytesToBytes32(addr.Bytes())
}
