// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package deposit implements the deposit manager: it pools ETH and funds validators in batches.
package deposit

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/swell/abi"
	"github.com/vechain/swell/builtin/access"
	"github.com/vechain/swell/builtin/gen"
	"github.com/vechain/swell/builtin/registry"
	"github.com/vechain/swell/builtin/reverts"
	"github.com/vechain/swell/builtin/solidity"
	"github.com/vechain/swell/log"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/xenv"
)

var (
	ErrNoPubKeysProvided      = reverts.NewRequireError("NoPubKeysProvided")
	ErrInsufficientETHBalance = reverts.NewRequireError("InsufficientETHBalance")
	ErrInvalidWithdrawalCreds = reverts.NewRequireError("InvalidWithdrawalCredentials")

	logger = log.WithContext("pkg", "deposit")

	ABI                  = abi.MustNew(gen.MustABI("DepositManager"))
	ethReceivedEvent     = ABI.MustEventByName("ETHReceived")
	validatorFundedEvent = ABI.MustEventByName("ValidatorFunded")
	validatorsSetupEvent = ABI.MustEventByName("ValidatorsSetup")
)

// Registrar accepts validator funding. The ETH for one validator is attached to env.
type Registrar interface {
	Address() swell.Address
	FundValidator(env *xenv.Environment, pubKey, signature []byte, withdrawalCredentialsRoot swell.Bytes32) error
}

// Compensator is implemented by registrars whose effects live outside the journaled state.
// Compensate undoes the funding of pubKey when a later key of the same batch fails.
type Compensator interface {
	Compensate(pubKey []byte) error
}

// DepositManager binder of the deposit manager contract.
type DepositManager struct {
	addr      swell.Address
	state     *state.State
	registrar Registrar

	initialized   *solidity.Bool
	accessControl *solidity.Address
}

func New(addr swell.Address, state *state.State, registrar Registrar) *DepositManager {
	sctx := solidity.NewContext(addr, state)
	return &DepositManager{
		addr:          addr,
		state:         state,
		registrar:     registrar,
		initialized:   solidity.NewBool(sctx, solidity.Slot("initialized")),
		accessControl: solidity.NewAddress(sctx, solidity.Slot("access-control-manager")),
	}
}

func (d *DepositManager) Address() swell.Address {
	return d.addr
}

// Initialize binds the manager to the access control manager. It can run once.
func (d *DepositManager) Initialize(env *xenv.Environment, accessControl swell.Address) error {
	done, err := d.initialized.Get()
	if err != nil {
		return err
	}
	if done {
		return reverts.ErrAlreadyInitialized
	}
	if accessControl.IsZero() {
		return reverts.ErrCannotBeZeroAddress
	}
	d.initialized.Set(true)
	d.accessControl.Set(&accessControl)
	return nil
}

// AccessControlManager returns the bound access control manager address.
func (d *DepositManager) AccessControlManager() (swell.Address, error) {
	return d.accessControl.Get()
}

func (d *DepositManager) aca() (*access.AccessControl, error) {
	addr, err := d.accessControl.Get()
	if err != nil {
		return nil, err
	}
	if addr.IsZero() {
		return nil, reverts.ErrNotInitialized
	}
	return access.New(addr, d.state), nil
}

// Receive accepts the ETH attached to env into the pool.
func (d *DepositManager) Receive(env *xenv.Environment) error {
	return env.Log(ethReceivedEvent, d.addr, []swell.Bytes32{swell.BytesToBytes32(env.Caller().Bytes())}, env.Value())
}

// PoolBalance returns the ETH held by the manager.
func (d *DepositManager) PoolBalance() (*big.Int, error) {
	return d.state.GetBalance(d.addr)
}

// WithdrawalCredentials returns 0x01 ++ 11 zero bytes ++ manager address.
func (d *DepositManager) WithdrawalCredentials() []byte {
	wc := d.WithdrawalCredentialsRoot()
	return wc[:]
}

// WithdrawalCredentialsRoot returns the hash tree root of the withdrawal credentials,
// which equals the credentials for a single chunk.
func (d *DepositManager) WithdrawalCredentialsRoot() swell.Bytes32 {
	var wc swell.Bytes32
	wc[0] = 0x01
	copy(wc[12:], d.addr[:])
	return wc
}

// SetupValidators funds one validator per key from the pool. withdrawalCredentialsRoot must be
// the manager's own. Either every key is funded or the call fails and the pool is left as it was.
func (d *DepositManager) SetupValidators(env *xenv.Environment, pubKeys [][]byte, withdrawalCredentialsRoot swell.Bytes32) error {
	aca, err := d.aca()
	if err != nil {
		return err
	}
	if err := aca.CheckRole(access.Bot, env.Caller()); err != nil {
		return err
	}
	if err := aca.CheckBotMethodsNotPaused(); err != nil {
		return err
	}
	if len(pubKeys) == 0 {
		return ErrNoPubKeysProvided
	}
	if withdrawalCredentialsRoot != d.WithdrawalCredentialsRoot() {
		return ErrInvalidWithdrawalCreds.WithDetail(withdrawalCredentialsRoot.String())
	}

	unit := swell.ValidatorDepositAmount
	required := new(big.Int).Mul(big.NewInt(int64(len(pubKeys))), unit)
	pool, err := d.PoolBalance()
	if err != nil {
		return err
	}
	if pool.Cmp(required) < 0 {
		return ErrInsufficientETHBalance.WithDetail(fmt.Sprintf("have %v, need %v", pool, required))
	}
	if d.registrar == nil {
		return errors.New("no validator registrar")
	}

	details, err := d.useValidatorDetails(env, aca, pubKeys)
	if err != nil {
		return err
	}

	funded := 0
	for _, v := range details {
		err := env.Call(d.registrar.Address(), unit, func(sub *xenv.Environment) error {
			return d.registrar.FundValidator(sub, v.PubKey, v.Signature, withdrawalCredentialsRoot)
		})
		if err != nil {
			d.compensate(details[:funded])
			return errors.WithMessagef(err, "fund validator 0x%x", v.PubKey)
		}
		funded++
		if err := env.Log(validatorFundedEvent, d.addr, nil, v.PubKey, unit); err != nil {
			d.compensate(details[:funded])
			return err
		}
	}

	logger.Info("validators set up", "count", funded, "caller", env.Caller())
	return env.Log(validatorsSetupEvent, d.addr, nil, pubKeys)
}

func (d *DepositManager) useValidatorDetails(env *xenv.Environment, aca *access.AccessControl, pubKeys [][]byte) ([]registry.ValidatorDetails, error) {
	regAddr, err := aca.NodeOperatorRegistry()
	if err != nil {
		return nil, err
	}
	if regAddr.IsZero() {
		return nil, reverts.ErrNotInitialized.WithDetail("node operator registry")
	}
	reg := registry.New(regAddr, d.state, aca)

	var details []registry.ValidatorDetails
	err = env.Call(regAddr, nil, func(sub *xenv.Environment) (err error) {
		details, err = reg.UsePubKeysForValidatorSetup(sub, pubKeys)
		return
	})
	if err != nil {
		return nil, err
	}
	if len(details) != len(pubKeys) {
		return nil, errors.Errorf("registry returned %d details for %d keys", len(details), len(pubKeys))
	}
	return details, nil
}

// compensate undoes funded registrations in reverse order. State changes are rolled back by
// the runtime, so this only matters for registrars outside the state.
func (d *DepositManager) compensate(funded []registry.ValidatorDetails) {
	c, ok := d.registrar.(Compensator)
	if !ok {
		return
	}
	for i := len(funded) - 1; i >= 0; i-- {
		if err := c.Compensate(funded[i].PubKey); err != nil {
			logger.Error("failed to compensate validator funding", "pubKey", fmt.Sprintf("0x%x", funded[i].PubKey), "err", err)
		}
	}
}

// WithdrawERC20 sends the whole tokenAddr balance held by the manager to the treasury.
func (d *DepositManager) WithdrawERC20(env *xenv.Environment, tokenAddr swell.Address) error {
	aca, err := d.aca()
	if err != nil {
		return err
	}
	if err := aca.CheckRole(access.PlatformAdmin, env.Caller()); err != nil {
		return err
	}
	return access.WithdrawERC20To(env, aca, tokenAddr, d.addr)
}
