// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deposit_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/swell/builtin/access"
	"github.com/vechain/swell/builtin/beacon"
	"github.com/vechain/swell/builtin/deposit"
	"github.com/vechain/swell/builtin/registry"
	"github.com/vechain/swell/builtin/reverts"
	"github.com/vechain/swell/builtin/token"
	"github.com/vechain/swell/lvldb"
	"github.com/vechain/swell/runtime"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/test/datagen"
	"github.com/vechain/swell/tx"
	"github.com/vechain/swell/xenv"
)

var (
	acaAddr      = swell.BytesToAddress([]byte("AccessControl"))
	managerAddr  = swell.BytesToAddress([]byte("DepositManager"))
	registryAddr = swell.BytesToAddress([]byte("NodeOperatorRegistry"))
	beaconAddr   = swell.BytesToAddress([]byte("BeaconDeposit"))

	admin    = datagen.RandAddress()
	treasury = datagen.RandAddress()
	bot      = datagen.RandAddress()
	operator = datagen.RandAddress()
	funder   = datagen.RandAddress()
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), swell.Ether)
}

// recordingRegistrar funds validators outside the state and fails on a chosen key.
type recordingRegistrar struct {
	addr        swell.Address
	failAt      int
	funded      [][]byte
	compensated [][]byte
}

func (r *recordingRegistrar) Address() swell.Address { return r.addr }

func (r *recordingRegistrar) FundValidator(env *xenv.Environment, pubKey, _ []byte, _ swell.Bytes32) error {
	if len(r.funded) == r.failAt {
		return errors.New("registration rejected")
	}
	r.funded = append(r.funded, pubKey)
	return nil
}

func (r *recordingRegistrar) Compensate(pubKey []byte) error {
	r.compensated = append(r.compensated, pubKey)
	return nil
}

type harness struct {
	rt      *runtime.Runtime
	st      *state.State
	aca     *access.AccessControl
	reg     *registry.Registry
	beacon  *beacon.Deposit
	manager *deposit.DepositManager
	keys    [][]byte
}

func newHarness(t *testing.T, registrar deposit.Registrar, nKeys int) *harness {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	aca := access.New(acaAddr, st)
	h := &harness{
		rt:     runtime.New(st, swell.NewManualClock(1000)),
		st:     st,
		aca:    aca,
		reg:    registry.New(registryAddr, st, aca),
		beacon: beacon.New(beaconAddr, st),
	}
	if registrar == nil {
		registrar = h.beacon
	}
	h.manager = deposit.New(managerAddr, st, registrar)

	details := make([]registry.ValidatorDetails, 0, nKeys)
	for range nKeys {
		key := datagen.RandPubKey()
		h.keys = append(h.keys, key)
		details = append(details, registry.ValidatorDetails{PubKey: key, Signature: datagen.RandSignature()})
	}

	require.NoError(t, h.exec(admin, nil, func(env *xenv.Environment) error {
		if err := h.aca.Initialize(env, admin, treasury); err != nil {
			return err
		}
		if err := h.aca.GrantRole(env, access.Bot, bot); err != nil {
			return err
		}
		if err := h.aca.SetDepositManager(env, managerAddr); err != nil {
			return err
		}
		if err := h.aca.SetNodeOperatorRegistry(env, registryAddr); err != nil {
			return err
		}
		if err := h.reg.AddOperator(env, operator); err != nil {
			return err
		}
		if err := env.State().SetBalance(funder, ether(1000)); err != nil {
			return err
		}
		return h.manager.Initialize(env, acaAddr)
	}))
	if nKeys > 0 {
		require.NoError(t, h.exec(operator, nil, func(env *xenv.Environment) error {
			return h.reg.AddValidatorDetails(env, details)
		}))
	}
	return h
}

func (h *harness) execReceipt(caller swell.Address, value *big.Int, fn func(env *xenv.Environment) error) (*tx.Receipt, error) {
	return h.rt.Exec(context.Background(), runtime.Call{
		Caller:   caller,
		Contract: managerAddr,
		Method:   "test",
		Value:    value,
		Run:      fn,
	})
}

func (h *harness) exec(caller swell.Address, value *big.Int, fn func(env *xenv.Environment) error) error {
	_, err := h.execReceipt(caller, value, fn)
	return err
}

func (h *harness) fund(t *testing.T, value *big.Int) {
	require.NoError(t, h.exec(funder, value, h.manager.Receive))
}

func (h *harness) setup(caller swell.Address, keys [][]byte) (*tx.Receipt, error) {
	return h.setupWith(caller, keys, h.manager.WithdrawalCredentialsRoot())
}

func (h *harness) setupWith(caller swell.Address, keys [][]byte, wc swell.Bytes32) (*tx.Receipt, error) {
	return h.execReceipt(caller, nil, func(env *xenv.Environment) error {
		return h.manager.SetupValidators(env, keys, wc)
	})
}

func (h *harness) pool(t *testing.T) *big.Int {
	bal, err := h.manager.PoolBalance()
	require.NoError(t, err)
	return bal
}

func TestInitialize(t *testing.T) {
	h := newHarness(t, nil, 0)

	got, err := h.manager.AccessControlManager()
	require.NoError(t, err)
	assert.Equal(t, acaAddr, got)

	err = h.exec(admin, nil, func(env *xenv.Environment) error {
		return h.manager.Initialize(env, acaAddr)
	})
	assert.ErrorIs(t, err, reverts.ErrAlreadyInitialized)
}

func TestWithdrawalCredentials(t *testing.T) {
	h := newHarness(t, nil, 0)

	wc := h.manager.WithdrawalCredentials()
	require.Len(t, wc, 32)
	assert.Equal(t, byte(0x01), wc[0])
	assert.Equal(t, make([]byte, 11), wc[1:12])
	assert.Equal(t, managerAddr.Bytes(), wc[12:])
	assert.Equal(t, wc, h.manager.WithdrawalCredentialsRoot().Bytes())
}

func TestReceive(t *testing.T) {
	h := newHarness(t, nil, 0)

	receipt, err := h.execReceipt(funder, ether(5), h.manager.Receive)
	require.NoError(t, err)
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, deposit.ABI.MustEventByName("ETHReceived").ID(), receipt.Events[0].Topics[0])
	assert.Equal(t, swell.BytesToBytes32(funder.Bytes()), receipt.Events[0].Topics[1])
	assert.Equal(t, ether(5), h.pool(t))
}

func TestSetupValidators(t *testing.T) {
	h := newHarness(t, nil, 2)
	h.fund(t, ether(70))

	receipt, err := h.setup(bot, h.keys)
	require.NoError(t, err)

	// pool decreases by exactly two units
	assert.Equal(t, ether(6), h.pool(t))
	bal, _ := h.st.GetBalance(beaconAddr)
	assert.Equal(t, ether(64), bal)

	n, err := h.beacon.DepositCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	for _, key := range h.keys {
		v, err := h.reg.GetValidator(key)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.True(t, v.Used)
	}

	// two PubKeyUsedForValidatorSetup, DepositEvent and ValidatorFunded per key, then ValidatorsSetup
	require.Len(t, receipt.Events, 7)
	last := receipt.Events[len(receipt.Events)-1]
	assert.Equal(t, deposit.ABI.MustEventByName("ValidatorsSetup").ID(), last.Topics[0])
	funded := 0
	for _, ev := range receipt.Events {
		if ev.Topics[0] == deposit.ABI.MustEventByName("ValidatorFunded").ID() {
			funded++
		}
	}
	assert.Equal(t, 2, funded)

	// keys can only be used once
	h.fund(t, ether(64))
	_, err = h.setup(bot, h.keys[:1])
	assert.ErrorIs(t, err, registry.ErrPubKeyAlreadyUsed)
}

func TestSetupValidatorsRejections(t *testing.T) {
	h := newHarness(t, nil, 2)
	h.fund(t, ether(63))

	_, err := h.setup(admin, h.keys)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)

	_, err = h.setup(bot, nil)
	assert.ErrorIs(t, err, deposit.ErrNoPubKeysProvided)

	_, err = h.setup(bot, h.keys)
	assert.ErrorIs(t, err, deposit.ErrInsufficientETHBalance)

	_, err = h.setup(bot, [][]byte{datagen.RandPubKey()})
	assert.ErrorIs(t, err, registry.ErrNoPubKeyFound)

	// role check comes before the pause check
	require.NoError(t, h.exec(admin, nil, h.aca.PauseBotMethods))
	_, err = h.setup(admin, h.keys[:1])
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
	_, err = h.setup(bot, h.keys[:1])
	assert.ErrorIs(t, err, reverts.ErrBotMethodsPaused)

	assert.Equal(t, ether(63), h.pool(t))
	n, _ := h.beacon.DepositCount()
	assert.Zero(t, n)
	v, _ := h.reg.GetValidator(h.keys[0])
	assert.False(t, v.Used)
}

func TestSetupValidatorsForeignCredentials(t *testing.T) {
	h := newHarness(t, nil, 1)
	h.fund(t, ether(32))

	var botCreds swell.Bytes32
	botCreds[0] = 0x01
	copy(botCreds[12:], bot[:])

	for _, wc := range []swell.Bytes32{botCreds, {}, swell.BytesToBytes32([]byte{0x01})} {
		_, err := h.setupWith(bot, h.keys, wc)
		assert.ErrorIs(t, err, deposit.ErrInvalidWithdrawalCreds)
	}

	assert.Equal(t, ether(32), h.pool(t))
	n, _ := h.beacon.DepositCount()
	assert.Zero(t, n)
	v, _ := h.reg.GetValidator(h.keys[0])
	assert.False(t, v.Used)

	_, err := h.setup(bot, h.keys)
	require.NoError(t, err)
	assert.Zero(t, h.pool(t).Sign())
}

func TestSetupValidatorsAllOrNothing(t *testing.T) {
	registrar := &recordingRegistrar{addr: beaconAddr, failAt: 2}
	h := newHarness(t, registrar, 3)
	h.fund(t, ether(96))

	_, err := h.setup(bot, h.keys)
	assert.ErrorContains(t, err, "registration rejected")

	// state is rolled back and the external registrations are undone newest first
	assert.Equal(t, ether(96), h.pool(t))
	bal, _ := h.st.GetBalance(beaconAddr)
	assert.Zero(t, bal.Sign())
	for _, key := range h.keys {
		v, err := h.reg.GetValidator(key)
		require.NoError(t, err)
		assert.False(t, v.Used)
	}
	assert.Equal(t, [][]byte{h.keys[1], h.keys[0]}, registrar.compensated)
}

func TestSetupValidatorsWithoutRegistry(t *testing.T) {
	h := newHarness(t, nil, 1)
	h.fund(t, ether(32))
	require.NoError(t, h.exec(admin, nil, func(env *xenv.Environment) error {
		return h.aca.SetNodeOperatorRegistry(env, datagen.RandAddress())
	}))

	_, err := h.setup(bot, h.keys)
	assert.ErrorIs(t, err, registry.ErrNoPubKeyFound)
	assert.Equal(t, ether(32), h.pool(t))
}

func TestWithdrawERC20(t *testing.T) {
	h := newHarness(t, nil, 0)
	tokenAddr := datagen.RandAddress()
	tok := token.New(tokenAddr, h.st)

	err := h.exec(admin, nil, func(env *xenv.Environment) error {
		return h.manager.WithdrawERC20(env, tokenAddr)
	})
	assert.ErrorIs(t, err, reverts.ErrNoTokensToWithdraw)

	require.NoError(t, h.exec(admin, nil, func(env *xenv.Environment) error {
		return tok.Mint(env, managerAddr, big.NewInt(7))
	}))
	err = h.exec(bot, nil, func(env *xenv.Environment) error {
		return h.manager.WithdrawERC20(env, tokenAddr)
	})
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
	require.NoError(t, h.exec(admin, nil, func(env *xenv.Environment) error {
		return h.manager.WithdrawERC20(env, tokenAddr)
	}))

	bal, _ := tok.BalanceOf(treasury)
	assert.Equal(t, big.NewInt(7), bal)
	bal, _ = tok.BalanceOf(managerAddr)
	assert.Zero(t, bal.Sign())
}
