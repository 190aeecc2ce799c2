// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestToken(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	var (
		st      = state.New(db)
		rt      = runtime.New(st, swell.NewManualClock(1))
		tokAddr = datagen.RandAddress()
		tok     = token.New(tokAddr, st)
		alice   = datagen.RandAddress()
		bob     = datagen.RandAddress()
	)
	exec := func(fn func(env *xenv.Environment) error) (*tx.Receipt, error) {
		return rt.Exec(context.Background(), runtime.Call{Caller: alice, Contract: tokAddr, Run: fn})
	}

	receipt, err := exec(func(env *xenv.Environment) error { return tok.Mint(env, alice, big.NewInt(100)) })
	require.NoError(t, err)
	require.Len(t, receipt.Events, 1)
	ev := receipt.Events[0]
	assert.Equal(t, token.ABI.MustEventByName("Transfer").ID(), ev.Topics[0])
	assert.Equal(t, swell.Bytes32{}, ev.Topics[1])
	assert.Equal(t, swell.BytesToBytes32(alice.Bytes()), ev.Topics[2])

	_, err = exec(func(env *xenv.Environment) error { return tok.Mint(env, swell.Address{}, big.NewInt(1)) })
	assert.ErrorIs(t, err, reverts.ErrCannotBeZeroAddress)

	_, err = exec(func(env *xenv.Environment) error { return tok.Transfer(env, alice, bob, big.NewInt(30)) })
	require.NoError(t, err)
	_, err = exec(func(env *xenv.Environment) error { return tok.Transfer(env, bob, alice, big.NewInt(31)) })
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)
	_, err = exec(func(env *xenv.Environment) error { return tok.Transfer(env, alice, alice, big.NewInt(70)) })
	require.NoError(t, err)

	bal, _ := tok.BalanceOf(alice)
	assert.Equal(t, big.NewInt(70), bal)
	bal, _ = tok.BalanceOf(bob)
	assert.Equal(t, big.NewInt(30), bal)

	_, err = exec(func(env *xenv.Environment) error { return tok.Burn(env, bob, big.NewInt(31)) })
	assert.ErrorIs(t, err, token.ErrBurnExceedsBalance)
	_, err = exec(func(env *xenv.Environment) error { return tok.Burn(env, bob, big.NewInt(30)) })
	require.NoError(t, err)
	bal, _ = tok.BalanceOf(bob)
	assert.Zero(t, bal.Sign())
	supply, _ := tok.TotalSupply()
	assert.Equal(t, big.NewInt(70), supply)
}

func TestWithdrawAll(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	var (
		st      = state.New(db)
		rt      = runtime.New(st, swell.NewManualClock(1))
		tokAddr = datagen.RandAddress()
		holder  = datagen.RandAddress()
		to      = datagen.RandAddress()
	)
	exec := func(fn func(env *xenv.Environment) error) error {
		_, err := rt.Exec(context.Background(), runtime.Call{Caller: holder, Contract: holder, Run: fn})
		return err
	}

	err = exec(func(env *xenv.Environment) error {
		_, err := token.WithdrawAll(env, tokAddr, holder, to)
		return err
	})
	assert.ErrorIs(t, err, reverts.ErrNoTokensToWithdraw)

	require.NoError(t, exec(func(env *xenv.Environment) error {
		return token.New(tokAddr, env.State()).Mint(env, holder, big.NewInt(9))
	}))
	var moved *big.Int
	require.NoError(t, exec(func(env *xenv.Environment) (err error) {
		moved, err = token.WithdrawAll(env, tokAddr, holder, to)
		return
	}))
	assert.Equal(t, big.NewInt(9), moved)

	bal, _ := token.New(tokAddr, st).BalanceOf(to)
	assert.Equal(t, big.NewInt(9), bal)
}
