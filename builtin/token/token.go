// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token keeps ERC20 style balances in the storage of a token contract.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/swell/abi"
	"github.com/vechain/swell/builtin/gen"
	"github.com/vechain/swell/builtin/reverts"
	"github.com/vechain/swell/builtin/solidity"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/xenv"
)

var (
	ErrInsufficientBalance = reverts.NewRequireError("ERC20: transfer amount exceeds balance")
	ErrBurnExceedsBalance  = reverts.NewRequireError("ERC20: burn amount exceeds balance")

	ABI           = abi.MustNew(gen.MustABI("Token"))
	transferEvent = ABI.MustEventByName("Transfer")
)

// Token binder of an ERC20 style token living at addr.
type Token struct {
	addr        swell.Address
	balances    *solidity.Mapping[swell.Address, *big.Int]
	totalSupply *solidity.Uint256
}

func New(addr swell.Address, state *state.State) *Token {
	sctx := solidity.NewContext(addr, state)
	return &Token{
		addr:        addr,
		balances:    solidity.NewMapping[swell.Address, *big.Int](sctx, solidity.Slot("balances")),
		totalSupply: solidity.NewUint256(sctx, solidity.Slot("total-supply")),
	}
}

func (t *Token) Address() swell.Address {
	return t.addr
}

// BalanceOf returns the token balance of account.
func (t *Token) BalanceOf(account swell.Address) (*big.Int, error) {
	return t.balances.Get(account)
}

// TotalSupply returns the amount of tokens in existence.
func (t *Token) TotalSupply() (*big.Int, error) {
	supply, err := t.totalSupply.Get()
	if err != nil {
		return nil, err
	}
	return supply.ToBig(), nil
}

func (t *Token) setBalance(account swell.Address, balance *big.Int) error {
	if balance.Sign() == 0 {
		t.balances.Delete(account)
		return nil
	}
	return t.balances.Set(account, balance)
}

// Mint creates amount tokens for to.
func (t *Token) Mint(env *xenv.Environment, to swell.Address, amount *big.Int) error {
	if to.IsZero() {
		return reverts.ErrCannotBeZeroAddress.WithDetail("mint to the zero address")
	}
	u, err := swell.ToU256(amount)
	if err != nil {
		return err
	}
	if err := t.totalSupply.Add(u); err != nil {
		return err
	}
	bal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.setBalance(to, bal.Add(bal, amount)); err != nil {
		return err
	}
	return env.Log(transferEvent, t.addr, []swell.Bytes32{{}, addressTopic(to)}, amount)
}

// Burn destroys amount tokens of from.
func (t *Token) Burn(env *xenv.Environment, from swell.Address, amount *big.Int) error {
	bal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return ErrBurnExceedsBalance
	}
	u, err := swell.ToU256(amount)
	if err != nil {
		return err
	}
	if err := t.totalSupply.Sub(u); err != nil {
		return errors.WithMessage(err, "total supply")
	}
	if err := t.setBalance(from, bal.Sub(bal, amount)); err != nil {
		return err
	}
	return env.Log(transferEvent, t.addr, []swell.Bytes32{addressTopic(from), {}}, amount)
}

// Transfer moves amount tokens from one account to another.
func (t *Token) Transfer(env *xenv.Environment, from, to swell.Address, amount *big.Int) error {
	if to.IsZero() {
		return reverts.ErrCannotBeZeroAddress.WithDetail("transfer to the zero address")
	}
	if amount.Sign() < 0 {
		return errors.New("negative amount")
	}
	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := t.setBalance(from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.setBalance(to, toBal.Add(toBal, amount)); err != nil {
		return err
	}
	return env.Log(transferEvent, t.addr, []swell.Bytes32{addressTopic(from), addressTopic(to)}, amount)
}

// WithdrawAll moves the whole tokenAddr balance of holder to recipient.
// It fails with reverts.ErrNoTokensToWithdraw when there is nothing to move.
func WithdrawAll(env *xenv.Environment, tokenAddr, holder, recipient swell.Address) (*big.Int, error) {
	t := New(tokenAddr, env.State())
	bal, err := t.BalanceOf(holder)
	if err != nil {
		return nil, err
	}
	if bal.Sign() == 0 {
		return nil, reverts.ErrNoTokensToWithdraw
	}
	if err := t.Transfer(env, holder, recipient, bal); err != nil {
		return nil, err
	}
	return bal, nil
}

func addressTopic(addr swell.Address) swell.Bytes32 {
	return swell.BytesToBytes32(addr.Bytes())
}
