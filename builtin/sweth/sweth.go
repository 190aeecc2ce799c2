// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package sweth implements the swETH ledger: deposits mint swETH at the current rate and
// the bot reprices the swETH to ETH rate from reported reserves.
package sweth

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vechain/swell/abi"
	"github.com/vechain/swell/builtin/access"
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
	ErrNotWhitelisted                 = reverts.NewRequireError("NotWhitelisted")
	ErrInvalidETHDeposit              = reverts.NewRequireError("InvalidETHDeposit")
	ErrNotEnoughTimeElapsedForReprice = reverts.NewRequireError("NotEnoughTimeElapsedForReprice")
	ErrRepriceDifferenceTooLarge      = reverts.NewRequireError("RepriceDifferenceTooLarge")
	ErrRepriceswETHDifferenceTooLarge = reverts.NewRequireError("RepriceswETHDifferenceTooLarge")
	ErrInvalidPercentage              = reverts.NewRequireError("InvalidPercentage")
	ErrRepriceRateTooLow              = reverts.NewRequireError("RepriceRateTooLow")
	ErrTreasuryFeeExceedsReserves     = reverts.NewRequireError("TreasuryFeeExceedsReserves")

	logger = log.WithContext("pkg", "sweth")

	ABI                           = abi.MustNew(gen.MustABI("SwETH"))
	depositReceivedEvent          = ABI.MustEventByName("ETHDepositReceived")
	repriceEvent                  = ABI.MustEventByName("Reprice")
	minRepriceTimeEvent           = ABI.MustEventByName("MinimumRepriceTimeUpdate")
	maxRepriceDiffEvent           = ABI.MustEventByName("MaximumRepriceDifferencePercentageUpdate")
	maxRepriceSwETHDiffEvent      = ABI.MustEventByName("MaximumRepriceswETHDifferencePercentageUpdate")
	treasuryRewardPercentageEvent = ABI.MustEventByName("SwellTreasuryRewardPercentageUpdate")
)

// AllowList decides who may deposit.
type AllowList interface {
	IsAllowed(addr swell.Address) (bool, error)
}

// SwETH binder of the swETH ledger contract.
type SwETH struct {
	addr  swell.Address
	state *state.State
	allow AllowList
	token *token.Token

	initialized                    *solidity.Bool
	accessControl                  *solidity.Address
	totalETHDeposited              *solidity.Uint256
	lastRepriceETHReserves         *solidity.Uint256
	swETHToETHRate                 *solidity.Uint256
	lastRepriceUNIXTime            *solidity.Uint256
	minimumRepriceTime             *solidity.Uint256
	maxRepriceDifferencePercentage *solidity.Uint256
	maxRepriceswETHDifferencePct   *solidity.Uint256
	swellTreasuryRewardPercentage  *solidity.Uint256
}

// New creates the binder. allow may be nil, in which case every deposit is rejected.
func New(addr swell.Address, state *state.State, allow AllowList) *SwETH {
	sctx := solidity.NewContext(addr, state)
	return &SwETH{
		addr:  addr,
		state: state,
		allow: allow,
		token: token.New(addr, state),

		initialized:                    solidity.NewBool(sctx, solidity.Slot("initialized")),
		accessControl:                  solidity.NewAddress(sctx, solidity.Slot("access-control-manager")),
		totalETHDeposited:              solidity.NewUint256(sctx, solidity.Slot("total-eth-deposited")),
		lastRepriceETHReserves:         solidity.NewUint256(sctx, solidity.Slot("last-reprice-eth-reserves")),
		swETHToETHRate:                 solidity.NewUint256(sctx, solidity.Slot("sweth-to-eth-rate")),
		lastRepriceUNIXTime:            solidity.NewUint256(sctx, solidity.Slot("last-reprice-unix-time")),
		minimumRepriceTime:             solidity.NewUint256(sctx, solidity.Slot("minimum-reprice-time")),
		maxRepriceDifferencePercentage: solidity.NewUint256(sctx, solidity.Slot("maximum-reprice-difference-percentage")),
		maxRepriceswETHDifferencePct:   solidity.NewUint256(sctx, solidity.Slot("maximum-reprice-sweth-difference-percentage")),
		swellTreasuryRewardPercentage:  solidity.NewUint256(sctx, solidity.Slot("swell-treasury-reward-percentage")),
	}
}

func (s *SwETH) Address() swell.Address {
	return s.addr
}

// Initialize binds the ledger to the access control manager. It can run once.
func (s *SwETH) Initialize(env *xenv.Environment, accessControl swell.Address) error {
	done, err := s.initialized.Get()
	if err != nil {
		return err
	}
	if done {
		return reverts.ErrAlreadyInitialized
	}
	if accessControl.IsZero() {
		return reverts.ErrCannotBeZeroAddress
	}
	s.initialized.Set(true)
	s.accessControl.Set(&accessControl)
	return nil
}

// AccessControlManager returns the bound access control manager address.
func (s *SwETH) AccessControlManager() (swell.Address, error) {
	return s.accessControl.Get()
}

func (s *SwETH) aca() (*access.AccessControl, error) {
	addr, err := s.accessControl.Get()
	if err != nil {
		return nil, err
	}
	if addr.IsZero() {
		return nil, reverts.ErrNotInitialized
	}
	return access.New(addr, s.state), nil
}

func (s *SwETH) checkRole(role swell.Bytes32, account swell.Address) (*access.AccessControl, error) {
	aca, err := s.aca()
	if err != nil {
		return nil, err
	}
	return aca, aca.CheckRole(role, account)
}

//
// Token views
//

// BalanceOf returns the swETH balance of account.
func (s *SwETH) BalanceOf(account swell.Address) (*big.Int, error) {
	return s.token.BalanceOf(account)
}

// TotalSupply returns the swETH in existence.
func (s *SwETH) TotalSupply() (*big.Int, error) {
	return s.token.TotalSupply()
}

// Transfer moves swETH of the caller.
func (s *SwETH) Transfer(env *xenv.Environment, to swell.Address, amount *big.Int) error {
	return s.token.Transfer(env, env.Caller(), to, amount)
}

//
// Rates
//

// SwETHToETHRate returns ETH per swETH scaled by 1e18, 1e18 before the first reprice.
func (s *SwETH) SwETHToETHRate() (*big.Int, error) {
	rate, err := s.rate()
	if err != nil {
		return nil, err
	}
	return rate.ToBig(), nil
}

// ETHToSwETHRate returns swETH per ETH scaled by 1e18, the inverse of SwETHToETHRate.
func (s *SwETH) ETHToSwETHRate() (*big.Int, error) {
	rate, err := s.ethToSwETHRate()
	if err != nil {
		return nil, err
	}
	return rate.ToBig(), nil
}

func (s *SwETH) ethToSwETHRate() (*uint256.Int, error) {
	rate, err := s.rate()
	if err != nil {
		return nil, err
	}
	return swell.MulDiv(swell.RateScale, swell.RateScale, rate)
}

// rate returns the stored swETH to ETH rate. Until the first reprice, marked by
// lastRepriceUNIXTime, the rate is 1e18. A stored rate is never zero.
func (s *SwETH) rate() (*uint256.Int, error) {
	last, err := s.lastRepriceUNIXTime.Get()
	if err != nil {
		return nil, err
	}
	if last.IsZero() {
		return new(uint256.Int).Set(swell.RateScale), nil
	}
	return s.swETHToETHRate.Get()
}

func (s *SwETH) TotalETHDeposited() (*big.Int, error) {
	return bigOf(s.totalETHDeposited)
}

func (s *SwETH) LastRepriceETHReserves() (*big.Int, error) {
	return bigOf(s.lastRepriceETHReserves)
}

func (s *SwETH) LastRepriceUNIXTime() (uint64, error) {
	v, err := s.lastRepriceUNIXTime.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func (s *SwETH) MinimumRepriceTime() (uint64, error) {
	v, err := s.minimumRepriceTime.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func (s *SwETH) MaximumRepriceDifferencePercentage() (*big.Int, error) {
	return bigOf(s.maxRepriceDifferencePercentage)
}

func (s *SwETH) MaximumRepriceswETHDifferencePercentage() (*big.Int, error) {
	return bigOf(s.maxRepriceswETHDifferencePct)
}

func (s *SwETH) SwellTreasuryRewardPercentage() (*big.Int, error) {
	return bigOf(s.swellTreasuryRewardPercentage)
}

func bigOf(slot *solidity.Uint256) (*big.Int, error) {
	v, err := slot.Get()
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

//
// Deposit and reprice
//

// Deposit mints swETH for the ETH attached to env at the current rate.
// The ETH moves on to the deposit manager when one is registered.
func (s *SwETH) Deposit(env *xenv.Environment) error {
	aca, err := s.aca()
	if err != nil {
		return err
	}
	if err := aca.CheckCoreMethodsNotPaused(); err != nil {
		return err
	}
	depositor := env.Caller()
	allowed := false
	if s.allow != nil {
		if allowed, err = s.allow.IsAllowed(depositor); err != nil {
			return err
		}
	}
	if !allowed {
		return ErrNotWhitelisted.WithDetail(depositor.String())
	}

	value, err := swell.ToU256(env.Value())
	if err != nil {
		return err
	}
	if value.IsZero() {
		return ErrInvalidETHDeposit
	}

	rate, err := s.ethToSwETHRate()
	if err != nil {
		return err
	}
	minted, err := swell.MulDiv(value, rate, swell.RateScale)
	if err != nil {
		return err
	}
	if err := s.token.Mint(env, depositor, minted.ToBig()); err != nil {
		return err
	}
	if err := s.totalETHDeposited.Add(value); err != nil {
		return err
	}
	total, err := s.totalETHDeposited.Get()
	if err != nil {
		return err
	}

	manager, err := aca.DepositManager()
	if err != nil {
		return err
	}
	if !manager.IsZero() {
		if err := s.state.Transfer(s.addr, manager, value.ToBig()); err != nil {
			return err
		}
	}

	return env.Log(depositReceivedEvent, s.addr, []swell.Bytes32{swell.BytesToBytes32(depositor.Bytes())},
		value.ToBig(), minted.ToBig(), total.ToBig())
}

// Reprice sets a new swETH to ETH rate from the reported reserves and swETH supply.
// Every check runs before the first write.
func (s *SwETH) Reprice(env *xenv.Environment, preRewardETHReserves, newETHRewards, swETHTotalSupply *big.Int) error {
	aca, err := s.checkRole(access.Bot, env.Caller())
	if err != nil {
		return err
	}
	if err := aca.CheckBotMethodsNotPaused(); err != nil {
		return err
	}

	now := env.BlockTime()
	last, err := s.LastRepriceUNIXTime()
	if err != nil {
		return err
	}
	if last != 0 {
		minTime, err := s.MinimumRepriceTime()
		if err != nil {
			return err
		}
		var elapsed uint64
		if now > last {
			elapsed = now - last
		}
		if elapsed < minTime {
			return ErrNotEnoughTimeElapsedForReprice
		}
	}

	preReward, err := swell.ToU256(preRewardETHReserves)
	if err != nil {
		return err
	}
	rewards, err := swell.ToU256(newETHRewards)
	if err != nil {
		return err
	}
	supply, err := swell.ToU256(swETHTotalSupply)
	if err != nil {
		return err
	}
	if supply.IsZero() {
		return reverts.ErrCannotBeZero.WithDetail("swETH total supply")
	}
	totalReserves, overflow := new(uint256.Int).AddOverflow(preReward, rewards)
	if overflow {
		return swell.ErrOverflow
	}
	if totalReserves.IsZero() {
		return reverts.ErrCannotBeZero.WithDetail("ETH reserves")
	}

	fee, err := s.treasuryFee(rewards, totalReserves, supply)
	if err != nil {
		return err
	}
	if err := s.checkReserveBound(totalReserves); err != nil {
		return err
	}
	if err := s.checkSupplyBound(supply); err != nil {
		return err
	}

	denominator, overflow := new(uint256.Int).AddOverflow(supply, fee)
	if overflow {
		return swell.ErrOverflow
	}
	newRate, err := swell.MulDiv(totalReserves, swell.RateScale, denominator)
	if err != nil {
		return err
	}
	if newRate.IsZero() {
		return ErrRepriceRateTooLow.WithDetail(totalReserves.Dec())
	}
	oldRate, err := s.SwETHToETHRate()
	if err != nil {
		return err
	}

	s.lastRepriceETHReserves.Set(totalReserves)
	s.swETHToETHRate.Set(newRate)
	s.lastRepriceUNIXTime.Set(uint256.NewInt(now))

	if !fee.IsZero() {
		treasury, err := aca.SwellTreasury()
		if err != nil {
			return err
		}
		if err := s.token.Mint(env, treasury, fee.ToBig()); err != nil {
			return err
		}
	}

	logger.Debug("repriced", "oldRate", oldRate, "newRate", newRate, "reserves", totalReserves, "fee", fee)

	return env.Log(repriceEvent, s.addr, nil,
		oldRate, newRate.ToBig(), totalReserves.ToBig(), new(big.Int).SetUint64(now), fee.ToBig())
}

// treasuryFee returns the swETH minted to the treasury so that it owns feePct of the rewards
// at the new rate.
func (s *SwETH) treasuryFee(rewards, totalReserves, supply *uint256.Int) (*uint256.Int, error) {
	feePct, err := s.swellTreasuryRewardPercentage.Get()
	if err != nil {
		return nil, err
	}
	if feePct.IsZero() || rewards.IsZero() {
		return new(uint256.Int), nil
	}
	feeETH, err := swell.MulDiv(rewards, feePct, swell.RateScale)
	if err != nil {
		return nil, err
	}
	if feeETH.IsZero() {
		return new(uint256.Int), nil
	}
	remaining := new(uint256.Int).Sub(totalReserves, feeETH)
	if remaining.IsZero() {
		return nil, ErrTreasuryFeeExceedsReserves
	}
	return swell.MulDiv(feeETH, supply, remaining)
}

// checkReserveBound bounds the relative change of reserves against the last reprice.
func (s *SwETH) checkReserveBound(totalReserves *uint256.Int) error {
	last, err := s.lastRepriceETHReserves.Get()
	if err != nil {
		return err
	}
	if last.IsZero() {
		return nil
	}
	maxDiff, err := s.maxRepriceDifferencePercentage.Get()
	if err != nil {
		return err
	}
	diff, err := swell.MulDivUp(swell.AbsDiff(totalReserves, last), swell.RateScale, last)
	if err != nil {
		return err
	}
	if diff.Gt(maxDiff) {
		return ErrRepriceDifferenceTooLarge.WithDetail(diff.Dec())
	}
	return nil
}

// checkSupplyBound bounds the reported swETH supply against the ledger's own supply.
func (s *SwETH) checkSupplyBound(reported *uint256.Int) error {
	current, err := s.token.TotalSupply()
	if err != nil {
		return err
	}
	if current.Sign() == 0 {
		return nil
	}
	cur, err := swell.ToU256(current)
	if err != nil {
		return err
	}
	maxDiff, err := s.maxRepriceswETHDifferencePct.Get()
	if err != nil {
		return err
	}
	diff, err := swell.MulDivUp(swell.AbsDiff(reported, cur), swell.RateScale, cur)
	if err != nil {
		return err
	}
	if diff.Gt(maxDiff) {
		return ErrRepriceswETHDifferenceTooLarge.WithDetail(diff.Dec())
	}
	return nil
}

//
// Admin
//

func (s *SwETH) SetMinimumRepriceTime(env *xenv.Environment, value uint64) error {
	return s.setParam(env, s.minimumRepriceTime, minRepriceTimeEvent, uint256.NewInt(value))
}

func (s *SwETH) SetMaximumRepriceDifferencePercentage(env *xenv.Environment, value *big.Int) error {
	v, err := swell.ToU256(value)
	if err != nil {
		return err
	}
	return s.setParam(env, s.maxRepriceDifferencePercentage, maxRepriceDiffEvent, v)
}

func (s *SwETH) SetMaximumRepriceswETHDifferencePercentage(env *xenv.Environment, value *big.Int) error {
	v, err := swell.ToU256(value)
	if err != nil {
		return err
	}
	return s.setParam(env, s.maxRepriceswETHDifferencePct, maxRepriceSwETHDiffEvent, v)
}

// SetSwellTreasuryRewardPercentage sets the share of new rewards paid to the treasury, at most 1e18.
func (s *SwETH) SetSwellTreasuryRewardPercentage(env *xenv.Environment, value *big.Int) error {
	v, err := swell.ToU256(value)
	if err != nil {
		return err
	}
	if v.Gt(swell.RateScale) {
		return ErrInvalidPercentage.WithDetail(v.Dec())
	}
	return s.setParam(env, s.swellTreasuryRewardPercentage, treasuryRewardPercentageEvent, v)
}

func (s *SwETH) setParam(env *xenv.Environment, slot *solidity.Uint256, event *abi.Event, value *uint256.Int) error {
	if _, err := s.checkRole(access.PlatformAdmin, env.Caller()); err != nil {
		return err
	}
	old, err := slot.Get()
	if err != nil {
		return err
	}
	slot.Set(value)
	return env.Log(event, s.addr, nil, old.ToBig(), value.ToBig())
}

// WithdrawERC20 sends the whole tokenAddr balance held by the ledger to the treasury.
func (s *SwETH) WithdrawERC20(env *xenv.Environment, tokenAddr swell.Address) error {
	aca, err := s.checkRole(access.PlatformAdmin, env.Caller())
	if err != nil {
		return err
	}
	return access.WithdrawERC20To(env, aca, tokenAddr, s.addr)
}
