// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/swell/abi"
	"github.com/vechain/swell/builtin/registry"
	"github.com/vechain/swell/builtin/reverts"
	"github.com/vechain/swell/builtin/token"
	"github.com/vechain/swell/runtime"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/xenv"
)

var (
	errMethodNotFound        = errors.New("native call: method not found")
	errDetailsLengthMismatch = reverts.NewRequireError("PubKeysSignaturesLengthMismatch")
)

func init() {
	nativeMethods := []*nativeMethod{
		AccessControl.impl("initialize", false, func(env *bridge) ([]any, error) {
			var args struct {
				Admin         common.Address
				SwellTreasury common.Address
			}
			env.ParseArgs(&args)
			return nil, AccessControl.WithState(env.State()).Initialize(env.Environment, swell.Address(args.Admin), swell.Address(args.SwellTreasury))
		}),
		AccessControl.impl("hasRole", true, func(env *bridge) ([]any, error) {
			var args struct {
				Role    common.Hash
				Account common.Address
			}
			env.ParseArgs(&args)
			ok, err := AccessControl.WithState(env.State()).HasRole(swell.Bytes32(args.Role), swell.Address(args.Account))
			return []any{ok}, err
		}),
		AccessControl.impl("grantRole", false, func(env *bridge) ([]any, error) {
			var args struct {
				Role    common.Hash
				Account common.Address
			}
			env.ParseArgs(&args)
			return nil, AccessControl.WithState(env.State()).GrantRole(env.Environment, swell.Bytes32(args.Role), swell.Address(args.Account))
		}),
		AccessControl.impl("revokeRole", false, func(env *bridge) ([]any, error) {
			var args struct {
				Role    common.Hash
				Account common.Address
			}
			env.ParseArgs(&args)
			return nil, AccessControl.WithState(env.State()).RevokeRole(env.Environment, swell.Bytes32(args.Role), swell.Address(args.Account))
		}),
		AccessControl.impl("renounceRole", false, func(env *bridge) ([]any, error) {
			var role common.Hash
			env.ParseArgs(&role)
			return nil, AccessControl.WithState(env.State()).RenounceRole(env.Environment, swell.Bytes32(role))
		}),
		AccessControl.impl("setSwellTreasury", false, func(env *bridge) ([]any, error) {
			var addr common.Address
			env.ParseArgs(&addr)
			return nil, AccessControl.WithState(env.State()).SetSwellTreasury(env.Environment, swell.Address(addr))
		}),
		AccessControl.impl("setDepositManager", false, func(env *bridge) ([]any, error) {
			var addr common.Address
			env.ParseArgs(&addr)
			return nil, AccessControl.WithState(env.State()).SetDepositManager(env.Environment, swell.Address(addr))
		}),
		AccessControl.impl("setNodeOperatorRegistry", false, func(env *bridge) ([]any, error) {
			var addr common.Address
			env.ParseArgs(&addr)
			return nil, AccessControl.WithState(env.State()).SetNodeOperatorRegistry(env.Environment, swell.Address(addr))
		}),
		AccessControl.impl("pauseCoreMethods", false, func(env *bridge) ([]any, error) {
			return nil, AccessControl.WithState(env.State()).PauseCoreMethods(env.Environment)
		}),
		AccessControl.impl("unpauseCoreMethods", false, func(env *bridge) ([]any, error) {
			return nil, AccessControl.WithState(env.State()).UnpauseCoreMethods(env.Environment)
		}),
		AccessControl.impl("pauseBotMethods", false, func(env *bridge) ([]any, error) {
			return nil, AccessControl.WithState(env.State()).PauseBotMethods(env.Environment)
		}),
		AccessControl.impl("unpauseBotMethods", false, func(env *bridge) ([]any, error) {
			return nil, AccessControl.WithState(env.State()).UnpauseBotMethods(env.Environment)
		}),
		AccessControl.impl("coreMethodsPaused", true, func(env *bridge) ([]any, error) {
			paused, err := AccessControl.WithState(env.State()).CoreMethodsPaused()
			return []any{paused}, err
		}),
		AccessControl.impl("botMethodsPaused", true, func(env *bridge) ([]any, error) {
			paused, err := AccessControl.WithState(env.State()).BotMethodsPaused()
			return []any{paused}, err
		}),
		AccessControl.impl("swellTreasury", true, func(env *bridge) ([]any, error) {
			return addressOutput(AccessControl.WithState(env.State()).SwellTreasury())
		}),
		AccessControl.impl("depositManager", true, func(env *bridge) ([]any, error) {
			return addressOutput(AccessControl.WithState(env.State()).DepositManager())
		}),
		AccessControl.impl("nodeOperatorRegistry", true, func(env *bridge) ([]any, error) {
			return addressOutput(AccessControl.WithState(env.State()).NodeOperatorRegistry())
		}),
		AccessControl.impl("withdrawERC20", false, func(env *bridge) ([]any, error) {
			var tokenAddr common.Address
			env.ParseArgs(&tokenAddr)
			return nil, AccessControl.WithState(env.State()).WithdrawERC20(env.Environment, swell.Address(tokenAddr))
		}),

		SwETH.impl("initialize", false, func(env *bridge) ([]any, error) {
			var aca common.Address
			env.ParseArgs(&aca)
			return nil, SwETH.WithState(env.State()).Initialize(env.Environment, swell.Address(aca))
		}),
		SwETH.impl("deposit", false, func(env *bridge) ([]any, error) {
			return nil, SwETH.WithState(env.State()).Deposit(env.Environment)
		}).Payable(),
		SwETH.impl("reprice", false, func(env *bridge) ([]any, error) {
			var args struct {
				PreRewardETHReserves *big.Int
				NewETHRewards        *big.Int
				SwETHTotalSupply     *big.Int
			}
			env.ParseArgs(&args)
			return nil, SwETH.WithState(env.State()).Reprice(env.Environment, args.PreRewardETHReserves, args.NewETHRewards, args.SwETHTotalSupply)
		}),
		SwETH.impl("swETHToETHRate", true, func(env *bridge) ([]any, error) {
			return uintOutput(SwETH.WithState(env.State()).SwETHToETHRate())
		}),
		SwETH.impl("ethToSwETHRate", true, func(env *bridge) ([]any, error) {
			return uintOutput(SwETH.WithState(env.State()).ETHToSwETHRate())
		}),
		SwETH.impl("totalETHDeposited", true, func(env *bridge) ([]any, error) {
			return uintOutput(SwETH.WithState(env.State()).TotalETHDeposited())
		}),
		SwETH.impl("lastRepriceETHReserves", true, func(env *bridge) ([]any, error) {
			return uintOutput(SwETH.WithState(env.State()).LastRepriceETHReserves())
		}),
		SwETH.impl("lastRepriceUNIXTime", true, func(env *bridge) ([]any, error) {
			v, err := SwETH.WithState(env.State()).LastRepriceUNIXTime()
			return []any{new(big.Int).SetUint64(v)}, err
		}),
		SwETH.impl("minimumRepriceTime", true, func(env *bridge) ([]any, error) {
			v, err := SwETH.WithState(env.State()).MinimumRepriceTime()
			return []any{new(big.Int).SetUint64(v)}, err
		}),
		SwETH.impl("maximumRepriceDifferencePercentage", true, func(env *bridge) ([]any, error) {
			return uintOutput(SwETH.WithState(env.State()).MaximumRepriceDifferencePercentage())
		}),
		SwETH.impl("maximumRepriceswETHDifferencePercentage", true, func(env *bridge) ([]any, error) {
			return uintOutput(SwETH.WithState(env.State()).MaximumRepriceswETHDifferencePercentage())
		}),
		SwETH.impl("swellTreasuryRewardPercentage", true, func(env *bridge) ([]any, error) {
			return uintOutput(SwETH.WithState(env.State()).SwellTreasuryRewardPercentage())
		}),
		SwETH.impl("setMinimumRepriceTime", false, func(env *bridge) ([]any, error) {
			var v *big.Int
			env.ParseArgs(&v)
			if !v.IsUint64() {
				return nil, swell.ErrOverflow
			}
			return nil, SwETH.WithState(env.State()).SetMinimumRepriceTime(env.Environment, v.Uint64())
		}),
		SwETH.impl("setMaximumRepriceDifferencePercentage", false, func(env *bridge) ([]any, error) {
			var v *big.Int
			env.ParseArgs(&v)
			return nil, SwETH.WithState(env.State()).SetMaximumRepriceDifferencePercentage(env.Environment, v)
		}),
		SwETH.impl("setMaximumRepriceswETHDifferencePercentage", false, func(env *bridge) ([]any, error) {
			var v *big.Int
			env.ParseArgs(&v)
			return nil, SwETH.WithState(env.State()).SetMaximumRepriceswETHDifferencePercentage(env.Environment, v)
		}),
		SwETH.impl("setSwellTreasuryRewardPercentage", false, func(env *bridge) ([]any, error) {
			var v *big.Int
			env.ParseArgs(&v)
			return nil, SwETH.WithState(env.State()).SetSwellTreasuryRewardPercentage(env.Environment, v)
		}),
		SwETH.impl("withdrawERC20", false, func(env *bridge) ([]any, error) {
			var tokenAddr common.Address
			env.ParseArgs(&tokenAddr)
			return nil, SwETH.WithState(env.State()).WithdrawERC20(env.Environment, swell.Address(tokenAddr))
		}),
		implOf(SwETH.Address, token.ABI, "balanceOf", true, func(env *bridge) ([]any, error) {
			var account common.Address
			env.ParseArgs(&account)
			return uintOutput(SwETH.WithState(env.State()).BalanceOf(swell.Address(account)))
		}),
		implOf(SwETH.Address, token.ABI, "totalSupply", true, func(env *bridge) ([]any, error) {
			return uintOutput(SwETH.WithState(env.State()).TotalSupply())
		}),
		implOf(SwETH.Address, token.ABI, "transfer", false, func(env *bridge) ([]any, error) {
			var args struct {
				To     common.Address
				Amount *big.Int
			}
			env.ParseArgs(&args)
			if err := SwETH.WithState(env.State()).Transfer(env.Environment, swell.Address(args.To), args.Amount); err != nil {
				return nil, err
			}
			return []any{true}, nil
		}),

		Whitelist.impl("isAllowed", true, func(env *bridge) ([]any, error) {
			var addr common.Address
			env.ParseArgs(&addr)
			ok, err := Whitelist.WithState(env.State()).IsAllowed(swell.Address(addr))
			return []any{ok}, err
		}),
		Whitelist.impl("whitelistEnabled", true, func(env *bridge) ([]any, error) {
			ok, err := Whitelist.WithState(env.State()).Enabled()
			return []any{ok}, err
		}),
		Whitelist.impl("addToWhitelist", false, func(env *bridge) ([]any, error) {
			var addr common.Address
			env.ParseArgs(&addr)
			return nil, Whitelist.WithState(env.State()).AddToWhitelist(env.Environment, swell.Address(addr))
		}),
		Whitelist.impl("removeFromWhitelist", false, func(env *bridge) ([]any, error) {
			var addr common.Address
			env.ParseArgs(&addr)
			return nil, Whitelist.WithState(env.State()).RemoveFromWhitelist(env.Environment, swell.Address(addr))
		}),
		Whitelist.impl("enableWhitelist", false, func(env *bridge) ([]any, error) {
			return nil, Whitelist.WithState(env.State()).EnableWhitelist(env.Environment)
		}),
		Whitelist.impl("disableWhitelist", false, func(env *bridge) ([]any, error) {
			return nil, Whitelist.WithState(env.State()).DisableWhitelist(env.Environment)
		}),

		NodeOperatorRegistry.impl("addOperator", false, func(env *bridge) ([]any, error) {
			var operator common.Address
			env.ParseArgs(&operator)
			return nil, NodeOperatorRegistry.WithState(env.State()).AddOperator(env.Environment, swell.Address(operator))
		}),
		NodeOperatorRegistry.impl("addValidatorDetails", false, func(env *bridge) ([]any, error) {
			var args struct {
				PubKeys    [][]byte
				Signatures [][]byte
			}
			env.ParseArgs(&args)
			if len(args.PubKeys) != len(args.Signatures) {
				return nil, errDetailsLengthMismatch
			}
			details := make([]registry.ValidatorDetails, 0, len(args.PubKeys))
			for i := range args.PubKeys {
				details = append(details, registry.ValidatorDetails{PubKey: args.PubKeys[i], Signature: args.Signatures[i]})
			}
			return nil, NodeOperatorRegistry.WithState(env.State()).AddValidatorDetails(env.Environment, details)
		}),
		NodeOperatorRegistry.impl("usePubKeysForValidatorSetup", false, func(env *bridge) ([]any, error) {
			var pubKeys [][]byte
			env.ParseArgs(&pubKeys)
			_, err := NodeOperatorRegistry.WithState(env.State()).UsePubKeysForValidatorSetup(env.Environment, pubKeys)
			return nil, err
		}),

		DepositManager.impl("initialize", false, func(env *bridge) ([]any, error) {
			var aca common.Address
			env.ParseArgs(&aca)
			return nil, DepositManager.WithState(env.State()).Initialize(env.Environment, swell.Address(aca))
		}),
		DepositManager.impl("setupValidators", false, func(env *bridge) ([]any, error) {
			var args struct {
				PubKeys         [][]byte
				DepositDataRoot common.Hash
			}
			env.ParseArgs(&args)
			return nil, DepositManager.WithState(env.State()).SetupValidators(env.Environment, args.PubKeys, swell.Bytes32(args.DepositDataRoot))
		}),
		DepositManager.impl("getWithdrawalCredentials", true, func(env *bridge) ([]any, error) {
			return []any{DepositManager.WithState(env.State()).WithdrawalCredentials()}, nil
		}),
		DepositManager.impl("withdrawERC20", false, func(env *bridge) ([]any, error) {
			var tokenAddr common.Address
			env.ParseArgs(&tokenAddr)
			return nil, DepositManager.WithState(env.State()).WithdrawERC20(env.Environment, swell.Address(tokenAddr))
		}),

		BeaconDeposit.impl("deposit", false, func(env *bridge) ([]any, error) {
			var args struct {
				Pubkey                []byte
				WithdrawalCredentials []byte
				Signature             []byte
				DepositDataRoot       common.Hash
			}
			env.ParseArgs(&args)
			return nil, BeaconDeposit.WithState(env.State()).Deposit(env.Environment,
				args.Pubkey, args.WithdrawalCredentials, args.Signature, swell.Bytes32(args.DepositDataRoot))
		}).Payable(),
		BeaconDeposit.impl("get_deposit_count", true, func(env *bridge) ([]any, error) {
			n, err := BeaconDeposit.WithState(env.State()).DepositCount()
			return []any{binary.LittleEndian.AppendUint64(nil, n)}, err
		}),
	}

	for _, nmethod := range nativeMethods {
		methodMap[methodKey{
			nmethod.addr, nmethod.method.ID(),
		}] = nmethod
	}
}

type methodKey struct {
	swell.Address
	abi.MethodID
}

var methodMap = make(map[methodKey]*nativeMethod)

func addressOutput(addr swell.Address, err error) ([]any, error) {
	return []any{common.Address(addr)}, err
}

func uintOutput(v *big.Int, err error) ([]any, error) {
	return []any{v}, err
}

// NativeCall is an abi encoded call resolved to a builtin contract method.
type NativeCall struct {
	Contract swell.Address
	Method   string
	// true when the method only reads state
	View bool
	Run  func(env *xenv.Environment) ([]byte, error)
}

// Runtime wraps the call for runtime.Exec. The abi encoded output is stored into output on success.
func (c *NativeCall) Runtime(caller swell.Address, value *big.Int, output *[]byte) runtime.Call {
	return runtime.Call{
		Caller:   caller,
		Contract: c.Contract,
		Method:   c.Method,
		Value:    value,
		Run: func(env *xenv.Environment) error {
			out, err := c.Run(env)
			if err != nil {
				return err
			}
			if output != nil {
				*output = out
			}
			return nil
		},
	}
}

// HandleNativeCall resolves input sent to the builtin contract at to.
// Empty input sent to the deposit manager funds its pool.
func HandleNativeCall(to swell.Address, input []byte) (*NativeCall, error) {
	if len(input) == 0 {
		if to != DepositManager.Address {
			return nil, errMethodNotFound
		}
		return &NativeCall{
			Contract: to,
			Method:   "receive",
			Run: func(env *xenv.Environment) ([]byte, error) {
				return nil, DepositManager.WithState(env.State()).Receive(env)
			},
		}, nil
	}

	methodID, err := abi.ExtractMethodID(input)
	if err != nil {
		return nil, errors.WithMessage(errMethodNotFound, err.Error())
	}
	method := methodMap[methodKey{to, methodID}]
	if method == nil {
		return nil, errMethodNotFound
	}
	return &NativeCall{
		Contract: to,
		Method:   method.method.Name(),
		View:     method.view,
		Run: func(env *xenv.Environment) ([]byte, error) {
			return method.call(env, input)
		},
	}, nil
}
