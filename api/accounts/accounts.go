// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/swell/api/utils"
	"github.com/vechain/swell/builtin"
	"github.com/vechain/swell/runtime"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
)

// Account shows the balances and flags of an address.
type Account struct {
	Balance      math.HexOrDecimal256 `json:"balance"`
	SwETHBalance math.HexOrDecimal256 `json:"swETHBalance"`
	// swETH balance valued in ETH at the current rate
	SwETHValue  math.HexOrDecimal256 `json:"swETHValue"`
	Whitelisted bool                 `json:"whitelisted"`
	Operator    bool                 `json:"operator"`
	// next transaction nonce
	Nonce uint64 `json:"nonce"`
}

type Accounts struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Accounts {
	return &Accounts{rt}
}

func (a *Accounts) getAccount(addr swell.Address) (*Account, error) {
	var acc Account
	err := a.rt.Query(func(st *state.State, _ uint64) error {
		balance, err := st.GetBalance(addr)
		if err != nil {
			return err
		}
		swETH := builtin.SwETH.WithState(st)
		shares, err := swETH.BalanceOf(addr)
		if err != nil {
			return err
		}
		rate, err := swETH.SwETHToETHRate()
		if err != nil {
			return err
		}
		if acc.Whitelisted, err = builtin.Whitelist.WithState(st).IsAllowed(addr); err != nil {
			return err
		}
		if acc.Operator, err = builtin.NodeOperatorRegistry.WithState(st).IsOperator(addr); err != nil {
			return err
		}
		if acc.Nonce, err = st.GetNonce(addr); err != nil {
			return err
		}
		value := new(big.Int).Mul(shares, rate)
		value.Div(value, swell.Ether)

		acc.Balance = math.HexOrDecimal256(*balance)
		acc.SwETHBalance = math.HexOrDecimal256(*shares)
		acc.SwETHValue = math.HexOrDecimal256(*value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := swell.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	acc, err := a.getAccount(*addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}
