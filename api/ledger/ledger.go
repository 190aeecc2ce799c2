// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/vechain/swell/api/utils"
	"github.com/vechain/swell/builtin"
	"github.com/vechain/swell/runtime"
	"github.com/vechain/swell/state"
)

type Ledger struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Ledger {
	return &Ledger{rt}
}

func hex(v *big.Int) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(v)
}

func (l *Ledger) snapshot(st *state.State, now uint64) (*Snapshot, error) {
	swETH := builtin.SwETH.WithState(st)
	aca := builtin.AccessControl.WithState(st)
	snap := &Snapshot{Time: now}

	var err error
	read := func(f func() (*big.Int, error)) *math.HexOrDecimal256 {
		if err != nil {
			return nil
		}
		var v *big.Int
		v, err = f()
		return hex(v)
	}
	snap.SwETHToETHRate = read(swETH.SwETHToETHRate)
	snap.ETHToSwETHRate = read(swETH.ETHToSwETHRate)
	snap.TotalSupply = read(swETH.TotalSupply)
	snap.TotalETHDeposited = read(swETH.TotalETHDeposited)
	snap.LastRepriceETHReserves = read(swETH.LastRepriceETHReserves)
	snap.PoolBalance = read(builtin.DepositManager.WithState(st).PoolBalance)
	snap.Params.MaximumRepriceDifferencePercentage = read(swETH.MaximumRepriceDifferencePercentage)
	snap.Params.MaximumRepriceSwETHDifferencePercentage = read(swETH.MaximumRepriceswETHDifferencePercentage)
	snap.Params.SwellTreasuryRewardPercentage = read(swETH.SwellTreasuryRewardPercentage)
	if err != nil {
		return nil, err
	}

	if snap.LastRepriceUNIXTime, err = swETH.LastRepriceUNIXTime(); err != nil {
		return nil, err
	}
	if snap.Params.MinimumRepriceTime, err = swETH.MinimumRepriceTime(); err != nil {
		return nil, err
	}
	if snap.ValidatorsFunded, err = builtin.BeaconDeposit.WithState(st).DepositCount(); err != nil {
		return nil, err
	}
	if snap.Paused.CoreMethods, err = aca.CoreMethodsPaused(); err != nil {
		return nil, err
	}
	if snap.Paused.BotMethods, err = aca.BotMethodsPaused(); err != nil {
		return nil, err
	}
	if snap.Treasury, err = aca.SwellTreasury(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (l *Ledger) handleGetLedger(w http.ResponseWriter, _ *http.Request) error {
	var snap *Snapshot
	if err := l.rt.Query(func(st *state.State, now uint64) (err error) {
		snap, err = l.snapshot(st, now)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, snap)
}

func (l *Ledger) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /ledger").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetLedger))
}
