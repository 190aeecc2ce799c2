// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/swell/swell"
)

// Snapshot is a snapshot of the swETH ledger and the funding pool.
type Snapshot struct {
	Time                   uint64                `json:"time"`
	SwETHToETHRate         *math.HexOrDecimal256 `json:"swETHToETHRate"`
	ETHToSwETHRate         *math.HexOrDecimal256 `json:"ethToSwETHRate"`
	TotalSupply            *math.HexOrDecimal256 `json:"totalSupply"`
	TotalETHDeposited      *math.HexOrDecimal256 `json:"totalETHDeposited"`
	LastRepriceETHReserves *math.HexOrDecimal256 `json:"lastRepriceETHReserves"`
	LastRepriceUNIXTime    uint64                `json:"lastRepriceUNIXTime"`
	PoolBalance            *math.HexOrDecimal256 `json:"poolBalance"`
	ValidatorsFunded       uint64                `json:"validatorsFunded"`
	Params                 Params                `json:"params"`
	Paused                 Paused                `json:"paused"`
	Treasury               swell.Address         `json:"treasury"`
}

type Params struct {
	MinimumRepriceTime                      uint64                `json:"minimumRepriceTime"`
	MaximumRepriceDifferencePercentage      *math.HexOrDecimal256 `json:"maximumRepriceDifferencePercentage"`
	MaximumRepriceSwETHDifferencePercentage *math.HexOrDecimal256 `json:"maximumRepriceSwETHDifferencePercentage"`
	SwellTreasuryRewardPercentage           *math.HexOrDecimal256 `json:"swellTreasuryRewardPercentage"`
}

type Paused struct {
	CoreMethods bool `json:"coreMethods"`
	BotMethods  bool `json:"botMethods"`
}
