// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/swell/builtin/deposit"
	"github.com/vechain/swell/builtin/sweth"
	"github.com/vechain/swell/metrics"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/tx"
)

var (
	metricValidatorsFunded = metrics.LazyLoadCounter("deposit_validators_funded_count")
	// whole ether received minus ether spent on validators
	metricPoolFlow = metrics.LazyLoadGauge("deposit_pool_flow_ether")
	metricRate     = metrics.LazyLoadGauge("sweth_to_eth_rate_gwei")

	ethReceivedEvent     = deposit.ABI.MustEventByName("ETHReceived")
	validatorFundedEvent = deposit.ABI.MustEventByName("ValidatorFunded")
	repriceEvent         = sweth.ABI.MustEventByName("Reprice")

	gwei = big.NewInt(1e9)
)

// MetricsSink updates the ledger meters from committed receipts.
type MetricsSink struct {
	validatorsFunded metrics.CountMeter
	poolFlow         metrics.GaugeMeter
	rate             metrics.GaugeMeter
}

// NewMetricsSink creates a sink on the process wide meters.
func NewMetricsSink() *MetricsSink {
	return &MetricsSink{
		validatorsFunded: metricValidatorsFunded(),
		poolFlow:         metricPoolFlow(),
		rate:             metricRate(),
	}
}

// Publish implements runtime.Sink. Reverted receipts carry no events.
func (m *MetricsSink) Publish(receipt *tx.Receipt) error {
	for _, ev := range receipt.Events {
		if len(ev.Topics) == 0 {
			continue
		}
		var err error
		switch {
		case ev.Address == DepositManager.Address && ev.Topics[0] == ethReceivedEvent.ID():
			var amount *big.Int
			if err = ethReceivedEvent.Decode(ev.Data, &amount); err == nil {
				m.poolFlow.Add(wholeEther(amount))
			}
		case ev.Address == DepositManager.Address && ev.Topics[0] == validatorFundedEvent.ID():
			var funded struct {
				PubKey []byte
				Amount *big.Int
			}
			if err = validatorFundedEvent.Decode(ev.Data, &funded); err == nil {
				m.validatorsFunded.Add(1)
				m.poolFlow.Add(-wholeEther(funded.Amount))
			}
		case ev.Address == SwETH.Address && ev.Topics[0] == repriceEvent.ID():
			var repriced struct {
				OldSwETHToETHRate    *big.Int
				NewSwETHToETHRate    *big.Int
				NewETHReserves       *big.Int
				RepriceTime          *big.Int
				SwellTreasuryRewards *big.Int
			}
			if err = repriceEvent.Decode(ev.Data, &repriced); err == nil {
				m.rate.Set(new(big.Int).Div(repriced.NewSwETHToETHRate, gwei).Int64())
			}
		}
		if err != nil {
			return errors.WithMessagef(err, "decode event of receipt %d", receipt.Seq)
		}
	}
	return nil
}

func wholeEther(wei *big.Int) int64 {
	return new(big.Int).Div(wei, swell.Ether).Int64()
}
