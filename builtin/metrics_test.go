// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/swell/abi"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/test/datagen"
	"github.com/vechain/swell/tx"
)

type meter struct {
	value int64
}

func (m *meter) Add(v int64) { m.value += v }
func (m *meter) Set(v int64) { m.value = v }

func newEvent(t *testing.T, addr swell.Address, ev *abi.Event, topics []swell.Bytes32, args ...any) *tx.Event {
	data, err := ev.Encode(args...)
	require.NoError(t, err)
	return &tx.Event{
		Address: addr,
		Topics:  append([]swell.Bytes32{ev.ID()}, topics...),
		Data:    data,
	}
}

func TestMetricsSink(t *testing.T) {
	var funded, flow, rate meter
	sink := &MetricsSink{validatorsFunded: &funded, poolFlow: &flow, rate: &rate}

	from := swell.BytesToBytes32(datagen.RandAddress().Bytes())
	require.NoError(t, sink.Publish(&tx.Receipt{
		Seq: 1,
		Events: tx.Events{
			newEvent(t, DepositManager.Address, ethReceivedEvent, []swell.Bytes32{from}, ether(70)),
			// same event from another contract is ignored
			newEvent(t, SwETH.Address, ethReceivedEvent, []swell.Bytes32{from}, ether(5)),
		},
	}))
	assert.Equal(t, int64(70), flow.value)

	require.NoError(t, sink.Publish(&tx.Receipt{
		Seq: 2,
		Events: tx.Events{
			newEvent(t, DepositManager.Address, validatorFundedEvent, nil, datagen.RandPubKey(), swell.ValidatorDepositAmount),
			newEvent(t, DepositManager.Address, validatorFundedEvent, nil, datagen.RandPubKey(), swell.ValidatorDepositAmount),
		},
	}))
	assert.Equal(t, int64(2), funded.value)
	assert.Equal(t, int64(6), flow.value)

	require.NoError(t, sink.Publish(&tx.Receipt{
		Seq: 3,
		Events: tx.Events{
			newEvent(t, SwETH.Address, repriceEvent, nil,
				swell.Ether, big.NewInt(1015e15), ether(65), big.NewInt(1000), new(big.Int)),
		},
	}))
	assert.Equal(t, int64(1015e6), rate.value)

	// reverted calls carry no events and leave the meters alone
	require.NoError(t, sink.Publish(&tx.Receipt{Seq: 4, Reverted: true}))
	assert.Equal(t, int64(6), flow.value)

	err := sink.Publish(&tx.Receipt{
		Seq:    5,
		Events: tx.Events{{Address: SwETH.Address, Topics: []swell.Bytes32{repriceEvent.ID()}, Data: []byte{1}}},
	})
	assert.ErrorContains(t, err, "receipt 5")
}
