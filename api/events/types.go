// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vechain/swell/logdb"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/tx"
)

// LogMeta locates an event in the call history.
type LogMeta struct {
	Seq    uint64        `json:"seq"`
	Index  uint32        `json:"index"`
	Time   uint64        `json:"time"`
	Caller swell.Address `json:"caller"`
	Method string        `json:"method"`
}

// FilteredEvent only comes from one contract
type FilteredEvent struct {
	Address swell.Address    `json:"address"`
	Topics  []*swell.Bytes32 `json:"topics"`
	Data    string           `json:"data"`
	Meta    LogMeta          `json:"meta"`
}

// ConvertEvent converts a logdb.Event into a json format Event.
func ConvertEvent(event *logdb.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Address: event.Address,
		Data:    hexutil.Encode(event.Data),
		Meta: LogMeta{
			Seq:    event.Seq,
			Index:  event.Index,
			Time:   event.Time,
			Caller: event.Caller,
			Method: event.Method,
		},
	}
	fe.Topics = make([]*swell.Bytes32, 0)
	for _, topic := range event.Topics {
		if topic != nil {
			fe.Topics = append(fe.Topics, topic)
		}
	}
	return fe
}

// ConvertReceipt converts the events of an executed call.
func ConvertReceipt(receipt *tx.Receipt) []*FilteredEvent {
	result := make([]*FilteredEvent, 0, len(receipt.Events))
	for i, e := range receipt.Events {
		fe := &FilteredEvent{
			Address: e.Address,
			Data:    hexutil.Encode(e.Data),
			Meta: LogMeta{
				Seq:    receipt.Seq,
				Index:  uint32(i),
				Time:   receipt.Time,
				Caller: receipt.Caller,
				Method: receipt.Method,
			},
		}
		fe.Topics = make([]*swell.Bytes32, 0, len(e.Topics))
		for j := range e.Topics {
			fe.Topics = append(fe.Topics, &e.Topics[j])
		}
		result = append(result, fe)
	}
	return result
}
