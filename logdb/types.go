// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/tx"
)

// Event represents tx.Event that can be stored in db.
type Event struct {
	Seq     uint64
	Index   uint32
	Time    uint64
	Address swell.Address // always a contract address
	Topics  [4]*swell.Bytes32
	Data    []byte
	Caller  swell.Address // caller of the entry point
	Method  string
}

// newEvent converts tx.Event to Event.
func newEvent(receipt *tx.Receipt, index uint32, txEvent *tx.Event) *Event {
	ev := &Event{
		Seq:     receipt.Seq,
		Index:   index,
		Time:    receipt.Time,
		Address: txEvent.Address,
		Data:    txEvent.Data,
		Caller:  receipt.Caller,
		Method:  receipt.Method,
	}
	for i := 0; i < len(txEvent.Topics) && i < len(ev.Topics); i++ {
		ev.Topics[i] = &txEvent.Topics[i]
	}
	return ev
}

type RangeType string

const (
	Seq  RangeType = "seq"
	Time RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *swell.Address // always a contract address
	Topics  [4]*swell.Bytes32
}

// EventFilter filter
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
