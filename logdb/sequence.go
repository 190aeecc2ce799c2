// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"errors"
	"math"
)

const (
	indexBits = 16
	// MaxEventsPerCall is the number of events one call may index.
	MaxEventsPerCall = 1 << indexBits
	maxSeq           = math.MaxInt64 >> indexBits
)

var errSequenceOverflow = errors.New("logdb: sequence overflow")

// sequence orders events by call sequence, then by emission index.
type sequence int64

func newSequence(seq uint64, index uint32) (sequence, error) {
	if seq > maxSeq || index >= MaxEventsPerCall {
		return 0, errSequenceOverflow
	}
	return (sequence(seq) << indexBits) | sequence(index), nil
}

func (s sequence) Seq() uint64 {
	return uint64(s >> indexBits)
}

func (s sequence) Index() uint32 {
	return uint32(s & (MaxEventsPerCall - 1))
}
