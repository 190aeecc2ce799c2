// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/swell/builtin"
	"github.com/vechain/swell/runtime"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/tx"
)

// Builder helper to build genesis state.
type Builder struct {
	timestamp uint64
	allocs    []alloc
	calls     []call
}

type alloc struct {
	Address swell.Address
	Balance *big.Int
}

type call struct {
	Caller swell.Address
	To     swell.Address
	Value  *big.Int
	Input  []byte
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// Alloc sets the initial balance of an account.
func (b *Builder) Alloc(addr swell.Address, balance *big.Int) *Builder {
	b.allocs = append(b.allocs, alloc{addr, new(big.Int).Set(balance)})
	return b
}

// Call add a builtin contract call, executed in the order added.
func (b *Builder) Call(to swell.Address, input []byte, caller swell.Address) *Builder {
	b.calls = append(b.calls, call{caller, to, new(big.Int), input})
	return b
}

// ComputeID compute genesis ID.
func (b *Builder) ComputeID() (swell.Bytes32, error) {
	data, err := rlp.EncodeToBytes([]any{b.timestamp, b.allocs, b.calls})
	if err != nil {
		return swell.Bytes32{}, err
	}
	return swell.Blake2b(data), nil
}

// Build applies the genesis to an empty state. Receipts of the genesis calls are published to sinks.
func (b *Builder) Build(st *state.State, sinks ...runtime.Sink) (events tx.Events, err error) {
	for _, a := range b.allocs {
		if err := st.SetBalance(a.Address, a.Balance); err != nil {
			return nil, errors.Wrap(err, "alloc")
		}
	}
	if err := st.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit state")
	}

	rt := runtime.New(st, swell.NewManualClock(b.timestamp))
	for _, sink := range sinks {
		rt.AddSink(sink)
	}

	for i, c := range b.calls {
		nc, err := builtin.HandleNativeCall(c.To, c.Input)
		if err != nil {
			return nil, errors.Wrapf(err, "call %d", i)
		}
		receipt, err := rt.Exec(context.Background(), nc.Runtime(c.Caller, c.Value, nil))
		if err != nil {
			return nil, errors.Wrapf(err, "call %d %s", i, nc.Method)
		}
		events = append(events, receipt.Events...)
	}
	return events, nil
}
