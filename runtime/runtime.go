// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/swell/log"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/tx"
	"github.com/vechain/swell/xenv"
)

var logger = log.WithContext("pkg", "runtime")

// ErrNonceMismatch is returned when a call carries a nonce other than the caller's next one.
var ErrNonceMismatch = errors.New("nonce mismatch")

// Call describes one externally submitted entry point invocation.
type Call struct {
	Caller   swell.Address
	Contract swell.Address
	Method   string
	// base asset attached to the call, moved from Caller to Contract before Run
	Value *big.Int
	Run   func(env *xenv.Environment) error
	// when set, it must equal the caller's next nonce and is consumed even if the call reverts
	Nonce *uint64
}

// Sink receives the receipt of every executed call.
type Sink interface {
	Publish(receipt *tx.Receipt) error
}

// Runtime executes calls one at a time against the state.
// A failed call is rolled back entirely, a successful one is committed.
type Runtime struct {
	mu    sync.Mutex
	state *state.State
	clock swell.Clock
	sinks []Sink
	seq   uint64
}

// New create a Runtime object.
func New(state *state.State, clock swell.Clock) *Runtime {
	return &Runtime{
		state: state,
		clock: clock,
	}
}

// AddSink registers a receipt consumer. Not safe to call concurrently with Exec.
func (rt *Runtime) AddSink(sink Sink) {
	rt.sinks = append(rt.sinks, sink)
}

// Exec applies the call atomically. The returned error is the one produced by the call,
// so revert sentinels can be matched with errors.Is. A receipt is returned in both cases.
func (rt *Runtime) Exec(ctx context.Context, call Call) (*tx.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if call.Nonce != nil {
		next, err := rt.state.GetNonce(call.Caller)
		if err != nil {
			return nil, err
		}
		if *call.Nonce != next {
			return nil, errors.WithMessagef(ErrNonceMismatch, "want %d, got %d", next, *call.Nonce)
		}
	}

	startTime := time.Now()
	rt.seq++
	receipt := &tx.Receipt{
		Seq:      rt.seq,
		Caller:   call.Caller,
		Contract: call.Contract,
		Method:   call.Method,
		Time:     rt.clock.Now(),
	}

	checkpoint := rt.state.NewCheckpoint()
	env, err := rt.run(receipt, call)
	if err == nil {
		err = rt.state.Commit()
		if err != nil {
			logger.Error("failed to commit state", "method", call.Method, "err", err)
		}
	}

	outcome := "success"
	if err != nil {
		rt.state.RevertTo(checkpoint)
		receipt.Reverted = true
		receipt.RevertReason = err.Error()
		outcome = "reverted"
		logger.Debug("call reverted", "seq", receipt.Seq, "caller", call.Caller, "method", call.Method, "err", err)
	} else {
		receipt.Events = env.Events()
		logger.Debug("call executed", "seq", receipt.Seq, "caller", call.Caller, "method", call.Method, "events", len(receipt.Events))
	}
	if call.Nonce != nil {
		rt.state.SetNonce(call.Caller, *call.Nonce+1)
		if cerr := rt.state.Commit(); cerr != nil {
			logger.Error("failed to commit nonce", "caller", call.Caller, "err", cerr)
		}
	}

	metricCallCount().AddWithLabel(1, map[string]string{"method": call.Method, "outcome": outcome})
	metricCallDuration().ObserveWithLabels(time.Since(startTime).Microseconds(), map[string]string{"method": call.Method})

	for _, sink := range rt.sinks {
		if perr := sink.Publish(receipt); perr != nil {
			logger.Warn("failed to publish receipt", "seq", receipt.Seq, "err", perr)
		}
	}
	return receipt, err
}

func (rt *Runtime) run(receipt *tx.Receipt, call Call) (*xenv.Environment, error) {
	if call.Run == nil {
		return nil, errors.New("no entry point")
	}
	value := call.Value
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return nil, errors.New("negative value")
	}
	if value.Sign() > 0 {
		if err := rt.state.Transfer(call.Caller, call.Contract, value); err != nil {
			return nil, errors.WithMessage(err, "attach value")
		}
	}
	env := xenv.New(rt.state, &xenv.BlockContext{Time: receipt.Time}, call.Caller, call.Contract, value)
	if err := call.Run(env); err != nil {
		return nil, err
	}
	return env, nil
}

// Query runs fn with read access to the state. Writes made by fn are discarded.
func (rt *Runtime) Query(fn func(st *state.State, now uint64) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	checkpoint := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(checkpoint)
	return fn(rt.state, rt.clock.Now())
}

// Inspect runs the call like Exec, then discards its writes. No receipt is published
// and the sequence is not advanced.
func (rt *Runtime) Inspect(ctx context.Context, call Call) (tx.Events, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	checkpoint := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(checkpoint)

	env, err := rt.run(&tx.Receipt{Time: rt.clock.Now()}, call)
	if err != nil {
		return nil, err
	}
	return env.Events(), nil
}

// Seq returns the sequence number of the last executed call.
func (rt *Runtime) Seq() uint64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.seq
}

// SetSeq makes numbering continue after seq, for a runtime reopened over indexed receipts.
func (rt *Runtime) SetSeq(seq uint64) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.seq = seq
}
