// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/swell/abi"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/tx"
)

// BlockContext block context.
type BlockContext struct {
	Time uint64
}

// Environment an env to execute native method.
type Environment struct {
	state    *state.State
	blockCtx *BlockContext
	caller   swell.Address
	to       swell.Address
	value    *big.Int
	events   *tx.Events
}

// New create a new env.
func New(
	state *state.State,
	blockCtx *BlockContext,
	caller swell.Address,
	to swell.Address,
	value *big.Int,
) *Environment {
	if value == nil {
		value = new(big.Int)
	}
	return &Environment{
		state:    state,
		blockCtx: blockCtx,
		caller:   caller,
		to:       to,
		value:    value,
		events:   new(tx.Events),
	}
}

func (env *Environment) State() *state.State         { return env.state }
func (env *Environment) BlockContext() *BlockContext { return env.blockCtx }
func (env *Environment) BlockTime() uint64           { return env.blockCtx.Time }
func (env *Environment) Caller() swell.Address       { return env.caller }
func (env *Environment) To() swell.Address           { return env.to }

// Value returns a copy of the base asset amount attached to the call.
func (env *Environment) Value() *big.Int { return new(big.Int).Set(env.value) }

// Events returns events logged so far, including those of nested calls.
func (env *Environment) Events() tx.Events { return *env.events }

// Log appends an event. Indexed args go into topics, the rest are abi encoded as data.
func (env *Environment) Log(abi *abi.Event, address swell.Address, topics []swell.Bytes32, args ...any) error {
	data, err := abi.Encode(args...)
	if err != nil {
		return errors.WithMessage(err, "encode native event")
	}

	allTopics := make([]swell.Bytes32, 0, len(topics)+1)
	allTopics = append(allTopics, abi.ID())
	allTopics = append(allTopics, topics...)
	*env.events = append(*env.events, &tx.Event{
		Address: address,
		Topics:  allTopics,
		Data:    data,
	})
	return nil
}

// Call runs proc as a nested call from this contract to the contract at to,
// moving value along. Events logged by proc are kept in this environment.
// Rolling back a failed nested call is left to the outermost checkpoint.
func (env *Environment) Call(to swell.Address, value *big.Int, proc func(env *Environment) error) error {
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() > 0 {
		if err := env.state.Transfer(env.to, to, value); err != nil {
			return err
		}
	}
	return proc(&Environment{
		state:    env.state,
		blockCtx: env.blockCtx,
		caller:   env.to,
		to:       to,
		value:    new(big.Int).Set(value),
		events:   env.events,
	})
}
