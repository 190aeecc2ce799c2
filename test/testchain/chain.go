// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testchain

import (
	"context"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/swell/builtin"
	"github.com/vechain/swell/genesis"
	"github.com/vechain/swell/logdb"
	"github.com/vechain/swell/lvldb"
	"github.com/vechain/swell/runtime"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/tx"
)

// Chain is an in-memory node for tests: a genesis state, a runtime over it and a log db
// indexing every receipt.
type Chain struct {
	db      *lvldb.LevelDB
	genesis *genesis.Genesis
	state   *state.State
	clock   *swell.ManualClock
	rt      *runtime.Runtime
	logDB   *logdb.LogDB
}

// NewDefault creates a Chain on the dev network genesis.
func NewDefault() (*Chain, error) {
	return NewWithGenesis(genesis.NewDevnet(), genesis.DevnetConfig().LaunchTime)
}

// NewWithGenesis creates a Chain on gene. The chain clock starts at launchTime.
func NewWithGenesis(gene *genesis.Genesis, launchTime uint64) (*Chain, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	logDB, err := logdb.NewMem()
	if err != nil {
		db.Close()
		return nil, err
	}

	st := state.New(db)
	if _, err := gene.Build(st, logDB); err != nil {
		db.Close()
		logDB.Close()
		return nil, errors.Wrap(err, "build genesis")
	}
	seq, err := logDB.NewestSeq()
	if err != nil {
		db.Close()
		logDB.Close()
		return nil, err
	}

	clock := swell.NewManualClock(launchTime)
	rt := runtime.New(st, clock)
	rt.SetSeq(seq)
	rt.AddSink(logDB)

	return &Chain{
		db:      db,
		genesis: gene,
		state:   st,
		clock:   clock,
		rt:      rt,
		logDB:   logDB,
	}, nil
}

// Genesis returns the genesis the chain was built from.
func (c *Chain) Genesis() *genesis.Genesis {
	return c.genesis
}

// State returns the chain state. Writes must go through the runtime.
func (c *Chain) State() *state.State {
	return c.state
}

// Runtime returns the runtime executing calls against the chain state.
func (c *Chain) Runtime() *runtime.Runtime {
	return c.rt
}

// Clock returns the chain clock.
func (c *Chain) Clock() *swell.ManualClock {
	return c.clock
}

// LogDB returns the event index.
func (c *Chain) LogDB() *logdb.LogDB {
	return c.logDB
}

// Close releases the databases.
func (c *Chain) Close() {
	c.logDB.Close()
	c.db.Close()
}

// Exec sends abi encoded input to a builtin contract and returns the receipt and output.
func (c *Chain) Exec(caller, to swell.Address, value *big.Int, input []byte) (*tx.Receipt, []byte, error) {
	nc, err := builtin.HandleNativeCall(to, input)
	if err != nil {
		return nil, nil, err
	}
	var output []byte
	receipt, err := c.rt.Exec(context.Background(), nc.Runtime(caller, value, &output))
	return receipt, output, err
}

// Inspect runs abi encoded input against a builtin contract without keeping its writes.
func (c *Chain) Inspect(caller, to swell.Address, value *big.Int, input []byte) ([]byte, error) {
	nc, err := builtin.HandleNativeCall(to, input)
	if err != nil {
		return nil, err
	}
	var output []byte
	if _, err := c.rt.Inspect(context.Background(), nc.Runtime(caller, value, &output)); err != nil {
		return nil, err
	}
	return output, nil
}
