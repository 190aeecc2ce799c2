// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis bootstraps the builtin contracts. The initialization order is fixed: access
// control, component registry, ledger and orchestrator, protocol parameters, bot grants, operators
// and the deposit allow-list.
package genesis

import (
	"github.com/vechain/swell/abi"
	"github.com/vechain/swell/runtime"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/tx"
)

// Genesis to build genesis state.
type Genesis struct {
	builder *Builder
	id      swell.Bytes32
	name    string
}

// Build build the genesis state.
func (g *Genesis) Build(st *state.State, sinks ...runtime.Sink) (tx.Events, error) {
	return g.builder.Build(st, sinks...)
}

// ID returns genesis ID.
func (g *Genesis) ID() swell.Bytes32 {
	return g.id
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}

func mustEncodeInput(abi *abi.ABI, name string, args ...any) []byte {
	m, found := abi.MethodByName(name)
	if !found {
		panic("method not found: " + name)
	}
	data, err := m.EncodeInput(args...)
	if err != nil {
		panic(err)
	}
	return data
}
