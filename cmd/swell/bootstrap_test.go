// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/swell/builtin"
	"github.com/vechain/swell/genesis"
	"github.com/vechain/swell/logdb"
	"github.com/vechain/swell/lvldb"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
)

func TestBootstrap(t *testing.T) {
	mainDB, err := lvldb.NewMem()
	require.NoError(t, err)
	defer mainDB.Close()
	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	defer logDB.Close()

	gene := genesis.NewDevnet()
	require.NoError(t, bootstrap(gene, mainDB, logDB))

	seq, err := logDB.NewestSeq()
	require.NoError(t, err)
	assert.NotZero(t, seq)

	rate, err := builtin.SwETH.WithState(state.New(mainDB)).SwETHToETHRate()
	require.NoError(t, err)
	assert.Equal(t, swell.Ether.String(), rate.String())

	// a second start keeps the stored genesis
	require.NoError(t, bootstrap(gene, mainDB, logDB))
	again, err := logDB.NewestSeq()
	require.NoError(t, err)
	assert.Equal(t, seq, again)

	cfg := genesis.DevnetConfig()
	cfg.Name = "other"
	cfg.LaunchTime++
	other, err := genesis.NewCustomNet(cfg)
	require.NoError(t, err)
	err = bootstrap(other, mainDB, logDB)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "genesis mismatch")
}

func TestLedgerClock(t *testing.T) {
	future := swell.SystemClock{}.Now() + 3600
	assert.Equal(t, future, ledgerClock(future).Now())

	now := ledgerClock(1).Now()
	assert.GreaterOrEqual(t, now, uint64(1700000000))
}

func TestNormalizeCacheSize(t *testing.T) {
	assert.Equal(t, 16, normalizeCacheSize(1))
	assert.LessOrEqual(t, normalizeCacheSize(1<<30), 1<<30)
}
