// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/swell/builtin"
	"github.com/vechain/swell/builtin/access"
	"github.com/vechain/swell/genesis"
	"github.com/vechain/swell/lvldb"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/tx"
)

type receiptRecorder struct {
	receipts []*tx.Receipt
}

func (r *receiptRecorder) Publish(receipt *tx.Receipt) error {
	r.receipts = append(r.receipts, receipt)
	return nil
}

func newState(t *testing.T) *state.State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return state.New(db)
}

func TestDevAccounts(t *testing.T) {
	accs := genesis.DevAccounts()
	assert.Len(t, accs, 10)
	assert.Equal(t, swell.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"), accs[0].Address)
	assert.Equal(t, accs, genesis.DevAccounts())
}

func TestDevnet(t *testing.T) {
	gene := genesis.NewDevnet()
	assert.Equal(t, "devnet", gene.Name())

	assert.Equal(t, gene.ID(), genesis.NewDevnet().ID())

	st := newState(t)
	recorder := &receiptRecorder{}
	events, err := gene.Build(st, recorder)
	require.NoError(t, err)
	assert.NotEmpty(t, events)
	for _, r := range recorder.receipts {
		assert.False(t, r.Reverted, r.RevertReason)
		assert.Equal(t, uint64(1700000000), r.Time)
	}

	accs := genesis.DevAccounts()
	for _, a := range accs {
		balance, err := st.GetBalance(a.Address)
		require.NoError(t, err)
		assert.Equal(t, swell.EtherOf(1_000_000), balance)
	}

	aca := builtin.AccessControl.WithState(st)
	ok, err := aca.HasRole(access.PlatformAdmin, accs[0].Address)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = aca.HasRole(access.Bot, accs[2].Address)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = aca.HasRole(access.Bot, accs[0].Address)
	require.NoError(t, err)
	assert.False(t, ok)

	treasury, err := aca.SwellTreasury()
	require.NoError(t, err)
	assert.Equal(t, accs[1].Address, treasury)
	dm, err := aca.DepositManager()
	require.NoError(t, err)
	assert.Equal(t, builtin.DepositManager.Address, dm)
	reg, err := aca.NodeOperatorRegistry()
	require.NoError(t, err)
	assert.Equal(t, builtin.NodeOperatorRegistry.Address, reg)

	swETH := builtin.SwETH.WithState(st)
	bound, err := swETH.AccessControlManager()
	require.NoError(t, err)
	assert.Equal(t, builtin.AccessControl.Address, bound)
	fee, err := swETH.SwellTreasuryRewardPercentage()
	require.NoError(t, err)
	assert.Equal(t, "100000000000000000", fee.String())
	rate, err := swETH.SwETHToETHRate()
	require.NoError(t, err)
	assert.Equal(t, swell.Ether, rate)

	bound, err = builtin.DepositManager.WithState(st).AccessControlManager()
	require.NoError(t, err)
	assert.Equal(t, builtin.AccessControl.Address, bound)

	wl := builtin.Whitelist.WithState(st)
	enabled, err := wl.Enabled()
	require.NoError(t, err)
	assert.True(t, enabled)
	for _, a := range accs {
		allowed, err := wl.IsAllowed(a.Address)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	registry := builtin.NodeOperatorRegistry.WithState(st)
	isOperator, err := registry.IsOperator(accs[3].Address)
	require.NoError(t, err)
	assert.True(t, isOperator)
	keys, err := registry.PubKeys()
	require.NoError(t, err)
	assert.Len(t, keys, genesis.DevValidatorsPerOperator)
	for _, k := range keys {
		assert.Len(t, k, swell.PubKeyLength)
		v, err := registry.GetValidator(k)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, accs[3].Address, v.Operator)
		assert.False(t, v.Used)
	}
}

func TestBuildTwice(t *testing.T) {
	st := newState(t)
	gene := genesis.NewDevnet()
	_, err := gene.Build(st)
	require.NoError(t, err)

	// a second run hits the one-time initializers
	_, err = gene.Build(st)
	assert.ErrorContains(t, err, "call 0 initialize")
}
