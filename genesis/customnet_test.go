// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/swell/builtin"
	"github.com/vechain/swell/builtin/access"
	"github.com/vechain/swell/genesis"
	"github.com/vechain/swell/swell"
)

const customConfig = `
name: stagenet
launchTime: 1710000000
accounts:
  - address: "0x0000000000000000000000000000000000000a01"
    balance: "1000000000000000000000"
  - address: "0x0000000000000000000000000000000000000a02"
    balance: "0x3635c9adc5dea00000"
admin: "0x0000000000000000000000000000000000000a01"
treasury: "0x0000000000000000000000000000000000000a03"
bots:
  - "0x0000000000000000000000000000000000000a04"
params:
  minimumRepriceTime: 7200
  swellTreasuryRewardPercentage: "50000000000000000"
whitelist:
  enabled: false
  addresses:
    - "0x0000000000000000000000000000000000000a02"
operators:
  - address: "0x0000000000000000000000000000000000000a05"
`

func TestParseConfig(t *testing.T) {
	cfg, err := genesis.ParseConfig([]byte(customConfig))
	require.NoError(t, err)

	assert.Equal(t, "stagenet", cfg.Name)
	assert.Equal(t, uint64(1710000000), cfg.LaunchTime)
	require.Len(t, cfg.Accounts, 2)
	assert.Equal(t, "1000000000000000000000", (*big.Int)(cfg.Accounts[0].Balance).String())
	assert.Equal(t, "1000000000000000000000", (*big.Int)(cfg.Accounts[1].Balance).String())
	assert.Equal(t, swell.MustParseAddress("0x0000000000000000000000000000000000000a03"), cfg.Treasury)
	require.NotNil(t, cfg.Params)
	assert.Equal(t, uint64(7200), *cfg.Params.MinimumRepriceTime)
	assert.Nil(t, cfg.Params.MaximumRepriceDifferencePercentage)
	require.NotNil(t, cfg.Whitelist.Enabled)
	assert.False(t, *cfg.Whitelist.Enabled)

	_, err = genesis.ParseConfig([]byte("launchTime: 1\nunknown: true\n"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(customConfig), 0o600))

	cfg, err := genesis.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "stagenet", cfg.Name)

	_, err = genesis.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read genesis config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *genesis.Config)
		err    string
	}{
		{"no launch time", func(cfg *genesis.Config) { cfg.LaunchTime = 0 }, "launchTime must be set"},
		{"no admin", func(cfg *genesis.Config) { cfg.Admin = swell.Address{} }, "admin must be set"},
		{"no treasury", func(cfg *genesis.Config) { cfg.Treasury = swell.Address{} }, "treasury must be set"},
		{"no balance", func(cfg *genesis.Config) { cfg.Accounts[0].Balance = nil }, "balance must be set"},
		{"duplicated account", func(cfg *genesis.Config) { cfg.Accounts[1].Address = cfg.Accounts[0].Address }, "duplicated"},
		{"short pubkey", func(cfg *genesis.Config) {
			cfg.Operators[0].Validators = []genesis.Validator{{PubKey: make([]byte, 47), Signature: make([]byte, 96)}}
		}, "invalid pubKey length 47"},
		{"short signature", func(cfg *genesis.Config) {
			cfg.Operators[0].Validators = []genesis.Validator{{PubKey: make([]byte, 48), Signature: make([]byte, 95)}}
		}, "invalid signature length 95"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := genesis.ParseConfig([]byte(customConfig))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.err)
			_, err = genesis.NewCustomNet(cfg)
			assert.ErrorContains(t, err, tt.err)
		})
	}
}

func TestNewCustomNet(t *testing.T) {
	cfg, err := genesis.ParseConfig([]byte(customConfig))
	require.NoError(t, err)
	gene, err := genesis.NewCustomNet(cfg)
	require.NoError(t, err)
	assert.Equal(t, "stagenet", gene.Name())
	assert.NotEqual(t, genesis.NewDevnet().ID(), gene.ID())

	st := newState(t)
	_, err = gene.Build(st)
	require.NoError(t, err)

	balance, err := st.GetBalance(swell.MustParseAddress("0x0000000000000000000000000000000000000a02"))
	require.NoError(t, err)
	assert.Equal(t, swell.EtherOf(1000), balance)

	ok, err := builtin.AccessControl.WithState(st).HasRole(access.Bot, swell.MustParseAddress("0x0000000000000000000000000000000000000a04"))
	require.NoError(t, err)
	assert.True(t, ok)

	swETH := builtin.SwETH.WithState(st)
	minTime, err := swETH.MinimumRepriceTime()
	require.NoError(t, err)
	assert.Equal(t, uint64(7200), minTime)
	fee, err := swETH.SwellTreasuryRewardPercentage()
	require.NoError(t, err)
	assert.Equal(t, "50000000000000000", fee.String())

	wl := builtin.Whitelist.WithState(st)
	enabled, err := wl.Enabled()
	require.NoError(t, err)
	assert.False(t, enabled)
	allowed, err := wl.IsAllowed(swell.MustParseAddress("0x0000000000000000000000000000000000000a02"))
	require.NoError(t, err)
	assert.True(t, allowed)

	ok, err = builtin.NodeOperatorRegistry.WithState(st).IsOperator(swell.MustParseAddress("0x0000000000000000000000000000000000000a05"))
	require.NoError(t, err)
	assert.True(t, ok)
}
