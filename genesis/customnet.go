// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"bytes"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/swell/builtin"
	"github.com/vechain/swell/builtin/access"
	"github.com/vechain/swell/swell"
)

// Config is the yaml description of a custom network.
type Config struct {
	Name       string          `yaml:"name"`
	LaunchTime uint64          `yaml:"launchTime"`
	Accounts   []Account       `yaml:"accounts"`
	Admin      swell.Address   `yaml:"admin"`
	Treasury   swell.Address   `yaml:"treasury"`
	Bots       []swell.Address `yaml:"bots"`
	Params     *Params         `yaml:"params,omitempty"`
	Whitelist  Whitelist       `yaml:"whitelist"`
	Operators  []Operator      `yaml:"operators"`
}

// Account is a pre-funded account.
type Account struct {
	Address swell.Address         `yaml:"address"`
	Balance *math.HexOrDecimal256 `yaml:"balance"`
}

// Params overrides the ledger parameters. Unset fields keep their defaults.
type Params struct {
	MinimumRepriceTime                      *uint64               `yaml:"minimumRepriceTime,omitempty"`
	MaximumRepriceDifferencePercentage      *math.HexOrDecimal256 `yaml:"maximumRepriceDifferencePercentage,omitempty"`
	MaximumRepriceSwETHDifferencePercentage *math.HexOrDecimal256 `yaml:"maximumRepriceSwETHDifferencePercentage,omitempty"`
	SwellTreasuryRewardPercentage           *math.HexOrDecimal256 `yaml:"swellTreasuryRewardPercentage,omitempty"`
}

// Whitelist describes the initial deposit allow-list.
type Whitelist struct {
	// nil keeps the allow-list enabled
	Enabled   *bool           `yaml:"enabled,omitempty"`
	Addresses []swell.Address `yaml:"addresses"`
}

// Operator is a node operator with the validator details it submits at genesis.
type Operator struct {
	Address    swell.Address `yaml:"address"`
	Validators []Validator   `yaml:"validators"`
}

// Validator holds the registration data of one validator.
type Validator struct {
	PubKey    hexutil.Bytes `yaml:"pubKey"`
	Signature hexutil.Bytes `yaml:"signature"`
}

// LoadConfig reads a network config from a yaml file. Unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis config")
	}
	return ParseConfig(data)
}

// ParseConfig decodes a yaml network config.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis config")
	}
	return &cfg, nil
}

// Validate checks the config is complete.
func (c *Config) Validate() error {
	if c.LaunchTime == 0 {
		return errors.New("launchTime must be set")
	}
	if c.Admin.IsZero() {
		return errors.New("admin must be set")
	}
	if c.Treasury.IsZero() {
		return errors.New("treasury must be set")
	}
	seen := make(map[swell.Address]bool)
	for _, acc := range c.Accounts {
		if acc.Balance == nil {
			return errors.Errorf("account %v: balance must be set", acc.Address)
		}
		if (*big.Int)(acc.Balance).Sign() < 0 {
			return errors.Errorf("account %v: negative balance", acc.Address)
		}
		if seen[acc.Address] {
			return errors.Errorf("account %v: duplicated", acc.Address)
		}
		seen[acc.Address] = true
	}
	for _, op := range c.Operators {
		if op.Address.IsZero() {
			return errors.New("operator address must be set")
		}
		for i, v := range op.Validators {
			if len(v.PubKey) != swell.PubKeyLength {
				return errors.Errorf("operator %v: validator %d: invalid pubKey length %d", op.Address, i, len(v.PubKey))
			}
			if len(v.Signature) != swell.SignatureLength {
				return errors.Errorf("operator %v: validator %d: invalid signature length %d", op.Address, i, len(v.Signature))
			}
		}
	}
	return nil
}

// NewCustomNet create custom network genesis.
func NewCustomNet(cfg *Config) (*Genesis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	builder := new(Builder).Timestamp(cfg.LaunchTime)
	for _, acc := range cfg.Accounts {
		builder.Alloc(acc.Address, (*big.Int)(acc.Balance))
	}

	var (
		admin = cfg.Admin
		aca   = builtin.AccessControl
	)

	// access control and the component registry
	builder.
		Call(aca.Address, mustEncodeInput(aca.ABI, "initialize", common.Address(admin), common.Address(cfg.Treasury)), admin).
		Call(aca.Address, mustEncodeInput(aca.ABI, "setDepositManager", common.Address(builtin.DepositManager.Address)), admin).
		Call(aca.Address, mustEncodeInput(aca.ABI, "setNodeOperatorRegistry", common.Address(builtin.NodeOperatorRegistry.Address)), admin)

	// ledger and orchestrator
	builder.
		Call(builtin.SwETH.Address, mustEncodeInput(builtin.SwETH.ABI, "initialize", common.Address(aca.Address)), admin).
		Call(builtin.DepositManager.Address, mustEncodeInput(builtin.DepositManager.ABI, "initialize", common.Address(aca.Address)), admin)

	if p := cfg.Params; p != nil {
		setParam := func(name string, value *big.Int) {
			builder.Call(builtin.SwETH.Address, mustEncodeInput(builtin.SwETH.ABI, name, value), admin)
		}
		if p.MinimumRepriceTime != nil {
			setParam("setMinimumRepriceTime", new(big.Int).SetUint64(*p.MinimumRepriceTime))
		}
		if p.MaximumRepriceDifferencePercentage != nil {
			setParam("setMaximumRepriceDifferencePercentage", (*big.Int)(p.MaximumRepriceDifferencePercentage))
		}
		if p.MaximumRepriceSwETHDifferencePercentage != nil {
			setParam("setMaximumRepriceswETHDifferencePercentage", (*big.Int)(p.MaximumRepriceSwETHDifferencePercentage))
		}
		if p.SwellTreasuryRewardPercentage != nil {
			setParam("setSwellTreasuryRewardPercentage", (*big.Int)(p.SwellTreasuryRewardPercentage))
		}
	}

	for _, bot := range cfg.Bots {
		builder.Call(aca.Address, mustEncodeInput(aca.ABI, "grantRole", common.Hash(access.Bot), common.Address(bot)), admin)
	}

	wl := builtin.Whitelist
	for _, addr := range cfg.Whitelist.Addresses {
		builder.Call(wl.Address, mustEncodeInput(wl.ABI, "addToWhitelist", common.Address(addr)), admin)
	}
	if cfg.Whitelist.Enabled != nil && !*cfg.Whitelist.Enabled {
		builder.Call(wl.Address, mustEncodeInput(wl.ABI, "disableWhitelist"), admin)
	}

	registry := builtin.NodeOperatorRegistry
	for _, op := range cfg.Operators {
		builder.Call(registry.Address, mustEncodeInput(registry.ABI, "addOperator", common.Address(op.Address)), admin)
		if len(op.Validators) == 0 {
			continue
		}
		pubKeys := make([][]byte, 0, len(op.Validators))
		signatures := make([][]byte, 0, len(op.Validators))
		for _, v := range op.Validators {
			pubKeys = append(pubKeys, v.PubKey)
			signatures = append(signatures, v.Signature)
		}
		builder.Call(registry.Address, mustEncodeInput(registry.ABI, "addValidatorDetails", pubKeys, signatures), op.Address)
	}

	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}
	name := cfg.Name
	if name == "" {
		name = "customnet"
	}
	return &Genesis{builder, id, name}, nil
}
