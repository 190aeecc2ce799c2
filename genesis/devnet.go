// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"encoding/binary"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/swell/swell"
)

// DevAccount account for development.
type DevAccount struct {
	Address    swell.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for the dev network.
// Account 0 is the platform admin, 1 the treasury, 2 the bot and 3 a node operator.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
		"88d2d80b12b92feaa0da6d62309463d20408157723f2d7e799b6a74ead9a673b",
		"fbb9e7ba5fe9969a71c6599052237b91adeb1e5fc0c96727b66e56ff5d02f9d0",
		"547fb081e73dc2e22b4aae5c60e2970b008ac4fc3073aebc27d41ace9c4f53e9",
		"c8c53657e41a8d669349fc287f57457bd746cb1fcfc38cf94d235deb2cfca81b",
		"87e0eba9c86c494d98353800571089f316740b0cb84c9a7cdf2fe5c9997c7966",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{swell.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// DevValidatorsPerOperator is the number of validator details the dev operator submits.
const DevValidatorsPerOperator = 8

// DevnetConfig returns the config of the dev network.
func DevnetConfig() *Config {
	accs := DevAccounts()
	enabled := true
	minRepriceTime := uint64(0)

	cfg := &Config{
		Name:       "devnet",
		LaunchTime: 1700000000,
		Admin:      accs[0].Address,
		Treasury:   accs[1].Address,
		Bots:       []swell.Address{accs[2].Address},
		Params: &Params{
			MinimumRepriceTime:                      &minRepriceTime,
			MaximumRepriceDifferencePercentage:      percent(10),
			MaximumRepriceSwETHDifferencePercentage: percent(10),
			SwellTreasuryRewardPercentage:           percent(10),
		},
		Whitelist: Whitelist{Enabled: &enabled},
	}

	balance := swell.EtherOf(1_000_000)
	for _, a := range accs {
		cfg.Accounts = append(cfg.Accounts, Account{a.Address, (*math.HexOrDecimal256)(balance)})
		cfg.Whitelist.Addresses = append(cfg.Whitelist.Addresses, a.Address)
	}

	operator := Operator{Address: accs[3].Address}
	for i := range DevValidatorsPerOperator {
		operator.Validators = append(operator.Validators, devValidator(uint64(i)))
	}
	cfg.Operators = []Operator{operator}
	return cfg
}

// NewDevnet create genesis for the dev network.
func NewDevnet() *Genesis {
	gene, err := NewCustomNet(DevnetConfig())
	if err != nil {
		panic(err)
	}
	return gene
}

func percent(n int64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(new(big.Int).Mul(big.NewInt(n), big.NewInt(1e16)))
}

// devValidator derives placeholder registration data from the index.
func devValidator(i uint64) Validator {
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], i)

	pubKey := swell.Keccak256([]byte("pubkey"), seed[:]).Bytes()
	pubKey = append(pubKey, swell.Blake2b([]byte("pubkey"), seed[:]).Bytes()[:16]...)

	var sig []byte
	for j := byte(0); j < 3; j++ {
		h := swell.Keccak256([]byte("signature"), seed[:], []byte{j})
		sig = append(sig, h.Bytes()...)
	}
	return Validator{PubKey: pubKey, Signature: sig}
}
