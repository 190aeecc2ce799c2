// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package swell

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Protocol constants.
const (
	PubKeyLength    = 48 // bls12-381 public key
	SignatureLength = 96 // bls12-381 signature
)

var (
	// Ether is 1e18 wei.
	Ether = big.NewInt(1e18)
	// RateScale is the fixed point scale of rates and percentages.
	RateScale = uint256.NewInt(1e18)
	// ValidatorDepositAmount is the base asset amount that funds one validator.
	ValidatorDepositAmount = new(big.Int).Mul(big.NewInt(32), Ether)
)

// EtherOf returns n ether in wei.
func EtherOf(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), Ether)
}
