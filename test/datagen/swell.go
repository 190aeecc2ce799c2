// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/vechain/swell/swell"
)

func RandomHash() swell.Bytes32 {
	var b32 swell.Bytes32

	rand.Read(b32[:])
	return b32
}

func RandAddress() (addr swell.Address) {
	rand.Read(addr[:])
	return
}

// RandPubKey returns a random validator public key of the protocol length.
func RandPubKey() []byte {
	b := make([]byte, swell.PubKeyLength)
	rand.Read(b)
	return b
}

// RandSignature returns a random validator signature of the protocol length.
func RandSignature() []byte {
	b := make([]byte, swell.SignatureLength)
	rand.Read(b)
	return b
}
