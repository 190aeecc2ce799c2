// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package beacon implements the validator deposit contract that receives validator funding.
package beacon

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/minio/sha256-simd"

	"github.com/vechain/swell/abi"
	"github.com/vechain/swell/builtin/gen"
	"github.com/vechain/swell/builtin/reverts"
	"github.com/vechain/swell/builtin/solidity"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/xenv"
)

var (
	ErrInvalidPubKeyLength          = reverts.NewRequireError("DepositContract: invalid node public key length")
	ErrInvalidSignatureLength       = reverts.NewRequireError("DepositContract: invalid signature length")
	ErrInvalidWithdrawalCredentials = reverts.NewRequireError("DepositContract: invalid withdrawal_credentials")
	ErrInvalidDepositAmount         = reverts.NewRequireError("DepositContract: invalid deposit amount")
	ErrDepositDataRootMismatch      = reverts.NewRequireError("DepositContract: reconstructed DepositData does not match supplied deposit_data_root")

	ABI          = abi.MustNew(gen.MustABI("BeaconDeposit"))
	depositEvent = ABI.MustEventByName("DepositEvent")

	gwei = big.NewInt(1e9)
)

// Deposit binder of the validator deposit contract.
type Deposit struct {
	addr         swell.Address
	depositCount *solidity.Uint256
	dataRoots    *solidity.Mapping[index, swell.Bytes32]
}

type index uint64

func (i index) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(i))
}

func New(addr swell.Address, state *state.State) *Deposit {
	sctx := solidity.NewContext(addr, state)
	return &Deposit{
		addr:         addr,
		depositCount: solidity.NewUint256(sctx, solidity.Slot("deposit-count")),
		dataRoots:    solidity.NewMapping[index, swell.Bytes32](sctx, solidity.Slot("deposit-data-roots")),
	}
}

func (d *Deposit) Address() swell.Address {
	return d.addr
}

// DepositCount returns the number of deposits received.
func (d *Deposit) DepositCount() (uint64, error) {
	n, err := d.depositCount.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// DepositDataRoot returns the data root of the i-th deposit.
func (d *Deposit) DepositDataRoot(i uint64) (swell.Bytes32, error) {
	return d.dataRoots.Get(index(i))
}

// FundValidator registers one validator funded with the value attached to env.
// withdrawalCredentialsRoot is the hash tree root of the 32 byte withdrawal credentials,
// which for a single chunk is the credentials themselves.
func (d *Deposit) FundValidator(env *xenv.Environment, pubKey, signature []byte, withdrawalCredentialsRoot swell.Bytes32) error {
	if len(pubKey) != swell.PubKeyLength {
		return ErrInvalidPubKeyLength
	}
	if len(signature) != swell.SignatureLength {
		return ErrInvalidSignatureLength
	}
	if withdrawalCredentialsRoot.IsZero() {
		return ErrInvalidWithdrawalCredentials
	}
	amount := env.Value()
	if amount.Cmp(swell.ValidatorDepositAmount) != 0 {
		return ErrInvalidDepositAmount.WithDetail(amount.String())
	}

	amountGwei := new(big.Int).Div(amount, gwei).Uint64()
	root := DepositDataRoot(pubKey, withdrawalCredentialsRoot, amountGwei, signature)

	count, err := d.DepositCount()
	if err != nil {
		return err
	}
	if err := d.dataRoots.Set(index(count), root); err != nil {
		return err
	}
	d.depositCount.Set(uint256.NewInt(count + 1))

	return env.Log(depositEvent, d.addr, nil,
		pubKey,
		withdrawalCredentialsRoot.Bytes(),
		littleEndian64(amountGwei),
		signature,
		littleEndian64(count),
	)
}

// Deposit is the raw entry point of the deposit contract. The supplied data root must match the
// one reconstructed from the other arguments.
func (d *Deposit) Deposit(env *xenv.Environment, pubKey, withdrawalCredentials, signature []byte, depositDataRoot swell.Bytes32) error {
	if len(withdrawalCredentials) != 32 {
		return ErrInvalidWithdrawalCredentials
	}
	if len(pubKey) != swell.PubKeyLength {
		return ErrInvalidPubKeyLength
	}
	if len(signature) != swell.SignatureLength {
		return ErrInvalidSignatureLength
	}
	wc := swell.BytesToBytes32(withdrawalCredentials)
	amountGwei := new(big.Int).Div(env.Value(), gwei).Uint64()
	if DepositDataRoot(pubKey, wc, amountGwei, signature) != depositDataRoot {
		return ErrDepositDataRootMismatch
	}
	return d.FundValidator(env, pubKey, signature, wc)
}

// DepositDataRoot computes the SSZ hash tree root of a phase0 DepositData.
func DepositDataRoot(pubKey []byte, withdrawalCredentials swell.Bytes32, amountGwei uint64, signature []byte) swell.Bytes32 {
	if len(pubKey) != swell.PubKeyLength || len(signature) != swell.SignatureLength {
		panic(fmt.Errorf("invalid deposit data lengths %d/%d", len(pubKey), len(signature)))
	}
	var zero [32]byte

	pubKeyRoot := sha256.Sum256(append(append([]byte{}, pubKey...), zero[:16]...))
	sigLeft := sha256.Sum256(signature[:64])
	sigRight := sha256.Sum256(append(append([]byte{}, signature[64:]...), zero[:]...))
	signatureRoot := sha256.Sum256(append(sigLeft[:], sigRight[:]...))

	left := sha256.Sum256(append(pubKeyRoot[:], withdrawalCredentials[:]...))
	amountChunk := append(littleEndian64(amountGwei), zero[:24]...)
	right := sha256.Sum256(append(amountChunk, signatureRoot[:]...))

	return swell.Bytes32(sha256.Sum256(append(left[:], right[:]...)))
}

func littleEndian64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}
