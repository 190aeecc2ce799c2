// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry implements the node operator registry holding validator keys and signatures.
package registry

import (
	"fmt"

	"github.com/vechain/swell/abi"
	"github.com/vechain/swell/builtin/access"
	"github.com/vechain/swell/builtin/gen"
	"github.com/vechain/swell/builtin/reverts"
	"github.com/vechain/swell/builtin/solidity"
	"github.com/vechain/swell/log"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/xenv"
)

var (
	ErrOperatorAlreadyExists    = reverts.NewRequireError("OperatorAlreadyExists")
	ErrNoOperatorFound          = reverts.NewRequireError("NoOperatorFound")
	ErrNoValidatorDetails       = reverts.NewRequireError("NoValidatorDetailsProvided")
	ErrInvalidPubKeyLength      = reverts.NewRequireError("InvalidPubKeyLength")
	ErrInvalidSignatureLength   = reverts.NewRequireError("InvalidSignatureLength")
	ErrPubKeyAlreadyExists      = reverts.NewRequireError("PubKeyAlreadyExists")
	ErrNoPubKeyFound            = reverts.NewRequireError("NoPubKeyFound")
	ErrPubKeyAlreadyUsed        = reverts.NewRequireError("PubKeyAlreadyUsed")
	ErrOnlyDepositManagerCaller = reverts.NewRequireError("OnlyDepositManagerCaller")

	logger = log.WithContext("pkg", "registry")

	ABI                = abi.MustNew(gen.MustABI("NodeOperatorRegistry"))
	operatorAddedEvent = ABI.MustEventByName("OperatorAdded")
	detailsAddedEvent  = ABI.MustEventByName("OperatorAddedValidatorDetails")
	pubKeyUsedEvent    = ABI.MustEventByName("PubKeyUsedForValidatorSetup")
)

// PubKey is a validator public key.
type PubKey []byte

func (p PubKey) Bytes() []byte { return p }

// ValidatorDetails pairs a validator public key with its deposit signature.
type ValidatorDetails struct {
	PubKey    []byte
	Signature []byte
}

// Validator is the stored record of a registered validator key.
type Validator struct {
	Operator  swell.Address
	Signature []byte
	Used      bool
}

// Registry binder of the node operator registry contract.
type Registry struct {
	addr       swell.Address
	aca        *access.AccessControl
	operators  *solidity.Mapping[swell.Address, bool]
	validators *solidity.Mapping[PubKey, *Validator]
	pubKeys    *solidity.Array[[]byte]
}

func New(addr swell.Address, state *state.State, aca *access.AccessControl) *Registry {
	sctx := solidity.NewContext(addr, state)
	return &Registry{
		addr:       addr,
		aca:        aca,
		operators:  solidity.NewMapping[swell.Address, bool](sctx, solidity.Slot("operators")),
		validators: solidity.NewMapping[PubKey, *Validator](sctx, solidity.Slot("validators")),
		pubKeys:    solidity.NewArray[[]byte](sctx, solidity.Slot("pub-keys")),
	}
}

func (r *Registry) Address() swell.Address {
	return r.addr
}

// IsOperator reports whether addr may register validator keys.
func (r *Registry) IsOperator(addr swell.Address) (bool, error) {
	return r.operators.Get(addr)
}

// AddOperator registers a node operator.
func (r *Registry) AddOperator(env *xenv.Environment, operator swell.Address) error {
	if err := r.aca.CheckRole(access.PlatformAdmin, env.Caller()); err != nil {
		return err
	}
	if operator.IsZero() {
		return reverts.ErrCannotBeZeroAddress
	}
	exists, err := r.operators.Get(operator)
	if err != nil {
		return err
	}
	if exists {
		return ErrOperatorAlreadyExists
	}
	if err := r.operators.Set(operator, true); err != nil {
		return err
	}
	return env.Log(operatorAddedEvent, r.addr, []swell.Bytes32{swell.BytesToBytes32(operator.Bytes())})
}

// AddValidatorDetails registers keys of the calling operator.
func (r *Registry) AddValidatorDetails(env *xenv.Environment, details []ValidatorDetails) error {
	operator := env.Caller()
	exists, err := r.operators.Get(operator)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNoOperatorFound
	}
	if len(details) == 0 {
		return ErrNoValidatorDetails
	}

	for _, d := range details {
		if len(d.PubKey) != swell.PubKeyLength {
			return ErrInvalidPubKeyLength.WithDetail(fmt.Sprintf("%d bytes", len(d.PubKey)))
		}
		if len(d.Signature) != swell.SignatureLength {
			return ErrInvalidSignatureLength.WithDetail(fmt.Sprintf("%d bytes", len(d.Signature)))
		}
		existing, err := r.validators.Get(d.PubKey)
		if err != nil {
			return err
		}
		if !existing.Operator.IsZero() {
			return ErrPubKeyAlreadyExists.WithDetail(fmt.Sprintf("0x%x", d.PubKey))
		}
		if err := r.validators.Set(d.PubKey, &Validator{Operator: operator, Signature: d.Signature}); err != nil {
			return err
		}
		if _, err := r.pubKeys.Push(d.PubKey); err != nil {
			return err
		}
		if err := env.Log(detailsAddedEvent, r.addr, []swell.Bytes32{swell.BytesToBytes32(operator.Bytes())}, d.PubKey); err != nil {
			return err
		}
	}
	return nil
}

// GetValidator returns the record of pubKey, or nil when unknown.
func (r *Registry) GetValidator(pubKey []byte) (*Validator, error) {
	v, err := r.validators.Get(pubKey)
	if err != nil {
		return nil, err
	}
	if v.Operator.IsZero() {
		return nil, nil
	}
	return v, nil
}

// PubKeys returns every registered key in registration order.
func (r *Registry) PubKeys() ([][]byte, error) {
	n, err := r.pubKeys.Len()
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, 0, n)
	for i := range n {
		k, err := r.pubKeys.Get(i)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// UsePubKeysForValidatorSetup hands out the details of pubKeys, in request order, and marks them used.
// Only the deposit manager registered in access control may call it.
func (r *Registry) UsePubKeysForValidatorSetup(env *xenv.Environment, pubKeys [][]byte) ([]ValidatorDetails, error) {
	manager, err := r.aca.DepositManager()
	if err != nil {
		return nil, err
	}
	if manager.IsZero() || env.Caller() != manager {
		return nil, ErrOnlyDepositManagerCaller
	}

	details := make([]ValidatorDetails, 0, len(pubKeys))
	for _, pubKey := range pubKeys {
		v, err := r.validators.Get(pubKey)
		if err != nil {
			return nil, err
		}
		if v.Operator.IsZero() {
			return nil, ErrNoPubKeyFound.WithDetail(fmt.Sprintf("0x%x", pubKey))
		}
		if v.Used {
			return nil, ErrPubKeyAlreadyUsed.WithDetail(fmt.Sprintf("0x%x", pubKey))
		}
		v.Used = true
		if err := r.validators.Set(pubKey, v); err != nil {
			return nil, err
		}
		if err := env.Log(pubKeyUsedEvent, r.addr, []swell.Bytes32{swell.BytesToBytes32(v.Operator.Bytes())}, pubKey); err != nil {
			return nil, err
		}
		details = append(details, ValidatorDetails{PubKey: pubKey, Signature: v.Signature})
	}
	logger.Debug("pub keys used for validator setup", "count", len(details))
	return details, nil
}
