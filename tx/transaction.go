// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"crypto/ecdsa"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/swell/swell"
)

// Transaction is an immutable signed call to a builtin contract.
type Transaction struct {
	body body

	cache struct {
		origin *swell.Address
	}
}

// body describes details of a tx.
type body struct {
	ChainTag  byte
	Nonce     uint64
	To        swell.Address
	Value     *big.Int
	Data      []byte
	Signature []byte
}

// New creates an unsigned transaction. A nil value attaches nothing.
func New(chainTag byte, nonce uint64, to swell.Address, value *big.Int, data []byte) *Transaction {
	if value == nil {
		value = new(big.Int)
	}
	return &Transaction{body: body{
		ChainTag: chainTag,
		Nonce:    nonce,
		To:       to,
		Value:    new(big.Int).Set(value),
		Data:     append([]byte(nil), data...),
	}}
}

// Decode parses the rlp encoded raw transaction.
func Decode(raw []byte) (*Transaction, error) {
	var t Transaction
	if err := rlp.DecodeBytes(raw, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Transaction) ChainTag() byte    { return t.body.ChainTag }
func (t *Transaction) Nonce() uint64     { return t.body.Nonce }
func (t *Transaction) To() swell.Address { return t.body.To }
func (t *Transaction) Value() *big.Int   { return new(big.Int).Set(t.body.Value) }
func (t *Transaction) Data() []byte      { return append([]byte(nil), t.body.Data...) }
func (t *Transaction) Signature() []byte { return append([]byte(nil), t.body.Signature...) }

// SigningHash returns hash of tx excludes signature.
func (t *Transaction) SigningHash() swell.Bytes32 {
	data, _ := rlp.EncodeToBytes([]any{
		t.body.ChainTag,
		t.body.Nonce,
		t.body.To,
		t.body.Value,
		t.body.Data,
	})
	return swell.Blake2b(data)
}

// ID returns the hash of the signed tx.
func (t *Transaction) ID() swell.Bytes32 {
	data, _ := rlp.EncodeToBytes(t)
	return swell.Blake2b(data)
}

// WithSignature create a new tx with signature set.
func (t *Transaction) WithSignature(sig []byte) *Transaction {
	newTx := Transaction{
		body: t.body,
	}
	newTx.body.Signature = append([]byte(nil), sig...)
	return &newTx
}

// Sign signs the tx with key.
func Sign(t *Transaction, key *ecdsa.PrivateKey) (*Transaction, error) {
	hash := t.SigningHash()
	sig, err := crypto.Sign(hash[:], key)
	if err != nil {
		return nil, errors.Wrap(err, "sign transaction")
	}
	return t.WithSignature(sig), nil
}

// Origin recovers the signer of the tx.
func (t *Transaction) Origin() (swell.Address, error) {
	if cached := t.cache.origin; cached != nil {
		return *cached, nil
	}
	hash := t.SigningHash()
	pub, err := crypto.SigToPub(hash[:], t.body.Signature)
	if err != nil {
		return swell.Address{}, errors.Wrap(err, "recover origin")
	}
	origin := swell.Address(crypto.PubkeyToAddress(*pub))
	t.cache.origin = &origin
	return origin, nil
}

// EncodeRLP implements rlp.Encoder
func (t *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &t.body)
}

// DecodeRLP implements rlp.Decoder
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	var body body
	if err := s.Decode(&body); err != nil {
		return err
	}
	if body.Value == nil {
		body.Value = new(big.Int)
	}
	*t = Transaction{
		body: body,
	}
	return nil
}
