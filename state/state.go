// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/vechain/swell/kv"
	"github.com/vechain/swell/stackedmap"
	"github.com/vechain/swell/swell"
)

const (
	balanceBucket = kv.Bucket("b")
	storageBucket = kv.Bucket("s")
	nonceBucket   = kv.Bucket("n")

	cacheSize = 4096
)

// ErrInsufficientBalance is returned when a balance would go negative.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type balanceKey swell.Address

type nonceKey swell.Address

type storageKey struct {
	addr swell.Address
	key  swell.Bytes32
}

func (k storageKey) bytes() []byte {
	return append(append(make([]byte, 0, swell.AddressLength+32), k.addr[:]...), k.key[:]...)
}

// State manages balances and contract storage.
type State struct {
	db    kv.Store
	cache *lru.Cache // cache of committed values
	sm    *stackedmap.StackedMap[any, any]
}

// New create state object backed by db.
func New(db kv.Store) *State {
	cache, _ := lru.New(cacheSize)
	s := &State{
		db:    db,
		cache: cache,
	}
	s.sm = stackedmap.New(s.load)
	return s
}

// load implements stackedmap.MapGetter.
func (s *State) load(key any) (any, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		metricCacheCounter().AddWithLabel(1, map[string]string{"type": "hit"})
		return v, true, nil
	}
	metricCacheCounter().AddWithLabel(1, map[string]string{"type": "miss"})

	var value any
	switch k := key.(type) {
	case balanceKey:
		data, err := s.get(balanceBucket, k[:])
		if err != nil {
			return nil, false, err
		}
		value = new(big.Int).SetBytes(data)
	case storageKey:
		data, err := s.get(storageBucket, k.bytes())
		if err != nil {
			return nil, false, err
		}
		value = rlp.RawValue(data)
	case nonceKey:
		data, err := s.get(nonceBucket, k[:])
		if err != nil {
			return nil, false, err
		}
		var nonce uint64
		if len(data) > 0 {
			if err := rlp.DecodeBytes(data, &nonce); err != nil {
				return nil, false, err
			}
		}
		value = nonce
	default:
		panic(fmt.Errorf("unexpected key type %+v", key))
	}
	s.cache.Add(key, value)
	return value, true, nil
}

func (s *State) get(bucket kv.Bucket, key []byte) ([]byte, error) {
	getter := bucket.NewGetter(s.db)
	data, err := getter.Get(key)
	if err != nil {
		if getter.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr swell.Address) (*big.Int, error) {
	v, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return new(big.Int).Set(v.(*big.Int)), nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr swell.Address, balance *big.Int) error {
	if balance.Sign() < 0 {
		return &Error{errors.New("negative balance")}
	}
	s.sm.Put(balanceKey(addr), new(big.Int).Set(balance))
	return nil
}

// AddBalance adds amount to the balance of addr.
func (s *State) AddBalance(addr swell.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	return s.SetBalance(addr, bal.Add(bal, amount))
}

// SubBalance subtracts amount from the balance of addr.
// It returns ErrInsufficientBalance without modification if the balance is not enough.
func (s *State) SubBalance(addr swell.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	return s.SetBalance(addr, bal.Sub(bal, amount))
}

// Transfer moves amount of base asset from one address to another.
func (s *State) Transfer(from, to swell.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return &Error{errors.New("negative transfer amount")}
	}
	if err := s.SubBalance(from, amount); err != nil {
		return err
	}
	return s.AddBalance(to, amount)
}

// GetNonce returns the next transaction nonce of addr.
func (s *State) GetNonce(addr swell.Address) (uint64, error) {
	v, _, err := s.sm.Get(nonceKey(addr))
	if err != nil {
		return 0, &Error{err}
	}
	return v.(uint64), nil
}

// SetNonce sets the next transaction nonce of addr.
func (s *State) SetNonce(addr swell.Address, nonce uint64) {
	s.sm.Put(nonceKey(addr), nonce)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr swell.Address, key swell.Bytes32) (rlp.RawValue, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return v.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr swell.Address, key swell.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	if revision < 1 {
		panic(fmt.Errorf("invalid revision %d", revision))
	}
	s.sm.PopTo(revision)
}

// Commit writes all journaled changes into the backing store in one bulk write.
// The journal is reset afterwards.
func (s *State) Commit() error {
	journal := s.sm.Journal()
	if len(journal) == 0 {
		return nil
	}

	final := make(map[any]any, len(journal))
	for _, entry := range journal {
		final[entry.Key] = entry.Value
	}

	bulk := s.db.Bulk()
	balances := balanceBucket.NewPutter(bulk)
	storages := storageBucket.NewPutter(bulk)
	nonces := nonceBucket.NewPutter(bulk)
	for key, value := range final {
		var err error
		switch k := key.(type) {
		case balanceKey:
			if bal := value.(*big.Int); bal.Sign() == 0 {
				err = balances.Delete(k[:])
			} else {
				err = balances.Put(k[:], bal.Bytes())
			}
		case storageKey:
			if raw := value.(rlp.RawValue); len(raw) == 0 {
				err = storages.Delete(k.bytes())
			} else {
				err = storages.Put(k.bytes(), raw)
			}
		case nonceKey:
			var data []byte
			if data, err = rlp.EncodeToBytes(value.(uint64)); err == nil {
				err = nonces.Put(k[:], data)
			}
		}
		if err != nil {
			return &Error{errors.Wrap(err, "stage")}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{errors.Wrap(err, "commit")}
	}

	for key, value := range final {
		s.cache.Add(key, value)
	}
	s.sm = stackedmap.New(s.load)
	return nil
}
