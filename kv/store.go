// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the key-value store the ledger state is persisted to.
package kv

// Getter reads values. A missing key is reported with an error that IsNotFound recognizes.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter writes values.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Bulk buffers writes until Write applies them in one batch.
type Bulk interface {
	Putter
	Write() error
}

// Store is a store that can also batch writes.
type Store interface {
	Getter
	Putter
	Bulk() Bulk
}

// StoreCloser owns the resources behind the store.
type StoreCloser interface {
	Store
	Close() error
}
