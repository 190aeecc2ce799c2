// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages balances of the base asset and storage of native contracts.
//
// All writes are journaled in a stacked map. A checkpoint taken with NewCheckpoint can be reverted
// with RevertTo, which discards every write made after it. Commit flushes the journal into the
// backing kv store in a single bulk write.
package state
