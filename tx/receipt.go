// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/vechain/swell/swell"
)

// Receipt represents the results of an executed call.
type Receipt struct {
	// monotonic call sequence assigned by the runtime
	Seq uint64
	// caller of the entry point
	Caller swell.Address
	// contract the call was addressed to
	Contract swell.Address
	// entry point name
	Method string
	// block time the call executed at
	Time uint64
	// whether the call was rolled back
	Reverted bool
	// reason for the rollback, empty on success
	RevertReason string
	// events emitted, empty when reverted
	Events Events
}
