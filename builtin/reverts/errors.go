// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

// Failures shared by every built-in contract.
var (
	ErrUnauthorized        = NewRequireError("Unauthorized")
	ErrAlreadyInitialized  = NewRequireError("AlreadyInitialized")
	ErrNotInitialized      = NewRequireError("NotInitialized")
	ErrCannotBeZeroAddress = NewRequireError("CannotBeZeroAddress")
	ErrCannotBeZero        = NewRequireError("CannotBeZero")
	ErrCoreMethodsPaused   = NewRequireError("CoreMethodsPaused")
	ErrBotMethodsPaused    = NewRequireError("BotMethodsPaused")
	ErrNoTokensToWithdraw  = NewRequireError("NoTokensToWithdraw")
)
