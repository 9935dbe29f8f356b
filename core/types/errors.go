// Copyright (C) 2024 Zenith Markets Ltd.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package types

import "github.com/pkg/errors"

// Validation errors: the request is malformed, rejected before any state
// change.
var (
	ErrInvalidMarketID   = errors.New("invalid market id")
	ErrInvalidPartyID    = errors.New("invalid party id")
	ErrInvalidSide       = errors.New("invalid order side")
	ErrInvalidType       = errors.New("invalid order type")
	ErrInvalidSize       = errors.New("order size must be positive")
	ErrInvalidPrice      = errors.New("limit orders require a positive price")
	ErrInvalidPriceBound = errors.New("market buy orders require a price bound")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidAsset      = errors.New("unknown asset")
	ErrInvalidFeeFactors = errors.New("fee factors exceed the hard ceiling")
	ErrInvalidHook       = errors.New("invalid hook registration")
)

// State errors: the request refers to state that does not exist or cannot
// legally change, rejected with no side effects.
var (
	ErrMarketAlreadyExists = errors.New("market already exists")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotActive      = errors.New("order is not active")
	ErrNotOrderOwner       = errors.New("order belongs to another party")
)

// Balance errors.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Extension errors: the hook rejected or broke the enclosing operation,
// which is rolled back as a unit.
var (
	ErrCancelVetoed     = errors.New("cancellation vetoed by hook")
	ErrHookFailed       = errors.New("hook invocation failed")
	ErrInvalidHookDelta = errors.New("hook returned an invalid delta")
)
