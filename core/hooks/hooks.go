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

package hooks

import (
	"context"

	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/libs/num"
)

// Point identifies one lifecycle point an extension can attach to.
type Point uint8

const (
	BeforePlace Point = iota
	AfterPlace
	BeforeMatch
	AfterMatch
	FeeOverride
	BeforeCancel
	AfterCancel

	numPoints
)

func (p Point) String() string {
	switch p {
	case BeforePlace:
		return "before_place"
	case AfterPlace:
		return "after_place"
	case BeforeMatch:
		return "before_match"
	case AfterMatch:
		return "after_match"
	case FeeOverride:
		return "fee_override"
	case BeforeCancel:
		return "before_cancel"
	case AfterCancel:
		return "after_cancel"
	default:
		return "unknown"
	}
}

// Permissions is the capability bitset of a market's extension, fixed at
// market creation. A point whose bit is unset is never invoked.
type Permissions uint32

// PermissionsFor builds a bitset granting exactly the given points.
func PermissionsFor(points ...Point) Permissions {
	var p Permissions
	for _, pt := range points {
		p |= 1 << pt
	}
	return p
}

// AllPermissions grants every lifecycle point.
func AllPermissions() Permissions {
	return 1<<numPoints - 1
}

// Has reports whether the bitset grants the point.
func (p Permissions) Has(pt Point) bool {
	return p&(1<<pt) != 0
}

// OrderDelta is a BeforePlace mutation of the incoming order. Nil fields
// leave the corresponding attribute unchanged.
type OrderDelta struct {
	Price *num.Uint
	Size  *num.Uint
}

// FeeDelta is a per-fill fee override. Both amounts must be set and are
// denominated like the fees they replace: the buyer's in base, the
// seller's in quote.
type FeeDelta struct {
	BuyerFee  *num.Uint
	SellerFee *num.Uint
}

// Extension is the market-extension callback surface. Every method is
// invoked inside the operation that triggered it: an error return, or a
// panic, aborts and rolls back that whole operation.
//
// BeforeCancel may return types.ErrCancelVetoed to block a cancellation;
// any other error from any point surfaces as types.ErrHookFailed.
type Extension interface {
	// BeforePlace runs after validation, before funds are locked. The
	// returned delta may adjust the order's price and size.
	BeforePlace(ctx context.Context, o *types.Order) (*OrderDelta, error)
	// AfterPlace runs once the order has been matched and, if resting,
	// added to the book.
	AfterPlace(ctx context.Context, o *types.Order) error
	// BeforeMatch runs per prospective fill, before it settles.
	BeforeMatch(ctx context.Context, taker, maker *types.Order) error
	// AfterMatch runs per settled fill.
	AfterMatch(ctx context.Context, t *types.Trade) error
	// FeeOverride replaces the schedule-computed fees of one fill. A nil
	// delta keeps the computed fees.
	FeeOverride(ctx context.Context, t *types.Trade) (*FeeDelta, error)
	// BeforeCancel runs after the ownership check, before the order is
	// removed.
	BeforeCancel(ctx context.Context, o *types.Order) error
	// AfterCancel runs once the cancellation has taken effect.
	AfterCancel(ctx context.Context, o *types.Order) error
}

// Descriptor pairs an extension with the capabilities granted to it.
type Descriptor struct {
	Extension   Extension
	Permissions Permissions
}
