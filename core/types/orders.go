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

import (
	"fmt"

	"code.zenithex.io/zenith/libs/num"
)

// Side of the book an order belongs to.
type Side int8

const (
	SideUnspecified Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unspecified"
	}
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	}
	return SideUnspecified
}

// OrderType distinguishes resting limit orders from immediate market orders.
type OrderType int8

const (
	OrderTypeUnspecified OrderType = iota
	OrderTypeLimit
	OrderTypeMarket
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeLimit:
		return "limit"
	case OrderTypeMarket:
		return "market"
	default:
		return "unspecified"
	}
}

// OrderStatus is the lifecycle state of an order. Transitions are
// one-directional, terminal states are never left.
type OrderStatus int8

const (
	OrderStatusUnspecified OrderStatus = iota
	OrderStatusActive
	OrderStatusPartiallyFilled
	OrderStatusFilled
	OrderStatusCancelled
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusActive:
		return "active"
	case OrderStatusPartiallyFilled:
		return "partially_filled"
	case OrderStatusFilled:
		return "filled"
	case OrderStatusCancelled:
		return "cancelled"
	default:
		return "unspecified"
	}
}

// IsTerminal reports whether the status can never change again.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled
}

// CanTransitionTo reports whether moving from s to next is a legal forward
// transition of the order state machine.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusActive:
		return next == OrderStatusPartiallyFilled ||
			next == OrderStatusFilled ||
			next == OrderStatusCancelled
	case OrderStatusPartiallyFilled:
		return next == OrderStatusFilled || next == OrderStatusCancelled
	}
	return false
}

// OrderSubmission is the caller-facing request to place an order.
type OrderSubmission struct {
	MarketID string
	Party    string
	Side     Side
	Type     OrderType
	// Price is the limit price, zero for market orders.
	Price *num.Uint
	// Size is the amount of base asset to trade.
	Size *num.Uint
	// PriceBound is the slippage bound for market orders: a ceiling for
	// buys (it also sizes the quote reservation), a floor for sells
	// (optional). Must be nil for limit orders.
	PriceBound *num.Uint
}

// Order is the authoritative record of a placed order. It is never deleted,
// only moved through forward status transitions.
type Order struct {
	ID        *num.Uint
	MarketID  string
	Party     string
	Side      Side
	Type      OrderType
	Price     *num.Uint
	Size      *num.Uint
	Remaining *num.Uint
	Status    OrderStatus
	CreatedAt int64

	// ReservePrice is the per-unit quote price locked when the order was
	// placed: the limit price for limit buys, the price bound for market
	// buys. Nil for sells, which reserve base directly.
	ReservePrice *num.Uint
	// PriceBound carries the slippage bound of a market order.
	PriceBound *num.Uint
}

// IsResting reports whether the order can occupy a price level.
func (o *Order) IsResting() bool {
	return o.Type == OrderTypeLimit && !o.Status.IsTerminal()
}

// Clone returns a deep copy of the order.
func (o Order) Clone() *Order {
	cpy := o
	cpy.ID = o.ID.Clone()
	cpy.Price = o.Price.Clone()
	cpy.Size = o.Size.Clone()
	cpy.Remaining = o.Remaining.Clone()
	if o.ReservePrice != nil {
		cpy.ReservePrice = o.ReservePrice.Clone()
	}
	if o.PriceBound != nil {
		cpy.PriceBound = o.PriceBound.Clone()
	}
	return &cpy
}

func (o Order) String() string {
	return fmt.Sprintf("order{id=%s market=%s party=%s side=%s type=%s price=%s size=%s remaining=%s status=%s}",
		o.ID, o.MarketID, o.Party, o.Side, o.Type, o.Price, o.Size, o.Remaining, o.Status)
}
