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

package events

import (
	"context"

	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/libs/num"
)

// OrderPlaced is emitted once per accepted placeOrder call, after hooks and
// matching completed.
type OrderPlaced struct {
	*Base
	OrderID   *num.Uint
	MarketID  string
	Party     string
	Side      types.Side
	Price     *num.Uint
	Size      *num.Uint
	Timestamp int64
}

func NewOrderPlacedEvent(ctx context.Context, o *types.Order) *OrderPlaced {
	return &OrderPlaced{
		Base:      newBase(ctx, OrderPlacedEvent),
		OrderID:   o.ID.Clone(),
		MarketID:  o.MarketID,
		Party:     o.Party,
		Side:      o.Side,
		Price:     o.Price.Clone(),
		Size:      o.Size.Clone(),
		Timestamp: o.CreatedAt,
	}
}

// OrderStatusChanged is emitted on every forward transition of an order's
// status, including the ones implied by fills.
type OrderStatusChanged struct {
	*Base
	OrderID   *num.Uint
	MarketID  string
	NewStatus types.OrderStatus
	Remaining *num.Uint
}

func NewOrderStatusChangedEvent(ctx context.Context, o *types.Order) *OrderStatusChanged {
	return &OrderStatusChanged{
		Base:      newBase(ctx, OrderStatusChangedEvent),
		OrderID:   o.ID.Clone(),
		MarketID:  o.MarketID,
		NewStatus: o.Status,
		Remaining: o.Remaining.Clone(),
	}
}

// OrderCancelled is emitted when a resting order is cancelled by its owner.
type OrderCancelled struct {
	*Base
	OrderID  *num.Uint
	MarketID string
	Party    string
}

func NewOrderCancelledEvent(ctx context.Context, o *types.Order) *OrderCancelled {
	return &OrderCancelled{
		Base:     newBase(ctx, OrderCancelledEvent),
		OrderID:  o.ID.Clone(),
		MarketID: o.MarketID,
		Party:    o.Party,
	}
}
