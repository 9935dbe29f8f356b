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

package matching

import (
	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/libs/num"
)

// PriceLevel holds the resting orders at one price on one side of the book,
// in arrival order. The head of the queue has time priority.
type PriceLevel struct {
	price  *num.Uint
	orders []*types.Order
	volume *num.Uint
}

// NewPriceLevel instantiates a new empty price level for the given price.
func NewPriceLevel(price *num.Uint) *PriceLevel {
	return &PriceLevel{
		price:  price,
		orders: []*types.Order{},
		volume: num.UintZero(),
	}
}

func (l *PriceLevel) addOrder(o *types.Order) {
	// add orders to the slice of orders on this price level, appending
	// keeps them sorted by arrival
	l.orders = append(l.orders, o)
	l.volume.Add(l.volume, o.Remaining)
}

// head returns the order with time priority at this level, nil when empty.
func (l *PriceLevel) head() *types.Order {
	if len(l.orders) == 0 {
		return nil
	}
	return l.orders[0]
}

func (l *PriceLevel) removeOrder(index int) {
	l.reduceVolume(l.orders[index].Remaining)
	copy(l.orders[index:], l.orders[index+1:])
	l.orders[len(l.orders)-1] = nil
	l.orders = l.orders[:len(l.orders)-1]
}

// findOrder returns the queue index of the order with the given id, or -1.
func (l *PriceLevel) findOrder(id *num.Uint) int {
	for i, o := range l.orders {
		if o.ID.EQ(id) {
			return i
		}
	}
	return -1
}

// reduceVolume subtracts the given amount from the level volume. An
// underflow means the level accounting is broken, which is not recoverable.
func (l *PriceLevel) reduceVolume(amount *num.Uint) {
	if _, underflow := l.volume.SubOverflow(l.volume, amount); underflow {
		panic("price level volume dropped below zero")
	}
}

// OrderCount returns the number of resting orders at this level.
func (l *PriceLevel) OrderCount() int {
	return len(l.orders)
}

// Volume returns the sum of the remaining amounts of all orders at this
// level.
func (l *PriceLevel) Volume() *num.Uint {
	return l.volume.Clone()
}

// Price returns the level price.
func (l *PriceLevel) Price() *num.Uint {
	return l.price.Clone()
}

func clonePriceLevel(lvl *PriceLevel, lookup func(id *num.Uint) *types.Order) *PriceLevel {
	orders := make([]*types.Order, 0, len(lvl.orders))
	for _, o := range lvl.orders {
		orders = append(orders, lookup(o.ID))
	}
	return &PriceLevel{
		price:  lvl.price.Clone(),
		orders: orders,
		volume: lvl.volume.Clone(),
	}
}
