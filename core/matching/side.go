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
	"sort"

	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/libs/crypto"
	"code.zenithex.io/zenith/libs/num"
	"code.zenithex.io/zenith/logging"

	"github.com/pkg/errors"
)

// ErrPriceNotFound signals that a price was not found on the book side.
var ErrPriceNotFound = errors.New("price-volume pair not found")

// OrderBookSide represents a side of the book, either Sell or Buy.
// Levels are kept sorted with the best price at the end of the slice:
// ascending for buys, descending for sells.
type OrderBookSide struct {
	side   types.Side
	log    *logging.Logger
	levels []*PriceLevel
}

func newSide(log *logging.Logger, side types.Side) *OrderBookSide {
	return &OrderBookSide{
		side:   side,
		log:    log,
		levels: []*PriceLevel{},
	}
}

// Hash returns a digest over all (price, volume) pairs on this side.
func (s *OrderBookSide) Hash() []byte {
	// 32 bytes for the price + 32 for the volume
	output := make([]byte, len(s.levels)*64)
	var i int
	for _, l := range s.levels {
		// data is already big endian out of Uint.Bytes()
		price := l.price.Bytes()
		copy(output[i:], price[:])
		i += 32
		volume := l.volume.Bytes()
		copy(output[i:], volume[:])
		i += 32
	}
	return crypto.Hash(output)
}

func (s *OrderBookSide) addOrder(o *types.Order) {
	if o.Price.IsZero() {
		s.log.Panic("inserting a non-positive price on the book",
			logging.String("side", s.side.String()),
			logging.String("order-id", o.ID.String()))
	}
	s.getPriceLevel(o.Price).addOrder(o)
}

// BestPriceAndVolume returns the top of book price and volume,
// returns an error if the book side is empty.
func (s *OrderBookSide) BestPriceAndVolume() (*num.Uint, *num.Uint, error) {
	if len(s.levels) <= 0 {
		return num.UintZero(), num.UintZero(), errors.New("no orders on the book")
	}
	last := len(s.levels) - 1
	return s.levels[last].price.Clone(), s.levels[last].volume.Clone(), nil
}

// bestLevel returns the level with the best price, nil when the side is
// empty.
func (s *OrderBookSide) bestLevel() *PriceLevel {
	if len(s.levels) == 0 {
		return nil
	}
	return s.levels[len(s.levels)-1]
}

// removeOrder takes an order out of its level, erasing the level when it
// empties. Call sites guarantee the order is resting; a miss here is broken
// book accounting.
func (s *OrderBookSide) removeOrder(o *types.Order) {
	i := s.levelIndex(o.Price)
	if i >= len(s.levels) || !s.levels[i].price.EQ(o.Price) {
		s.log.Panic("removing an order from a price level not on the book",
			logging.String("order-id", o.ID.String()),
			logging.BigUint("price", o.Price))
	}
	idx := s.levels[i].findOrder(o.ID)
	if idx < 0 {
		s.log.Panic("removing an order not present at its price level",
			logging.String("order-id", o.ID.String()),
			logging.BigUint("price", o.Price))
	}
	s.levels[i].removeOrder(idx)
	if len(s.levels[i].orders) <= 0 {
		s.levels = s.levels[:i+copy(s.levels[i:], s.levels[i+1:])]
	}
}

// reduceOrder shrinks the remaining of a resting order by fill, removing it
// from the level when fully consumed. Returns true when the order left the
// book.
func (s *OrderBookSide) reduceOrder(o *types.Order, fill *num.Uint) bool {
	i := s.levelIndex(o.Price)
	if i >= len(s.levels) || !s.levels[i].price.EQ(o.Price) {
		s.log.Panic("filling an order at a price level not on the book",
			logging.String("order-id", o.ID.String()),
			logging.BigUint("price", o.Price))
	}
	lvl := s.levels[i]
	idx := lvl.findOrder(o.ID)
	if idx < 0 {
		s.log.Panic("filling an order not present at its price level",
			logging.String("order-id", o.ID.String()))
	}
	if fill.GT(o.Remaining) {
		s.log.Panic("fill size exceeds order remaining",
			logging.String("order-id", o.ID.String()),
			logging.BigUint("fill", fill),
			logging.BigUint("remaining", o.Remaining))
	}
	o.Remaining.Sub(o.Remaining, fill)
	lvl.reduceVolume(fill)
	if !o.Remaining.IsZero() {
		return false
	}
	lvl.removeOrder(idx)
	if len(lvl.orders) <= 0 {
		s.levels = s.levels[:i+copy(s.levels[i:], s.levels[i+1:])]
	}
	return true
}

func (s *OrderBookSide) levelIndex(price *num.Uint) int {
	if s.side == types.SideBuy {
		// buy side levels are ordered ascending
		return sort.Search(len(s.levels), func(i int) bool { return s.levels[i].price.GTE(price) })
	}
	// sell side levels are ordered descending
	return sort.Search(len(s.levels), func(i int) bool { return s.levels[i].price.LTE(price) })
}

func (s *OrderBookSide) getPriceLevelIfExists(price *num.Uint) *PriceLevel {
	i := s.levelIndex(price)
	if i < len(s.levels) && s.levels[i].price.EQ(price) {
		return s.levels[i]
	}
	return nil
}

func (s *OrderBookSide) getPriceLevel(price *num.Uint) *PriceLevel {
	i := s.levelIndex(price)
	if i < len(s.levels) && s.levels[i].price.EQ(price) {
		return s.levels[i]
	}

	// append a new elem first to make sure we have enough space,
	// then shift and insert at the sorted position
	level := NewPriceLevel(price.Clone())
	s.levels = append(s.levels, nil)
	copy(s.levels[i+1:], s.levels[i:])
	s.levels[i] = level
	return level
}

// GetVolume returns the volume at the given price level.
func (s *OrderBookSide) GetVolume(price *num.Uint) (*num.Uint, error) {
	priceLevel := s.getPriceLevelIfExists(price)
	if priceLevel == nil {
		return num.UintZero(), ErrPriceNotFound
	}
	return priceLevel.volume.Clone(), nil
}

func (s *OrderBookSide) getLevels() []*PriceLevel {
	return s.levels
}

func (s *OrderBookSide) getOrderCount() int64 {
	var orderCount int64
	for _, level := range s.levels {
		orderCount += int64(len(level.orders))
	}
	return orderCount
}

func (s *OrderBookSide) getTotalVolume() *num.Uint {
	volume := num.UintZero()
	for _, level := range s.levels {
		volume.Add(volume, level.volume)
	}
	return volume
}

func (s *OrderBookSide) clone(log *logging.Logger, lookup func(id *num.Uint) *types.Order) *OrderBookSide {
	levels := make([]*PriceLevel, 0, len(s.levels))
	for _, lvl := range s.levels {
		levels = append(levels, clonePriceLevel(lvl, lookup))
	}
	return &OrderBookSide{
		side:   s.side,
		log:    log,
		levels: levels,
	}
}
