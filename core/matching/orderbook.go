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
	"code.zenithex.io/zenith/libs/crypto"
	"code.zenithex.io/zenith/libs/num"
	"code.zenithex.io/zenith/logging"
)

// OrderBook is the price index and order record of a single market: two
// price-ordered sides of FIFO levels plus the authoritative order store.
//
// The book holds no matching policy. The crossing loop lives in the
// execution market, which drives the book through AddOrder, Fill and
// RemoveOrder; the book's job is to keep price-time order and the
// level/store accounting consistent.
type OrderBook struct {
	log      *logging.Logger
	marketID string
	buy      *OrderBookSide
	sell     *OrderBookSide
	store    *OrderStore

	lastTradedPrice *num.Uint

	LogRemovedOrdersDebug bool
}

// NewOrderBook create an order book with a given market id.
func NewOrderBook(log *logging.Logger, config Config, marketID string) *OrderBook {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &OrderBook{
		log:                   log,
		marketID:              marketID,
		buy:                   newSide(log, types.SideBuy),
		sell:                  newSide(log, types.SideSell),
		store:                 newOrderStore(log),
		lastTradedPrice:       num.UintZero(),
		LogRemovedOrdersDebug: config.LogRemovedOrdersDebug,
	}
}

// MarketID returns the id of the market this book belongs to.
func (b *OrderBook) MarketID() string {
	return b.marketID
}

// CreateOrder assigns an id to the order and records it in the store. The
// order is not on a price level yet.
func (b *OrderBook) CreateOrder(o *types.Order) *num.Uint {
	return b.store.Create(o)
}

// GetOrder returns the order stored under the given id.
func (b *OrderBook) GetOrder(id *num.Uint) (*types.Order, error) {
	return b.store.Get(id)
}

// MutateOrder applies a checked transition to a stored order.
func (b *OrderBook) MutateOrder(id *num.Uint, fn func(*types.Order)) error {
	return b.store.Mutate(id, fn)
}

// AddOrder inserts a resting order at its price level.
func (b *OrderBook) AddOrder(o *types.Order) {
	b.sideFor(o.Side).addOrder(o)
}

// RemoveOrder takes a resting order off its price level, used on cancel.
// The store record survives.
func (b *OrderBook) RemoveOrder(o *types.Order) {
	b.sideFor(o.Side).removeOrder(o)
	if b.LogRemovedOrdersDebug {
		b.log.Debug("order removed from book",
			logging.String("market-id", b.marketID),
			logging.String("order-id", o.ID.String()))
	}
}

// Fill consumes qty from a resting order, fixing up the level volume and
// erasing emptied levels. Returns true when the order left the book.
func (b *OrderBook) Fill(resting *types.Order, qty *num.Uint) bool {
	return b.sideFor(resting.Side).reduceOrder(resting, qty)
}

// SetLastTradedPrice records the price of the latest fill.
func (b *OrderBook) SetLastTradedPrice(p *num.Uint) {
	b.lastTradedPrice = p.Clone()
}

// LastTradedPrice returns the price of the latest fill, zero before any.
func (b *OrderBook) LastTradedPrice() *num.Uint {
	return b.lastTradedPrice.Clone()
}

// BestBidPriceAndVolume returns the highest bid and its level volume.
func (b *OrderBook) BestBidPriceAndVolume() (*num.Uint, *num.Uint, error) {
	return b.buy.BestPriceAndVolume()
}

// BestAskPriceAndVolume returns the lowest ask and its level volume.
func (b *OrderBook) BestAskPriceAndVolume() (*num.Uint, *num.Uint, error) {
	return b.sell.BestPriceAndVolume()
}

// BestOrderOnSide returns the order with price-time priority on the given
// side: head of the best level. Nil when the side is empty.
func (b *OrderBook) BestOrderOnSide(side types.Side) *types.Order {
	lvl := b.sideFor(side).bestLevel()
	if lvl == nil {
		return nil
	}
	return lvl.head()
}

// Crossed reports whether the best bid meets or exceeds the best ask. A
// crossed book after an operation completes is a matching bug.
func (b *OrderBook) Crossed() bool {
	bid, _, err := b.buy.BestPriceAndVolume()
	if err != nil {
		return false
	}
	ask, _, err := b.sell.BestPriceAndVolume()
	if err != nil {
		return false
	}
	return bid.GTE(ask)
}

// GetVolumeAtPrice returns the resting volume at the exact price on the
// given side, zero when the level does not exist.
func (b *OrderBook) GetVolumeAtPrice(price *num.Uint, side types.Side) *num.Uint {
	vol, err := b.sideFor(side).GetVolume(price)
	if err != nil {
		return num.UintZero()
	}
	return vol
}

// GetTotalNumberOfOrders returns the number of orders resting on either
// side of the book.
func (b *OrderBook) GetTotalNumberOfOrders() int64 {
	return b.buy.getOrderCount() + b.sell.getOrderCount()
}

// GetTotalVolume returns the volume resting on the book, both sides summed.
func (b *OrderBook) GetTotalVolume() *num.Uint {
	return num.Sum(b.buy.getTotalVolume(), b.sell.getTotalVolume())
}

// GetOrdersPerParty returns the party's live orders on this market.
func (b *OrderBook) GetOrdersPerParty(party string) []*types.Order {
	return b.store.GetOrdersPerParty(party)
}

// ListOrdersSince exposes order history in placement order, for indexing.
func (b *OrderBook) ListOrdersSince(since *num.Uint, limit int) []*types.Order {
	return b.store.ListOrdersSince(since, limit)
}

// Hash returns a state digest over both sides of the book.
func (b *OrderBook) Hash() []byte {
	return crypto.Hash(append(b.buy.Hash(), b.sell.Hash()...))
}

// Clone deep-copies the book, store included. Order pointers in the copy
// reference the copied store's records, so mutating the clone leaves the
// original untouched.
func (b *OrderBook) Clone() *OrderBook {
	store := b.store.clone(b.log)
	lookup := func(id *num.Uint) *types.Order {
		o, err := store.Get(id)
		if err != nil {
			b.log.Panic("book clone references an order missing from the store",
				logging.String("order-id", id.String()))
		}
		return o
	}
	return &OrderBook{
		log:                   b.log,
		marketID:              b.marketID,
		buy:                   b.buy.clone(b.log, lookup),
		sell:                  b.sell.clone(b.log, lookup),
		store:                 store,
		lastTradedPrice:       b.lastTradedPrice.Clone(),
		LogRemovedOrdersDebug: b.LogRemovedOrdersDebug,
	}
}

// Restore swaps this book's state for the other book's state, used to roll
// back a failed operation.
func (b *OrderBook) Restore(oth *OrderBook) {
	b.buy = oth.buy
	b.sell = oth.sell
	b.store = oth.store
	b.lastTradedPrice = oth.lastTradedPrice
}

func (b *OrderBook) sideFor(side types.Side) *OrderBookSide {
	if side == types.SideBuy {
		return b.buy
	}
	return b.sell
}
