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

import "code.zenithex.io/zenith/libs/num"

// Trade is one fill between a buy and a sell order.
//
// Fees follow the received-asset model: the buyer's fee is denominated in
// base (taken out of the base amount received), the seller's fee in quote.
// MakerFee and TakerFee are the same two amounts keyed by role instead of
// side; which asset each is denominated in follows from who was buying.
type Trade struct {
	MarketID    string
	Price       *num.Uint
	Size        *num.Uint
	Buyer       string
	Seller      string
	BuyOrderID  *num.Uint
	SellOrderID *num.Uint
	Maker       string
	Taker       string
	MakerFee    *num.Uint
	TakerFee    *num.Uint
	BuyerFee    *num.Uint
	SellerFee   *num.Uint
	Timestamp   int64
}

// Notional returns price*size, the quote-asset value of the fill.
func (t Trade) Notional() *num.Uint {
	return num.UintZero().Mul(t.Price, t.Size)
}

// Clone returns a deep copy of the trade.
func (t Trade) Clone() *Trade {
	cpy := t
	cpy.Price = t.Price.Clone()
	cpy.Size = t.Size.Clone()
	cpy.BuyOrderID = t.BuyOrderID.Clone()
	cpy.SellOrderID = t.SellOrderID.Clone()
	cpy.MakerFee = t.MakerFee.Clone()
	cpy.TakerFee = t.TakerFee.Clone()
	cpy.BuyerFee = t.BuyerFee.Clone()
	cpy.SellerFee = t.SellerFee.Clone()
	return &cpy
}
