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

package fee

import (
	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/libs/num"
	"code.zenithex.io/zenith/logging"
)

const namedLogger = "fee"

// bpsDenominator converts basis points to a fraction.
const bpsDenominator uint64 = 10000

// Engine computes per-fill trading fees from a market's static fee schedule.
//
// Both parties pay their fee in the asset they receive: the buyer's fee is
// taken from the base amount of the fill, the seller's from the quote
// notional. The rate each party pays depends on its role in the fill, maker
// or taker, not on its side of the book.
type Engine struct {
	log     *logging.Logger
	cfg     Config
	factors types.FeeFactors

	// rates are the bps factors as fractions, fixed at construction
	makerRate num.Decimal
	takerRate num.Decimal
}

// New instantiates a fee engine for one market's fee schedule.
func New(log *logging.Logger, cfg Config, factors types.FeeFactors) (*Engine, error) {
	if !factors.Valid() {
		return nil, types.ErrInvalidFeeFactors
	}
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	den := num.DecimalFromInt64(int64(bpsDenominator))
	return &Engine{
		log:       log,
		cfg:       cfg,
		factors:   factors,
		makerRate: num.DecimalFromInt64(int64(factors.MakerBps)).Div(den),
		takerRate: num.DecimalFromInt64(int64(factors.TakerBps)).Div(den),
	}, nil
}

// Factors returns the fee schedule the engine was built with.
func (e *Engine) Factors() types.FeeFactors {
	return e.factors
}

// CalculateForTrade sets the four fee fields on the trade from the market's
// schedule. Rounding is down, so a fill too small for the rate pays nothing.
func (e *Engine) CalculateForTrade(t *types.Trade) {
	buyerRate, sellerRate := e.makerRate, e.takerRate
	if t.Buyer == t.Taker {
		buyerRate, sellerRate = sellerRate, buyerRate
	}

	t.BuyerFee = feeOn(t.Size, buyerRate)
	t.SellerFee = feeOn(t.Notional(), sellerRate)
	e.alignRoleFees(t)
}

// ApplyOverride replaces the computed fees on the trade with hook-supplied
// amounts. An override may only lower or redistribute within each leg: the
// buyer's fee is capped by the base amount of the fill, the seller's by its
// notional.
func (e *Engine) ApplyOverride(t *types.Trade, buyerFee, sellerFee *num.Uint) error {
	if buyerFee == nil || sellerFee == nil {
		return types.ErrInvalidHookDelta
	}
	if buyerFee.GT(t.Size) || sellerFee.GT(t.Notional()) {
		return types.ErrInvalidHookDelta
	}

	t.BuyerFee = buyerFee.Clone()
	t.SellerFee = sellerFee.Clone()
	e.alignRoleFees(t)
	return nil
}

// alignRoleFees keeps the role-keyed fee amounts in sync with the
// side-keyed ones.
func (e *Engine) alignRoleFees(t *types.Trade) {
	if t.Buyer == t.Maker {
		t.MakerFee = t.BuyerFee.Clone()
		t.TakerFee = t.SellerFee.Clone()
		return
	}
	t.MakerFee = t.SellerFee.Clone()
	t.TakerFee = t.BuyerFee.Clone()
}

func feeOn(amount *num.Uint, rate num.Decimal) *num.Uint {
	// the rate has at most 4 fractional digits, the product is exact and
	// flooring it matches integer division by the bps denominator
	f, _ := num.UintFromDecimal(amount.ToDecimal().Mul(rate).Floor())
	return f
}
