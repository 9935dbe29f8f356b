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
	"testing"

	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/libs/num"
	"code.zenithex.io/zenith/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestEngine(t *testing.T, maker, taker uint64) *Engine {
	t.Helper()
	eng, err := New(logging.NewTestLogger(), NewDefaultConfig(),
		types.FeeFactors{MakerBps: maker, TakerBps: taker})
	require.NoError(t, err)
	return eng
}

func testTrade(buyer, seller, maker, taker string, price, size uint64) *types.Trade {
	return &types.Trade{
		MarketID: "BTC/USDT",
		Price:    num.NewUint(price),
		Size:     num.NewUint(size),
		Buyer:    buyer,
		Seller:   seller,
		Maker:    maker,
		Taker:    taker,
	}
}

func TestFee_RejectsFactorsOverCeiling(t *testing.T) {
	_, err := New(logging.NewTestLogger(), NewDefaultConfig(),
		types.FeeFactors{MakerBps: 1001, TakerBps: 10})
	assert.ErrorIs(t, err, types.ErrInvalidFeeFactors)
}

func TestFee_BuyerPaysInBaseSellerInQuote(t *testing.T) {
	// maker 10bps, taker 20bps; seller is the maker
	eng := getTestEngine(t, 10, 20)
	tr := testTrade("alice", "bob", "bob", "alice", 2000, 10000)
	eng.CalculateForTrade(tr)

	// buyer is the taker: 10000 * 20 / 10000 = 20 base
	assert.True(t, tr.BuyerFee.EQUint64(20))
	// seller is the maker: 20_000_000 * 10 / 10000 = 20000 quote
	assert.True(t, tr.SellerFee.EQUint64(20000))
	// role aliases follow
	assert.True(t, tr.MakerFee.EQ(tr.SellerFee))
	assert.True(t, tr.TakerFee.EQ(tr.BuyerFee))
}

func TestFee_RatesSwapWhenBuyerIsMaker(t *testing.T) {
	eng := getTestEngine(t, 10, 20)
	tr := testTrade("alice", "bob", "alice", "bob", 2000, 10000)
	eng.CalculateForTrade(tr)

	// buyer is the maker now: 10000 * 10 / 10000 = 10 base
	assert.True(t, tr.BuyerFee.EQUint64(10))
	// seller is the taker: 20_000_000 * 20 / 10000 = 40000 quote
	assert.True(t, tr.SellerFee.EQUint64(40000))
	assert.True(t, tr.MakerFee.EQ(tr.BuyerFee))
}

func TestFee_SmallFillRoundsToZero(t *testing.T) {
	eng := getTestEngine(t, 10, 10)
	tr := testTrade("alice", "bob", "bob", "alice", 3, 7)
	eng.CalculateForTrade(tr)

	assert.True(t, tr.BuyerFee.IsZero())
	assert.True(t, tr.SellerFee.IsZero())
}

func TestFee_ZeroFactorsChargeNothing(t *testing.T) {
	eng := getTestEngine(t, 0, 0)
	tr := testTrade("alice", "bob", "bob", "alice", 2000, 10000)
	eng.CalculateForTrade(tr)

	assert.True(t, tr.BuyerFee.IsZero())
	assert.True(t, tr.SellerFee.IsZero())
}

func TestFee_OverrideWithinLegIsApplied(t *testing.T) {
	eng := getTestEngine(t, 10, 20)
	tr := testTrade("alice", "bob", "bob", "alice", 2000, 10000)
	eng.CalculateForTrade(tr)

	require.NoError(t, eng.ApplyOverride(tr, num.NewUint(5), num.NewUint(100)))
	assert.True(t, tr.BuyerFee.EQUint64(5))
	assert.True(t, tr.SellerFee.EQUint64(100))
	assert.True(t, tr.TakerFee.EQUint64(5))
	assert.True(t, tr.MakerFee.EQUint64(100))
}

func TestFee_OverrideBeyondLegIsRejected(t *testing.T) {
	eng := getTestEngine(t, 10, 20)
	tr := testTrade("alice", "bob", "bob", "alice", 2000, 10000)
	eng.CalculateForTrade(tr)

	// buyer fee above the base amount of the fill
	err := eng.ApplyOverride(tr, num.NewUint(10001), num.NewUint(0))
	assert.ErrorIs(t, err, types.ErrInvalidHookDelta)

	// seller fee above the notional
	err = eng.ApplyOverride(tr, num.NewUint(0), num.NewUint(20_000_001))
	assert.ErrorIs(t, err, types.ErrInvalidHookDelta)

	// nil amounts are not an override
	err = eng.ApplyOverride(tr, nil, num.NewUint(1))
	assert.ErrorIs(t, err, types.ErrInvalidHookDelta)
}

func TestFee_RatesFloorLikeIntegerBpsMath(t *testing.T) {
	eng := getTestEngine(t, 25, 75)

	// alice buys as taker, so her rate is the taker one
	tr := testTrade("alice", "bob", "bob", "alice", 1333, 39999)
	eng.CalculateForTrade(tr)

	// 39999 * 0.0075 = 299.9925, paid in base and floored
	want, overflow := num.UintFromDecimal(
		num.MustDecimalFromString("0.0075").Mul(tr.Size.ToDecimal()).Floor())
	require.False(t, overflow)
	assert.True(t, want.EQ(tr.BuyerFee))
	assert.True(t, tr.BuyerFee.EQUint64(299))

	// notional 1333 * 39999 = 53318667, * 0.0025 = 133296.6675
	assert.True(t, tr.SellerFee.EQUint64(133296))
}
