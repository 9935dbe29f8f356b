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

package execution

import (
	"testing"

	"code.zenithex.io/zenith/core/hooks"
	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMarket(id string) *types.Market {
	return &types.Market{
		ID:    id,
		Base:  types.Asset{Symbol: "ETH", Decimals: 18},
		Quote: types.Asset{Symbol: "USDT", Decimals: 6},
		Fees:  types.FeeFactors{MakerBps: 10, TakerBps: 20},
	}
}

func TestSubmitMarket_Validation(t *testing.T) {
	v := getTestVenue(t, 0, 0, nil)

	mkt := validMarket("")
	_, err := v.eng.SubmitMarket(mkt, nil)
	assert.ErrorIs(t, err, types.ErrInvalidMarketID)

	mkt = validMarket("ETH/ETH")
	mkt.Quote = mkt.Base
	_, err = v.eng.SubmitMarket(mkt, nil)
	assert.ErrorIs(t, err, types.ErrInvalidAsset)

	mkt = validMarket("ETH/USDT")
	mkt.Fees.TakerBps = types.FeeCeilingBps + 1
	_, err = v.eng.SubmitMarket(mkt, nil)
	assert.ErrorIs(t, err, types.ErrInvalidFeeFactors)

	_, err = v.eng.SubmitMarket(validMarket(tstMarket), nil)
	assert.ErrorIs(t, err, types.ErrMarketAlreadyExists)

	_, err = v.eng.SubmitMarket(validMarket("ETH/USDT"), &hooks.Descriptor{
		Permissions: hooks.PermissionsFor(hooks.BeforePlace),
	})
	assert.ErrorIs(t, err, types.ErrInvalidHook)
}

func TestSubmitMarket_RegistersAndEnablesAssets(t *testing.T) {
	v := getTestVenue(t, 0, 0, nil)

	m, err := v.eng.SubmitMarket(validMarket("ETH/USDT"), nil)
	require.NoError(t, err)
	assert.Equal(t, "ETH/USDT", m.ID())

	got, ok := v.eng.GetMarket("ETH/USDT")
	require.True(t, ok)
	assert.Same(t, m, got)
	assert.Len(t, v.eng.ListMarkets(), 2)

	// the new base asset is depositable right away
	require.NoError(t, v.eng.Deposit(v.ctx, "alice", "ETH", num.NewUint(5)))
}

func TestMarketsShareOneLedger(t *testing.T) {
	v := getTestVenue(t, 0, 0, nil)
	m2, err := v.eng.SubmitMarket(&types.Market{
		ID:    "BTC/USDC",
		Base:  types.Asset{Symbol: tstBase, Decimals: 8},
		Quote: types.Asset{Symbol: "USDC", Decimals: 6},
	}, nil)
	require.NoError(t, err)

	v.deposit(t, "alice", tstBase, 10)

	// the same base holding backs orders on either market
	_, _, err = m2.SubmitOrder(v.ctx, &types.OrderSubmission{
		MarketID: "BTC/USDC",
		Party:    "alice",
		Side:     types.SideSell,
		Type:     types.OrderTypeLimit,
		Price:    num.NewUint(100),
		Size:     num.NewUint(10),
	})
	require.NoError(t, err)

	// fully reserved on the other market now
	_, _, err = v.market.SubmitOrder(v.ctx, v.limit("alice", types.SideSell, 100, 10))
	assert.ErrorIs(t, err, types.ErrInsufficientBalance)
}

func TestDeposit_Validation(t *testing.T) {
	v := getTestVenue(t, 0, 0, nil)

	assert.ErrorIs(t, v.eng.Deposit(v.ctx, "", tstQuote, num.NewUint(1)), types.ErrInvalidPartyID)
	assert.ErrorIs(t, v.eng.Deposit(v.ctx, "alice", tstQuote, num.UintZero()), types.ErrInvalidAmount)
	assert.ErrorIs(t, v.eng.Deposit(v.ctx, "alice", "DOGE", num.NewUint(1)), types.ErrInvalidAsset)
}
