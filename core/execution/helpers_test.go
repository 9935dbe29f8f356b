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
	"context"
	"testing"
	"time"

	"code.zenithex.io/zenith/core/collateral"
	"code.zenithex.io/zenith/core/events"
	"code.zenithex.io/zenith/core/hooks"
	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/libs/num"
	"code.zenithex.io/zenith/logging"

	"github.com/stretchr/testify/require"
)

const (
	tstMarket = "BTC/USDT"
	tstBase   = "BTC"
	tstQuote  = "USDT"
)

// stubBroker collects everything sent so tests can assert on emitted
// events and on commit/abort semantics.
type stubBroker struct {
	evts []events.Event
}

func (b *stubBroker) Send(e events.Event) {
	b.evts = append(b.evts, e)
}

func (b *stubBroker) SendBatch(evts []events.Event) {
	b.evts = append(b.evts, evts...)
}

func (b *stubBroker) ofType(tp events.Type) []events.Event {
	out := []events.Event{}
	for _, e := range b.evts {
		if e.Type() == tp {
			out = append(out, e)
		}
	}
	return out
}

func (b *stubBroker) clear() {
	b.evts = nil
}

// tstClock advances by step on every read, so placement timestamps are
// strictly increasing unless a test pins step to zero.
type tstClock struct {
	now  time.Time
	step time.Duration
}

func (c *tstClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

type tstVenue struct {
	ctx    context.Context
	eng    *Engine
	ledger *collateral.Engine
	broker *stubBroker
	market *Market
	clock  *tstClock
}

func getTestVenue(t *testing.T, makerBps, takerBps uint64, desc *hooks.Descriptor) *tstVenue {
	t.Helper()
	log := logging.NewTestLogger()
	bkr := &stubBroker{}
	ledger := collateral.New(log, collateral.NewDefaultConfig())
	clock := &tstClock{
		now:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		step: time.Second,
	}
	eng := NewEngine(log, NewDefaultConfig(), ledger, bkr, clock.Now)

	mkt := &types.Market{
		ID:    tstMarket,
		Base:  types.Asset{Symbol: tstBase, Decimals: 8},
		Quote: types.Asset{Symbol: tstQuote, Decimals: 6},
		Fees:  types.FeeFactors{MakerBps: makerBps, TakerBps: takerBps},
	}
	m, err := eng.SubmitMarket(mkt, desc)
	require.NoError(t, err)

	return &tstVenue{
		ctx:    context.Background(),
		eng:    eng,
		ledger: ledger,
		broker: bkr,
		market: m,
		clock:  clock,
	}
}

func (v *tstVenue) deposit(t *testing.T, party, asset string, amount uint64) {
	t.Helper()
	require.NoError(t, v.eng.Deposit(v.ctx, party, asset, num.NewUint(amount)))
}

func (v *tstVenue) limit(party string, side types.Side, price, size uint64) *types.OrderSubmission {
	return &types.OrderSubmission{
		MarketID: tstMarket,
		Party:    party,
		Side:     side,
		Type:     types.OrderTypeLimit,
		Price:    num.NewUint(price),
		Size:     num.NewUint(size),
	}
}

func (v *tstVenue) marketOrder(party string, side types.Side, size uint64, bound *num.Uint) *types.OrderSubmission {
	return &types.OrderSubmission{
		MarketID:   tstMarket,
		Party:      party,
		Side:       side,
		Type:       types.OrderTypeMarket,
		Size:       num.NewUint(size),
		PriceBound: bound,
	}
}

func (v *tstVenue) submit(t *testing.T, sub *types.OrderSubmission) (*types.Order, []*types.Trade) {
	t.Helper()
	o, trades, err := v.market.SubmitOrder(v.ctx, sub)
	require.NoError(t, err)
	return o, trades
}

// rest plants a resting limit order straight on the book with its
// reservation taken, bypassing matching. Used to build crossed books for
// the sweep tests.
func (v *tstVenue) rest(t *testing.T, party string, side types.Side, price, size uint64, ts int64) *types.Order {
	t.Helper()
	o := &types.Order{
		MarketID:  tstMarket,
		Party:     party,
		Side:      side,
		Type:      types.OrderTypeLimit,
		Price:     num.NewUint(price),
		Size:      num.NewUint(size),
		Remaining: num.NewUint(size),
		CreatedAt: ts,
	}
	if side == types.SideBuy {
		o.ReservePrice = num.NewUint(price)
		require.NoError(t, v.ledger.Lock(party, tstQuote, num.NewUint(price*size)))
	} else {
		require.NoError(t, v.ledger.Lock(party, tstBase, num.NewUint(size)))
	}
	v.market.book.CreateOrder(o)
	v.market.book.AddOrder(o)
	return o
}

func (v *tstVenue) balance(party, asset string) (uint64, uint64) {
	avail, locked := v.eng.GetBalance(party, asset)
	return avail.Uint64(), locked.Uint64()
}

// totalOf sums every holding of the asset, fee account included.
func (v *tstVenue) totalOf(asset string) uint64 {
	return v.ledger.TotalBalance(asset).Uint64()
}
