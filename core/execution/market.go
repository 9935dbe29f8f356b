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
	"sync"
	"time"

	"code.zenithex.io/zenith/core/broker"
	"code.zenithex.io/zenith/core/collateral"
	"code.zenithex.io/zenith/core/events"
	"code.zenithex.io/zenith/core/fee"
	"code.zenithex.io/zenith/core/hooks"
	"code.zenithex.io/zenith/core/matching"
	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/libs/num"
	"code.zenithex.io/zenith/logging"
	"code.zenithex.io/zenith/metrics"
)

// Market runs one trading pair: its book, its fee schedule, its extension
// pipeline, all sharing the engine-wide collateral ledger.
//
// Every operation is atomic under the market mutex. An abort mid-operation
// restores the book from a snapshot taken on entry and unwinds the ledger
// journal, so a failing or panicking extension can never leave a fill half
// settled. Events are buffered during the operation and only reach the
// broker on commit.
type Market struct {
	log *logging.Logger
	mkt *types.Market

	mu     sync.Mutex
	book   *matching.OrderBook
	ledger *collateral.Engine
	fees   *fee.Engine
	hooks  *hooks.Pipeline
	broker broker.Interface

	now func() time.Time
}

// NewMarket assembles the engines running one market. desc may be nil for
// a market without an extension, clock may be nil to use wall time.
func NewMarket(
	log *logging.Logger,
	cfg Config,
	mkt *types.Market,
	ledger *collateral.Engine,
	bkr broker.Interface,
	desc *hooks.Descriptor,
	clock func() time.Time,
) (*Market, error) {
	feeEng, err := fee.New(log, cfg.Fee, mkt.Fees)
	if err != nil {
		return nil, err
	}
	pipe, err := hooks.NewPipeline(log, cfg.Hooks, desc)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = time.Now
	}

	return &Market{
		log:    log,
		mkt:    mkt,
		book:   matching.NewOrderBook(log, cfg.Matching, mkt.ID),
		ledger: ledger,
		fees:   feeEng,
		hooks:  pipe,
		broker: bkr,
		now:    clock,
	}, nil
}

// ID returns the market identifier.
func (m *Market) ID() string {
	return m.mkt.ID
}

// Definition returns the static market definition.
func (m *Market) Definition() types.Market {
	return *m.mkt
}

// SubmitOrder validates, funds and matches an incoming order, returning
// the order in its final state along with the trades it generated. A limit
// order with remaining size rests on the book; a market order never rests,
// its unfilled residual is cancelled and its reservation released.
func (m *Market) SubmitOrder(ctx context.Context, sub *types.OrderSubmission) (*types.Order, []*types.Trade, error) {
	start := m.now()
	if err := m.validateSubmission(sub); err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.book.Clone()
	j := &journal{}
	evts := []events.Event{}

	o := m.orderFromSubmission(sub)

	delta, err := m.hooks.BeforePlace(ctx, o)
	if err != nil {
		return nil, nil, err
	}
	if err := m.applyOrderDelta(o, delta); err != nil {
		return nil, nil, err
	}

	if o.Side == types.SideBuy {
		o.ReservePrice = o.Price.Clone()
		if o.Type == types.OrderTypeMarket {
			o.ReservePrice = o.PriceBound.Clone()
		}
	}
	if err := m.lockFunds(j, o); err != nil {
		return nil, nil, err
	}

	m.book.CreateOrder(o)
	evts = append(evts, events.NewOrderPlacedEvent(ctx, o))

	trades := []*types.Trade{}
	for !o.Remaining.IsZero() {
		maker := m.book.BestOrderOnSide(o.Side.Opposite())
		if maker == nil || !m.priceAcceptable(o, maker.Price) {
			break
		}

		t, err := m.executeFill(ctx, j, o, maker)
		if err != nil {
			m.abort(snap, j)
			return nil, nil, err
		}
		qty := t.Size

		m.book.Fill(maker, qty)
		m.finishFill(maker.ID)
		m.book.MutateOrder(o.ID, func(ord *types.Order) {
			ord.Remaining.Sub(ord.Remaining, qty)
			if ord.Remaining.IsZero() {
				ord.Status = types.OrderStatusFilled
			} else {
				ord.Status = types.OrderStatusPartiallyFilled
			}
		})

		trades = append(trades, t)
		evts = append(evts,
			events.NewOrderMatchedEvent(ctx, t),
			events.NewOrderStatusChangedEvent(ctx, maker))

		if err := m.hooks.AfterMatch(ctx, t); err != nil {
			m.abort(snap, j)
			return nil, nil, err
		}
	}

	if !o.Remaining.IsZero() {
		if o.IsResting() {
			m.book.AddOrder(o)
		} else {
			m.releaseFunds(j, o.Party, m.reserveAsset(o), m.reserveAmount(o))
			m.book.MutateOrder(o.ID, func(ord *types.Order) {
				ord.Status = types.OrderStatusCancelled
			})
		}
	}
	if o.Status != types.OrderStatusActive {
		evts = append(evts, events.NewOrderStatusChangedEvent(ctx, o))
	}

	if err := m.hooks.AfterPlace(ctx, o); err != nil {
		m.abort(snap, j)
		return nil, nil, err
	}

	if m.book.Crossed() {
		m.log.Panic("book crossed after order submission",
			logging.String("market", m.mkt.ID),
			logging.Stringify("order", o))
	}
	if len(trades) > 0 {
		m.book.SetLastTradedPrice(trades[len(trades)-1].Price)
	}

	m.broker.SendBatch(evts)
	metrics.OrderCounterInc(m.mkt.ID, o.Side.String(), o.Status.String())
	metrics.TradeCounterAdd(m.mkt.ID, len(trades))
	metrics.EngineTimeCounterAdd(start, m.mkt.ID, "submit_order")
	return o.Clone(), trades, nil
}

// CancelOrder removes the party's resting order from the book and releases
// its reservation. The extension may veto via BeforeCancel.
func (m *Market) CancelOrder(ctx context.Context, party string, id *num.Uint) (*types.Order, error) {
	start := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	o, err := m.book.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if o.Status.IsTerminal() {
		return nil, types.ErrOrderNotActive
	}
	if o.Party != party {
		return nil, types.ErrNotOrderOwner
	}

	snap := m.book.Clone()
	j := &journal{}

	if err := m.hooks.BeforeCancel(ctx, o); err != nil {
		return nil, err
	}

	m.cancelLocked(j, o)
	evts := []events.Event{events.NewOrderCancelledEvent(ctx, o)}

	if err := m.hooks.AfterCancel(ctx, o); err != nil {
		m.abort(snap, j)
		return nil, err
	}

	m.broker.SendBatch(evts)
	metrics.OrderCounterInc(m.mkt.ID, o.Side.String(), o.Status.String())
	metrics.EngineTimeCounterAdd(start, m.mkt.ID, "cancel_order")
	return o.Clone(), nil
}

// CancelAllOrders cancels every live order of the party, atomically: one
// veto or extension failure leaves all of them standing.
func (m *Market) CancelAllOrders(ctx context.Context, party string) ([]*types.Order, error) {
	start := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.book.GetOrdersPerParty(party)
	if len(live) == 0 {
		return nil, nil
	}

	snap := m.book.Clone()
	j := &journal{}
	evts := make([]events.Event, 0, len(live))
	out := make([]*types.Order, 0, len(live))

	for _, o := range live {
		if err := m.hooks.BeforeCancel(ctx, o); err != nil {
			m.abort(snap, j)
			return nil, err
		}
		m.cancelLocked(j, o)
		evts = append(evts, events.NewOrderCancelledEvent(ctx, o))
		if err := m.hooks.AfterCancel(ctx, o); err != nil {
			m.abort(snap, j)
			return nil, err
		}
		out = append(out, o.Clone())
	}

	m.broker.SendBatch(evts)
	metrics.EngineTimeCounterAdd(start, m.mkt.ID, "cancel_all_orders")
	return out, nil
}

// MatchOrders sweeps the crossed region of the book, generating fills
// until the book uncrosses or maxMatches fills have been made. A
// maxMatches of zero or less means no cap. The earlier-placed order of
// each pair is the maker and sets the trade price.
//
// Submission already uncrosses the book, so on a live market this is a
// maintenance no-op. It exists for books populated out of band, e.g. when
// restoring state.
func (m *Market) MatchOrders(ctx context.Context, maxMatches int) ([]*types.Trade, error) {
	start := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.book.Clone()
	j := &journal{}
	evts := []events.Event{}
	trades := []*types.Trade{}

	for maxMatches <= 0 || len(trades) < maxMatches {
		if !m.book.Crossed() {
			break
		}
		bid := m.book.BestOrderOnSide(types.SideBuy)
		ask := m.book.BestOrderOnSide(types.SideSell)
		maker, taker := resolveRoles(bid, ask)

		t, err := m.executeFill(ctx, j, taker, maker)
		if err != nil {
			m.abort(snap, j)
			return nil, err
		}
		qty := t.Size

		m.book.Fill(bid, qty)
		m.book.Fill(ask, qty)
		m.finishFill(bid.ID)
		m.finishFill(ask.ID)

		trades = append(trades, t)
		evts = append(evts,
			events.NewOrderMatchedEvent(ctx, t),
			events.NewOrderStatusChangedEvent(ctx, bid),
			events.NewOrderStatusChangedEvent(ctx, ask))

		if err := m.hooks.AfterMatch(ctx, t); err != nil {
			m.abort(snap, j)
			return nil, err
		}
	}

	if len(trades) > 0 {
		m.book.SetLastTradedPrice(trades[len(trades)-1].Price)
	}

	m.broker.SendBatch(evts)
	metrics.TradeCounterAdd(m.mkt.ID, len(trades))
	metrics.EngineTimeCounterAdd(start, m.mkt.ID, "match_orders")
	return trades, nil
}

// resolveRoles makes the earlier-placed of two crossed resting orders the
// maker. On an equal timestamp, the lower sequence number was accepted
// first.
func resolveRoles(bid, ask *types.Order) (maker, taker *types.Order) {
	switch {
	case bid.CreatedAt < ask.CreatedAt:
		return bid, ask
	case ask.CreatedAt < bid.CreatedAt:
		return ask, bid
	case bid.ID.LT(ask.ID):
		return bid, ask
	default:
		return ask, bid
	}
}

// executeFill runs one fill between the taker and the resting maker: the
// per-fill extension points, fee computation and the four-way settlement.
// Order remainings and book volume are left to the caller.
func (m *Market) executeFill(ctx context.Context, j *journal, taker, maker *types.Order) (*types.Trade, error) {
	if err := m.hooks.BeforeMatch(ctx, taker, maker); err != nil {
		return nil, err
	}

	qty := num.Min(taker.Remaining, maker.Remaining).Clone()
	t := m.newTrade(taker, maker, maker.Price, qty)
	m.fees.CalculateForTrade(t)

	fd, err := m.hooks.FeeOverride(ctx, t)
	if err != nil {
		return nil, err
	}
	if fd != nil {
		if err := m.fees.ApplyOverride(t, fd.BuyerFee, fd.SellerFee); err != nil {
			return nil, err
		}
	}

	buyOrd := taker
	if taker.Side == types.SideSell {
		buyOrd = maker
	}
	m.settle(j, t, buyOrd.ReservePrice)
	return t, nil
}

func (m *Market) newTrade(taker, maker *types.Order, price, qty *num.Uint) *types.Trade {
	buyOrd, sellOrd := taker, maker
	if taker.Side == types.SideSell {
		buyOrd, sellOrd = maker, taker
	}
	return &types.Trade{
		MarketID:    m.mkt.ID,
		Price:       price.Clone(),
		Size:        qty,
		Buyer:       buyOrd.Party,
		Seller:      sellOrd.Party,
		BuyOrderID:  buyOrd.ID.Clone(),
		SellOrderID: sellOrd.ID.Clone(),
		Maker:       maker.Party,
		Taker:       taker.Party,
		Timestamp:   m.now().UnixNano(),
	}
}

// settle moves the two legs of a fill through the ledger. Each party's fee
// is carved out of the leg it receives and lands in the market's fee
// account, so the sum over all accounts never changes. The buyer reserved
// at buyReserve per unit; whatever the execution price left unspent is
// released back.
func (m *Market) settle(j *journal, t *types.Trade, buyReserve *num.Uint) {
	base, quote := m.mkt.Base.Symbol, m.mkt.Quote.Symbol
	feeAcct := m.mkt.FeeAccount()
	notional := t.Notional()

	baseNet := num.UintZero().Sub(t.Size, t.BuyerFee)
	m.transferLocked(j, t.Seller, t.Buyer, base, baseNet)
	m.transferLocked(j, t.Seller, feeAcct, base, t.BuyerFee)

	quoteNet := num.UintZero().Sub(notional, t.SellerFee)
	m.transferLocked(j, t.Buyer, t.Seller, quote, quoteNet)
	m.transferLocked(j, t.Buyer, feeAcct, quote, t.SellerFee)

	if buyReserve.GT(t.Price) {
		surplus := num.UintZero().Sub(buyReserve, t.Price)
		surplus.Mul(surplus, t.Size)
		m.releaseFunds(j, t.Buyer, quote, surplus)
	}
}

// finishFill moves an order whose remaining was just reduced to its
// implied status.
func (m *Market) finishFill(id *num.Uint) {
	m.book.MutateOrder(id, func(ord *types.Order) {
		if ord.Remaining.IsZero() {
			ord.Status = types.OrderStatusFilled
		} else {
			ord.Status = types.OrderStatusPartiallyFilled
		}
	})
}

func (m *Market) cancelLocked(j *journal, o *types.Order) {
	m.book.RemoveOrder(o)
	m.releaseFunds(j, o.Party, m.reserveAsset(o), m.reserveAmount(o))
	m.book.MutateOrder(o.ID, func(ord *types.Order) {
		ord.Status = types.OrderStatusCancelled
	})
}

func (m *Market) validateSubmission(sub *types.OrderSubmission) error {
	if sub.MarketID != m.mkt.ID {
		return types.ErrInvalidMarketID
	}
	if len(sub.Party) == 0 {
		return types.ErrInvalidPartyID
	}
	if sub.Side != types.SideBuy && sub.Side != types.SideSell {
		return types.ErrInvalidSide
	}
	if sub.Size == nil || sub.Size.IsZero() {
		return types.ErrInvalidSize
	}
	switch sub.Type {
	case types.OrderTypeLimit:
		if sub.Price == nil || sub.Price.IsZero() {
			return types.ErrInvalidPrice
		}
		if sub.PriceBound != nil {
			return types.ErrInvalidPriceBound
		}
	case types.OrderTypeMarket:
		if sub.Price != nil && !sub.Price.IsZero() {
			return types.ErrInvalidPrice
		}
		if sub.Side == types.SideBuy && (sub.PriceBound == nil || sub.PriceBound.IsZero()) {
			return types.ErrInvalidPriceBound
		}
		if sub.PriceBound != nil && sub.PriceBound.IsZero() {
			return types.ErrInvalidPriceBound
		}
	default:
		return types.ErrInvalidType
	}
	return nil
}

func (m *Market) orderFromSubmission(sub *types.OrderSubmission) *types.Order {
	o := &types.Order{
		MarketID:  sub.MarketID,
		Party:     sub.Party,
		Side:      sub.Side,
		Type:      sub.Type,
		Price:     num.UintZero(),
		Size:      sub.Size.Clone(),
		Remaining: sub.Size.Clone(),
		CreatedAt: m.now().UnixNano(),
	}
	if sub.Price != nil {
		o.Price = sub.Price.Clone()
	}
	if sub.PriceBound != nil {
		o.PriceBound = sub.PriceBound.Clone()
	}
	return o
}

func (m *Market) applyOrderDelta(o *types.Order, delta *hooks.OrderDelta) error {
	if delta == nil {
		return nil
	}
	if delta.Price != nil {
		if o.Type != types.OrderTypeLimit || delta.Price.IsZero() {
			return types.ErrInvalidHookDelta
		}
		o.Price = delta.Price.Clone()
	}
	if delta.Size != nil {
		if delta.Size.IsZero() {
			return types.ErrInvalidHookDelta
		}
		o.Size = delta.Size.Clone()
		o.Remaining = delta.Size.Clone()
	}
	return nil
}

// priceAcceptable reports whether the incoming order may fill at the given
// resting price: the limit price bounds limit orders, the slippage bound
// bounds market orders (optional for sells).
func (m *Market) priceAcceptable(o *types.Order, makerPrice *num.Uint) bool {
	bound := o.Price
	if o.Type == types.OrderTypeMarket {
		bound = o.PriceBound
	}
	if o.Side == types.SideBuy {
		return makerPrice.LTE(bound)
	}
	return bound == nil || makerPrice.GTE(bound)
}

// reserveAsset returns the asset an order's reservation is held in.
func (m *Market) reserveAsset(o *types.Order) string {
	if o.Side == types.SideBuy {
		return m.mkt.Quote.Symbol
	}
	return m.mkt.Base.Symbol
}

// reserveAmount returns the reservation still held for the order's
// remaining size.
func (m *Market) reserveAmount(o *types.Order) *num.Uint {
	if o.Side == types.SideBuy {
		return num.UintZero().Mul(o.ReservePrice, o.Remaining)
	}
	return o.Remaining.Clone()
}

func (m *Market) lockFunds(j *journal, o *types.Order) error {
	party, asset, amount := o.Party, m.reserveAsset(o), m.reserveAmount(o)
	if err := m.ledger.Lock(party, asset, amount); err != nil {
		return err
	}
	j.record(func() { m.ledger.Release(party, asset, amount) })
	return nil
}

func (m *Market) releaseFunds(j *journal, party, asset string, amount *num.Uint) {
	amount = amount.Clone()
	m.ledger.Release(party, asset, amount)
	j.record(func() {
		if err := m.ledger.Lock(party, asset, amount); err != nil {
			m.log.Panic("cannot re-lock released funds on rollback",
				logging.String("party", party),
				logging.String("asset", asset),
				logging.BigUint("amount", amount),
				logging.Error(err))
		}
	})
}

func (m *Market) transferLocked(j *journal, from, to, asset string, amount *num.Uint) {
	amount = amount.Clone()
	m.ledger.TransferLocked(from, to, asset, amount)
	j.record(func() { m.ledger.UnwindTransferLocked(from, to, asset, amount) })
}

func (m *Market) abort(snap *matching.OrderBook, j *journal) {
	m.book.Restore(snap)
	j.unwind()
}

// GetOrder returns a copy of the order, terminal or not.
func (m *Market) GetOrder(id *num.Uint) (*types.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, err := m.book.GetOrder(id)
	if err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// GetOrdersPerParty returns copies of the party's live orders.
func (m *Market) GetOrdersPerParty(party string) []*types.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.book.GetOrdersPerParty(party)
	out := make([]*types.Order, 0, len(live))
	for _, o := range live {
		out = append(out, o.Clone())
	}
	return out
}

// ListOrdersSince pages through all orders with a sequence number at or
// above since, in placement order.
func (m *Market) ListOrdersSince(since *num.Uint, limit int) []*types.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.book.ListOrdersSince(since, limit)
	out := make([]*types.Order, 0, len(stored))
	for _, o := range stored {
		out = append(out, o.Clone())
	}
	return out
}

// BestBid returns the best bid price and the volume resting there.
func (m *Market) BestBid() (*num.Uint, *num.Uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.book.BestBidPriceAndVolume()
}

// BestAsk returns the best ask price and the volume resting there.
func (m *Market) BestAsk() (*num.Uint, *num.Uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.book.BestAskPriceAndVolume()
}

// GetVolumeAtPrice returns the resting volume at an exact price level.
func (m *Market) GetVolumeAtPrice(price *num.Uint, side types.Side) *num.Uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.book.GetVolumeAtPrice(price, side)
}

// LastTradedPrice returns the price of the most recent fill.
func (m *Market) LastTradedPrice() *num.Uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.book.LastTradedPrice()
}

// Hash returns a deterministic digest of the book's resting state.
func (m *Market) Hash() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.book.Hash()
}
