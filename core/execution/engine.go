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
	"code.zenithex.io/zenith/core/hooks"
	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/libs/num"
	"code.zenithex.io/zenith/logging"
)

// Engine is the trading venue: the market registry plus the venue-wide
// deposit and withdrawal surface. Markets run independently, each under
// its own mutex, all against the one shared collateral ledger.
type Engine struct {
	log    *logging.Logger
	cfg    Config
	ledger *collateral.Engine
	broker broker.Interface

	mu      sync.RWMutex
	markets map[string]*Market

	now func() time.Time
}

// NewEngine instantiates the execution engine. clock may be nil to use
// wall time.
func NewEngine(
	log *logging.Logger,
	cfg Config,
	ledger *collateral.Engine,
	bkr broker.Interface,
	clock func() time.Time,
) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())
	if clock == nil {
		clock = time.Now
	}

	return &Engine{
		log:     log,
		cfg:     cfg,
		ledger:  ledger,
		broker:  bkr,
		markets: map[string]*Market{},
		now:     clock,
	}
}

// SubmitMarket validates and registers a new market, enabling its assets
// on the ledger. desc may be nil for a market without an extension.
func (e *Engine) SubmitMarket(mkt *types.Market, desc *hooks.Descriptor) (*Market, error) {
	if len(mkt.ID) == 0 {
		return nil, types.ErrInvalidMarketID
	}
	if len(mkt.Base.Symbol) == 0 || len(mkt.Quote.Symbol) == 0 ||
		mkt.Base.Symbol == mkt.Quote.Symbol {
		return nil, types.ErrInvalidAsset
	}
	if !mkt.Fees.Valid() {
		return nil, types.ErrInvalidFeeFactors
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.markets[mkt.ID]; ok {
		return nil, types.ErrMarketAlreadyExists
	}
	m, err := NewMarket(e.log, e.cfg, mkt, e.ledger, e.broker, desc, e.now)
	if err != nil {
		return nil, err
	}
	e.ledger.EnableAsset(mkt.Base)
	e.ledger.EnableAsset(mkt.Quote)
	e.markets[mkt.ID] = m

	e.log.Info("market submitted",
		logging.String("market", mkt.ID),
		logging.String("base", mkt.Base.Symbol),
		logging.String("quote", mkt.Quote.Symbol))
	return m, nil
}

// GetMarket returns the market registered under the id.
func (e *Engine) GetMarket(id string) (*Market, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.markets[id]
	return m, ok
}

// ListMarkets returns every registered market.
func (e *Engine) ListMarkets() []*Market {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*Market, 0, len(e.markets))
	for _, m := range e.markets {
		out = append(out, m)
	}
	return out
}

// Deposit credits the party's available balance of the asset.
func (e *Engine) Deposit(ctx context.Context, party, asset string, amount *num.Uint) error {
	if len(party) == 0 {
		return types.ErrInvalidPartyID
	}
	if err := e.ledger.Deposit(party, asset, amount); err != nil {
		return err
	}
	units, err := e.ledger.UnitsOf(asset, amount)
	if err != nil {
		return err
	}
	e.broker.Send(events.NewDepositedEvent(ctx, party, asset, amount, units))
	return nil
}

// Withdraw debits the party's available balance of the asset. Locked funds
// cannot be withdrawn.
func (e *Engine) Withdraw(ctx context.Context, party, asset string, amount *num.Uint) error {
	if len(party) == 0 {
		return types.ErrInvalidPartyID
	}
	if err := e.ledger.Withdraw(party, asset, amount); err != nil {
		return err
	}
	units, err := e.ledger.UnitsOf(asset, amount)
	if err != nil {
		return err
	}
	e.broker.Send(events.NewWithdrawnEvent(ctx, party, asset, amount, units))
	return nil
}

// GetBalance returns the party's available and locked amounts of the asset.
func (e *Engine) GetBalance(party, asset string) (available, locked *num.Uint) {
	return e.ledger.GetBalance(party, asset)
}
