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

package events

import (
	"context"

	"code.zenithex.io/zenith/core/types"
)

// OrderMatched is emitted once per fill produced by the crossing loop.
type OrderMatched struct {
	*Base
	t *types.Trade
}

func NewOrderMatchedEvent(ctx context.Context, t *types.Trade) *OrderMatched {
	return &OrderMatched{
		Base: newBase(ctx, OrderMatchedEvent),
		t:    t.Clone(),
	}
}

func (m *OrderMatched) Trade() *types.Trade {
	return m.t
}

func (m *OrderMatched) MarketID() string {
	return m.t.MarketID
}

func (m *OrderMatched) IsParty(id string) bool {
	return m.t.Buyer == id || m.t.Seller == id
}
