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

	"code.zenithex.io/zenith/libs/num"
)

// Deposited is emitted when external value is credited to a party's
// available balance.
type Deposited struct {
	*Base
	Party  string
	Asset  string
	Amount *num.Uint
	// Units is Amount scaled to whole units of the asset.
	Units num.Decimal
}

func NewDepositedEvent(ctx context.Context, party, asset string, amount *num.Uint, units num.Decimal) *Deposited {
	return &Deposited{
		Base:   newBase(ctx, DepositedEvent),
		Party:  party,
		Asset:  asset,
		Amount: amount.Clone(),
		Units:  units,
	}
}

func (d Deposited) IsParty(id string) bool {
	return d.Party == id
}

// Withdrawn is emitted when available balance leaves the ledger.
type Withdrawn struct {
	*Base
	Party  string
	Asset  string
	Amount *num.Uint
	// Units is Amount scaled to whole units of the asset.
	Units num.Decimal
}

func NewWithdrawnEvent(ctx context.Context, party, asset string, amount *num.Uint, units num.Decimal) *Withdrawn {
	return &Withdrawn{
		Base:   newBase(ctx, WithdrawnEvent),
		Party:  party,
		Asset:  asset,
		Amount: amount.Clone(),
		Units:  units,
	}
}

func (w Withdrawn) IsParty(id string) bool {
	return w.Party == id
}
