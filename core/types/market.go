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

// FeeCeilingBps is the hard ceiling on configurable fee rates (10%).
const FeeCeilingBps uint64 = 1000

// FeeFactors is the static per-market fee schedule, in basis points.
type FeeFactors struct {
	MakerBps uint64
	TakerBps uint64
}

// Valid reports whether both rates are under the hard ceiling.
func (f FeeFactors) Valid() bool {
	return f.MakerBps <= FeeCeilingBps && f.TakerBps <= FeeCeilingBps
}

// Market is the static definition of a trading pair. One book, one
// collateral scope, at most one hook, created once at pair-setup time.
type Market struct {
	ID    string
	Base  Asset
	Quote Asset
	Fees  FeeFactors
}

// FeeAccount returns the ledger owner collecting this market's trading
// fees. Fees are a redistribution inside the ledger, never minted or
// burned, so they need a resident owner.
func (m Market) FeeAccount() string {
	return "fees@" + m.ID
}
