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

// Asset describes one side of a trading pair. Amounts everywhere in the
// engine are fixed-point integers with Decimals fractional digits; the
// conversion from external representations happens at the collateral
// boundary only, matching math never sees it.
type Asset struct {
	Symbol   string
	Decimals uint32
}

// ScalingFactor returns 10^Decimals as an unsigned integer.
func (a Asset) ScalingFactor() *num.Uint {
	factor := num.NewUint(1)
	ten := num.NewUint(10)
	for i := uint32(0); i < a.Decimals; i++ {
		factor.Mul(factor, ten)
	}
	return factor
}
