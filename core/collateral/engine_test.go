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

package collateral

import (
	"testing"

	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/libs/num"
	"code.zenithex.io/zenith/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng := New(logging.NewTestLogger(), NewDefaultConfig())
	eng.EnableAsset(types.Asset{Symbol: "USDT", Decimals: 6})
	eng.EnableAsset(types.Asset{Symbol: "BTC", Decimals: 8})
	return eng
}

func TestCollateral_DepositAndWithdraw(t *testing.T) {
	eng := getTestEngine(t)

	require.NoError(t, eng.Deposit("alice", "USDT", num.NewUint(1000)))
	avail, locked := eng.GetBalance("alice", "USDT")
	assert.True(t, avail.EQUint64(1000))
	assert.True(t, locked.IsZero())

	require.NoError(t, eng.Withdraw("alice", "USDT", num.NewUint(400)))
	avail, _ = eng.GetBalance("alice", "USDT")
	assert.True(t, avail.EQUint64(600))
}

func TestCollateral_DepositValidation(t *testing.T) {
	eng := getTestEngine(t)

	assert.ErrorIs(t, eng.Deposit("alice", "USDT", num.UintZero()), types.ErrInvalidAmount)
	assert.ErrorIs(t, eng.Deposit("alice", "DOGE", num.NewUint(10)), types.ErrInvalidAsset)
}

func TestCollateral_WithdrawMoreThanAvailable(t *testing.T) {
	eng := getTestEngine(t)
	require.NoError(t, eng.Deposit("alice", "USDT", num.NewUint(100)))

	err := eng.Withdraw("alice", "USDT", num.NewUint(101))
	assert.ErrorIs(t, err, types.ErrInsufficientBalance)

	// the failed withdrawal had no side effects
	avail, _ := eng.GetBalance("alice", "USDT")
	assert.True(t, avail.EQUint64(100))
}

func TestCollateral_LockedFundsCannotBeWithdrawn(t *testing.T) {
	eng := getTestEngine(t)
	require.NoError(t, eng.Deposit("alice", "USDT", num.NewUint(100)))
	require.NoError(t, eng.Lock("alice", "USDT", num.NewUint(80)))

	assert.ErrorIs(t, eng.Withdraw("alice", "USDT", num.NewUint(50)), types.ErrInsufficientBalance)

	eng.Release("alice", "USDT", num.NewUint(80))
	require.NoError(t, eng.Withdraw("alice", "USDT", num.NewUint(50)))
}

func TestCollateral_LockRequiresAvailable(t *testing.T) {
	eng := getTestEngine(t)
	require.NoError(t, eng.Deposit("alice", "USDT", num.NewUint(100)))

	assert.ErrorIs(t, eng.Lock("alice", "USDT", num.NewUint(101)), types.ErrInsufficientBalance)

	require.NoError(t, eng.Lock("alice", "USDT", num.NewUint(100)))
	avail, locked := eng.GetBalance("alice", "USDT")
	assert.True(t, avail.IsZero())
	assert.True(t, locked.EQUint64(100))
}

func TestCollateral_TransferLockedMovesValueAtomically(t *testing.T) {
	eng := getTestEngine(t)
	require.NoError(t, eng.Deposit("alice", "USDT", num.NewUint(500)))
	require.NoError(t, eng.Lock("alice", "USDT", num.NewUint(500)))

	eng.TransferLocked("alice", "bob", "USDT", num.NewUint(300))

	_, aliceLocked := eng.GetBalance("alice", "USDT")
	bobAvail, _ := eng.GetBalance("bob", "USDT")
	assert.True(t, aliceLocked.EQUint64(200))
	assert.True(t, bobAvail.EQUint64(300))
	assert.True(t, eng.TotalBalance("USDT").EQUint64(500))
}

func TestCollateral_UnwindTransferLocked(t *testing.T) {
	eng := getTestEngine(t)
	require.NoError(t, eng.Deposit("alice", "USDT", num.NewUint(500)))
	require.NoError(t, eng.Lock("alice", "USDT", num.NewUint(500)))
	eng.TransferLocked("alice", "bob", "USDT", num.NewUint(300))

	eng.UnwindTransferLocked("alice", "bob", "USDT", num.NewUint(300))

	_, aliceLocked := eng.GetBalance("alice", "USDT")
	bobAvail, _ := eng.GetBalance("bob", "USDT")
	assert.True(t, aliceLocked.EQUint64(500))
	assert.True(t, bobAvail.IsZero())
}

func TestCollateral_OverReleasePanics(t *testing.T) {
	eng := getTestEngine(t)
	require.NoError(t, eng.Deposit("alice", "USDT", num.NewUint(100)))
	require.NoError(t, eng.Lock("alice", "USDT", num.NewUint(50)))

	assert.Panics(t, func() {
		eng.Release("alice", "USDT", num.NewUint(51))
	})
	assert.Panics(t, func() {
		eng.TransferLocked("alice", "bob", "USDT", num.NewUint(51))
	})
}

func TestCollateral_AssetsAreIndependent(t *testing.T) {
	eng := getTestEngine(t)
	require.NoError(t, eng.Deposit("alice", "USDT", num.NewUint(100)))
	require.NoError(t, eng.Deposit("alice", "BTC", num.NewUint(7)))

	require.NoError(t, eng.Lock("alice", "BTC", num.NewUint(7)))
	avail, locked := eng.GetBalance("alice", "USDT")
	assert.True(t, avail.EQUint64(100))
	assert.True(t, locked.IsZero())
}

func TestCollateral_UnitsOfScalesByAssetDecimals(t *testing.T) {
	eng := getTestEngine(t)

	units, err := eng.UnitsOf("BTC", num.NewUint(150_000_000))
	require.NoError(t, err)
	assert.Equal(t, "1.5", units.String())

	units, err = eng.UnitsOf("USDT", num.NewUint(2_500_000))
	require.NoError(t, err)
	assert.Equal(t, "2.5", units.String())

	// a single satoshi still round-trips exactly
	units, err = eng.UnitsOf("BTC", num.NewUint(1))
	require.NoError(t, err)
	assert.Equal(t, "0.00000001", units.String())

	_, err = eng.UnitsOf("DOGE", num.NewUint(1))
	assert.ErrorIs(t, err, types.ErrInvalidAsset)
}
