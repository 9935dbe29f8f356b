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
	"sync"

	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/libs/num"
	"code.zenithex.io/zenith/logging"
)

const namedLogger = "collateral"

// account is one party's holdings of one asset. Values never go negative;
// an underflow anywhere in here is an engine bug, not a user error.
type account struct {
	available *num.Uint
	locked    *num.Uint
}

func newAccount() *account {
	return &account{
		available: num.UintZero(),
		locked:    num.UintZero(),
	}
}

// Engine is the balance ledger: per party, per asset available/locked
// amounts, the only component allowed to move value. Every mutating method
// is atomic under the engine mutex, so market operations running in
// parallel on different markets can share one ledger.
//
// Asset-specific scaling stops at this boundary: amounts are stored in each
// asset's fixed-point representation and the matching math upstream never
// consults asset decimals.
type Engine struct {
	log *logging.Logger
	cfg Config

	mu       sync.Mutex
	assets   map[string]types.Asset
	accounts map[string]map[string]*account // party -> asset -> account
}

// New instantiates a new collateral engine.
func New(log *logging.Logger, cfg Config) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		log:      log,
		cfg:      cfg,
		assets:   map[string]types.Asset{},
		accounts: map[string]map[string]*account{},
	}
}

// EnableAsset declares an asset so deposits of it are accepted.
func (e *Engine) EnableAsset(a types.Asset) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.assets[a.Symbol] = a
}

// AssetEnabled reports whether the asset has been declared.
func (e *Engine) AssetEnabled(symbol string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.assets[symbol]
	return ok
}

// UnitsOf converts a ledger amount of the asset into whole units using the
// asset's declared decimal count. This is the only place fixed-point
// amounts meet their external representation.
func (e *Engine) UnitsOf(asset string, amount *num.Uint) (num.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.assets[asset]
	if !ok {
		return num.DecimalZero(), types.ErrInvalidAsset
	}
	return num.DecimalFromUint(amount).Div(num.DecimalFromUint(a.ScalingFactor())), nil
}

// Deposit credits the party's available balance. The account is created
// lazily on first use.
func (e *Engine) Deposit(party, asset string, amount *num.Uint) error {
	if amount == nil || amount.IsZero() {
		return types.ErrInvalidAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.assets[asset]; !ok {
		return types.ErrInvalidAsset
	}
	acc := e.account(party, asset)
	acc.available.Add(acc.available, amount)
	return nil
}

// Withdraw debits the party's available balance, failing without side
// effects when it does not cover the amount.
func (e *Engine) Withdraw(party, asset string, amount *num.Uint) error {
	if amount == nil || amount.IsZero() {
		return types.ErrInvalidAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	acc := e.account(party, asset)
	if acc.available.LT(amount) {
		return types.ErrInsufficientBalance
	}
	acc.available.Sub(acc.available, amount)
	return nil
}

// Lock moves amount from the party's available balance into its locked
// balance, reserving it for a resting or in-flight order.
func (e *Engine) Lock(party, asset string, amount *num.Uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	acc := e.account(party, asset)
	if acc.available.LT(amount) {
		return types.ErrInsufficientBalance
	}
	acc.available.Sub(acc.available, amount)
	acc.locked.Add(acc.locked, amount)
	return nil
}

// Release is the inverse of Lock. The engine only releases what it locked,
// so an under-locked account here is corrupted state.
func (e *Engine) Release(party, asset string, amount *num.Uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	acc := e.account(party, asset)
	if acc.locked.LT(amount) {
		e.log.Panic("releasing more than the locked balance",
			logging.String("party", party),
			logging.String("asset", asset),
			logging.BigUint("amount", amount),
			logging.BigUint("locked", acc.locked))
	}
	acc.locked.Sub(acc.locked, amount)
	acc.available.Add(acc.available, amount)
}

// TransferLocked settles one leg of a fill: amount leaves the payer's
// locked balance and lands in the receiver's available balance in a single
// atomic step. Splitting this would let an interleaving observe value
// missing from the ledger.
func (e *Engine) TransferLocked(from, to, asset string, amount *num.Uint) {
	if amount.IsZero() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	src := e.account(from, asset)
	if src.locked.LT(amount) {
		e.log.Panic("transfer exceeds the payer's locked balance",
			logging.String("from", from),
			logging.String("to", to),
			logging.String("asset", asset),
			logging.BigUint("amount", amount),
			logging.BigUint("locked", src.locked))
	}
	dst := e.account(to, asset)
	src.locked.Sub(src.locked, amount)
	dst.available.Add(dst.available, amount)
}

// UnwindTransferLocked undoes a TransferLocked of the same parameters, used
// only by operation rollback. The amount moves from the receiver's
// available balance back into the payer's locked balance.
func (e *Engine) UnwindTransferLocked(from, to, asset string, amount *num.Uint) {
	if amount.IsZero() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	dst := e.account(to, asset)
	if dst.available.LT(amount) {
		e.log.Panic("rollback exceeds the receiver's available balance",
			logging.String("from", from),
			logging.String("to", to),
			logging.String("asset", asset),
			logging.BigUint("amount", amount))
	}
	src := e.account(from, asset)
	dst.available.Sub(dst.available, amount)
	src.locked.Add(src.locked, amount)
}

// GetBalance returns the party's available and locked amounts of the asset.
func (e *Engine) GetBalance(party, asset string) (available, locked *num.Uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	accs, ok := e.accounts[party]
	if !ok {
		return num.UintZero(), num.UintZero()
	}
	acc, ok := accs[asset]
	if !ok {
		return num.UintZero(), num.UintZero()
	}
	return acc.available.Clone(), acc.locked.Clone()
}

// TotalBalance returns the sum of all available and locked holdings of the
// asset across every party. Deposits minus withdrawals always equal this.
func (e *Engine) TotalBalance(asset string) *num.Uint {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := num.UintZero()
	for _, accs := range e.accounts {
		if acc, ok := accs[asset]; ok {
			total.AddSum(acc.available, acc.locked)
		}
	}
	return total
}

// account returns the party's account for the asset, creating it lazily.
// Callers hold the engine mutex.
func (e *Engine) account(party, asset string) *account {
	accs, ok := e.accounts[party]
	if !ok {
		accs = map[string]*account{}
		e.accounts[party] = accs
	}
	acc, ok := accs[asset]
	if !ok {
		acc = newAccount()
		accs[asset] = acc
	}
	return acc
}
