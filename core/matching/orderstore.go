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

package matching

import (
	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/libs/num"
	"code.zenithex.io/zenith/logging"

	"github.com/google/btree"
)

const orderTreeDegree = 32

// OrderStore is the authoritative record of every order ever placed on a
// market. Orders are never deleted, only moved through forward status
// transitions. Ids are assigned monotonically so the id order is also the
// placement order, which the btree index exposes to history consumers.
type OrderStore struct {
	log  *logging.Logger
	seq  *num.Uint
	byID map[string]*types.Order
	tree *btree.BTreeG[*types.Order]
}

func newOrderStore(log *logging.Logger) *OrderStore {
	return &OrderStore{
		log:  log,
		seq:  num.UintZero(),
		byID: map[string]*types.Order{},
		tree: btree.NewG(orderTreeDegree, func(a, b *types.Order) bool {
			return a.ID.LT(b.ID)
		}),
	}
}

// Create assigns the next order id, marks the order active and stores it.
func (s *OrderStore) Create(o *types.Order) *num.Uint {
	s.seq.Add(s.seq, num.UintOne())
	o.ID = s.seq.Clone()
	o.Status = types.OrderStatusActive
	s.byID[o.ID.String()] = o
	s.tree.ReplaceOrInsert(o)
	return o.ID.Clone()
}

// Get returns the order stored under the given id.
func (s *OrderStore) Get(id *num.Uint) (*types.Order, error) {
	o, ok := s.byID[id.String()]
	if !ok {
		return nil, types.ErrOrderNotFound
	}
	return o, nil
}

// Mutate applies fn to the stored order under the transition invariants:
// remaining never grows, never exceeds the original size, terminal statuses
// are never left, and remaining reaches zero exactly when the order fills.
// A violation is an engine bug and fails loudly.
func (s *OrderStore) Mutate(id *num.Uint, fn func(*types.Order)) error {
	o, ok := s.byID[id.String()]
	if !ok {
		return types.ErrOrderNotFound
	}

	prevStatus := o.Status
	prevRemaining := o.Remaining.Clone()

	fn(o)

	if o.Remaining.GT(prevRemaining) || o.Remaining.GT(o.Size) {
		s.log.Panic("order remaining grew on mutation",
			logging.String("order-id", o.ID.String()),
			logging.BigUint("was", prevRemaining),
			logging.BigUint("now", o.Remaining))
	}
	if o.Status != prevStatus && !prevStatus.CanTransitionTo(o.Status) {
		s.log.Panic("illegal order status transition",
			logging.String("order-id", o.ID.String()),
			logging.String("from", prevStatus.String()),
			logging.String("to", o.Status.String()))
	}
	if o.Status == types.OrderStatusFilled && !o.Remaining.IsZero() {
		s.log.Panic("order filled with remaining quantity",
			logging.String("order-id", o.ID.String()),
			logging.BigUint("remaining", o.Remaining))
	}
	return nil
}

// ListOrdersSince returns up to limit orders with id > since, in id order.
// This is the read path for the external indexing collaborator.
func (s *OrderStore) ListOrdersSince(since *num.Uint, limit int) []*types.Order {
	out := make([]*types.Order, 0, limit)
	pivot := &types.Order{ID: since.Clone()}
	s.tree.AscendGreaterOrEqual(pivot, func(o *types.Order) bool {
		if o.ID.EQ(since) {
			return true
		}
		out = append(out, o.Clone())
		return len(out) < limit
	})
	return out
}

// GetOrdersPerParty returns all non-terminal orders of the given party.
func (s *OrderStore) GetOrdersPerParty(party string) []*types.Order {
	out := []*types.Order{}
	s.tree.Ascend(func(o *types.Order) bool {
		if o.Party == party && !o.Status.IsTerminal() {
			out = append(out, o)
		}
		return true
	})
	return out
}

func (s *OrderStore) size() int {
	return len(s.byID)
}

func (s *OrderStore) clone(log *logging.Logger) *OrderStore {
	cpy := newOrderStore(log)
	cpy.seq = s.seq.Clone()
	for id, o := range s.byID {
		c := o.Clone()
		cpy.byID[id] = c
		cpy.tree.ReplaceOrInsert(c)
	}
	return cpy
}
