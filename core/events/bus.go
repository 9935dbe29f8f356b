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

import "context"

// Type discriminates the events the engine emits for downstream consumers
// (the indexing collaborator above all).
type Type int

const (
	// All is used by subscribers that want every event, it has no
	// corresponding payload.
	All Type = iota
	OrderPlacedEvent
	OrderMatchedEvent
	OrderStatusChangedEvent
	OrderCancelledEvent
	DepositedEvent
	WithdrawnEvent
)

var eventStrings = map[Type]string{
	All:                     "ALL",
	OrderPlacedEvent:        "OrderPlaced",
	OrderMatchedEvent:       "OrderMatched",
	OrderStatusChangedEvent: "OrderStatusChanged",
	OrderCancelledEvent:     "OrderCancelled",
	DepositedEvent:          "Deposited",
	WithdrawnEvent:          "Withdrawn",
}

// String gets the string representation of the event type.
func (t Type) String() string {
	s, ok := eventStrings[t]
	if !ok {
		return "UNKNOWN EVENT"
	}
	return s
}

// Event is the common denominator all bus events share.
type Event interface {
	Type() Type
	Context() context.Context
	Sequence() uint64
	SetSequenceID(s uint64)
}

// Base common denominator all event-bus events share.
type Base struct {
	ctx context.Context
	seq uint64
	et  Type
}

// A base event holds no data, so the constructor will not be called directly.
func newBase(ctx context.Context, t Type) *Base {
	return &Base{
		ctx: ctx,
		et:  t,
	}
}

// Sequence returns the event sequence number.
func (b Base) Sequence() uint64 {
	return b.seq
}

// SetSequenceID is called by the broker when the event is delivered.
// Delivery is at-least-once, the sequence is the consumer's replay key.
func (b *Base) SetSequenceID(s uint64) {
	b.seq = s
}

// Context returns the context the event was emitted with.
func (b Base) Context() context.Context {
	return b.ctx
}

// Type returns the event type.
func (b Base) Type() Type {
	return b.et
}
