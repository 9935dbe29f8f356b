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

package broker

import (
	"sync"

	"code.zenithex.io/zenith/core/events"
	"code.zenithex.io/zenith/logging"
)

const namedLogger = "broker"

// Subscriber receives the events it registered types for. Push is called
// synchronously from the sending operation, subscribers must not block.
type Subscriber interface {
	Push(evts ...events.Event)
	Types() []events.Type
}

// Interface is the event-sending surface engines depend on.
type Interface interface {
	Send(event events.Event)
	SendBatch(evts []events.Event)
}

type subscription struct {
	Subscriber
	id int
}

// Broker routes engine events to typed subscribers, in-process and
// synchronous. Delivery is at-least-once with a monotonic sequence so
// consumers can replay-idempotently.
type Broker struct {
	log *logging.Logger

	mu    sync.Mutex
	seq   uint64
	subID int
	subs  map[int]*subscription
	// per-type subscriber index, events.All receives everything
	tSubs map[events.Type]map[int]*subscription
}

// New creates a new broker.
func New(log *logging.Logger, config Config) *Broker {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Broker{
		log:   log,
		subs:  map[int]*subscription{},
		tSubs: map[events.Type]map[int]*subscription{},
	}
}

// Subscribe registers the subscriber for the types it declares and returns
// the key to unsubscribe with.
func (b *Broker) Subscribe(s Subscriber) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subID++
	sub := &subscription{Subscriber: s, id: b.subID}
	b.subs[sub.id] = sub
	for _, t := range s.Types() {
		if _, ok := b.tSubs[t]; !ok {
			b.tSubs[t] = map[int]*subscription{}
		}
		b.tSubs[t][sub.id] = sub
	}
	return sub.id
}

// Unsubscribe removes the subscriber registered under k, a no-op for an
// unknown key.
func (b *Broker) Unsubscribe(k int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[k]
	if !ok {
		return
	}
	for _, t := range sub.Types() {
		delete(b.tSubs[t], k)
	}
	delete(b.subs, k)
}

// Send delivers a single event to all matching subscribers.
func (b *Broker) Send(event events.Event) {
	b.SendBatch([]events.Event{event})
}

// SendBatch delivers the given events in order. Batches produced by one
// engine operation are delivered contiguously.
func (b *Broker) SendBatch(evts []events.Event) {
	if len(evts) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range evts {
		b.seq++
		e.SetSequenceID(b.seq)
		for _, sub := range b.tSubs[e.Type()] {
			sub.Push(e)
		}
		for _, sub := range b.tSubs[events.All] {
			sub.Push(e)
		}
	}
}
