/*
 * Copyright 2025 The Entity Store Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package broadcast pkg/broadcast/broadcaster.go
//
// Broadcaster is a bounded, lossy fan-out channel: all live subscribers
// see the same ordered sequence of events, but a subscriber that cannot
// keep up with its buffer capacity drops the oldest buffered event rather
// than stalling the writer. A slow watcher must never apply backpressure
// to the store engine's write path.
package broadcast

import (
	"sync"

	"github.com/google/uuid"

	"github.com/entitystore/core/pkg/logging"
	"github.com/entitystore/core/pkg/model"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 256

// Broadcaster fans out model.Event values published by the store engine to
// any number of concurrent watch subscribers.
type Broadcaster struct {
	mu          sync.Mutex
	capacity    int
	subscribers map[uuid.UUID]*Subscription
	log         logging.Logger
}

// New constructs a Broadcaster with the given per-subscriber buffer
// capacity. A non-positive capacity falls back to DefaultCapacity.
func New(capacity int, log logging.Logger) *Broadcaster {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	if log == nil {
		log = logging.NewTestLogger()
	}

	return &Broadcaster{
		capacity:    capacity,
		subscribers: make(map[uuid.UUID]*Subscription),
		log:         log,
	}
}

// Publish delivers event to every live subscriber. It must only be called
// after the corresponding mutation has been committed, and events for a
// single Broadcaster must be published in version order.
func (b *Broadcaster) Publish(event model.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscribers {
		sub.deliver(event)
	}
}

// Subscribe registers a new subscriber and returns a Subscription whose
// Events channel receives every event published from this point on (subject
// to the drop-oldest overflow policy). Close must be called when the
// subscriber is done; the broadcaster reference-counts subscribers purely
// by map membership, so no other store-side cleanup is required.
func (b *Broadcaster) Subscribe() *Subscription {
	sub := newSubscription(b.capacity)
	sub.onClose = b.unsubscribe

	b.mu.Lock()
	b.subscribers[sub.id] = sub
	b.mu.Unlock()

	b.log.Debug().Str("subscriber", sub.id.String()).Msg("watch subscriber joined broadcaster tail")

	return sub
}

func (b *Broadcaster) unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	delete(b.subscribers, id)
	b.mu.Unlock()
}

// Subscription is a single live tail of the broadcaster.
type Subscription struct {
	id      uuid.UUID
	events  chan model.Event
	mu      sync.Mutex
	closed  bool
	onClose func(uuid.UUID)
}

func newSubscription(capacity int) *Subscription {
	return &Subscription{
		id:     uuid.New(),
		events: make(chan model.Event, capacity),
	}
}

// Events returns the channel of live events. It is closed when Close is
// called.
func (s *Subscription) Events() <-chan model.Event {
	return s.events
}

// deliver pushes event onto the subscriber's buffer, dropping the oldest
// buffered event if the buffer is full.
func (s *Subscription) deliver(event model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	for {
		select {
		case s.events <- event:
			return
		default:
			select {
			case <-s.events:
			default:
			}
		}
	}
}

// Close removes the subscription from its broadcaster and closes the
// events channel. Safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.closed = true
	s.mu.Unlock()

	if s.onClose != nil {
		s.onClose(s.id)
	}

	close(s.events)
}
