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

// Package watch pkg/watch/service.go
//
// Service implements the snapshot+tail merge: a subscriber that asks for
// initial events gets a consistent point-in-time query result followed by
// a Bookmark terminator, then the live event tail with per-subscriber
// query re-evaluation and before==after suppression. The substrate
// (pkg/broadcast) never needs reconnect or backoff handling — a dropped
// event is simply absent from the tail, not a connection failure.
package watch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/entitystore/core/pkg/broadcast"
	"github.com/entitystore/core/pkg/model"
	"github.com/entitystore/core/pkg/query"
)

// Store is the subset of the store engine the watch service depends on:
// a consistent snapshot query plus the ability to subscribe to the live
// event tail. pkg/store.Store satisfies this.
type Store interface {
	QueryEntities(node query.Node) ([]model.Entity, model.EntityVersion, error)
	Subscribe() *broadcast.Subscription
}

// Request describes a single watch subscription.
type Request struct {
	Query             query.Node
	SendInitialEvents bool
}

// Bookmark is the out-of-band terminator event emitted after the initial
// snapshot, carrying the snapshot's watermark version.
type Bookmark struct {
	Version model.EntityVersion
}

// StreamItem is a single item of a watch stream: exactly one of Event or
// Bookmark is set.
type StreamItem struct {
	Event    *model.Event
	Bookmark *Bookmark
}

// Service runs watch subscriptions against a Store.
type Service struct {
	store Store
}

// New constructs a Service backed by store.
func New(store Store) *Service {
	return &Service{store: store}
}

// Watch runs the snapshot+tail merge and sends every resulting
// StreamItem to out, until ctx is cancelled or the broadcaster tail is
// closed. It blocks until the stream ends; callers typically run it in
// its own goroutine and range over out from elsewhere, or pass a channel
// they drain concurrently as this function's send-side.
func (s *Service) Watch(ctx context.Context, req Request, out chan<- StreamItem) error {
	// Subscribe before the snapshot so no event committed between the two
	// can be missed; the watermark dedup below discards the overlap. A nil
	// tail channel (store built without a broadcaster) simply never fires.
	var tail <-chan model.Event

	if sub := s.store.Subscribe(); sub != nil {
		defer sub.Close()

		tail = sub.Events()
	}

	var watermark model.EntityVersion

	haveWatermark := false

	if req.SendInitialEvents {
		entities, v0, err := s.store.QueryEntities(req.Query)
		if err != nil {
			return err
		}

		for i := range entities {
			e := entities[i]
			ev := model.Event{Version: v0, Before: nil, After: &e}

			if !sendItem(ctx, out, StreamItem{Event: &ev}) {
				return ctx.Err()
			}
		}

		if !sendItem(ctx, out, StreamItem{Bookmark: &Bookmark{Version: v0}}) {
			return ctx.Err()
		}

		watermark = v0
		haveWatermark = true
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-tail:
			if !ok {
				return nil
			}

			if haveWatermark && ev.Version <= watermark {
				continue
			}

			derived, suppressed := filterEvent(req.Query, ev)
			if suppressed {
				continue
			}

			if !sendItem(ctx, out, StreamItem{Event: &derived}) {
				return ctx.Err()
			}
		}
	}
}

// filterEvent evaluates node against before/after independently,
// projecting each side to nil if it does not match, and reports
// whether the derived event should be suppressed because before==after.
func filterEvent(node query.Node, ev model.Event) (model.Event, bool) {
	derived := model.Event{Version: ev.Version}

	if ev.Before != nil && node.Matches(*ev.Before) {
		derived.Before = ev.Before
	}

	if ev.After != nil && node.Matches(*ev.After) {
		derived.After = ev.After
	}

	return derived, eventSidesEqual(derived.Before, derived.After)
}

func eventSidesEqual(before, after *model.Entity) bool {
	if before == nil && after == nil {
		return true
	}

	if before == nil || after == nil {
		return false
	}

	return before.Equal(*after)
}

// WatchRows runs the same contract as Watch but delivers row-projected
// items, converting each surviving event through projection.
func (s *Service) WatchRows(ctx context.Context, req Request, projection []model.Symbol, out chan<- RowStreamItem) error {
	items := make(chan StreamItem)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(items)
		return s.Watch(gctx, req, items)
	})

	g.Go(func() error {
		for item := range items {
			if !sendRowItem(gctx, out, ProjectItem(item, projection)) {
				return gctx.Err()
			}
		}

		return nil
	})

	return g.Wait()
}

func sendRowItem(ctx context.Context, out chan<- RowStreamItem, item RowStreamItem) bool {
	select {
	case out <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

func sendItem(ctx context.Context, out chan<- StreamItem, item StreamItem) bool {
	select {
	case out <- item:
		return true
	case <-ctx.Done():
		return false
	}
}
