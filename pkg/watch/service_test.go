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

package watch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entitystore/core/pkg/broadcast"
	"github.com/entitystore/core/pkg/logging"
	"github.com/entitystore/core/pkg/model"
	"github.com/entitystore/core/pkg/query"
	"github.com/entitystore/core/pkg/store"
)

func textAttr(s string) *model.AttributeValue {
	v := model.TextValue(s)
	return &v
}

func TestWatch_SnapshotPlusTail(t *testing.T) {
	bc := broadcast.New(16, logging.NewTestLogger())
	s := store.New(bc, logging.NewTestLogger())

	_, err := s.CreateAttributeType(model.CreateAttributeTypeRequest{Symbol: model.MustSymbol("tag"), ValueType: model.ValueTypeText})
	require.NoError(t, err)

	e1, err := s.UpdateEntity(model.UpdateEntityRequest{
		Locator: model.LocatorBySymbol(model.MustSymbol("e1")),
		AttributesToUpdate: []model.AttributeToUpdate{
			{Symbol: model.SymbolName, Value: textAttr("e1")},
			{Symbol: model.MustSymbol("tag"), Value: textAttr("Q")},
		},
	})
	require.NoError(t, err)

	e2, err := s.UpdateEntity(model.UpdateEntityRequest{
		Locator: model.LocatorBySymbol(model.MustSymbol("e2")),
		AttributesToUpdate: []model.AttributeToUpdate{
			{Symbol: model.SymbolName, Value: textAttr("e2")},
			{Symbol: model.MustSymbol("tag"), Value: textAttr("Q")},
		},
	})
	require.NoError(t, err)

	_, err = s.UpdateEntity(model.UpdateEntityRequest{
		Locator: model.LocatorBySymbol(model.MustSymbol("e3")),
		AttributesToUpdate: []model.AttributeToUpdate{
			{Symbol: model.SymbolName, Value: textAttr("e3")},
			{Symbol: model.MustSymbol("tag"), Value: textAttr("other")},
		},
	})
	require.NoError(t, err)

	svc := New(s)

	matchQ := query.And{Clauses: []query.Node{
		query.HasAttributeTypes{Symbols: []model.Symbol{model.MustSymbol("tag")}},
		tagEquals{symbol: model.MustSymbol("tag"), want: "Q"},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan StreamItem, 16)
	done := make(chan error, 1)

	go func() {
		done <- svc.Watch(ctx, Request{Query: matchQ, SendInitialEvents: true}, out)
	}()

	seen := map[model.EntityID]bool{}

	item1 := recvItem(t, out)
	require.NotNil(t, item1.Event)
	seen[item1.Event.After.ID] = true

	item2 := recvItem(t, out)
	require.NotNil(t, item2.Event)
	seen[item2.Event.After.ID] = true

	assert.True(t, seen[e1.ID])
	assert.True(t, seen[e2.ID])

	bookmarkItem := recvItem(t, out)
	require.NotNil(t, bookmarkItem.Bookmark)
	v0 := bookmarkItem.Bookmark.Version

	// Update e1's Q-relevant attribute: subscriber sees an event with
	// version > V0 carrying only the before side, since e1 leaves Q.
	_, err = s.UpdateEntity(model.UpdateEntityRequest{
		Locator: model.LocatorByID(e1.ID),
		AttributesToUpdate: []model.AttributeToUpdate{
			{Symbol: model.MustSymbol("tag"), Value: textAttr("Q2")},
		},
	})
	require.NoError(t, err)

	modItem := recvItem(t, out)
	require.NotNil(t, modItem.Event)
	assert.Greater(t, modItem.Event.Version, v0)
	require.NotNil(t, modItem.Event.Before)
	require.Nil(t, modItem.Event.After, "tag changed away from Q so the after side no longer matches")

	// An update on an entity that never matched Q produces nothing.
	_, err = s.UpdateEntity(model.UpdateEntityRequest{
		Locator: model.LocatorBySymbol(model.MustSymbol("e4")),
		AttributesToUpdate: []model.AttributeToUpdate{
			{Symbol: model.SymbolName, Value: textAttr("e4")},
		},
	})
	require.NoError(t, err)

	select {
	case unexpected := <-out:
		t.Fatalf("unexpected item for non-matching entity: %+v", unexpected)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	<-done
}

func TestWatch_NoInitialEventsSkipsSnapshot(t *testing.T) {
	bc := broadcast.New(16, logging.NewTestLogger())
	s := store.New(bc, logging.NewTestLogger())
	subscribed := make(chan struct{})
	svc := New(subscribeSignal{Store: s, subscribed: subscribed})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan StreamItem, 4)
	done := make(chan error, 1)

	go func() {
		done <- svc.Watch(ctx, Request{Query: query.MatchAll{}, SendInitialEvents: false}, out)
	}()

	// Publish only once Watch has joined the broadcaster tail.
	<-subscribed

	_, err := s.UpdateEntity(model.UpdateEntityRequest{
		Locator: model.LocatorBySymbol(model.MustSymbol("only-live")),
		AttributesToUpdate: []model.AttributeToUpdate{
			{Symbol: model.SymbolName, Value: textAttr("only-live")},
		},
	})
	require.NoError(t, err)

	item := recvItem(t, out)
	require.Nil(t, item.Bookmark)
	require.NotNil(t, item.Event)
	assert.Equal(t, "only-live", mustName(item.Event.After))

	cancel()
	<-done
}

// subscribeSignal wraps a store and closes subscribed once Watch has
// subscribed to the live tail.
type subscribeSignal struct {
	*store.Store
	subscribed chan struct{}
}

func (s subscribeSignal) Subscribe() *broadcast.Subscription {
	sub := s.Store.Subscribe()
	close(s.subscribed)

	return sub
}

func recvItem(t *testing.T, out <-chan StreamItem) StreamItem {
	t.Helper()

	select {
	case item := <-out:
		return item
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for watch item")
		return StreamItem{}
	}
}

func mustName(e *model.Entity) string {
	v, ok := e.Attributes[model.SymbolName]
	if !ok {
		return ""
	}

	s, _ := v.Text()

	return s
}

// tagEquals is a test-only query.Node that matches entities whose symbol
// attribute equals a text value; the production query algebra has no
// value-equality variant, so tests that need one define it locally rather
// than expanding the algebra.
type tagEquals struct {
	symbol model.Symbol
	want   string
}

func (t tagEquals) Matches(entity model.Entity) bool {
	v, ok := entity.Attributes[t.symbol]
	if !ok {
		return false
	}

	s, ok := v.Text()

	return ok && s == t.want
}
