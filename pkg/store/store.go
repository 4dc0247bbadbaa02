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

// Package store pkg/store/store.go
//
// Store is the in-memory entity/attribute engine. A single
// writer-exclusive mutex guards the dense entity slice, the schema
// registry, and the monotonic version sequence together: the data set is
// small and operations are short, so one lock keeps every snapshot
// consistent and every version allocation ordered without per-entity
// locking. Entities are indexed densely — position in the slice equals
// the numeric EntityID — and a Symbol locator resolves by linear scan
// over @symbolName.
package store

import (
	"sync"

	"github.com/entitystore/core/pkg/broadcast"
	"github.com/entitystore/core/pkg/logging"
	"github.com/entitystore/core/pkg/model"
	"github.com/entitystore/core/pkg/query"
	"github.com/entitystore/core/pkg/schema"
	"github.com/entitystore/core/pkg/validate"
)

// Store is the core engine. The zero value is not usable; construct with
// New.
type Store struct {
	mu       sync.Mutex
	entities []model.Entity
	registry *schema.Registry
	version  model.EntityVersion
	bcast    *broadcast.Broadcaster
	log      logging.Logger
}

// New constructs a Store seeded with the bootstrap entities and a
// schema registry derived from them. events, if non-nil, receives every
// Added/Modified event this store commits, in version order; pass nil to
// run without a live-watch tail.
func New(events *broadcast.Broadcaster, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewTestLogger()
	}

	bootstrap := model.BootstrapEntities()
	entities := make([]model.Entity, len(bootstrap))
	copy(entities, bootstrap)

	registry := schema.New()

	return &Store{
		entities: entities,
		registry: registry,
		version:  0,
		bcast:    events,
		log:      log,
	}
}

// Registry exposes the store's live schema registry for read-only use. It
// is returned without taking the store's lock; the store's own operations
// validate requests against it under that lock.
func (s *Store) Registry() *schema.Registry {
	return s.registry
}

// nextVersion allocates and returns the next EntityVersion. Must be called
// with s.mu held.
func (s *Store) nextVersion() model.EntityVersion {
	s.version++
	return s.version
}

// CreateAttributeType registers a new attribute type and inserts the
// entity that describes it.
func (s *Store) CreateAttributeType(req model.CreateAttributeTypeRequest) (model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registry.IsRegistered(req.Symbol) {
		return model.Entity{}, &AlreadyExistsError{Symbol: req.Symbol}
	}

	id := model.EntityID(len(s.entities))

	entity := model.Entity{
		ID: id,
		Attributes: map[model.Symbol]model.AttributeValue{
			model.SymbolName:      model.TextValue(req.Symbol.String()),
			model.SymbolValueType: model.EntityRefValue(req.ValueType.CanonicalEntityID()),
		},
	}

	version := s.nextVersion()
	entity.Version = version

	s.entities = append(s.entities, entity)
	s.registry.Observe(entity)

	s.publishLocked(model.Event{Version: version, Before: nil, After: entityPtr(entity)})

	s.log.Debug().
		Str("symbol", req.Symbol.String()).
		Int64("entity_id", int64(id)).
		Msg("registered attribute type")

	return entity.Clone(), nil
}

// GetEntity resolves locator and returns a clone of the entity.
func (s *Store) GetEntity(locator model.EntityLocator) (model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, ok := s.resolveLocked(locator)
	if !ok {
		return model.Entity{}, &NotFoundError{Locator: locator}
	}

	return entity.Clone(), nil
}

// resolveLocked finds the entity named by locator. Must be called with
// s.mu held. Nothing enforces @symbolName uniqueness in the data model
// itself, so Symbol locators deduplicate by returning the first match in
// ascending EntityID order.
func (s *Store) resolveLocked(locator model.EntityLocator) (model.Entity, bool) {
	if id, ok := locator.ID(); ok {
		if id < 0 || int(id) >= len(s.entities) {
			return model.Entity{}, false
		}

		return s.entities[id], true
	}

	symbol, _ := locator.SymbolName()

	return s.findBySymbolLocked(symbol)
}

func (s *Store) findBySymbolLocked(symbol model.Symbol) (model.Entity, bool) {
	want := model.TextValue(symbol.String())

	for i := range s.entities {
		if v, ok := s.entities[i].Attributes[model.SymbolName]; ok && v.Equal(want) {
			return s.entities[i], true
		}
	}

	return model.Entity{}, false
}

// QueryEntities returns every entity matching node, plus the version
// watermark of the snapshot.
func (s *Store) QueryEntities(node query.Node) ([]model.Entity, model.EntityVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []model.Entity

	for i := range s.entities {
		if node.Matches(s.entities[i]) {
			results = append(results, s.entities[i].Clone())
		}
	}

	return results, s.version, nil
}

// QueryEntityRows validates the projection against the schema registry,
// then projects every matching entity to a row.
func (s *Store) QueryEntityRows(rq query.RowQuery) ([]model.Row, model.EntityVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validate.Projection(s.registry, rq.Projection); err != nil {
		return nil, 0, err
	}

	var rows []model.Row

	for i := range s.entities {
		if rq.Root.Matches(s.entities[i]) {
			rows = append(rows, s.entities[i].ToRow(rq.Projection))
		}
	}

	return rows, s.version, nil
}

// UpdateEntity is the locator-resolved idempotent upsert.
func (s *Store) UpdateEntity(req model.UpdateEntityRequest) (model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validate.UpdateRequest(s.registry, req); err != nil {
		return model.Entity{}, err
	}

	if id, isID := req.Locator.ID(); isID {
		return s.updateByIDLocked(id, req)
	}

	return s.upsertBySymbolLocked(req)
}

func (s *Store) updateByIDLocked(id model.EntityID, req model.UpdateEntityRequest) (model.Entity, error) {
	if id < 0 || int(id) >= len(s.entities) {
		return model.Entity{}, &NotFoundError{Locator: req.Locator}
	}

	return s.applyDiffLocked(int(id), req.AttributesToUpdate)
}

// upsertBySymbolLocked handles the Symbol-locator branch of UpdateEntity:
// if no entity's @symbolName matches, the request must itself write that
// symbol, and a new entity is created; otherwise the diff is applied to
// the existing (first-match) entity.
func (s *Store) upsertBySymbolLocked(req model.UpdateEntityRequest) (model.Entity, error) {
	symbol, _ := req.Locator.SymbolName()

	if entity, ok := s.findBySymbolLocked(symbol); ok {
		return s.applyDiffLocked(int(entity.ID), req.AttributesToUpdate)
	}

	if !writesSymbolName(req.AttributesToUpdate, symbol) {
		return model.Entity{}, &NotIdempotentError{Locator: req.Locator, MissingAttribute: model.SymbolName}
	}

	id := model.EntityID(len(s.entities))
	attrs := make(map[model.Symbol]model.AttributeValue, len(req.AttributesToUpdate))

	for _, attr := range req.AttributesToUpdate {
		if attr.Value != nil {
			attrs[attr.Symbol] = *attr.Value
		}
	}

	entity := model.Entity{ID: id, Attributes: attrs}
	version := s.nextVersion()
	entity.Version = version

	s.entities = append(s.entities, entity)
	s.registry.Observe(entity)

	s.publishLocked(model.Event{Version: version, Before: nil, After: entityPtr(entity)})

	return entity.Clone(), nil
}

// writesSymbolName reports whether attrs contains the exact
// {@symbolName, Text(symbol)} entry required for a Symbol-locator update
// that misses to be treated as a well-formed create rather than a
// non-idempotent request.
func writesSymbolName(attrs []model.AttributeToUpdate, symbol model.Symbol) bool {
	want := model.TextValue(symbol.String())

	for _, attr := range attrs {
		if attr.Symbol == model.SymbolName && attr.Value != nil && attr.Value.Equal(want) {
			return true
		}
	}

	return false
}

// applyDiffLocked applies attrs to the entity at index idx, stamping a new
// version and emitting a Modified event only if something actually
// changed. A request that matches current state is a no-op: no version
// bump, no event.
func (s *Store) applyDiffLocked(idx int, attrs []model.AttributeToUpdate) (model.Entity, error) {
	before := s.entities[idx].Clone()
	after := before.Clone()

	changed := false

	for _, attr := range attrs {
		if attr.Value == nil {
			if _, existed := after.Attributes[attr.Symbol]; existed {
				delete(after.Attributes, attr.Symbol)
				changed = true
			}

			continue
		}

		if existing, ok := after.Attributes[attr.Symbol]; !ok || !existing.Equal(*attr.Value) {
			after.Attributes[attr.Symbol] = *attr.Value
			changed = true
		}
	}

	if !changed {
		return before, nil
	}

	version := s.nextVersion()
	after.Version = version
	s.entities[idx] = after

	s.registry.Observe(after)

	s.publishLocked(model.Event{Version: version, Before: entityPtr(before), After: entityPtr(after)})

	return after.Clone(), nil
}

// publishLocked forwards event to the broadcaster, if one is configured.
// Must be called with s.mu held and after the mutation it describes has
// already been committed to s.entities/s.registry, so subscribers always
// observe events in version order and never ahead of the state change.
func (s *Store) publishLocked(event model.Event) {
	if s.bcast == nil {
		return
	}

	s.bcast.Publish(event)
}

// Subscribe registers a new watch tail on the store's broadcaster, or
// returns nil if the store was constructed without one.
func (s *Store) Subscribe() *broadcast.Subscription {
	if s.bcast == nil {
		return nil
	}

	return s.bcast.Subscribe()
}

func entityPtr(e model.Entity) *model.Entity {
	clone := e.Clone()
	return &clone
}
