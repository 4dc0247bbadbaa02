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

// Package schema pkg/schema/registry.go
//
// Registry is the self-describing schema of the store: a mapping from
// Symbol to ValueType. It is not an independent source of truth — it is
// derived from entities that carry both a @symbolName and a @valueType
// attribute — but it is kept as a plain map for O(1) lookup
// rather than re-scanned on every validation.
package schema

import "github.com/entitystore/core/pkg/model"

// Registry maps attribute-type symbols to their expected value type. It is
// not safe for concurrent use by itself; the store engine guards it with
// its own write lock.
type Registry struct {
	types map[model.Symbol]model.ValueType
}

// New builds a Registry pre-populated by scanning the bootstrap entities for
// @symbolName + @valueType pairs, exactly as any later attribute-type entity
// would be scanned.
func New() *Registry {
	r := &Registry{types: make(map[model.Symbol]model.ValueType)}

	for _, e := range model.BootstrapEntities() {
		r.observe(e)
	}

	return r
}

// observe inspects an entity and, if it carries both @symbolName (text) and
// @valueType (entity reference to a canonical value-type entity), registers
// the pair. It is a no-op for any other entity shape.
func (r *Registry) observe(e model.Entity) bool {
	nameAttr, hasName := e.Attributes[model.SymbolName]
	typeAttr, hasType := e.Attributes[model.SymbolValueType]

	if !hasName || !hasType {
		return false
	}

	name, ok := nameAttr.Text()
	if !ok {
		return false
	}

	typeEntityID, ok := typeAttr.EntityRef()
	if !ok {
		return false
	}

	valueType, err := model.ValueTypeFromCanonicalEntityID(typeEntityID)
	if err != nil {
		return false
	}

	symbol, err := model.NewSymbol(name)
	if err != nil {
		return false
	}

	r.types[symbol] = valueType

	return true
}

// Observe registers a newly created attribute-type entity with the
// registry, returning whether the entity in fact described an attribute
// type. Called by the store engine every time it inserts an entity carrying
// @symbolName + @valueType.
func (r *Registry) Observe(e model.Entity) bool {
	return r.observe(e)
}

// Lookup returns the registered ValueType for symbol, or false if symbol is
// not a registered attribute type.
func (r *Registry) Lookup(symbol model.Symbol) (model.ValueType, bool) {
	vt, ok := r.types[symbol]

	return vt, ok
}

// IsRegistered reports whether symbol has a registry entry.
func (r *Registry) IsRegistered(symbol model.Symbol) bool {
	_, ok := r.types[symbol]

	return ok
}
