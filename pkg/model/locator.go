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

package model

import "fmt"

// EntityLocator selects an entity either by EntityID or by the Symbol
// written to its @symbolName attribute.
type EntityLocator struct {
	byID   bool
	id     EntityID
	symbol Symbol
}

// LocatorByID builds a locator that resolves by EntityID.
func LocatorByID(id EntityID) EntityLocator {
	return EntityLocator{byID: true, id: id}
}

// LocatorBySymbol builds a locator that resolves by @symbolName lookup.
func LocatorBySymbol(s Symbol) EntityLocator {
	return EntityLocator{byID: false, symbol: s}
}

// ID returns the target EntityID and whether this locator is id-based.
func (l EntityLocator) ID() (EntityID, bool) {
	return l.id, l.byID
}

// SymbolName returns the target Symbol and whether this locator is
// symbol-based.
func (l EntityLocator) SymbolName() (Symbol, bool) {
	return l.symbol, !l.byID
}

func (l EntityLocator) String() string {
	if l.byID {
		return fmt.Sprintf("EntityId(%d)", l.id)
	}

	return fmt.Sprintf("Symbol(%q)", l.symbol.String())
}

// AttributeToUpdate pairs a symbol with an optional new value: a present
// value writes or overwrites the key, an absent value removes it.
type AttributeToUpdate struct {
	Symbol Symbol
	Value  *AttributeValue
}

// UpdateEntityRequest is the input to the store engine's UpdateEntity
// operation.
type UpdateEntityRequest struct {
	Locator            EntityLocator
	AttributesToUpdate []AttributeToUpdate
}

// CreateAttributeTypeRequest is the input to the store engine's
// CreateAttributeType operation.
type CreateAttributeTypeRequest struct {
	Symbol    Symbol
	ValueType ValueType
}
